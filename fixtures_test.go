package dynbridge_test

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/dynbridge/datamodel"
	"github.com/reoring/dynbridge/value"
)

type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type Item struct {
	SKU string `json:"sku"`
	Qty uint8  `json:"qty"`
}

type Order struct {
	ID      uint64         `json:"id"`
	Items   []Item         `json:"items"`
	Note    *string        `json:"note,omitempty"`
	Tags    map[string]int `json:"tags"`
	Payload []byte         `json:"payload"`
	Initial datamodel.Char `json:"initial"`
	Origin  Point          `json:"origin"`
}

type Rect struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type Shape struct {
	datamodel.Enum
	Empty  *struct{} `json:"empty"`
	Circle *float64  `json:"circle"`
	Line   *[2]int   `json:"line"`
	Rect   *Rect     `json:"rect"`
}

// Stmt and Expr refer to each other through their variants.
type Stmt struct {
	datamodel.Enum
	Nop  *struct{} `json:"nop"`
	Expr *Expr     `json:"expr"`
	Seq  *[]Stmt   `json:"seq"`
}

type Expr struct {
	datamodel.Enum
	Lit   *int  `json:"lit"`
	Block *Stmt `json:"block"`
}

type Marker struct{}

type Meters struct {
	V float64 `dynbridge:",newtype"`
}

type Pair struct {
	datamodel.Tuple
	Name  string
	Count int
}

type Account struct {
	Name  string `dynbridge:"name,required"`
	Email string `json:"email,omitempty"`
}

type Envelope struct {
	Kind  string      `json:"kind"`
	Extra value.Value `json:"extra"`
}

// Celsius describes its own shape as a string like "21.5C".
type Celsius float64

func (c Celsius) Serialize(s datamodel.Serializer) error {
	return s.SerializeString(strconv.FormatFloat(float64(c), 'f', 1, 64) + "C")
}

func (c *Celsius) Deserialize(d datamodel.Deserializer) error {
	var s string
	if err := datamodel.Deserialize(d, &s); err != nil {
		return err
	}
	if !strings.HasSuffix(s, "C") {
		return fmt.Errorf("temperature %q lacks unit", s)
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "C"), 64)
	if err != nil {
		return err
	}
	*c = Celsius(f)
	return nil
}

func ptr[T any](v T) *T { return &v }

func obj(kv ...any) value.Value {
	o := value.NewObject()
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1].(value.Value))
	}
	return o.Value()
}

func num(n float64) value.Value { return value.Number(n) }
