package engine

import (
	stderrors "errors"
	"io"
	"strconv"

	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// DecodeValue builds a dynamic value from exactly one JSON document in src.
// Objects keep first-seen key order; a repeated key replaces the earlier
// value in place. Numbers become float64.
func DecodeValue(src TokenSource) (value.Value, error) {
	tok, err := src.NextToken()
	if err != nil {
		return value.Value{}, syntaxErr(err)
	}
	v, err := decodeValue(src, tok)
	if err != nil {
		return value.Value{}, err
	}
	if _, err := src.NextToken(); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return value.Value{}, syntaxErr(err)
		}
		return value.Value{}, syntaxErr(stderrors.New("unexpected data after top-level value"))
	}
	return v, nil
}

// syntaxErr wraps driver errors. Errors already produced by the engine
// (depth, duplicates) pass through.
func syntaxErr(err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e
	}
	if stderrors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return errors.Syntax(err)
}

func decodeValue(src TokenSource, tok Token) (value.Value, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return value.String(tok.String), nil
	case KindNumber:
		return parseNumber(tok.Number)
	case KindBool:
		return value.Bool(tok.Bool), nil
	case KindNull:
		return value.Null(), nil
	default:
		return value.Value{}, syntaxErr(io.ErrUnexpectedEOF)
	}
}

// parseNumber follows the host: magnitudes beyond float64 become ±Infinity.
func parseNumber(s string) (value.Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !stderrors.Is(err, strconv.ErrRange) {
		return value.Value{}, syntaxErr(err)
	}
	return value.Number(f), nil
}

func decodeObject(src TokenSource) (value.Value, error) {
	obj := value.NewObject()
	for {
		tok, err := src.NextToken()
		if err != nil {
			return value.Value{}, syntaxErr(err)
		}
		if tok.Kind == KindEndObject {
			return obj.Value(), nil
		}
		if tok.Kind != KindKey {
			return value.Value{}, syntaxErr(io.ErrUnexpectedEOF)
		}
		vt, err := src.NextToken()
		if err != nil {
			return value.Value{}, syntaxErr(err)
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return value.Value{}, err
		}
		obj.Set(tok.String, v)
	}
}

func decodeArray(src TokenSource) (value.Value, error) {
	arr := []value.Value{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return value.Value{}, syntaxErr(err)
		}
		if tok.Kind == KindEndArray {
			return value.Array(arr...), nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return value.Value{}, err
		}
		arr = append(arr, v)
	}
}
