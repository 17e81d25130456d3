package codec

import (
	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/reoring/dynbridge/errors"
	"github.com/reoring/dynbridge/value"
)

// CanonicalCodec writes RFC 8785 canonical JSON: members sorted by UTF-16
// code units, no insignificant whitespace, ES6 number formatting. Reading
// accepts any JSON but rejects duplicate keys, which canonical input never
// contains.
type CanonicalCodec struct {
	MaxDepth int
}

func (CanonicalCodec) Name() string { return "canonical-json" }

// Marshal writes v as JSON and then applies the RFC 8785 transform.
func (c CanonicalCodec) Marshal(v value.Value) ([]byte, error) {
	raw, err := JSONCodec{MaxDepth: c.MaxDepth}.Marshal(v)
	if err != nil {
		return nil, err
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, errors.New(errors.KindCustom).Phase(errors.PhaseFormat).Cause(err).
			Message("canonicalize: %v", err).Build()
	}
	return out, nil
}

// Unmarshal is JSON parsing with duplicate keys rejected.
func (c CanonicalCodec) Unmarshal(data []byte) (value.Value, error) {
	return JSONCodec{MaxDepth: c.MaxDepth, RejectDuplicateKeys: true}.Unmarshal(data)
}
