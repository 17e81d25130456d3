// Package codec converts dynamic values to and from text.
//
// JSON follows the host's own encoder and parser: objects keep key order,
// numbers are float64, undefined members are dropped. YAML and canonical
// JSON (RFC 8785) are offered as alternative formats.
package codec

import "github.com/reoring/dynbridge/value"

// DefaultMaxDepth bounds nesting when a codec's MaxDepth is zero.
const DefaultMaxDepth = 128

// TextCodec turns dynamic values into text and back.
type TextCodec interface {
	Name() string
	Marshal(v value.Value) ([]byte, error)
	Unmarshal(data []byte) (value.Value, error)
}

var (
	// JSON is the host JSON format with default limits.
	JSON TextCodec = JSONCodec{}
	// YAML is YAML 1.2 with default limits.
	YAML TextCodec = YAMLCodec{}
	// Canonical is RFC 8785 canonical JSON.
	Canonical TextCodec = CanonicalCodec{}
)

func depthOrDefault(d int) int {
	if d <= 0 {
		return DefaultMaxDepth
	}
	return d
}
