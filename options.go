package dynbridge

import (
	"go.uber.org/zap"

	"github.com/reoring/dynbridge/codec"
)

// DefaultMaxDepth bounds container nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 128

// MapKeyPolicy decides how maps are produced when their keys are not all
// strings.
type MapKeyPolicy int

const (
	// MapKeysAuto produces a plain object when every key is a string and a
	// native Map otherwise.
	MapKeysAuto MapKeyPolicy = iota
	// MapKeysNative always produces a native Map.
	MapKeysNative
	// MapKeysStringify renders primitive keys as object keys using host
	// number formatting. Composite keys fail with ErrUnsupported.
	MapKeysStringify
	// MapKeysReject fails with ErrUnsupported on any non-string key.
	MapKeysReject
)

func (p MapKeyPolicy) String() string {
	switch p {
	case MapKeysAuto:
		return "auto"
	case MapKeysNative:
		return "native"
	case MapKeysStringify:
		return "stringify"
	case MapKeysReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Options configures a conversion. Zero fields take defaults. Functions
// accepting ...Options use the last one given.
type Options struct {
	// Labels caches field names and enum tags. Defaults to DefaultLabelCache.
	Labels LabelCache
	// MaxDepth bounds container nesting in both directions and in text
	// parsing. Defaults to DefaultMaxDepth.
	MaxDepth int
	// MapKeys selects the map encoding. Defaults to MapKeysAuto.
	MapKeys MapKeyPolicy
	// Codec is the text format used by ToText and FromText. Defaults to
	// JSON honoring MaxDepth.
	Codec codec.TextCodec
	// Logger receives debug records for failed conversions. Defaults to
	// the package Logger.
	Logger *zap.Logger
}

func resolveOptions(opts []Options) Options {
	var o Options
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.Labels == nil {
		o.Labels = DefaultLabelCache()
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Codec == nil {
		o.Codec = codec.JSONCodec{MaxDepth: o.MaxDepth}
	}
	if o.Logger == nil {
		o.Logger = Logger()
	}
	return o
}
