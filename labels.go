package dynbridge

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/reoring/dynbridge/value"
)

// LabelCache maps constant label text (field names, enum tags) to dynamic
// string values so repeated conversions reuse the same handle.
//
// Implementations must be safe for concurrent use. Interning the same text
// twice must yield values that compare equal.
type LabelCache interface {
	Intern(label string) value.Value
}

// LabelTable is the default LabelCache: lookups are lock-free, inserts are
// serialized so each label is materialized once.
type LabelTable struct {
	m  sync.Map // string -> value.Value
	mu sync.Mutex
	n  atomic.Int64
}

// NewLabelCache returns an empty LabelTable.
func NewLabelCache() *LabelTable {
	return &LabelTable{}
}

// Intern returns the string value for label, creating it on first use.
func (t *LabelTable) Intern(label string) value.Value {
	if v, ok := t.m.Load(label); ok {
		return v.(value.Value)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.m.Load(label); ok {
		return v.(value.Value)
	}
	v := value.String(label)
	t.m.Store(label, v)
	t.n.Add(1)
	Logger().Debug("label interned", zap.String("label", label), zap.Int64("entries", t.n.Load()))
	return v
}

// Len reports the number of distinct labels interned so far.
func (t *LabelTable) Len() int {
	return int(t.n.Load())
}

type noLabelCache struct{}

func (noLabelCache) Intern(label string) value.Value { return value.String(label) }

// NoLabelCache returns a LabelCache that materializes every label afresh.
func NoLabelCache() LabelCache { return noLabelCache{} }

var defaultLabels = NewLabelCache()

// DefaultLabelCache returns the process-wide cache used when Options.Labels
// is nil.
func DefaultLabelCache() *LabelTable { return defaultLabels }
