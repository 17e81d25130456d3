package dynbridge_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/dynbridge"
	"github.com/reoring/dynbridge/value"
)

func TestLabelTable_InternsOnce(t *testing.T) {
	labels := dynbridge.NewLabelCache()
	opts := dynbridge.Options{Labels: labels}

	_, err := dynbridge.ToValue(Point{X: 1, Y: 2}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, labels.Len())

	_, err = dynbridge.ToValue([]Point{{}, {}, {}}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, labels.Len())

	_, err = dynbridge.ToValue(Shape{Empty: &struct{}{}}, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, labels.Len())

	_, err = dynbridge.FromValue[Point](obj("x", num(1)), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, labels.Len())

	a := labels.Intern("x")
	b := labels.Intern("x")
	assert.True(t, value.SameValueZero(a, b))
}

func TestNoLabelCache(t *testing.T) {
	v, err := dynbridge.ToValue(Point{X: 1}, dynbridge.Options{Labels: dynbridge.NoLabelCache()})
	require.NoError(t, err)
	assert.True(t, value.Equal(obj("x", num(1), "y", num(0)), v))
}

func TestLabelTable_ConcurrentIntern(t *testing.T) {
	labels := dynbridge.NewLabelCache()
	const workers, distinct = 16, 100

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < distinct; i++ {
				name := fmt.Sprintf("field_%d", i)
				s, ok := labels.Intern(name).AsString()
				if !ok || s != name {
					return fmt.Errorf("intern %q returned %q", name, s)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, distinct, labels.Len())
}

func TestConcurrentConversions(t *testing.T) {
	b := dynbridge.New(dynbridge.Options{Labels: dynbridge.NewLabelCache()})

	var g errgroup.Group
	g.SetLimit(8)
	for i := 0; i < 64; i++ {
		g.Go(func() error {
			in := Order{ID: uint64(i), Items: []Item{{SKU: fmt.Sprint(i), Qty: uint8(i)}}, Tags: map[string]int{}, Payload: []byte{}}
			v, err := b.ToValue(in)
			if err != nil {
				return err
			}
			out, err := dynbridge.DecodeAs[Order](b, v)
			if err != nil {
				return err
			}
			if out.ID != in.ID || out.Items[0] != in.Items[0] {
				return fmt.Errorf("round trip %d: got %+v", i, out)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
