package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_InsertIsIdempotent(t *testing.T) {
	c := NewContainer(nil)
	first := c.Insert(1, 3)
	second := c.Insert(1, 3)
	assert.Same(t, first, second)
}

func TestContainer_ExistsAndAt(t *testing.T) {
	c := NewContainer(nil)
	assert.False(t, c.Exists(2, 4))

	link := c.Insert(2, 4)
	link.HomoWeight.Store(10)
	link.HetroWeight.Store(3)

	assert.True(t, c.Exists(2, 4))
	assert.Equal(t, uint64(10), c.At(2, 4).Value())
}

func TestContainer_LinkMaxAbsentIsZero(t *testing.T) {
	c := NewContainer(nil)
	assert.Equal(t, uint64(0), c.LinkMax(0, 1))
}

func TestContainer_OutOfOrderPanics(t *testing.T) {
	c := NewContainer(nil)
	require.Panics(t, func() {
		c.Insert(5, 2)
	})
}

func TestContainer_IncidentPairs(t *testing.T) {
	c := NewContainer(nil)
	c.Insert(0, 1)
	c.Insert(1, 2)
	c.Insert(2, 3)

	pairs := c.IncidentPairs(1)
	require.Len(t, pairs, 2)

	seen := map[[2]uint64]bool{}
	for _, p := range pairs {
		seen[[2]uint64{p.Lower, p.Upper}] = true
	}
	assert.True(t, seen[[2]uint64{0, 1}])
	assert.True(t, seen[[2]uint64{1, 2}])
	assert.False(t, seen[[2]uint64{2, 3}])
}

func TestContainer_IncidentPairsEmpty(t *testing.T) {
	c := NewContainer(nil)
	assert.Empty(t, c.IncidentPairs(9))
}

func TestContainer_Iterate(t *testing.T) {
	c := NewContainer(nil)
	c.Insert(0, 1)
	c.Insert(2, 3)

	count := 0
	c.Iterate(func(lower, upper uint64, link *Link) {
		count++
		assert.NotNil(t, link)
	})
	assert.Equal(t, 2, count)
}
