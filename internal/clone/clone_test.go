package clone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cloneFixture struct {
	Name     string
	Children []*cloneFixture
}

func TestJSONCloner_DeepCopiesNestedPointers(t *testing.T) {
	c := NewJSONCloner[*cloneFixture]()
	original := &cloneFixture{Name: "root", Children: []*cloneFixture{{Name: "child"}}}

	cloned, err := c.Clone(original)
	require.NoError(t, err)

	cloned.Children[0].Name = "mutated"
	assert.Equal(t, "child", original.Children[0].Name)
	assert.NotSame(t, original, cloned)
	assert.NotSame(t, original.Children[0], cloned.Children[0])
}

func TestMustClone_PanicsOnUnmarshalableValue(t *testing.T) {
	c := NewJSONCloner[chan int]()
	assert.Panics(t, func() {
		MustClone[chan int](c, make(chan int))
	})
}
