package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDottedComparator_LessThan(t *testing.T) {
	c := NewDottedComparator()
	assert.True(t, c.LessThan("0.4.2", "1.0.0"))
	assert.False(t, c.LessThan("1.2.0", "1.0.0"))
	assert.False(t, c.LessThan("1.0.0", "1.0.0"))
}

func TestDottedComparator_StripsRangeMarkers(t *testing.T) {
	c := NewDottedComparator()
	assert.Equal(t, 0, c.Compare("^2.0.0", "2.0.0"))
	assert.Equal(t, 0, c.Compare("~0.3.0", "0.3.0"))
}

func TestDottedComparator_Compare(t *testing.T) {
	c := NewDottedComparator()
	assert.Equal(t, -1, c.Compare("0.2.0", "0.3.0"))
	assert.Equal(t, 1, c.Compare("0.3.0", "0.2.0"))
	assert.Equal(t, 0, c.Compare("1.0.0", "1.0.0"))
}
