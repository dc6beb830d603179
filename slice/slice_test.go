package slice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFind(t *testing.T) {
	input := []int{1, 4, 6, 8}

	got, ok := Find(input, func(v int) bool { return v%2 == 0 })
	assert.True(t, ok)
	assert.Equal(t, 4, got, "first match wins")

	_, ok = Find(input, func(v int) bool { return v > 10 })
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	got := Filter([]int{5, 2, 7, 4}, func(v int) bool { return v < 6 })
	assert.Equal(t, []int{5, 2, 4}, got)

	empty := Filter([]int{1}, func(v int) bool { return false })
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMap(t *testing.T) {
	got := Map([]int{1, 2}, func(v int) string { return string(rune('a' + v)) })
	assert.Equal(t, []string{"b", "c"}, got)
}
