package sequence

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedSetKeepsInsertionOrder(t *testing.T) {
	s := NewOrderedSet[int](4)
	for _, v := range []int{3, 1, 2} {
		assert.True(t, s.Add(v))
	}
	assert.False(t, s.Add(1), "duplicate add must be rejected")
	assert.Equal(t, []int{3, 1, 2}, s.AppendTo(nil))
	assert.Equal(t, 3, s.Len())
}

func TestOrderedSetRemove(t *testing.T) {
	var s OrderedSet[string]
	s.Add("a")
	s.Add("b")
	s.Add("c")

	assert.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))
	assert.False(t, s.Contains("b"))
	assert.Equal(t, []string{"a", "c"}, slices.Collect(s.All()))

	s.Add("b")
	assert.Equal(t, []string{"a", "c", "b"}, s.AppendTo(nil))
}

func TestOrderedSetCompactsTombstones(t *testing.T) {
	s := NewOrderedSet[int](0)
	for i := 0; i < 200; i++ {
		s.Add(i)
	}
	for i := 0; i < 190; i++ {
		require.True(t, s.Remove(i))
	}
	assert.Equal(t, 10, s.Len())
	assert.Less(t, len(s.slots), 200, "tombstones should have been reclaimed")

	want := make([]int, 0, 10)
	for i := 190; i < 200; i++ {
		want = append(want, i)
		assert.True(t, s.Contains(i))
	}
	assert.Equal(t, want, s.AppendTo(nil))
}

func TestOrderedSetClear(t *testing.T) {
	s := NewOrderedSet[int](2)
	s.Add(1)
	s.Add(2)
	s.Remove(1)
	s.Clear()

	assert.Zero(t, s.Len())
	assert.Empty(t, s.AppendTo(nil))
	assert.True(t, s.Add(1))
}

func TestOrderedSetAppendReusesBuffer(t *testing.T) {
	s := NewOrderedSet[int](2)
	s.Add(7)
	buf := make([]int, 0, 8)
	out := s.AppendTo(buf[:0])
	assert.Equal(t, []int{7}, out)
	assert.Equal(t, cap(buf), cap(out))
}
