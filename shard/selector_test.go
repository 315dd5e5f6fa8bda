package shard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashSelector_StableAndInRange(t *testing.T) {
	var s HashSelector
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("key-%d", i)
		idx := s.Index(key, 7)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 7)
		assert.Equal(t, idx, s.Index(key, 7), "same key must land on the same shard")
	}
}

func TestHashSelector_SpreadsKeys(t *testing.T) {
	var s HashSelector
	counts := make([]int, 4)
	for i := 0; i < 4000; i++ {
		counts[s.Index(fmt.Sprintf("k%d", i), 4)]++
	}
	for i, c := range counts {
		assert.Greater(t, c, 500, "shard %d is starved", i)
	}
}

func TestSelect(t *testing.T) {
	shards := []string{"a", "b", "c"}
	var s HashSelector
	got := Select[string](s, "some-key", shards)
	assert.Equal(t, shards[s.Index("some-key", 3)], got)
}
