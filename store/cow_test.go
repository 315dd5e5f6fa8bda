package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/wardrobe-cache/types"
)

func TestCOW_PutGetOverwrite(t *testing.T) {
	s := NewCOW[int]()
	t0 := time.Unix(100, 0)

	s.Put("a", types.TimedEntry[int]{Value: 1, WrittenAt: t0})
	s.Put("a", types.TimedEntry[int]{Value: 2, WrittenAt: t0.Add(time.Second)})

	ent, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, ent.Value)
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestCOW_SnapshotIsolation(t *testing.T) {
	s := NewCOW[string]()
	s.Put("a", types.TimedEntry[string]{Value: "x"})
	snapshot := *s.data.Load()

	s.Put("b", types.TimedEntry[string]{Value: "y"})
	s.Delete("a")

	assert.Len(t, snapshot, 1, "readers holding an old snapshot must not see later writes")
	assert.Equal(t, []string{"b"}, s.Keys())
}

func TestCOW_DeleteFuncAndClear(t *testing.T) {
	s := NewCOW[int]()
	for i := 0; i < 10; i++ {
		s.Put(fmt.Sprintf("k%d", i), types.TimedEntry[int]{Value: i})
	}

	removed := s.DeleteFunc(func(_ string, e types.TimedEntry[int]) bool { return e.Value%2 == 0 })
	assert.Equal(t, 5, removed)
	assert.Equal(t, 5, s.Len())

	assert.Equal(t, 0, s.DeleteFunc(func(string, types.TimedEntry[int]) bool { return false }))

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())
}

func TestCOW_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	s := NewCOW[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Put(fmt.Sprintf("k%d", i), types.TimedEntry[int]{Value: i})
			_, _ = s.Get("k0")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
