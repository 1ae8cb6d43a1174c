package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WessleyAI/sportscar-dash/engine/filter"
)

func TestStore_CreateGetPut(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	id := s.Create(filter.Selection{Make: "Audi", Years: []int{2020}})
	assert.True(t, ValidID(id))

	sel, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, filter.Selection{Make: "Audi", Years: []int{2020}}, sel)

	sel.SelectModel("R8")
	s.Put(id, sel)
	got, _ := s.Get(id)
	assert.Equal(t, "R8", string(got.Model))

	_, ok = s.Get("nope")
	assert.False(t, ok)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	in := filter.Selection{Years: []int{2020, 2021}}
	id := s.Create(in)
	in.Years[0] = 1999

	a, _ := s.Get(id)
	a.Years[1] = 1888
	b, _ := s.Get(id)
	assert.Equal(t, []int{2020, 2021}, b.Years)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	first := s.Create(filter.Selection{Make: "Audi"})
	second := s.Create(filter.Selection{Make: "BMW"})
	_, _ = s.Get(first)
	s.Create(filter.Selection{Make: "Ferrari"})

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(second)
	assert.False(t, ok)
	_, ok = s.Get(first)
	assert.True(t, ok)

	s.Delete(first)
	assert.Equal(t, 1, s.Len())
}

func TestStore_DefaultCapacity(t *testing.T) {
	s, err := New(0)
	require.NoError(t, err)
	for i := 0; i < DefaultCapacity+10; i++ {
		s.Create(filter.Selection{})
	}
	assert.Equal(t, DefaultCapacity, s.Len())
}

func TestStore_Concurrent(t *testing.T) {
	s, err := New(64)
	require.NoError(t, err)
	id := s.Create(filter.Selection{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sel, _ := s.Get(id)
			sel.SelectYears([]int{2000 + i})
			s.Put(id, sel)
			s.Create(filter.Selection{Make: "m"})
		}(i)
	}
	wg.Wait()
	sel, ok := s.Get(id)
	require.True(t, ok)
	assert.Len(t, sel.Years, 1, fmt.Sprint(sel.Years))
}

func TestValidID(t *testing.T) {
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("not-a-uuid"))
}
