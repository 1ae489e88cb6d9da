package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReplace(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.Current())
	assert.Equal(t, uint64(0), s.Version())

	var calls []State
	cancel := s.Subscribe(func(next State, version uint64) {
		calls = append(calls, next)
	})
	defer cancel()

	require.NoError(t, s.Replace(State{"a", "b"}))
	assert.Equal(t, State{"a", "b"}, s.Current())
	assert.Equal(t, uint64(1), s.Version())
	assert.Len(t, calls, 1)
}

func TestStoreReplaceEqualIsNoop(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Replace(State{"a", "b"}))

	notified := 0
	s.Subscribe(func(State, uint64) { notified++ })

	require.NoError(t, s.Replace(State{"a", "b"}))
	assert.Equal(t, 0, notified)
	assert.Equal(t, uint64(1), s.Version())
}

func TestStoreRejectsDuplicates(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Replace(State{"a", "b", "c"}))

	notified := 0
	s.Subscribe(func(State, uint64) { notified++ })

	err := s.Replace(State{"a", "b", "a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateIdentifier))

	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "a", dup.ID)

	assert.Equal(t, State{"a", "b", "c"}, s.Current())
	assert.Equal(t, 0, notified)
}

func TestStoreCurrentIsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Replace(State{"a", "b"}))

	cur := s.Current()
	cur[0] = "z"
	assert.Equal(t, State{"a", "b"}, s.Current())
}

func TestStoreUnsubscribe(t *testing.T) {
	s := NewStore()

	var order []int
	cancelFirst := s.Subscribe(func(State, uint64) { order = append(order, 1) })
	s.Subscribe(func(State, uint64) { order = append(order, 2) })

	require.NoError(t, s.Replace(State{"a"}))
	cancelFirst()
	require.NoError(t, s.Replace(State{"b"}))

	assert.Equal(t, []int{1, 2, 2}, order)
}
