package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(f.ctrl)

	s := reg.Create()
	got, err := reg.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, reg.Len())

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_GetOrCreate(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(f.ctrl)

	s, created := reg.GetOrCreate("")
	assert.True(t, created)

	again, created := reg.GetOrCreate(s.ID())
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := reg.GetOrCreate("stale-id")
	assert.True(t, created)
	assert.NotEqual(t, "stale-id", other.ID())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(f.ctrl)

	a := reg.Create()
	b := reg.Create()
	a.Login(testContext(t), goodKey)

	assert.True(t, a.Unlocked())
	assert.False(t, b.Unlocked())
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(f.ctrl)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := reg.Create()
			_, err := reg.Get(s.ID())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, reg.Len())
}
