package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{
			name: "memory",
			open: func(t *testing.T) Store { return NewMemoryStore() },
		},
		{
			name: "badger in-memory",
			open: func(t *testing.T) Store {
				s, err := OpenBadger(":memory:")
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "badger on disk",
			open: func(t *testing.T) Store {
				s, err := OpenBadger(t.TempDir())
				require.NoError(t, err)
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.open(t)
			defer func() { require.NoError(t, s.Close()) }()

			ctx := context.Background()

			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, s.Put(ctx, "user:1:badges", []byte("a")))
			require.NoError(t, s.Put(ctx, "user:1:completion", []byte("b")))
			require.NoError(t, s.Put(ctx, "user:2:badges", []byte("c")))

			got, err := s.Get(ctx, "user:1:badges")
			require.NoError(t, err)
			assert.Equal(t, []byte("a"), got)

			// Overwrite replaces the previous value.
			require.NoError(t, s.Put(ctx, "user:1:badges", []byte("a2")))
			got, err = s.Get(ctx, "user:1:badges")
			require.NoError(t, err)
			assert.Equal(t, []byte("a2"), got)

			keys, err := s.List(ctx, "user:1:")
			require.NoError(t, err)
			assert.Equal(t, []string{"user:1:badges", "user:1:completion"}, keys)

			require.NoError(t, s.Delete(ctx, "user:1:badges"))
			_, err = s.Get(ctx, "user:1:badges")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			// Deleting a missing key is not an error.
			require.NoError(t, s.Delete(ctx, "user:1:badges"))
		})
	}
}

func TestStore_ContextCancelled(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Put(ctx, "k", []byte("v")))
	_, err := s.Get(ctx, "k")
	assert.Error(t, err)
}
