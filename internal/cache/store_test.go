package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", []byte(`{"records":{},"type":"local"}`)))
	require.NoError(t, s.Save(ctx, "b", []byte(`{"records":{},"type":"local"}`)))
	require.NoError(t, s.Save(ctx, "a", []byte(`{"records":{"x":{"value":1,"use_count":0}},"type":"local"}`)))

	data, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.JSONEq(t, `{"records":{"x":{"value":1,"use_count":0}},"type":"local"}`, string(data["a"]))

	require.NoError(t, s.Clear(ctx))

	data, err = s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "buckets.db")

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_DurableAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "buckets.db")

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)

	c := New(WithLocalStore(s))
	c.Set("choices", "k", "v", SetOptions{BucketType: BucketLocal})
	c.Get("choices", "k")
	require.NoError(t, c.Persist(ctx))
	require.NoError(t, s.Close())

	s2, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	c2 := New(WithLocalStore(s2))
	require.NoError(t, c2.Restore(ctx))
	assert.Equal(t, 1, c2.UseCount("choices", "k"))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore("redis://"+mr.Addr(), "session-1", time.Hour)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestRedisStore_NamespacedAndExpiring(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	s1, err := NewRedisStore("redis://"+mr.Addr(), "one", time.Minute)
	require.NoError(t, err)
	defer s1.Close()

	s2, err := NewRedisStore("redis://"+mr.Addr(), "two", time.Minute)
	require.NoError(t, err)
	defer s2.Close()

	require.NoError(t, s1.Save(ctx, "edges", []byte(`{}`)))
	require.NoError(t, s2.Save(ctx, "edges", []byte(`{}`)))

	require.NoError(t, s1.Clear(ctx))

	data, err := s2.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, data, 1, "clearing one session leaves the other")

	mr.FastForward(2 * time.Minute)

	data, err = s2.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore("not a url", "x", 0)
	assert.Error(t, err)
}
