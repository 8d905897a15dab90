package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "lookup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestStoreGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpsertRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, CacheEntry{
		LookupHash: "abc",
		Payload:    `{"title":"heat"}`,
		TmdbID:     intPtr(949),
		Confidence: floatPtr(93),
	})
	require.NoError(t, err)

	entry, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", entry.LookupHash)
	assert.Equal(t, `{"title":"heat"}`, entry.Payload)
	require.NotNil(t, entry.TmdbID)
	assert.Equal(t, 949, *entry.TmdbID)
	require.NotNil(t, entry.Confidence)
	assert.Equal(t, 93.0, *entry.Confidence)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.False(t, entry.UpdatedAt.IsZero())
}

func TestStoreUpsertOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := CacheEntry{LookupHash: "abc", Payload: "{}", TmdbID: intPtr(1), Confidence: floatPtr(50)}
	require.NoError(t, s.Upsert(ctx, entry))

	entry.TmdbID = intPtr(2)
	entry.Confidence = floatPtr(90)
	require.NoError(t, s.Upsert(ctx, entry))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, *got.TmdbID)
	assert.Equal(t, 90.0, *got.Confidence)

	// Overwrite in place, never duplicate.
	var count int
	require.NoError(t, s.conn.QueryRow(`SELECT COUNT(*) FROM lookup_cache`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStoreNegativeResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A stored "no confident match" has nil id and confidence.
	require.NoError(t, s.Upsert(ctx, CacheEntry{LookupHash: "nomatch", Payload: "{}"}))

	entry, err := s.Get(ctx, "nomatch")
	require.NoError(t, err)
	assert.Nil(t, entry.TmdbID)
	assert.Nil(t, entry.Confidence)
}

func TestStoreUnavailableAfterClose(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "lookup.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
