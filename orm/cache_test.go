package orm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *gorm.DB {
	// A named in-memory database per test keeps tests isolated.
	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	return db
}

func TestCacheEntry(t *testing.T) {
	db := SetupTestDB(t)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, SetCacheEntry(db, "k1", []byte(`{"data":[]}`), time.Minute, now))

	entry, err := GetCacheEntry(db, "k1", now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"data":[]}`), entry.Value)

	_, err = GetCacheEntry(db, "k1", now.Add(2*time.Minute))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Upsert replaces value and expiry.
	require.NoError(t, SetCacheEntry(db, "k1", []byte("v2"), time.Hour, now))
	entry, err = GetCacheEntry(db, "k1", now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), entry.Value)

	require.NoError(t, CleanupCache(db, now.Add(2*time.Hour)))
	var count int64
	db.Model(&APICache{}).Count(&count)
	assert.Zero(t, count)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore(SetupTestDB(t))
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)

	store.Set(ctx, "k", []byte("v"), time.Minute)
	store.Set(ctx, "zero-ttl", []byte("v"), 0)

	v, ok := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	_, ok = store.Get(ctx, "zero-ttl")
	assert.False(t, ok)

	now = now.Add(time.Hour)
	_, ok = store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("redis", "localhost:6379")
	assert.Error(t, err)
}
