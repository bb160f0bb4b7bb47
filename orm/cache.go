package orm

import (
	"context"
	"errors"
	"time"

	"github.com/va6996/travelingman-mcp/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// APICache stores cached API responses
type APICache struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte // Raw JSON
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

// GetCacheEntry retrieves a valid cache entry
func GetCacheEntry(db *gorm.DB, key string, now time.Time) (*APICache, error) {
	var entry APICache
	err := db.Where(&APICache{Key: key}).Where("expires_at > ?", now).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetCacheEntry upserts a cache entry
func SetCacheEntry(db *gorm.DB, key string, value []byte, ttl time.Duration, now time.Time) error {
	entry := APICache{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
}

// CleanupCache removes expired entries
func CleanupCache(db *gorm.DB, now time.Time) error {
	return db.Where("expires_at < ?", now).Delete(&APICache{}).Error
}

// Store adapts the cache table to the Amadeus response cache contract.
// Database failures are logged and treated as misses.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	entry, err := GetCacheEntry(s.db.WithContext(ctx), key, s.now())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf(ctx, "Cache lookup failed: %v", err)
		}
		return nil, false
	}
	return entry.Value, true
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := SetCacheEntry(s.db.WithContext(ctx), key, value, ttl, s.now()); err != nil {
		log.Warnf(ctx, "Cache write failed: %v", err)
	}
}
