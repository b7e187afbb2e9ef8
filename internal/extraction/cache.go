package extraction

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/zombor/docscan/internal/scanning"
)

// ErrCacheMiss is returned by Cache.Get when no entry exists for a key
var ErrCacheMiss = errors.New("cache miss")

// CacheEntry is a recognized document kept so the same upload is not sent to OCR twice
type CacheEntry struct {
	Key      string             `json:"key"`
	Reader   string             `json:"reader"`
	Result   scanning.OCRResult `json:"result"`
	CachedAt time.Time          `json:"cached_at"`
}

// Cache defines the interface for OCR result caching
type Cache interface {
	// Get retrieves an entry by key, or ErrCacheMiss
	Get(key string) (*CacheEntry, error)

	// Put stores an entry under its key
	Put(entry *CacheEntry) error

	// Delete removes an entry
	Delete(key string) error

	// Close releases the backing store
	Close() error
}

// CacheKey identifies a document as read by a specific reader
func CacheKey(data []byte, reader string) string {
	sum := sha256.Sum256(data)
	return reader + ":" + hex.EncodeToString(sum[:])
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(string) (*CacheEntry, error) { return nil, ErrCacheMiss }
func (NopCache) Put(*CacheEntry) error           { return nil }
func (NopCache) Delete(string) error             { return nil }
func (NopCache) Close() error                    { return nil }
