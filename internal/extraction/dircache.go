package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirCache implements the Cache interface with one JSON file per entry
type DirCache struct {
	basePath string
}

// NewDirCache creates the directory if needed
func NewDirCache(basePath string) (*DirCache, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &DirCache{
		basePath: basePath,
	}, nil
}

// path maps a key to a file name; keys contain ':' which some filesystems reject
func (d *DirCache) path(key string) string {
	return filepath.Join(d.basePath, strings.ReplaceAll(key, ":", "_")+".json")
}

// Get reads an entry from disk
func (d *DirCache) Get(key string) (*CacheEntry, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}
	return &entry, nil
}

// Put writes an entry to disk, replacing any previous one atomically
func (d *DirCache) Put(entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(d.basePath, ".entry-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path(entry.Key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming file: %w", err)
	}
	return nil
}

// Delete removes an entry; deleting a missing entry is not an error
func (d *DirCache) Delete(key string) error {
	if err := os.Remove(d.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// Close is a no-op for the filesystem
func (d *DirCache) Close() error {
	return nil
}
