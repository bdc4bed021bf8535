// Package history persists the dashboard's search history in a bbolt
// database. Entries are keyed chronologically so a reverse cursor walk
// yields newest-first without sorting.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// DefaultRecentLimit is how many unique cities Recent returns when the
// caller does not ask for a specific count.
const DefaultRecentLimit = 5

var bucketSearches = []byte("search_history")

// ErrMissingFields is returned by Append when required entry fields are empty.
var ErrMissingFields = errors.New("city_name and search_query are required")

// Entry is one recorded search.
type Entry struct {
	ID          string    `json:"id"`
	CityName    string    `json:"city_name"`
	SearchQuery string    `json:"search_query"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
	SearchedAt  time.Time `json:"searched_at"`
}

// Store wraps a bbolt database holding search history.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path. Parent directories are
// created automatically.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSearches)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// entryKey orders entries by search time; the ID suffix keeps keys unique
// when two searches land in the same nanosecond.
func entryKey(e Entry) []byte {
	return []byte(fmt.Sprintf("%020d|%s", e.SearchedAt.UTC().UnixNano(), e.ID))
}

// Append records a search and returns the stored entry. A missing ID or
// timestamp is filled in.
func (s *Store) Append(e Entry) (Entry, error) {
	if e.CityName == "" || e.SearchQuery == "" {
		return Entry{}, ErrMissingFields
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SearchedAt.IsZero() {
		e.SearchedAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding entry: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSearches).Put(entryKey(e), data)
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Recent returns up to limit entries, newest first, keeping only the most
// recent search per city name.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	seen := make(map[string]bool)
	entries := []Entry{}

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSearches).Cursor()
		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decoding entry %s: %w", k, err)
			}
			if seen[e.CityName] {
				continue
			}
			seen[e.CityName] = true
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear removes all recorded searches.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketSearches); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketSearches)
		return err
	})
}

// Prune removes entries older than maxAge and, beyond that, trims the store
// to the maxEntries newest entries. A zero value disables the respective
// bound. Returns the number of entries removed.
func (s *Store) Prune(maxAge time.Duration, maxEntries int) (int, error) {
	removed := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSearches)

		var cutoffKey []byte
		if maxAge > 0 {
			cutoff := time.Now().UTC().Add(-maxAge)
			cutoffKey = []byte(fmt.Sprintf("%020d", cutoff.UnixNano()))
		}

		over := 0
		if maxEntries > 0 {
			if total := b.Stats().KeyN; total > maxEntries {
				over = total - maxEntries
			}
		}

		var stale [][]byte
		i := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if i < over || (cutoffKey != nil && bytes.Compare(k, cutoffKey) < 0) {
				stale = append(stale, append([]byte(nil), k...))
			}
			i++
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
