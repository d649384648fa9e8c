/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/peterbourgon/diskv"

	"github.com/mikeb26/meetday/s3store"
	"github.com/mikeb26/meetday/schedule"
)

var (
	ErrNotFound = errors.New("schedule not found")
	ErrConflict = errors.New("schedule changed concurrently")
)

const (
	keyPrefix = "schedule:"
	indexKey  = "index"

	maxUpdateAttempts = 5
)

// VersionedCache is a backend that can be shared by several processes. Each
// stored value carries a version, and SetIfVersion only writes when the
// stored version still matches; ok is false when it did not.
type VersionedCache interface {
	httpcache.Cache
	GetVersion(key string) (data []byte, version string, ok bool)
	SetIfVersion(key string, data []byte, version string) (ok bool, err error)
}

// Store persists time groups by key on top of any httpcache.Cache backend.
// Read-modify-write cycles go through Update, which serialises callers per
// key so concurrent state changes are never lost. Within one process that
// holds for every backend; across processes it needs a VersionedCache such
// as the S3 backend. Several processes must not share a disk store.
type Store struct {
	cache httpcache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	// serialises index maintenance
	indexMu sync.Mutex
}

func New(cache httpcache.Cache) *Store {
	return &Store{
		cache: cache,
		locks: make(map[string]*sync.Mutex),
	}
}

// NewMemory returns a Store that lives only as long as the process.
func NewMemory() *Store {
	return New(httpcache.NewMemoryCache())
}

// NewDisk returns a Store persisting under dir. Files are written to a
// temporary directory first and renamed into place, so readers never see a
// partial schedule. Nothing is cached in memory; the files are the truth.
func NewDisk(dir string) *Store {
	d := diskv.New(diskv.Options{
		BasePath:     dir,
		TempDir:      filepath.Join(dir, ".tmp"),
		CacheSizeMax: 0,
	})
	return New(diskcache.NewWithDiskv(d))
}

// NewS3 returns a Store persisting in an S3 bucket.
func NewS3(ctx context.Context, bucket string, gzip bool) (*Store, error) {
	cache := s3store.New(ctx, bucket, gzip, true)
	if err := cache.Init(); err != nil {
		return nil, err
	}
	return New(cache), nil
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get fetches the time group stored under key.
func (s *Store) Get(key string) (*schedule.TimeGroup, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	return s.get(key)
}

func (s *Store) get(key string) (*schedule.TimeGroup, error) {
	data, ok := s.cache.Get(keyPrefix + key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return decode(key, data)
}

func decode(key string, data []byte) (*schedule.TimeGroup, error) {
	var tg schedule.TimeGroup
	if err := json.Unmarshal(data, &tg); err != nil {
		return nil, fmt.Errorf("store.get: corrupt schedule %q: %w", key, err)
	}
	return &tg, nil
}

// Put replaces the time group stored under key.
func (s *Store) Put(key string, tg *schedule.TimeGroup) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	return s.put(key, tg)
}

func (s *Store) put(key string, tg *schedule.TimeGroup) error {
	data, err := json.Marshal(tg)
	if err != nil {
		return fmt.Errorf("store.put: unable to encode schedule %q: %w", key, err)
	}
	s.cache.Set(keyPrefix+key, data)
	s.addToIndex(key)
	return nil
}

// Update runs fn on the stored time group and persists the result. The
// whole fetch-mutate-store cycle holds the key's lock. Nothing is persisted
// when fn fails.
//
// On a VersionedCache the write only lands when no other process wrote the
// key since it was read. Otherwise the cycle starts over from a fresh read,
// so fn may run more than once and must not depend on earlier runs.
func (s *Store) Update(key string, fn func(tg *schedule.TimeGroup) error) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	vc, ok := s.cache.(VersionedCache)
	if !ok {
		tg, err := s.get(key)
		if err != nil {
			return err
		}
		if err := fn(tg); err != nil {
			return err
		}
		if err := s.put(key, tg); err != nil {
			log.Printf("store.update: %v", err)
			return err
		}
		return nil
	}

	for attempt := 1; ; attempt++ {
		data, version, found := vc.GetVersion(keyPrefix + key)
		if !found {
			return fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		tg, err := decode(key, data)
		if err != nil {
			return err
		}
		if err := fn(tg); err != nil {
			return err
		}
		data, err = json.Marshal(tg)
		if err != nil {
			return fmt.Errorf("store.update: unable to encode schedule %q: %w",
				key, err)
		}
		written, err := vc.SetIfVersion(keyPrefix+key, data, version)
		if err != nil {
			log.Printf("store.update: %v", err)
			return err
		}
		if written {
			return nil
		}
		if attempt == maxUpdateAttempts {
			return fmt.Errorf("%w: %q after %d attempts", ErrConflict, key,
				attempt)
		}
		log.Printf("store.update: %q changed concurrently; retrying", key)
	}
}

// Delete removes the time group stored under key.
func (s *Store) Delete(key string) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	s.cache.Delete(keyPrefix + key)
	s.removeFromIndex(key)
}

// Keys returns the keys of all stored time groups, sorted.
func (s *Store) Keys() []string {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	return s.readIndex()
}

func (s *Store) readIndex() []string {
	data, ok := s.cache.Get(indexKey)
	if !ok {
		return []string{}
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		log.Printf("store.index: ignoring corrupt index: %v", err)
		return []string{}
	}
	return keys
}

func (s *Store) writeIndex(keys []string) {
	sort.Strings(keys)
	data, err := json.Marshal(keys)
	if err != nil {
		log.Printf("store.index: unable to encode index: %v", err)
		return
	}
	s.cache.Set(indexKey, data)
}

func (s *Store) addToIndex(key string) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	keys := s.readIndex()
	for _, k := range keys {
		if k == key {
			return
		}
	}
	s.writeIndex(append(keys, key))
}

func (s *Store) removeFromIndex(key string) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	keys := s.readIndex()
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	s.writeIndex(out)
}
