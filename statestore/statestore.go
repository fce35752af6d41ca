/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package statestore persists named tournaments. It is written against the
// httpcache.Cache interface so that the same code serves the in-memory,
// local disk and S3 backends.
package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/bracketmaker/bracket"
	"github.com/mikeb26/bracketmaker/internal"
	"github.com/mikeb26/bracketmaker/s3cache"
)

var (
	ErrNotFound    = errors.New("tournament not found")
	ErrExists      = errors.New("tournament already exists")
	ErrInvalidName = errors.New("invalid tournament name")
	ErrNotListable = errors.New("backend cannot list its keys")
)

const (
	indexKey       = "index"
	stateKeyPrefix = "tournament/"
	maxParallel    = 8
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// Entry summarises one stored tournament.
type Entry struct {
	Name    string        `json:"name"`
	Created time.Time     `json:"created"`
	Updated time.Time     `json:"updated"`
	Round   int           `json:"round"`
	Phase   bracket.Phase `json:"phase"`
}

// Store saves and loads tournaments. Since httpcache.Cache cannot list its
// keys, an index of stored names is kept alongside the tournaments.
// Writes are serialised; reads of distinct tournaments may run in parallel.
type Store struct {
	cache httpcache.Cache
	mu    sync.Mutex
	now   func() time.Time
}

// KeyLister is implemented by backends that can enumerate their keys, such
// as s3cache.Cache.
type KeyLister interface {
	Keys() ([]string, error)
}

func New(cache httpcache.Cache) *Store {
	return &Store{cache: cache, now: time.Now}
}

// Open returns a Store over the backend selected by cfg.
func Open(ctx context.Context, cfg *internal.Config) (*Store, error) {
	switch cfg.Backend {
	case internal.BackendMemory:
		return New(httpcache.NewMemoryCache()), nil
	case internal.BackendDisk:
		dir := filepath.Join(cfg.DataDir, internal.StateKeyPrefix)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("statestore.open: %w", err)
		}
		return New(diskcache.New(dir)), nil
	case internal.BackendS3:
		cache := s3cache.NewWithPrefix(ctx, cfg.S3Bucket,
			internal.StateKeyPrefix, cfg.S3Gzip, true)
		if err := cache.Init(); err != nil {
			return nil, fmt.Errorf("statestore.open: %w", err)
		}
		return New(cache), nil
	}

	return nil, fmt.Errorf("statestore.open: unknown backend %q", cfg.Backend)
}

func checkName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q (letters, digits, '.', '_' and '-' only)",
			ErrInvalidName, name)
	}
	return nil
}

func stateKey(name string) string {
	return stateKeyPrefix + name
}

// Create saves st under a name that must not already be in use.
func (s *Store) Create(ctx context.Context, name string,
	st *bracket.State) error {

	return s.save(ctx, name, st, true)
}

// Save stores st under name, replacing any previous state.
func (s *Store) Save(ctx context.Context, name string,
	st *bracket.State) error {

	return s.save(ctx, name, st, false)
}

func (s *Store) save(ctx context.Context, name string, st *bracket.State,
	mustCreate bool) error {

	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("statestore.save: %v: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	pos := -1
	for i, e := range index {
		if e.Name == name {
			pos = i
			break
		}
	}
	if pos >= 0 && mustCreate {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}

	s.cache.Set(stateKey(name), data)

	entry := Entry{
		Name:    name,
		Created: st.Created,
		Updated: s.now(),
		Round:   st.Round,
		Phase:   st.Phase,
	}
	if pos >= 0 {
		index[pos] = entry
	} else {
		index = append(index, entry)
	}

	return s.storeIndex(index)
}

// Load returns the tournament stored under name.
func (s *Store) Load(ctx context.Context, name string) (*bracket.State, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, ok := s.cache.Get(stateKey(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	var st bracket.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("statestore.load: %v is corrupt: %w", name, err)
	}

	return &st, nil
}

// LoadAll loads several tournaments concurrently. It fails if any of them
// cannot be loaded.
func (s *Store) LoadAll(ctx context.Context,
	names []string) (map[string]*bracket.State, error) {

	out := make(map[string]*bracket.State, len(names))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, name := range names {
		g.Go(func() error {
			st, err := s.Load(gctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = st
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes the tournament stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	var kept []Entry
	for _, e := range index {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	_, stored := s.cache.Get(stateKey(name))
	if len(kept) == len(index) && !stored {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if !stored {
		log.Printf("statestore.delete: %v was indexed but had no state", name)
	}

	s.cache.Delete(stateKey(name))

	return s.storeIndex(kept)
}

// List returns every stored tournament, oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	index, err := s.loadIndex()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(index, func(i, j int) bool {
		if !index[i].Created.Equal(index[j].Created) {
			return index[i].Created.Before(index[j].Created)
		}
		return index[i].Name < index[j].Name
	})

	return index, nil
}

// Reindex rebuilds the index from the tournaments actually stored, for
// instance after the index object was lost or several writers raced. The
// backend must implement KeyLister.
func (s *Store) Reindex(ctx context.Context) ([]Entry, error) {
	lister, ok := s.cache.(KeyLister)
	if !ok {
		return nil, ErrNotListable
	}
	keys, err := lister.Keys()
	if err != nil {
		return nil, fmt.Errorf("statestore.reindex: %w", err)
	}
	var names []string
	for _, k := range keys {
		name, ok := strings.CutPrefix(k, stateKeyPrefix)
		if !ok || checkName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	states, err := s.LoadAll(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("statestore.reindex: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make(map[string]time.Time)
	old, err := s.loadIndex()
	if err != nil {
		log.Printf("statestore.reindex: discarding old index: %v", err)
	}
	for _, e := range old {
		updated[e.Name] = e.Updated
	}

	index := make([]Entry, 0, len(names))
	for _, name := range names {
		st := states[name]
		u, ok := updated[name]
		if !ok {
			u = s.now()
		}
		index = append(index, Entry{
			Name:    name,
			Created: st.Created,
			Updated: u,
			Round:   st.Round,
			Phase:   st.Phase,
		})
	}
	if len(old) != len(index) {
		log.Printf("statestore.reindex: index had %d entries; found %d tournaments",
			len(old), len(index))
	}

	return index, s.storeIndex(index)
}

// loadIndex must be called with s.mu held.
func (s *Store) loadIndex() ([]Entry, error) {
	data, ok := s.cache.Get(indexKey)
	if !ok {
		return nil, nil
	}
	var index []Entry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("statestore.index: corrupt index: %w", err)
	}

	return index, nil
}

func (s *Store) storeIndex(index []Entry) error {
	if index == nil {
		index = []Entry{}
	}
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("statestore.index: %w", err)
	}
	s.cache.Set(indexKey, data)

	return nil
}
