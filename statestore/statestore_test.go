/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package statestore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/test"

	"github.com/mikeb26/bracketmaker/bracket"
	"github.com/mikeb26/bracketmaker/internal"
)

func testStores(t *testing.T) map[string]*Store {
	ctx := context.Background()
	disk, err := Open(ctx, &internal.Config{
		Backend: internal.BackendDisk,
		DataDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Open disk: %v", err)
	}
	mem, err := Open(ctx, &internal.Config{Backend: internal.BackendMemory})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}

	return map[string]*Store{"disk": disk, "memory": mem}
}

func newState(t *testing.T, created time.Time) *bracket.State {
	t.Helper()
	st, err := bracket.CreateTournament([]string{"Ann", "Bob", "Cat", "Dan"}, 2,
		bracket.WithCreated(created))
	if err != nil {
		t.Fatalf("CreateTournament: %v", err)
	}
	return st
}

func TestBackendConformance(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			test.Cache(t, s.cache)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			st := newState(t, created)
			if err := s.Create(ctx, "spring", st); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if err := s.Create(ctx, "spring", st); !errors.Is(err, ErrExists) {
				t.Errorf("second Create error = %v; want ErrExists", err)
			}

			got, err := s.Load(ctx, "spring")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, st) {
				t.Errorf("Load = %+v; want %+v", got, st)
			}

			next, _, err := bracket.GenerateRoundPairings(st, nil)
			if err != nil {
				t.Fatalf("GenerateRoundPairings: %v", err)
			}
			if err := s.Save(ctx, "spring", next); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err = s.Load(ctx, "spring")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Round != 1 || !got.InRound {
				t.Errorf("reloaded round = %d inRound=%v; want 1 true",
					got.Round, got.InRound)
			}

			entries, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(entries) != 1 || entries[0].Name != "spring" ||
				entries[0].Round != 1 || !entries[0].Created.Equal(created) {
				t.Errorf("List = %+v", entries)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := New(httpcache.NewMemoryCache())
	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load error = %v; want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete error = %v; want ErrNotFound", err)
	}
}

func TestInvalidName(t *testing.T) {
	ctx := context.Background()
	s := New(httpcache.NewMemoryCache())
	st := newState(t, time.Now())
	for _, name := range []string{"", "../etc", "has space", ".hidden"} {
		if err := s.Save(ctx, name, st); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q) error = %v; want ErrInvalidName", name, err)
		}
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := New(httpcache.NewMemoryCache())
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"b", "a", "c"} {
		if err := s.Save(ctx, name, newState(t, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("Save(%v): %v", name, err)
		}
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete error = %v; want ErrNotFound", err)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if want := []string{"b", "c"}; !reflect.DeepEqual(names, want) {
		t.Errorf("List names = %v; want %v", names, want)
	}
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	s := New(httpcache.NewMemoryCache())
	var names []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("t%02d", i)
		names = append(names, name)
		if err := s.Save(ctx, name, newState(t, time.Now())); err != nil {
			t.Fatalf("Save(%v): %v", name, err)
		}
	}

	all, err := s.LoadAll(ctx, names)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != len(names) {
		t.Errorf("LoadAll returned %d tournaments; want %d", len(all),
			len(names))
	}

	_, err = s.LoadAll(ctx, append(names, "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadAll with missing error = %v; want ErrNotFound", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(httpcache.NewMemoryCache())
	if err := s.Save(ctx, "x", newState(t, time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("Save error = %v; want context.Canceled", err)
	}
}

// listingCache is a memory cache that can enumerate its keys.
type listingCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (c *listingCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *listingCache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = data
}

func (c *listingCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

func (c *listingCache) Keys() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for k := range c.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func TestReindex(t *testing.T) {
	ctx := context.Background()
	cache := &listingCache{m: make(map[string][]byte)}
	s := New(cache)
	created := time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)
	for i, name := range []string{"spring", "fall", "summer"} {
		st := newState(t, created.Add(time.Duration(i)*time.Hour))
		if err := s.Save(ctx, name, st); err != nil {
			t.Fatalf("Save(%v): %v", name, err)
		}
	}
	cache.Set(indexKey, []byte("{"))
	if _, err := s.List(ctx); err == nil {
		t.Fatalf("List with corrupt index succeeded")
	}

	index, err := s.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if len(index) != 3 {
		t.Fatalf("Reindex found %d tournaments; want 3", len(index))
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if want := []string{"spring", "fall", "summer"}; !reflect.DeepEqual(names, want) {
		t.Errorf("List names = %v; want %v", names, want)
	}

	mem := New(httpcache.NewMemoryCache())
	if _, err := mem.Reindex(ctx); !errors.Is(err, ErrNotListable) {
		t.Errorf("Reindex on memory cache error = %v; want ErrNotListable", err)
	}
}
