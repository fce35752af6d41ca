/* Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 */
package s3cache

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/gregjones/httpcache/test"
)

func testBucket(t *testing.T) string {
	bucket := os.Getenv("BRACKETMAKER_S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping test because BRACKETMAKER_S3_BUCKET is unset")
	}
	return bucket
}

func TestS3Cache(t *testing.T) {
	bucket := testBucket(t)
	// Initialize S3-backed cache
	cache := New(context.Background(), bucket, false, true)
	err := cache.Init()
	if err != nil {
		t.Skip(fmt.Sprintf("Skipping test due to lack of access to %v: %v",
			bucket, err))
	}

	test.Cache(t, cache)
}

func TestS3CacheWithGzip(t *testing.T) {
	bucket := testBucket(t)
	// Initialize S3-backed cache
	cache := New(context.Background(), bucket, true, true)
	err := cache.Init()
	if err != nil {
		t.Skip(fmt.Sprintf("Skipping test due to lack of access to %v: %v",
			bucket, err))
	}

	test.Cache(t, cache)
}

func TestS3CacheKeys(t *testing.T) {
	bucket := testBucket(t)
	cache := NewWithPrefix(context.Background(), bucket, "bracketmaker-test",
		true, true)
	if err := cache.Init(); err != nil {
		t.Skip(fmt.Sprintf("Skipping test due to lack of access to %v: %v",
			bucket, err))
	}

	cache.Set("tournament/keys-test", []byte("{}"))
	defer cache.Delete("tournament/keys-test")

	keys, err := cache.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	found := false
	for _, k := range keys {
		if k == "tournament/keys-test" {
			found = true
		}
	}
	if !found {
		t.Errorf("Keys() = %v; missing tournament/keys-test", keys)
	}
}

func TestObjectKeys(t *testing.T) {
	cases := []struct {
		name    string
		cache   *Cache
		key     string
		wantObj string
	}{
		{"readable", NewWithPrefix(context.Background(), "b", "/brackets/",
			false, false), "tournament/spring", "brackets/tournament/spring"},
		{"readable gzip", NewWithPrefix(context.Background(), "b", "brackets",
			true, false), "index", "brackets/index.gz"},
		{"hashed", New(context.Background(), "b", false, false),
			"https://example.com/roster", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			obj := c.cache.cacheKeyToObjectKey(c.key)
			if c.cache.hashKeys {
				if len(obj) != len("s3cache/")+32 {
					t.Errorf("hashed key %q has unexpected length", obj)
				}
				return
			}
			if obj != c.wantObj {
				t.Errorf("cacheKeyToObjectKey(%q) = %q; want %q", c.key, obj,
					c.wantObj)
			}
			back, ok := c.cache.objectKeyToCacheKey(obj)
			if !ok || back != c.key {
				t.Errorf("objectKeyToCacheKey(%q) = %q, %v; want %q", obj, back,
					ok, c.key)
			}
		})
	}
}
