package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/citywalk/internal/audio"
	"github.com/neexbeast/citywalk/internal/tour"
)

// ErrEmptyKey is returned by Put when the city normalizes to nothing.
var ErrEmptyKey = errors.New("city normalizes to an empty cache key")

const scanBatch = 100

// TourCache stores generated tours in Redis, keyed by normalized city and
// language. Entries never expire; writes replace the whole list.
type TourCache struct {
	client   *redis.Client
	observer LookupObserver
}

// NewTourCache constructs a TourCache. observer may be nil.
func NewTourCache(client *redis.Client, observer LookupObserver) *TourCache {
	if observer == nil {
		observer = nopObserver{}
	}
	return &TourCache{client: client, observer: observer}
}

// langPart is the key form of a language. It contains only [a-z0-9-], so
// it can never act as a glob.
func langPart(lang string) string {
	return audio.NormalizeLanguage(lang)
}

// tourKey returns the Redis key for a normalized city key and language.
func tourKey(lang, normalized string) string {
	return "tours:" + langPart(lang) + ":" + normalized
}

// Get returns the cached tours for city/country in lang. An exact key match
// wins; otherwise any key for the same language whose city portion starts
// with the normalized city is used, preferring the shortest such key.
// Returns nil, nil on a miss.
func (c *TourCache) Get(ctx context.Context, city, country, lang string) ([]tour.Tour, error) {
	normalized := tour.NormalizeKey(city, country)
	if normalized == "" {
		c.observer.CacheLookup("tours", "miss")
		return nil, nil
	}

	tours, err := c.load(ctx, tourKey(lang, normalized))
	if err != nil {
		c.observer.CacheLookup("tours", "error")
		return nil, fmt.Errorf("cache get for city %s: %w", city, err)
	}
	if tours != nil {
		c.observer.CacheLookup("tours", "hit")
		return tours, nil
	}

	prefixKey, err := c.findPrefix(ctx, lang, tour.NormalizeKey(city, ""))
	if err != nil {
		c.observer.CacheLookup("tours", "error")
		return nil, fmt.Errorf("cache prefix scan for city %s: %w", city, err)
	}
	if prefixKey == "" {
		c.observer.CacheLookup("tours", "miss")
		return nil, nil
	}

	tours, err = c.load(ctx, prefixKey)
	if err != nil {
		c.observer.CacheLookup("tours", "error")
		return nil, fmt.Errorf("cache get for city %s: %w", city, err)
	}
	if tours == nil {
		c.observer.CacheLookup("tours", "miss")
		return nil, nil
	}
	c.observer.CacheLookup("tours", "prefix_hit")
	return tours, nil
}

// load reads and decodes a single key. Returns nil, nil when absent.
func (c *TourCache) load(ctx context.Context, key string) ([]tour.Tour, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var tours []tour.Tour
	if err := json.Unmarshal(val, &tours); err != nil {
		return nil, fmt.Errorf("unmarshaling cached tours %s: %w", key, err)
	}
	if len(tours) == 0 {
		return nil, nil
	}
	return tours, nil
}

// findPrefix scans for keys of lang whose city part starts with prefix.
func (c *TourCache) findPrefix(ctx context.Context, lang, prefix string) (string, error) {
	if prefix == "" {
		return "", nil
	}

	var keys []string
	iter := c.client.Scan(ctx, 0, tourKey(lang, prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", nil
	}

	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys[0], nil
}

// Put stores tours under the fully normalized key, replacing any previous
// entry.
func (c *TourCache) Put(ctx context.Context, city, country, lang string, tours []tour.Tour) error {
	normalized := tour.NormalizeKey(city, country)
	if normalized == "" {
		return ErrEmptyKey
	}
	if len(tours) == 0 {
		return nil
	}

	b, err := json.Marshal(tours)
	if err != nil {
		return fmt.Errorf("marshaling tours for city %s: %w", city, err)
	}

	if err := c.client.Set(ctx, tourKey(lang, normalized), b, 0).Err(); err != nil {
		return fmt.Errorf("cache set for city %s: %w", city, err)
	}
	return nil
}

// Delete removes the exact entry for city/country in lang.
func (c *TourCache) Delete(ctx context.Context, city, country, lang string) error {
	normalized := tour.NormalizeKey(city, country)
	if normalized == "" {
		return nil
	}
	if err := c.client.Del(ctx, tourKey(lang, normalized)).Err(); err != nil {
		return fmt.Errorf("cache delete for city %s: %w", city, err)
	}
	return nil
}
