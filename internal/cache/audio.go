package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/citywalk/internal/audio"
)

// BlobStore is the durable payload storage behind the audio index.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// AudioCache is the content-addressed narration store. Payloads go to the
// blob store; Redis keeps the (hash, language) to AssetRef index. References
// are immutable, so they are also kept in an in-process freecache.
type AudioCache struct {
	client   *redis.Client
	blobs    BlobStore
	local    *freecache.Cache
	baseURL  string
	now      func() time.Time
	observer LookupObserver
}

// NewAudioCache constructs an AudioCache. localMB <= 0 disables the
// in-process layer. observer may be nil.
func NewAudioCache(client *redis.Client, blobs BlobStore, baseURL string, localMB int, observer LookupObserver) *AudioCache {
	c := &AudioCache{
		client:   client,
		blobs:    blobs,
		baseURL:  baseURL,
		now:      time.Now,
		observer: observer,
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if localMB > 0 {
		c.local = freecache.NewCache(localMB * 1024 * 1024)
	}
	return c
}

func audioKey(text, lang string) string {
	return "audio:" + audio.Key(text, lang)
}

// BlobName is the blob-store name of the payload for hash in lang.
func BlobName(hash, lang string) string {
	return hash + "_" + langPart(lang)
}

// Get returns the reference stored for text in lang, or nil, nil.
func (c *AudioCache) Get(ctx context.Context, text, lang string) (*audio.AssetRef, error) {
	key := audioKey(text, lang)

	if c.local != nil {
		if val, err := c.local.Get([]byte(key)); err == nil {
			var ref audio.AssetRef
			if json.Unmarshal(val, &ref) == nil {
				c.observer.CacheLookup("audio", "local_hit")
				return &ref, nil
			}
		}
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.observer.CacheLookup("audio", "miss")
			return nil, nil
		}
		c.observer.CacheLookup("audio", "error")
		return nil, fmt.Errorf("audio cache get: %w", err)
	}

	var ref audio.AssetRef
	if err := json.Unmarshal(val, &ref); err != nil {
		c.observer.CacheLookup("audio", "error")
		return nil, fmt.Errorf("unmarshaling audio ref: %w", err)
	}
	c.remember(key, val)
	c.observer.CacheLookup("audio", "hit")
	return &ref, nil
}

// Put uploads pcm and records its reference. If the pair is already
// stored, the existing reference is returned and pcm is discarded.
func (c *AudioCache) Put(ctx context.Context, text, lang, cityHint string, pcm []byte) (*audio.AssetRef, error) {
	if existing, err := c.Get(ctx, text, lang); err == nil && existing != nil {
		return existing, nil
	}

	hash := audio.Hash(text)
	language := langPart(lang)
	if err := c.blobs.Put(ctx, BlobName(hash, language), pcm); err != nil {
		return nil, fmt.Errorf("uploading narration payload: %w", err)
	}

	ref := &audio.AssetRef{
		Hash:      hash,
		Language:  language,
		City:      cityHint,
		URL:       fmt.Sprintf("%s/api/v1/audio/%s/%s", c.baseURL, hash, language),
		Bytes:     len(pcm),
		CreatedAt: c.now().UTC(),
	}
	b, err := json.Marshal(ref)
	if err != nil {
		return nil, fmt.Errorf("marshaling audio ref: %w", err)
	}

	key := audioKey(text, lang)
	stored, err := c.client.SetNX(ctx, key, b, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("audio cache set: %w", err)
	}
	if !stored {
		// Another writer recorded this pair first; its reference wins.
		existing, err := c.Get(ctx, text, lang)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	c.remember(key, b)
	return ref, nil
}

// Payload returns the raw PCM stored for hash in lang.
func (c *AudioCache) Payload(ctx context.Context, hash, lang string) ([]byte, error) {
	return c.blobs.Get(ctx, BlobName(hash, lang))
}

func (c *AudioCache) remember(key string, val []byte) {
	if c.local != nil {
		_ = c.local.Set([]byte(key), val, 0)
	}
}
