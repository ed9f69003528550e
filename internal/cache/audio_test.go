package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/citywalk/internal/audio"
	"github.com/neexbeast/citywalk/internal/blob"
	"github.com/neexbeast/citywalk/internal/cache"
)

func newAudioCache(t *testing.T, localMB int, obs cache.LookupObserver) *cache.AudioCache {
	t.Helper()
	client, _ := newRedis(t)
	blobs, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })
	return cache.NewAudioCache(client, blobs, "https://walk.example", localMB, obs)
}

func TestAudioCache_PutThenGet(t *testing.T) {
	c := newAudioCache(t, 0, nil)
	ctx := context.Background()
	pcm := []byte{1, 2, 3, 4, 5, 6}

	ref, err := c.Put(ctx, "Bienvenidos a la Plaza Mayor.", "es", "Madrid", pcm)
	require.NoError(t, err)
	hash := audio.Hash("Bienvenidos a la Plaza Mayor.")
	assert.Equal(t, hash, ref.Hash)
	assert.Equal(t, "es", ref.Language)
	assert.Equal(t, "Madrid", ref.City)
	assert.Equal(t, len(pcm), ref.Bytes)
	assert.Equal(t, "https://walk.example/api/v1/audio/"+hash+"/es", ref.URL)

	got, err := c.Get(ctx, "Bienvenidos a la Plaza Mayor.", "ES")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ref.URL, got.URL)

	payload, err := c.Payload(ctx, hash, "es")
	require.NoError(t, err)
	assert.Equal(t, pcm, payload)
}

func TestAudioCache_SecondPutKeepsFirstReference(t *testing.T) {
	c := newAudioCache(t, 0, nil)
	ctx := context.Background()

	first, err := c.Put(ctx, "hola", "es", "Madrid", []byte{1, 1})
	require.NoError(t, err)
	second, err := c.Put(ctx, "hola", "es", "Sevilla", []byte{2, 2, 2})
	require.NoError(t, err)

	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, "Madrid", second.City)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	payload, err := c.Payload(ctx, first.Hash, "es")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1}, payload)
}

func TestAudioCache_TextAndLanguageAreExact(t *testing.T) {
	c := newAudioCache(t, 0, nil)
	ctx := context.Background()

	_, err := c.Put(ctx, "hola", "es", "", []byte{1})
	require.NoError(t, err)

	got, err := c.Get(ctx, "hola.", "es")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, "hola", "en")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAudioCache_LocalLayer(t *testing.T) {
	obs := &recordingObserver{}
	c := newAudioCache(t, 1, obs)
	ctx := context.Background()

	got, err := c.Get(ctx, "hello", "en")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = c.Put(ctx, "hello", "en", "", []byte{9})
	require.NoError(t, err)

	got, err = c.Get(ctx, "hello", "en")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"audio:miss", "audio:miss", "audio:local_hit"}, obs.results)
}

func TestAudioCache_PayloadUnknown(t *testing.T) {
	c := newAudioCache(t, 0, nil)
	_, err := c.Payload(context.Background(), audio.Hash("never"), "es")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestAudioCache_ImplementsNarratorStore(t *testing.T) {
	c := newAudioCache(t, 0, nil)
	n := audio.NewNarrator(c, synthFunc(func() []byte { return []byte{7, 7} }), nil, discardLogger())

	ref, err := n.Narrate(context.Background(), "Torre del Oro", "es", "Sevilla")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ref.CreatedAt, time.Minute)
}

func TestBlobName(t *testing.T) {
	assert.Equal(t, "abc_pt-br", cache.BlobName("abc", "PT-BR"))
	assert.Equal(t, "abc_en", cache.BlobName("abc", "en*"))
	assert.Equal(t, "abc_pt-br", cache.BlobName("abc", "pt_BR"))
}

func TestAudioCache_LanguageVariantsShareOneEntry(t *testing.T) {
	c := newAudioCache(t, 0, nil)
	ctx := context.Background()
	hash := audio.Hash("olá")

	underscored, err := c.Put(ctx, "olá", "pt_BR", "Lisboa", []byte{1, 1})
	require.NoError(t, err)
	dashed, err := c.Put(ctx, "olá", "PT-br", "Lisboa", []byte{2, 2})
	require.NoError(t, err)
	assert.Equal(t, underscored.URL, dashed.URL)

	joined, err := c.Put(ctx, "olá", "ptbr", "Lisboa", []byte{3, 3})
	require.NoError(t, err)
	assert.NotEqual(t, underscored.URL, joined.URL)

	payload, err := c.Payload(ctx, hash, "pt-br")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1}, payload, "a distinct language never overwrites the stored payload")

	payload, err = c.Payload(ctx, hash, "ptbr")
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 3}, payload)
}
