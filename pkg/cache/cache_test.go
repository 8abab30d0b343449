package cache_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/adrianliechti/t101/pkg/cache"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := cache.Key(cache.Request{
		Text:            "Hello",
		VoiceID:         "voice",
		ModelID:         "model",
		Stability:       0.5,
		SimilarityBoost: 0.75,
	})

	b := cache.Key(cache.Request{
		SimilarityBoost: 0.75,
		Stability:       0.5,
		ModelID:         "model",
		VoiceID:         "voice",
		Text:            "Hello",
	})

	require.Equal(t, a, b)
	require.NotContains(t, a, "/")

	c := cache.Key(cache.Request{
		Text:            "Hello",
		VoiceID:         "voice",
		ModelID:         "model",
		Stability:       0.6,
		SimilarityBoost: 0.75,
	})

	require.NotEqual(t, a, c)
}

func TestPutGet(t *testing.T) {
	c, err := cache.New(t.TempDir())
	require.NoError(t, err)

	key := cache.Key(cache.Request{Text: "Hello"})

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put(key, []byte("audio")))

	data, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("audio"), data)

	stats := c.Stats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
}

func TestCompression(t *testing.T) {
	dir := t.TempDir()

	c, err := cache.New(dir, cache.WithCompression(3))
	require.NoError(t, err)

	audio := bytes.Repeat([]byte("frame"), 4096)
	key := cache.Key(cache.Request{Text: "compressed"})

	require.NoError(t, c.Put(key, audio))

	info, err := os.Stat(dir + "/" + key + ".mp3.zst")
	require.NoError(t, err)
	require.Less(t, info.Size(), int64(len(audio)))

	// a reader without compression still finds compressed entries
	r, err := cache.New(dir)
	require.NoError(t, err)

	data, ok, err := r.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, audio, data)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()

	c, err := cache.New(dir)
	require.NoError(t, err)

	require.NoError(t, c.Put(cache.Key(cache.Request{Text: "a"}), []byte("a")))
	require.NoError(t, c.Put(cache.Key(cache.Request{Text: "b"}), []byte("b")))
	require.NoError(t, os.WriteFile(dir+"/keep.txt", []byte("x"), 0644))

	removed, err := c.Clear()
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	_, err = os.Stat(dir + "/keep.txt")
	require.NoError(t, err)
}
