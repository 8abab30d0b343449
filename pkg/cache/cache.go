package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
)

const (
	extension           = ".mp3"
	compressedExtension = ".mp3.zst"
)

type Cache struct {
	dir string

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	hits   atomic.Int64
	misses atomic.Int64
}

type Stats struct {
	Hits   int64
	Misses int64
}

type Option func(*Cache) error

// WithCompression stores new entries zstd-compressed at the given level (1-22).
func WithCompression(level int) Option {
	return func(c *Cache) error {
		if level <= 0 {
			return nil
		}

		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))

		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}

		c.encoder = encoder

		return nil
	}
}

func New(dir string, options ...Option) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	decoder, err := zstd.NewReader(nil)

	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	c := &Cache{
		dir:     dir,
		decoder: decoder,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Get returns the audio stored under key. A missing entry is not an error.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, key+extension))

	if err == nil {
		c.hits.Add(1)
		return data, true, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	data, err = os.ReadFile(filepath.Join(c.dir, key+compressedExtension))

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.misses.Add(1)
			return nil, false, nil
		}

		return nil, false, err
	}

	data, err = c.decoder.DecodeAll(data, nil)

	if err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}

	c.hits.Add(1)

	return data, true, nil
}

// Put writes data under key. Concurrent writers of the same key race benignly:
// both write identical bytes and the last rename wins.
func (c *Cache) Put(key string, data []byte) error {
	name := key + extension

	if c.encoder != nil {
		name = key + compressedExtension
		data = c.encoder.EncodeAll(data, nil)
	}

	f, err := os.CreateTemp(c.dir, ".tmp-*")

	if err != nil {
		return err
	}

	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), filepath.Join(c.dir, name))
}

// Clear removes every entry and returns the number of files deleted.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)

	if err != nil {
		return 0, err
	}

	var removed int
	var errs []error

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()

		if !strings.HasSuffix(name, extension) && !strings.HasSuffix(name, compressedExtension) {
			continue
		}

		if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
			errs = append(errs, err)
			continue
		}

		removed++
	}

	return removed, errors.Join(errs...)
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
