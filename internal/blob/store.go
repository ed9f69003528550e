package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/klauspost/compress/zstd"
)

// ErrNotFound is returned by Get for an unknown name.
var ErrNotFound = errors.New("blob not found")

var validName = regexp.MustCompile(`^[a-z0-9_-]+$`)

// FileStore keeps zstd-compressed blobs as files under a directory.
// Writes are atomic: a blob is either fully present or absent.
type FileStore struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob dir %s: %w", dir, err)
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &FileStore{dir: dir, encoder: encoder, decoder: decoder}, nil
}

func (s *FileStore) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(s.dir, name+".zst"), nil
}

// Put stores data under name, replacing any previous blob.
func (s *FileStore) Put(_ context.Context, name string, data []byte) error {
	target, err := s.path(name)
	if err != nil {
		return err
	}

	compressed := s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	f, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp blob %s: %w", name, err)
	}
	tmp := f.Name()
	if _, err := f.Write(compressed); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("writing blob %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing blob %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("committing blob %s: %w", name, err)
	}
	return nil
}

// Get returns the decompressed blob stored under name.
func (s *FileStore) Get(_ context.Context, name string) ([]byte, error) {
	target, err := s.path(name)
	if err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading blob %s: %w", name, err)
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing blob %s: %w", name, err)
	}
	return data, nil
}

// Close releases the encoder and decoder.
func (s *FileStore) Close() error {
	s.decoder.Close()
	return s.encoder.Close()
}
