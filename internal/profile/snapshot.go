package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// SnapshotStore keeps the local copy of each profile as one JSON file.
// It is the source of truth when the remote mirror is unreachable.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates dir if needed and returns a store rooted there.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}
	return &SnapshotStore{dir: dir}, nil
}

func (s *SnapshotStore) path(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".json")
}

// Load returns the snapshot for email, or nil, nil when there is none.
func (s *SnapshotStore) Load(email string) (*UserProfile, error) {
	data, err := os.ReadFile(s.path(email))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot for %s: %w", email, err)
	}

	var p UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot for %s: %w", email, err)
	}
	return &p, nil
}

// Save atomically replaces the snapshot for p.Email.
func (s *SnapshotStore) Save(p UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling snapshot for %s: %w", p.Email, err)
	}

	target := s.path(p.Email)
	f, err := os.CreateTemp(s.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot for %s: %w", p.Email, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("writing snapshot for %s: %w", p.Email, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing snapshot for %s: %w", p.Email, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing snapshot for %s: %w", p.Email, err)
	}
	return nil
}
