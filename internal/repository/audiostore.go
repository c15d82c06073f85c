package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// AudioStore is the separate, larger-capacity binary store for recordings,
// keyed by result id. Kept apart from the metadata store because audio blobs
// are too large and numerous for the same fast key-value layer.
type AudioStore interface {
	Save(ctx context.Context, id string, data []byte) error
	// Load returns (nil, nil) when no blob is stored under id.
	Load(ctx context.Context, id string) ([]byte, error)
	// Delete is idempotent: removing a missing blob is a no-op.
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

const audioExtension = ".bin"

// Audio keys are result ids (ULIDs); anything else is rejected so a key can
// never escape the store directory.
var audioKeyPattern = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// fsAudioStore implements AudioStore on a local directory.
type fsAudioStore struct {
	dir string
}

// NewFSAudioStore creates the store directory if needed and returns a
// filesystem-backed AudioStore.
func NewFSAudioStore(dir string) (AudioStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio store directory %s: %w", dir, err)
	}
	return &fsAudioStore{dir: dir}, nil
}

func (s *fsAudioStore) path(id string) (string, error) {
	if !audioKeyPattern.MatchString(id) {
		return "", fmt.Errorf("invalid audio key: %q", id)
	}
	return filepath.Join(s.dir, id+audioExtension), nil
}

func (s *fsAudioStore) Save(_ context.Context, id string, data []byte) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write audio blob %s: %w", id, err)
	}
	return nil
}

func (s *fsAudioStore) Load(_ context.Context, id string) ([]byte, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audio blob %s: %w", id, err)
	}
	return data, nil
}

func (s *fsAudioStore) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete audio blob %s: %w", id, err)
	}
	return nil
}

func (s *fsAudioStore) DeleteAll(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to scan audio store directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), audioExtension) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to delete audio blob %s: %w", entry.Name(), err)
		}
	}
	return nil
}
