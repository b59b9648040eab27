package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
)

// DefaultFileName is the session file inside the placement config directory.
const DefaultFileName = "session.json"

// fileRecord is the on-disk format.
type fileRecord struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	SavedAt      time.Time `json:"savedAt"`
}

// FileStore persists tokens as one JSON file. Writes go through a temp file and
// rename so a reader never sees a half-written pair.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// DefaultPath returns ~/.placement/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileReadFailed, "cannot locate home directory", err)
	}
	return filepath.Join(home, ".placement", DefaultFileName), nil
}

// Path returns the file the store reads and writes.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the persisted pair. A missing file or one with an empty half yields (nil, nil).
func (f *FileStore) Load() (*domain.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", f.path), err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.NewFileUnmarshalError(f.path, "JSON", err)
	}

	tokens := &domain.Tokens{AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken}
	if !tokens.Valid() {
		return nil, nil
	}
	return tokens, nil
}

// SavedAt returns when the persisted pair was written, or the zero time if there is none.
func (f *FileStore) SavedAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return time.Time{}
	}
	var rec fileRecord
	if json.Unmarshal(data, &rec) != nil {
		return time.Time{}
	}
	return rec.SavedAt
}

// Save writes tokens atomically with mode 0600.
func (f *FileStore) Save(tokens domain.Tokens) error {
	if !tokens.Valid() {
		return errors.New(errors.ErrCodeValidation, "refusing to persist an incomplete token pair")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to create %s", dir), err)
	}

	data, err := json.MarshalIndent(fileRecord{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		SavedAt:      f.now().UTC(),
	}, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to encode session", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to set session file mode", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write session", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write session", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to replace %s", f.path), err)
	}
	return nil
}

// Clear removes the session file. Removing a missing file is not an error.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to remove %s", f.path), err)
	}
	return nil
}
