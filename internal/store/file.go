package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

const lockRetryDelay = 50 * time.Millisecond

// fileState is the on-disk layout of a FileStore
type fileState struct {
	Credentials *models.Credentials `toml:"credentials,omitempty"`
	Token       *models.Token       `toml:"token,omitempty"`
}

// FileStore keeps state in a TOML file guarded by a lock file, so several
// processes can share one token.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore creates a FileStore at path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the location of the state file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) GetCredentials(ctx context.Context) (models.Credentials, error) {
	state, err := s.read(ctx)
	if err != nil || state.Credentials == nil {
		return models.Credentials{}, err
	}
	return *state.Credentials, nil
}

func (s *FileStore) GetCachedToken(ctx context.Context) (*models.Token, error) {
	state, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return state.Token, nil
}

func (s *FileStore) SaveToken(ctx context.Context, token models.Token) error {
	return s.update(ctx, func(state *fileState) {
		state.Token = &token
	})
}

func (s *FileStore) ClearToken(ctx context.Context) error {
	return s.update(ctx, func(state *fileState) {
		state.Token = nil
	})
}

func (s *FileStore) SaveCredentials(ctx context.Context, creds models.Credentials) error {
	return s.update(ctx, func(state *fileState) {
		if state.Credentials == nil || *state.Credentials != creds {
			state.Token = nil
		}
		state.Credentials = &creds
	})
}

func (s *FileStore) Close() error {
	return s.lock.Close()
}

func (s *FileStore) read(ctx context.Context) (*fileState, error) {
	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock state file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("lock state file: %s is busy", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.load()
}

func (s *FileStore) update(ctx context.Context, mutate func(*fileState)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock state file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock state file: %s is busy", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()

	state, err := s.load()
	if err != nil {
		return err
	}
	mutate(state)

	data, err := toml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	// Write then rename so readers never observe a half-written file
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	logger := config.GetLogger()
	logger.Debug().Str("path", s.path).Msg("State file updated")
	return nil
}

func (s *FileStore) load() (*fileState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &fileState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state fileState
	if err := toml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", s.path, err)
	}
	return &state, nil
}
