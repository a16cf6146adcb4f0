// Package configstore persists the primary node URL in a JSON state file.
package configstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/fd1az/nodepulse/business/node/app"
	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/logger"
)

// NodeURLKey is the state file key. Viper matches it case-insensitively and
// writes it lowercased.
const NodeURLKey = "NODE_API_URL"

// Store reads and writes the node URL.
type Store struct {
	path       string
	defaultURL string
	logger     logger.LoggerInterface
	mu         sync.Mutex
}

var _ app.NodeURLStore = (*Store)(nil)

// New creates a store for path. A missing file is created with defaultURL
// on first Load.
func New(path, defaultURL string, log logger.LoggerInterface) *Store {
	return &Store{path: path, defaultURL: defaultURL, logger: log}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() (*viper.Viper, bool, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return v, false, nil
		}
		return nil, false, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(s.path),
			apperror.WithCause(err))
	}
	return v, true, nil
}

func (s *Store) write(v *viper.Viper) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperror.New(apperror.CodeConfigPersistFailed, apperror.WithContext(s.path), apperror.WithCause(err))
		}
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return apperror.New(apperror.CodeConfigPersistFailed, apperror.WithContext(s.path), apperror.WithCause(err))
	}
	return nil
}

// Load returns the persisted URL, creating the file with the default when
// it does not exist yet. Failing to create the file is logged and the
// default is still returned.
func (s *Store) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found, err := s.read()
	if err != nil {
		return "", err
	}

	if url := v.GetString(NodeURLKey); found && url != "" {
		return url, nil
	}

	v.Set(NodeURLKey, s.defaultURL)
	if err := s.write(v); err != nil {
		s.logger.Warn(ctx, "state file not written, using default node url",
			"path", s.path, "url", s.defaultURL, "error", err)
	}
	return s.defaultURL, nil
}

// Save persists url, keeping any other keys in the file.
func (s *Store) Save(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, _, err := s.read()
	if err != nil {
		return err
	}

	v.Set(NodeURLKey, url)
	return s.write(v)
}
