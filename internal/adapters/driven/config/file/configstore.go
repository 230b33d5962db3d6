package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/config/typed"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	appDirName     = ".sercha-lens"
	configFileName = "config.toml"
)

// DefaultDir is ~/.sercha-lens, home to config.toml, prompts/, data/ and
// the default library/.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigStore keeps config.toml in memory as flat dotted keys and writes it
// back as nested tables.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	data map[string]any
}

// NewConfigStore opens dir/config.toml, creating dir when needed. An empty
// dir selects DefaultDir. A missing file is an empty config.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, configFileName)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *ConfigStore) value(key string) any {
	v, _ := s.Get(key)
	return v
}

func (s *ConfigStore) GetString(key string) string        { return typed.String(s.value(key)) }
func (s *ConfigStore) GetInt(key string) int              { return typed.Int(s.value(key)) }
func (s *ConfigStore) GetFloat(key string) float64        { return typed.Float(s.value(key)) }
func (s *ConfigStore) GetBool(key string) bool            { return typed.Bool(s.value(key)) }
func (s *ConfigStore) GetStringSlice(key string) []string { return typed.StringSlice(s.value(key)) }

// Set updates key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.write()
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write replaces the file through a temp file in the same directory, so a
// crash mid-write never leaves a truncated config. Callers hold mu.
func (s *ConfigStore) write() error {
	body, err := toml.Marshal(nest(s.data))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), configFileName+".*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load rereads the file, dropping unsaved changes.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var tables map[string]any
	if err := toml.Unmarshal(body, &tables); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.data = flatten(tables, "")
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}
