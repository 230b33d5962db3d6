package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/config/typed"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds settings in a map. Commands that run without a config
// directory use it, and so do the service tests.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
	saves  int
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// NewConfigStoreFrom seeds the store with dotted keys such as "llm.model".
func NewConfigStoreFrom(values map[string]any) *ConfigStore {
	s := NewConfigStore()
	maps.Copy(s.values, values)
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
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

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save persists nothing. It only counts calls.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

// Saves reports how many times Save ran.
func (s *ConfigStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
