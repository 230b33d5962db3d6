package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults
var defaultsFS embed.FS

const (
	promptExt  = ".txt"
	readmeName = "README.md"
)

// ErrUnknownPrompt is returned for a name with no file and no built-in default.
var ErrUnknownPrompt = errors.New("unknown prompt")

// verbPattern matches fmt verbs, skipping escaped percent signs.
var verbPattern = regexp.MustCompile(`%[-+# 0]*[0-9]*(?:\.[0-9]+)?[a-zA-Z%]`)

// PromptStore serves LLM prompt templates that users may edit on disk.
//
// The prompt directory is populated with the built-in templates on the first
// Load, never earlier. A user file overrides its built-in template only when
// it keeps the same placeholders in the same order.
type PromptStore struct {
	dir string

	initOnce sync.Once
	initErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// An empty dir selects the prompts directory under DefaultDir.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template for name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.seed)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	builtin, hasDefault := builtinPrompt(name)
	if s.initErr != nil {
		if hasDefault {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	prompt, err := s.readUser(name)
	switch {
	case err != nil && !hasDefault:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		prompt = builtin
	case hasDefault && !samePlaceholders(prompt, builtin):
		logger.Warn("prompt %s changes its placeholders, using the built-in prompt", name)
		prompt = builtin
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// seed writes any missing built-in files into the prompt directory.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	entries, err := fs.ReadDir(defaultsFS, "defaults")
	if err != nil {
		s.initErr = err
		return
	}
	for _, e := range entries {
		target := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		data, err := defaultsFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			s.initErr = err
			return
		}
		if err := os.WriteFile(target, data, 0600); err != nil {
			s.initErr = fmt.Errorf("write %s: %w", e.Name(), err)
			return
		}
	}
}

func (s *PromptStore) readUser(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || name == readmeName {
		return "", ErrUnknownPrompt
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// builtinPrompt returns the embedded template for name.
func builtinPrompt(name string) (string, bool) {
	data, err := defaultsFS.ReadFile("defaults/" + name + promptExt)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// placeholders lists the fmt verbs of a template in order.
func placeholders(tmpl string) []string {
	var verbs []string
	for _, v := range verbPattern.FindAllString(tmpl, -1) {
		if v != "%%" {
			verbs = append(verbs, v)
		}
	}
	return verbs
}

func samePlaceholders(a, b string) bool {
	return slices.Equal(placeholders(a), placeholders(b))
}
