// Package settings persists user preferences between runs.
//
// A [Store] is a flat key/value map backed by a human-editable file. The
// format follows the extension: ".toml" files are TOML, everything else is
// YAML. Nested tables in a hand-written file are flattened into dotted keys
// on load ("render: {border: 0.02}" becomes "render.border").
//
// Settings are explicit state: the CLI loads them once before a command
// runs and stores them after a successful command that modified them.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/google/renameio"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoPath is wrapped by LoadError and StoreError when the store has
	// no file path.
	ErrNoPath = errors.New("no settings file given")

	// ErrIsDirectory is wrapped when the settings path is a directory.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrParentIsFile is wrapped by StoreError when the parent of the
	// settings path exists as a regular file.
	ErrParentIsFile = errors.New("parent directory exists as a file")
)

// LoadError reports a settings file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load settings %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// StoreError reports a settings file that could not be written.
type StoreError struct {
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("could not store settings %q: %v", e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *Store) { s.logger = l } }

// WithOpener replaces os.OpenFile for reading and writing the file.
func WithOpener(o Opener) Option { return func(s *Store) { s.open = o } }

// WithOpenRetry overrides OpenRetryInterval and OpenTimeout.
func WithOpenRetry(interval, timeout time.Duration) Option {
	return func(s *Store) { s.interval, s.timeout = interval, timeout }
}

// Store holds settings in memory and syncs them with a file.
// It is safe for concurrent use.
type Store struct {
	path     string
	logger   *log.Logger
	open     Opener
	interval time.Duration
	timeout  time.Duration

	mu       sync.RWMutex
	data     map[string]any
	modified bool
}

// New returns an empty store for the file at path. Nothing is read until
// Load is called.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		open:     os.OpenFile,
		interval: OpenRetryInterval,
		timeout:  OpenTimeout,
		data:     make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

func (s *Store) isTOML() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".toml")
}

// Load replaces the in-memory settings with the file contents. The current
// values are cleared even if loading fails.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.data)
	s.modified = false

	fail := func(err error) error { return &LoadError{Path: s.path, Err: err} }
	if s.path == "" {
		return fail(ErrNoPath)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return fail(err)
	}
	if info.IsDir() {
		return fail(ErrIsDirectory)
	}

	f, err := openRetry(s.open, s.interval, s.timeout, s.logger, s.path, os.O_RDONLY, 0)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return fail(err)
	}
	doc := make(map[string]any)
	if s.isTOML() {
		err = toml.Unmarshal(raw, &doc)
	} else {
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return fail(err)
	}
	flatten("", doc, s.data)

	s.logger.Debug("loaded settings", "path", s.path, "keys", len(s.data))
	return nil
}

// flatten copies src into dst, joining nested map keys with dots.
func flatten(prefix string, src map[string]any, dst map[string]any) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if m, ok := v.(map[string]any); ok {
			flatten(key, m, dst)
			continue
		}
		dst[key] = v
	}
}

// Store writes the settings to the file, creating its directory if needed.
func (s *Store) Store() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fail := func(err error) error { return &StoreError{Path: s.path, Err: err} }
	if s.path == "" {
		return fail(ErrNoPath)
	}
	if info, err := os.Stat(s.path); err == nil && info.IsDir() {
		return fail(ErrIsDirectory)
	}
	dir := filepath.Dir(s.path)
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return fail(ErrParentIsFile)
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return fail(err)
	}

	var buf bytes.Buffer
	if s.isTOML() {
		if err := toml.NewEncoder(&buf).Encode(s.data); err != nil {
			return fail(err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s.data); err != nil {
			return fail(err)
		}
		if err := enc.Close(); err != nil {
			return fail(err)
		}
	}

	// Wait until no other program holds the file, then replace it
	// atomically so an interrupted write never leaves a truncated file.
	f, err := openRetry(s.open, s.interval, s.timeout, s.logger, s.path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fail(err)
	}
	f.Close()
	if err := renameio.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fail(err)
	}
	s.modified = false
	s.logger.Debug("stored settings", "path", s.path, "keys", len(s.data))
	return nil
}

// Modified reports whether the settings changed since the last Load or
// Store.
func (s *Store) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.modified = true
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	delete(s.data, key)
	s.modified = s.modified || ok
	return ok
}

// SetDefault stores each value whose key is not set yet.
func (s *Store) SetDefault(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		if _, ok := s.data[k]; !ok {
			s.data[k] = v
			s.modified = true
		}
	}
}

// Update stores every value, overwriting existing keys.
func (s *Store) Update(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.data, values)
	s.modified = s.modified || len(values) > 0
}

// Keys returns the sorted keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// GetString returns the string stored under key.
func (s *Store) GetString(key string) (string, bool) {
	v, ok := s.Get(key)
	str, isStr := v.(string)
	return str, ok && isStr
}

// GetFloat returns the number stored under key as a float64.
func (s *Store) GetFloat(key string) (float64, bool) {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// GetInt returns the integral number stored under key.
func (s *Store) GetInt(key string) (int, bool) {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// GetBool returns the boolean stored under key.
func (s *Store) GetBool(key string) (bool, bool) {
	v, ok := s.Get(key)
	b, isBool := v.(bool)
	return b, ok && isBool
}

func (s *Store) String() string {
	var sb strings.Builder
	for i, k := range s.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _ := s.Get(k)
		fmt.Fprintf(&sb, "%s: %v", k, v)
	}
	return fmt.Sprintf("<settings %s: {%s}>", s.path, sb.String())
}

// ParseValue interprets a command line value the way YAML would, so "0.02"
// becomes a number, "true" a boolean and anything else a string.
func ParseValue(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case int, float64, bool, string:
		return v
	}
	return s
}
