package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
)

// document is the on-disk layout: flat localStorage-style keys.
type document struct {
	Version int                        `json:"version"`
	Values  map[string]json.RawMessage `json:"values"` // prefix+kind -> value
	Flags   map[string]string          `json:"flags"`
}

// Store is the Local adapter backed by a single JSON file. Every write rewrites
// the file atomically.
type Store struct {
	path string

	mu  sync.Mutex
	doc *document
}

var (
	_ storage.Local           = (*Store)(nil)
	_ storage.NamespaceLister = (*Store)(nil)
)

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = &document{
		Version: 1,
		Values:  map[string]json.RawMessage{},
		Flags:   map[string]string{},
	}
	return s.save()
}

func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'zentask init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Values == nil {
		doc.Values = map[string]json.RawMessage{}
	}
	if doc.Flags == nil {
		doc.Flags = map[string]string{}
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// save must be called with mu held.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func key(namespace string, kind models.Kind) string {
	return namespace + string(kind)
}

func (s *Store) Read(namespace string, kind models.Kind) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, false
	}
	v, ok := s.doc.Values[key(namespace, kind)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (s *Store) Write(namespace string, kind models.Kind, value []byte) {
	if !json.Valid(value) {
		logger.Error("Refusing to store invalid JSON", "namespace", namespace, "kind", kind)
		return
	}
	s.mutate(func(d *document) { d.Values[key(namespace, kind)] = append(json.RawMessage(nil), value...) })
}

func (s *Store) Remove(namespace string, kind models.Kind) {
	s.mutate(func(d *document) { delete(d.Values, key(namespace, kind)) })
}

func (s *Store) GetFlag(k string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return "", false
	}
	v, ok := s.doc.Flags[k]
	return v, ok
}

func (s *Store) SetFlag(k, value string) {
	s.mutate(func(d *document) { d.Flags[k] = value })
}

func (s *Store) ClearFlag(k string) {
	s.mutate(func(d *document) { delete(d.Flags, k) })
}

func (s *Store) mutate(fn func(*document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		logger.Warn("Local write before load", "path", s.path)
		return
	}
	fn(s.doc)
	if err := s.save(); err != nil {
		logger.Error("Local write failed", "path", s.path, "error", err)
	}
}

// Namespaces lists the namespaces with at least one stored category.
func (s *Store) Namespaces() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, storage.ErrNotLoaded
	}
	return namespacesOf(s.doc.Values), nil
}

func namespacesOf(values map[string]json.RawMessage) []string {
	seen := map[string]bool{}
	for k := range values {
		for _, kind := range models.AllKinds {
			if ns, ok := strings.CutSuffix(k, string(kind)); ok {
				seen[ns] = true
				break
			}
		}
	}
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}
