package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
)

// Local is an in-process Local adapter.
type Local struct {
	mu     sync.Mutex
	values map[string][]byte
	flags  map[string]string
}

var (
	_ storage.Local           = (*Local)(nil)
	_ storage.NamespaceLister = (*Local)(nil)
)

func NewLocal() *Local {
	return &Local{values: map[string][]byte{}, flags: map[string]string{}}
}

func (l *Local) Init() error           { return nil }
func (l *Local) Load() error           { return nil }
func (l *Local) Close() error          { return nil }
func (l *Local) GetConfigPath() string { return ":memory:" }

func (l *Local) Read(namespace string, kind models.Kind) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.values[namespace+string(kind)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (l *Local) Write(namespace string, kind models.Kind, value []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[namespace+string(kind)] = append([]byte(nil), value...)
}

func (l *Local) Remove(namespace string, kind models.Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.values, namespace+string(kind))
}

func (l *Local) GetFlag(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.flags[key]
	return v, ok
}

func (l *Local) SetFlag(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flags[key] = value
}

func (l *Local) ClearFlag(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.flags, key)
}

// Keys returns the number of stored category values.
func (l *Local) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.values)
}

func (l *Local) Namespaces() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := map[string]bool{}
	for k := range l.values {
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
	return out, nil
}
