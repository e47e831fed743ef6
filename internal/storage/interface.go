package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/julianstephens/zentask/internal/models"
)

// ErrNotLoaded is returned by lifecycle-dependent calls made before Init or Load.
var ErrNotLoaded = errors.New("storage not loaded")

// ErrUsernameTaken is returned when a profile write collides with another
// account's username.
var ErrUsernameTaken = errors.New("username is already taken")

// Local is the synchronous, always-available cache. Reads and writes never fail
// the caller: errors are logged and a failed read is reported as absent.
type Local interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Namespaced category values
	Read(namespace string, kind models.Kind) ([]byte, bool)
	Write(namespace string, kind models.Kind, value []byte)
	Remove(namespace string, kind models.Kind)

	// Un-namespaced flags (guest marker, persisted session)
	GetFlag(key string) (string, bool)
	SetFlag(key, value string)
	ClearFlag(key string)

	// Utils
	GetConfigPath() string
}

// NamespaceLister is implemented by local adapters that can enumerate the
// namespaces they hold.
type NamespaceLister interface {
	Namespaces() ([]string, error)
}

// Document is one entity of a remote collection: its key and its body without
// the identifier field.
type Document struct {
	ID   string
	Body json.RawMessage
}

// Remote is the per-user document store.
type Remote interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Collections (kind != profile)
	ListDocuments(ctx context.Context, userID string, kind models.Kind) ([]Document, error)
	ListDocumentIDs(ctx context.Context, userID string, kind models.Kind) ([]string, error)

	// Profile document
	GetProfile(ctx context.Context, userID string) (models.RemoteProfile, bool, error)
	PutProfile(ctx context.Context, userID string, profile models.RemoteProfile) error
	// FindUsersByUsername returns the users whose case-folded username equals username.
	FindUsersByUsername(ctx context.Context, username string) ([]string, error)

	NewBatch(userID string) Batch
}

// Batch collects writes to one user's collections and commits them atomically.
type Batch interface {
	// Set creates the document or merges body's top-level fields into it.
	Set(kind models.Kind, id string, body json.RawMessage)
	Delete(kind models.Kind, id string)
	Len() int
	Commit(ctx context.Context) error
}

// Op is a single queued batch operation.
type Op struct {
	Kind   models.Kind
	ID     string
	Body   json.RawMessage
	Delete bool
}

// OpList is an embeddable Batch recorder shared by the adapters.
type OpList struct {
	Ops []Op
}

func (l *OpList) Set(kind models.Kind, id string, body json.RawMessage) {
	l.Ops = append(l.Ops, Op{Kind: kind, ID: id, Body: body})
}

func (l *OpList) Delete(kind models.Kind, id string) {
	l.Ops = append(l.Ops, Op{Kind: kind, ID: id, Delete: true})
}

func (l *OpList) Len() int { return len(l.Ops) }

// MergeFields overlays the top-level fields of patch onto base.
func MergeFields(base, patch json.RawMessage) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &fields); err != nil {
			return nil, err
		}
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		fields[k] = v
	}
	return json.Marshal(fields)
}
