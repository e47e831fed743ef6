package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
)

// Method names used for failure injection and call counting.
const (
	MethodListDocuments   = "ListDocuments"
	MethodListDocumentIDs = "ListDocumentIDs"
	MethodGetProfile      = "GetProfile"
	MethodPutProfile      = "PutProfile"
	MethodFindUsers       = "FindUsersByUsername"
	MethodCommit          = "Commit"
)

type collection map[string]json.RawMessage

// Remote is an in-process Remote adapter with failure injection.
type Remote struct {
	mu       sync.Mutex
	docs     map[string]map[models.Kind]collection
	profiles map[string]models.RemoteProfile
	calls    map[string]int
	failures map[string][]error
}

var _ storage.Remote = (*Remote)(nil)

func NewRemote() *Remote {
	return &Remote{
		docs:     map[string]map[models.Kind]collection{},
		profiles: map[string]models.RemoteProfile{},
		calls:    map[string]int{},
		failures: map[string][]error{},
	}
}

func (r *Remote) Init() error  { return nil }
func (r *Remote) Load() error  { return nil }
func (r *Remote) Close() error { return nil }

// FailNext makes the next call to method return err.
func (r *Remote) FailNext(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[method] = append(r.failures[method], err)
}

// Calls returns how many times method was invoked.
func (r *Remote) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// enter records a call and pops an injected failure. mu must be held.
func (r *Remote) enter(method string) error {
	r.calls[method]++
	if q := r.failures[method]; len(q) > 0 {
		r.failures[method] = q[1:]
		return q[0]
	}
	return nil
}

func (r *Remote) coll(userID string, kind models.Kind) collection {
	byKind, ok := r.docs[userID]
	if !ok {
		byKind = map[models.Kind]collection{}
		r.docs[userID] = byKind
	}
	c, ok := byKind[kind]
	if !ok {
		c = collection{}
		byKind[kind] = c
	}
	return c
}

func (r *Remote) ListDocuments(ctx context.Context, userID string, kind models.Kind) ([]storage.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodListDocuments); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := r.coll(userID, kind)
	out := make([]storage.Document, 0, len(c))
	for _, id := range sortedIDs(c) {
		out = append(out, storage.Document{ID: id, Body: append(json.RawMessage(nil), c[id]...)})
	}
	return out, nil
}

func (r *Remote) ListDocumentIDs(ctx context.Context, userID string, kind models.Kind) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodListDocumentIDs); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sortedIDs(r.coll(userID, kind)), nil
}

func (r *Remote) GetProfile(ctx context.Context, userID string) (models.RemoteProfile, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodGetProfile); err != nil {
		return models.RemoteProfile{}, false, err
	}
	p, ok := r.profiles[userID]
	return p, ok, ctx.Err()
}

func (r *Remote) PutProfile(ctx context.Context, userID string, profile models.RemoteProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodPutProfile); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.profiles[userID] = profile
	return nil
}

func (r *Remote) FindUsersByUsername(ctx context.Context, username string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodFindUsers); err != nil {
		return nil, err
	}
	want := models.NormalizeUsername(username)
	var out []string
	for uid, p := range r.profiles {
		if want != "" && models.NormalizeUsername(p.Username) == want {
			out = append(out, uid)
		}
	}
	sort.Strings(out)
	return out, ctx.Err()
}

func (r *Remote) NewBatch(userID string) storage.Batch {
	return &batch{remote: r, userID: userID}
}

type batch struct {
	storage.OpList
	remote *Remote
	userID string
}

// Commit applies every operation or none.
func (b *batch) Commit(ctx context.Context) error {
	r := b.remote
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodCommit); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	staged := map[models.Kind]collection{}
	for _, op := range b.Ops {
		c, ok := staged[op.Kind]
		if !ok {
			c = collection{}
			for id, body := range r.coll(b.userID, op.Kind) {
				c[id] = body
			}
			staged[op.Kind] = c
		}
		if op.Delete {
			delete(c, op.ID)
			continue
		}
		merged, err := storage.MergeFields(c[op.ID], op.Body)
		if err != nil {
			return err
		}
		c[op.ID] = merged
	}
	for kind, c := range staged {
		r.docs[b.userID][kind] = c
	}
	return nil
}

// Seed stores a document body directly.
func (r *Remote) Seed(userID string, kind models.Kind, id string, body json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coll(userID, kind)[id] = body
}

// SeedProfile stores a profile document directly.
func (r *Remote) SeedProfile(userID string, p models.RemoteProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[userID] = p
}

// Documents returns a copy of one collection.
func (r *Remote) Documents(userID string, kind models.Kind) map[string]json.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]json.RawMessage{}
	for id, body := range r.coll(userID, kind) {
		out[id] = body
	}
	return out
}

// Profile returns the stored profile document.
func (r *Remote) Profile(userID string) (models.RemoteProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	return p, ok
}

func sortedIDs(c collection) []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
