// Package session resolves whether the active session is authenticated or guest
// and which namespace prefix scopes local storage.
package session

import (
	"encoding/json"
	"strings"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/storage"
)

// Identity is an authenticated account as supplied by the auth collaborator.
type Identity struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Email       string `json:"email,omitempty"`
}

// State is the resolved session. A zero State is "no session yet".
type State struct {
	Identity *Identity
	Guest    bool
}

// Authenticated reports whether remote sync is enabled.
func (s State) Authenticated() bool {
	return s.Identity != nil && s.Identity.UserID != ""
}

// Ready reports whether a choice has been made (signed in or guest).
func (s State) Ready() bool {
	return s.Authenticated() || s.Guest
}

// UserID returns the authenticated user id or "".
func (s State) UserID() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Identity.UserID
}

// EmailFor returns the sign-in email when userID is the signed-in user.
func (s State) EmailFor(userID string) string {
	if userID == "" || s.UserID() != userID {
		return ""
	}
	return s.Identity.Email
}

// Namespace returns the local key prefix for the session.
func (s State) Namespace() string {
	return Namespace(s)
}

// Namespace returns "{uid}_" when authenticated, the guest prefix otherwise.
func Namespace(s State) string {
	if s.Authenticated() {
		return s.Identity.UserID + "_"
	}
	return constants.GuestPrefix
}

// Resolver persists session transitions in the local store's flags.
type Resolver struct {
	local storage.Local
	// OnLogout runs with the outgoing user id before the identity is cleared.
	OnLogout func(userID string)
}

func NewResolver(local storage.Local) *Resolver {
	return &Resolver{local: local}
}

// Current reads the persisted session.
func (r *Resolver) Current() State {
	if raw, ok := r.local.GetFlag(constants.SessionKey); ok && raw != "" {
		var id Identity
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			logger.Warn("Discarding unreadable session", "error", err)
		} else if id.UserID != "" {
			return State{Identity: &id}
		}
	}
	if v, ok := r.local.GetFlag(constants.GuestModeKey); ok && v == "true" {
		return State{Guest: true}
	}
	return State{}
}

// Login switches to an authenticated session. The guest marker is cleared but
// guest data is left in place.
func (r *Resolver) Login(id Identity) (State, error) {
	id.UserID = strings.TrimSpace(id.UserID)
	if id.UserID == "" {
		return State{}, errors.Validation("user", "is required")
	}
	if strings.ContainsAny(id.UserID, "_ \t") {
		return State{}, errors.Validation("user", "must not contain underscores or whitespace")
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return State{}, err
	}
	if prev := r.Current(); prev.Authenticated() && prev.UserID() != id.UserID && r.OnLogout != nil {
		r.OnLogout(prev.UserID())
	}
	r.local.ClearFlag(constants.GuestModeKey)
	r.local.SetFlag(constants.SessionKey, string(raw))
	logger.Info("Session started", "user", id.UserID)
	return State{Identity: &id}, nil
}

// ContinueAsGuest records the explicit choice to proceed without an account.
func (r *Resolver) ContinueAsGuest() State {
	if prev := r.Current(); prev.Authenticated() && r.OnLogout != nil {
		r.OnLogout(prev.UserID())
	}
	r.local.ClearFlag(constants.SessionKey)
	r.local.SetFlag(constants.GuestModeKey, "true")
	return State{Guest: true}
}

// Logout clears the identity and the guest marker, returning to "no session".
func (r *Resolver) Logout(s State) State {
	if s.Authenticated() && r.OnLogout != nil {
		r.OnLogout(s.UserID())
	}
	r.local.ClearFlag(constants.SessionKey)
	r.local.ClearFlag(constants.GuestModeKey)
	return State{}
}
