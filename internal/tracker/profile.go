package tracker

import (
	"context"
	"fmt"

	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
	"github.com/julianstephens/zentask/internal/validation"
)

func (t *Tracker) Profile() models.UserProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Profile
}

// UpdateProfile validates and applies u. A changed username is checked against
// the remote store when the session is authenticated and a remote is configured.
func (t *Tracker) UpdateProfile(ctx context.Context, u models.ProfileUpdate) (models.UserProfile, error) {
	if u.Name != nil {
		name, err := validation.RequiredText("name", *u.Name)
		if err != nil {
			return models.UserProfile{}, err
		}
		u.Name = &name
	}
	if u.Theme != nil {
		if err := validation.Theme(*u.Theme); err != nil {
			return models.UserProfile{}, err
		}
	}
	if u.Username != nil && *u.Username != "" {
		name, err := validation.Username(*u.Username)
		if err != nil {
			return models.UserProfile{}, err
		}
		u.Username = &name
		if name != t.Profile().Username {
			if err := t.checkUsername(ctx, name); err != nil {
				return models.UserProfile{}, err
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Profile = models.ApplyProfileUpdate(t.state.Profile, u)
	t.commit(models.KindProfile)
	return t.state.Profile, nil
}

func (t *Tracker) checkUsername(ctx context.Context, name string) error {
	if t.remote == nil || !t.session.Authenticated() {
		return nil
	}
	owners, err := t.remote.FindUsersByUsername(ctx, name)
	if err != nil {
		return fmt.Errorf("check username availability: %w", err)
	}
	for _, uid := range owners {
		if uid != t.session.UserID() {
			return fmt.Errorf("username %q: %w", name, storage.ErrUsernameTaken)
		}
	}
	return nil
}

func (t *Tracker) SetDarkMode(on bool) (models.UserProfile, error) {
	return t.UpdateProfile(context.Background(), models.ProfileUpdate{DarkMode: &on})
}

func (t *Tracker) SetTheme(theme string) (models.UserProfile, error) {
	return t.UpdateProfile(context.Background(), models.ProfileUpdate{Theme: &theme})
}

func (t *Tracker) SetAllowCompletedDeletion(allow bool) (models.UserProfile, error) {
	return t.UpdateProfile(context.Background(), models.ProfileUpdate{AllowCompletedDeletion: &allow})
}
