package models

import (
	"strings"

	"github.com/julianstephens/zentask/internal/constants"
)

// UserProfile is the locally owned profile shape.
type UserProfile struct {
	Name                   string `json:"name"`
	Bio                    string `json:"bio"`
	AvatarURL              string `json:"avatarUrl"`
	ProductivityMantra     string `json:"productivityMantra"`
	DarkMode               bool   `json:"darkMode"`
	Theme                  string `json:"theme"`
	AllowCompletedDeletion bool   `json:"allowCompletedDeletion"`
	Username               string `json:"username,omitempty"`
}

// RemoteProfile is the profile document stored at users/{uid}. Email and
// CreatedAt are owned by the account, not by the local profile.
type RemoteProfile struct {
	DisplayName            string `json:"displayName"`
	Bio                    string `json:"bio"`
	AvatarURL              string `json:"avatarUrl"`
	Username               string `json:"username"`
	Email                  string `json:"email"`
	Slogan                 string `json:"slogan"`
	DarkMode               bool   `json:"darkMode"`
	Theme                  string `json:"theme"`
	AllowCompletedDeletion bool   `json:"allowCompletedDeletion"`
	CreatedAt              string `json:"createdAt"`
	UpdatedAt              string `json:"updatedAt"`
}

// ProfileUpdate carries a partial profile edit; nil fields are left unchanged.
type ProfileUpdate struct {
	Name                   *string
	Bio                    *string
	AvatarURL              *string
	ProductivityMantra     *string
	DarkMode               *bool
	Theme                  *string
	AllowCompletedDeletion *bool
	Username               *string
}

// AvatarForSeed builds the default avatar URL.
func AvatarForSeed(seed string) string {
	return constants.DefaultAvatarBaseURL + seed
}

// DefaultProfile returns the static defaults with the given avatar seed.
func DefaultProfile(avatarSeed string) UserProfile {
	return UserProfile{
		Name:               constants.DefaultProfileName,
		Bio:                constants.DefaultProfileBio,
		AvatarURL:          AvatarForSeed(avatarSeed),
		ProductivityMantra: constants.DefaultProfileMantra,
		Theme:              constants.DefaultTheme,
	}
}

// IdentityProfile returns the defaults personalised with an account's display
// name and photo, falling back to the static values when they are empty.
func IdentityProfile(userID, displayName, photoURL string) UserProfile {
	p := DefaultProfile(userID)
	if displayName != "" {
		p.Name = displayName
	}
	if photoURL != "" {
		p.AvatarURL = photoURL
	}
	return p
}

// MergeProfile lays overlay over base. Non-empty strings from overlay win;
// booleans always come from overlay since a stored profile carries all of them.
func MergeProfile(base, overlay UserProfile) UserProfile {
	out := base
	if overlay.Name != "" {
		out.Name = overlay.Name
	}
	if overlay.Bio != "" {
		out.Bio = overlay.Bio
	}
	if overlay.AvatarURL != "" {
		out.AvatarURL = overlay.AvatarURL
	}
	if overlay.ProductivityMantra != "" {
		out.ProductivityMantra = overlay.ProductivityMantra
	}
	if overlay.Theme != "" {
		out.Theme = overlay.Theme
	}
	if overlay.Username != "" {
		out.Username = overlay.Username
	}
	out.DarkMode = overlay.DarkMode
	out.AllowCompletedDeletion = overlay.AllowCompletedDeletion
	return out
}

// ApplyProfileUpdate returns p with every non-nil field of u applied. Usernames
// are stored trimmed and lower-cased.
func ApplyProfileUpdate(p UserProfile, u ProfileUpdate) UserProfile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.ProductivityMantra != nil {
		p.ProductivityMantra = *u.ProductivityMantra
	}
	if u.DarkMode != nil {
		p.DarkMode = *u.DarkMode
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	if u.AllowCompletedDeletion != nil {
		p.AllowCompletedDeletion = *u.AllowCompletedDeletion
	}
	if u.Username != nil {
		p.Username = NormalizeUsername(*u.Username)
	}
	return p
}

// NormalizeUsername case-folds and trims a username for storage and lookup.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ProfileFromRemote converts the remote document into the local shape, filling
// defaults for missing fields.
func ProfileFromRemote(rp RemoteProfile, userID string) UserProfile {
	p := UserProfile{
		Name:                   rp.DisplayName,
		Bio:                    rp.Bio,
		AvatarURL:              rp.AvatarURL,
		ProductivityMantra:     rp.Slogan,
		DarkMode:               rp.DarkMode,
		Theme:                  rp.Theme,
		AllowCompletedDeletion: rp.AllowCompletedDeletion,
		Username:               rp.Username,
	}
	if p.Name == "" {
		p.Name = constants.DefaultProfileName
	}
	if p.Bio == "" {
		p.Bio = constants.DefaultProfileBio
	}
	if p.AvatarURL == "" {
		p.AvatarURL = AvatarForSeed(userID)
	}
	if p.ProductivityMantra == "" {
		p.ProductivityMantra = constants.DefaultProfileMantra
	}
	if p.Theme == "" {
		p.Theme = constants.DefaultTheme
	}
	return p
}

// MergeRemoteProfile builds the document to write for local, preserving the
// account-owned fields of the existing remote document. accountEmail fills the
// email when the remote document has none.
func MergeRemoteProfile(local UserProfile, existing RemoteProfile, exists bool, now, accountEmail string) RemoteProfile {
	out := RemoteProfile{
		DisplayName:            local.Name,
		Bio:                    local.Bio,
		AvatarURL:              local.AvatarURL,
		Username:               local.Username,
		Slogan:                 local.ProductivityMantra,
		DarkMode:               local.DarkMode,
		Theme:                  local.Theme,
		AllowCompletedDeletion: local.AllowCompletedDeletion,
		UpdatedAt:              now,
		CreatedAt:              now,
		Email:                  accountEmail,
	}
	if !exists {
		return out
	}
	if out.Username == "" {
		out.Username = existing.Username
	}
	if existing.Email != "" {
		out.Email = existing.Email
	}
	if existing.CreatedAt != "" {
		out.CreatedAt = existing.CreatedAt
	}
	return out
}
