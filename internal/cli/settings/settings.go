package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/models"
)

type ProfileCmd struct {
	Show ProfileShowCmd `cmd:"" help:"Show the profile and preferences." default:"1"`
	Set  ProfileSetCmd  `cmd:"" help:"Update the profile and preferences."`
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	p := t.Profile()

	account := "guest"
	if st := t.Session(); st.Authenticated() {
		account = st.UserID()
	}
	username := p.Username
	if username == "" {
		username = cli.Muted("(not set)")
	}

	fmt.Fprintln(ctx.Out, cli.Title(p.Name))
	fmt.Fprintf(ctx.Out, "  Account:                  %s\n", account)
	fmt.Fprintf(ctx.Out, "  Username:                 %s\n", username)
	fmt.Fprintf(ctx.Out, "  Bio:                      %s\n", p.Bio)
	fmt.Fprintf(ctx.Out, "  Mantra:                   %s\n", p.ProductivityMantra)
	fmt.Fprintf(ctx.Out, "  Avatar:                   %s\n", p.AvatarURL)
	fmt.Fprintln(ctx.Out, "\nPreferences:")
	fmt.Fprintf(ctx.Out, "  Theme:                    %s\n", p.Theme)
	fmt.Fprintf(ctx.Out, "  Dark mode:                %v\n", p.DarkMode)
	fmt.Fprintf(ctx.Out, "  Allow completed deletion: %v\n", p.AllowCompletedDeletion)
	return nil
}

type ProfileSetCmd struct {
	Name                   *string `help:"Display name."`
	Bio                    *string `help:"Short bio."`
	Avatar                 *string `help:"Avatar URL."`
	Mantra                 *string `help:"Productivity mantra."`
	Username               *string `help:"Unique username (3+ characters: letters, digits, _ or -)."`
	Theme                  *string `help:"Accent theme: indigo, pink, rose, amber, emerald, sky or zinc."`
	DarkMode               *bool   `help:"Use dark mode." negatable:""`
	AllowCompletedDeletion *bool   `help:"Allow deleting completed items." negatable:""`
}

func (c *ProfileSetCmd) update() (models.ProfileUpdate, bool) {
	u := models.ProfileUpdate{
		Name:                   c.Name,
		Bio:                    c.Bio,
		AvatarURL:              c.Avatar,
		ProductivityMantra:     c.Mantra,
		Username:               c.Username,
		Theme:                  c.Theme,
		DarkMode:               c.DarkMode,
		AllowCompletedDeletion: c.AllowCompletedDeletion,
	}
	changed := c.Name != nil || c.Bio != nil || c.Avatar != nil || c.Mantra != nil ||
		c.Username != nil || c.Theme != nil || c.DarkMode != nil || c.AllowCompletedDeletion != nil
	return u, changed
}

func (c *ProfileSetCmd) Run(ctx *cli.Context) error {
	u, changed := c.update()
	if !changed {
		fmt.Fprintf(ctx.Out, "No changes specified. Themes: %s\n", strings.Join(constants.Themes, ", "))
		return nil
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	rctx, cancel := ctx.WithTimeout()
	defer cancel()
	if _, err := t.UpdateProfile(rctx, u); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "Profile updated successfully.")
	return nil
}
