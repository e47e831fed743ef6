package account

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/session"
)

type LoginCmd struct {
	User  string `short:"u" required:"" help:"Account id supplied by your identity provider."`
	Name  string `help:"Display name."`
	Photo string `help:"Avatar URL."`
	Email string `help:"Email address."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Resolver.Login(session.Identity{
		UserID:      c.User,
		DisplayName: c.Name,
		PhotoURL:    c.Photo,
		Email:       c.Email,
	})
	if err != nil {
		return err
	}
	ctx.Reset()

	if _, err := ctx.Open(); err != nil {
		return err
	}
	name := st.Identity.DisplayName
	if name == "" {
		name = st.UserID()
	}
	fmt.Fprintf(ctx.Out, "✓ Signed in as %s\n", name)
	if ctx.Remote == nil {
		fmt.Fprintln(ctx.Out, cli.Warning("Remote store unavailable: changes are saved on this device only."))
	}
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	st := ctx.Resolver.Current()
	if !st.Ready() {
		fmt.Fprintln(ctx.Out, "Not signed in.")
		return nil
	}
	ctx.Resolver.Logout(st)
	ctx.Reset()
	if st.Authenticated() {
		fmt.Fprintf(ctx.Out, "✓ Signed out %s. Local data stays on this device.\n", st.UserID())
	} else {
		fmt.Fprintln(ctx.Out, "✓ Left guest mode. Guest data stays on this device.")
	}
	return nil
}

type GuestCmd struct{}

func (c *GuestCmd) Run(ctx *cli.Context) error {
	ctx.Resolver.ContinueAsGuest()
	ctx.Reset()
	if _, err := ctx.Open(); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "✓ Continuing as guest. Data is stored on this device only.")
	return nil
}
