package session

import (
	"testing"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/storage/memory"
)

func TestNamespace(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{name: "no session", state: State{}, want: "zentask_"},
		{name: "guest", state: State{Guest: true}, want: "zentask_"},
		{name: "authenticated", state: State{Identity: &Identity{UserID: "abc"}}, want: "abc_"},
		{name: "empty uid", state: State{Identity: &Identity{}}, want: "zentask_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Namespace(); got != tt.want {
				t.Errorf("Namespace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmailFor(t *testing.T) {
	st := State{Identity: &Identity{UserID: "abc", Email: "ada@example.com"}}
	if got := st.EmailFor("abc"); got != "ada@example.com" {
		t.Errorf("EmailFor(abc) = %q", got)
	}
	if got := st.EmailFor("other"); got != "" {
		t.Errorf("EmailFor(other) = %q, want empty", got)
	}
	if got := (State{Guest: true}).EmailFor(""); got != "" {
		t.Errorf("guest EmailFor = %q, want empty", got)
	}
}

func TestGuestToAuthenticated(t *testing.T) {
	local := memory.NewLocal()
	r := NewResolver(local)

	if r.Current().Ready() {
		t.Fatal("fresh store should have no session")
	}

	guest := r.ContinueAsGuest()
	if !guest.Guest || guest.Authenticated() {
		t.Fatalf("ContinueAsGuest() = %+v", guest)
	}
	if !r.Current().Guest {
		t.Error("guest marker not persisted")
	}

	local.Write(constants.GuestPrefix, "logs", []byte(`{}`))

	st, err := r.Login(Identity{UserID: "u1", DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if st.Namespace() != "u1_" {
		t.Errorf("Namespace() = %q", st.Namespace())
	}
	if _, ok := local.GetFlag(constants.GuestModeKey); ok {
		t.Error("guest marker should be cleared on login")
	}
	if _, ok := local.Read(constants.GuestPrefix, "logs"); !ok {
		t.Error("login must not delete guest data")
	}

	cur := r.Current()
	if cur.UserID() != "u1" || cur.Identity.DisplayName != "Ada" {
		t.Errorf("Current() = %+v", cur.Identity)
	}
}

func TestLogoutRunsHook(t *testing.T) {
	r := NewResolver(memory.NewLocal())
	var loggedOut []string
	r.OnLogout = func(uid string) { loggedOut = append(loggedOut, uid) }

	if _, err := r.Login(Identity{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Login(Identity{UserID: "u2"}); err != nil {
		t.Fatal(err)
	}
	r.Logout(r.Current())

	if len(loggedOut) != 2 || loggedOut[0] != "u1" || loggedOut[1] != "u2" {
		t.Errorf("OnLogout calls = %v, want [u1 u2]", loggedOut)
	}
	if r.Current().Ready() {
		t.Error("session should be cleared after logout")
	}
}

func TestLoginValidation(t *testing.T) {
	r := NewResolver(memory.NewLocal())
	for _, uid := range []string{"", "  ", "a_b", "a b"} {
		if _, err := r.Login(Identity{UserID: uid}); err == nil {
			t.Errorf("Login(%q) should fail", uid)
		}
	}
}
