package registry

import (
	"testing"

	"github.com/pholguinc/api-streaming/internal/domain"
)

func TestConnectionsRegisterLookupRemove(t *testing.T) {
	r := NewConnections()

	state := r.Register("c1", domain.Identity{UserID: "u1", Username: "alice", Role: domain.RoleViewer})
	if state.ID != "c1" {
		t.Fatalf("state.ID = %q", state.ID)
	}

	got, ok := r.Lookup("c1")
	if !ok || got != state {
		t.Fatal("lookup should return the registered state")
	}

	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("lookup of unknown id should fail")
	}

	r.Remove("c1")
	if _, ok := r.Lookup("c1"); ok {
		t.Fatal("lookup after remove should fail")
	}
}

func TestConnectionsDefaultAvatar(t *testing.T) {
	r := NewConnections()

	state := r.Register("c1", domain.Identity{UserID: "u1"})
	if state.Identity.Avatar != domain.DefaultAvatar {
		t.Errorf("avatar = %q, want placeholder", state.Identity.Avatar)
	}

	state2 := r.Register("c2", domain.Identity{UserID: "u2", Avatar: "https://example.com/a.png"})
	if state2.Identity.Avatar != "https://example.com/a.png" {
		t.Errorf("avatar = %q, want provided value", state2.Identity.Avatar)
	}
}

func TestConnStateRoleExclusivity(t *testing.T) {
	r := NewConnections()
	state := r.Register("c1", domain.Identity{UserID: "u1", Role: domain.RoleBroadcaster})

	state.SetWatching("s1")
	if !state.IsCountedViewer("s1") {
		t.Fatal("watching connection should count as viewer")
	}

	// Becoming a broadcaster must clear viewer state: at most one of the
	// flags holds at a time.
	state.SetBroadcasting("s1")
	if state.IsCountedViewer("s1") {
		t.Fatal("broadcaster must not count as viewer")
	}
	if _, watching := state.Watching(); watching {
		t.Fatal("watching state should be cleared on broadcast")
	}

	uid, broadcasting := state.Broadcasting()
	if !broadcasting || uid != "s1" {
		t.Fatalf("Broadcasting() = %q, %v", uid, broadcasting)
	}

	state.ClearBroadcasting()
	if _, broadcasting := state.Broadcasting(); broadcasting {
		t.Fatal("broadcasting state should be cleared")
	}
}
