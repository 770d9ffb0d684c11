package app

import (
	"testing"

	"github.com/avask/pulse/internal/core"
)

func TestRegistryRegisterResolve(t *testing.T) {
	reg := NewRegistry()
	sess := core.NewSession("sid-1", &fakeConn{})

	if prev := reg.Register("alice", sess); prev != nil {
		t.Fatalf("expected no previous session, got %v", prev.ID())
	}

	got, ok := reg.Resolve("alice")
	if !ok {
		t.Fatal("Resolve returned not found for registered user")
	}
	if got.ID() != "sid-1" {
		t.Errorf("Resolve returned sid %q, want sid-1", got.ID())
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Resolve("nobody"); ok {
		t.Error("Resolve found a session for an unknown user")
	}
}

func TestRegistryReAuthReturnsDisplacedSession(t *testing.T) {
	reg := NewRegistry()
	first := core.NewSession("sid-1", &fakeConn{})
	second := core.NewSession("sid-2", &fakeConn{})

	reg.Register("alice", first)
	prev := reg.Register("alice", second)
	if prev != first {
		t.Fatal("Register did not return the displaced session")
	}

	got, _ := reg.Resolve("alice")
	if got != second {
		t.Error("Resolve should return the newest session after re-auth")
	}
}

func TestRegistryUnregisterIsCompareAndDelete(t *testing.T) {
	reg := NewRegistry()
	first := core.NewSession("sid-1", &fakeConn{})
	second := core.NewSession("sid-2", &fakeConn{})

	reg.Register("alice", first)
	reg.Register("alice", second)

	// The stale session must not knock out the fresh one.
	if reg.Unregister("alice", first) {
		t.Error("Unregister removed a mapping that belongs to a newer session")
	}
	if _, ok := reg.Resolve("alice"); !ok {
		t.Fatal("fresh mapping disappeared")
	}

	if !reg.Unregister("alice", second) {
		t.Error("Unregister rejected the current session")
	}
	if _, ok := reg.Resolve("alice"); ok {
		t.Error("user still resolvable after unregister")
	}
}
