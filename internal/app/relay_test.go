package app

import (
	"testing"

	"github.com/avask/pulse/internal/core"
)

func TestRelayForwardToOnlineTarget(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg)

	conn := &fakeConn{}
	reg.Register("bob", core.NewSession("sid-b", conn))

	if !relay.Forward("bob", core.Frame(`{"type":"offer"}`)) {
		t.Fatal("forward to an online target reported failure")
	}
	if got := conn.sent(); len(got) != 1 || string(got[0]) != `{"type":"offer"}` {
		t.Errorf("target received %v, want the forwarded frame verbatim", got)
	}
}

func TestRelayForwardToOfflineTargetDropsSilently(t *testing.T) {
	relay := NewRelay(NewRegistry())
	// Must not panic, must not surface an error to the sender.
	if relay.Forward("ghost", core.Frame(`{"type":"offer"}`)) {
		t.Error("forward to an unknown user claimed delivery")
	}
}

func TestRelayForwardToClosedConnection(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg)

	conn := &fakeConn{}
	conn.Close()
	reg.Register("bob", core.NewSession("sid-b", conn))

	if relay.Forward("bob", core.Frame(`{}`)) {
		t.Error("forward over a closed connection claimed delivery")
	}
}
