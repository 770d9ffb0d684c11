package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

func voiceUser(id string) *domain.User {
	return &domain.User{ID: domain.UserID(id), Username: "user-" + id}
}

func TestVoiceJoinCreatesSingleCall(t *testing.T) {
	store := NewVoiceStore()

	call, others := store.Join("ch1", "srv1", voiceUser("a"), "sid-a", false)
	if call.ID == "" {
		t.Fatal("first join did not mint a call id")
	}
	if call.IsVideo {
		t.Error("IsVideo should match the first joiner's request")
	}
	if len(others) != 0 {
		t.Errorf("first joiner got %d existing participants, want 0", len(others))
	}

	second, others := store.Join("ch1", "srv1", voiceUser("b"), "sid-b", true)
	if second.ID != call.ID {
		t.Error("second join created a new call record")
	}
	if second.IsVideo {
		t.Error("IsVideo must stay fixed at creation, later joiners cannot flip it")
	}
	if len(others) != 1 || others[0].UserID != "a" {
		t.Fatalf("second joiner snapshot = %v, want exactly user a", others)
	}
	if others[0].IsVideoOn {
		t.Error("snapshot reported video for an audio-only participant")
	}
}

func TestVoiceConcurrentJoinsMintOneCall(t *testing.T) {
	store := NewVoiceStore()

	const n = 32
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := voiceUser(fmt.Sprintf("u%d", i))
			call, _ := store.Join("ch1", "srv1", u, core.SessionID(fmt.Sprintf("sid%d", i)), false)
			ids <- call.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		seen[id] = struct{}{}
	}
	if len(seen) != 1 {
		t.Fatalf("concurrent joins produced %d distinct call ids, want 1", len(seen))
	}
}

func TestVoiceJoinsThenLeavesEmptyTheChannel(t *testing.T) {
	store := NewVoiceStore()
	const n = 5
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("u%d", i)
		store.Join("ch1", "", voiceUser(id), core.SessionID("sid-"+id), false)
	}

	// Leave in an arbitrary (reversed) order.
	for i := n - 1; i >= 0; i-- {
		left, ended := store.Leave("ch1", domain.UserID(fmt.Sprintf("u%d", i)))
		if !left {
			t.Fatalf("leave for u%d reported not present", i)
		}
		if ended != (i == 0) {
			t.Errorf("callEnded=%v on leave of u%d", ended, i)
		}
	}

	if got := store.Roster("ch1"); len(got) != 0 {
		t.Errorf("roster still holds %d entries after all leaves", len(got))
	}
	if _, ok := store.Call("ch1"); ok {
		t.Error("active call record survived the last leave")
	}
}

func TestVoiceLeaveUnknownIsNoOp(t *testing.T) {
	store := NewVoiceStore()
	if left, ended := store.Leave("ch1", "ghost"); left || ended {
		t.Error("leave of an absent channel should report nothing happened")
	}

	store.Join("ch1", "", voiceUser("a"), "sid-a", false)
	store.Leave("ch1", "a")
	// Second leave of the same user: idempotent.
	if left, _ := store.Leave("ch1", "a"); left {
		t.Error("second leave of the same user was not a no-op")
	}
}

func TestVoiceUpdateStateWithoutCall(t *testing.T) {
	store := NewVoiceStore()
	if store.UpdateState("ch1", "a", domain.VoiceFlags{IsMuted: true}) {
		t.Error("state update without an active call must be ignored")
	}
}

func TestVoiceUpdateStateMutatesRoster(t *testing.T) {
	store := NewVoiceStore()
	store.Join("ch1", "", voiceUser("a"), "sid-a", false)

	if !store.UpdateState("ch1", "a", domain.VoiceFlags{IsMuted: true, IsScreenSharing: true}) {
		t.Fatal("state update for a present participant was rejected")
	}
	roster := store.Roster("ch1")
	if len(roster) != 1 {
		t.Fatalf("roster size = %d, want 1", len(roster))
	}
	st := roster[0]
	if !st.IsMuted || !st.IsScreenSharing || st.IsDeafened || st.IsVideoOn {
		t.Errorf("roster entry flags = %+v, want muted+screensharing only", st)
	}
}
