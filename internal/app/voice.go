package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

// VoiceStore holds the per-voice-channel participant rosters and the active
// call records. One mutex covers both maps: create-if-absent for a channel
// id is atomic with respect to every other handler touching that channel,
// which is what keeps two near-simultaneous first joins from minting two
// calls.
type VoiceStore struct {
	mu      sync.Mutex
	rosters map[string]map[domain.UserID]*domain.VoiceState
	calls   map[string]*domain.ActiveCall
}

func NewVoiceStore() *VoiceStore {
	return &VoiceStore{
		rosters: make(map[string]map[domain.UserID]*domain.VoiceState),
		calls:   make(map[string]*domain.ActiveCall),
	}
}

// Join adds user to channelID's roster, creating the active call on first
// join. It returns the call metadata and a snapshot of the other current
// participants, which the joiner uses to decide which peers to negotiate
// with.
func (v *VoiceStore) Join(channelID, serverID string, user *domain.User, sid core.SessionID, isVideo bool) (call domain.ActiveCall, others []domain.VoiceState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	roster, ok := v.rosters[channelID]
	if !ok {
		roster = make(map[domain.UserID]*domain.VoiceState)
		v.rosters[channelID] = roster
	}

	c, ok := v.calls[channelID]
	if !ok {
		c = &domain.ActiveCall{
			ID:           uuid.NewString(),
			ChannelID:    channelID,
			ServerID:     serverID,
			Participants: make(map[domain.UserID]domain.CallParticipant),
			IsVideo:      isVideo,
			StartedAt:    time.Now(),
		}
		v.calls[channelID] = c
		log.Info().Str("module", "app.voice").Str("channel", channelID).Str("call", c.ID).Bool("video", isVideo).Msg("call started")
	}

	roster[user.ID] = &domain.VoiceState{
		UserID:    user.ID,
		Username:  user.Username,
		Avatar:    user.Avatar,
		IsVideoOn: isVideo,
	}
	c.Participants[user.ID] = domain.CallParticipant{
		SessionID: string(sid),
		JoinedAt:  time.Now(),
	}

	others = make([]domain.VoiceState, 0, len(roster)-1)
	for uid, st := range roster {
		if uid == user.ID {
			continue
		}
		others = append(others, *st)
	}
	return *c, others
}

// Leave drops uid from channelID's roster and call. The call record is
// deleted when its last participant leaves. Both returns are false when the
// user was not in the channel, making repeated leaves no-ops.
func (v *VoiceStore) Leave(channelID string, uid domain.UserID) (left, callEnded bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	roster, ok := v.rosters[channelID]
	if !ok {
		return false, false
	}
	if _, ok := roster[uid]; !ok {
		return false, false
	}
	delete(roster, uid)
	if len(roster) == 0 {
		delete(v.rosters, channelID)
	}

	if c, ok := v.calls[channelID]; ok {
		delete(c.Participants, uid)
		if len(c.Participants) == 0 {
			delete(v.calls, channelID)
			callEnded = true
			log.Info().Str("module", "app.voice").Str("channel", channelID).Str("call", c.ID).Msg("call ended")
		}
	}
	return true, callEnded
}

// UpdateState replaces uid's media flags in place. Updates for channels
// with no active roster entry are silently ignored.
func (v *VoiceStore) UpdateState(channelID string, uid domain.UserID, flags domain.VoiceFlags) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	roster, ok := v.rosters[channelID]
	if !ok {
		return false
	}
	st, ok := roster[uid]
	if !ok {
		return false
	}
	st.IsMuted = flags.IsMuted
	st.IsDeafened = flags.IsDeafened
	st.IsVideoOn = flags.IsVideoOn
	st.IsScreenSharing = flags.IsScreenSharing
	return true
}

// Call returns a copy of channelID's active call, if one exists.
func (v *VoiceStore) Call(channelID string) (domain.ActiveCall, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.calls[channelID]
	if !ok {
		return domain.ActiveCall{}, false
	}
	return *c, true
}

// Roster returns a copy of channelID's participant states.
func (v *VoiceStore) Roster(channelID string) []domain.VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	roster := v.rosters[channelID]
	out := make([]domain.VoiceState, 0, len(roster))
	for _, st := range roster {
		out = append(out, *st)
	}
	return out
}

// ActiveCalls lists every live call for the inspection API.
func (v *VoiceStore) ActiveCalls() []domain.ActiveCall {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.ActiveCall, 0, len(v.calls))
	for _, c := range v.calls {
		out = append(out, *c)
	}
	return out
}
