package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

// handleJoinVoice runs the Absent->Active / Active->Active transition for a
// voice channel: the store mints the call on first join, the other
// occupants hear user-joined-voice, and the joiner gets a roster snapshot
// to pick peers for negotiation.
func (ctl *Controller) handleJoinVoice(sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId"`
		IsVideo   bool   `json:"isVideo"`
		ServerID  string `json:"serverId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-voice payload")
		return
	}

	// Single occupancy: switching voice channels leaves the prior one.
	if prev := sess.SwapVoice(p.ChannelID); prev != "" && prev != p.ChannelID {
		ctl.leaveVoice(sess, user, prev)
	}

	call, others := ctl.Coord.Voice.Join(p.ChannelID, p.ServerID, user, sess.ID(), p.IsVideo)
	ctl.Coord.Rooms.Join(domain.VoiceRoom(p.ChannelID), sess)

	ctl.broadcast(domain.VoiceRoom(p.ChannelID), sess.ID(), struct {
		Type      string        `json:"type"`
		UserID    domain.UserID `json:"userId"`
		Username  string        `json:"username"`
		Avatar    string        `json:"avatar,omitempty"`
		IsVideoOn bool          `json:"isVideoOn"`
		ChannelID string        `json:"channelId"`
	}{"user-joined-voice", user.ID, user.Username, user.Avatar, p.IsVideo, p.ChannelID})

	ctl.send(sess.Signal(), struct {
		Type      string              `json:"type"`
		ChannelID string              `json:"channelId"`
		Users     []domain.VoiceState `json:"users"`
		IsVideo   bool                `json:"isVideo"`
	}{"voice-channel-users", p.ChannelID, others, call.IsVideo})
}

func (ctl *Controller) handleLeaveVoice(sess *core.Session, data []byte) {
	id, ok := decodeID(data, "channelId")
	if !ok {
		return
	}
	user := sess.User()
	if user == nil {
		ctl.Coord.Rooms.Leave(domain.VoiceRoom(id), sess.ID())
		return
	}
	ctl.leaveVoice(sess, user, id)
	sess.ClearVoice(id)
}

// leaveVoice removes user from channelID's roster and notifies the
// remaining occupants. Safe to call for channels the user never joined.
func (ctl *Controller) leaveVoice(sess *core.Session, user *domain.User, channelID string) {
	if left, _ := ctl.Coord.Voice.Leave(channelID, user.ID); left {
		ctl.broadcast(domain.VoiceRoom(channelID), sess.ID(), struct {
			Type      string        `json:"type"`
			UserID    domain.UserID `json:"userId"`
			Username  string        `json:"username"`
			ChannelID string        `json:"channelId"`
		}{"user-left-voice", user.ID, user.Username, channelID})
	}
	ctl.Coord.Rooms.Leave(domain.VoiceRoom(channelID), sess.ID())
}

func (ctl *Controller) handleVoiceStateUpdate(sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId"`
		domain.VoiceFlags
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad voice-state-update payload")
		return
	}

	// No roster entry means no active call for this channel: ignore.
	if !ctl.Coord.Voice.UpdateState(p.ChannelID, user.ID, p.VoiceFlags) {
		return
	}
	ctl.broadcast(domain.VoiceRoom(p.ChannelID), sess.ID(), struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"userId"`
		domain.VoiceFlags
	}{"voice-state-changed", user.ID, p.VoiceFlags})
}

// handleMeshSignal forwards one voice-mesh negotiation frame (offer, answer
// or ice-candidate) to its target. Payload contents are opaque to the
// relay; only the source identity gets attached.
func (ctl *Controller) handleMeshSignal(sess *core.Session, kind string, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string          `json:"type"`
		TargetUserID domain.UserID   `json:"targetUserId"`
		Offer        json.RawMessage `json:"offer"`
		Answer       json.RawMessage `json:"answer"`
		Candidate    json.RawMessage `json:"candidate"`
		MediaType    string          `json:"mediaType"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad mesh signal payload")
		return
	}

	out := struct {
		Type      string          `json:"type"`
		UserID    domain.UserID   `json:"userId"`
		Username  string          `json:"username,omitempty"`
		Offer     json.RawMessage `json:"offer,omitempty"`
		Answer    json.RawMessage `json:"answer,omitempty"`
		Candidate json.RawMessage `json:"candidate,omitempty"`
		MediaType string          `json:"mediaType,omitempty"`
	}{Type: kind, UserID: user.ID}

	switch kind {
	case "offer":
		out.Username = user.Username
		out.Offer = p.Offer
		out.MediaType = p.MediaType
	case "answer":
		out.Answer = p.Answer
	case "ice-candidate":
		out.Candidate = p.Candidate
	}
	ctl.forward(p.TargetUserID, out)
}
