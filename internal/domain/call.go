package domain

import "time"

// CallParticipant records when a user entered an active call and which
// transport connection carries them.
type CallParticipant struct {
	SessionID string    `json:"-"`
	JoinedAt  time.Time `json:"joined_at"`
}

// ActiveCall is a live voice/video session for one voice channel.
// It is created lazily on the first join and deleted when the last
// participant leaves. IsVideo is fixed at creation from the first joiner's
// request; it is advisory metadata for later joiners picking a negotiation
// strategy, never enforced against actual media state.
type ActiveCall struct {
	ID           string                     `json:"id"`
	ChannelID    string                     `json:"channel_id"`
	ServerID     string                     `json:"server_id,omitempty"`
	Participants map[UserID]CallParticipant `json:"-"`
	IsVideo      bool                       `json:"is_video"`
	StartedAt    time.Time                  `json:"started_at"`
}
