package domain

// VoiceState is one roster entry of a voice channel: the participant's
// identity plus the media flags peers need to render them. Ephemeral by
// nature, it is rebuilt from zero if the process restarts.
type VoiceState struct {
	UserID          UserID `json:"userId"`
	Username        string `json:"username"`
	Avatar          string `json:"avatar,omitempty"`
	IsMuted         bool   `json:"isMuted"`
	IsDeafened      bool   `json:"isDeafened"`
	IsVideoOn       bool   `json:"isVideoOn"`
	IsScreenSharing bool   `json:"isScreenSharing"`
}

// VoiceFlags carries a voice-state-update: the full set of flags the
// participant currently reports. Flags replace the roster entry's values
// wholesale, they are not merged.
type VoiceFlags struct {
	IsMuted         bool `json:"isMuted"`
	IsDeafened      bool `json:"isDeafened"`
	IsVideoOn       bool `json:"isVideoOn"`
	IsScreenSharing bool `json:"isScreenSharing"`
}
