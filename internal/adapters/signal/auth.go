package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/directory"
	"github.com/avask/pulse/internal/domain"
)

// handleAuthenticate binds the connection to a user. On any failure the
// acknowledgement carries success=false and the session stays
// unauthenticated; operations requiring an identity then degrade to no-ops.
func (ctl *Controller) handleAuthenticate(ctx context.Context, sess *core.Session, data []byte) {
	var p struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.UserID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad authenticate payload")
		ctl.ackAuth(sess, false, nil)
		return
	}

	user, err := ctl.Coord.Directory.LookupUser(ctx, p.UserID)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", string(p.UserID)).Msg("authenticate lookup failed")
		ctl.ackAuth(sess, false, nil)
		return
	}

	// A connection re-authenticating as a different user first releases
	// its old identity in full, offline side effects included; otherwise
	// the registry keeps the old user pointed at this session forever.
	if old := sess.User(); old != nil && old.ID != user.ID {
		log.Info().Str("module", "signal").Str("old", string(old.ID)).Str("new", string(user.ID)).Msg("identity switch")
		ctl.releaseIdentity(ctx, sess, old)
		sess.SetUser(nil)
	}

	// Single-session policy: a second authentication from the same user
	// displaces the first connection, which is actively torn down rather
	// than left with stale memberships.
	prev := ctl.Coord.Registry.Register(user.ID, sess)
	if prev != nil {
		log.Info().Str("module", "signal").Str("user", string(user.ID)).Msg("displacing previous session")
		ctl.teardown(ctx, prev)
		prev.Signal().Close()
	}

	// Status must be persisted before any room joins so presence
	// broadcasts reach the right destination.
	if err := ctl.Coord.Directory.SetUserStatus(ctx, user.ID, domain.StatusOnline); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("user", string(user.ID)).Msg("persist online status")
		ctl.Coord.Registry.Unregister(user.ID, sess)
		ctl.ackAuth(sess, false, nil)
		return
	}
	user.Status = domain.StatusOnline
	sess.SetUser(user)

	ctl.ackAuth(sess, true, user)

	for _, friend := range ctl.Coord.Presence.OnlineFriends(ctx, user.ID) {
		ctl.send(friend.Signal(), struct {
			Type     string        `json:"type"`
			UserID   domain.UserID `json:"userId"`
			Username string        `json:"username"`
			Avatar   string        `json:"avatar,omitempty"`
			Status   string        `json:"status"`
		}{"friend-online", user.ID, user.Username, user.Avatar, domain.StatusOnline})
	}

	// Subscribe to all of the user's servers up front.
	serverIDs, err := ctl.Coord.Directory.ListUserServerIDs(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("user", string(user.ID)).Msg("server list fetch failed")
		return
	}
	for _, id := range serverIDs {
		ctl.Coord.Rooms.Join(domain.ServerRoom(id), sess)
	}
}

func (ctl *Controller) ackAuth(sess *core.Session, success bool, user *domain.User) {
	resp := struct {
		Type    string       `json:"type"`
		Success bool         `json:"success"`
		User    *domain.User `json:"user,omitempty"`
		Error   string       `json:"error,omitempty"`
	}{Type: "authenticated", Success: success, User: user}
	if !success {
		resp.Error = "Authentication failed"
	}
	ctl.send(sess.Signal(), resp)
}

func (ctl *Controller) handleUpdateStatus(ctx context.Context, sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string `json:"type"`
		Status       string `json:"status"`
		CustomStatus string `json:"customStatus"`
		Activity     string `json:"activity"`
		ActivityType string `json:"activityType"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad update-status payload")
		return
	}

	profile := directory.Profile{
		Status:       p.Status,
		CustomStatus: p.CustomStatus,
		Activity:     p.Activity,
		ActivityType: p.ActivityType,
	}
	if err := ctl.Coord.Directory.UpdateProfile(ctx, user.ID, profile); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("user", string(user.ID)).Msg("persist status update")
		return
	}
	if p.Status != "" {
		user.Status = p.Status
	}
	user.CustomStatus = p.CustomStatus
	user.Activity = p.Activity
	user.ActivityType = p.ActivityType

	for _, friend := range ctl.Coord.Presence.OnlineFriends(ctx, user.ID) {
		ctl.send(friend.Signal(), struct {
			Type         string        `json:"type"`
			UserID       domain.UserID `json:"userId"`
			Status       string        `json:"status,omitempty"`
			CustomStatus string        `json:"customStatus,omitempty"`
			Activity     string        `json:"activity,omitempty"`
			ActivityType string        `json:"activityType,omitempty"`
		}{"status-update", user.ID, p.Status, p.CustomStatus, p.Activity, p.ActivityType})
	}
}

// teardown runs the disconnect sequence exactly once per session: voice
// roster/call removal, room membership removal, and, when this session is
// still the user's current one, the offline persist and friend fan-out.
func (ctl *Controller) teardown(ctx context.Context, sess *core.Session) {
	if !sess.BeginTeardown() {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sess.ID())).Msg("teardown")

	user := sess.User()
	if user == nil {
		ctl.Coord.Rooms.Drop(sess.ID())
		return
	}
	ctl.releaseIdentity(ctx, sess, user)
}

// releaseIdentity detaches user's presence state from sess: voice roster,
// room memberships, registry mapping and, when sess was still the user's
// current connection, the offline persist and friend fan-out. Also runs
// when a connection re-authenticates as someone else.
func (ctl *Controller) releaseIdentity(ctx context.Context, sess *core.Session, user *domain.User) {
	if ch := sess.CurrentVoice(); ch != "" {
		if left, _ := ctl.Coord.Voice.Leave(ch, user.ID); left {
			ctl.broadcast(domain.VoiceRoom(ch), sess.ID(), struct {
				Type      string        `json:"type"`
				UserID    domain.UserID `json:"userId"`
				Username  string        `json:"username"`
				ChannelID string        `json:"channelId"`
			}{"user-left-voice", user.ID, user.Username, ch})
		}
		sess.ClearVoice(ch)
	}
	ctl.Coord.Rooms.Drop(sess.ID())

	if !ctl.Coord.Registry.Unregister(user.ID, sess) {
		// Superseded by a newer connection: the user is still online
		// there, so no offline persist or broadcast.
		return
	}

	if err := ctl.Coord.Directory.SetUserStatus(ctx, user.ID, domain.StatusOffline); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("user", string(user.ID)).Msg("persist offline status")
	}
	for _, friend := range ctl.Coord.Presence.OnlineFriends(ctx, user.ID) {
		ctl.send(friend.Signal(), struct {
			Type     string        `json:"type"`
			UserID   domain.UserID `json:"userId"`
			Username string        `json:"username"`
		}{"friend-offline", user.ID, user.Username})
	}
}
