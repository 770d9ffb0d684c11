package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

type roomNotice struct {
	Type      string        `json:"type"`
	UserID    domain.UserID `json:"userId,omitempty"`
	Username  string        `json:"username,omitempty"`
	ServerID  string        `json:"serverId,omitempty"`
	ChannelID string        `json:"channelId,omitempty"`
}

func decodeID(data []byte, field string) (string, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad payload")
		return "", false
	}
	var id string
	if err := json.Unmarshal(raw[field], &id); err != nil || id == "" {
		log.Warn().Str("module", "signal").Str("field", field).Msg("missing id field")
		return "", false
	}
	return id, true
}

func (ctl *Controller) handleJoinServer(sess *core.Session, data []byte) {
	id, ok := decodeID(data, "serverId")
	if !ok {
		return
	}
	sess.SetCurrentServer(id)
	ctl.Coord.Rooms.Join(domain.ServerRoom(id), sess)
	uid, name, _ := actor(sess)
	ctl.broadcast(domain.ServerRoom(id), sess.ID(), roomNotice{Type: "user-joined-server", UserID: uid, Username: name, ServerID: id})
}

func (ctl *Controller) handleLeaveServer(sess *core.Session, data []byte) {
	id, ok := decodeID(data, "serverId")
	if !ok {
		return
	}
	ctl.Coord.Rooms.Leave(domain.ServerRoom(id), sess.ID())
	uid, name, _ := actor(sess)
	ctl.broadcast(domain.ServerRoom(id), sess.ID(), roomNotice{Type: "user-left-server", UserID: uid, Username: name, ServerID: id})
	sess.ClearServer(id)
}

// handleJoinChannel switches the connection's single text-channel
// subscription. The previous channel is left silently; only the new one is
// notified.
func (ctl *Controller) handleJoinChannel(sess *core.Session, data []byte) {
	id, ok := decodeID(data, "channelId")
	if !ok {
		return
	}
	if prev := sess.SwapChannel(id); prev != "" && prev != id {
		ctl.Coord.Rooms.Leave(domain.ChannelRoom(prev), sess.ID())
	}
	ctl.Coord.Rooms.Join(domain.ChannelRoom(id), sess)
	uid, name, _ := actor(sess)
	ctl.broadcast(domain.ChannelRoom(id), sess.ID(), roomNotice{Type: "user-joined-channel", UserID: uid, Username: name, ChannelID: id})
}

func (ctl *Controller) handleLeaveChannel(sess *core.Session, data []byte) {
	id, ok := decodeID(data, "channelId")
	if !ok {
		return
	}
	ctl.Coord.Rooms.Leave(domain.ChannelRoom(id), sess.ID())
	uid, name, _ := actor(sess)
	ctl.broadcast(domain.ChannelRoom(id), sess.ID(), roomNotice{Type: "user-left-channel", UserID: uid, Username: name, ChannelID: id})
	sess.ClearChannel(id)
}

func (ctl *Controller) handleSendMessage(sess *core.Session, data []byte) {
	var p struct {
		Type      string          `json:"type"`
		ChannelID string          `json:"channelId"`
		Content   json.RawMessage `json:"content"`
		MessageID string          `json:"messageId"`
		Timestamp json.RawMessage `json:"timestamp"`
		ReplyToID string          `json:"replyToId"`
		Mentions  []domain.UserID `json:"mentions"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad send-message payload")
		return
	}
	uid, name, avatar := actor(sess)
	ctl.broadcast(domain.ChannelRoom(p.ChannelID), sess.ID(), struct {
		Type         string          `json:"type"`
		ID           string          `json:"id"`
		ChannelID    string          `json:"channel_id"`
		Content      json.RawMessage `json:"content"`
		Timestamp    json.RawMessage `json:"timestamp,omitempty"`
		SenderID     domain.UserID   `json:"sender_id,omitempty"`
		SenderName   string          `json:"sender_username,omitempty"`
		SenderAvatar string          `json:"sender_avatar,omitempty"`
		ReplyToID    string          `json:"reply_to_id,omitempty"`
		Mentions     []domain.UserID `json:"mentions,omitempty"`
	}{"new-message", p.MessageID, p.ChannelID, p.Content, p.Timestamp, uid, name, avatar, p.ReplyToID, p.Mentions})

	for _, mentioned := range p.Mentions {
		if mentioned == uid {
			continue
		}
		ctl.forward(mentioned, struct {
			Type        string `json:"type"`
			MessageID   string `json:"messageId"`
			ChannelID   string `json:"channelId"`
			MentionedBy string `json:"mentionedBy,omitempty"`
		}{"mentioned", p.MessageID, p.ChannelID, name})
	}
}

func (ctl *Controller) handleTyping(sess *core.Session, data []byte) {
	var p struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId"`
		IsTyping  bool   `json:"isTyping"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		return
	}
	uid, name, _ := actor(sess)
	ctl.broadcast(domain.ChannelRoom(p.ChannelID), sess.ID(), struct {
		Type      string        `json:"type"`
		UserID    domain.UserID `json:"userId,omitempty"`
		Username  string        `json:"username,omitempty"`
		ChannelID string        `json:"channelId"`
		IsTyping  bool          `json:"isTyping"`
	}{"user-typing", uid, name, p.ChannelID, p.IsTyping})
}

func (ctl *Controller) handleEditMessage(sess *core.Session, data []byte) {
	var p struct {
		Type      string          `json:"type"`
		MessageID string          `json:"messageId"`
		ChannelID string          `json:"channelId"`
		Content   json.RawMessage `json:"content"`
		EditedAt  json.RawMessage `json:"editedAt"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		return
	}
	ctl.broadcast(domain.ChannelRoom(p.ChannelID), sess.ID(), struct {
		Type      string          `json:"type"`
		MessageID string          `json:"messageId"`
		Content   json.RawMessage `json:"content"`
		EditedAt  json.RawMessage `json:"editedAt,omitempty"`
	}{"message-edited", p.MessageID, p.Content, p.EditedAt})
}

func (ctl *Controller) handleDeleteMessage(sess *core.Session, data []byte) {
	var p struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId"`
		ChannelID string `json:"channelId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		return
	}
	ctl.broadcast(domain.ChannelRoom(p.ChannelID), sess.ID(), struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId"`
	}{"message-deleted", p.MessageID})
}

func (ctl *Controller) handlePinMessage(sess *core.Session, data []byte) {
	var p struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId"`
		ChannelID string `json:"channelId"`
		IsPinned  bool   `json:"isPinned"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		return
	}
	ctl.broadcast(domain.ChannelRoom(p.ChannelID), sess.ID(), struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId"`
		IsPinned  bool   `json:"isPinned"`
	}{"message-pinned", p.MessageID, p.IsPinned})
}

func (ctl *Controller) handleAddReaction(sess *core.Session, data []byte) {
	var p struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId"`
		ChannelID string `json:"channelId"`
		Emoji     string `json:"emoji"`
		EmojiID   string `json:"emojiId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		return
	}
	uid, _, _ := actor(sess)
	ctl.broadcast(domain.ChannelRoom(p.ChannelID), sess.ID(), struct {
		Type      string        `json:"type"`
		MessageID string        `json:"messageId"`
		UserID    domain.UserID `json:"userId,omitempty"`
		Emoji     string        `json:"emoji"`
		EmojiID   string        `json:"emojiId,omitempty"`
	}{"reaction-added", p.MessageID, uid, p.Emoji, p.EmojiID})
}

func (ctl *Controller) handleRemoveReaction(sess *core.Session, data []byte) {
	var p struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId"`
		ChannelID string `json:"channelId"`
		Emoji     string `json:"emoji"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		return
	}
	uid, _, _ := actor(sess)
	ctl.broadcast(domain.ChannelRoom(p.ChannelID), sess.ID(), struct {
		Type      string        `json:"type"`
		MessageID string        `json:"messageId"`
		UserID    domain.UserID `json:"userId,omitempty"`
		Emoji     string        `json:"emoji"`
	}{"reaction-removed", p.MessageID, uid, p.Emoji})
}

// handleSendDM relays a direct message: group DMs fan out to the group
// room, 1:1 DMs go point-to-point through the registry.
func (ctl *Controller) handleSendDM(sess *core.Session, data []byte) {
	var p struct {
		Type       string          `json:"type"`
		ReceiverID domain.UserID   `json:"receiverId"`
		GroupID    string          `json:"groupId"`
		Content    json.RawMessage `json:"content"`
		MessageID  string          `json:"messageId"`
		Timestamp  json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send-dm payload")
		return
	}
	uid, name, avatar := actor(sess)
	msg := struct {
		Type         string          `json:"type"`
		ID           string          `json:"id"`
		Content      json.RawMessage `json:"content"`
		Timestamp    json.RawMessage `json:"timestamp,omitempty"`
		SenderID     domain.UserID   `json:"sender_id,omitempty"`
		SenderName   string          `json:"sender_username,omitempty"`
		SenderAvatar string          `json:"sender_avatar,omitempty"`
		GroupID      string          `json:"group_id,omitempty"`
		ReceiverID   domain.UserID   `json:"receiver_id,omitempty"`
	}{Type: "new-dm", ID: p.MessageID, Content: p.Content, Timestamp: p.Timestamp, SenderID: uid, SenderName: name, SenderAvatar: avatar}

	if p.GroupID != "" {
		msg.GroupID = p.GroupID
		ctl.broadcast(domain.GroupRoom(p.GroupID), sess.ID(), msg)
		return
	}
	if p.ReceiverID == "" {
		return
	}
	msg.ReceiverID = p.ReceiverID
	ctl.forward(p.ReceiverID, msg)
}

func (ctl *Controller) handleJoinGroup(sess *core.Session, data []byte) {
	if id, ok := decodeID(data, "groupId"); ok {
		ctl.Coord.Rooms.Join(domain.GroupRoom(id), sess)
	}
}

func (ctl *Controller) handleLeaveGroup(sess *core.Session, data []byte) {
	if id, ok := decodeID(data, "groupId"); ok {
		ctl.Coord.Rooms.Leave(domain.GroupRoom(id), sess.ID())
	}
}

func (ctl *Controller) handleJoinThread(sess *core.Session, data []byte) {
	if id, ok := decodeID(data, "threadId"); ok {
		ctl.Coord.Rooms.Join(domain.ThreadRoom(id), sess)
	}
}

func (ctl *Controller) handleLeaveThread(sess *core.Session, data []byte) {
	if id, ok := decodeID(data, "threadId"); ok {
		ctl.Coord.Rooms.Leave(domain.ThreadRoom(id), sess.ID())
	}
}

func (ctl *Controller) handleThreadMessage(sess *core.Session, data []byte) {
	var p struct {
		Type      string          `json:"type"`
		ThreadID  string          `json:"threadId"`
		Content   json.RawMessage `json:"content"`
		MessageID string          `json:"messageId"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ThreadID == "" {
		return
	}
	uid, name, avatar := actor(sess)
	ctl.broadcast(domain.ThreadRoom(p.ThreadID), sess.ID(), struct {
		Type         string          `json:"type"`
		ID           string          `json:"id"`
		ThreadID     string          `json:"threadId"`
		Content      json.RawMessage `json:"content"`
		Timestamp    json.RawMessage `json:"timestamp,omitempty"`
		SenderID     domain.UserID   `json:"sender_id,omitempty"`
		SenderName   string          `json:"sender_username,omitempty"`
		SenderAvatar string          `json:"sender_avatar,omitempty"`
	}{"new-thread-message", p.MessageID, p.ThreadID, p.Content, p.Timestamp, uid, name, avatar})
}

func (ctl *Controller) handleChannelCreated(sess *core.Session, data []byte) {
	var p struct {
		Type     string          `json:"type"`
		ServerID string          `json:"serverId"`
		Channel  json.RawMessage `json:"channel"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ServerID == "" {
		return
	}
	ctl.broadcast(domain.ServerRoom(p.ServerID), sess.ID(), struct {
		Type    string          `json:"type"`
		Channel json.RawMessage `json:"channel"`
	}{"channel-created", p.Channel})
}

func (ctl *Controller) handleChannelDeleted(sess *core.Session, data []byte) {
	var p struct {
		Type      string `json:"type"`
		ServerID  string `json:"serverId"`
		ChannelID string `json:"channelId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ServerID == "" {
		return
	}
	ctl.broadcast(domain.ServerRoom(p.ServerID), sess.ID(), struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId"`
	}{"channel-deleted", p.ChannelID})
}

func (ctl *Controller) handleServerUpdated(sess *core.Session, data []byte) {
	var p struct {
		Type     string          `json:"type"`
		ServerID string          `json:"serverId"`
		Updates  json.RawMessage `json:"updates"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ServerID == "" {
		return
	}
	ctl.broadcast(domain.ServerRoom(p.ServerID), sess.ID(), struct {
		Type    string          `json:"type"`
		Updates json.RawMessage `json:"updates"`
	}{"server-updated", p.Updates})
}
