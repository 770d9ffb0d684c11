package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	ping := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sess *core.Session, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sess.ID())).Msg("readPump closing")
		// Teardown outlives the connection context: the status write and
		// the offline fan-out still have to happen.
		ctl.teardown(context.Background(), sess)
		c.Close()
	}()

	// ReadMessage cannot watch ctx; closing the conn is what unblocks it
	// on shutdown.
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("sid", string(sess.ID())).Msg("readPump read error")
			return
		}
		ctl.handleEvent(ctx, sess, data)
	}
}

// handleEvent dispatches one inbound frame. Unknown types and malformed
// payloads are logged and ignored, never answered with an error.
func (ctl *Controller) handleEvent(ctx context.Context, sess *core.Session, data []byte) {
	// Frames still in flight when displacement tore the session down must
	// not resurrect roster or room state.
	if sess.TornDown() {
		return
	}

	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "authenticate":
		ctl.handleAuthenticate(ctx, sess, data)
	case "update-status":
		ctl.handleUpdateStatus(ctx, sess, data)
	case "join-server":
		ctl.handleJoinServer(sess, data)
	case "leave-server":
		ctl.handleLeaveServer(sess, data)
	case "join-channel":
		ctl.handleJoinChannel(sess, data)
	case "leave-channel":
		ctl.handleLeaveChannel(sess, data)
	case "send-message":
		ctl.handleSendMessage(sess, data)
	case "typing":
		ctl.handleTyping(sess, data)
	case "edit-message":
		ctl.handleEditMessage(sess, data)
	case "delete-message":
		ctl.handleDeleteMessage(sess, data)
	case "pin-message":
		ctl.handlePinMessage(sess, data)
	case "add-reaction":
		ctl.handleAddReaction(sess, data)
	case "remove-reaction":
		ctl.handleRemoveReaction(sess, data)
	case "send-dm":
		ctl.handleSendDM(sess, data)
	case "join-group-dm":
		ctl.handleJoinGroup(sess, data)
	case "leave-group-dm":
		ctl.handleLeaveGroup(sess, data)
	case "join-thread":
		ctl.handleJoinThread(sess, data)
	case "leave-thread":
		ctl.handleLeaveThread(sess, data)
	case "send-thread-message":
		ctl.handleThreadMessage(sess, data)
	case "channel-created":
		ctl.handleChannelCreated(sess, data)
	case "channel-deleted":
		ctl.handleChannelDeleted(sess, data)
	case "server-updated":
		ctl.handleServerUpdated(sess, data)
	case "join-voice":
		ctl.handleJoinVoice(sess, data)
	case "leave-voice":
		ctl.handleLeaveVoice(sess, data)
	case "voice-state-update":
		ctl.handleVoiceStateUpdate(sess, data)
	case "offer", "answer", "ice-candidate":
		ctl.handleMeshSignal(sess, env.Type, data)
	case "call-initiate":
		ctl.handleCallInitiate(sess, data)
	case "call-offer", "call-answer", "call-ice-candidate":
		ctl.handleCallSignal(sess, env.Type, data)
	case "call-accept":
		ctl.handleCallAccept(sess, data)
	case "call-reject":
		ctl.handleCallReject(sess, data)
	case "call-end":
		ctl.handleCallEnd(sess, data)
	case "friend-request":
		ctl.handleFriendRequest(sess, data)
	case "friend-request-accepted":
		ctl.handleFriendRequestAccepted(sess, data)
	case "ping":
		ctl.send(sess.Signal(), map[string]string{"type": "pong"})
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}
