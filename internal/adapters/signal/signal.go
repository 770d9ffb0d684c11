// Package signal is the WebSocket adapter for the coordination core: it
// owns the transport connections and translates wire events into registry,
// room, voice-store and relay operations.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/app"
	"github.com/avask/pulse/internal/config"
	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Cfg   *config.Config
	Coord *app.Coordinator
}

func NewController(cfg *config.Config, coord *app.Coordinator) *Controller {
	return &Controller{Cfg: cfg, Coord: coord}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection's pumps. The
// session starts unauthenticated; an authenticate event binds it to a user.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.Cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.Cfg.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	sess := core.NewSession(sid, conn)
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer cancel()
		ctl.writePump(ctx, conn)
	}()
	go func() {
		defer cancel()
		ctl.readPump(ctx, sess, conn)
	}()
}

// actor returns the session's identity fields, or zero values when the
// connection never authenticated. Room notifications carry the empty
// identity instead of failing.
func actor(sess *core.Session) (domain.UserID, string, string) {
	if u := sess.User(); u != nil {
		return u.ID, u.Username, u.Avatar
	}
	return "", "", ""
}

func marshalEvent(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("event marshal")
		return nil, false
	}
	return core.Frame(b), true
}

func (ctl *Controller) send(conn core.SignalConnection, v any) {
	if f, ok := marshalEvent(v); ok {
		_ = conn.TrySend(f)
	}
}

func (ctl *Controller) broadcast(key domain.RoomKey, from core.SessionID, v any) {
	if f, ok := marshalEvent(v); ok {
		ctl.Coord.Rooms.Broadcast(key, from, f)
	}
}

func (ctl *Controller) forward(target domain.UserID, v any) {
	if f, ok := marshalEvent(v); ok {
		ctl.Coord.Relay.Forward(target, f)
	}
}
