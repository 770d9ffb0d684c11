package app

import (
	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

// Relay forwards negotiation frames point-to-point. It holds no payload
// state: one resolve, at most one delivery attempt, no queueing. An offline
// target swallows the frame without surfacing anything to the sender.
type Relay struct {
	Registry *Registry
}

func NewRelay(reg *Registry) *Relay {
	return &Relay{Registry: reg}
}

// Forward delivers data to target's live connection, if any. It reports
// whether a delivery attempt was made, which callers only use for logging.
func (r *Relay) Forward(target domain.UserID, data core.Frame) bool {
	sess, ok := r.Registry.Resolve(target)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("target", string(target)).Msg("target offline, frame dropped")
		return false
	}
	if err := sess.Signal().TrySend(data); err != nil {
		log.Debug().Err(err).Str("module", "app.relay").Str("target", string(target)).Msg("send failed, frame dropped")
		return false
	}
	return true
}
