package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/core"
	"github.com/avask/pulse/internal/domain"
)

// Direct 1:1 calls are client-correlated: the initiator mints the call id
// and owns the lifecycle. The server only resolves the target and forwards;
// it keeps no call table and validates nothing about the id.

// callerInfo is the identity block attached to lifecycle notifications.
type callerInfo struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
	Avatar   string        `json:"avatar,omitempty"`
	Status   string        `json:"status,omitempty"`
}

func (ctl *Controller) handleCallInitiate(sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string        `json:"type"`
		CallID       string        `json:"callId"`
		TargetUserID domain.UserID `json:"targetUserId"`
		CallType     string        `json:"callType"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad call-initiate payload")
		return
	}
	ctl.forward(p.TargetUserID, struct {
		Type     string     `json:"type"`
		CallID   string     `json:"callId"`
		CallType string     `json:"callType,omitempty"`
		Caller   callerInfo `json:"caller"`
	}{"incoming-call", p.CallID, p.CallType, callerInfo{ID: user.ID, Username: user.Username, Avatar: user.Avatar}})
}

// handleCallSignal forwards call-offer, call-answer and call-ice-candidate
// frames, re-tagged with the sender's id and the client's call id.
func (ctl *Controller) handleCallSignal(sess *core.Session, kind string, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string          `json:"type"`
		CallID       string          `json:"callId"`
		TargetUserID domain.UserID   `json:"targetUserId"`
		Offer        json.RawMessage `json:"offer"`
		Answer       json.RawMessage `json:"answer"`
		Candidate    json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad call signal payload")
		return
	}

	out := struct {
		Type      string          `json:"type"`
		CallID    string          `json:"callId"`
		UserID    domain.UserID   `json:"userId"`
		Offer     json.RawMessage `json:"offer,omitempty"`
		Answer    json.RawMessage `json:"answer,omitempty"`
		Candidate json.RawMessage `json:"candidate,omitempty"`
	}{Type: kind, CallID: p.CallID, UserID: user.ID}

	switch kind {
	case "call-offer":
		out.Offer = p.Offer
	case "call-answer":
		out.Answer = p.Answer
	case "call-ice-candidate":
		out.Candidate = p.Candidate
	}
	ctl.forward(p.TargetUserID, out)
}

func (ctl *Controller) handleCallAccept(sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string        `json:"type"`
		CallID       string        `json:"callId"`
		TargetUserID domain.UserID `json:"targetUserId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		return
	}
	ctl.forward(p.TargetUserID, struct {
		Type   string     `json:"type"`
		CallID string     `json:"callId"`
		Callee callerInfo `json:"callee"`
	}{"call-accepted", p.CallID, callerInfo{ID: user.ID, Username: user.Username, Avatar: user.Avatar}})
}

func (ctl *Controller) handleCallReject(sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string        `json:"type"`
		CallID       string        `json:"callId"`
		TargetUserID domain.UserID `json:"targetUserId"`
		Reason       string        `json:"reason"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		return
	}
	if p.Reason == "" {
		p.Reason = "declined"
	}
	ctl.forward(p.TargetUserID, struct {
		Type   string `json:"type"`
		CallID string `json:"callId"`
		Reason string `json:"reason"`
	}{"call-rejected", p.CallID, p.Reason})
}

func (ctl *Controller) handleCallEnd(sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string        `json:"type"`
		CallID       string        `json:"callId"`
		TargetUserID domain.UserID `json:"targetUserId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		return
	}
	ctl.forward(p.TargetUserID, struct {
		Type   string `json:"type"`
		CallID string `json:"callId"`
	}{"call-ended", p.CallID})
}

func (ctl *Controller) handleFriendRequest(sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string        `json:"type"`
		TargetUserID domain.UserID `json:"targetUserId"`
		FriendshipID string        `json:"friendshipId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		return
	}
	ctl.forward(p.TargetUserID, struct {
		Type         string     `json:"type"`
		FriendshipID string     `json:"friendshipId,omitempty"`
		From         callerInfo `json:"from"`
	}{"friend-request-received", p.FriendshipID, callerInfo{ID: user.ID, Username: user.Username, Avatar: user.Avatar}})
}

func (ctl *Controller) handleFriendRequestAccepted(sess *core.Session, data []byte) {
	user := sess.User()
	if user == nil {
		return
	}
	var p struct {
		Type         string        `json:"type"`
		TargetUserID domain.UserID `json:"targetUserId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		return
	}
	status := user.Status
	if status == "" {
		status = domain.StatusOnline
	}
	ctl.forward(p.TargetUserID, struct {
		Type string     `json:"type"`
		User callerInfo `json:"user"`
	}{"friend-request-accepted-by", callerInfo{ID: user.ID, Username: user.Username, Avatar: user.Avatar, Status: status}})
}
