package hub

import (
	"encoding/json"
	"log"
)

// callMember is one session's in-call state. Call membership is implicit:
// created on call-user or on the first offer/answer a session sends, torn
// down on call-ended or disconnect.
type callMember struct {
	UserID        int64
	Username      string
	ConnID        string
	AudioEnabled  bool
	VideoEnabled  bool
	ScreenSharing bool
}

func (r *Room) callRoster() CallParticipantsPayload {
	roster := CallParticipantsPayload{
		Participants: make([]CallParticipant, 0, len(r.call)),
	}
	for _, m := range r.call {
		roster.Participants = append(roster.Participants, CallParticipant{
			UserID:          m.UserID,
			Username:        m.Username,
			SocketID:        m.ConnID,
			AudioEnabled:    m.AudioEnabled,
			VideoEnabled:    m.VideoEnabled,
			IsScreenSharing: m.ScreenSharing,
		})
	}
	return roster
}

func (r *Room) joinCall(c *Client, mediaType string) *callMember {
	m, ok := r.call[c.Session.ConnID]
	if ok {
		return m
	}
	m = &callMember{
		UserID:       c.Session.UserID,
		Username:     c.Session.Username,
		ConnID:       c.Session.ConnID,
		AudioEnabled: true,
		VideoEnabled: mediaType == "video",
	}
	r.call[c.Session.ConnID] = m
	return m
}

// handleCallUser announces a call to the room. The server only relays; media
// flows peer to peer over the resulting full mesh.
func (r *Room) handleCallUser(c *Client, payload json.RawMessage) {
	var p CallUserPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	if p.MediaType == "" {
		p.MediaType = "video"
	}

	r.joinCall(c, p.MediaType)

	r.broadcast(MsgCallStarted, CallStartedPayload{
		CallerID:       c.Session.UserID,
		CallerName:     c.Session.Username,
		CallerSocketID: c.Session.ConnID,
		MediaType:      p.MediaType,
	}, c.Session.ConnID)

	log.Printf("[Room %s] %s started a %s call", r.ID, c.Session.Username, p.MediaType)
}

func (r *Room) handleCallEnded(c *Client) {
	r.endCall(c)
}

// endCall drops the session from the call and tells the remaining peers to
// tear down their links to it. Peers still in the call keep their links to
// each other.
func (r *Room) endCall(c *Client) {
	if _, ok := r.call[c.Session.ConnID]; !ok {
		return
	}
	delete(r.call, c.Session.ConnID)

	r.broadcast(MsgCallEnded, CallEndedPayload{
		UserID:   c.Session.UserID,
		Username: c.Session.Username,
		SocketID: c.Session.ConnID,
	}, c.Session.ConnID)
}

// handleToggleMedia updates the sender's media flags. Turning screen share on
// requires a grant; the other flags are self-reported.
func (r *Room) handleToggleMedia(c *Client, payload json.RawMessage) {
	var p ToggleMediaPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}

	if p.IsScreenSharing && !r.canShare(c.Session.UserID) {
		c.Send(MsgPermissionDenied, NoticePayload{
			Message: "You don't have screen share access in this room",
		})
		return
	}

	m, ok := r.call[c.Session.ConnID]
	if !ok {
		return
	}
	m.AudioEnabled = p.AudioEnabled
	m.VideoEnabled = p.VideoEnabled
	m.ScreenSharing = p.IsScreenSharing

	r.broadcast(MsgMediaToggled, MediaToggledPayload{
		UserID:          c.Session.UserID,
		SocketID:        c.Session.ConnID,
		AudioEnabled:    p.AudioEnabled,
		VideoEnabled:    p.VideoEnabled,
		IsScreenSharing: p.IsScreenSharing,
	}, c.Session.ConnID)
}

// handleSignal relays one SDP offer/answer or ICE candidate to the addressed
// peer. A target that already left is dropped silently; the caller's ICE
// timeout is the failure signal.
func (r *Room) handleSignal(c *Client, env Envelope) {
	var p SignalPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil || p.TargetSocketID == "" {
		return
	}

	target, ok := r.clients[p.TargetSocketID]
	if !ok {
		return
	}

	switch env.Type {
	case MsgWebRTCOffer:
		r.joinCall(c, "video")
		target.Send(MsgWebRTCOffer, map[string]any{
			"offer":          p.Offer,
			"callerSocketId": c.Session.ConnID,
			"callerId":       c.Session.UserID,
			"callerName":     c.Session.Username,
		})
	case MsgWebRTCAnswer:
		r.joinCall(c, "video")
		target.Send(MsgWebRTCAnswer, map[string]any{
			"answer":           p.Answer,
			"answererSocketId": c.Session.ConnID,
			"answererId":       c.Session.UserID,
			"answererName":     c.Session.Username,
		})
	case MsgWebRTCCandidate:
		target.Send(MsgWebRTCCandidate, map[string]any{
			"candidate":      p.Candidate,
			"senderSocketId": c.Session.ConnID,
		})
	}
}
