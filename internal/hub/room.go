package hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"collabboard-backend/internal/board"
	"collabboard-backend/internal/model"
)

type eventKind int

const (
	evMessage eventKind = iota
	evJoin
	evLeave
	evDisconnect
	evRoomDeleted
	evKick
)

// event is one unit of work for a room loop. Modeling every inbound message
// kind as a variant of a single closed dispatch keeps per-room ordering
// without an actor framework.
type event struct {
	kind   eventKind
	client *Client
	env    Envelope
	userID int64 // evKick target
}

// Room holds the live state of one collaboration room and processes its
// events on a single goroutine.
type Room struct {
	ID  string
	hub *Hub

	events chan event
	ctx    context.Context
	cancel context.CancelFunc

	clients map[string]*Client // connID -> client

	// Access Grant Set, cached from the authorization provider. The host is
	// implicitly a member of every allowed set.
	hostID         int64
	allowedDrawers map[int64]struct{}
	allowedSharers map[int64]struct{}
	chatMuted      bool

	pages       map[string]*board.Page
	currentPage string

	call map[string]*callMember // connID -> in-call state
}

func newRoom(h *Hub, record *model.Room, draw, share []int64) *Room {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Room{
		ID:             record.RoomID,
		hub:            h,
		events:         make(chan event, h.boardCfg.EventBufferSize),
		ctx:            ctx,
		cancel:         cancel,
		clients:        make(map[string]*Client),
		hostID:         record.HostID,
		allowedDrawers: make(map[int64]struct{}),
		allowedSharers: make(map[int64]struct{}),
		chatMuted:      record.ChatMuted,
		pages:          make(map[string]*board.Page),
		currentPage:    h.boardCfg.DefaultPage,
		call:           make(map[string]*callMember),
	}
	for _, id := range draw {
		r.allowedDrawers[id] = struct{}{}
	}
	for _, id := range share {
		r.allowedSharers[id] = struct{}{}
	}
	return r
}

// loadPage replays the durable operation log into the in-memory page.
func (r *Room) loadPage(ctx context.Context, name string) error {
	page := board.NewPage(name, r.hub.boardCfg.HistoryCap)
	r.pages[name] = page

	records, err := r.hub.ops.ListSince(ctx, r.ID, name, 0)
	if err != nil {
		return err
	}
	for _, rec := range records {
		var op board.Operation
		if err := json.Unmarshal([]byte(rec.OpData), &op); err != nil {
			log.Printf("[Room %s] skipping unreadable operation %d: %v", r.ID, rec.ID, err)
			continue
		}
		page.Append(op)
	}
	return nil
}

func (r *Room) page(name string) *board.Page {
	if name == "" {
		name = r.currentPage
	}
	p, ok := r.pages[name]
	if !ok {
		p = board.NewPage(name, r.hub.boardCfg.HistoryCap)
		r.pages[name] = p
	}
	return p
}

func (r *Room) enqueue(ev event) {
	select {
	case r.events <- ev:
	case <-r.ctx.Done():
	}
}

func (r *Room) shutdown() {
	r.cancel()
}

// run consumes the event channel until the hub tears the room down.
func (r *Room) run() {
	log.Printf("[Room %s] Event loop started", r.ID)
	defer log.Printf("[Room %s] Event loop stopped", r.ID)

	for {
		select {
		case <-r.ctx.Done():
			return
		case ev := <-r.events:
			r.handle(ev)
		}
	}
}

func (r *Room) handle(ev event) {
	switch ev.kind {
	case evJoin:
		r.handleJoin(ev.client)
	case evLeave, evDisconnect:
		r.removeClient(ev.client, "")
	case evRoomDeleted:
		r.handleRoomDeleted()
	case evKick:
		r.handleKick(ev.userID)
	case evMessage:
		r.handleMessage(ev.client, ev.env)
	}
}

// handleMessage is the closed per-kind dispatch for one inbound message.
func (r *Room) handleMessage(c *Client, env Envelope) {
	if _, ok := r.clients[c.Session.ConnID]; !ok {
		// Message raced with this session's removal.
		return
	}

	switch env.Type {
	case MsgDrawStart, MsgDrawMove:
		r.handleDrawLive(c, env)
	case MsgDrawEnd:
		r.handleDrawEnd(c, env.Payload)
	case MsgDrawShape:
		r.handleDrawShape(c, env.Payload)
	case MsgAddText:
		r.handleAddText(c, env.Payload)
	case MsgClearBoard:
		r.handleClearBoard(c, env.Payload)
	case MsgUndo, MsgRedo:
		r.handleUndoRedo(c, env)
	case MsgCursorMove:
		r.handleCursorMove(c, env.Payload)
	case MsgChangePage:
		r.handleChangePage(c, env.Payload)
	case MsgGrantAccess:
		r.handleGrant(c, env.Payload, model.CapabilityDraw)
	case MsgRevokeAccess:
		r.handleRevoke(c, env.Payload, model.CapabilityDraw)
	case MsgGrantScreenShare:
		r.handleGrant(c, env.Payload, model.CapabilityScreenShare)
	case MsgRevokeScreenShare:
		r.handleRevoke(c, env.Payload, model.CapabilityScreenShare)
	case MsgToggleChatMute:
		r.handleToggleChatMute(c)
	case MsgSendMessage:
		r.handleSendMessage(c, env.Payload)
	case MsgCallUser:
		r.handleCallUser(c, env.Payload)
	case MsgCallEnded:
		r.handleCallEnded(c)
	case MsgToggleMedia:
		r.handleToggleMedia(c, env.Payload)
	case MsgWebRTCOffer, MsgWebRTCAnswer, MsgWebRTCCandidate:
		r.handleSignal(c, env)
	default:
		log.Printf("[Room %s] unknown message type %q from %s", r.ID, env.Type, c.Session.ConnID)
	}
}

// ==================== membership ====================

func (r *Room) handleJoin(c *Client) {
	r.clients[c.Session.ConnID] = c

	// Catch-up snapshot: operations, access state, mute flag, chat history.
	page := r.page(r.currentPage)
	c.Send(MsgWhiteboardData, CatchUpPayload{
		Page:       r.currentPage,
		Pages:      r.pageNames(),
		Operations: page.Operations(),
		CanUndo:    page.CanUndo(),
		CanRedo:    page.CanRedo(),
	})
	c.Send(MsgAccessUpdated, r.accessState())
	c.Send(MsgChatMuteUpdated, ChatMuteState{ChatMuted: r.chatMuted})
	r.sendChatHistory(c)
	if len(r.call) > 0 {
		c.Send(MsgCallParticipants, r.callRoster())
	}

	r.broadcastUsers()
	r.systemMessage(c.Session.UserID, c.Session.Username, c.Session.Username+" joined the room")

	log.Printf("[Room %s] %s joined (conn %s), total: %d",
		r.ID, c.Session.Username, c.Session.ConnID, len(r.clients))
}

// removeClient is the single cleanup path for leave, eviction, disconnect
// and kick. Call membership must go down with presence in the same event.
func (r *Room) removeClient(c *Client, kickNotice string) {
	connID := c.Session.ConnID
	if _, ok := r.clients[connID]; !ok {
		return
	}

	r.endCall(c)
	delete(r.clients, connID)
	r.hub.registry.Leave(r.ID, connID)

	if kickNotice != "" {
		c.Send(MsgUserKicked, NoticePayload{Message: kickNotice})
	}

	r.broadcastUsers()
	r.systemMessage(c.Session.UserID, c.Session.Username, c.Session.Username+" left the room")

	log.Printf("[Room %s] %s left (conn %s), remaining: %d",
		r.ID, c.Session.Username, connID, len(r.clients))

	if len(r.clients) == 0 {
		go r.hub.removeRoom(r.ID)
	}
}

func (r *Room) handleRoomDeleted() {
	r.broadcast(MsgRoomDeleted, NoticePayload{Message: "This room has been deleted by the host."}, "")

	for _, c := range r.clients {
		r.endCall(c)
		r.hub.registry.Leave(r.ID, c.Session.ConnID)
		c.Session.SetRoom("")
	}
	r.clients = make(map[string]*Client)

	go r.hub.removeRoom(r.ID)
}

func (r *Room) handleKick(userID int64) {
	for _, c := range r.clients {
		if c.Session.UserID == userID {
			c.Session.SetRoom("")
			r.removeClient(c, "You have been removed from the room by the host.")
		}
	}
}

// ==================== canvas sync ====================

func (r *Room) canDraw(userID int64) bool {
	if userID == r.hostID {
		return true
	}
	_, ok := r.allowedDrawers[userID]
	return ok
}

func (r *Room) canShare(userID int64) bool {
	if userID == r.hostID {
		return true
	}
	_, ok := r.allowedSharers[userID]
	return ok
}

// handleDrawLive relays draw-start/draw-move for live feedback. Intermediate
// points are never persisted; only the assembled stroke from draw-end is.
func (r *Room) handleDrawLive(c *Client, env Envelope) {
	if !r.canDraw(c.Session.UserID) {
		// Notice on draw-start only; silently dropping moves keeps an
		// ungranted client from flooding itself with notices.
		if env.Type == MsgDrawStart {
			r.denyDraw(c)
		}
		return
	}

	var p DrawLivePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return
	}
	r.broadcast(env.Type, map[string]any{
		"page":      p.Page,
		"x":         p.X,
		"y":         p.Y,
		"color":     p.Color,
		"brushSize": p.BrushSize,
		"tool":      p.Tool,
		"userId":    c.Session.UserID,
		"username":  c.Session.Username,
	}, c.Session.ConnID)
}

func (r *Room) handleDrawEnd(c *Client, payload json.RawMessage) {
	if !r.canDraw(c.Session.UserID) {
		r.denyDraw(c)
		return
	}

	var p DrawEndPayload
	if err := json.Unmarshal(payload, &p); err != nil || len(p.Stroke.Points) == 0 {
		return
	}
	op := p.Stroke
	op.Type = board.OpDraw
	r.commitOperation(c, p.Page, op, MsgDrawEnd, "stroke")
}

func (r *Room) handleDrawShape(c *Client, payload json.RawMessage) {
	if !r.canDraw(c.Session.UserID) {
		r.denyDraw(c)
		return
	}

	var p DrawShapePayload
	if err := json.Unmarshal(payload, &p); err != nil || !board.ValidShape(p.ShapeData.ShapeType) {
		return
	}
	op := p.ShapeData
	op.Type = board.OpShape
	r.commitOperation(c, p.Page, op, MsgDrawShape, "shapeData")
}

func (r *Room) handleAddText(c *Client, payload json.RawMessage) {
	if !r.canDraw(c.Session.UserID) {
		r.denyDraw(c)
		return
	}

	var p AddTextPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.TextData.Text == "" {
		return
	}
	op := p.TextData
	op.Type = board.OpText
	r.commitOperation(c, p.Page, op, MsgAddText, "textData")
}

// commitOperation appends one atomic operation: in-memory history first
// (the broadcast source of truth), durable log second. A store failure is
// logged and never rolls back the broadcast state.
func (r *Room) commitOperation(c *Client, pageName string, op board.Operation, msgType, field string) {
	op.UserID = c.Session.UserID
	op.Username = c.Session.Username
	op.Timestamp = time.Now()

	page := r.page(pageName)
	page.Append(op)

	r.broadcast(msgType, map[string]any{
		"page":     page.Name,
		field:      op,
		"userId":   op.UserID,
		"username": op.Username,
	}, c.Session.ConnID)

	data, err := json.Marshal(op)
	if err != nil {
		log.Printf("[Room %s] failed to marshal operation: %v", r.ID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.hub.ops.Append(ctx, &model.BoardOperation{
		RoomID:   r.ID,
		Page:     page.Name,
		UserID:   op.UserID,
		Username: op.Username,
		OpData:   string(data),
	}); err != nil {
		log.Printf("[Room %s] failed to persist operation: %v", r.ID, err)
	}
}

func (r *Room) handleClearBoard(c *Client, payload json.RawMessage) {
	if !r.canDraw(c.Session.UserID) {
		r.denyDraw(c)
		return
	}

	var p PagePayload
	_ = json.Unmarshal(payload, &p)
	page := r.page(p.Page)
	page.Clear()

	r.broadcast(MsgBoardCleared, PagePayload{Page: page.Name}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.hub.ops.Clear(ctx, r.ID, page.Name); err != nil {
		log.Printf("[Room %s] failed to clear operation log: %v", r.ID, err)
	}
}

// handleUndoRedo moves the page cursor and relays a lightweight notice.
// Pixel state is reconstructed client-side from local snapshots; concurrent
// edits are last-writer-wins, not merged.
func (r *Room) handleUndoRedo(c *Client, env Envelope) {
	if !r.canDraw(c.Session.UserID) {
		r.denyDraw(c)
		return
	}

	var p PagePayload
	_ = json.Unmarshal(env.Payload, &p)
	page := r.page(p.Page)

	moved := false
	if env.Type == MsgUndo {
		moved = page.Undo()
	} else {
		moved = page.Redo()
	}
	if !moved {
		return
	}

	r.broadcast(env.Type, map[string]any{
		"page":    page.Name,
		"userId":  c.Session.UserID,
		"canUndo": page.CanUndo(),
		"canRedo": page.CanRedo(),
	}, c.Session.ConnID)
}

func (r *Room) handleCursorMove(c *Client, payload json.RawMessage) {
	var p CursorMovePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	r.broadcast(MsgCursorMove, map[string]any{
		"userId":   c.Session.UserID,
		"username": c.Session.Username,
		"x":        p.X,
		"y":        p.Y,
	}, c.Session.ConnID)
}

// handleChangePage switches the room's current page. Host only; pages are
// independent operation logs.
func (r *Room) handleChangePage(c *Client, payload json.RawMessage) {
	if c.Session.UserID != r.hostID {
		c.Send(MsgPermissionDenied, NoticePayload{Message: "Only the host can switch pages"})
		return
	}

	var p PagePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Page == "" {
		return
	}

	if _, ok := r.pages[p.Page]; !ok {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := r.loadPage(ctx, p.Page); err != nil {
			log.Printf("[Room %s] page %s load failed: %v", r.ID, p.Page, err)
		}
		cancel()
	}
	r.currentPage = p.Page
	page := r.page(p.Page)

	r.broadcast(MsgPageChanged, PagePayload{Page: p.Page}, "")
	r.broadcast(MsgWhiteboardData, CatchUpPayload{
		Page:       page.Name,
		Pages:      r.pageNames(),
		Operations: page.Operations(),
		CanUndo:    page.CanUndo(),
		CanRedo:    page.CanRedo(),
	}, "")
}

func (r *Room) pageNames() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	return names
}

func (r *Room) denyDraw(c *Client) {
	c.Send(MsgPermissionDenied, NoticePayload{
		Message: "You don't have drawing access in this room",
	})
}

// ==================== access control ====================

func (r *Room) accessState() AccessState {
	state := AccessState{
		HostID:               r.hostID,
		AllowedDrawers:       make([]int64, 0, len(r.allowedDrawers)),
		AllowedScreenSharers: make([]int64, 0, len(r.allowedSharers)),
	}
	for id := range r.allowedDrawers {
		state.AllowedDrawers = append(state.AllowedDrawers, id)
	}
	for id := range r.allowedSharers {
		state.AllowedScreenSharers = append(state.AllowedScreenSharers, id)
	}
	return state
}

func (r *Room) grantSet(capability string) map[int64]struct{} {
	if capability == model.CapabilityScreenShare {
		return r.allowedSharers
	}
	return r.allowedDrawers
}

func (r *Room) handleGrant(c *Client, payload json.RawMessage, capability string) {
	if c.Session.UserID != r.hostID {
		c.Send(MsgPermissionDenied, NoticePayload{Message: "Only the host can manage access"})
		return
	}

	var p AccessPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.UserID == 0 {
		return
	}

	r.grantSet(capability)[p.UserID] = struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.hub.roomStore.Grant(ctx, r.ID, p.UserID, capability); err != nil {
		log.Printf("[Room %s] failed to persist grant: %v", r.ID, err)
	}

	// Full sets, not a delta, so clients reconcile after missed messages.
	r.broadcast(MsgAccessUpdated, r.accessState(), "")
}

func (r *Room) handleRevoke(c *Client, payload json.RawMessage, capability string) {
	if c.Session.UserID != r.hostID {
		c.Send(MsgPermissionDenied, NoticePayload{Message: "Only the host can manage access"})
		return
	}

	var p AccessPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.UserID == 0 {
		return
	}

	delete(r.grantSet(capability), p.UserID)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.hub.roomStore.Revoke(ctx, r.ID, p.UserID, capability); err != nil {
		log.Printf("[Room %s] failed to persist revoke: %v", r.ID, err)
	}

	r.broadcast(MsgAccessUpdated, r.accessState(), "")
}

// ==================== chat moderation ====================

func (r *Room) handleToggleChatMute(c *Client) {
	if c.Session.UserID != r.hostID {
		c.Send(MsgPermissionDenied, NoticePayload{Message: "Only the host can mute the chat"})
		return
	}

	r.chatMuted = !r.chatMuted

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.hub.roomStore.SetChatMuted(ctx, r.ID, r.chatMuted); err != nil {
		log.Printf("[Room %s] failed to persist chat mute: %v", r.ID, err)
	}

	r.broadcast(MsgChatMuteUpdated, ChatMuteState{ChatMuted: r.chatMuted}, "")

	content := "🔊 " + c.Session.Username + " unmuted the chat. Everyone can send messages."
	if r.chatMuted {
		content = "🔇 " + c.Session.Username + " muted the chat. Only host can send messages."
	}
	r.systemMessage(c.Session.UserID, c.Session.Username, content)
}

func (r *Room) handleSendMessage(c *Client, payload json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Content == "" {
		return
	}

	if r.chatMuted && c.Session.UserID != r.hostID {
		c.Send(MsgChatBlocked, NoticePayload{
			Message: "Chat is muted by the host. Only the host can send messages.",
		})
		return
	}

	content := p.Content
	if limit := r.hub.chatCfg.MaxMessageLength; len(content) > limit {
		if runes := []rune(content); len(runes) > limit {
			content = string(runes[:limit])
		}
	}

	msg := &model.ChatMessage{
		RoomID:     r.ID,
		SenderID:   c.Session.UserID,
		SenderName: c.Session.Username,
		Content:    content,
		Type:       model.MessageTypeText,
		CreatedAt:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.hub.chat.Append(ctx, msg); err != nil {
		log.Printf("[Room %s] failed to persist message: %v", r.ID, err)
	}

	r.broadcast(MsgNewMessage, msg, "")
}

// systemMessage persists and broadcasts a system notice (join/leave/mute).
func (r *Room) systemMessage(actorID int64, actorName, content string) {
	msg := &model.ChatMessage{
		RoomID:     r.ID,
		SenderID:   actorID,
		SenderName: actorName,
		Content:    content,
		Type:       model.MessageTypeSystem,
		CreatedAt:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.hub.chat.Append(ctx, msg); err != nil {
		log.Printf("[Room %s] failed to persist system message: %v", r.ID, err)
	}

	r.broadcast(MsgNewMessage, msg, "")
}

func (r *Room) sendChatHistory(c *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	messages, err := r.hub.chat.Recent(ctx, r.ID, r.hub.chatCfg.HistoryWindow)
	if err != nil {
		log.Printf("[Room %s] failed to load chat history: %v", r.ID, err)
		return
	}
	c.Send(MsgMessageHistory, MessageHistoryPayload{Messages: messages})
}

// ==================== broadcast helpers ====================

// broadcast sends to every client in the room except exceptConnID ("" for
// all). Issued from the room loop, so order equals arrival order.
func (r *Room) broadcast(msgType string, payload any, exceptConnID string) {
	for connID, c := range r.clients {
		if connID == exceptConnID {
			continue
		}
		c.Send(msgType, payload)
	}
}

func (r *Room) broadcastUsers() {
	r.broadcast(MsgUsersUpdated, UsersUpdatedPayload{
		Users: r.hub.registry.Members(r.ID),
	}, "")
}
