package service

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
)

// Peer represents one WebSocket connection. A peer starts unjoined; once a
// join_session succeeds it carries the player identity and belongs to its
// session room until disconnect.
type Peer struct {
	SocketID  string
	SessionID string
	PlayerID  string
	Station   model.Station
	Role      model.Role
	Conn      *websocket.Conn
	Send      chan []byte

	mu     sync.Mutex
	closed bool
}

// Joined reports whether the peer has completed join_session.
func (p *Peer) Joined() bool { return p.SessionID != "" }

// trySend queues raw for the write pump. It reports false when the peer is
// closed or its buffer is full. The send and the closed flag share p.mu:
// a broadcaster that snapshotted the room before a Leave must never hit the
// channel after closeSend ran.
func (p *Peer) trySend(raw []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.Send <- raw:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once, whichever of Leave or
// CloseSession gets there first.
func (p *Peer) closeSend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.Send)
}

// BridgeHub tracks live connections per session and fans outbound envelopes
// out to the session room or its (session, station) sub-scopes.
type BridgeHub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Peer]struct{} // sessionID -> set of peers
	upgrader   websocket.Upgrader
	maxMsgSize int64
	log        *zap.Logger
}

// NewBridgeHub creates an empty hub.
func NewBridgeHub(readBuf, writeBuf int, maxMessageSize int64, log *zap.Logger) *BridgeHub {
	return &BridgeHub{
		rooms:      make(map[string]map[*Peer]struct{}),
		maxMsgSize: maxMessageSize,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			// Allow all origins for dev; in prod set CheckOrigin.
		},
	}
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (h *BridgeHub) Upgrader() *websocket.Upgrader { return &h.upgrader }

// NewPeer wraps a fresh connection in an unjoined peer.
func (h *BridgeHub) NewPeer(socketID string, conn *websocket.Conn) *Peer {
	if h.maxMsgSize > 0 {
		conn.SetReadLimit(h.maxMsgSize)
	}
	return &Peer{
		SocketID: socketID,
		Conn:     conn,
		Send:     make(chan []byte, 64),
	}
}

// Join adds the peer to its session room.
func (h *BridgeHub) Join(p *Peer) {
	h.mu.Lock()
	if h.rooms[p.SessionID] == nil {
		h.rooms[p.SessionID] = make(map[*Peer]struct{})
	}
	h.rooms[p.SessionID][p] = struct{}{}
	h.mu.Unlock()

	h.log.Info("peer joined room",
		zap.String("session_id", p.SessionID),
		zap.String("player_id", p.PlayerID),
		zap.String("station", string(p.Station)))
}

// Leave removes the peer from its session room and closes its send channel.
// Safe to call for peers that never joined.
func (h *BridgeHub) Leave(p *Peer) {
	h.mu.Lock()
	if room, ok := h.rooms[p.SessionID]; ok {
		if _, member := room[p]; member {
			delete(room, p)
			if len(room) == 0 {
				delete(h.rooms, p.SessionID)
			}
		}
	}
	h.mu.Unlock()
	p.closeSend()
}

// SendTo queues an envelope for a single peer, dropping it if the peer has
// left or its send buffer is full.
func (h *BridgeHub) SendTo(p *Peer, env *model.ServerEnvelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		h.log.Error("envelope marshal failed", zap.String("type", env.Type), zap.Error(err))
		return
	}
	if !p.trySend(raw) {
		h.log.Warn("peer unreachable, dropping envelope",
			zap.String("socket_id", p.SocketID),
			zap.String("type", env.Type))
	}
}

// BroadcastSession sends the envelope to every peer in the session room.
func (h *BridgeHub) BroadcastSession(sessionID string, env *model.ServerEnvelope) {
	h.broadcast(sessionID, env, nil)
}

// BroadcastExcept sends the envelope to every peer in the room except one.
func (h *BridgeHub) BroadcastExcept(sessionID string, except *Peer, env *model.ServerEnvelope) {
	h.broadcast(sessionID, env, func(p *Peer) bool { return p != except })
}

// NotifyGM sends the envelope only to the (session, gm) sub-scope.
func (h *BridgeHub) NotifyGM(sessionID string, env *model.ServerEnvelope) {
	h.broadcast(sessionID, env, func(p *Peer) bool { return p.Role == model.RoleGM })
}

// NotifyStation sends the envelope only to the (session, station) sub-scope.
func (h *BridgeHub) NotifyStation(sessionID string, station model.Station, env *model.ServerEnvelope) {
	h.broadcast(sessionID, env, func(p *Peer) bool { return p.Station == station })
}

func (h *BridgeHub) broadcast(sessionID string, env *model.ServerEnvelope, keep func(*Peer) bool) {
	raw, err := json.Marshal(env)
	if err != nil {
		h.log.Error("envelope marshal failed", zap.String("type", env.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	// Copy peers so we don't hold the lock while writing.
	peers := make([]*Peer, 0, len(room))
	for p := range room {
		if keep == nil || keep(p) {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		if !p.trySend(raw) {
			h.log.Warn("peer unreachable, dropping envelope",
				zap.String("socket_id", p.SocketID),
				zap.String("type", env.Type))
		}
	}
}

// CloseSession disconnects every peer in the session room, for admin
// session teardown.
func (h *BridgeHub) CloseSession(sessionID string) {
	h.mu.Lock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.rooms, sessionID)
	h.mu.Unlock()

	for p := range room {
		p.closeSend()
		_ = p.Conn.Close()
	}
	h.log.Info("session room closed", zap.String("session_id", sessionID))
}

// PeerCount returns the number of live peers in a session room.
func (h *BridgeHub) PeerCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}
