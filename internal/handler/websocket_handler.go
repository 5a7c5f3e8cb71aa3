package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/errs"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/service"
)

// BridgeWSHandler handles WebSocket connections for /ws/bridge.
type BridgeWSHandler struct {
	hub    *service.BridgeHub
	game   *service.GameService
	logger *zap.Logger
}

// NewBridgeWSHandler creates the bridge WebSocket handler.
func NewBridgeWSHandler(hub *service.BridgeHub, game *service.GameService, logger *zap.Logger) *BridgeWSHandler {
	return &BridgeWSHandler{hub: hub, game: game, logger: logger}
}

// ServeWS upgrades the request and runs the envelope loop. The connection
// starts unjoined; a join_session envelope binds it to a session and
// station. One connection belongs to at most one (session, station) pair.
func (h *BridgeWSHandler) ServeWS(c *gin.Context) {
	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	peer := h.hub.NewPeer(uuid.New().String(), conn)
	h.hub.SendTo(peer, &model.ServerEnvelope{Type: model.EnvelopeConnected, SocketID: peer.SocketID})

	go h.writePump(peer)
	h.readPump(c.Request.Context(), peer)
}

func (h *BridgeWSHandler) readPump(ctx context.Context, p *service.Peer) {
	defer func() {
		h.game.Disconnect(context.WithoutCancel(ctx), p)
		h.hub.Leave(p)
		_ = p.Conn.Close()
	}()
	for {
		_, data, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.String("socket_id", p.SocketID), zap.Error(err))
			}
			return
		}
		h.handleEnvelope(ctx, p, data)
	}
}

func (h *BridgeWSHandler) writePump(p *service.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for data := range p.Send {
		if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// handleEnvelope dispatches one inbound envelope. All user-triggered errors
// are turned into a typed error envelope for this peer only; nothing here
// may take down the process.
func (h *BridgeWSHandler) handleEnvelope(ctx context.Context, p *service.Peer, data []byte) {
	var env model.ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.sendError(p, "malformed envelope", "bad_request")
		return
	}

	var err error
	switch env.Type {
	case model.EnvelopeJoinSession:
		if env.SessionID == "" {
			h.sendError(p, "sessionId required", "bad_request")
			return
		}
		if p.Joined() {
			h.sendError(p, "connection already joined a session", "already_joined")
			return
		}
		err = h.game.Join(ctx, p, env.SessionID, env.Station, env.Name, env.Token)
	case model.EnvelopePlayerAction:
		err = h.game.PlayerAction(ctx, p, env.Station, env.Action, env.Value)
	case model.EnvelopeGMUpdate:
		err = h.game.GMUpdate(ctx, p, env.Changes)
	case model.EnvelopeLeaveSession:
		err = h.game.Leave(ctx, p)
	default:
		// Unknown envelope types are ignored for forward compatibility.
		return
	}

	if err != nil {
		h.logger.Info("envelope rejected",
			zap.String("socket_id", p.SocketID),
			zap.String("type", env.Type),
			zap.Error(err))
		h.sendError(p, err.Error(), errs.Code(err))
	}
}

func (h *BridgeWSHandler) sendError(p *service.Peer, message, code string) {
	h.hub.SendTo(p, &model.ServerEnvelope{
		Type:  model.EnvelopeError,
		Error: &model.ErrorPayload{Message: message, Code: code},
	})
}
