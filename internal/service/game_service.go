package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/errs"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/state"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/store"
)

// saveRetries bounds the fetch-mutate-save retry loop when a concurrent
// writer bumps the state version between our read and our save.
const saveRetries = 3

// GameService orchestrates the join/action/gm_update/disconnect protocol
// against the stores, the action processor and the hub. All mutations of one
// session run under that session's lock, so each save's resulting state is
// broadcast exactly once, in save order.
type GameService struct {
	sessions *store.SessionStore
	states   *store.StateStore
	hub      *BridgeHub
	log      *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGameService creates the orchestration service.
func NewGameService(sessions *store.SessionStore, states *store.StateStore, hub *BridgeHub, log *zap.Logger) *GameService {
	return &GameService{
		sessions: sessions,
		states:   states,
		hub:      hub,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (g *GameService) sessionLock(sessionID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[sessionID] = l
	}
	return l
}

// Join handles join_session. When the session id is unknown a fresh session
// and initial state are created. A valid reconnect token resumes the
// existing roster entry instead of claiming a new seat. On success the full
// current state goes to the joining peer only; the rest of the room gets a
// player_joined event.
func (g *GameService) Join(ctx context.Context, p *Peer, sessionID string, station model.Station, name, token string) error {
	lock := g.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := g.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, errs.ErrSessionNotFound) {
		sess, err = g.sessions.CreateSession(ctx, sessionID, sessionID, 0)
	}
	if err != nil {
		return err
	}

	var player *model.Player
	if token != "" {
		player, err = g.sessions.GetPlayerByToken(ctx, sessionID, token)
		if err != nil && !errors.Is(err, errs.ErrPlayerNotFound) {
			return err
		}
	}
	resumed := player != nil
	if resumed {
		// Reconnect: rebind the roster entry to the new socket.
		player.UserID = p.SocketID
		player.Status = model.PlayerConnected
		if err := g.sessions.UpdatePlayer(ctx, player); err != nil {
			return err
		}
	} else {
		role := model.RolePlayer
		switch station {
		case model.StationGM:
			role = model.RoleGM
		case "spectator":
			if !sess.Settings.AllowSpectators {
				return errs.ErrUnauthorized
			}
			role = model.RoleSpectator
		}
		player, err = g.sessions.AddPlayer(ctx, sessionID, p.SocketID, name, station, role)
		if err != nil {
			return err
		}
	}

	if err := g.sessions.SetPlayerSocketID(ctx, p.SocketID, player); err != nil {
		// Without the socket index entry the seat could never be resolved
		// again, so the roster must not keep it as connected.
		if resumed {
			if uerr := g.sessions.UpdatePlayerStatus(ctx, sessionID, player.ID, model.PlayerDisconnected); uerr != nil {
				g.log.Warn("join rollback failed", zap.String("player_id", player.ID), zap.Error(uerr))
			}
		} else if rerr := g.sessions.RemovePlayer(ctx, sessionID, player.ID); rerr != nil {
			g.log.Warn("join rollback failed", zap.String("player_id", player.ID), zap.Error(rerr))
		}
		return err
	}

	p.SessionID = sessionID
	p.PlayerID = player.ID
	p.Station = player.Station
	p.Role = player.Role
	g.hub.Join(p)

	if sess.Status == model.SessionStatusWaiting {
		if err := g.sessions.UpdateSessionStatus(ctx, sessionID, model.SessionStatusActive); err != nil {
			g.log.Warn("session status update failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	// The joiner's own record keeps the reconnect token; the copy announced
	// to the room does not.
	g.hub.SendTo(p, &model.ServerEnvelope{Type: model.EnvelopePlayerJoined, Player: player})
	announced := *player
	announced.Token = ""
	g.hub.BroadcastExcept(sessionID, p, &model.ServerEnvelope{Type: model.EnvelopePlayerJoined, Player: &announced})

	gs, err := g.states.GetState(ctx, sessionID)
	if errors.Is(err, errs.ErrStateNotFound) {
		// A session without its state document (expired state, seeded
		// session record) is repaired here rather than surfaced.
		gs = state.NewGameState(sessionID)
		if err = g.states.SaveState(ctx, gs); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	g.hub.SendTo(p, &model.ServerEnvelope{Type: model.EnvelopeStateUpdate, State: gs})

	g.log.Info("player joined",
		zap.String("session_id", sessionID),
		zap.String("player_id", player.ID),
		zap.String("station", string(player.Station)),
		zap.String("role", string(player.Role)))
	return nil
}

// PlayerAction handles player_action: authorize, fetch, apply, save with a
// bounded compare-and-swap retry, then broadcast the new state to the whole
// session room. Actions the processor does not recognize change nothing and
// broadcast nothing.
func (g *GameService) PlayerAction(ctx context.Context, p *Peer, station model.Station, action string, value json.RawMessage) error {
	player, err := g.sessions.GetPlayerBySocketID(ctx, p.SocketID)
	if err != nil {
		if errors.Is(err, errs.ErrPlayerNotFound) {
			return errs.ErrNotJoined
		}
		return err
	}
	// A player may only act on their own station; the GM may act on any.
	if player.Station != station && player.Role != model.RoleGM {
		return errs.ErrUnauthorized
	}

	lock := g.sessionLock(player.SessionID)
	lock.Lock()
	defer lock.Unlock()

	var gs *model.GameState
	for attempt := 0; ; attempt++ {
		gs, err = g.states.GetState(ctx, player.SessionID)
		if err != nil {
			return err
		}
		if !state.Apply(gs, station, action, value) {
			return nil
		}
		err = g.states.SaveState(ctx, gs)
		if err == nil {
			break
		}
		if !errors.Is(err, errs.ErrVersionConflict) || attempt >= saveRetries {
			return err
		}
	}

	g.hub.BroadcastSession(player.SessionID, &model.ServerEnvelope{Type: model.EnvelopeStateUpdate, State: gs})
	if station == model.StationPilot {
		g.hub.NotifyGM(player.SessionID, &model.ServerEnvelope{
			Type: model.EnvelopeGMNotification,
			Notification: &model.GMNotification{
				Type:    "station_action",
				Station: station,
				Action:  action,
				Value:   value,
			},
		})
	}

	if err := g.sessions.UpdatePlayerStatus(ctx, player.SessionID, player.ID, model.PlayerConnected); err != nil {
		g.log.Warn("player activity update failed", zap.String("player_id", player.ID), zap.Error(err))
	}
	return nil
}

// GMUpdate applies a typed partial state patch directly, bypassing the
// per-station action rules. Only a peer whose resolved role is gm may use
// it. The resulting state is broadcast to the whole session room.
func (g *GameService) GMUpdate(ctx context.Context, p *Peer, patch *model.StatePatch) error {
	player, err := g.sessions.GetPlayerBySocketID(ctx, p.SocketID)
	if err != nil {
		if errors.Is(err, errs.ErrPlayerNotFound) {
			return errs.ErrNotJoined
		}
		return err
	}
	if player.Role != model.RoleGM {
		return errs.ErrUnauthorized
	}
	if patch == nil {
		return nil
	}

	lock := g.sessionLock(player.SessionID)
	lock.Lock()
	defer lock.Unlock()

	var gs *model.GameState
	for attempt := 0; ; attempt++ {
		gs, err = g.states.UpdateState(ctx, player.SessionID, patch)
		if err == nil {
			break
		}
		if !errors.Is(err, errs.ErrVersionConflict) || attempt >= saveRetries {
			return err
		}
	}

	g.hub.BroadcastSession(player.SessionID, &model.ServerEnvelope{Type: model.EnvelopeStateUpdate, State: gs})
	g.log.Info("gm update applied",
		zap.String("session_id", player.SessionID),
		zap.String("player_id", player.ID),
		zap.Int64("version", gs.Version))
	return nil
}

// Disconnect handles transport close: the roster entry is kept but marked
// disconnected, the socket index entry is dropped and the room is told the
// player left. Calling it twice for the same socket is a no-op.
func (g *GameService) Disconnect(ctx context.Context, p *Peer) {
	player, err := g.sessions.GetPlayerBySocketID(ctx, p.SocketID)
	if err != nil {
		// Unknown socket: never joined, or already handled.
		return
	}

	if err := g.sessions.UpdatePlayerStatus(ctx, player.SessionID, player.ID, model.PlayerDisconnected); err != nil && !errors.Is(err, errs.ErrPlayerNotFound) {
		g.log.Warn("disconnect status update failed", zap.String("player_id", player.ID), zap.Error(err))
	}
	if err := g.sessions.RemovePlayerSocketID(ctx, p.SocketID); err != nil {
		g.log.Warn("socket index removal failed", zap.String("socket_id", p.SocketID), zap.Error(err))
	}
	g.hub.BroadcastExcept(player.SessionID, p, &model.ServerEnvelope{Type: model.EnvelopePlayerLeft, PlayerID: player.ID})

	g.log.Info("player disconnected",
		zap.String("session_id", player.SessionID),
		zap.String("player_id", player.ID))
}

// Leave handles an explicit leave_session: unlike Disconnect it removes the
// roster entry, freeing the station.
func (g *GameService) Leave(ctx context.Context, p *Peer) error {
	player, err := g.sessions.GetPlayerBySocketID(ctx, p.SocketID)
	if err != nil {
		if errors.Is(err, errs.ErrPlayerNotFound) {
			return errs.ErrNotJoined
		}
		return err
	}
	if err := g.sessions.RemovePlayer(ctx, player.SessionID, player.ID); err != nil {
		return err
	}
	if err := g.sessions.RemovePlayerSocketID(ctx, p.SocketID); err != nil {
		g.log.Warn("socket index removal failed", zap.String("socket_id", p.SocketID), zap.Error(err))
	}
	g.hub.BroadcastExcept(player.SessionID, p, &model.ServerEnvelope{Type: model.EnvelopePlayerLeft, PlayerID: player.ID})
	return nil
}

// TeardownSession is the admin cleanup path: it deletes the state document,
// the session record and the roster, and closes every live connection.
func (g *GameService) TeardownSession(ctx context.Context, sessionID string) error {
	lock := g.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := g.sessions.GetSession(ctx, sessionID); err != nil {
		return err
	}
	if err := g.states.DeleteState(ctx, sessionID); err != nil {
		return err
	}
	if err := g.sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	g.hub.CloseSession(sessionID)

	// The lock entry goes with the session; auto-creation would otherwise
	// grow the map by one mutex per session id ever seen.
	g.mu.Lock()
	delete(g.locks, sessionID)
	g.mu.Unlock()
	return nil
}
