package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/errs"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/state"
)

// SessionStore persists GameSession metadata, the per-session player roster
// and the socket-id → player index, each in its own TTL'd keyspace.
type SessionStore struct {
	kv         KV
	states     *StateStore
	ttl        time.Duration
	socketTTL  time.Duration
	defaultMax int
	log        *zap.Logger
}

// NewSessionStore creates a session store. The state store is needed so that
// session creation and initial state creation happen as one logical unit.
// defaultMax is the capacity used when a create request does not specify one;
// zero falls back to DefaultMaxPlayers.
func NewSessionStore(kv KV, states *StateStore, ttl, socketTTL time.Duration, defaultMax int, log *zap.Logger) *SessionStore {
	if defaultMax <= 0 {
		defaultMax = DefaultMaxPlayers
	}
	return &SessionStore{kv: kv, states: states, ttl: ttl, socketTTL: socketTTL, defaultMax: defaultMax, log: log}
}

// DefaultMaxPlayers is used when neither the create request nor configuration
// specifies a capacity.
const DefaultMaxPlayers = 8

// CreateSession allocates a session (generating an id when absent), writes
// the initial GameState first and the session record second, so a session
// can never be observed without its state document.
func (s *SessionStore) CreateSession(ctx context.Context, name, sessionID string, maxPlayers int) (*model.GameSession, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if maxPlayers <= 0 {
		maxPlayers = s.defaultMax
	}
	if err := s.states.SaveState(ctx, state.NewGameState(sessionID)); err != nil {
		return nil, fmt.Errorf("create initial state: %w", err)
	}
	now := time.Now()
	sess := &model.GameSession{
		ID:         sessionID,
		Name:       name,
		Status:     model.SessionStatusWaiting,
		MaxPlayers: maxPlayers,
		GameMode:   "campaign",
		Difficulty: "normal",
		Settings: model.SessionSettings{
			AllowSpectators:   true,
			AutoSave:          true,
			PauseOnDisconnect: false,
			SessionTimeout:    int(s.ttl / time.Second),
			StationTimeout:    300,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.savePlayers(ctx, sessionID, []model.Player{}); err != nil {
		return nil, err
	}
	s.log.Info("session created", zap.String("session_id", sessionID), zap.String("name", name))
	return sess, nil
}

// GetSession returns the session record or errs.ErrSessionNotFound.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*model.GameSession, error) {
	raw, err := s.kv.Get(ctx, keySession+sessionID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, errs.ErrSessionNotFound
		}
		s.log.Error("session read failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess model.GameSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// SaveSession writes the session record, refreshing UpdatedAt and the TTL.
func (s *SessionStore) SaveSession(ctx context.Context, sess *model.GameSession) error {
	sess.UpdatedAt = time.Now()
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, keySession+sess.ID, raw, s.ttl); err != nil {
		s.log.Error("session write failed", zap.String("session_id", sess.ID), zap.Error(err))
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// UpdateSessionStatus transitions the session lifecycle status.
func (s *SessionStore) UpdateSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus) error {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Status = status
	return s.SaveSession(ctx, sess)
}

// DeleteSession removes the session record and its roster. Idempotent.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, keySession+sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.kv.Delete(ctx, keyPlayers+sessionID); err != nil {
		return fmt.Errorf("delete players: %w", err)
	}
	return nil
}

// AddPlayer validates capacity and station exclusivity and appends a new
// player to the roster. Spectators bypass the capacity check; the GM role is
// exempt from station exclusivity.
func (s *SessionStore) AddPlayer(ctx context.Context, sessionID, userID, name string, station model.Station, role model.Role) (*model.Player, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	players, err := s.GetSessionPlayers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleSpectator && len(players) >= sess.MaxPlayers {
		return nil, errs.ErrSessionFull
	}
	if role == model.RolePlayer {
		for _, p := range players {
			if p.Station == station && p.Status == model.PlayerConnected && p.Role == model.RolePlayer {
				return nil, errs.ErrStationOccupied
			}
		}
	}
	now := time.Now()
	player := model.Player{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		UserID:       userID,
		Token:        uuid.New().String(),
		Name:         name,
		Station:      station,
		Role:         role,
		Status:       model.PlayerConnected,
		JoinedAt:     now,
		LastActivity: now,
	}
	players = append(players, player)
	if err := s.savePlayers(ctx, sessionID, players); err != nil {
		return nil, err
	}
	return &player, nil
}

// RemovePlayer filters the player out of the roster. Used for explicit
// leave and admin cleanup; ordinary disconnect only flips status.
func (s *SessionStore) RemovePlayer(ctx context.Context, sessionID, playerID string) error {
	players, err := s.GetSessionPlayers(ctx, sessionID)
	if err != nil {
		return err
	}
	kept := players[:0]
	for _, p := range players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	return s.savePlayers(ctx, sessionID, kept)
}

// UpdatePlayer replaces the roster entry matching updated.ID.
func (s *SessionStore) UpdatePlayer(ctx context.Context, updated *model.Player) error {
	players, err := s.GetSessionPlayers(ctx, updated.SessionID)
	if err != nil {
		return err
	}
	for i := range players {
		if players[i].ID == updated.ID {
			players[i] = *updated
			return s.savePlayers(ctx, updated.SessionID, players)
		}
	}
	return errs.ErrPlayerNotFound
}

// UpdatePlayerStatus sets the player's status and refreshes LastActivity.
func (s *SessionStore) UpdatePlayerStatus(ctx context.Context, sessionID, playerID string, status model.PlayerStatus) error {
	players, err := s.GetSessionPlayers(ctx, sessionID)
	if err != nil {
		return err
	}
	for i := range players {
		if players[i].ID == playerID {
			players[i].Status = status
			players[i].LastActivity = time.Now()
			return s.savePlayers(ctx, sessionID, players)
		}
	}
	return errs.ErrPlayerNotFound
}

// GetSessionPlayers returns the roster for a session.
func (s *SessionStore) GetSessionPlayers(ctx context.Context, sessionID string) ([]model.Player, error) {
	raw, err := s.kv.Get(ctx, keyPlayers+sessionID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []model.Player{}, nil
		}
		return nil, fmt.Errorf("get players: %w", err)
	}
	var players []model.Player
	if err := json.Unmarshal(raw, &players); err != nil {
		return nil, fmt.Errorf("decode players: %w", err)
	}
	return players, nil
}

// GetPlayerByToken resolves a roster entry by its reconnect token.
func (s *SessionStore) GetPlayerByToken(ctx context.Context, sessionID, token string) (*model.Player, error) {
	if token == "" {
		return nil, errs.ErrPlayerNotFound
	}
	players, err := s.GetSessionPlayers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range players {
		if players[i].Token == token {
			return &players[i], nil
		}
	}
	return nil, errs.ErrPlayerNotFound
}

// GetPlayerBySocketID resolves which player a transport connection belongs
// to, without scanning any session roster.
func (s *SessionStore) GetPlayerBySocketID(ctx context.Context, socketID string) (*model.Player, error) {
	raw, err := s.kv.Get(ctx, keySocket+socketID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, errs.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get socket index: %w", err)
	}
	var p model.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode socket index: %w", err)
	}
	return &p, nil
}

// SetPlayerSocketID records the connection → player association.
func (s *SessionStore) SetPlayerSocketID(ctx context.Context, socketID string, player *model.Player) error {
	raw, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("encode socket index: %w", err)
	}
	if err := s.kv.Set(ctx, keySocket+socketID, raw, s.socketTTL); err != nil {
		s.log.Error("socket index write failed", zap.String("socket_id", socketID), zap.Error(err))
		return fmt.Errorf("set socket index: %w", err)
	}
	return nil
}

// RemovePlayerSocketID drops the connection → player association.
func (s *SessionStore) RemovePlayerSocketID(ctx context.Context, socketID string) error {
	return s.kv.Delete(ctx, keySocket+socketID)
}

func (s *SessionStore) savePlayers(ctx context.Context, sessionID string, players []model.Player) error {
	raw, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	if err := s.kv.Set(ctx, keyPlayers+sessionID, raw, s.ttl); err != nil {
		s.log.Error("players write failed", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("save players: %w", err)
	}
	return nil
}
