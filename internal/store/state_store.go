package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/errs"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
)

// StateStore persists one GameState JSON document per session under
// game_state:<sessionID>, with optimistic concurrency on Version.
type StateStore struct {
	kv  KV
	ttl time.Duration
	log *zap.Logger
}

// NewStateStore creates a state store with the given idle TTL.
func NewStateStore(kv KV, ttl time.Duration, log *zap.Logger) *StateStore {
	return &StateStore{kv: kv, ttl: ttl, log: log}
}

// GetState returns the state for sessionID or errs.ErrStateNotFound. The
// store never synthesizes a default document; creation goes through the
// state factory and SaveState.
func (s *StateStore) GetState(ctx context.Context, sessionID string) (*model.GameState, error) {
	raw, err := s.kv.Get(ctx, keyGameState+sessionID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, errs.ErrStateNotFound
		}
		s.log.Error("state read failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("get state: %w", err)
	}
	var gs model.GameState
	if err := json.Unmarshal(raw, &gs); err != nil {
		s.log.Error("state unmarshal failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &gs, nil
}

// SaveState stamps the timestamp, increments the version and writes the
// document, refreshing its TTL. The version carried in gs is treated as the
// version the caller read; if the stored document has moved past it the save
// is rejected with errs.ErrVersionConflict and the caller must re-fetch and
// retry.
func (s *StateStore) SaveState(ctx context.Context, gs *model.GameState) error {
	current, err := s.GetState(ctx, gs.SessionID)
	switch {
	case err == nil:
		if current.Version != gs.Version {
			return errs.ErrVersionConflict
		}
	case errors.Is(err, errs.ErrStateNotFound):
		// First save for this session.
	default:
		return err
	}

	gs.Version++
	gs.Timestamp = time.Now()
	raw, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.kv.Set(ctx, keyGameState+gs.SessionID, raw, s.ttl); err != nil {
		s.log.Error("state write failed", zap.String("session_id", gs.SessionID), zap.Error(err))
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// UpdateState fetches the current state, applies the typed patch on top-level
// fields and saves. A missing base document is an error, never an implicit
// create.
func (s *StateStore) UpdateState(ctx context.Context, sessionID string, patch *model.StatePatch) (*model.GameState, error) {
	gs, err := s.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	patch.Apply(gs)
	if err := s.SaveState(ctx, gs); err != nil {
		return nil, err
	}
	return gs, nil
}

// DeleteState removes the session's state document. Idempotent.
func (s *StateStore) DeleteState(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, keyGameState+sessionID); err != nil {
		s.log.Error("state delete failed", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}
