package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/errs"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
)

func newTestSessionStore() (*SessionStore, *StateStore) {
	kv := NewMemoryKV()
	states := NewStateStore(kv, time.Hour, zap.NewNop())
	return NewSessionStore(kv, states, time.Hour, time.Hour, 0, zap.NewNop()), states
}

func TestCreateSessionAlsoCreatesState(t *testing.T) {
	sessions, states := newTestSessionStore()
	ctx := context.Background()

	sess, err := sessions.CreateSession(ctx, "Bridge Alpha", "bridge-alpha-1", 0)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sess.ID != "bridge-alpha-1" {
		t.Fatalf("expected given id kept, got %q", sess.ID)
	}
	if sess.MaxPlayers != DefaultMaxPlayers {
		t.Fatalf("expected default capacity, got %d", sess.MaxPlayers)
	}
	if sess.Status != model.SessionStatusWaiting {
		t.Fatalf("expected waiting status, got %q", sess.Status)
	}

	gs, err := states.GetState(ctx, "bridge-alpha-1")
	if err != nil {
		t.Fatalf("expected matching state to exist: %v", err)
	}
	if gs.Version != 1 {
		t.Fatalf("expected initial state at version 1, got %d", gs.Version)
	}

	// Without an explicit id one is generated.
	sess2, err := sessions.CreateSession(ctx, "Second", "", 4)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sess2.ID == "" {
		t.Fatal("expected a generated session id")
	}
	if sess2.MaxPlayers != 4 {
		t.Fatalf("expected capacity 4, got %d", sess2.MaxPlayers)
	}
}

func TestAddPlayerEnforcesStationExclusivity(t *testing.T) {
	sessions, _ := newTestSessionStore()
	ctx := context.Background()

	if _, err := sessions.CreateSession(ctx, "s", "s1", 8); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := sessions.AddPlayer(ctx, "s1", "sock-1", "Wedge", model.StationPilot, model.RolePlayer)
	if err != nil {
		t.Fatalf("first pilot join failed: %v", err)
	}

	if _, err := sessions.AddPlayer(ctx, "s1", "sock-2", "Biggs", model.StationPilot, model.RolePlayer); !errors.Is(err, errs.ErrStationOccupied) {
		t.Fatalf("expected ErrStationOccupied, got %v", err)
	}
	players, _ := sessions.GetSessionPlayers(ctx, "s1")
	if len(players) != 1 {
		t.Fatalf("expected rejected join to create no roster entry, got %d", len(players))
	}

	// The GM is exempt from exclusivity.
	if _, err := sessions.AddPlayer(ctx, "s1", "sock-3", "GM", model.StationGM, model.RoleGM); err != nil {
		t.Fatalf("gm join failed: %v", err)
	}

	// A disconnected pilot frees the seat.
	if err := sessions.UpdatePlayerStatus(ctx, "s1", first.ID, model.PlayerDisconnected); err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if _, err := sessions.AddPlayer(ctx, "s1", "sock-4", "Biggs", model.StationPilot, model.RolePlayer); err != nil {
		t.Fatalf("expected free seat after disconnect, got %v", err)
	}
}

func TestAddPlayerEnforcesCapacityExceptSpectators(t *testing.T) {
	sessions, _ := newTestSessionStore()
	ctx := context.Background()

	if _, err := sessions.CreateSession(ctx, "s", "s1", 2); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := sessions.AddPlayer(ctx, "s1", "sock-1", "a", model.StationPilot, model.RolePlayer); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := sessions.AddPlayer(ctx, "s1", "sock-2", "b", model.StationGunner, model.RolePlayer); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := sessions.AddPlayer(ctx, "s1", "sock-3", "c", model.StationEngineer, model.RolePlayer); !errors.Is(err, errs.ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
	if _, err := sessions.AddPlayer(ctx, "s1", "sock-4", "watcher", "spectator", model.RoleSpectator); err != nil {
		t.Fatalf("expected spectator to bypass capacity, got %v", err)
	}
}

func TestAddPlayerUnknownSessionFails(t *testing.T) {
	sessions, _ := newTestSessionStore()

	_, err := sessions.AddPlayer(context.Background(), "ghost", "sock-1", "a", model.StationPilot, model.RolePlayer)
	if !errors.Is(err, errs.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdatePlayerStatusUnknownPlayer(t *testing.T) {
	sessions, _ := newTestSessionStore()
	ctx := context.Background()

	if _, err := sessions.CreateSession(ctx, "s", "s1", 8); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := sessions.UpdatePlayerStatus(ctx, "s1", "missing", model.PlayerAway)
	if !errors.Is(err, errs.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestRemovePlayerFiltersRoster(t *testing.T) {
	sessions, _ := newTestSessionStore()
	ctx := context.Background()

	if _, err := sessions.CreateSession(ctx, "s", "s1", 8); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	p, err := sessions.AddPlayer(ctx, "s1", "sock-1", "a", model.StationPilot, model.RolePlayer)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := sessions.RemovePlayer(ctx, "s1", p.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	players, _ := sessions.GetSessionPlayers(ctx, "s1")
	if len(players) != 0 {
		t.Fatalf("expected empty roster, got %d", len(players))
	}
}

func TestSocketIndexLifecycle(t *testing.T) {
	sessions, _ := newTestSessionStore()
	ctx := context.Background()

	if _, err := sessions.CreateSession(ctx, "s", "s1", 8); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	p, err := sessions.AddPlayer(ctx, "s1", "sock-1", "a", model.StationPilot, model.RolePlayer)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if err := sessions.SetPlayerSocketID(ctx, "sock-1", p); err != nil {
		t.Fatalf("index set failed: %v", err)
	}
	got, err := sessions.GetPlayerBySocketID(ctx, "sock-1")
	if err != nil {
		t.Fatalf("index get failed: %v", err)
	}
	if got.ID != p.ID || got.SessionID != "s1" {
		t.Fatalf("unexpected indexed player %+v", got)
	}

	if err := sessions.RemovePlayerSocketID(ctx, "sock-1"); err != nil {
		t.Fatalf("index remove failed: %v", err)
	}
	if _, err := sessions.GetPlayerBySocketID(ctx, "sock-1"); !errors.Is(err, errs.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound after removal, got %v", err)
	}
	// Removing again is a no-op.
	if err := sessions.RemovePlayerSocketID(ctx, "sock-1"); err != nil {
		t.Fatalf("second index remove failed: %v", err)
	}
}

func TestGetPlayerByToken(t *testing.T) {
	sessions, _ := newTestSessionStore()
	ctx := context.Background()

	if _, err := sessions.CreateSession(ctx, "s", "s1", 8); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	p, err := sessions.AddPlayer(ctx, "s1", "sock-1", "a", model.StationPilot, model.RolePlayer)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if p.Token == "" {
		t.Fatal("expected a reconnect token on the new player")
	}

	got, err := sessions.GetPlayerByToken(ctx, "s1", p.Token)
	if err != nil {
		t.Fatalf("token lookup failed: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("token resolved the wrong player: %+v", got)
	}

	if _, err := sessions.GetPlayerByToken(ctx, "s1", "bogus"); !errors.Is(err, errs.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound for bogus token, got %v", err)
	}
	if _, err := sessions.GetPlayerByToken(ctx, "s1", ""); !errors.Is(err, errs.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound for empty token, got %v", err)
	}
}

func TestUpdateSessionStatus(t *testing.T) {
	sessions, _ := newTestSessionStore()
	ctx := context.Background()

	if _, err := sessions.CreateSession(ctx, "s", "s1", 8); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := sessions.UpdateSessionStatus(ctx, "s1", model.SessionStatusPaused); err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	sess, err := sessions.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if sess.Status != model.SessionStatusPaused {
		t.Fatalf("expected paused, got %q", sess.Status)
	}
}
