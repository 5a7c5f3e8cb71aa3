package model

import "time"

// SessionStatus represents the lifecycle state of a bridge session.
type SessionStatus string

const (
	SessionStatusWaiting   SessionStatus = "waiting"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
)

// Station is a role-specific control surface on the bridge.
type Station string

const (
	StationPilot     Station = "pilot"
	StationGunner    Station = "gunner"
	StationEngineer  Station = "engineer"
	StationCommander Station = "commander"
	StationComms     Station = "comms"
	StationGM        Station = "gm"
)

// Stations lists the five playable station domains (GM excluded).
var Stations = []Station{StationPilot, StationGunner, StationEngineer, StationCommander, StationComms}

// Role determines what a participant may do in a session.
type Role string

const (
	RolePlayer    Role = "player"
	RoleGM        Role = "gm"
	RoleSpectator Role = "spectator"
)

// PlayerStatus tracks a participant's connection state.
type PlayerStatus string

const (
	PlayerConnected    PlayerStatus = "connected"
	PlayerDisconnected PlayerStatus = "disconnected"
	PlayerAway         PlayerStatus = "away"
)

// SessionSettings holds per-session policy flags.
type SessionSettings struct {
	AllowSpectators   bool `json:"allowSpectators"`
	AutoSave          bool `json:"autoSave"`
	PauseOnDisconnect bool `json:"pauseOnDisconnect"`
	SessionTimeout    int  `json:"sessionTimeout"` // seconds
	StationTimeout    int  `json:"stationTimeout"` // seconds
}

// GameSession is the per-session metadata record. The matching GameState is
// created together with it and keyed by the same id.
type GameSession struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Status     SessionStatus   `json:"status"`
	MaxPlayers int             `json:"maxPlayers"`
	GameMode   string          `json:"gameMode"`
	Difficulty string          `json:"difficulty"`
	Settings   SessionSettings `json:"settings"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Player is one participant in a session. UserID is the transport connection
// id of the player's current socket; Token is the stable reconnect token
// issued on first join, so a dropped connection can resume the same seat.
type Player struct {
	ID           string       `json:"id"`
	SessionID    string       `json:"sessionId"`
	UserID       string       `json:"userId"`
	Token        string       `json:"token,omitempty"`
	Name         string       `json:"name"`
	Station      Station      `json:"station"`
	Role         Role         `json:"role"`
	Status       PlayerStatus `json:"status"`
	JoinedAt     time.Time    `json:"joinedAt"`
	LastActivity time.Time    `json:"lastActivity"`
}

// CreateSessionRequest is the request body for POST /sessions.
type CreateSessionRequest struct {
	Name       string `json:"name" binding:"required"`
	MaxPlayers int    `json:"max_players"`
}

// CreateSessionResponse is the response for POST /sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	WSURL     string `json:"ws_url"`
}

// SessionPlayersResponse is the response for GET /sessions/:id/players.
type SessionPlayersResponse struct {
	SessionID string   `json:"session_id"`
	Players   []Player `json:"players"`
}
