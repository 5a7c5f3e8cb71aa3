package model

import "encoding/json"

// Client → server envelope types.
const (
	EnvelopeJoinSession  = "join_session"
	EnvelopePlayerAction = "player_action"
	EnvelopeGMUpdate     = "gm_update"
	EnvelopeLeaveSession = "leave_session"
)

// Server → client envelope types.
const (
	EnvelopeConnected      = "connected"
	EnvelopeStateUpdate    = "state_update"
	EnvelopePlayerJoined   = "player_joined"
	EnvelopePlayerLeft     = "player_left"
	EnvelopeError          = "error"
	EnvelopeGMNotification = "gm_notification"
)

// ClientEnvelope is the single inbound message shape. Type selects which
// payload fields are meaningful; unknown types are ignored.
type ClientEnvelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Station   Station         `json:"station,omitempty"`
	Name      string          `json:"name,omitempty"`
	Token     string          `json:"token,omitempty"`
	Action    string          `json:"action,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Changes   *StatePatch     `json:"changes,omitempty"`
}

// ServerEnvelope is the outbound message shape. Exactly one payload field is
// set per Type.
type ServerEnvelope struct {
	Type         string          `json:"type"`
	SocketID     string          `json:"socketId,omitempty"`
	State        *GameState      `json:"state,omitempty"`
	Player       *Player         `json:"player,omitempty"`
	PlayerID     string          `json:"playerId,omitempty"`
	Error        *ErrorPayload   `json:"error,omitempty"`
	Notification *GMNotification `json:"notification,omitempty"`
}

// ErrorPayload carries a user-facing rejection with a stable machine code.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// GMNotification is the lightweight heads-up sent to the GM sub-room for
// selected high-signal actions, distinct from the full state broadcast.
type GMNotification struct {
	Type    string          `json:"type"`
	Station Station         `json:"station"`
	Action  string          `json:"action"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// StatePatch is a typed partial GameState for gm_update. Only non-nil fields
// are merged; the patch must match the state schema rather than being an
// arbitrary JSON merge, so a GM client cannot introduce unknown subtrees.
type StatePatch struct {
	MissionStatus  *MissionStatus       `json:"missionStatus,omitempty"`
	AlertLevel     *AlertLevel          `json:"alertLevel,omitempty"`
	Systems        *SystemsState        `json:"systems,omitempty"`
	Navigation     *NavigationState     `json:"navigation,omitempty"`
	Weapons        *WeaponsState        `json:"weapons,omitempty"`
	Communications *CommunicationsState `json:"communications,omitempty"`
	Engineering    *EngineeringState    `json:"engineering,omitempty"`
	Command        *CommandState        `json:"command,omitempty"`
	Environment    *EnvironmentState    `json:"environment,omitempty"`
}

// Apply shallow-merges the patch's set fields onto the state.
func (p *StatePatch) Apply(gs *GameState) {
	if p == nil {
		return
	}
	if p.MissionStatus != nil {
		gs.MissionStatus = *p.MissionStatus
	}
	if p.AlertLevel != nil {
		gs.AlertLevel = *p.AlertLevel
	}
	if p.Systems != nil {
		gs.Systems = *p.Systems
	}
	if p.Navigation != nil {
		gs.Navigation = *p.Navigation
	}
	if p.Weapons != nil {
		gs.Weapons = *p.Weapons
	}
	if p.Communications != nil {
		gs.Communications = *p.Communications
	}
	if p.Engineering != nil {
		gs.Engineering = *p.Engineering
	}
	if p.Command != nil {
		gs.Command = *p.Command
	}
	if p.Environment != nil {
		gs.Environment = *p.Environment
	}
}
