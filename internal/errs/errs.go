package errs

import "errors"

// Domain sentinel errors, mapped to HTTP codes in handlers and to WS error
// envelope codes in the gateway.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStateNotFound   = errors.New("game state not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSessionFull     = errors.New("session has maximum players")
	ErrStationOccupied = errors.New("station already occupied")
	ErrUnauthorized    = errors.New("not authorized for this action")
	ErrVersionConflict = errors.New("state version conflict")
	ErrNotJoined       = errors.New("connection has not joined a session")
)

// Code returns the stable machine-readable code for err, used in the WS
// error envelope. Unknown errors map to internal_error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrStateNotFound):
		return "state_not_found"
	case errors.Is(err, ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, ErrSessionFull):
		return "session_full"
	case errors.Is(err, ErrStationOccupied):
		return "station_occupied"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, ErrNotJoined):
		return "not_joined"
	default:
		return "internal_error"
	}
}
