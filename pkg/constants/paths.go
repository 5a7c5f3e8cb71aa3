package constants

// Route paths shared between the router and handlers.
const (
	PathHealth   = "/health"
	PathReady    = "/ready"
	PathBridgeWS = "/ws/bridge"
)
