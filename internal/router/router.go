package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/handler"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/pkg/constants"
)

// New builds the HTTP router.
func New(
	sessionHandler *handler.SessionHandler,
	bridgeWS *handler.BridgeWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// REST sessions
	sessions := r.Group("/sessions")
	{
		sessions.POST("", sessionHandler.CreateSession)
		sessions.GET("/:id", sessionHandler.GetSession)
		sessions.GET("/:id/players", sessionHandler.GetSessionPlayers)
		sessions.DELETE("/:id", sessionHandler.DeleteSession)
	}

	// WebSocket: the envelope protocol (join_session / player_action / gm_update)
	r.GET(constants.PathBridgeWS, bridgeWS.ServeWS)

	return r
}
