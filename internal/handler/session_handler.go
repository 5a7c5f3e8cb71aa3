package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/errs"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/model"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/service"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/store"
)

// SessionHandler handles the REST surface for sessions.
type SessionHandler struct {
	sessions *store.SessionStore
	game     *service.GameService
	wsPath   string
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(sessions *store.SessionStore, game *service.GameService, wsPath string) *SessionHandler {
	return &SessionHandler{sessions: sessions, game: game, wsPath: wsPath}
}

// CreateSession godoc
// POST /sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	sess, err := h.sessions.CreateSession(c.Request.Context(), req.Name, "", req.MaxPlayers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, model.CreateSessionResponse{
		SessionID: sess.ID,
		Name:      sess.Name,
		Status:    string(sess.Status),
		WSURL:     h.wsPath,
	})
}

// GetSession godoc
// GET /sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")
	sess, err := h.sessions.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// GetSessionPlayers godoc
// GET /sessions/:id/players
func (h *SessionHandler) GetSessionPlayers(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.sessions.GetSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}
	players, err := h.sessions.GetSessionPlayers(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get players"})
		return
	}
	// Reconnect tokens are private to their owners.
	for i := range players {
		players[i].Token = ""
	}
	c.JSON(http.StatusOK, model.SessionPlayersResponse{
		SessionID: sessionID,
		Players:   players,
	})
}

// DeleteSession godoc
// DELETE /sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	err := h.game.TeardownSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}
	c.Status(http.StatusNoContent)
}
