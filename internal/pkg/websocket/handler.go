package websocket

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models/dto"
)

var knownTopics = map[string]bool{
	EntityUser:    true,
	EntityTeam:    true,
	EntityProject: true,
	EntityReview:  true,
	allTopics:     true,
}

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: newUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// ParseTopics splits a comma separated topic list; an empty list subscribes to everything
func ParseTopics(raw string) ([]string, bool) {
	if strings.TrimSpace(raw) == "" {
		return []string{allTopics}, true
	}
	seen := make(map[string]bool)
	topics := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		t := strings.ToLower(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		if !knownTopics[t] {
			return nil, false
		}
		seen[t] = true
		topics = append(topics, t)
	}
	if len(topics) == 0 {
		return []string{allTopics}, true
	}
	return topics, true
}

// HandleConnection godoc
// @Summary Subscribe to entity change events
// @Description Upgrades to a WebSocket that streams an event whenever users, teams, projects or reviews change
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param topics query string false "Comma separated entities: user, team, project, review"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.ErrorResponse "Unknown topic"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /admin/events/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userIDValue, exists := c.Get("userID")
	userID, ok := userIDValue.(int64)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"),
		))
		return
	}

	topics, ok := ParseTopics(c.Query("topics"))
	if !ok {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Unknown event topic").
				WithSeverity(dto.ErrorSeverityWarning).
				WithField("topics"),
		))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		id:     uuid.NewString(),
		userID: userID,
		topics: topics,
		logger: h.logger,
	}
	if !client.hub.Register(client) {
		h.logger.Warn().Int64("userID", userID).Msg("Event hub stopped, closing WebSocket connection")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", userID).
		Str("clientID", client.id).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
