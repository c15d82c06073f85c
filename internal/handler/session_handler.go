package handler

import (
	"speakup/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler exposes the practice-session state machine
type SessionHandler struct {
	session *service.SessionManager
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(session *service.SessionManager) *SessionHandler {
	return &SessionHandler{session: session}
}

type sessionStateResponse struct {
	State service.SessionState `json:"state"`
}

// Get godoc
// @Summary Get the current session state
// @Tags session
// @Produce json
// @Success 200 {object} handler.sessionStateResponse
// @Router /session [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	return c.JSON(sessionStateResponse{State: h.session.State()})
}

// StartRecording godoc
// @Summary Mark a recording as started
// @Tags session
// @Produce json
// @Success 200 {object} handler.sessionStateResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /session/recording [post]
func (h *SessionHandler) StartRecording(c *fiber.Ctx) error {
	if err := h.session.StartRecording(); err != nil {
		return err
	}
	return c.JSON(sessionStateResponse{State: h.session.State()})
}

// Reset godoc
// @Summary Return the session to idle
// @Description Aborts a recording or dismisses results; an in-flight analysis cannot be reset
// @Tags session
// @Produce json
// @Success 200 {object} handler.sessionStateResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /session/reset [post]
func (h *SessionHandler) Reset(c *fiber.Ctx) error {
	if err := h.session.Reset(); err != nil {
		return err
	}
	return c.JSON(sessionStateResponse{State: h.session.State()})
}
