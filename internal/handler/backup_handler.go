package handler

import (
	"speakup/internal/dto"
	"speakup/internal/service"

	"github.com/gofiber/fiber/v2"
)

// BackupHandler handles backup export and import HTTP requests
type BackupHandler struct {
	backup  service.BackupService
	history service.HistoryService
}

// NewBackupHandler creates a new BackupHandler instance
func NewBackupHandler(backup service.BackupService, history service.HistoryService) *BackupHandler {
	return &BackupHandler{
		backup:  backup,
		history: history,
	}
}

// Export godoc
// @Summary Export profile and history as a backup document
// @Description Audio recordings are excluded from the document
// @Tags backup
// @Produce json
// @Success 200 {object} dto.BackupDocument
// @Failure 500 {object} middleware.ErrorResponse
// @Router /backup/export [get]
func (h *BackupHandler) Export(c *fiber.Ctx) error {
	doc, err := h.backup.Export(c.Context())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="speakup-backup.json"`)
	return c.JSON(doc)
}

// Import godoc
// @Summary Import a backup document, replacing profile and history
// @Description A document that fails validation leaves existing data untouched
// @Tags backup
// @Accept json
// @Produce json
// @Success 200 {object} dto.ImportResponse
// @Router /backup/import [post]
func (h *BackupHandler) Import(c *fiber.Ctx) error {
	ok := h.backup.Import(c.Context(), c.Body())

	resp := dto.ImportResponse{Imported: ok}
	if ok {
		if results, err := h.history.List(c.Context()); err == nil {
			resp.Results = len(results)
		}
	}
	return c.JSON(resp)
}
