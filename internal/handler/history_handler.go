package handler

import (
	"speakup/internal/domain"
	"speakup/internal/dto"
	"speakup/internal/service"
	"speakup/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// HistoryHandler handles practice history HTTP requests
type HistoryHandler struct {
	history   service.HistoryService
	validator *validation.Validator
}

// NewHistoryHandler creates a new HistoryHandler instance
func NewHistoryHandler(history service.HistoryService, validator *validation.Validator) *HistoryHandler {
	return &HistoryHandler{
		history:   history,
		validator: validator,
	}
}

// List godoc
// @Summary List practice history
// @Description Returns all stored analysis results, most recent first
// @Tags history
// @Produce json
// @Success 200 {object} dto.HistoryListResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	results, err := h.history.List(c.Context())
	if err != nil {
		return err
	}
	if results == nil {
		results = []domain.AnalysisResult{}
	}
	return c.JSON(dto.HistoryListResponse{
		Items: results,
		Count: len(results),
	})
}

// Get godoc
// @Summary Get one analysis result
// @Tags history
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} domain.AnalysisResult
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /history/{id} [get]
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if errs := h.validator.ValidateResultID(id); len(errs) > 0 {
		return errs
	}

	result, err := h.history.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetAudio godoc
// @Summary Download the recording of an attempt
// @Tags history
// @Produce octet-stream
// @Param id path string true "Result ID"
// @Success 200 {file} binary
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /history/{id}/audio [get]
func (h *HistoryHandler) GetAudio(c *fiber.Ctx) error {
	id := c.Params("id")
	if errs := h.validator.ValidateResultID(id); len(errs) > 0 {
		return errs
	}

	data, err := h.history.GetAudio(c.Context(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/octet-stream")
	return c.Send(data)
}

// Delete godoc
// @Summary Delete one attempt and its recording
// @Description Deleting an unknown id is a no-op
// @Tags history
// @Param id path string true "Result ID"
// @Success 204
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /history/{id} [delete]
func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if errs := h.validator.ValidateResultID(id); len(errs) > 0 {
		return errs
	}

	if err := h.history.DeleteByID(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear godoc
// @Summary Delete all history and recordings
// @Tags history
// @Success 204
// @Failure 500 {object} middleware.ErrorResponse
// @Router /history [delete]
func (h *HistoryHandler) Clear(c *fiber.Ctx) error {
	if err := h.history.Clear(c.Context()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Compare godoc
// @Summary Compare two attempts side by side
// @Tags history
// @Produce json
// @Param a query string true "First result ID"
// @Param b query string true "Second result ID"
// @Success 200 {object} dto.CompareResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /history/compare [get]
func (h *HistoryHandler) Compare(c *fiber.Ctx) error {
	idA := c.Query("a")
	idB := c.Query("b")

	errs := h.validator.ValidateResultID(idA)
	errs = append(errs, h.validator.ValidateResultID(idB)...)
	if len(errs) > 0 {
		return errs
	}

	cmp, err := h.history.Compare(c.Context(), idA, idB)
	if err != nil {
		return err
	}
	return c.JSON(cmp)
}
