package handler

import (
	"io"
	"strconv"

	"speakup/internal/dto"
	"speakup/internal/logger"
	"speakup/internal/service"
	"speakup/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AnalysisHandler handles speech analysis HTTP requests
type AnalysisHandler struct {
	analysis  service.AnalysisService
	session   *service.SessionManager
	validator *validation.Validator
}

// NewAnalysisHandler creates a new AnalysisHandler instance
func NewAnalysisHandler(analysis service.AnalysisService, session *service.SessionManager, validator *validation.Validator) *AnalysisHandler {
	return &AnalysisHandler{
		analysis:  analysis,
		session:   session,
		validator: validator,
	}
}

// Analyze godoc
// @Summary Analyze a recorded practice attempt
// @Description Submits a recording for AI analysis and applies XP, streak and badge updates
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Recorded audio"
// @Param context formData string true "Practice context"
// @Param duration_seconds formData number false "Recording duration in seconds"
// @Success 200 {object} dto.AnalyzeResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /analyses [post]
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	contextLabel := c.FormValue("context")
	durationSeconds := parseDuration(c.FormValue("duration_seconds"))

	fileHeader, err := c.FormFile("audio")
	audioSize := 0
	if err == nil && fileHeader != nil {
		audioSize = int(fileHeader.Size)
	}

	if errs := h.validator.ValidateAnalyzeRequest(contextLabel, durationSeconds, audioSize); len(errs) > 0 {
		return errs
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Get().Error("Failed to open uploaded audio", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "unreadable audio upload")
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		logger.Get().Error("Failed to read uploaded audio", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "unreadable audio upload")
	}

	if err := h.session.BeginAnalysis(); err != nil {
		return err
	}
	// Deferred so a panic unwinding through the recover middleware still
	// releases the session instead of leaving it stuck in Analyzing.
	succeeded := false
	defer func() { h.session.CompleteAnalysis(succeeded) }()

	resp, err := h.analysis.Analyze(c.Context(), &dto.AnalyzeRequest{
		Audio:           audio,
		MIMEType:        fileHeader.Header.Get("Content-Type"),
		Context:         contextLabel,
		DurationSeconds: durationSeconds,
	})
	if err != nil {
		return err
	}
	succeeded = true

	return c.JSON(resp)
}

// parseDuration tolerates a missing or unparseable duration field; the
// WPM derivation treats non-positive durations as one minute.
func parseDuration(raw string) float64 {
	if raw == "" {
		return 0
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return d
}
