package handler

import (
	"speakup/internal/domain"
	"speakup/internal/dto"
	"speakup/internal/service"
	"speakup/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler handles user profile HTTP requests
type ProfileHandler struct {
	profiles  service.ProfileService
	validator *validation.Validator
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(profiles service.ProfileService, validator *validation.Validator) *ProfileHandler {
	return &ProfileHandler{
		profiles:  profiles,
		validator: validator,
	}
}

// Get godoc
// @Summary Get the user profile
// @Description Returns XP, level, streak, badges and preferences
// @Tags profile
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Router /profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profile := h.profiles.GetProfile(c.Context())
	return c.JSON(service.NewProfileResponse(profile))
}

// SetPersona godoc
// @Summary Select the coaching persona
// @Tags profile
// @Accept json
// @Produce json
// @Param persona body dto.SetPersonaRequest true "Persona selection"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /profile/persona [put]
func (h *ProfileHandler) SetPersona(c *fiber.Ctx) error {
	var req dto.SetPersonaRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidatePersona(req.Persona); len(errs) > 0 {
		return errs
	}

	if err := h.profiles.SetPersona(c.Context(), domain.Persona(req.Persona)); err != nil {
		return err
	}
	return c.JSON(service.NewProfileResponse(h.profiles.GetProfile(c.Context())))
}

// SetLanguage godoc
// @Summary Select the feedback language
// @Tags profile
// @Accept json
// @Produce json
// @Param language body dto.SetLanguageRequest true "Language selection"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /profile/language [put]
func (h *ProfileHandler) SetLanguage(c *fiber.Ctx) error {
	var req dto.SetLanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateLanguage(req.Language); len(errs) > 0 {
		return errs
	}

	if err := h.profiles.SetLanguage(c.Context(), domain.Language(req.Language)); err != nil {
		return err
	}
	return c.JSON(service.NewProfileResponse(h.profiles.GetProfile(c.Context())))
}

// Badges godoc
// @Summary List the full badge catalog
// @Description Returns every badge with its unlock state
// @Tags profile
// @Produce json
// @Success 200 {array} dto.CatalogBadgeResponse
// @Router /profile/badges [get]
func (h *ProfileHandler) Badges(c *fiber.Ctx) error {
	profile := h.profiles.GetProfile(c.Context())

	catalog := make([]dto.CatalogBadgeResponse, 0, len(domain.Catalog))
	for _, badge := range domain.Catalog {
		catalog = append(catalog, dto.CatalogBadgeResponse{
			BadgeResponse: dto.BadgeResponse{
				ID:          badge.ID,
				Name:        badge.Name,
				Description: badge.Description,
				Icon:        badge.Icon,
			},
			Unlocked: profile.HasBadge(badge.ID),
		})
	}
	return c.JSON(catalog)
}
