package dto

import "time"

// ProfileResponse is the gamification profile exposed to the client.
// @Description User profile with XP, level, streak and badges
type ProfileResponse struct {
	TotalXP          int             `json:"totalXp"`
	Level            int             `json:"level"`
	Streak           int             `json:"streak"`
	LastTrainingDate *time.Time      `json:"lastTrainingDate"`
	Badges           []BadgeResponse `json:"badges"`
	Persona          string          `json:"persona"`
	Language         string          `json:"language"`
}

// CatalogBadgeResponse pairs a catalog badge with its unlock state.
type CatalogBadgeResponse struct {
	BadgeResponse
	Unlocked bool `json:"unlocked"`
}

// SetPersonaRequest selects the coaching tone.
type SetPersonaRequest struct {
	Persona string `json:"persona"`
}

// SetLanguageRequest selects the feedback language.
type SetLanguageRequest struct {
	Language string `json:"language"`
}
