package dto

import "speakup/internal/domain"

// AnalyzeRequest carries one stopped recording into the coordinator.
type AnalyzeRequest struct {
	Audio           []byte
	MIMEType        string
	Context         string
	DurationSeconds float64
}

// BadgeResponse describes one unlocked achievement.
// @Description Achievement information
type BadgeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// AnalyzeResponse is the outcome of one practice attempt: the analysis
// itself plus the gamification side effects it caused.
// @Description Analysis outcome with profile progression
type AnalyzeResponse struct {
	Result    domain.AnalysisResult `json:"result"`
	Saved     bool                  `json:"saved"`
	Profile   *ProfileResponse      `json:"profile,omitempty"`
	NewBadges []BadgeResponse       `json:"new_badges,omitempty"`
}
