package service

import (
	"context"
	"time"

	"speakup/internal/domain"
	"speakup/internal/logger"
	"speakup/internal/repository"

	"go.uber.org/zap"
)

// TrainingOutcome reports what one recorded training did to the profile.
// When persistence fails the outcome degrades to a no-op: the prior profile
// comes back unchanged with no badges, and Persisted is false.
type TrainingOutcome struct {
	Profile   domain.UserProfile
	NewBadges []domain.Badge
	Persisted bool
}

// ProfileService owns the single user profile and how it evolves.
type ProfileService interface {
	// GetProfile returns the current profile, creating defaults on first
	// access. It never fails: storage errors are logged and defaults
	// returned so the UI always has a profile to show.
	GetProfile(ctx context.Context) domain.UserProfile

	// RecordTraining evolves the profile for one speech-detected result.
	// History must already include the result.
	RecordTraining(ctx context.Context, result domain.AnalysisResult, history []domain.AnalysisResult) TrainingOutcome

	SetPersona(ctx context.Context, persona domain.Persona) error
	SetLanguage(ctx context.Context, language domain.Language) error
}

type profileService struct {
	repo  repository.ProfileRepository
	nowFn func() time.Time
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{repo: repo, nowFn: time.Now}
}

func (s *profileService) GetProfile(ctx context.Context) domain.UserProfile {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		logger.Get().Error("ProfileService: failed to load profile, serving defaults", zap.Error(err))
		return domain.NewDefaultProfile()
	}
	if profile == nil {
		return domain.NewDefaultProfile()
	}
	return *profile
}

func (s *profileService) RecordTraining(ctx context.Context, result domain.AnalysisResult, history []domain.AnalysisResult) TrainingOutcome {
	current := s.GetProfile(ctx)
	updated, newBadges := current.ApplyTraining(result, history, s.nowFn())

	if err := s.repo.Save(ctx, updated); err != nil {
		// Losing gamification bookkeeping must never block feedback
		// delivery, so this degrades to a logged no-op.
		logger.Get().Error("ProfileService: failed to persist training, progress lost",
			zap.Error(err),
			zap.String("resultID", result.ID))
		return TrainingOutcome{Profile: current, Persisted: false}
	}

	if len(newBadges) > 0 {
		ids := make([]string, 0, len(newBadges))
		for _, b := range newBadges {
			ids = append(ids, b.ID)
		}
		logger.Get().Info("ProfileService: badges unlocked", zap.Strings("badges", ids))
	}

	return TrainingOutcome{Profile: updated, NewBadges: newBadges, Persisted: true}
}

func (s *profileService) SetPersona(ctx context.Context, persona domain.Persona) error {
	if !persona.IsValid() {
		return domain.NewInvalidInputError("unknown persona: " + string(persona))
	}
	profile := s.GetProfile(ctx)
	profile.Persona = persona
	if err := s.repo.Save(ctx, profile); err != nil {
		return domain.NewInternalError("Failed to save persona", err)
	}
	return nil
}

func (s *profileService) SetLanguage(ctx context.Context, language domain.Language) error {
	if !language.IsValid() {
		return domain.NewInvalidInputError("unknown language: " + string(language))
	}
	profile := s.GetProfile(ctx)
	profile.Language = language
	if err := s.repo.Save(ctx, profile); err != nil {
		return domain.NewInternalError("Failed to save language", err)
	}
	return nil
}
