package service

import (
	"context"
	"encoding/json"
	"time"

	"speakup/internal/domain"
	"speakup/internal/dto"
	"speakup/internal/logger"
	"speakup/internal/repository"

	"go.uber.org/zap"
)

// BackupService round-trips {profile, history} through a portable JSON
// document. Audio blobs are deliberately excluded.
type BackupService interface {
	Export(ctx context.Context) (*dto.BackupDocument, error)
	// Import validates the document and, on success, fully replaces the
	// current profile and history. It reports success as a boolean and
	// never propagates parse errors; validation failure leaves existing
	// data untouched.
	Import(ctx context.Context, raw []byte) bool
}

type backupService struct {
	profileRepo repository.ProfileRepository
	historyRepo repository.HistoryRepository
	profiles    ProfileService
	nowFn       func() time.Time
}

// NewBackupService creates a new instance of backupService.
func NewBackupService(
	profileRepo repository.ProfileRepository,
	historyRepo repository.HistoryRepository,
	profiles ProfileService,
) BackupService {
	return &backupService{
		profileRepo: profileRepo,
		historyRepo: historyRepo,
		profiles:    profiles,
		nowFn:       time.Now,
	}
}

func (s *backupService) Export(ctx context.Context) (*dto.BackupDocument, error) {
	history, err := s.historyRepo.List(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to export history", err)
	}
	if history == nil {
		history = []domain.AnalysisResult{}
	}

	return &dto.BackupDocument{
		Version:   dto.BackupVersion,
		Timestamp: s.nowFn().UnixMilli(),
		AppID:     dto.BackupAppID,
		Profile:   s.profiles.GetProfile(ctx),
		History:   history,
	}, nil
}

func (s *backupService) Import(ctx context.Context, raw []byte) bool {
	l := logger.Get()

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		l.Warn("BackupService: document is not valid JSON", zap.Error(err))
		return false
	}

	var appID string
	if rawAppID, ok := keys["appId"]; !ok || json.Unmarshal(rawAppID, &appID) != nil || appID != dto.BackupAppID {
		l.Warn("BackupService: document has missing or foreign appId")
		return false
	}
	rawProfile, hasProfile := keys["profile"]
	rawHistory, hasHistory := keys["history"]
	if !hasProfile || !hasHistory {
		l.Warn("BackupService: document missing profile or history key")
		return false
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(rawProfile, &profile); err != nil {
		l.Warn("BackupService: profile section is unreadable", zap.Error(err))
		return false
	}
	var history []domain.AnalysisResult
	if err := json.Unmarshal(rawHistory, &history); err != nil {
		l.Warn("BackupService: history section is unreadable", zap.Error(err))
		return false
	}

	// Level is never trusted from a document; it is a function of XP.
	profile.Level = domain.LevelForXP(profile.TotalXP)
	if profile.Badges == nil {
		profile.Badges = []string{}
	}
	if !profile.Persona.IsValid() {
		profile.Persona = domain.DefaultPersona
	}
	if !profile.Language.IsValid() {
		profile.Language = domain.DefaultLanguage
	}
	if err := s.historyRepo.ReplaceAll(ctx, history); err != nil {
		l.Error("BackupService: failed to replace history", zap.Error(err))
		return false
	}
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		l.Error("BackupService: history replaced but profile write failed", zap.Error(err))
		return false
	}

	l.Info("BackupService: backup imported", zap.Int("results", len(history)))
	return true
}
