package service

import (
	"context"

	"speakup/internal/domain"
	"speakup/internal/dto"
	"speakup/internal/logger"
	"speakup/internal/repository"

	"go.uber.org/zap"
)

// HistoryService owns the persisted collection of analysis results and
// their associated audio assets.
type HistoryService interface {
	// Save persists the result and, when audio is supplied, the blob under
	// a key derived from the result id. Both writes are best-effort: a
	// failed audio write still records the result (without a link), and a
	// failed metadata write leaves an orphaned blob behind. It returns
	// whether the result metadata was persisted.
	Save(ctx context.Context, result *domain.AnalysisResult, audio []byte) bool

	List(ctx context.Context) ([]domain.AnalysisResult, error)
	GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error)
	GetAudio(ctx context.Context, id string) ([]byte, error)
	DeleteByID(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Compare(ctx context.Context, idA, idB string) (*dto.CompareResponse, error)
}

type historyService struct {
	repo  repository.HistoryRepository
	audio repository.AudioStore
}

// NewHistoryService creates a new instance of historyService.
func NewHistoryService(repo repository.HistoryRepository, audio repository.AudioStore) HistoryService {
	return &historyService{repo: repo, audio: audio}
}

func (s *historyService) Save(ctx context.Context, result *domain.AnalysisResult, audio []byte) bool {
	// Audio first: the metadata row carries the link, so the blob must
	// exist before the row claims it does. A crash between the two writes
	// leaves an orphaned blob, which is the accepted inconsistency.
	if len(audio) > 0 {
		if err := s.audio.Save(ctx, result.ID, audio); err != nil {
			logger.Get().Error("HistoryService: failed to save audio, result kept without recording",
				zap.Error(err),
				zap.String("resultID", result.ID))
		} else {
			result.AudioID = result.ID
		}
	}

	if err := s.repo.Insert(ctx, result); err != nil {
		logger.Get().Error("HistoryService: failed to save result, audio may be orphaned",
			zap.Error(err),
			zap.String("resultID", result.ID),
			zap.String("audioID", result.AudioID))
		return false
	}
	return true
}

func (s *historyService) List(ctx context.Context) ([]domain.AnalysisResult, error) {
	results, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list history", err)
	}
	return results, nil
}

func (s *historyService) GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get result", err)
	}
	if result == nil {
		return nil, domain.NewResultNotFoundError(id)
	}
	return result, nil
}

func (s *historyService) GetAudio(ctx context.Context, id string) ([]byte, error) {
	result, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.AudioID == "" {
		return nil, domain.NewNotFoundError("No audio recorded for result: " + id)
	}
	data, err := s.audio.Load(ctx, result.AudioID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load audio", err)
	}
	if data == nil {
		return nil, domain.NewNotFoundError("Audio asset missing for result: " + id)
	}
	return data, nil
}

// DeleteByID removes the result and its audio asset. Deleting an id that
// does not exist is a no-op.
func (s *historyService) DeleteByID(ctx context.Context, id string) error {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.NewInternalError("Failed to look up result for deletion", err)
	}
	if result == nil {
		return nil
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return domain.NewInternalError("Failed to delete result", err)
	}
	if result.AudioID != "" {
		if err := s.audio.Delete(ctx, result.AudioID); err != nil {
			// The metadata row is gone; a stale blob is an orphan, not
			// a user-visible failure.
			logger.Get().Error("HistoryService: failed to delete audio for removed result",
				zap.Error(err),
				zap.String("resultID", id))
		}
	}
	return nil
}

// Clear removes all results and cascades to the audio store so bulk clear
// leaves no orphaned recordings behind.
func (s *historyService) Clear(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return domain.NewInternalError("Failed to clear history", err)
	}
	if err := s.audio.DeleteAll(ctx); err != nil {
		logger.Get().Error("HistoryService: failed to clear audio assets", zap.Error(err))
	}
	return nil
}

func (s *historyService) Compare(ctx context.Context, idA, idB string) (*dto.CompareResponse, error) {
	a, err := s.GetByID(ctx, idA)
	if err != nil {
		return nil, err
	}
	b, err := s.GetByID(ctx, idB)
	if err != nil {
		return nil, err
	}

	return &dto.CompareResponse{
		A:          *a,
		B:          *b,
		ScoreDelta: b.Score - a.Score,
		WPMDelta:   b.WPM - a.WPM,
		TicDelta:   b.VerbalTicCount - a.VerbalTicCount,
	}, nil
}
