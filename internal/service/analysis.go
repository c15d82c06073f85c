package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"speakup/internal/config"
	"speakup/internal/domain"
	"speakup/internal/dto"
	"speakup/internal/logger"
	"speakup/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AnalysisCachePrefix namespaces cached analyzer verdicts in Redis.
const AnalysisCachePrefix = "speakup:analysis:"

// AnalysisService is the coordinator: it drives one recording through the
// external analyzer, augments the verdict into an AnalysisResult, and hands
// speech-detected results to the history store and profile engine.
type AnalysisService interface {
	Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
}

type analysisService struct {
	analyzer domain.SpeechAnalyzer
	history  HistoryService
	profiles ProfileService
	cache    domain.Cache
	cfg      *config.Config
	sfGroup  singleflight.Group
	nowFn    func() time.Time
	newID    func() string
}

// NewAnalysisService creates a new instance of analysisService. cache may be
// nil, in which case verdict caching is skipped.
func NewAnalysisService(
	analyzer domain.SpeechAnalyzer,
	history HistoryService,
	profiles ProfileService,
	cache domain.Cache,
	cfg *config.Config,
) AnalysisService {
	return &analysisService{
		analyzer: analyzer,
		history:  history,
		profiles: profiles,
		cache:    cache,
		cfg:      cfg,
		nowFn:    time.Now,
		newID:    util.NewULID,
	}
}

func (s *analysisService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	if s.analyzer == nil {
		return nil, domain.NewConfigurationError("Analysis service is not configured. Set GEMINI_API_KEY and restart.")
	}
	if len(req.Audio) == 0 {
		return nil, domain.NewInvalidInputError("audio payload is empty")
	}

	profile := s.profiles.GetProfile(ctx)
	cacheKey := analysisCacheKey(req, profile.Persona, profile.Language)

	verdict, err := s.obtainVerdict(ctx, req, profile, cacheKey)
	if err != nil {
		return nil, err
	}

	result := domain.AnalysisResult{
		ID:                s.newID(),
		Timestamp:         s.nowFn().UnixMilli(),
		Context:           req.Context,
		SpeechDetected:    verdict.SpeechDetected,
		Transcript:        verdict.Transcript,
		Score:             verdict.Score,
		VerbalTicCount:    verdict.VerbalTicCount,
		Pacing:            verdict.Pacing,
		Sentiment:         verdict.Sentiment,
		PositiveFeedback:  verdict.PositiveFeedback,
		ImprovementPoint:  verdict.ImprovementPoint,
		RephrasedSentence: verdict.RephrasedSentence,
	}

	if !verdict.SpeechDetected {
		// No speech means no persistence and no gamification: the numeric
		// and text fields of the verdict carry no meaning.
		return &dto.AnalyzeResponse{Result: result, Saved: false}, nil
	}

	result.WPM = domain.DeriveWPM(verdict.Transcript, req.DurationSeconds)

	// History is read before the save so the training evaluation sees the
	// new result exactly once even if the metadata write fails.
	previous, listErr := s.history.List(ctx)
	if listErr != nil {
		logger.Get().Error("AnalysisService: failed to read history for badge evaluation", zap.Error(listErr))
	}

	saved := s.history.Save(ctx, &result, req.Audio)
	fullHistory := append([]domain.AnalysisResult{result}, previous...)
	outcome := s.profiles.RecordTraining(ctx, result, fullHistory)

	response := &dto.AnalyzeResponse{
		Result:  result,
		Saved:   saved,
		Profile: NewProfileResponse(outcome.Profile),
	}
	for _, badge := range outcome.NewBadges {
		response.NewBadges = append(response.NewBadges, dto.BadgeResponse{
			ID:          badge.ID,
			Name:        badge.Name,
			Description: badge.Description,
			Icon:        badge.Icon,
		})
	}
	return response, nil
}

// obtainVerdict consults the cache, then the analyzer. Identical concurrent
// requests share one upstream call via singleflight.
func (s *analysisService) obtainVerdict(ctx context.Context, req *dto.AnalyzeRequest, profile domain.UserProfile, cacheKey string) (*domain.AnalysisVerdict, error) {
	l := logger.Get()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			var verdict domain.AnalysisVerdict
			if jsonErr := json.Unmarshal([]byte(cached), &verdict); jsonErr == nil {
				l.Info("AnalysisService: verdict served from cache", zap.String("cacheKey", cacheKey))
				return &verdict, nil
			}
			l.Warn("AnalysisService: dropping unreadable cache entry", zap.String("cacheKey", cacheKey))
			_ = s.cache.Delete(ctx, cacheKey)
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			l.Error("AnalysisService: cache read failed, calling analyzer", zap.Error(err))
		}
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Analyzer.Timeout)
		defer cancel()

		verdict, analyzeErr := s.analyzer.Analyze(callCtx, domain.AnalysisRequest{
			Audio:           req.Audio,
			MIMEType:        req.MIMEType,
			Context:         req.Context,
			DurationSeconds: req.DurationSeconds,
			Persona:         profile.Persona,
			Language:        profile.Language,
		})
		if analyzeErr != nil {
			if errors.Is(analyzeErr, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, domain.NewAnalysisTimeoutError(analyzeErr)
			}
			return nil, analyzeErr
		}
		return verdict, nil
	})
	if err != nil {
		return nil, err
	}
	verdict := res.(*domain.AnalysisVerdict)

	if s.cache != nil {
		if encoded, jsonErr := json.Marshal(verdict); jsonErr == nil {
			if cacheErr := s.cache.Set(ctx, cacheKey, string(encoded), s.cfg.Analyzer.CacheTTL); cacheErr != nil {
				l.Error("AnalysisService: failed to cache verdict", zap.Error(cacheErr))
			}
		}
	}
	return verdict, nil
}

// analysisCacheKey hashes the audio payload together with everything that
// shapes the prompt, so a persona or language switch never replays stale
// feedback.
func analysisCacheKey(req *dto.AnalyzeRequest, persona domain.Persona, language domain.Language) string {
	h := sha256.New()
	h.Write(req.Audio)
	h.Write([]byte(req.Context))
	h.Write([]byte(persona))
	h.Write([]byte(language))
	return AnalysisCachePrefix + hex.EncodeToString(h.Sum(nil))
}

// NewProfileResponse maps a domain profile onto its API shape, resolving
// badge ids against the catalog.
func NewProfileResponse(profile domain.UserProfile) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		TotalXP:          profile.TotalXP,
		Level:            profile.Level,
		Streak:           profile.Streak,
		LastTrainingDate: profile.LastTrainingDate,
		Badges:           []dto.BadgeResponse{},
		Persona:          string(profile.Persona),
		Language:         string(profile.Language),
	}
	for _, id := range profile.Badges {
		if badge, ok := domain.BadgeByID(id); ok {
			resp.Badges = append(resp.Badges, dto.BadgeResponse{
				ID:          badge.ID,
				Name:        badge.Name,
				Description: badge.Description,
				Icon:        badge.Icon,
			})
		}
	}
	return resp
}
