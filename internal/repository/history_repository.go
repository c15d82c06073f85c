package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"speakup/internal/domain"
	"speakup/internal/repository/models"
	"speakup/internal/util"

	"github.com/jmoiron/sqlx"
)

// HistoryRepository defines the interface for analysis-result persistence.
// List returns results most-recent-first by insertion order, not timestamp;
// the two only coincide for locally created results, never for restored ones.
type HistoryRepository interface {
	Insert(ctx context.Context, result *domain.AnalysisResult) error
	List(ctx context.Context) ([]domain.AnalysisResult, error)
	GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	// ReplaceAll atomically swaps the whole collection for the given
	// results (given most-recent-first, as they appear in a backup).
	ReplaceAll(ctx context.Context, results []domain.AnalysisResult) error
}

// sqlxHistoryRepository implements HistoryRepository using sqlx.
type sqlxHistoryRepository struct {
	db *sqlx.DB
}

// NewSQLXHistoryRepository creates a new instance of sqlxHistoryRepository.
func NewSQLXHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &sqlxHistoryRepository{db: db}
}

const insertResultQuery = `INSERT INTO analysis_results
	(id, audio_id, created_at, context, speech_detected, transcript, score, verbal_tic_count, pacing, wpm, sentiment, feedback_positive, improvement_point, rephrased_sentence)
	VALUES (:id, :audio_id, :created_at, :context, :speech_detected, :transcript, :score, :verbal_tic_count, :pacing, :wpm, :sentiment, :feedback_positive, :improvement_point, :rephrased_sentence)`

// Insert appends a new result to the collection.
func (r *sqlxHistoryRepository) Insert(ctx context.Context, result *domain.AnalysisResult) error {
	model := toModelResult(result)
	if _, err := r.db.NamedExecContext(ctx, insertResultQuery, model); err != nil {
		return fmt.Errorf("failed to insert analysis result: %w", err)
	}
	return nil
}

// List returns all results, most recently inserted first.
func (r *sqlxHistoryRepository) List(ctx context.Context) ([]domain.AnalysisResult, error) {
	var rows []models.AnalysisResult
	query := `SELECT * FROM analysis_results ORDER BY seq DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list analysis results: %w", err)
	}

	results := make([]domain.AnalysisResult, 0, len(rows))
	for i := range rows {
		results = append(results, *toDomainResult(&rows[i]))
	}
	return results, nil
}

// GetByID retrieves a single result. Returns (nil, nil) when not found;
// services map that to a domain not-found error.
func (r *sqlxHistoryRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	var row models.AnalysisResult
	query := `SELECT * FROM analysis_results WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis result by id: %w", err)
	}
	return toDomainResult(&row), nil
}

// DeleteByID removes a result. Deleting a non-existent id is a no-op.
func (r *sqlxHistoryRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM analysis_results WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete analysis result: %w", err)
	}
	return nil
}

// DeleteAll removes every result.
func (r *sqlxHistoryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM analysis_results`); err != nil {
		return fmt.Errorf("failed to clear analysis results: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole collection inside one transaction. Results are
// inserted oldest-first so that List (seq DESC) reproduces the incoming order.
func (r *sqlxHistoryRepository) ReplaceAll(ctx context.Context, results []domain.AnalysisResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history replacement: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_results`); err != nil {
		return fmt.Errorf("failed to clear analysis results for replacement: %w", err)
	}
	for i := len(results) - 1; i >= 0; i-- {
		model := toModelResult(&results[i])
		if _, err := tx.NamedExecContext(ctx, insertResultQuery, model); err != nil {
			return fmt.Errorf("failed to insert restored result %s: %w", results[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history replacement: %w", err)
	}
	return nil
}

func toModelResult(result *domain.AnalysisResult) *models.AnalysisResult {
	model := &models.AnalysisResult{
		ID:                result.ID,
		AudioID:           util.StringToNullString(result.AudioID),
		CreatedAt:         result.Timestamp,
		Context:           result.Context,
		SpeechDetected:    result.SpeechDetected,
		Transcript:        result.Transcript,
		Score:             result.Score,
		VerbalTicCount:    result.VerbalTicCount,
		Pacing:            string(result.Pacing),
		Sentiment:         util.StringToNullString(string(result.Sentiment)),
		PositiveFeedback:  result.PositiveFeedback,
		ImprovementPoint:  result.ImprovementPoint,
		RephrasedSentence: result.RephrasedSentence,
	}
	if result.WPM > 0 {
		model.WPM = sql.NullInt64{Int64: int64(result.WPM), Valid: true}
	}
	return model
}

func toDomainResult(model *models.AnalysisResult) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		ID:                model.ID,
		AudioID:           model.AudioID.String,
		Timestamp:         model.CreatedAt,
		Context:           model.Context,
		SpeechDetected:    model.SpeechDetected,
		Transcript:        model.Transcript,
		Score:             model.Score,
		VerbalTicCount:    model.VerbalTicCount,
		Pacing:            domain.Pacing(model.Pacing),
		Sentiment:         domain.Sentiment(model.Sentiment.String),
		PositiveFeedback:  model.PositiveFeedback,
		ImprovementPoint:  model.ImprovementPoint,
		RephrasedSentence: model.RephrasedSentence,
	}
	if model.WPM.Valid {
		result.WPM = int(model.WPM.Int64)
	}
	return result
}
