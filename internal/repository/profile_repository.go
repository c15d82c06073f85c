package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speakup/internal/domain"
	"speakup/internal/repository/models"
	"speakup/internal/util"

	"github.com/jmoiron/sqlx"
)

// ProfileRepository defines the interface for the single-row user profile.
type ProfileRepository interface {
	// Get returns the stored profile, or (nil, nil) when none exists yet.
	Get(ctx context.Context) (*domain.UserProfile, error)
	// Save upserts the profile.
	Save(ctx context.Context, profile domain.UserProfile) error
}

// sqlxProfileRepository implements ProfileRepository using sqlx.
type sqlxProfileRepository struct {
	db *sqlx.DB
}

// NewSQLXProfileRepository creates a new instance of sqlxProfileRepository.
func NewSQLXProfileRepository(db *sqlx.DB) ProfileRepository {
	return &sqlxProfileRepository{db: db}
}

func (r *sqlxProfileRepository) Get(ctx context.Context) (*domain.UserProfile, error) {
	var row models.UserProfile
	query := `SELECT * FROM user_profile WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, query, models.ProfileRowID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return toDomainProfile(&row)
}

func (r *sqlxProfileRepository) Save(ctx context.Context, profile domain.UserProfile) error {
	model := toModelProfile(profile)
	query := `INSERT INTO user_profile (id, total_xp, level, streak, last_training_date, badges, persona, language)
		VALUES (:id, :total_xp, :level, :streak, :last_training_date, :badges, :persona, :language)
		ON CONFLICT(id) DO UPDATE SET
			total_xp = excluded.total_xp,
			level = excluded.level,
			streak = excluded.streak,
			last_training_date = excluded.last_training_date,
			badges = excluded.badges,
			persona = excluded.persona,
			language = excluded.language`

	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	return nil
}

func toModelProfile(profile domain.UserProfile) *models.UserProfile {
	model := &models.UserProfile{
		ID:       models.ProfileRowID,
		TotalXP:  profile.TotalXP,
		Level:    domain.LevelForXP(profile.TotalXP),
		Streak:   profile.Streak,
		Badges:   models.StringSlice(profile.Badges),
		Persona:  string(profile.Persona),
		Language: string(profile.Language),
	}
	if profile.LastTrainingDate != nil {
		model.LastTrainingDate = util.StringToNullString(profile.LastTrainingDate.Format(time.RFC3339Nano))
	}
	return model
}

func toDomainProfile(model *models.UserProfile) (*domain.UserProfile, error) {
	profile := &domain.UserProfile{
		TotalXP:  model.TotalXP,
		Level:    domain.LevelForXP(model.TotalXP),
		Streak:   model.Streak,
		Badges:   append([]string{}, model.Badges...),
		Persona:  domain.Persona(model.Persona),
		Language: domain.Language(model.Language),
	}
	if model.LastTrainingDate.Valid && model.LastTrainingDate.String != "" {
		ts, err := time.Parse(time.RFC3339Nano, model.LastTrainingDate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last training date %q: %w", model.LastTrainingDate.String, err)
		}
		profile.LastTrainingDate = &ts
	}
	return profile, nil
}
