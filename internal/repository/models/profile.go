package models

import "database/sql"

// ProfileRowID is the fixed primary key of the single profile row.
const ProfileRowID = 1

// UserProfile is the single-row profile record. Level is stored for
// inspection convenience but is always recomputed from TotalXP on write.
type UserProfile struct {
	ID               int            `db:"id"`
	TotalXP          int            `db:"total_xp"`
	Level            int            `db:"level"`
	Streak           int            `db:"streak"`
	LastTrainingDate sql.NullString `db:"last_training_date"` // RFC3339
	Badges           StringSlice    `db:"badges"`
	Persona          string         `db:"persona"`
	Language         string         `db:"language"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}
