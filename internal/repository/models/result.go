package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// StringSlice stores a []string as a JSON array string in a TEXT column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// AnalysisResult is the metadata-store row for one practice attempt.
// Seq preserves insertion order independently of the result timestamp.
type AnalysisResult struct {
	Seq               int64          `db:"seq"`
	ID                string         `db:"id"`
	AudioID           sql.NullString `db:"audio_id"`
	CreatedAt         int64          `db:"created_at"` // unix milliseconds
	Context           string         `db:"context"`
	SpeechDetected    bool           `db:"speech_detected"`
	Transcript        string         `db:"transcript"`
	Score             int            `db:"score"`
	VerbalTicCount    int            `db:"verbal_tic_count"`
	Pacing            string         `db:"pacing"`
	WPM               sql.NullInt64  `db:"wpm"`
	Sentiment         sql.NullString `db:"sentiment"`
	PositiveFeedback  string         `db:"feedback_positive"`
	ImprovementPoint  string         `db:"improvement_point"`
	RephrasedSentence string         `db:"rephrased_sentence"`
}

func (AnalysisResult) TableName() string {
	return "analysis_results"
}
