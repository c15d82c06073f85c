package dto

import "speakup/internal/domain"

// BackupAppID identifies documents produced by this application. Import
// rejects documents carrying any other identifier.
const BackupAppID = "speakup"

// BackupVersion is the current backup document schema version.
const BackupVersion = 1

// BackupDocument is the portable snapshot of profile and history. Audio
// blobs are deliberately excluded to bound file size.
type BackupDocument struct {
	Version   int                     `json:"version"`
	Timestamp int64                   `json:"timestamp"` // unix milliseconds
	AppID     string                  `json:"appId"`
	Profile   domain.UserProfile      `json:"profile"`
	History   []domain.AnalysisResult `json:"history"`
}

// ImportResponse reports the outcome of a backup import.
type ImportResponse struct {
	Imported bool `json:"imported"`
	Results  int  `json:"results,omitempty"`
}
