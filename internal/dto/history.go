package dto

import "speakup/internal/domain"

// HistoryListResponse lists stored attempts, most recent first.
type HistoryListResponse struct {
	Items []domain.AnalysisResult `json:"items"`
	Count int                     `json:"count"`
}

// CompareResponse pairs two attempts for side-by-side review.
// Deltas are B minus A.
type CompareResponse struct {
	A          domain.AnalysisResult `json:"a"`
	B          domain.AnalysisResult `json:"b"`
	ScoreDelta int                   `json:"score_delta"`
	WPMDelta   int                   `json:"wpm_delta"`
	TicDelta   int                   `json:"tic_delta"`
}
