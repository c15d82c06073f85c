package domain

import (
	"context"
	"math"
	"strings"
	"time"
)

// ContextType identifies the practice scenario the user rehearsed for.
type ContextType string

const (
	ContextInterview             ContextType = "INTERVIEW"
	ContextSales                 ContextType = "SALES"
	ContextPresentation          ContextType = "PRESENTATION"
	ContextDifficultConversation ContextType = "DIFFICULT_CONVERSATION"
	ContextCustom                ContextType = "CUSTOM"
)

// ContextTypes lists the fixed scenarios. CUSTOM carries a free-text label.
var ContextTypes = []ContextType{
	ContextInterview,
	ContextSales,
	ContextPresentation,
	ContextDifficultConversation,
	ContextCustom,
}

// Pacing is the speaking-rhythm verdict. The Portuguese values are kept as
// the wire vocabulary so exported backups stay portable with the web client.
type Pacing string

const (
	PacingTooFast Pacing = "Muito Rápido"
	PacingSlow    Pacing = "Lento"
	PacingIdeal   Pacing = "Ideal"
)

// Sentiment is the detected emotional tone of the recording.
type Sentiment string

const (
	SentimentConfidence  Sentiment = "Confiança"
	SentimentNervousness Sentiment = "Nervosismo"
	SentimentNeutral     Sentiment = "Neutro"
	SentimentEnthusiasm  Sentiment = "Entusiasmo"
)

// AnalysisResult is one completed practice attempt. Immutable once stored,
// except for the backfilled AudioID link.
type AnalysisResult struct {
	ID                string    `json:"id"`
	AudioID           string    `json:"audioId,omitempty"`
	Timestamp         int64     `json:"timestamp"` // unix milliseconds
	Context           string    `json:"context"`
	SpeechDetected    bool      `json:"speech_detected"`
	Transcript        string    `json:"transcript"`
	Score             int       `json:"score"`
	VerbalTicCount    int       `json:"vicios_linguagem_count"`
	Pacing            Pacing    `json:"ritmo_analise"`
	WPM               int       `json:"wpm,omitempty"`
	Sentiment         Sentiment `json:"sentiment,omitempty"`
	PositiveFeedback  string    `json:"feedback_positivo"`
	ImprovementPoint  string    `json:"ponto_melhoria"`
	RephrasedSentence string    `json:"frase_reformulada"`
}

// CreatedAt returns the result timestamp as a time.Time.
func (r *AnalysisResult) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// AnalysisRequest carries one recording to the external analyzer.
type AnalysisRequest struct {
	Audio           []byte
	MIMEType        string
	Context         string
	DurationSeconds float64
	Persona         Persona
	Language        Language
}

// AnalysisVerdict is the analyzer's structured output, before the
// coordinator augments it with id, timestamp, context and WPM.
type AnalysisVerdict struct {
	SpeechDetected    bool      `json:"speech_detected"`
	Transcript        string    `json:"transcript"`
	Score             int       `json:"score"`
	VerbalTicCount    int       `json:"vicios_linguagem_count"`
	Pacing            Pacing    `json:"ritmo_analise"`
	Sentiment         Sentiment `json:"sentiment,omitempty"`
	PositiveFeedback  string    `json:"feedback_positivo"`
	ImprovementPoint  string    `json:"ponto_melhoria"`
	RephrasedSentence string    `json:"frase_reformulada"`
}

// SpeechAnalyzer is the port for the external generative-AI collaborator.
type SpeechAnalyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisVerdict, error)
}

// DeriveWPM computes words-per-minute from the transcript word count and the
// recording duration. Durations at or below zero are treated as one minute.
func DeriveWPM(transcript string, durationSeconds float64) int {
	words := len(strings.Fields(transcript))
	if words == 0 {
		return 0
	}
	minutes := durationSeconds / 60.0
	if durationSeconds <= 0 {
		minutes = 1
	}
	return int(math.Round(float64(words) / minutes))
}
