package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"speakup/internal/domain"
	"speakup/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

var personaInstructions = map[domain.Persona]string{
	domain.PersonaMotivator: "Be warm and encouraging; celebrate progress before pointing out flaws.",
	domain.PersonaStrict:    "Be direct and demanding; hold the speaker to a professional standard.",
	domain.PersonaFunny:     "Be lighthearted and witty; use humor to make the feedback memorable.",
	domain.PersonaTechnical: "Be precise and analytical; reference concrete speech metrics.",
}

var languageNames = map[domain.Language]string{
	domain.LanguagePT: "Brazilian Portuguese",
	domain.LanguageEN: "English",
	domain.LanguageES: "Spanish",
}

// geminiAnalyzer implements domain.SpeechAnalyzer on top of a langchaingo
// multimodal model.
type geminiAnalyzer struct {
	llm llms.Model
}

// NewGeminiAnalyzer creates a new instance of geminiAnalyzer.
func NewGeminiAnalyzer(llm llms.Model) domain.SpeechAnalyzer {
	return &geminiAnalyzer{llm: llm}
}

// Analyze sends the recording and coaching prompt to the model and maps the
// untrusted response into a validated AnalysisVerdict.
func (a *geminiAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisVerdict, error) {
	l := logger.Get()
	l.Info("Analyzing recording with LLM",
		zap.String("context", req.Context),
		zap.String("persona", string(req.Persona)),
		zap.String("language", string(req.Language)),
		zap.Float64("duration_seconds", req.DurationSeconds),
		zap.Int("audio_bytes", len(req.Audio)))

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "audio/mp3"
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, req.Audio),
				llms.TextPart(buildPrompt(req)),
			},
		},
	}

	response, err := a.llm.GenerateContent(ctx, content,
		llms.WithTemperature(0.1),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, ClassifyError(err)
	}
	if len(response.Choices) == 0 || response.Choices[0].Content == "" {
		return nil, domain.NewMalformedResponseError(errors.New("empty response from model"))
	}

	verdict, err := parseVerdict(response.Choices[0].Content)
	if err != nil {
		l.Error("Failed to parse analyzer response",
			zap.Error(err),
			zap.String("response", response.Choices[0].Content))
		return nil, domain.NewMalformedResponseError(err)
	}
	return verdict, nil
}

func buildPrompt(req domain.AnalysisRequest) string {
	return fmt.Sprintf(`You are an expert public-speaking coach. Analyze the attached voice recording and respond with ONLY a JSON object in the following format:
{
    "speech_detected": true,
    "transcript": "full transcript here",
    "score": 0,
    "vicios_linguagem_count": 0,
    "ritmo_analise": "Ideal",
    "sentiment": "Neutro",
    "feedback_positivo": "one strength",
    "ponto_melhoria": "one improvement point",
    "frase_reformulada": "a stronger rephrasing of the weakest sentence"
}

Speaking context: %s
Recording duration: %.0f seconds

Rules:
1. First verify there is intelligible human speech. If there is only silence or noise, set "speech_detected" to false and zero out every other field.
2. "score" is an integer from 0 to 100 rating overall delivery.
3. "vicios_linguagem_count" counts filler/crutch phrases (um, uh, like, "tipo").
4. "ritmo_analise" must be exactly one of: "Muito Rápido", "Lento", "Ideal".
5. "sentiment" must be one of: "Confiança", "Nervosismo", "Neutro", "Entusiasmo".
6. Write the three feedback fields in %s.
7. Coaching tone: %s`,
		req.Context,
		req.DurationSeconds,
		languageNames[req.Language],
		personaInstructions[req.Persona])
}

// rawVerdict mirrors the response schema with pointer fields so that missing
// required keys are detectable instead of silently zeroed.
type rawVerdict struct {
	SpeechDetected    *bool   `json:"speech_detected"`
	Transcript        string  `json:"transcript"`
	Score             *int    `json:"score"`
	VerbalTicCount    *int    `json:"vicios_linguagem_count"`
	Pacing            *string `json:"ritmo_analise"`
	Sentiment         string  `json:"sentiment"`
	PositiveFeedback  *string `json:"feedback_positivo"`
	ImprovementPoint  *string `json:"ponto_melhoria"`
	RephrasedSentence *string `json:"frase_reformulada"`
}

func parseVerdict(response string) (*domain.AnalysisVerdict, error) {
	responseStr := strings.TrimSpace(response)
	if thinkStart := strings.Index(responseStr, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(responseStr, "</think>"); thinkEnd != -1 {
			responseStr = responseStr[thinkEnd+8:]
		}
	}

	responseStr = strings.TrimSpace(responseStr)
	responseStr = strings.TrimPrefix(responseStr, "```json")
	responseStr = strings.TrimPrefix(responseStr, "```")
	responseStr = strings.TrimSuffix(responseStr, "```")
	responseStr = strings.TrimSpace(responseStr)

	var raw rawVerdict
	if err := json.Unmarshal([]byte(responseStr), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if raw.SpeechDetected == nil {
		return nil, errors.New("response missing required field speech_detected")
	}
	if !*raw.SpeechDetected {
		return &domain.AnalysisVerdict{SpeechDetected: false}, nil
	}

	switch {
	case raw.Score == nil:
		return nil, errors.New("response missing required field score")
	case raw.VerbalTicCount == nil:
		return nil, errors.New("response missing required field vicios_linguagem_count")
	case raw.Pacing == nil:
		return nil, errors.New("response missing required field ritmo_analise")
	case raw.PositiveFeedback == nil:
		return nil, errors.New("response missing required field feedback_positivo")
	case raw.ImprovementPoint == nil:
		return nil, errors.New("response missing required field ponto_melhoria")
	case raw.RephrasedSentence == nil:
		return nil, errors.New("response missing required field frase_reformulada")
	}

	pacing := domain.Pacing(*raw.Pacing)
	if pacing != domain.PacingTooFast && pacing != domain.PacingSlow && pacing != domain.PacingIdeal {
		return nil, fmt.Errorf("response has unknown ritmo_analise value: %q", *raw.Pacing)
	}

	return &domain.AnalysisVerdict{
		SpeechDetected:    true,
		Transcript:        raw.Transcript,
		Score:             *raw.Score,
		VerbalTicCount:    *raw.VerbalTicCount,
		Pacing:            pacing,
		Sentiment:         domain.Sentiment(raw.Sentiment),
		PositiveFeedback:  *raw.PositiveFeedback,
		ImprovementPoint:  *raw.ImprovementPoint,
		RephrasedSentence: *raw.RephrasedSentence,
	}, nil
}

// ClassifyError maps a failed collaborator call onto the error taxonomy so
// the UI can give cause-specific guidance. Already-classified errors pass
// through unchanged.
func ClassifyError(err error) *domain.DomainError {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewAnalysisTimeoutError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.NewAnalysisTimeoutError(err)
		}
		return domain.NewConnectivityError(err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.NewConnectivityError(err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "quota"):
		return domain.NewServiceOverloadedError(err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "api key") || strings.Contains(msg, "permission denied") || strings.Contains(msg, "unauthenticated"):
		return domain.NewAuthInvalidError(err)
	case strings.Contains(msg, "404") || strings.Contains(msg, "503") || strings.Contains(msg, "unavailable") || strings.Contains(msg, "overloaded") || strings.Contains(msg, "not found"):
		return domain.NewModelUnavailableError(err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return domain.NewConnectivityError(err)
	}

	return domain.NewInternalError("Unexpected error from the analysis service", err)
}
