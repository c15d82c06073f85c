package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"speakup/internal/config"
	"speakup/internal/domain"
	"speakup/internal/dto"
	"speakup/internal/handler"
	"speakup/internal/logger"
	"speakup/internal/middleware"
	"speakup/internal/service"
	"speakup/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error", Env: "test"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

const validResultID = "01HV3XJ3V2M8Y4T0DQJ5W7K9ZC"

// --- Manual Mocks ---

// MockAnalysisService
type MockAnalysisService struct {
	AnalyzeFunc func(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
}

func (m *MockAnalysisService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	panic("MockAnalysisService.AnalyzeFunc not implemented")
}

// MockHistoryService
type MockHistoryService struct {
	SaveFunc       func(ctx context.Context, result *domain.AnalysisResult, audio []byte) bool
	ListFunc       func(ctx context.Context) ([]domain.AnalysisResult, error)
	GetByIDFunc    func(ctx context.Context, id string) (*domain.AnalysisResult, error)
	GetAudioFunc   func(ctx context.Context, id string) ([]byte, error)
	DeleteByIDFunc func(ctx context.Context, id string) error
	ClearFunc      func(ctx context.Context) error
	CompareFunc    func(ctx context.Context, idA, idB string) (*dto.CompareResponse, error)
}

func (m *MockHistoryService) Save(ctx context.Context, result *domain.AnalysisResult, audio []byte) bool {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, result, audio)
	}
	panic("MockHistoryService.SaveFunc not implemented")
}
func (m *MockHistoryService) List(ctx context.Context) ([]domain.AnalysisResult, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	panic("MockHistoryService.ListFunc not implemented")
}
func (m *MockHistoryService) GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	panic("MockHistoryService.GetByIDFunc not implemented")
}
func (m *MockHistoryService) GetAudio(ctx context.Context, id string) ([]byte, error) {
	if m.GetAudioFunc != nil {
		return m.GetAudioFunc(ctx, id)
	}
	panic("MockHistoryService.GetAudioFunc not implemented")
}
func (m *MockHistoryService) DeleteByID(ctx context.Context, id string) error {
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, id)
	}
	panic("MockHistoryService.DeleteByIDFunc not implemented")
}
func (m *MockHistoryService) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	panic("MockHistoryService.ClearFunc not implemented")
}
func (m *MockHistoryService) Compare(ctx context.Context, idA, idB string) (*dto.CompareResponse, error) {
	if m.CompareFunc != nil {
		return m.CompareFunc(ctx, idA, idB)
	}
	panic("MockHistoryService.CompareFunc not implemented")
}

// MockProfileService
type MockProfileService struct {
	GetProfileFunc     func(ctx context.Context) domain.UserProfile
	RecordTrainingFunc func(ctx context.Context, result domain.AnalysisResult, history []domain.AnalysisResult) service.TrainingOutcome
	SetPersonaFunc     func(ctx context.Context, persona domain.Persona) error
	SetLanguageFunc    func(ctx context.Context, language domain.Language) error
}

func (m *MockProfileService) GetProfile(ctx context.Context) domain.UserProfile {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx)
	}
	panic("MockProfileService.GetProfileFunc not implemented")
}
func (m *MockProfileService) RecordTraining(ctx context.Context, result domain.AnalysisResult, history []domain.AnalysisResult) service.TrainingOutcome {
	if m.RecordTrainingFunc != nil {
		return m.RecordTrainingFunc(ctx, result, history)
	}
	panic("MockProfileService.RecordTrainingFunc not implemented")
}
func (m *MockProfileService) SetPersona(ctx context.Context, persona domain.Persona) error {
	if m.SetPersonaFunc != nil {
		return m.SetPersonaFunc(ctx, persona)
	}
	panic("MockProfileService.SetPersonaFunc not implemented")
}
func (m *MockProfileService) SetLanguage(ctx context.Context, language domain.Language) error {
	if m.SetLanguageFunc != nil {
		return m.SetLanguageFunc(ctx, language)
	}
	panic("MockProfileService.SetLanguageFunc not implemented")
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
}

func buildAnalyzeForm(t *testing.T, contextLabel, duration string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if audio != nil {
		part, err := writer.CreateFormFile("audio", "recording.webm")
		require.NoError(t, err)
		_, err = part.Write(audio)
		require.NoError(t, err)
	}
	require.NoError(t, writer.WriteField("context", contextLabel))
	if duration != "" {
		require.NoError(t, writer.WriteField("duration_seconds", duration))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestAnalysisHandler_Analyze(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockAnalysis := &MockAnalysisService{
			AnalyzeFunc: func(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
				assert.Equal(t, "INTERVIEW", req.Context)
				assert.Equal(t, []byte("fake-audio"), req.Audio)
				assert.InDelta(t, 12.5, req.DurationSeconds, 0.001)
				return &dto.AnalyzeResponse{
					Result: domain.AnalysisResult{ID: validResultID, SpeechDetected: true, Score: 85},
					Saved:  true,
				}, nil
			},
		}
		session := service.NewSessionManager()
		h := handler.NewAnalysisHandler(mockAnalysis, session, validation.NewValidator())

		app := newTestApp()
		app.Post("/api/analyses", h.Analyze)

		body, contentType := buildAnalyzeForm(t, "INTERVIEW", "12.5", []byte("fake-audio"))
		req := httptest.NewRequest("POST", "/api/analyses", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var parsed dto.AnalyzeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
		assert.Equal(t, validResultID, parsed.Result.ID)
		assert.True(t, parsed.Saved)

		// Session went Analyzing -> Results.
		assert.Equal(t, service.SessionResults, session.State())
	})

	t.Run("missing audio is a validation error", func(t *testing.T) {
		h := handler.NewAnalysisHandler(&MockAnalysisService{}, service.NewSessionManager(), validation.NewValidator())

		app := newTestApp()
		app.Post("/api/analyses", h.Analyze)

		body, contentType := buildAnalyzeForm(t, "INTERVIEW", "10", nil)
		req := httptest.NewRequest("POST", "/api/analyses", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("busy session is rejected with conflict", func(t *testing.T) {
		session := service.NewSessionManager()
		require.NoError(t, session.BeginAnalysis())

		h := handler.NewAnalysisHandler(&MockAnalysisService{}, session, validation.NewValidator())

		app := newTestApp()
		app.Post("/api/analyses", h.Analyze)

		body, contentType := buildAnalyzeForm(t, "SALES", "10", []byte("audio"))
		req := httptest.NewRequest("POST", "/api/analyses", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("analysis panic returns session to idle", func(t *testing.T) {
		mockAnalysis := &MockAnalysisService{
			AnalyzeFunc: func(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
				panic("verdict slice out of range")
			},
		}
		session := service.NewSessionManager()
		h := handler.NewAnalysisHandler(mockAnalysis, session, validation.NewValidator())

		app := newTestApp()
		app.Use(recover.New())
		app.Post("/api/analyses", h.Analyze)

		body, contentType := buildAnalyzeForm(t, "SALES", "10", []byte("audio"))
		req := httptest.NewRequest("POST", "/api/analyses", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, service.SessionIdle, session.State())

		// The next attempt is accepted instead of reporting a busy session.
		require.NoError(t, session.BeginAnalysis())
	})

	t.Run("analysis failure returns session to idle", func(t *testing.T) {
		mockAnalysis := &MockAnalysisService{
			AnalyzeFunc: func(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
				return nil, domain.NewAnalysisTimeoutError(context.DeadlineExceeded)
			},
		}
		session := service.NewSessionManager()
		h := handler.NewAnalysisHandler(mockAnalysis, session, validation.NewValidator())

		app := newTestApp()
		app.Post("/api/analyses", h.Analyze)

		body, contentType := buildAnalyzeForm(t, "SALES", "10", []byte("audio"))
		req := httptest.NewRequest("POST", "/api/analyses", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusGatewayTimeout, resp.StatusCode)
		assert.Equal(t, service.SessionIdle, session.State())
	})
}

func TestHistoryHandler_List(t *testing.T) {
	mockHistory := &MockHistoryService{
		ListFunc: func(ctx context.Context) ([]domain.AnalysisResult, error) {
			return []domain.AnalysisResult{
				{ID: validResultID, Score: 85, SpeechDetected: true},
			}, nil
		},
	}
	h := handler.NewHistoryHandler(mockHistory, validation.NewValidator())

	app := newTestApp()
	app.Get("/api/history", h.List)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/history", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parsed dto.HistoryListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, 1, parsed.Count)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, validResultID, parsed.Items[0].ID)
}

func TestHistoryHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockHistory := &MockHistoryService{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.AnalysisResult, error) {
				assert.Equal(t, validResultID, id)
				return &domain.AnalysisResult{ID: id, Score: 70}, nil
			},
		}
		h := handler.NewHistoryHandler(mockHistory, validation.NewValidator())

		app := newTestApp()
		app.Get("/api/history/:id", h.Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/history/"+validResultID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockHistory := &MockHistoryService{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.AnalysisResult, error) {
				return nil, domain.NewResultNotFoundError(id)
			},
		}
		h := handler.NewHistoryHandler(mockHistory, validation.NewValidator())

		app := newTestApp()
		app.Get("/api/history/:id", h.Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/history/"+validResultID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		h := handler.NewHistoryHandler(&MockHistoryService{}, validation.NewValidator())

		app := newTestApp()
		app.Get("/api/history/:id", h.Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/history/not-a-ulid", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHistoryHandler_GetAudio(t *testing.T) {
	mockHistory := &MockHistoryService{
		GetAudioFunc: func(ctx context.Context, id string) ([]byte, error) {
			return []byte("audio-bytes"), nil
		},
	}
	h := handler.NewHistoryHandler(mockHistory, validation.NewValidator())

	app := newTestApp()
	app.Get("/api/history/:id/audio", h.GetAudio)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/history/"+validResultID+"/audio", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)
}

func TestHistoryHandler_Delete(t *testing.T) {
	deleted := ""
	mockHistory := &MockHistoryService{
		DeleteByIDFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	h := handler.NewHistoryHandler(mockHistory, validation.NewValidator())

	app := newTestApp()
	app.Delete("/api/history/:id", h.Delete)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/history/"+validResultID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, validResultID, deleted)
}

func TestProfileHandler_SetPersona(t *testing.T) {
	t.Run("valid persona", func(t *testing.T) {
		var selected domain.Persona
		mockProfiles := &MockProfileService{
			SetPersonaFunc: func(ctx context.Context, persona domain.Persona) error {
				selected = persona
				return nil
			},
			GetProfileFunc: func(ctx context.Context) domain.UserProfile {
				p := domain.NewDefaultProfile()
				p.Persona = domain.PersonaStrict
				return p
			},
		}
		h := handler.NewProfileHandler(mockProfiles, validation.NewValidator())

		app := newTestApp()
		app.Put("/api/profile/persona", h.SetPersona)

		body, _ := json.Marshal(dto.SetPersonaRequest{Persona: "STRICT"})
		req := httptest.NewRequest("PUT", "/api/profile/persona", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, domain.PersonaStrict, selected)
	})

	t.Run("unknown persona rejected", func(t *testing.T) {
		h := handler.NewProfileHandler(&MockProfileService{}, validation.NewValidator())

		app := newTestApp()
		app.Put("/api/profile/persona", h.SetPersona)

		body, _ := json.Marshal(dto.SetPersonaRequest{Persona: "COACH"})
		req := httptest.NewRequest("PUT", "/api/profile/persona", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestProfileHandler_Badges(t *testing.T) {
	mockProfiles := &MockProfileService{
		GetProfileFunc: func(ctx context.Context) domain.UserProfile {
			p := domain.NewDefaultProfile()
			p.Badges = []string{"first_step"}
			return p
		},
	}
	h := handler.NewProfileHandler(mockProfiles, validation.NewValidator())

	app := newTestApp()
	app.Get("/api/profile/badges", h.Badges)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/profile/badges", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parsed []dto.CatalogBadgeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.Len(t, parsed, len(domain.Catalog))
	assert.Equal(t, "first_step", parsed[0].ID)
	assert.True(t, parsed[0].Unlocked)
	assert.False(t, parsed[1].Unlocked)
}
