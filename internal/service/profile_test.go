package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"speakup/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProfileService(repo *MockProfileRepository, now time.Time) *profileService {
	return &profileService{
		repo:  repo,
		nowFn: func() time.Time { return now },
	}
}

func TestGetProfileDefaultsWhenEmpty(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("Get", mock.Anything).Return(nil, nil)

	svc := newTestProfileService(repo, testNow)
	profile := svc.GetProfile(context.Background())

	assert.Equal(t, 0, profile.TotalXP)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, domain.DefaultPersona, profile.Persona)
	assert.Equal(t, domain.DefaultLanguage, profile.Language)
	assert.Nil(t, profile.LastTrainingDate)
}

func TestGetProfileDefaultsOnStorageError(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("Get", mock.Anything).Return(nil, errors.New("db locked"))

	svc := newTestProfileService(repo, testNow)
	profile := svc.GetProfile(context.Background())

	assert.Equal(t, domain.DefaultPersona, profile.Persona)
	assert.Equal(t, 1, profile.Level)
}

func TestRecordTrainingGrantsXPAndStreak(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("Get", mock.Anything).Return(nil, nil)

	var saved domain.UserProfile
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.UserProfile")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.UserProfile) }).
		Return(nil)

	result := domain.AnalysisResult{ID: testResultID, Score: 85, SpeechDetected: true}
	svc := newTestProfileService(repo, testNow)
	outcome := svc.RecordTraining(context.Background(), result, []domain.AnalysisResult{result})

	assert.True(t, outcome.Persisted)
	assert.Equal(t, 185, outcome.Profile.TotalXP)
	assert.Equal(t, 1, outcome.Profile.Streak)
	require.NotNil(t, outcome.Profile.LastTrainingDate)
	assert.Equal(t, outcome.Profile, saved)

	// First training unlocks the first-step badge.
	ids := make([]string, 0, len(outcome.NewBadges))
	for _, b := range outcome.NewBadges {
		ids = append(ids, b.ID)
	}
	assert.Contains(t, ids, "first_step")
}

func TestRecordTrainingDegradesOnSaveFailure(t *testing.T) {
	repo := new(MockProfileRepository)
	existing := domain.NewDefaultProfile()
	existing.TotalXP = 300
	existing.Level = domain.LevelForXP(300)
	repo.On("Get", mock.Anything).Return(&existing, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	result := domain.AnalysisResult{ID: testResultID, Score: 70, SpeechDetected: true}
	svc := newTestProfileService(repo, testNow)
	outcome := svc.RecordTraining(context.Background(), result, []domain.AnalysisResult{result})

	assert.False(t, outcome.Persisted)
	assert.Empty(t, outcome.NewBadges)
	// Prior profile comes back untouched.
	assert.Equal(t, 300, outcome.Profile.TotalXP)
}

func TestSetPersona(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("Get", mock.Anything).Return(nil, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(p domain.UserProfile) bool {
		return p.Persona == domain.PersonaStrict
	})).Return(nil)

	svc := newTestProfileService(repo, testNow)
	err := svc.SetPersona(context.Background(), domain.PersonaStrict)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSetPersonaRejectsUnknown(t *testing.T) {
	repo := new(MockProfileRepository)

	svc := newTestProfileService(repo, testNow)
	err := svc.SetPersona(context.Background(), domain.Persona("DRILL_SERGEANT"))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSetLanguage(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("Get", mock.Anything).Return(nil, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(p domain.UserProfile) bool {
		return p.Language == domain.LanguageES
	})).Return(nil)

	svc := newTestProfileService(repo, testNow)
	err := svc.SetLanguage(context.Background(), domain.LanguageES)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSetLanguageRejectsUnknown(t *testing.T) {
	svc := newTestProfileService(new(MockProfileRepository), testNow)
	err := svc.SetLanguage(context.Background(), domain.Language("de"))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}
