package domain

import (
	"math"
	"time"
)

// Persona is the selectable coaching tone. It flavors prompt instructions
// for the analyzer and never affects scoring.
type Persona string

const (
	PersonaMotivator Persona = "MOTIVATOR"
	PersonaStrict    Persona = "STRICT"
	PersonaFunny     Persona = "FUNNY"
	PersonaTechnical Persona = "TECHNICAL"
)

// Personas lists all selectable coaching personas.
var Personas = []Persona{PersonaMotivator, PersonaStrict, PersonaFunny, PersonaTechnical}

// IsValid reports whether p is a known persona.
func (p Persona) IsValid() bool {
	for _, known := range Personas {
		if p == known {
			return true
		}
	}
	return false
}

// Language is the selected UI language, also passed to the analyzer so
// feedback comes back in the user's language.
type Language string

const (
	LanguagePT Language = "pt"
	LanguageEN Language = "en"
	LanguageES Language = "es"
)

// Languages lists all supported languages.
var Languages = []Language{LanguagePT, LanguageEN, LanguageES}

// IsValid reports whether l is a supported language.
func (l Language) IsValid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

const (
	DefaultPersona  = PersonaMotivator
	DefaultLanguage = LanguagePT

	// BaseXPPerTraining is granted for every speech-detected attempt,
	// on top of the attempt's score.
	BaseXPPerTraining = 100
)

// UserProfile is the single per-installation profile. Level is always the
// deterministic function of TotalXP and is recomputed on every update.
type UserProfile struct {
	TotalXP          int        `json:"totalXp"`
	Level            int        `json:"level"`
	Streak           int        `json:"streak"`
	LastTrainingDate *time.Time `json:"lastTrainingDate"`
	Badges           []string   `json:"badges"`
	Persona          Persona    `json:"persona"`
	Language         Language   `json:"language"`
}

// NewDefaultProfile returns the profile created lazily on first access.
func NewDefaultProfile() UserProfile {
	return UserProfile{
		TotalXP:  0,
		Level:    1,
		Streak:   0,
		Badges:   []string{},
		Persona:  DefaultPersona,
		Language: DefaultLanguage,
	}
}

// HasBadge reports whether the badge id has already been unlocked.
func (p UserProfile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// LevelForXP derives the level from cumulative XP. The exact formula is
// load-bearing for save compatibility: floor(sqrt(totalXp)/5) + 1.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return int(math.Floor(math.Sqrt(float64(totalXP))/5)) + 1
}

// ApplyTraining evolves the profile for one speech-detected result. It is a
// pure function: the receiver is not mutated and the returned profile carries
// a fresh badge slice. History must already include the new result. Newly
// unlocked badges are returned in catalog order.
func (p UserProfile) ApplyTraining(result AnalysisResult, history []AnalysisResult, now time.Time) (UserProfile, []Badge) {
	updated := p
	updated.Badges = append([]string{}, p.Badges...)

	today := calendarDate(now, now.Location())
	trainedToday := false
	if p.LastTrainingDate != nil {
		last := calendarDate(*p.LastTrainingDate, now.Location())
		switch {
		case last.Equal(today):
			trainedToday = true
		case last.AddDate(0, 0, 1).Equal(today):
			updated.Streak = p.Streak + 1
		default:
			updated.Streak = 1
		}
	} else {
		updated.Streak = 1
	}
	if !trainedToday {
		ts := now
		updated.LastTrainingDate = &ts
	}

	updated.TotalXP = p.TotalXP + BaseXPPerTraining + result.Score
	updated.Level = LevelForXP(updated.TotalXP)

	var newlyUnlocked []Badge
	for _, badge := range Catalog {
		if updated.HasBadge(badge.ID) {
			continue
		}
		if badge.Unlocked(updated, history) {
			updated.Badges = append(updated.Badges, badge.ID)
			newlyUnlocked = append(newlyUnlocked, badge)
		}
	}

	return updated, newlyUnlocked
}

func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
