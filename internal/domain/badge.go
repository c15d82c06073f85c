package domain

// Badge is a static achievement definition. Only its id is persisted (in
// UserProfile.Badges); the catalog is the single source of truth for
// predicate logic.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	// Unlocked must be pure and side-effect-free. It is only evaluated for
	// profiles that have not yet unlocked the badge.
	Unlocked func(profile UserProfile, history []AnalysisResult) bool `json:"-"`
}

// Catalog is the fixed, ordered badge list. Appending a new entry is all it
// takes to ship a new badge; unlock evaluation is data-driven.
var Catalog = []Badge{
	{
		ID:          "first_step",
		Name:        "Primeiro Passo",
		Description: "Complete sua primeira análise",
		Icon:        "🎤",
		Unlocked: func(_ UserProfile, history []AnalysisResult) bool {
			return len(history) >= 1
		},
	},
	{
		ID:          "streak_3",
		Name:        "Em Chamas",
		Description: "Pratique 3 dias seguidos",
		Icon:        "🔥",
		Unlocked: func(profile UserProfile, _ []AnalysisResult) bool {
			return profile.Streak >= 3
		},
	},
	{
		ID:          "high_score",
		Name:        "Orador Nato",
		Description: "Alcance uma pontuação de 90 ou mais",
		Icon:        "🏆",
		Unlocked: func(_ UserProfile, history []AnalysisResult) bool {
			for _, r := range history {
				if r.Score >= 90 {
					return true
				}
			}
			return false
		},
	},
	{
		ID:          "clean_speech",
		Name:        "Fala Limpa",
		Description: "Complete uma análise sem vícios de linguagem",
		Icon:        "✨",
		Unlocked: func(_ UserProfile, history []AnalysisResult) bool {
			for _, r := range history {
				if r.VerbalTicCount == 0 {
					return true
				}
			}
			return false
		},
	},
}

// BadgeByID looks a badge up in the catalog.
func BadgeByID(id string) (Badge, bool) {
	for _, b := range Catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}
