package model

// Language is a supported response locale.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageIndonesian Language = "id"
)

// ExperienceLevel tailors the tips included in chat responses.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// UserProfile carries the caller preferences the responder needs.
type UserProfile struct {
	PreferredLanguage Language        `json:"preferredLanguage"`
	ExperienceLevel   ExperienceLevel `json:"experienceLevel"`
}

// DefaultProfile is used when the caller sends no profile.
func DefaultProfile() UserProfile {
	return UserProfile{PreferredLanguage: LanguageEnglish, ExperienceLevel: ExperienceIntermediate}
}
