package validation

import (
	"regexp"
	"strings"

	"speakup/internal/domain"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// MaxAudioDurationSeconds caps a single recording. The client stops at two
// minutes; anything past five means a broken duration field.
const MaxAudioDurationSeconds = 300

// ValidateAnalyzeRequest validates the multipart analyze request.
func (v *Validator) ValidateAnalyzeRequest(contextLabel string, durationSeconds float64, audioSize int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(contextLabel) == "" {
		errors = append(errors, domain.NewMissingFieldError("context"))
	}

	if durationSeconds < 0 || durationSeconds > MaxAudioDurationSeconds {
		errors = append(errors, domain.NewOutOfRangeError("duration_seconds", int(durationSeconds), 0, MaxAudioDurationSeconds))
	}

	if audioSize == 0 {
		errors = append(errors, domain.NewMissingFieldError("audio"))
	}

	return errors
}

// ValidateResultID validates a history result id path parameter.
func (v *Validator) ValidateResultID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("id"))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError("id", id))
	}

	return errors
}

// ValidatePersona validates a persona selection.
func (v *Validator) ValidatePersona(persona string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(persona) == "" {
		errors = append(errors, domain.NewMissingFieldError("persona"))
	} else if !domain.Persona(persona).IsValid() {
		errors = append(errors, domain.NewInvalidFormatError("persona", persona))
	}

	return errors
}

// ValidateLanguage validates a language selection.
func (v *Validator) ValidateLanguage(language string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(language) == "" {
		errors = append(errors, domain.NewMissingFieldError("language"))
	} else if !domain.Language(language).IsValid() {
		errors = append(errors, domain.NewInvalidFormatError("language", language))
	}

	return errors
}

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	return validULID.MatchString(s)
}
