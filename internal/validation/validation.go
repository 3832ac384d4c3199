package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	gameKeyRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// MaxParticipantAge bounds the self-reported age of a research participant
const MaxParticipantAge = 120

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateGameKey checks a catalog key such as "guess-what"
func ValidateGameKey(key string) error {
	if key == "" {
		return ValidationError{Field: "game", Message: "game key is required"}
	}
	if !gameKeyRegex.MatchString(key) {
		return ValidationError{Field: "game", Message: "game key must be lowercase words joined by dashes"}
	}
	return nil
}

// ValidateSessionID checks that id is a UUID
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ValidationError{Field: "id", Message: "session id must be a UUID"}
	}
	return nil
}

// ValidateScore checks a total score passed to the MMSE endpoint
func ValidateScore(score int) error {
	if score < 0 {
		return ValidationError{Field: "score", Message: "score must not be negative"}
	}
	return nil
}

// ValidateParticipant checks the research participant details attached to a session
func ValidateParticipant(name string, age int, consent bool) error {
	var errs []error
	if err := ValidateName(name); err != nil {
		errs = append(errs, ValidationError{Field: "participantName", Message: err.(ValidationError).Message})
	}
	if age < 0 || age > MaxParticipantAge {
		errs = append(errs, ValidationError{Field: "age", Message: fmt.Sprintf("age must be between 0 and %d", MaxParticipantAge)})
	}
	if !consent {
		errs = append(errs, ValidationError{Field: "consent", Message: "consent is required"})
	}
	return errors.Join(errs...)
}
