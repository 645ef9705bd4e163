package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateUtterance validates free-form user text.
func ValidateUtterance(text string) error {
	if len(text) == 0 {
		return errors.New("text cannot be empty")
	}
	if len(text) > 10000 {
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}

// ValidateActionID validates a structured action identifier.
func ValidateActionID(id string) error {
	if len(id) == 0 {
		return errors.New("action_id cannot be empty")
	}
	if len(id) > 256 {
		return errors.New("action_id exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("action_id must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}
