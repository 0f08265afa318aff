package middleware

import (
	"errors"
	"unicode/utf8"
)

// MaxQuestionLen bounds a single inbound message, in bytes.
const MaxQuestionLen = 8000

// ValidateContent validates an inbound message's content.
func ValidateContent(content string) error {
	if len(content) > MaxQuestionLen {
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateLimit validates a listing page size.
func ValidateLimit(limit int) error {
	if limit < 1 || limit > 200 {
		return errors.New("limit must be between 1 and 200")
	}
	return nil
}
