package payload

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBlankContent marks a request whose required content is empty
var ErrBlankContent = errors.New("content is blank")

// ValidationError rejects a request before any encoding happens
type ValidationError struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s request: %s: %v", e.Kind, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UserMessage is the short text shown to the user
func (e *ValidationError) UserMessage() string {
	return "Please enter content to generate a QR code."
}

// RequiresContent reports whether kind needs a non-blank primary content.
// WiFi and location build their payload from other fields.
func RequiresContent(kind Kind) bool {
	switch kind {
	case KindWiFi, KindLocation:
		return false
	}
	return true
}

// Validate rejects blank content for kinds that require it
func Validate(req Request) error {
	if req == nil {
		return &ValidationError{Field: FieldContent, Err: ErrBlankContent}
	}
	if RequiresContent(req.Kind()) && strings.TrimSpace(req.Content()) == "" {
		return &ValidationError{Kind: req.Kind(), Field: FieldContent, Err: ErrBlankContent}
	}
	return nil
}
