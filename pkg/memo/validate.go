package memo

import (
	"fmt"
	"unicode/utf8"
)

// ValidationError indicates a caller-supplied field violates a constraint.
// No write occurs when validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateTitle enforces the non-empty, <=200 character title constraint.
func ValidateTitle(title string) error {
	if title == "" {
		return ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ValidationError{
			Field:  "title",
			Reason: fmt.Sprintf("must be at most %d characters", MaxTitleLength),
		}
	}
	return nil
}

// ValidateContent enforces the non-empty content constraint.
func ValidateContent(content string) error {
	if content == "" {
		return ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return nil
}

// Validate checks a CreateInput before it reaches the store.
func (in CreateInput) Validate() error {
	if err := ValidateTitle(in.Title); err != nil {
		return err
	}
	return ValidateContent(in.Content)
}

// Validate checks the fields present in an UpdateInput. Absent fields are
// not constrained.
func (u UpdateInput) Validate() error {
	if u.Title != nil {
		if err := ValidateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Content != nil {
		if err := ValidateContent(*u.Content); err != nil {
			return err
		}
	}
	if u.Status != nil && !u.Status.Valid() {
		return ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *u.Status)}
	}
	return nil
}
