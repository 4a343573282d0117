package invoice

import (
	"fmt"
	"strings"
)

// BuildErrorKind enumerates the ways a raw field map can fail to become a
// canonical invoice.
type BuildErrorKind string

const (
	MissingRequiredFields BuildErrorKind = "MISSING_REQUIRED_FIELDS"
	InvalidDate           BuildErrorKind = "INVALID_DATE"
	InvalidAmount         BuildErrorKind = "INVALID_AMOUNT"
	EmptyIdentifier       BuildErrorKind = "EMPTY_IDENTIFIER"
	InvalidCurrency       BuildErrorKind = "INVALID_CURRENCY"
)

// BuildError carries enough detail (which field, what raw value) to triage a
// document without re-reading its text.
type BuildError struct {
	Kind    BuildErrorKind
	Field   string
	Value   string
	Missing []string // populated for MissingRequiredFields
}

func (e *BuildError) Error() string {
	if e.Kind == MissingRequiredFields {
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: field %q value %q", strings.ToLower(string(e.Kind)), e.Field, e.Value)
}
