package constants

// OutcomeStatus is the canonical status for rows in the outcomes archive.
type OutcomeStatus string

// Stable values (store these exact strings in the archive).
const (
	StatusSucceeded   OutcomeStatus = "SUCCEEDED"    // canonical invoice built, XML emitted
	StatusNeedsReview OutcomeStatus = "NEEDS_REVIEW" // matched a template but failed validation
	StatusRejected    OutcomeStatus = "REJECTED"     // no template matched or serialization failed
)

// Valid reports whether s is one of the stable status values.
func (s OutcomeStatus) Valid() bool {
	switch s {
	case StatusSucceeded, StatusNeedsReview, StatusRejected:
		return true
	}
	return false
}
