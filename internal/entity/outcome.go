package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
)

// Document is one unit of work handed to the pipeline: text already
// extracted by the upstream OCR/PDF stage, plus an advisory confidence.
type Document struct {
	ID         string
	RawText    string
	Confidence float64 // 0 when the source has no confidence signal
}

// Outcome is the single result every processed document yields. Exactly one
// of the three statuses applies; the populated fields depend on how far the
// pipeline got.
type Outcome struct {
	ID         uuid.UUID               `json:"id"`
	DocumentID string                  `json:"document_id"`
	Status     constants.OutcomeStatus `json:"status"`
	TemplateID string                  `json:"template_id,omitempty"`

	// Succeeded only.
	Invoice *CanonicalInvoice `json:"invoice,omitempty"`
	XML     []byte            `json:"-"`

	// NeedsReview only: what extraction produced and what broke the build.
	Fields        map[string]string `json:"fields,omitempty"`
	MissingFields []string          `json:"missing_fields,omitempty"`

	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
