// Package pipeline sequences match, extract, build, and serialize for one
// document at a time. The pipeline is stateless across documents; the only
// shared state is the immutable template registry, so documents can be
// processed in parallel with no coordination.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
	"github.com/joseph-ayodele/finvoice-bridge/internal/extract"
	"github.com/joseph-ayodele/finvoice-bridge/internal/finvoice"
	"github.com/joseph-ayodele/finvoice-bridge/internal/invoice"
	"github.com/joseph-ayodele/finvoice-bridge/internal/template"
)

const reasonNoTemplate = "no template matched"

// Processor runs the full pipeline for single documents.
type Processor struct {
	logger     *slog.Logger
	matcher    *template.Matcher
	extractor  *extract.FieldExtractor
	builder    *invoice.Builder
	serializer *finvoice.Serializer
}

// NewProcessor wires the pipeline stages from a registry and options.
func NewProcessor(logger *slog.Logger, registry *template.Registry, opts Options) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:     logger,
		matcher:    template.NewMatcher(registry, opts.MinConfidence, logger),
		extractor:  extract.NewFieldExtractor(logger),
		builder:    invoice.NewBuilder(opts.Normalization, logger),
		serializer: finvoice.NewSerializer(opts.Finvoice, logger),
	}
}

// ProcessDocument yields exactly one outcome per document. Per-document
// failures never escape as errors; they are folded into the outcome so one
// bad invoice can never block the rest of a batch.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) entity.Outcome {
	_ = ctx // all stages are synchronous in-memory transforms
	started := time.Now()
	out := entity.Outcome{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		CreatedAt:  time.Now().UTC(),
	}

	match := p.matcher.Match(doc.RawText)
	if !match.Matched() {
		out.Status = constants.StatusRejected
		out.Reason = reasonNoTemplate
		p.logger.Info("pipeline.rejected", "document_id", doc.ID, "reason", out.Reason)
		return out
	}
	out.TemplateID = match.Template.ID

	fm := p.extractor.Extract(doc.RawText, match.Template)

	inv, buildErr := p.builder.Build(fm)
	if buildErr != nil {
		out.Status = constants.StatusNeedsReview
		out.Fields = fm.Fields
		out.MissingFields = buildErr.Missing
		out.Reason = buildErr.Error()
		p.logger.Info("pipeline.needs_review",
			"document_id", doc.ID,
			"template_id", out.TemplateID,
			"kind", string(buildErr.Kind),
			"reason", out.Reason,
		)
		return out
	}

	xmlBytes, err := p.serializer.Serialize(inv)
	if err != nil {
		// Should be unreachable given builder validation; reject with full
		// context so it can be investigated.
		out.Status = constants.StatusRejected
		out.Reason = err.Error()
		p.logger.Error("pipeline.serialize.failed", "document_id", doc.ID, "error", err)
		return out
	}

	out.Status = constants.StatusSucceeded
	out.Invoice = inv
	out.XML = xmlBytes

	p.logger.Info("pipeline.succeeded",
		"document_id", doc.ID,
		"template_id", out.TemplateID,
		"invoice_number", inv.InvoiceNumber,
		"total", inv.TotalString(),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return out
}
