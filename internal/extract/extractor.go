// Package extract applies a matched template's field rules to raw document
// text. Extraction is best-effort and total: every rule runs regardless of
// earlier failures, so the caller always gets a complete picture.
package extract

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/finvoice-bridge/internal/template"
)

// RawFieldMap is the transient per-document result of extraction: field
// name -> trimmed raw string for every rule that matched, plus the required
// fields that did not. Discarded once the invoice is built or the document
// is parked for review.
type RawFieldMap struct {
	Fields          map[string]string
	MissingRequired []string
}

// FieldExtractor pulls named fields out of raw text using compiled rules.
type FieldExtractor struct {
	logger *slog.Logger
}

func NewFieldExtractor(logger *slog.Logger) *FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldExtractor{logger: logger}
}

// Extract runs every rule of t against rawText in declaration order and
// records the first match per field. Missing required fields are recorded,
// never raised — triage needs the full field map, not the first failure.
// Missing optional fields are simply absent.
func (e *FieldExtractor) Extract(rawText string, t *template.Template) RawFieldMap {
	out := RawFieldMap{Fields: make(map[string]string, len(t.Rules))}

	for _, rule := range t.Rules {
		value, ok := firstMatch(rule, rawText)
		if !ok {
			if rule.Required {
				out.MissingRequired = append(out.MissingRequired, rule.Name)
			}
			continue
		}
		out.Fields[rule.Name] = value
	}

	e.logger.Debug("extract.done",
		"template_id", t.ID,
		"fields", len(out.Fields),
		"missing_required", len(out.MissingRequired),
	)
	return out
}

// firstMatch returns the first captured group of the rule's pattern, or the
// whole match when the pattern has no groups. Whitespace-only captures count
// as no match.
func firstMatch(rule template.FieldRule, text string) (string, bool) {
	m := rule.Pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	value := m[0]
	if len(m) > 1 {
		value = m[1]
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
