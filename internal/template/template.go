// Package template holds the supplier layout definitions: how to recognize
// which supplier produced a document and how to pull fields out of its text.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/finvoice-bridge/internal/common"
)

// FieldRule extracts one named field. Patterns are compiled once at load
// time, never per document.
type FieldRule struct {
	Name     string
	Pattern  *regexp.Regexp
	Required bool
}

// Template is one supplier layout: identification signals that mark the
// layout, and the ordered field rules to apply once it is matched.
// Templates are immutable after registry construction.
type Template struct {
	ID      string
	Signals []string // case-insensitive substrings expected in this layout's text
	Rules   []FieldRule
}

// Registry is the read-only set of known templates for the process
// lifetime. Reload means building a new Registry and swapping the pointer;
// the struct itself is never mutated after NewRegistry returns.
type Registry struct {
	templates []Template
}

// NewRegistry validates the template set and freezes it. Construction fails
// on duplicate IDs, templates without identification signals, and required
// rules without a pattern — a bad template set must stop the process at
// startup, not corrupt documents at runtime.
func NewRegistry(templates []Template) (*Registry, error) {
	seen := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		if strings.TrimSpace(t.ID) == "" {
			return nil, common.NewConfigError("template with empty id", common.ErrInvalidInput)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, common.NewConfigError(fmt.Sprintf("duplicate template id %q", t.ID), common.ErrInvalidInput)
		}
		seen[t.ID] = struct{}{}
		if len(t.Signals) == 0 {
			return nil, common.NewConfigError(fmt.Sprintf("template %q has no identification signals", t.ID), common.ErrInvalidInput)
		}
		for _, r := range t.Rules {
			if strings.TrimSpace(r.Name) == "" {
				return nil, common.NewConfigError(fmt.Sprintf("template %q has a rule with empty field name", t.ID), common.ErrInvalidInput)
			}
			if r.Pattern == nil || r.Pattern.String() == "" {
				return nil, common.NewConfigError(fmt.Sprintf("template %q field %q has empty pattern", t.ID, r.Name), common.ErrInvalidInput)
			}
		}
	}
	cp := make([]Template, len(templates))
	copy(cp, templates)
	return &Registry{templates: cp}, nil
}

// LookupAll returns the templates in declaration order. Callers must treat
// the slice as read-only.
func (r *Registry) LookupAll() []Template {
	return r.templates
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.templates)
}
