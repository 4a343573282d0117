package template

import (
	"log/slog"
	"strings"
)

// MatchResult pairs the chosen template (nil when nothing matched) with the
// score that selected it. Scores are matched-signal counts normalized by the
// template's total signal count, so templates with different signal counts
// compare fairly.
type MatchResult struct {
	Template *Template
	Score    float64
}

// Matched reports whether a template was selected.
func (m MatchResult) Matched() bool {
	return m.Template != nil
}

// Matcher selects the best template for a document's text. Pure function of
// its inputs; safe for concurrent use.
type Matcher struct {
	registry *Registry
	minScore float64
	logger   *slog.Logger
}

// NewMatcher builds a matcher over the registry. minScore below or equal to
// zero means the default gate: at least one signal must match. Anything
// scoring under the gate is "no match" — a wrong template silently corrupts
// extracted data, so precision wins over recall here.
func NewMatcher(registry *Registry, minScore float64, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{registry: registry, minScore: minScore, logger: logger}
}

// Match scores every template against rawText and returns the winner.
// Ties break by declaration order: the first-registered template wins.
func (m *Matcher) Match(rawText string) MatchResult {
	lower := strings.ToLower(rawText)

	best := MatchResult{}
	for i := range m.registry.templates {
		t := &m.registry.templates[i]
		hits := 0
		for _, sig := range t.Signals {
			if strings.Contains(lower, strings.ToLower(sig)) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(t.Signals))
		if score > best.Score {
			best = MatchResult{Template: t, Score: score}
		}
	}

	if best.Template == nil || best.Score < m.minScore {
		m.logger.Debug("match.none", "best_score", best.Score)
		return MatchResult{}
	}
	m.logger.Debug("match.ok", "template_id", best.Template.ID, "score", best.Score)
	return best
}
