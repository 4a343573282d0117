package template

import (
	"regexp"
	"testing"
)

func mustRule(name, pattern string, required bool) FieldRule {
	return FieldRule{Name: name, Pattern: regexp.MustCompile(pattern), Required: required}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry([]Template{
		{ID: "acme", Signals: []string{"ACME Oy"}, Rules: []FieldRule{mustRule("invoice_number", `Invoice No:\s*(\S+)`, true)}},
		{ID: "globex", Signals: []string{"Globex"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 templates, got %d", reg.Len())
	}
}

func TestNewRegistry_ValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		templates []Template
	}{
		{
			"duplicate id",
			[]Template{
				{ID: "acme", Signals: []string{"a"}},
				{ID: "acme", Signals: []string{"b"}},
			},
		},
		{
			"empty id",
			[]Template{{ID: "  ", Signals: []string{"a"}}},
		},
		{
			"no signals",
			[]Template{{ID: "acme"}},
		},
		{
			"rule without pattern",
			[]Template{{ID: "acme", Signals: []string{"a"}, Rules: []FieldRule{{Name: "total_amount", Required: true}}}},
		},
		{
			"rule without name",
			[]Template{{ID: "acme", Signals: []string{"a"}, Rules: []FieldRule{mustRule(" ", `x`, false)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.templates); err == nil {
				t.Error("expected construction to fail")
			}
		})
	}
}

func TestRegistry_LookupAllPreservesOrder(t *testing.T) {
	reg, err := NewRegistry([]Template{
		{ID: "first", Signals: []string{"a"}},
		{ID: "second", Signals: []string{"b"}},
		{ID: "third", Signals: []string{"c"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := reg.LookupAll()
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("expected %s at index %d, got %s", id, i, all[i].ID)
		}
	}
}
