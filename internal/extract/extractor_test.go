package extract

import (
	"regexp"
	"testing"

	"github.com/joseph-ayodele/finvoice-bridge/internal/template"
)

func rule(name, pattern string, required bool) template.FieldRule {
	return template.FieldRule{Name: name, Pattern: regexp.MustCompile(pattern), Required: required}
}

func TestExtract(t *testing.T) {
	tmpl := &template.Template{
		ID:      "acme",
		Signals: []string{"ACME"},
		Rules: []template.FieldRule{
			rule("seller_id", `Seller ID:\s*(\S+)`, true),
			rule("invoice_number", `Invoice No:\s*(\S+)`, true),
			rule("total_amount", `Total Amount:\s*([0-9 .,]+)`, true),
			rule("reference", `Ref:\s*(\S+)`, false),
		},
	}

	text := "Seller ID: 123\nInvoice No: A1\nTotal Amount: 99.50\n"
	fm := NewFieldExtractor(nil).Extract(text, tmpl)

	if len(fm.MissingRequired) != 0 {
		t.Fatalf("expected no missing required, got %v", fm.MissingRequired)
	}
	want := map[string]string{
		"seller_id":      "123",
		"invoice_number": "A1",
		"total_amount":   "99.50",
	}
	for k, v := range want {
		if fm.Fields[k] != v {
			t.Errorf("field %s: expected %q, got %q", k, v, fm.Fields[k])
		}
	}
	if _, ok := fm.Fields["reference"]; ok {
		t.Error("optional reference should be absent, not empty")
	}
}

func TestExtract_MissingRequiredIsRecordedNotRaised(t *testing.T) {
	tmpl := &template.Template{
		ID:      "acme",
		Signals: []string{"ACME"},
		Rules: []template.FieldRule{
			rule("seller_id", `Seller ID:\s*(\S+)`, true),
			rule("invoice_number", `Invoice No:\s*(\S+)`, true),
			rule("total_amount", `Total Amount:\s*(\S+)`, true),
		},
	}

	// invoice_number is absent; later rules must still run.
	text := "Seller ID: 123\nTotal Amount: 50.00\n"
	fm := NewFieldExtractor(nil).Extract(text, tmpl)

	if len(fm.MissingRequired) != 1 || fm.MissingRequired[0] != "invoice_number" {
		t.Fatalf("expected missing [invoice_number], got %v", fm.MissingRequired)
	}
	if fm.Fields["total_amount"] != "50.00" {
		t.Errorf("extraction must be total: total_amount missing after earlier failure")
	}
}

func TestExtract_FirstMatchWinsAndIsTrimmed(t *testing.T) {
	tmpl := &template.Template{
		ID:      "acme",
		Signals: []string{"ACME"},
		Rules: []template.FieldRule{
			rule("invoice_number", `Invoice No:\s*([^\n]+)`, true),
		},
	}

	text := "Invoice No:   A1  \nInvoice No: B2\n"
	fm := NewFieldExtractor(nil).Extract(text, tmpl)

	if fm.Fields["invoice_number"] != "A1" {
		t.Errorf("expected first match trimmed to A1, got %q", fm.Fields["invoice_number"])
	}
}

func TestExtract_WholeMatchWhenNoCaptureGroup(t *testing.T) {
	tmpl := &template.Template{
		ID:      "acme",
		Signals: []string{"ACME"},
		Rules: []template.FieldRule{
			rule("reference", `RF\d+`, false),
		},
	}

	fm := NewFieldExtractor(nil).Extract("pay with RF4711 please", tmpl)
	if fm.Fields["reference"] != "RF4711" {
		t.Errorf("expected whole-pattern match RF4711, got %q", fm.Fields["reference"])
	}
}

func TestExtract_WhitespaceOnlyCaptureCountsAsMissing(t *testing.T) {
	tmpl := &template.Template{
		ID:      "acme",
		Signals: []string{"ACME"},
		Rules: []template.FieldRule{
			rule("invoice_number", `Invoice No:([^\n]*)`, true),
		},
	}

	fm := NewFieldExtractor(nil).Extract("Invoice No:   \n", tmpl)
	if len(fm.MissingRequired) != 1 {
		t.Fatalf("expected whitespace-only capture to count as missing, got %v", fm.Fields)
	}
}
