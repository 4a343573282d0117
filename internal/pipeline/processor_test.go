package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
	"github.com/joseph-ayodele/finvoice-bridge/internal/template"
)

const testTemplates = `{
  "templates": [
    {
      "id": "acme-fi",
      "signals": ["Seller ID", "Invoice No"],
      "rules": [
        {"field": "seller_id", "pattern": "Seller ID:\\s*(\\S+)", "required": true},
        {"field": "invoice_number", "pattern": "Invoice No:\\s*(\\S+)", "required": true},
        {"field": "invoice_date", "pattern": "Date:\\s*(\\S+)", "required": true},
        {"field": "total_amount", "pattern": "Total Amount:\\s*([0-9 .,]+)", "required": true}
      ]
    }
  ]
}`

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	registry, err := template.Load([]byte(testTemplates), nil)
	require.NoError(t, err)
	return NewProcessor(nil, registry, Options{})
}

func TestProcessDocument_Succeeded(t *testing.T) {
	p := testProcessor(t)

	raw := "Seller ID: 123\nInvoice No: A1\nDate: 2024-01-15\nTotal Amount: 99.50"
	out := p.ProcessDocument(context.Background(), entity.Document{ID: "doc-1", RawText: raw})

	require.Equal(t, constants.StatusSucceeded, out.Status)
	assert.Equal(t, "doc-1", out.DocumentID)
	assert.Equal(t, "acme-fi", out.TemplateID)
	require.NotNil(t, out.Invoice)
	assert.Equal(t, "A1", out.Invoice.InvoiceNumber)

	xml := string(out.XML)
	for _, want := range []string{
		"<SellerPartyIdentifier>123</SellerPartyIdentifier>",
		"<InvoiceNumber>A1</InvoiceNumber>",
		"<InvoiceDate>2024-01-15</InvoiceDate>",
		"<InvoiceTotalAmount>99.50</InvoiceTotalAmount>",
	} {
		assert.Contains(t, xml, want)
	}
}

func TestProcessDocument_NoTemplateRejected(t *testing.T) {
	p := testProcessor(t)

	out := p.ProcessDocument(context.Background(), entity.Document{ID: "doc-2", RawText: "nothing recognizable here"})

	require.Equal(t, constants.StatusRejected, out.Status)
	assert.Equal(t, "no template matched", out.Reason)
	assert.Empty(t, out.TemplateID)
	assert.Nil(t, out.Invoice)
	assert.Nil(t, out.XML)
}

func TestProcessDocument_MissingFieldNeedsReview(t *testing.T) {
	p := testProcessor(t)

	// Matches the template but the invoice number line is absent.
	raw := "Seller ID: 123\nDate: 2024-01-15\nTotal Amount: 99.50\nInvoice No"
	out := p.ProcessDocument(context.Background(), entity.Document{ID: "doc-3", RawText: raw})

	require.Equal(t, constants.StatusNeedsReview, out.Status)
	assert.Equal(t, []string{"invoice_number"}, out.MissingFields)
	assert.Equal(t, "123", out.Fields["seller_id"], "partial field map must be preserved for triage")
	assert.Nil(t, out.XML)
}

func TestProcessDocument_InvalidDateNeedsReview(t *testing.T) {
	p := testProcessor(t)

	raw := "Seller ID: 123\nInvoice No: A1\nDate: 13.13.2024\nTotal Amount: 99.50"
	out := p.ProcessDocument(context.Background(), entity.Document{ID: "doc-4", RawText: raw})

	require.Equal(t, constants.StatusNeedsReview, out.Status)
	assert.Contains(t, out.Reason, "invalid_date")
	assert.Empty(t, out.MissingFields)
	assert.Equal(t, "13.13.2024", out.Fields["invoice_date"])
}

func TestProcessDocument_EveryDocumentYieldsOneOutcome(t *testing.T) {
	p := testProcessor(t)

	inputs := []string{
		"Seller ID: 1\nInvoice No: X\nDate: 2024-01-01\nTotal Amount: 1.00",
		"garbage",
		"Seller ID: 2\nDate: 2024-01-02\nTotal Amount: 2.00\nInvoice No",
	}
	for i, raw := range inputs {
		out := p.ProcessDocument(context.Background(), entity.Document{ID: "d", RawText: raw})
		assert.True(t, out.Status.Valid(), "input %d produced status %q", i, out.Status)
	}
}

func TestProcessBatch(t *testing.T) {
	p := testProcessor(t)

	docs := make([]entity.Document, 0, 30)
	for i := 0; i < 10; i++ {
		docs = append(docs,
			entity.Document{ID: "ok", RawText: "Seller ID: 1\nInvoice No: X\nDate: 2024-01-01\nTotal Amount: 1.00"},
			entity.Document{ID: "reject", RawText: "garbage"},
			entity.Document{ID: "review", RawText: "Seller ID: 2\nDate: 2024-01-02\nTotal Amount: 2.00\nInvoice No"},
		)
	}

	outcomes, stats := p.ProcessBatch(context.Background(), docs, 4)

	require.Len(t, outcomes, len(docs))
	assert.Equal(t, 30, stats.Total)
	assert.Equal(t, 10, stats.Succeeded)
	assert.Equal(t, 10, stats.NeedsReview)
	assert.Equal(t, 10, stats.Rejected)

	// Outcomes stay aligned with input order regardless of worker scheduling.
	for i, out := range outcomes {
		assert.Equal(t, docs[i].ID, out.DocumentID, "index %d", i)
	}
}

func TestProcessDocument_DeterministicXML(t *testing.T) {
	p := testProcessor(t)
	raw := "Seller ID: 123\nInvoice No: A1\nDate: 2024-01-15\nTotal Amount: 99.50"

	first := p.ProcessDocument(context.Background(), entity.Document{ID: "d", RawText: raw})
	second := p.ProcessDocument(context.Background(), entity.Document{ID: "d", RawText: raw})
	require.Equal(t, constants.StatusSucceeded, first.Status)
	require.Equal(t, constants.StatusSucceeded, second.Status)
	assert.Equal(t, string(first.XML), string(second.XML))
}
