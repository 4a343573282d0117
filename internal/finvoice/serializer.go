// Package finvoice renders canonical invoices as Finvoice XML. Serialization
// is deterministic: element order is fixed by the standard's schema, amounts
// are always dot-decimal with two digits, dates are always ISO 8601. The
// same invoice serializes to byte-identical output on every call.
package finvoice

import (
	"encoding/xml"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
)

// Config pins the standard version and namespace the serializer emits.
// Threaded in explicitly so multiple standard versions can coexist.
type Config struct {
	Namespace string `yaml:"namespace"`
	Version   string `yaml:"version"`
	Indent    string `yaml:"indent"`
}

func (c *Config) defaults() {
	if c.Namespace == "" {
		c.Namespace = "urn:fi:finvoice:3.0"
	}
	if c.Version == "" {
		c.Version = "3.0"
	}
	if c.Indent == "" {
		c.Indent = "  "
	}
}

// SerializationError wraps encoding failures. Validation happened upstream
// in the builder, so this has no business-logic failure modes.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("finvoice serialization: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// Field order here is the schema's order and must never depend on input
// field order.
type finvoiceDoc struct {
	XMLName               xml.Name     `xml:"Finvoice"`
	Version               string       `xml:"Version,attr"`
	Xmlns                 string       `xml:"xmlns,attr"`
	SellerPartyIdentifier string       `xml:"SellerPartyIdentifier"`
	InvoiceNumber         string       `xml:"InvoiceNumber"`
	InvoiceDate           string       `xml:"InvoiceDate"`
	InvoiceTotalAmount    string       `xml:"InvoiceTotalAmount"`
	InvoiceCurrencyCode   string       `xml:"InvoiceCurrencyCode"`
	InvoiceDueDate        string       `xml:"InvoiceDueDate,omitempty"`
	PaymentReference      string       `xml:"EpiRemittanceInfoIdentifier,omitempty"`
	Rows                  []invoiceRow `xml:"InvoiceRow"`
}

type invoiceRow struct {
	ArticleName string `xml:"ArticleName"`
	RowAmount   string `xml:"RowAmount"`
}

// Serializer renders CanonicalInvoice records to Finvoice XML bytes.
type Serializer struct {
	cfg    Config
	logger *slog.Logger
}

func NewSerializer(cfg Config, logger *slog.Logger) *Serializer {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{cfg: cfg, logger: logger}
}

// Serialize renders inv as a complete XML document with declaration.
func (s *Serializer) Serialize(inv *entity.CanonicalInvoice) ([]byte, error) {
	doc := finvoiceDoc{
		Version:               s.cfg.Version,
		Xmlns:                 s.cfg.Namespace,
		SellerPartyIdentifier: inv.SellerID,
		InvoiceNumber:         inv.InvoiceNumber,
		InvoiceDate:           inv.InvoiceDate.Format("2006-01-02"),
		InvoiceTotalAmount:    inv.TotalString(),
		InvoiceCurrencyCode:   inv.CurrencyCode,
		PaymentReference:      inv.Reference,
	}
	if inv.DueDate != nil {
		doc.InvoiceDueDate = inv.DueDate.Format("2006-01-02")
	}
	for _, line := range inv.Lines {
		doc.Rows = append(doc.Rows, invoiceRow{
			ArticleName: line.Description,
			RowAmount:   entity.FormatCents(line.AmountCents),
		})
	}

	body, err := xml.MarshalIndent(doc, "", s.cfg.Indent)
	if err != nil {
		return nil, &SerializationError{Cause: err}
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
