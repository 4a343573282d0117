// Package invoice turns raw extracted field strings into validated
// CanonicalInvoice records. Every silent-corruption risk in the pipeline is
// stopped here: nothing downstream ever sees an unparsable amount or date.
package invoice

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
	"github.com/joseph-ayodele/finvoice-bridge/internal/extract"
)

// Options holds the locale knobs for normalization. Zero values get
// defaults applied; see defaults().
type Options struct {
	// DateFormats are Go reference layouts tried in order.
	DateFormats []string `yaml:"date_formats"`
	// DecimalSeparators are tried in order when parsing amounts.
	DecimalSeparators []string `yaml:"decimal_separators"`
	// DefaultCurrency is used when the document carries no currency field.
	DefaultCurrency string `yaml:"default_currency"`
}

func (o *Options) defaults() {
	if len(o.DateFormats) == 0 {
		o.DateFormats = []string{"2006-01-02", "02.01.2006"}
	}
	if len(o.DecimalSeparators) == 0 {
		o.DecimalSeparators = []string{".", ","}
	}
	if o.DefaultCurrency == "" {
		o.DefaultCurrency = "EUR"
	}
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Builder normalizes raw field maps into canonical invoices.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

func NewBuilder(opts Options, logger *slog.Logger) *Builder {
	opts.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{opts: opts, logger: logger}
}

// Build constructs a CanonicalInvoice from fm, or fails with a *BuildError.
// Construction succeeds fully or not at all; there is no partially valid
// invoice. Missing required business data is never defaulted or guessed.
func (b *Builder) Build(fm extract.RawFieldMap) (*entity.CanonicalInvoice, *BuildError) {
	if len(fm.MissingRequired) > 0 {
		return nil, &BuildError{Kind: MissingRequiredFields, Missing: fm.MissingRequired}
	}

	sellerID, err := b.identifier(constants.FieldSellerID, fm.Fields[constants.FieldSellerID])
	if err != nil {
		return nil, err
	}
	invoiceNumber, err := b.identifier(constants.FieldInvoiceNumber, fm.Fields[constants.FieldInvoiceNumber])
	if err != nil {
		return nil, err
	}
	invoiceDate, err := b.date(constants.FieldInvoiceDate, fm.Fields[constants.FieldInvoiceDate])
	if err != nil {
		return nil, err
	}
	totalCents, err := b.amount(constants.FieldTotalAmount, fm.Fields[constants.FieldTotalAmount])
	if err != nil {
		return nil, err
	}

	inv := &entity.CanonicalInvoice{
		SellerID:      sellerID,
		InvoiceNumber: invoiceNumber,
		InvoiceDate:   invoiceDate,
		TotalCents:    totalCents,
		CurrencyCode:  b.opts.DefaultCurrency,
		Lines:         []entity.LineItem{},
	}

	// Optional fields: absent is fine, present-but-garbage is not.
	if raw, ok := fm.Fields[constants.FieldCurrency]; ok {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if !currencyRe.MatchString(code) {
			return nil, &BuildError{Kind: InvalidCurrency, Field: constants.FieldCurrency, Value: raw}
		}
		inv.CurrencyCode = code
	}
	if raw, ok := fm.Fields[constants.FieldDueDate]; ok {
		due, err := b.date(constants.FieldDueDate, raw)
		if err != nil {
			return nil, err
		}
		inv.DueDate = &due
	}
	if raw, ok := fm.Fields[constants.FieldReference]; ok {
		ref, err := b.identifier(constants.FieldReference, raw)
		if err != nil {
			return nil, err
		}
		inv.Reference = ref
	}

	b.logger.Debug("build.ok",
		"invoice_number", inv.InvoiceNumber,
		"date", inv.InvoiceDate.Format("2006-01-02"),
		"total", inv.TotalString(),
		"currency", inv.CurrencyCode,
	)
	return inv, nil
}

// identifier trims and collapses internal whitespace.
func (b *Builder) identifier(field, raw string) (string, *BuildError) {
	norm := strings.Join(strings.Fields(raw), " ")
	if norm == "" {
		return "", &BuildError{Kind: EmptyIdentifier, Field: field, Value: raw}
	}
	return norm, nil
}

// date tries the configured layouts in order; first parse wins. Dates are
// pinned to midnight UTC to keep DATE semantics.
func (b *Builder) date(field, raw string) (time.Time, *BuildError) {
	s := strings.TrimSpace(raw)
	for _, layout := range b.opts.DateFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &BuildError{Kind: InvalidDate, Field: field, Value: raw}
}

// amount parses raw into non-negative minor units using the configured
// decimal separators.
func (b *Builder) amount(field, raw string) (int64, *BuildError) {
	cents, ok := ParseAmount(raw, b.opts.DecimalSeparators)
	if !ok || cents < 0 {
		return 0, &BuildError{Kind: InvalidAmount, Field: field, Value: raw}
	}
	return cents, nil
}

// ParseAmount converts a locale-formatted amount string into minor units.
// Spaces (including non-breaking) are grouping and get stripped first. A
// configured separator that occurs exactly once with one or two trailing
// digits is the decimal point; every other configured separator is treated
// as grouping. "1 234,56" and "1,234.56" both come out as 123456.
func ParseAmount(raw string, decimalSeps []string) (int64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole, frac := s, ""
	for _, sep := range decimalSeps {
		idx := strings.LastIndex(s, sep)
		if idx < 0 {
			continue
		}
		tail := s[idx+len(sep):]
		if strings.Count(s, sep) == 1 && len(tail) >= 1 && len(tail) <= 2 && allDigits(tail) {
			whole, frac = s[:idx], tail
			break
		}
	}

	// Remaining separators in the whole part are grouping.
	for _, sep := range decimalSeps {
		whole = strings.ReplaceAll(whole, sep, "")
	}
	if whole == "" || !allDigits(whole) {
		return 0, false
	}

	var cents int64
	for _, r := range whole {
		cents = cents*10 + int64(r-'0')
		if cents > (1<<62)/100 {
			return 0, false
		}
	}
	cents *= 100
	switch len(frac) {
	case 1:
		cents += int64(frac[0]-'0') * 10
	case 2:
		cents += int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	}
	if negative {
		cents = -cents
	}
	return cents, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
