package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
	"github.com/joseph-ayodele/finvoice-bridge/internal/repository"
)

// Service is a tiny façade over the outcome archive that produces XLSX
// bytes for the review queue.
type Service struct {
	outcomes repository.OutcomeRepository
	logger   *slog.Logger
}

func NewService(outcomes repository.OutcomeRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{outcomes: outcomes, logger: logger}
}

// ExportReviewXLSX returns a workbook listing every needs-review and
// rejected outcome, with enough detail per row to triage without re-reading
// the document text.
func (s *Service) ExportReviewXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	review, err := s.outcomes.ListByStatus(ctx, constants.StatusNeedsReview, limit)
	if err != nil {
		return nil, fmt.Errorf("query needs-review outcomes: %w", err)
	}
	rejected, err := s.outcomes.ListByStatus(ctx, constants.StatusRejected, limit)
	if err != nil {
		return nil, fmt.Errorf("query rejected outcomes: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Review Queue"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Document ID",
		"Status",
		"Template",
		"Reason",
		"Missing Fields",
		"Extracted Fields",
		"Received At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	writeOutcome := func(o *entity.Outcome) {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, o.DocumentID)
		write(2, string(o.Status))
		write(3, o.TemplateID)
		write(4, o.Reason)
		write(5, strings.Join(o.MissingFields, ", "))
		write(6, truncate(formatFields(o.Fields), 200))
		write(7, o.CreatedAt.Format(time.RFC3339))
		row++
	}
	for _, o := range review {
		writeOutcome(o)
	}
	for _, o := range rejected {
		writeOutcome(o)
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // document id
	_ = f.SetColWidth(sheet, "B", "C", 16)
	_ = f.SetColWidth(sheet, "D", "D", 44) // reason
	_ = f.SetColWidth(sheet, "E", "E", 24)
	_ = f.SetColWidth(sheet, "F", "F", 60) // fields
	_ = f.SetColWidth(sheet, "G", "G", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.review.ok",
		"needs_review", len(review),
		"rejected", len(rejected),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func formatFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// truncate cuts s to at most n bytes on a rune boundary, marking the cut
// with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	const ellipsis = "…"
	cut := n - len(ellipsis)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
