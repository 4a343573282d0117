package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/common"
	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
)

// Schema for the outcomes archive. Types stay in the portable subset that
// both SQLite and Postgres accept.
const Schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	status TEXT NOT NULL,
	template_id TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	missing_fields TEXT NOT NULL DEFAULT '',
	fields_json TEXT NOT NULL DEFAULT '',
	seller_id TEXT NOT NULL DEFAULT '',
	invoice_number TEXT NOT NULL DEFAULT '',
	invoice_date TEXT NOT NULL DEFAULT '',
	total_cents BIGINT NOT NULL DEFAULT 0,
	currency_code TEXT NOT NULL DEFAULT '',
	xml TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes(status);
CREATE INDEX IF NOT EXISTS idx_outcomes_document ON outcomes(document_id);
`

// OutcomeRepository is the durable review queue: every pipeline outcome is
// archived here, queryable by status.
type OutcomeRepository interface {
	Save(ctx context.Context, out *entity.Outcome) error
	ListByStatus(ctx context.Context, status constants.OutcomeStatus, limit int) ([]*entity.Outcome, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Outcome, error)
}

type outcomeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewOutcomeRepository(db *sql.DB, logger *slog.Logger) (OutcomeRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, common.WrapError(err, "init outcomes schema")
	}
	return &outcomeRepository{db: db, logger: logger}, nil
}

func (r *outcomeRepository) Save(ctx context.Context, out *entity.Outcome) error {
	var sellerID, invoiceNumber, invoiceDate, currency string
	var totalCents int64
	if out.Invoice != nil {
		sellerID = out.Invoice.SellerID
		invoiceNumber = out.Invoice.InvoiceNumber
		invoiceDate = out.Invoice.InvoiceDate.Format("2006-01-02")
		totalCents = out.Invoice.TotalCents
		currency = out.Invoice.CurrencyCode
	}

	fieldsJSON := ""
	if len(out.Fields) > 0 {
		b, err := json.Marshal(out.Fields)
		if err != nil {
			return common.WrapError(err, "encode fields")
		}
		fieldsJSON = string(b)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outcomes (
			id, document_id, status, template_id, reason, missing_fields,
			fields_json, seller_id, invoice_number, invoice_date,
			total_cents, currency_code, xml, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		out.ID.String(), out.DocumentID, string(out.Status), out.TemplateID,
		out.Reason, strings.Join(out.MissingFields, ","),
		fieldsJSON, sellerID, invoiceNumber, invoiceDate,
		totalCents, currency, string(out.XML),
		out.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		r.logger.Error("failed to save outcome", "document_id", out.DocumentID, "error", err)
		return common.WrapError(err, "save outcome")
	}
	return nil
}

// ListByStatus returns outcomes with the given status, newest first. A limit
// of zero or less means no limit; the review export depends on that to cover
// every queued outcome.
func (r *outcomeRepository) ListByStatus(ctx context.Context, status constants.OutcomeStatus, limit int) ([]*entity.Outcome, error) {
	query := `
		SELECT id, document_id, status, template_id, reason, missing_fields,
		       fields_json, seller_id, invoice_number, invoice_date,
		       total_cents, currency_code, xml, created_at
		FROM outcomes WHERE status = $1 ORDER BY created_at DESC`
	args := []any{string(status)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list outcomes", "status", string(status), "error", err)
		return nil, common.WrapError(err, "list outcomes")
	}
	defer rows.Close()

	var result []*entity.Outcome
	for rows.Next() {
		out, err := scanOutcome(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, out)
	}
	return result, rows.Err()
}

func (r *outcomeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Outcome, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, document_id, status, template_id, reason, missing_fields,
		       fields_json, seller_id, invoice_number, invoice_date,
		       total_cents, currency_code, xml, created_at
		FROM outcomes WHERE id = $1`,
		id.String(),
	)
	out, err := scanOutcome(row.Scan)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	return out, err
}

func scanOutcome(scan func(dest ...any) error) (*entity.Outcome, error) {
	var (
		idStr, docID, status, templateID, reason, missing string
		fieldsJSON, sellerID, invoiceNumber, invoiceDate  string
		currency, xmlText, createdAt                      string
		totalCents                                        int64
	)
	if err := scan(&idStr, &docID, &status, &templateID, &reason, &missing,
		&fieldsJSON, &sellerID, &invoiceNumber, &invoiceDate,
		&totalCents, &currency, &xmlText, &createdAt); err != nil {
		return nil, err
	}

	out := &entity.Outcome{
		DocumentID: docID,
		Status:     constants.OutcomeStatus(status),
		TemplateID: templateID,
		Reason:     reason,
	}
	if id, err := uuid.Parse(idStr); err == nil {
		out.ID = id
	}
	if missing != "" {
		out.MissingFields = strings.Split(missing, ",")
	}
	if fieldsJSON != "" {
		_ = json.Unmarshal([]byte(fieldsJSON), &out.Fields)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		out.CreatedAt = t
	}
	if xmlText != "" {
		out.XML = []byte(xmlText)
	}
	if out.Status == constants.StatusSucceeded {
		inv := &entity.CanonicalInvoice{
			SellerID:      sellerID,
			InvoiceNumber: invoiceNumber,
			TotalCents:    totalCents,
			CurrencyCode:  currency,
		}
		if d, err := time.ParseInLocation("2006-01-02", invoiceDate, time.UTC); err == nil {
			inv.InvoiceDate = d
		}
		out.Invoice = inv
	}
	return out, nil
}
