package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
)

func testRepo(t *testing.T) OutcomeRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single conn keeps every statement on the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewOutcomeRepository(db, nil)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return repo
}

func succeededOutcome(docID string) *entity.Outcome {
	return &entity.Outcome{
		ID:         uuid.New(),
		DocumentID: docID,
		Status:     constants.StatusSucceeded,
		TemplateID: "acme-fi",
		Invoice: &entity.CanonicalInvoice{
			SellerID:      "123",
			InvoiceNumber: "A1",
			InvoiceDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			TotalCents:    9950,
			CurrencyCode:  "EUR",
		},
		XML:       []byte("<Finvoice/>"),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestOutcomeRepository_SaveAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	out := succeededOutcome("doc-1")
	if err := repo.Save(ctx, out); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetByID(ctx, out.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DocumentID != "doc-1" || got.Status != constants.StatusSucceeded {
		t.Errorf("unexpected outcome: %+v", got)
	}
	if got.Invoice == nil || got.Invoice.InvoiceNumber != "A1" || got.Invoice.TotalCents != 9950 {
		t.Errorf("invoice fields lost in round-trip: %+v", got.Invoice)
	}
	if got.Invoice.InvoiceDate != time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) {
		t.Errorf("invoice date lost: %v", got.Invoice.InvoiceDate)
	}
	if string(got.XML) != "<Finvoice/>" {
		t.Errorf("xml lost in round-trip: %q", got.XML)
	}
}

func TestOutcomeRepository_GetMissing(t *testing.T) {
	repo := testRepo(t)

	if _, err := repo.GetByID(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestOutcomeRepository_ListByStatusNoLimit(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	const total = 150
	for i := 0; i < total; i++ {
		out := &entity.Outcome{
			ID:         uuid.New(),
			DocumentID: fmt.Sprintf("doc-%d", i),
			Status:     constants.StatusNeedsReview,
			Reason:     "missing required fields: invoice_number",
			CreatedAt:  time.Now().UTC(),
		}
		if err := repo.Save(ctx, out); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	outs, err := repo.ListByStatus(ctx, constants.StatusNeedsReview, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(outs) != total {
		t.Fatalf("limit 0 must return every outcome: got %d of %d", len(outs), total)
	}

	outs, err = repo.ListByStatus(ctx, constants.StatusNeedsReview, 25)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(outs) != 25 {
		t.Errorf("expected 25 outcomes with limit 25, got %d", len(outs))
	}
}

func TestOutcomeRepository_ListByStatus(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	review := &entity.Outcome{
		ID:            uuid.New(),
		DocumentID:    "doc-2",
		Status:        constants.StatusNeedsReview,
		TemplateID:    "acme-fi",
		Fields:        map[string]string{"seller_id": "123"},
		MissingFields: []string{"invoice_number", "total_amount"},
		Reason:        "missing required fields: invoice_number, total_amount",
		CreatedAt:     time.Now().UTC(),
	}
	rejected := &entity.Outcome{
		ID:         uuid.New(),
		DocumentID: "doc-3",
		Status:     constants.StatusRejected,
		Reason:     "no template matched",
		CreatedAt:  time.Now().UTC(),
	}
	for _, o := range []*entity.Outcome{succeededOutcome("doc-1"), review, rejected} {
		if err := repo.Save(ctx, o); err != nil {
			t.Fatalf("save %s: %v", o.DocumentID, err)
		}
	}

	outs, err := repo.ListByStatus(ctx, constants.StatusNeedsReview, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(outs) != 1 {
		t.Fatalf("expected 1 needs-review outcome, got %d", len(outs))
	}
	got := outs[0]
	if got.DocumentID != "doc-2" {
		t.Errorf("expected doc-2, got %s", got.DocumentID)
	}
	if len(got.MissingFields) != 2 || got.MissingFields[0] != "invoice_number" {
		t.Errorf("missing fields lost: %v", got.MissingFields)
	}
	if got.Fields["seller_id"] != "123" {
		t.Errorf("field map lost: %v", got.Fields)
	}
	if got.Invoice != nil {
		t.Error("needs-review outcome must not reconstruct an invoice")
	}

	outs, err = repo.ListByStatus(ctx, constants.StatusRejected, 10)
	if err != nil {
		t.Fatalf("list rejected: %v", err)
	}
	if len(outs) != 1 || outs[0].Reason != "no template matched" {
		t.Errorf("unexpected rejected list: %+v", outs)
	}
}
