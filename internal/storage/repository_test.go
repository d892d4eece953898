package storage

import (
	"context"
	"path/filepath"
	"testing"

	"abonos/internal/core"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestAddAndListCase(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.AddCase(ctx, core.CaseInput{
		Client:      "Ana",
		Description: "Contract",
		AgreedValue: dec(t, "1000"),
		Stage:       "Open",
		Notes:       "first case",
		CreatedBy:   "admin",
	})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero id")
	}

	cases, err := repo.ListCases(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("list cases: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected 1 case, got %d", len(cases))
	}
	c := cases[0]
	if c.Client != "Ana" || c.Description != "Contract" || !c.AgreedValue.Equal(dec(t, "1000")) {
		t.Fatalf("unexpected case %+v", c)
	}
	if c.Stage != "Open" || c.CreatedBy != "admin" {
		t.Fatalf("unexpected case metadata %+v", c)
	}
	if c.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestAddCaseValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.AddCase(ctx, core.CaseInput{Client: "  "}); !core.IsValidation(err) {
		t.Fatalf("expected validation error for blank client, got %v", err)
	}
	if _, err := repo.AddCase(ctx, core.CaseInput{Client: "Ana", AgreedValue: dec(t, "-1")}); !core.IsValidation(err) {
		t.Fatalf("expected validation error for negative agreed value, got %v", err)
	}
}

func TestAddCaseDuplicateRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.CaseInput{Client: "Ana", Description: "Contract", AgreedValue: dec(t, "1000")}
	if _, err := repo.AddCase(ctx, in); err != nil {
		t.Fatalf("first add: %v", err)
	}

	_, err := repo.AddCase(ctx, in)
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate, got %v", err)
	}

	cases, err := repo.ListCases(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("list cases: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected exactly 1 case after duplicate rejection, got %d", len(cases))
	}

	// Same client with a different description is a distinct case
	in.Description = "Second contract"
	if _, err := repo.AddCase(ctx, in); err != nil {
		t.Fatalf("distinct description should be accepted: %v", err)
	}
}

func TestEditCase(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.AddCase(ctx, core.CaseInput{Client: "Ana", AgreedValue: dec(t, "500")})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}

	n, err := repo.EditCase(ctx, id, core.CaseInput{Client: "Ana", AgreedValue: dec(t, "750"), Stage: "Closed"})
	if err != nil {
		t.Fatalf("edit case: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row affected, got %d", n)
	}

	cases, _ := repo.ListCases(ctx, core.Filter{})
	if !cases[0].AgreedValue.Equal(dec(t, "750")) || cases[0].Stage != "Closed" {
		t.Fatalf("edit not applied: %+v", cases[0])
	}

	// Editing a missing id affects zero rows, no error
	n, err = repo.EditCase(ctx, 999, core.CaseInput{Client: "Ana"})
	if err != nil || n != 0 {
		t.Fatalf("expected 0 rows for missing id, got n=%d err=%v", n, err)
	}
}

func TestAddPaymentValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.AddCase(ctx, core.CaseInput{Client: "Ana", AgreedValue: dec(t, "100")})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}

	bads := []core.PaymentInput{
		{Date: core.Today(), Amount: decimal.Zero, CaseID: id},
		{Date: core.Today(), Amount: dec(t, "-10"), CaseID: id},
		{Date: core.Today(), Amount: dec(t, "10"), CaseID: 999},
	}
	for i, in := range bads {
		if _, err := repo.AddPayment(ctx, in); !core.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	// Rejected inserts leave the payments table unchanged
	payments, err := repo.ListPayments(ctx, 0)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("expected 0 payments, got %d", len(payments))
	}
}

func TestPaymentLifecycleAndOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	caseID, err := repo.AddCase(ctx, core.CaseInput{Client: "Ana", Description: "Contract", AgreedValue: dec(t, "1000")})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}

	p1, err := repo.AddPayment(ctx, core.PaymentInput{Date: core.NewDate(2025, 1, 10), Amount: dec(t, "300"), CaseID: caseID, CreatedBy: "admin"})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	p2, err := repo.AddPayment(ctx, core.PaymentInput{Date: core.NewDate(2025, 2, 1), Amount: dec(t, "200"), CaseID: caseID})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	p3, err := repo.AddPayment(ctx, core.PaymentInput{Date: core.NewDate(2025, 1, 10), Amount: dec(t, "50"), CaseID: caseID})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}

	payments, err := repo.ListPayments(ctx, caseID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("expected 3 payments, got %d", len(payments))
	}
	// Newest first: date desc, then id desc within the same date
	if payments[0].ID != p2 || payments[1].ID != p3 || payments[2].ID != p1 {
		t.Fatalf("unexpected order: %d %d %d", payments[0].ID, payments[1].ID, payments[2].ID)
	}
	if payments[0].Client != "Ana" || payments[0].CaseDescription != "Contract" {
		t.Fatalf("expected join columns, got %+v", payments[0])
	}

	// Edit moves amount
	n, err := repo.EditPayment(ctx, p1, core.PaymentInput{Date: core.NewDate(2025, 1, 10), Amount: dec(t, "350"), CaseID: caseID})
	if err != nil || n != 1 {
		t.Fatalf("edit payment: n=%d err=%v", n, err)
	}

	totals, err := repo.PaymentTotals(ctx)
	if err != nil {
		t.Fatalf("payment totals: %v", err)
	}
	if !totals[caseID].Equal(dec(t, "600")) {
		t.Fatalf("expected total 600, got %s", totals[caseID])
	}

	// Delete one payment; deleting again is a no-op
	if err := repo.DeletePayment(ctx, p2); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	if err := repo.DeletePayment(ctx, p2); err != nil {
		t.Fatalf("repeat delete should be a no-op: %v", err)
	}
	payments, _ = repo.ListPayments(ctx, caseID)
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments after delete, got %d", len(payments))
	}
}

func TestDeleteCaseCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	caseID, err := repo.AddCase(ctx, core.CaseInput{Client: "Ana", AgreedValue: dec(t, "1000")})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}
	otherID, err := repo.AddCase(ctx, core.CaseInput{Client: "Luis", AgreedValue: dec(t, "400")})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}

	for _, amt := range []string{"300", "200"} {
		if _, err := repo.AddPayment(ctx, core.PaymentInput{Date: core.Today(), Amount: dec(t, amt), CaseID: caseID}); err != nil {
			t.Fatalf("add payment: %v", err)
		}
	}
	if _, err := repo.AddPayment(ctx, core.PaymentInput{Date: core.Today(), Amount: dec(t, "100"), CaseID: otherID}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	if err := repo.DeleteCase(ctx, caseID); err != nil {
		t.Fatalf("delete case: %v", err)
	}

	payments, err := repo.ListPayments(ctx, caseID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("expected cascade delete, found %d payments", len(payments))
	}

	// The other case's payments survive
	payments, _ = repo.ListPayments(ctx, otherID)
	if len(payments) != 1 {
		t.Fatalf("expected unrelated payments intact, got %d", len(payments))
	}

	// Deleting a missing case is a no-op
	if err := repo.DeleteCase(ctx, 12345); err != nil {
		t.Fatalf("delete of missing case should be a no-op: %v", err)
	}
}

func TestListCasesFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.CaseInput{
		{Client: "Ana", Description: "A", Stage: "Open"},
		{Client: "Ana", Description: "B", Stage: "Closed"},
		{Client: "Luis", Description: "C", Stage: "Open"},
	}
	for _, in := range seed {
		if _, err := repo.AddCase(ctx, in); err != nil {
			t.Fatalf("seed case: %v", err)
		}
	}

	byClient, err := repo.ListCases(ctx, core.Filter{Client: "Ana"})
	if err != nil {
		t.Fatalf("filter by client: %v", err)
	}
	if len(byClient) != 2 {
		t.Fatalf("expected 2 Ana cases, got %d", len(byClient))
	}

	byStage, err := repo.ListCases(ctx, core.Filter{Stage: "Open"})
	if err != nil {
		t.Fatalf("filter by stage: %v", err)
	}
	if len(byStage) != 2 {
		t.Fatalf("expected 2 open cases, got %d", len(byStage))
	}

	both, err := repo.ListCases(ctx, core.Filter{Client: "Ana", Stage: "Open"})
	if err != nil {
		t.Fatalf("filter by both: %v", err)
	}
	if len(both) != 1 || both[0].Description != "A" {
		t.Fatalf("expected the single Ana/Open case, got %+v", both)
	}

	// Ordered by id ascending
	all, _ := repo.ListCases(ctx, core.Filter{})
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Fatalf("cases not ordered by id: %d then %d", all[i-1].ID, all[i].ID)
		}
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	repo, err := NewRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	ctx := context.Background()
	if _, err := repo.AddCase(ctx, core.CaseInput{Client: "Ana"}); err != nil {
		t.Fatalf("add case: %v", err)
	}
	repo.Close()

	// Second open re-runs migrations as a no-op and sees existing data
	repo2, err := NewRepository(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer repo2.Close()

	cases, err := repo2.ListCases(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected 1 case after reopen, got %d", len(cases))
	}
}
