// Package storage implements the durable ledger store on SQLite.
//
// Every mutating operation is a single statement committed before returning;
// referential integrity between payments and cases is enforced both by
// pre-validation and by the foreign key with cascade delete.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"abonos/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the ledger database at dbPath and
// brings its schema up to date. Open and ping failures surface as
// core.ConnectivityError: the session cannot proceed without its store.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &core.ConnectivityError{Err: fmt.Errorf("create db directory: %w", err)}
	}

	// Cascade delete on payments requires foreign_keys on every connection.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, &core.ConnectivityError{Err: fmt.Errorf("open sqlite database: %w", err)}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &core.ConnectivityError{Err: fmt.Errorf("ping database: %w", err)}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, &core.ConnectivityError{Err: fmt.Errorf("run migrations: %w", err)}
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AddCase validates and inserts a new case, returning its id. A duplicate
// (client, description) pair is rejected before the insert is attempted.
func (r *Repository) AddCase(ctx context.Context, in core.CaseInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cases WHERE client = ? AND description = ?`,
		strings.TrimSpace(in.Client), in.Description,
	).Scan(&count)
	if err != nil {
		return 0, r.translate(ctx, "check duplicate case", err)
	}
	if count > 0 {
		return 0, core.Validationf("a case for %q with that description already exists", strings.TrimSpace(in.Client))
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cases (client, description, agreed_value, stage, notes, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(in.Client), in.Description, in.AgreedValue.String(),
		in.Stage, in.Notes, core.Today().String(), in.CreatedBy,
	)
	if err != nil {
		return 0, r.translate(ctx, "insert case", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("case insert id: %w", err)
	}

	slog.InfoContext(ctx, "Case added",
		"id", id,
		"client", strings.TrimSpace(in.Client),
		"agreed_value", in.AgreedValue.String(),
		"created_by", in.CreatedBy)

	return id, nil
}

// EditCase updates a case's mutable fields and returns the number of rows
// affected (0 when the id does not exist). The (client, description)
// uniqueness invariant is not re-checked on edit; see DESIGN.md.
func (r *Repository) EditCase(ctx context.Context, id int64, in core.CaseInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE cases SET client = ?, description = ?, agreed_value = ?, stage = ?, notes = ? WHERE id = ?`,
		strings.TrimSpace(in.Client), in.Description, in.AgreedValue.String(), in.Stage, in.Notes, id,
	)
	if err != nil {
		return 0, r.translate(ctx, "update case", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("case update count: %w", err)
	}

	slog.InfoContext(ctx, "Case edited", "id", id, "rows", n)
	return n, nil
}

// DeleteCase removes a case and, via cascade, all of its payments. Deleting
// an id that does not exist is a no-op.
func (r *Repository) DeleteCase(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id); err != nil {
		return r.translate(ctx, "delete case", err)
	}
	slog.InfoContext(ctx, "Case deleted", "id", id)
	return nil
}

// AddPayment validates and inserts a new payment, returning its id. The
// referenced case must exist and the amount must be strictly positive.
func (r *Repository) AddPayment(ctx context.Context, in core.PaymentInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM cases WHERE id = ?`, in.CaseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.Validationf("no case with id %d", in.CaseID)
	}
	if err != nil {
		return 0, r.translate(ctx, "check case exists", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (date, amount, case_id, notes, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Date.String(), in.Amount.String(), in.CaseID, in.Notes,
		time.Now().UTC().Format(time.RFC3339), in.CreatedBy,
	)
	if err != nil {
		return 0, r.translate(ctx, "insert payment", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("payment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Payment added",
		"id", id,
		"case_id", in.CaseID,
		"amount", in.Amount.String(),
		"date", in.Date.String(),
		"created_by", in.CreatedBy)

	return id, nil
}

// EditPayment updates a payment's mutable fields and returns the number of
// rows affected. Moving a payment to another case re-validates the target.
func (r *Repository) EditPayment(ctx context.Context, id int64, in core.PaymentInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM cases WHERE id = ?`, in.CaseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.Validationf("no case with id %d", in.CaseID)
	}
	if err != nil {
		return 0, r.translate(ctx, "check case exists", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET date = ?, amount = ?, case_id = ?, notes = ? WHERE id = ?`,
		in.Date.String(), in.Amount.String(), in.CaseID, in.Notes, id,
	)
	if err != nil {
		return 0, r.translate(ctx, "update payment", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("payment update count: %w", err)
	}

	slog.InfoContext(ctx, "Payment edited", "id", id, "rows", n)
	return n, nil
}

// DeletePayment removes a payment; a missing id is a no-op.
func (r *Repository) DeletePayment(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id); err != nil {
		return r.translate(ctx, "delete payment", err)
	}
	slog.InfoContext(ctx, "Payment deleted", "id", id)
	return nil
}

// ListCases returns all cases, optionally restricted to an exact-match
// client and/or stage, ordered by id ascending.
func (r *Repository) ListCases(ctx context.Context, f core.Filter) ([]core.Case, error) {
	q := `SELECT id, client, description, agreed_value, stage, notes, created_at, created_by FROM cases`
	var conditions []string
	var params []any
	if f.Client != "" {
		conditions = append(conditions, "client = ?")
		params = append(params, f.Client)
	}
	if f.Stage != "" {
		conditions = append(conditions, "stage = ?")
		params = append(params, f.Stage)
	}
	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, r.translate(ctx, "list cases", err)
	}
	defer rows.Close()

	var cases []core.Case
	for rows.Next() {
		var (
			c       core.Case
			agreed  string
			created string
		)
		if err := rows.Scan(&c.ID, &c.Client, &c.Description, &agreed, &c.Stage, &c.Notes, &created, &c.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		if c.AgreedValue, err = decimal.NewFromString(agreed); err != nil {
			return nil, fmt.Errorf("case %d agreed value %q: %w", c.ID, agreed, err)
		}
		c.CreatedAt, _ = core.ParseDate(created)
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.translate(ctx, "list cases", err)
	}
	return cases, nil
}

// ListPayments returns payments joined with their case's client and
// description, newest first (date desc, id desc). caseID 0 lists all.
func (r *Repository) ListPayments(ctx context.Context, caseID int64) ([]core.PaymentDetail, error) {
	q := `SELECT payments.id, payments.date, payments.amount, payments.case_id,
	             payments.notes, payments.created_at, payments.created_by,
	             cases.client, cases.description
	      FROM payments JOIN cases ON payments.case_id = cases.id`
	var params []any
	if caseID != 0 {
		q += " WHERE case_id = ?"
		params = append(params, caseID)
	}
	q += " ORDER BY date DESC, payments.id DESC"

	rows, err := r.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, r.translate(ctx, "list payments", err)
	}
	defer rows.Close()

	var payments []core.PaymentDetail
	for rows.Next() {
		var (
			p       core.PaymentDetail
			date    string
			amount  string
			created string
		)
		if err := rows.Scan(&p.ID, &date, &amount, &p.CaseID, &p.Notes, &created, &p.CreatedBy, &p.Client, &p.CaseDescription); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Date, _ = core.ParseDate(date)
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("payment %d amount %q: %w", p.ID, amount, err)
		}
		p.CreatedAt = parseTimestamp(created)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.translate(ctx, "list payments", err)
	}
	return payments, nil
}

// PaymentTotals returns the sum of payment amounts grouped by case id.
// Summation happens in Go over exact decimals; amounts are stored as text
// and SQLite's SUM would coerce them to floats.
func (r *Repository) PaymentTotals(ctx context.Context) (map[int64]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT case_id, amount FROM payments`)
	if err != nil {
		return nil, r.translate(ctx, "payment totals", err)
	}
	defer rows.Close()

	totals := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			caseID int64
			amount string
		)
		if err := rows.Scan(&caseID, &amount); err != nil {
			return nil, fmt.Errorf("scan payment total: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("payment amount %q for case %d: %w", amount, caseID, err)
		}
		totals[caseID] = totals[caseID].Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, r.translate(ctx, "payment totals", err)
	}
	return totals, nil
}

// translate maps raw engine errors to the ledger error taxonomy. Constraint
// violations that slipped past pre-validation become IntegrityError and are
// logged here; everything else is wrapped with the failing operation.
func (r *Repository) translate(ctx context.Context, op string, err error) error {
	if core.IsValidation(err) {
		return err
	}
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		slog.ErrorContext(ctx, "Storage constraint violation", "operation", op, "error", err)
		return &core.IntegrityError{Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// parseTimestamp reads a stored creation timestamp. Rows written by this
// code carry RFC 3339; rows created by the schema default use SQLite's
// datetime format.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
