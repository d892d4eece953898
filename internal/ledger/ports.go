// Package ledger declares the ports through which collaborators (the HTTP
// API, the export command, tests) drive a tenant's ledger.
package ledger

import (
	"context"

	"abonos/internal/core"
)

type (
	// Service is the full per-tenant operation surface: store mutations,
	// listings and the reconciliation summary.
	Service interface {
		AddCase(ctx context.Context, in core.CaseInput) (int64, error)
		EditCase(ctx context.Context, id int64, in core.CaseInput) (int64, error)
		DeleteCase(ctx context.Context, id int64) error

		AddPayment(ctx context.Context, in core.PaymentInput) (int64, error)
		EditPayment(ctx context.Context, id int64, in core.PaymentInput) (int64, error)
		DeletePayment(ctx context.Context, id int64) error

		ListCases(ctx context.Context, f core.Filter) ([]core.Case, error)
		ListPayments(ctx context.Context, caseID int64) ([]core.PaymentDetail, error)

		Summarize(ctx context.Context, f core.Filter) (core.Summary, error)
	}

	// Provider hands out the Service bound to one tenant's isolated store.
	// The identity string is already resolved by the caller; no
	// authentication happens behind this port.
	Provider interface {
		Service(identity string) (Service, error)
	}
)
