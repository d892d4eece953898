// Package services orchestrates ledger operations for one tenant: storage
// writes, reconciliation reads and best-effort event publishing.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"abonos/internal/amqp"
	"abonos/internal/core"
	"abonos/internal/storage"
)

// Ledger binds one tenant's repository to the shared event stream. The actor
// is the resolved identity of the tenant's user; it is stamped as CreatedBy
// on every record the service creates.
type Ledger struct {
	repo   *storage.Repository
	events *amqp.Client
	actor  string
}

func NewLedger(repo *storage.Repository, events *amqp.Client, actor string) *Ledger {
	return &Ledger{
		repo:   repo,
		events: events,
		actor:  actor,
	}
}

// AddCase stores a new case and announces it on the event stream.
func (s *Ledger) AddCase(ctx context.Context, in core.CaseInput) (int64, error) {
	in.CreatedBy = s.actor
	id, err := s.repo.AddCase(ctx, in)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.EntityCase, amqp.ActionCreated, id)
	return id, nil
}

func (s *Ledger) EditCase(ctx context.Context, id int64, in core.CaseInput) (int64, error) {
	n, err := s.repo.EditCase(ctx, id, in)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, amqp.EntityCase, amqp.ActionUpdated, id)
	}
	return n, nil
}

func (s *Ledger) DeleteCase(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCase(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityCase, amqp.ActionDeleted, id)
	return nil
}

// AddPayment stores a new payment and announces it on the event stream.
func (s *Ledger) AddPayment(ctx context.Context, in core.PaymentInput) (int64, error) {
	in.CreatedBy = s.actor
	id, err := s.repo.AddPayment(ctx, in)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.EntityPayment, amqp.ActionCreated, id)
	return id, nil
}

func (s *Ledger) EditPayment(ctx context.Context, id int64, in core.PaymentInput) (int64, error) {
	n, err := s.repo.EditPayment(ctx, id, in)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, amqp.EntityPayment, amqp.ActionUpdated, id)
	}
	return n, nil
}

func (s *Ledger) DeletePayment(ctx context.Context, id int64) error {
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityPayment, amqp.ActionDeleted, id)
	return nil
}

func (s *Ledger) ListCases(ctx context.Context, f core.Filter) ([]core.Case, error) {
	return s.repo.ListCases(ctx, f)
}

func (s *Ledger) ListPayments(ctx context.Context, caseID int64) ([]core.PaymentDetail, error) {
	return s.repo.ListPayments(ctx, caseID)
}

// Summarize recomputes the reconciliation report from the store's current
// state. Nothing is cached: every call sees the latest committed data.
func (s *Ledger) Summarize(ctx context.Context, f core.Filter) (core.Summary, error) {
	cases, err := s.repo.ListCases(ctx, f)
	if err != nil {
		return core.Summary{}, fmt.Errorf("fetch cases: %w", err)
	}
	totals, err := s.repo.PaymentTotals(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("fetch payment totals: %w", err)
	}
	return core.Reconcile(cases, totals), nil
}

// Close releases the tenant's store. The event stream is shared across
// tenants and owned by whoever created it.
func (s *Ledger) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// publish emits a mutation event without affecting the caller: the mutation
// is already committed, a broker problem only costs the audit trail entry.
func (s *Ledger) publish(ctx context.Context, entity, action string, id int64) {
	if s.events == nil {
		return
	}
	ev := amqp.NewLedgerEvent(entity, action, id, s.actor)
	if err := s.events.PublishLedgerEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"entity", entity,
			"action", action,
			"id", id,
			"error", err)
	}
}
