// Package worker consumes ledger events and maintains an append-only
// audit trail on disk.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"abonos/internal/amqp"
)

// auditRecord is the line format of the audit trail. One JSON object
// per line, one file per day.
type auditRecord struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ID         int64     `json:"id"`
	Tenant     string    `json:"tenant"`
	OccurredAt time.Time `json:"occurred_at"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AuditWorker writes ledger events to daily audit files and keeps
// per-action counters for periodic reporting.
type AuditWorker struct {
	dir string

	mu      sync.Mutex
	file    *os.File
	day     string
	counts  map[string]int64
	written int64
}

func NewAuditWorker(dir string) (*AuditWorker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	return &AuditWorker{
		dir:    dir,
		counts: make(map[string]int64),
	}, nil
}

// HandleEvent records a single ledger event. Returning an error makes
// the consumer requeue the message, so only write failures propagate.
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.Entity == "" || msg.Action == "" {
		slog.WarnContext(ctx, "Dropping malformed ledger event",
			"entity", msg.Entity, "action", msg.Action, "id", msg.ID)
		return nil
	}

	rec := auditRecord{
		Entity:     msg.Entity,
		Action:     msg.Action,
		ID:         msg.ID,
		Tenant:     msg.Tenant,
		OccurredAt: msg.Timestamp,
		RecordedAt: time.Now().UTC(),
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.rotateLocked(rec.RecordedAt); err != nil {
		return err
	}
	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}

	w.counts[msg.Entity+"."+msg.Action]++
	w.written++

	slog.InfoContext(ctx, "Recorded ledger event",
		"entity", msg.Entity,
		"action", msg.Action,
		"id", msg.ID,
		"tenant", msg.Tenant)

	return nil
}

// rotateLocked opens the audit file for the current day, closing the
// previous one when the day rolls over. Caller holds w.mu.
func (w *AuditWorker) rotateLocked(now time.Time) error {
	day := now.Format("2006-01-02")
	if w.file != nil && w.day == day {
		return nil
	}
	if w.file != nil {
		_ = w.file.Close()
	}

	path := filepath.Join(w.dir, fmt.Sprintf("audit-%s.log", day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file %s: %w", path, err)
	}

	w.file = f
	w.day = day
	return nil
}

// Stats returns a snapshot of the per-action counters.
func (w *AuditWorker) Stats() (total int64, byAction map[string]int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	byAction = make(map[string]int64, len(w.counts))
	for k, v := range w.counts {
		byAction[k] = v
	}
	return w.written, byAction
}

// ReportPeriodically logs counter snapshots until the context ends.
func (w *AuditWorker) ReportPeriodically(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			total, byAction := w.Stats()
			slog.InfoContext(ctx, "Audit trail status",
				"total_recorded", total,
				"by_action", byAction)
		}
	}
}

func (w *AuditWorker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
