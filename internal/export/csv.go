// Package export renders reconciliation summaries to delimited text for
// download and offline analysis.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"abonos/internal/core"
)

// summaryHeader matches the original report's column order.
var summaryHeader = []string{
	"id", "client", "description", "agreed_value",
	"total_paid", "pending_balance", "stage", "notes", "status",
}

// SummaryCSV renders the summary rows as UTF-8 CSV, header first, amounts
// with two decimal places. An empty summary yields just the header.
func SummaryCSV(s core.Summary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(summaryHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range s.Rows {
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.Client,
			row.Description,
			core.FormatAmount(row.AgreedValue),
			core.FormatAmount(row.TotalPaid),
			core.FormatAmount(row.PendingBalance),
			row.Stage,
			row.Notes,
			row.Status(),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PaymentsCSV renders a payment listing as CSV, newest first as given.
func PaymentsCSV(payments []core.PaymentDetail) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "date", "amount", "case_id", "client", "description", "notes"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, p := range payments {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Date.String(),
			core.FormatAmount(p.Amount),
			strconv.FormatInt(p.CaseID, 10),
			p.Client,
			p.CaseDescription,
			p.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", p.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
