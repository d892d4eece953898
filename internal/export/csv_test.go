package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"abonos/internal/core"

	"github.com/shopspring/decimal"
)

func TestSummaryCSV(t *testing.T) {
	s := core.Summary{
		Rows: []core.CaseSummary{
			{
				ID:             1,
				Client:         "Ana",
				Description:    "Contract, phase 1", // embedded comma must be quoted
				AgreedValue:    decimal.NewFromInt(1000),
				TotalPaid:      decimal.NewFromInt(500),
				PendingBalance: decimal.NewFromInt(500),
				Stage:          "Open",
			},
			{
				ID:          2,
				Client:      "Luis",
				AgreedValue: decimal.RequireFromString("250.5"),
				TotalPaid:   decimal.RequireFromString("250.5"),
			},
		},
	}

	out, err := SummaryCSV(s)
	if err != nil {
		t.Fatalf("SummaryCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "id" || records[0][8] != "status" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][2] != "Contract, phase 1" {
		t.Fatalf("comma field mangled: %q", records[1][2])
	}
	if records[1][3] != "1000.00" || records[1][5] != "500.00" || records[1][8] != core.StatusPending {
		t.Fatalf("unexpected row: %v", records[1])
	}
	if records[2][4] != "250.50" || records[2][8] != core.StatusPaid {
		t.Fatalf("unexpected row: %v", records[2])
	}
}

func TestSummaryCSVEmpty(t *testing.T) {
	out, err := SummaryCSV(core.Summary{})
	if err != nil {
		t.Fatalf("SummaryCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the header, got %d lines", len(lines))
	}
}

func TestPaymentsCSV(t *testing.T) {
	payments := []core.PaymentDetail{
		{
			Payment: core.Payment{ID: 7, Date: core.NewDate(2025, 2, 1), Amount: decimal.NewFromInt(200), CaseID: 1},
			Client:  "Ana", CaseDescription: "Contract",
		},
	}
	out, err := PaymentsCSV(payments)
	if err != nil {
		t.Fatalf("PaymentsCSV: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	if records[1][1] != "2025-02-01" || records[1][2] != "200.00" || records[1][4] != "Ana" {
		t.Fatalf("unexpected row: %v", records[1])
	}
}
