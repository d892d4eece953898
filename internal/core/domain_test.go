package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCaseInputValidate(t *testing.T) {
	good := CaseInput{Client: "Ana", Description: "Contract", AgreedValue: decimal.NewFromInt(1000)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Zero agreed value is allowed
	if err := (CaseInput{Client: "Ana"}).Validate(); err != nil {
		t.Fatalf("expected ok for zero agreed value, got %v", err)
	}

	bads := []CaseInput{
		{Client: "", AgreedValue: decimal.NewFromInt(1)},
		{Client: "   ", AgreedValue: decimal.NewFromInt(1)},
		{Client: "Ana", AgreedValue: decimal.NewFromInt(-1)},
	}
	for i, in := range bads {
		err := in.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !IsValidation(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestPaymentInputValidate(t *testing.T) {
	good := PaymentInput{Date: NewDate(2025, 3, 1), Amount: decimal.NewFromInt(300), CaseID: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []PaymentInput{
		{Date: NewDate(2025, 3, 1), Amount: decimal.Zero, CaseID: 1},
		{Date: NewDate(2025, 3, 1), Amount: decimal.NewFromInt(-5), CaseID: 1},
		{Date: NewDate(2025, 3, 1), Amount: decimal.NewFromInt(5), CaseID: 0},
	}
	for i, in := range bads {
		err := in.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !IsValidation(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-03-15")
	if !ok || d.String() != "2025-03-15" {
		t.Fatalf("iso date: got %s ok=%v", d, ok)
	}

	d, ok = ParseDate("2025-03-15T10:30:00Z")
	if !ok || d.String() != "2025-03-15" {
		t.Fatalf("rfc3339 date: got %s ok=%v", d, ok)
	}

	// Unparsable input falls back to today
	d, ok = ParseDate("not-a-date")
	if ok {
		t.Fatalf("expected ok=false for garbage input")
	}
	if d.String() != Today().String() {
		t.Fatalf("expected fallback to today, got %s", d)
	}
}

func TestErrorKinds(t *testing.T) {
	if !IsValidation(ErrEmptyClient) {
		t.Fatal("ErrEmptyClient should be a validation error")
	}
	ie := &IntegrityError{Err: errors.New("UNIQUE constraint failed")}
	if !IsIntegrity(ie) {
		t.Fatalf("expected integrity kind for %v", ie)
	}
	if IsValidation(ie) || IsConnectivity(ie) {
		t.Fatalf("unexpected kind matching for %v", ie)
	}
	ce := &ConnectivityError{Err: errors.New("unable to open database file")}
	if !IsConnectivity(ce) {
		t.Fatalf("expected connectivity kind for %v", ce)
	}
}
