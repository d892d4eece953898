package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Date is a calendar date without a time component, stored in UTC.
	Date struct {
		time.Time
	}

	// Case is a tracked client matter with an agreed total value to collect.
	Case struct {
		ID          int64
		Client      string
		Description string
		AgreedValue decimal.Decimal
		Stage       string
		Notes       string
		CreatedAt   Date
		CreatedBy   string
	}

	// CaseInput carries the mutable fields of a case for add and edit
	// operations. ID and CreatedAt are assigned by the store.
	CaseInput struct {
		Client      string
		Description string
		AgreedValue decimal.Decimal
		Stage       string
		Notes       string
		CreatedBy   string
	}

	// Payment is one recorded installment applied against a case.
	Payment struct {
		ID        int64
		Date      Date
		Amount    decimal.Decimal
		CaseID    int64
		Notes     string
		CreatedAt time.Time
		CreatedBy string
	}

	// PaymentInput carries the mutable fields of a payment for add and edit
	// operations.
	PaymentInput struct {
		Date      Date
		Amount    decimal.Decimal
		CaseID    int64
		Notes     string
		CreatedBy string
	}

	// PaymentDetail is a payment joined with its case's client and
	// description for display and export.
	PaymentDetail struct {
		Payment
		Client          string
		CaseDescription string
	}

	// Filter restricts case listings to an exact-match client and/or stage.
	// Empty fields match everything.
	Filter struct {
		Client string
		Stage  string
	}
)

var (
	ErrEmptyClient    = &ValidationError{Msg: "client name is required"}
	ErrInvalidAmount  = &ValidationError{Msg: "amount must be a positive number"}
	ErrNegativeAgreed = &ValidationError{Msg: "agreed value cannot be negative"}
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses an ISO date (2006-01-02), also accepting a full RFC 3339
// timestamp whose time part is discarded. Unparsable input falls back to the
// current date; ok reports whether the input itself was parsed. A payment
// with a garbled date is recorded dated today, not rejected.
func ParseDate(s string) (d Date, ok bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), true
	}
	return Today(), false
}

// String formats the date in ISO form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (in CaseInput) Validate() error {
	if strings.TrimSpace(in.Client) == "" {
		return ErrEmptyClient
	}
	if in.AgreedValue.IsNegative() {
		return ErrNegativeAgreed
	}
	return nil
}

func (in PaymentInput) Validate() error {
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if in.CaseID <= 0 {
		return Validationf("invalid case id %d", in.CaseID)
	}
	return nil
}
