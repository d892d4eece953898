// Request payload parsing and validation shared by the case and payment
// handlers. Amounts travel as strings so clients never round them through
// floats; dates travel in ISO form.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"abonos/internal/core"
)

const maxBodyBytes = 1 << 20 // 1MB

type casePayload struct {
	ID          int64  `json:"id,omitempty"`
	Client      string `json:"client"`
	Description string `json:"description"`
	AgreedValue string `json:"agreed_value"`
	Stage       string `json:"stage"`
	Notes       string `json:"notes"`
}

type paymentPayload struct {
	ID     int64  `json:"id,omitempty"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	CaseID int64  `json:"case_id"`
	Notes  string `json:"notes"`
}

type idPayload struct {
	ID int64 `json:"id"`
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// caseInputFromPayload converts the wire form into a validated-later domain
// input. An empty agreed value defaults to zero, matching the add form's
// optional field.
func caseInputFromPayload(p casePayload) (core.CaseInput, error) {
	in := core.CaseInput{
		Client:      p.Client,
		Description: p.Description,
		Stage:       p.Stage,
		Notes:       p.Notes,
	}
	if strings.TrimSpace(p.AgreedValue) != "" {
		agreed, err := core.ParseAmount(p.AgreedValue)
		if err != nil {
			return core.CaseInput{}, err
		}
		in.AgreedValue = agreed
	}
	return in, nil
}

// paymentInputFromPayload converts the wire form into a domain input. An
// unparsable date falls back to today per the documented policy.
func paymentInputFromPayload(p paymentPayload) (core.PaymentInput, error) {
	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		return core.PaymentInput{}, err
	}
	date, _ := core.ParseDate(p.Date)
	return core.PaymentInput{
		Date:   date,
		Amount: amount,
		CaseID: p.CaseID,
		Notes:  p.Notes,
	}, nil
}

// parseID reads a record id from the body ({"id": N}) or, as a fallback,
// from the ?id query parameter.
func parseID(r *http.Request) (int64, error) {
	var p idPayload
	if err := decodeBody(r, &p); err == nil && p.ID > 0 {
		return p.ID, nil
	}
	if v := strings.TrimSpace(r.URL.Query().Get("id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, core.Validationf("invalid id %q", v)
		}
		return id, nil
	}
	return 0, core.Validationf("missing record id")
}

// parseFilter reads the optional exact-match filters from the query string.
func parseFilter(query url.Values) core.Filter {
	return core.Filter{
		Client: strings.TrimSpace(query.Get("client")),
		Stage:  strings.TrimSpace(query.Get("stage")),
	}
}

// parseCaseID reads the optional ?case_id restriction; 0 means all cases.
func parseCaseID(query url.Values) (int64, error) {
	v := strings.TrimSpace(query.Get("case_id"))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Validationf("invalid case_id %q", v)
	}
	return id, nil
}
