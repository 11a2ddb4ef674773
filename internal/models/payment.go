package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrValidation = errors.New("invalid payment request")

// Amount accepts both JSON numbers and numeric strings, callers send either.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(strings.Trim(string(data), `"`))
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("invalid amount %q: not a finite number", raw)
	}

	*a = Amount(value)
	return nil
}

type PaymentRequest struct {
	Amount      Amount `json:"amount"`
	PhoneNumber string `json:"phoneNumber"`
	Reference   string `json:"reference"`
}

// Validate reports missing fields the same way for every one of them, a zero
// or negative amount counts as missing.
func (p *PaymentRequest) Validate() error {
	var missing []string

	if p.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(p.PhoneNumber) == "" {
		missing = append(missing, "phoneNumber")
	}
	if strings.TrimSpace(p.Reference) == "" {
		missing = append(missing, "reference")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	return nil
}

type RegisterURLPayload struct {
	ShortCode       string `json:"ShortCode"`
	ResponseType    string `json:"ResponseType"`
	ConfirmationURL string `json:"ConfirmationURL"`
	ValidationURL   string `json:"ValidationURL"`
}

type SimulateC2BPayload struct {
	ShortCode     string  `json:"ShortCode"`
	CommandID     string  `json:"CommandID"`
	Amount        float64 `json:"Amount"`
	Msisdn        string  `json:"Msisdn"`
	BillRefNumber string  `json:"BillRefNumber"`
}

// UpstreamResponse is a successful Daraja reply, kept raw so it can be
// forwarded to the caller byte for byte.
type UpstreamResponse struct {
	StatusCode int
	Body       []byte
}
