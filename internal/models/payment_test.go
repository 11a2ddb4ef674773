package models

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func TestPaymentRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PaymentRequest
		missing string
	}{
		{name: "complete", req: PaymentRequest{Amount: 10, PhoneNumber: "254708374149", Reference: "INV-1"}},
		{name: "no amount", req: PaymentRequest{PhoneNumber: "254708374149", Reference: "INV-1"}, missing: "amount"},
		{name: "negative amount", req: PaymentRequest{Amount: -5, PhoneNumber: "254708374149", Reference: "INV-1"}, missing: "amount"},
		{name: "blank phone", req: PaymentRequest{Amount: 10, PhoneNumber: "  ", Reference: "INV-1"}, missing: "phoneNumber"},
		{name: "everything", req: PaymentRequest{}, missing: "amount, phoneNumber, reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.missing == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			require.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestAmount_Unmarshal(t *testing.T) {
	var req PaymentRequest

	require.NoError(t, sonic.Unmarshal([]byte(`{"amount":"250.5","phoneNumber":"254708374149","reference":"A"}`), &req))
	require.Equal(t, Amount(250.5), req.Amount)

	require.NoError(t, sonic.Unmarshal([]byte(`{"amount":75}`), &req))
	require.Equal(t, Amount(75), req.Amount)

	for _, raw := range []string{`"ten"`, `"NaN"`, `"Inf"`, `"-Inf"`, `"Infinity"`} {
		t.Run(raw, func(t *testing.T) {
			var req PaymentRequest
			require.Error(t, sonic.Unmarshal([]byte(`{"amount":`+raw+`}`), &req))
		})
	}
}

func TestAccessToken_ValidAt(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	token := &AccessToken{Value: "abc", ExpiresIn: time.Hour, IssuedAt: issued}

	require.Equal(t, issued.Add(time.Hour), token.ExpiresAt())
	require.True(t, token.ValidAt(issued.Add(30*time.Minute), time.Minute))
	require.False(t, token.ValidAt(issued.Add(59*time.Minute+30*time.Second), time.Minute))

	var missing *AccessToken
	require.False(t, missing.ValidAt(issued, 0))
}

func TestCredentials_BasicAuth(t *testing.T) {
	creds := Credentials{Key: "key", Secret: "secret"}
	require.Equal(t, "a2V5OnNlY3JldA==", creds.BasicAuth())
}
