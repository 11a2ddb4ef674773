package models

import (
	"encoding/base64"
	"time"
)

type Credentials struct {
	Key    string
	Secret string
}

func (c Credentials) BasicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(c.Key + ":" + c.Secret))
}

type AccessToken struct {
	Value     string        `json:"value"`
	ExpiresIn time.Duration `json:"expiresIn"`
	IssuedAt  time.Time     `json:"issuedAt"`
}

func (t *AccessToken) ExpiresAt() time.Time {
	return t.IssuedAt.Add(t.ExpiresIn)
}

// ValidAt reports whether the token can still be used at now, leaving skew
// for the request that carries it.
func (t *AccessToken) ValidAt(now time.Time, skew time.Duration) bool {
	if t == nil || t.Value == "" {
		return false
	}

	return now.Add(skew).Before(t.ExpiresAt())
}
