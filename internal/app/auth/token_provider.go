package auth

import (
	"context"
	"errors"
	"fmt"
	"francoggm/mpesa-c2b-relay/internal/models"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

var ErrUpstreamAuth = errors.New("upstream auth failed")

const tokenPath = "/oauth/v1/generate?grant_type=client_credentials"

type TokenProvider struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
	now     func() time.Time
}

func NewTokenProvider(baseURL string, timeout time.Duration) *TokenProvider {
	return &TokenProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:    10,
			MaxConnWaitTimeout: timeout,
		},
		now: time.Now,
	}
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   expiresIn `json:"expires_in"`
}

// expiresIn holds seconds; Daraja sends them as a string.
type expiresIn int64

func (e *expiresIn) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*e = 0
		return nil
	}

	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expires_in %q: %w", raw, err)
	}

	*e = expiresIn(seconds)
	return nil
}

// AcquireAccessToken runs one client-credentials round trip. There is no
// caching or retry here, see CachedSource for that.
func (p *TokenProvider) AcquireAccessToken(ctx context.Context, creds models.Credentials) (*models.AccessToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamAuth, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(p.baseURL + tokenPath)
	req.Header.SetMethod(http.MethodGet)
	req.Header.Set("Authorization", "Basic "+creds.BasicAuth())

	issuedAt := p.now()
	if err := p.client.DoTimeout(req, resp, requestTimeout(ctx, p.timeout)); err != nil {
		return nil, fmt.Errorf("%w: token request failed: %w", ErrUpstreamAuth, err)
	}

	statusCode := resp.StatusCode()
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned status %d: %s", ErrUpstreamAuth, statusCode, truncate(resp.Body(), 256))
	}

	var body tokenResponse
	if err := sonic.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %w", ErrUpstreamAuth, err)
	}

	if body.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", ErrUpstreamAuth)
	}

	return &models.AccessToken{
		Value:     body.AccessToken,
		ExpiresIn: time.Duration(body.ExpiresIn) * time.Second,
		IssuedAt:  issuedAt,
	}, nil
}

// requestTimeout shortens the configured timeout to the context deadline,
// fasthttp has no context support of its own.
func requestTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout
	}

	if remaining := time.Until(deadline); remaining < timeout {
		if remaining <= 0 {
			return time.Millisecond
		}
		return remaining
	}

	return timeout
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
