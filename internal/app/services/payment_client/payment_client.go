package paymentclient

import (
	"context"
	"errors"
	"fmt"
	"francoggm/mpesa-c2b-relay/internal/models"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

var ErrUpstreamRequest = errors.New("upstream request failed")

const (
	registerURLPath = "/mpesa/c2b/v1/registerurl"
	simulatePath    = "/mpesa/c2b/v1/simulate"
)

type PaymentClient struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewPaymentClient(url string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		url:     strings.TrimRight(url, "/"),
		timeout: timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:    50,
			MaxConnWaitTimeout: timeout,
		},
	}
}

func (c *PaymentClient) RegisterURL(ctx context.Context, token string, payload *models.RegisterURLPayload) (*models.UpstreamResponse, error) {
	return c.post(ctx, registerURLPath, token, payload)
}

func (c *PaymentClient) SimulateC2B(ctx context.Context, token string, payload *models.SimulateC2BPayload) (*models.UpstreamResponse, error) {
	return c.post(ctx, simulatePath, token, payload)
}

func (c *PaymentClient) post(ctx context.Context, path, token string, payload any) (*models.UpstreamResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamRequest, err)
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(c.url + path)
	req.Header.SetMethod(http.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.SetBody(body)

	if err := c.client.DoTimeout(req, resp, requestTimeout(ctx, c.timeout)); err != nil {
		return nil, fmt.Errorf("%w: POST %s: %w", ErrUpstreamRequest, path, err)
	}

	statusCode := resp.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: POST %s returned status %d: %s", ErrUpstreamRequest, path, statusCode, truncate(resp.Body(), 512))
	}

	// resp is released on return, the body has to be copied out
	raw := make([]byte, len(resp.Body()))
	copy(raw, resp.Body())

	return &models.UpstreamResponse{
		StatusCode: statusCode,
		Body:       raw,
	}, nil
}

func requestTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return time.Millisecond
	}

	return min(remaining, timeout)
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
