// Package payment provides the HTTP client for the payment service that holds,
// captures, and voids buyer funds. It implements ports.PaymentGateway.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"marketorder/internal/core/domain/model/kernel"
)

// defaultTimeout bounds every gateway attempt. A timed-out attempt is retried
// once; a second timeout surfaces as an error and the caller treats the
// transition as failed, never as pending.
const defaultTimeout = 5 * time.Second

var (
	// ErrHoldNotConfirmed is returned when the payment service reports the hold
	// as missing or not confirmed.
	ErrHoldNotConfirmed = errors.New("payment hold is not confirmed")

	// ErrPaymentServiceUnavailable is returned on 5xx responses.
	ErrPaymentServiceUnavailable = errors.New("payment service is unavailable")
)

// Client calls the payment service over HTTP.
type Client struct {
	client  *http.Client
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// NewClient creates a payment service client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
	}

	for _, opt := range opts {
		opt(client)
	}
	return client
}

type createHoldRequest struct {
	OrderID  string `json:"orderId"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type createHoldResponse struct {
	HoldID string `json:"holdId"`
}

type holdStatusResponse struct {
	HoldID string `json:"holdId"`
	Status string `json:"status"`
}

// CreateHold places an authorization hold for the order amount.
// POST /api/holds; returns the service's hold identifier.
func (c *Client) CreateHold(ctx context.Context, orderID kernel.UUID, amount kernel.Money) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, "api", "holds")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(createHoldRequest{
		OrderID:  orderID.String(),
		Amount:   amount.Amount().String(),
		Currency: amount.Currency(),
	})
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if reqErr != nil {
			return nil, reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		var holdResp createHoldResponse
		if err = json.NewDecoder(resp.Body).Decode(&holdResp); err != nil {
			return "", err
		}
		if holdResp.HoldID == "" {
			return "", fmt.Errorf("payment service returned an empty hold id for order %s", orderID)
		}
		return holdResp.HoldID, nil
	default:
		return "", c.statusError(resp.StatusCode, "create hold", orderID)
	}
}

// ConfirmHold verifies that the hold is confirmed for the order.
// GET /api/holds/{holdID}; any status other than "confirmed", or a hold bound
// to another order, fails the check.
func (c *Client) ConfirmHold(ctx context.Context, orderID kernel.UUID, holdID string) error {
	endpoint, err := url.JoinPath(c.baseURL, "api", "holds", holdID)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var statusResp holdStatusResponse
		if err = json.NewDecoder(resp.Body).Decode(&statusResp); err != nil {
			return err
		}
		if statusResp.Status != "confirmed" {
			return fmt.Errorf("hold %s for order %s has status %q: %w",
				holdID, orderID, statusResp.Status, ErrHoldNotConfirmed)
		}
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("hold %s for order %s: %w", holdID, orderID, ErrHoldNotConfirmed)
	default:
		return c.statusError(resp.StatusCode, "confirm hold", orderID)
	}
}

// CaptureHold captures the order's hold, releasing funds to the seller.
// POST /api/orders/{orderID}/capture.
func (c *Client) CaptureHold(ctx context.Context, orderID kernel.UUID) error {
	return c.postAction(ctx, orderID, "capture")
}

// VoidHold voids the order's hold, returning funds to the buyer.
// POST /api/orders/{orderID}/void.
func (c *Client) VoidHold(ctx context.Context, orderID kernel.UUID) error {
	return c.postAction(ctx, orderID, "void")
}

func (c *Client) postAction(ctx context.Context, orderID kernel.UUID, action string) error {
	endpoint, err := url.JoinPath(c.baseURL, "api", "orders", orderID.String(), action)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	})
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	default:
		return c.statusError(resp.StatusCode, action+" hold", orderID)
	}
}

// do sends the request built by build, retrying exactly once when the attempt
// times out and the caller's context is still alive. Definite answers,
// including HTTP error statuses, are never retried.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	resp, err := c.attempt(build)
	if err != nil && isTimeout(err) && ctx.Err() == nil {
		resp, err = c.attempt(build)
	}
	return resp, err
}

func (c *Client) attempt(build func() (*http.Request, error)) (*http.Response, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// isTimeout reports whether the call ran out of time rather than receiving a
// definite answer.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) statusError(statusCode int, operation string, orderID kernel.UUID) error {
	if statusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s for order %s: status %d: %w",
			operation, orderID, statusCode, ErrPaymentServiceUnavailable)
	}
	return fmt.Errorf("%s for order %s: unexpected status %d", operation, orderID, statusCode)
}
