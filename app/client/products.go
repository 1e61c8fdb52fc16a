package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "failed"
	}
}

// CascadeResult describes how the product service answered a cascade delete.
// StatusCode is zero when no response arrived.
type CascadeResult struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}

type ProductsClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProductsClient(baseURL string, timeout time.Duration) *ProductsClient {
	return &ProductsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// DeleteUserProducts asks the product service to drop every product created
// by userID. The caller's Authorization header is forwarded unchanged.
func (c *ProductsClient) DeleteUserProducts(ctx context.Context, userID, authorization string) CascadeResult {
	endpoint := c.baseURL + "/api/products/user?" + url.Values{"userid": {userID}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return CascadeResult{Outcome: OutcomeFailed, Err: errors.WithStack(err)}
	}
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return CascadeResult{Outcome: OutcomeTimedOut, Err: errors.Wrap(err, "product service timed out")}
		}
		return CascadeResult{Outcome: OutcomeFailed, Err: errors.Wrap(err, "product service unreachable")}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"status":  resp.StatusCode,
		}).Warn("Product service rejected cascade delete")
		return CascadeResult{
			Outcome:    OutcomeFailed,
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("product service returned status %d", resp.StatusCode),
		}
	}

	return CascadeResult{Outcome: OutcomeSucceeded, StatusCode: resp.StatusCode}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
