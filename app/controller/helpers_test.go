package controller_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	httpdto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/middleware"
	"github.com/vibast-solutions/ms-go-shop/app/validation"

	"github.com/labstack/echo/v4"
)

const (
	testUserID    = "5b0c8d1e-2f4a-4c3b-9d7e-6a1f2b3c4d5e"
	otherUserID   = "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
	testUserEmail = "user@example.com"
)

type requestOption func(req *httpRequest)

type httpRequest struct {
	headers map[string]string
	userID  string
	email   string
	params  map[string]string
}

func withHeader(key, value string) requestOption {
	return func(r *httpRequest) { r.headers[key] = value }
}

// asUser mimics a request that passed RequireAuth.
func asUser(userID, email string) requestOption {
	return func(r *httpRequest) {
		r.userID = userID
		r.email = email
	}
}

func withParam(name, value string) requestOption {
	return func(r *httpRequest) { r.params[name] = value }
}

func newContext(method, target, body string, opts ...requestOption) (echo.Context, *httptest.ResponseRecorder) {
	r := &httpRequest{headers: map[string]string{}, params: map[string]string{}}
	for _, opt := range opts {
		opt(r)
	}

	e := echo.New()
	e.Validator = validation.New()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if len(r.params) > 0 {
		names := make([]string, 0, len(r.params))
		values := make([]string, 0, len(r.params))
		for name, value := range r.params {
			names = append(names, name)
			values = append(values, value)
		}
		ctx.SetParamNames(names...)
		ctx.SetParamValues(values...)
	}
	if r.userID != "" {
		ctx.Set(middleware.UserIDKey, r.userID)
	}
	if r.email != "" {
		ctx.Set(middleware.UserEmailKey, r.email)
	}

	return ctx, rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[httpdto.ErrorResponse](t, rec).Error
}
