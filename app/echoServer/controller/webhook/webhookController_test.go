package webhook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	wh "bagrental/service/webhook"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSvc struct {
	PaymentFn  func(token string, raw []byte) error
	IdentityFn func(token string, raw []byte) error
}

func (s *stubSvc) HandlePayment(_ context.Context, token string, raw []byte) error {
	return s.PaymentFn(token, raw)
}

func (s *stubSvc) HandleIdentity(_ context.Context, token string, raw []byte) error {
	return s.IdentityFn(token, raw)
}

func call(t *testing.T, fn echo.HandlerFunc, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, fn(e.NewContext(req, rec)))
	return rec
}

func TestPayment(t *testing.T) {
	var seen string
	h := &Controller{
		Svc: &stubSvc{PaymentFn: func(token string, raw []byte) error {
			if token != "tok" {
				return wh.ErrUnauthorized
			}
			if !strings.HasPrefix(string(raw), "{") {
				return fmt.Errorf("%w: not json", wh.ErrBadPayload)
			}
			seen = string(raw)
			return nil
		}},
		Log: zap.NewNop(),
	}

	rec := call(t, h.Payment, "tok", `{"id":"inv_1","status":"PAID"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `{"id":"inv_1","status":"PAID"}`, seen)

	rec = call(t, h.Payment, "", `{}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, h.Payment, "tok", `garbage`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdentity_InternalError(t *testing.T) {
	h := &Controller{
		Svc: &stubSvc{IdentityFn: func(string, []byte) error { return fmt.Errorf("db down") }},
		Log: zap.NewNop(),
	}
	rec := call(t, h.Identity, "tok", `{"user_id":"x","status":"verified"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal error")
}
