package newsletter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bagrental/model"
	ns "bagrental/service/newsletter"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSvc struct{ subs map[string]bool }

func (s *stubSvc) Subscribe(_ context.Context, email string) (*model.NewsletterSubscription, error) {
	if !strings.Contains(email, "@") {
		return nil, ns.ErrInvalidEmail
	}
	s.subs[email] = true
	return &model.NewsletterSubscription{Email: email}, nil
}

func (s *stubSvc) Unsubscribe(_ context.Context, email string) (bool, error) {
	ok := s.subs[email]
	delete(s.subs, email)
	return ok, nil
}

func do(t *testing.T, fn echo.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/api/newsletter", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, fn(e.NewContext(req, rec)))
	return rec
}

func TestSubscribeUnsubscribe(t *testing.T) {
	h := &Controller{Svc: &stubSvc{subs: map[string]bool{}}, Log: zap.NewNop()}

	require.Equal(t, http.StatusOK, do(t, h.Subscribe, http.MethodPost, `{"email":"ana@example.com"}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, h.Subscribe, http.MethodPost, `{"email":"nope"}`).Code)
	require.Equal(t, http.StatusNoContent, do(t, h.Unsubscribe, http.MethodDelete, `{"email":"ana@example.com"}`).Code)
	require.Equal(t, http.StatusNotFound, do(t, h.Unsubscribe, http.MethodDelete, `{"email":"ana@example.com"}`).Code)
}
