package waitlist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bagrental/app/echoServer/validation"
	"bagrental/model"
	ws "bagrental/service/waitlist"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type codeErr ws.ErrCode

func (e codeErr) Error() string    { return string(e) }
func (e codeErr) Code() ws.ErrCode { return ws.ErrCode(e) }

// stubSvc keeps joined emails per bag name.
type stubSvc struct {
	ws.Service
	joined map[string]bool
}

func (s *stubSvc) Join(_ context.Context, in ws.JoinInput) (*ws.Joined, error) {
	if in.BagName != "Kelly 28" {
		return nil, codeErr(ws.ErrBagNotFound)
	}
	if s.joined[in.Email] {
		return nil, codeErr(ws.ErrAlreadyJoined)
	}
	s.joined[in.Email] = true
	return &ws.Joined{Entry: model.WaitlistEntry{Email: in.Email}, Position: len(s.joined)}, nil
}

func post(t *testing.T, h *Controller, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/waitlist", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Join(e.NewContext(req, rec)))
	return rec
}

func TestJoin_StatusCodes(t *testing.T) {
	h := &Controller{Svc: &stubSvc{joined: map[string]bool{}}, V: validation.NewValidate(), Log: zap.NewNop()}

	rec := post(t, h, `{"bag_name":"Kelly 28","user_name":"Ana","user_email":"ana@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"position":1`)

	rec = post(t, h, `{"bag_name":"Kelly 28","user_name":"Ana","user_email":"ana@example.com"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = post(t, h, `{"bag_name":"Birkin","user_email":"ana@example.com"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(t, h, `{"bag_name":"Kelly 28","user_email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type notifySvc struct {
	ws.Service
	err error
}

func (s *notifySvc) Notify(context.Context, int64) (*model.WaitlistEntry, error) {
	return &model.WaitlistEntry{ID: 3, BagID: uuid.New(), Notified: true}, s.err
}

func TestNotify(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{codeErr(ws.ErrSendFailed), http.StatusBadGateway},
		{codeErr(ws.ErrEntryNotFound), http.StatusNotFound},
	} {
		h := &Controller{Svc: &notifySvc{err: tc.err}, Log: zap.NewNop()}
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
		c.SetParamNames("id")
		c.SetParamValues("3")
		require.NoError(t, h.Notify(c))
		require.Equal(t, tc.want, rec.Code)
	}
}
