package webhook

import (
	"errors"
	"io"
	"net/http"

	wh "bagrental/service/webhook"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TokenHeader carries the shared secret configured at the payment and identity providers.
const TokenHeader = "X-Callback-Token"

const maxBody = 1 << 20

type Controller struct {
	Svc wh.Service
	Log *zap.Logger
}

type handleFunc func(c echo.Context, token string, raw []byte) error

func (h *Controller) handle(c echo.Context, op string, fn handleFunc) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}
	err = fn(c, c.Request().Header.Get(TokenHeader), raw)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
	case errors.Is(err, wh.ErrUnauthorized):
		h.Log.Warn(op+" rejected", zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
	case errors.Is(err, wh.ErrBadPayload):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	h.Log.Error(op, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

// POST /api/webhooks/payment
func (h *Controller) Payment(c echo.Context) error {
	return h.handle(c, "payment webhook", func(c echo.Context, token string, raw []byte) error {
		return h.Svc.HandlePayment(c.Request().Context(), token, raw)
	})
}

// POST /api/webhooks/identity
func (h *Controller) Identity(c echo.Context) error {
	return h.handle(c, "identity webhook", func(c echo.Context, token string, raw []byte) error {
		return h.Svc.HandleIdentity(c.Request().Context(), token, raw)
	})
}
