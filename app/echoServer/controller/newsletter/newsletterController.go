package newsletter

import (
	"errors"
	"net/http"

	ns "bagrental/service/newsletter"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type EmailReq struct {
	Email string `json:"email"`
}

type Controller struct {
	Svc ns.Service
	Log *zap.Logger
}

// POST /api/newsletter
func (h *Controller) Subscribe(c echo.Context) error {
	var req EmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	sub, err := h.Svc.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, ns.ErrInvalidEmail) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid email"})
		}
		h.Log.Error("newsletter subscribe", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "subscribed", "data": sub})
}

// DELETE /api/newsletter
func (h *Controller) Unsubscribe(c echo.Context) error {
	var req EmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	ok, err := h.Svc.Unsubscribe(c.Request().Context(), req.Email)
	switch {
	case errors.Is(err, ns.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid email"})
	case err != nil:
		h.Log.Error("newsletter unsubscribe", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	case !ok:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not subscribed"})
	}
	return c.NoContent(http.StatusNoContent)
}
