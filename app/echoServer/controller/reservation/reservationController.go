package reservation

import (
	"net/http"
	"time"

	"bagrental/app/echoServer/jwtx"
	"bagrental/app/echoServer/validation"
	"bagrental/model"
	rs "bagrental/service/reservation"
	waitlistsvc "bagrental/service/waitlist"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *zap.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch rs.Code(err) {
	case rs.ErrMembership:
		return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
	case rs.ErrInvalidDates:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case rs.ErrBagNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "bag not found"})
	case rs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
	case rs.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case rs.ErrBagUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "bag is not available"})
	case rs.ErrNotCancellable, rs.ErrIllegalTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	}
	switch waitlistsvc.Code(err) {
	case waitlistsvc.ErrIllegalTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	}
	h.Log.Error(op, zap.Error(err), zap.String("req_id", c.Response().Header().Get(echo.HeaderXRequestID)))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

// Create reservation
// @Summary      Reserve a bag
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  CreateReservationReq  true  "Bag and dates"
// @Success      201  {object}  model.Reservation
// @Failure      403  {object}  map[string]any "membership does not cover the bag"
// @Failure      409  {object}  map[string]any "bag is not available"
// @Router       /api/reservations [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  validation.Fields(err),
		})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	start, _ := time.Parse(time.DateOnly, req.StartDate)
	end, _ := time.Parse(time.DateOnly, req.EndDate)

	out, err := h.Svc.Create(c.Request().Context(), rs.CreateInput{
		UserID:    uid,
		BagID:     uuid.MustParse(req.BagID),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return h.fail(c, "reservation create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// @Summary      Cancel reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string     true   "Reservation ID"
// @Param        payload  body  CancelReq  false  "Reason"
// @Success      200  {object}  model.Reservation
// @Failure      409  {object}  map[string]any
// @Router       /api/reservations/{id}/cancel [post]
func (h *Controller) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req CancelReq
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
		}
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.Cancel(c.Request().Context(), rs.CancelInput{ID: id, UserID: uid, Reason: req.Reason})
	if err != nil {
		return h.fail(c, "reservation cancel", err)
	}
	return c.JSON(http.StatusOK, out)
}

// @Summary      My reservations
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /api/reservations/my [get]
func (h *Controller) My(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyReservations(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "reservation history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /api/admin/reservations
func (h *Controller) All(c echo.Context) error {
	rows, err := h.Svc.All(c.Request().Context())
	if err != nil {
		return h.fail(c, "reservation list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /api/admin/reservations/:id
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}

	out, err := h.Svc.UpdateStatus(c.Request().Context(), id, model.ReservationStatus(req.Status))
	if err != nil {
		return h.fail(c, "reservation status", err)
	}
	return c.JSON(http.StatusOK, out)
}
