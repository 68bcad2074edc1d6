package membership

import (
	"errors"
	"net/http"

	"bagrental/app/echoServer/jwtx"
	"bagrental/app/echoServer/validation"
	"bagrental/model"
	ms "bagrental/service/membership"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProfileReq struct {
	FullName     string `json:"full_name" validate:"max=200"`
	Phone        string `json:"phone" validate:"max=40"`
	AddressLine1 string `json:"address_line1" validate:"max=200"`
	AddressLine2 string `json:"address_line2" validate:"max=200"`
	City         string `json:"city" validate:"max=100"`
	PostalCode   string `json:"postal_code" validate:"max=20"`
	Country      string `json:"country" validate:"max=100"`
}

type PendingPlanReq struct {
	Plan string `json:"plan" validate:"required,tier"`
}

type UpdateMembershipReq struct {
	UserID           string `json:"user_id" validate:"required,uuid"`
	MembershipType   string `json:"membership_type" validate:"omitempty,tier"`
	MembershipStatus string `json:"membership_status" validate:"required,memberstatus"`
}

type Controller struct {
	Svc ms.Service
	V   *validator.Validate
	Log *zap.Logger
}

func (h *Controller) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON")
	}
	if err := h.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	return nil
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, ms.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "profile not found"})
	case errors.Is(err, ms.ErrInvalidPlan), errors.Is(err, ms.ErrBadStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	h.Log.Error(op, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

// GET /api/user/profile
func (h *Controller) Profile(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	p, err := h.Svc.Profile(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "profile get", err)
	}
	return c.JSON(http.StatusOK, p)
}

// PUT /api/user/profile
func (h *Controller) UpdateProfile(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req ProfileReq
	if err := h.bind(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.UpdateProfile(c.Request().Context(), uid, ms.Shipping(req))
	if err != nil {
		return h.fail(c, "profile update", err)
	}
	return c.JSON(http.StatusOK, p)
}

// POST /api/user/store-pending-plan
func (h *Controller) StorePendingPlan(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req PendingPlanReq
	if err := h.bind(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.StorePendingPlan(c.Request().Context(), uid, model.MembershipTier(req.Plan))
	if err != nil {
		return h.fail(c, "pending plan", err)
	}
	return c.JSON(http.StatusOK, p)
}

// POST /api/user/update-membership (admin)
func (h *Controller) UpdateMembership(c echo.Context) error {
	var req UpdateMembershipReq
	if err := h.bind(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.UpdateMembership(c.Request().Context(),
		uuid.MustParse(req.UserID),
		model.MembershipTier(req.MembershipType),
		model.MembershipStatus(req.MembershipStatus))
	if err != nil {
		return h.fail(c, "membership update", err)
	}
	h.Log.Info("membership updated",
		zap.String("user_id", req.UserID),
		zap.String("tier", req.MembershipType),
		zap.String("status", req.MembershipStatus))
	return c.JSON(http.StatusOK, p)
}
