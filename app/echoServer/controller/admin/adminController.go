package admin

import (
	"bytes"
	"net/http"

	"bagrental/app/echoServer/validation"
	"bagrental/model"
	adminsvc "bagrental/service/admin"
	waitlistsvc "bagrental/service/waitlist"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Controller struct {
	Svc adminsvc.Service
	V   *validator.Validate
	Log *zap.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch adminsvc.Code(err) {
	case adminsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "bag not found"})
	case adminsvc.ErrBadInput, adminsvc.ErrInvalidUID:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case adminsvc.ErrNameTaken, adminsvc.ErrNFCAssigned, adminsvc.ErrNFCInUse, adminsvc.ErrNFCNotBlocked, adminsvc.ErrNFCNotAssigned:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	}
	switch waitlistsvc.Code(err) {
	case waitlistsvc.ErrIllegalTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	case waitlistsvc.ErrRenterRequired:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "renter_id is required to mark a bag rented"})
	}
	h.Log.Error(op, zap.Error(err), zap.String("req_id", c.Response().Header().Get(echo.HeaderXRequestID)))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

// bind decodes and validates req; the returned error renders as a 400.
func (h *Controller) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON")
	}
	if err := h.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	return nil
}

// GET /api/admin/inventory
func (h *Controller) Inventory(c echo.Context) error {
	rows, err := h.Svc.Inventory(c.Request().Context())
	if err != nil {
		return h.fail(c, "inventory", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /api/admin/inventory
func (h *Controller) CreateBag(c echo.Context) error {
	var req CreateBagReq
	if err := h.bind(c, &req); err != nil {
		return err
	}
	b, err := h.Svc.CreateBag(c.Request().Context(), adminsvc.BagInput{
		Name:           req.Name,
		Brand:          req.Brand,
		Description:    req.Description,
		Images:         req.Images,
		MembershipType: model.MembershipTier(req.MembershipType),
		DailyRate:      req.DailyRate,
	})
	if err != nil {
		return h.fail(c, "bag create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// PATCH /api/admin/inventory/:id, or PATCH /api/admin/inventory with the id in the body
func (h *Controller) UpdateBag(c echo.Context) error {
	var req UpdateBagReq
	if err := h.bind(c, &req); err != nil {
		return err
	}
	raw := c.Param("id")
	if raw == "" {
		raw = req.ID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	p := adminsvc.BagPatch{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Images:      req.Images,
		DailyRate:   req.DailyRate,
	}
	if req.MembershipType != nil {
		t := model.MembershipTier(*req.MembershipType)
		p.MembershipType = &t
	}
	if req.Status != nil {
		st := model.BagStatus(*req.Status)
		p.Status = &st
	}
	if req.RenterID != nil {
		rid := uuid.MustParse(*req.RenterID)
		p.RenterID = &rid
	}

	b, err := h.Svc.UpdateBag(c.Request().Context(), id, p)
	if err != nil {
		return h.fail(c, "bag update", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /api/admin/inventory/:id
func (h *Controller) DeleteBag(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.DeleteBag(c.Request().Context(), id); err != nil {
		return h.fail(c, "bag delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /api/admin/bags/nfc
func (h *Controller) AssignNFC(c echo.Context) error {
	var req NFCReq
	if err := h.bind(c, &req); err != nil {
		return err
	}
	b, err := h.Svc.AssignNFC(c.Request().Context(), uuid.MustParse(req.BagID), req.UID)
	if err != nil {
		return h.fail(c, "nfc assign", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "tag assigned", "bag_id": b.ID, "nfc": b.NFC})
}

// POST /api/admin/bags/nfc/scan
func (h *Controller) ScanNFC(c echo.Context) error {
	var req NFCReq
	if err := h.bind(c, &req); err != nil {
		return err
	}
	res, err := h.Svc.ScanNFC(c.Request().Context(), uuid.MustParse(req.BagID), req.UID)
	if adminsvc.Code(err) == adminsvc.ErrNFCBlocked {
		return c.JSON(http.StatusLocked, res)
	}
	if err != nil {
		return h.fail(c, "nfc scan", err)
	}
	return c.JSON(http.StatusOK, res)
}

// POST /api/admin/bags/:id/nfc/unblock
func (h *Controller) UnblockNFC(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.UnblockNFC(c.Request().Context(), id); err != nil {
		return h.fail(c, "nfc unblock", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "unblocked"})
}

// GET /api/admin/shipping
func (h *Controller) Shipping(c echo.Context) error {
	rows, err := h.Svc.Shipping(c.Request().Context())
	if err != nil {
		return h.fail(c, "shipping", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /api/admin/shipping.csv
func (h *Controller) ShippingCSV(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.Svc.ShippingCSV(c.Request().Context(), &buf); err != nil {
		return h.fail(c, "shipping csv", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="shipping.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
