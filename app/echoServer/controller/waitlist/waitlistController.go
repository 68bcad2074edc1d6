package waitlist

import (
	"net/http"
	"strconv"

	"bagrental/app/echoServer/jwtx"
	"bagrental/app/echoServer/validation"
	ws "bagrental/service/waitlist"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type JoinReq struct {
	BagName   string `json:"bag_name" validate:"required,max=200"`
	UserName  string `json:"user_name" validate:"max=200"`
	UserEmail string `json:"user_email" validate:"required,email"`
}

type Controller struct {
	Svc ws.Service
	V   *validator.Validate
	Log *zap.Logger
}

// Join the waitlist
// @Summary      Join waitlist
// @Tags         waitlist
// @Accept       json
// @Produce      json
// @Param        payload  body  JoinReq  true  "Bag and contact"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any "bag not found"
// @Failure      409  {object}  map[string]any "already on the waitlist"
// @Router       /api/waitlist [post]
func (h *Controller) Join(c echo.Context) error {
	var req JoinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}

	in := ws.JoinInput{BagName: req.BagName, UserName: req.UserName, Email: req.UserEmail}
	if uid, err := jwtx.UserIDFromContext(c); err == nil {
		in.UserID = &uid
	}

	out, err := h.Svc.Join(c.Request().Context(), in)
	if err != nil {
		switch ws.Code(err) {
		case ws.ErrBagNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "bag not found"})
		case ws.ErrAlreadyJoined:
			return c.JSON(http.StatusConflict, echo.Map{"message": "already on the waitlist for this bag"})
		case ws.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bag_name and user_email are required"})
		default:
			h.Log.Error("waitlist join", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "added to waitlist",
		"position": out.Position,
		"entry":    out.Entry,
	})
}

// GET /api/admin/bags/:id/waitlist
func (h *Controller) List(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.List(c.Request().Context(), id)
	if err != nil {
		if ws.Code(err) == ws.ErrBagNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "bag not found"})
		}
		h.Log.Error("waitlist list", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func entryID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// POST /api/admin/waitlist/:id/notify
func (h *Controller) Notify(c echo.Context) error {
	id, ok := entryID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	e, err := h.Svc.Notify(c.Request().Context(), id)
	switch ws.Code(err) {
	case "":
		if err != nil {
			h.Log.Error("waitlist notify", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "notified", "entry": e})
	case ws.ErrEntryNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "entry not found"})
	case ws.ErrSendFailed:
		return c.JSON(http.StatusBadGateway, echo.Map{"message": err.Error(), "entry": e})
	default:
		h.Log.Error("waitlist notify", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// DELETE /api/admin/waitlist/:id
func (h *Controller) Remove(c echo.Context) error {
	id, ok := entryID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Remove(c.Request().Context(), id); err != nil {
		if ws.Code(err) == ws.ErrEntryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "entry not found"})
		}
		h.Log.Error("waitlist remove", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}
