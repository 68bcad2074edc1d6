package bag

import (
	"errors"
	"net/http"

	"bagrental/model"
	bagsvc "bagrental/service/bag"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Controller struct {
	Svc bagsvc.Service
	Log *zap.Logger
}

// List bags
// @Summary      List bags
// @Description  Catalog filtered by membership tier and status
// @Tags         bags
// @Produce      json
// @Param        tier    query  string  false  "essentiel, signature or prive"
// @Param        status  query  string  false  "available, rented, maintenance or reserved"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/bags [get]
func (h *Controller) List(c echo.Context) error {
	f := bagsvc.Filter{
		Tier:   model.MembershipTier(c.QueryParam("tier")),
		Status: model.BagStatus(c.QueryParam("status")),
	}
	if f.Tier != "" && !f.Tier.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid tier"})
	}
	if f.Status != "" && !f.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
	}

	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("bag list error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// @Summary      Get bag
// @Description  Bag detail with its anonymised waiting list
// @Tags         bags
// @Produce      json
// @Param        id  path  string  true  "Bag ID"
// @Success      200  {object}  bagsvc.View
// @Failure      404  {object}  map[string]any
// @Router       /api/bags/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if errors.Is(err, bagsvc.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	if err != nil {
		h.Log.Error("bag detail error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}
