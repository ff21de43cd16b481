package pengembalian

import (
	"log/slog"
	"net/http"
	"strconv"

	ps "github.com/EviewNicks/rental-baju-sub003/service/pengembalian"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ps.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/transaksi/:id/pengembalian
func (h *Controller) ProcessReturn(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	svcReq, err := req.toService()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.ProcessReturn(c.Request().Context(), uid, id, svcReq)
	if err != nil {
		h.Log.Error("process return", "transaksi_id", id, "err", err)
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/transaksi/:id/pengembalian/kelayakan
func (h *Controller) CheckEligibility(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.CheckEligibility(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("check eligibility", "transaksi_id", id, "err", err)
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/transaksi/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("transaksi detail", "transaksi_id", id, "err", err)
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

func (h *Controller) mapError(c echo.Context, err error) error {
	switch ps.Code(err) {
	case ps.ErrNotFound, ps.ErrItemNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case ps.ErrNotEligible:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	case ps.ErrValidation, ps.ErrExcess:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "validation error",
			"errors":  ps.Fields(err),
		})
	case ps.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": "concurrent modification, retry the request"})
	case ps.ErrStore:
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "store unavailable, retry later"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
