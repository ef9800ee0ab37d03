package intake

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tcmclinic/clinic/internal/domain/patient"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/intake/resolve", h.resolve)
	api.POST("/intake", h.submit)
}

type resolveRequest struct {
	State   FormState `json:"state"`
	TypedID string    `json:"typed_id"`
}

func (h *Handler) resolve(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	state, err := h.svc.Resolve(c.Request().Context(), req.State, req.TypedID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, state)
}

func (h *Handler) submit(c echo.Context) error {
	var state FormState
	if err := c.Bind(&state); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := h.svc.Submit(c.Request().Context(), state)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  verr.Error(),
				"fields": verr.Fields,
			})
		case errors.Is(err, patient.ErrDuplicateNationalID):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, patient.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, result)
}
