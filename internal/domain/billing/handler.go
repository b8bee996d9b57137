package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/healthrec/ehr/internal/platform/auth"
	"github.com/healthrec/ehr/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doctor := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doctor.POST("/charges", h.CreateCharge)

	patient := api.Group("", auth.RequireRole(auth.RolePatient))
	patient.GET("/billing/pending", h.ListMyPending)
	patient.GET("/billing/history", h.ListMyCharges)

	staff := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
	staff.GET("/charges/:id", h.GetCharge)
	staff.GET("/patients/:id/charges", h.ListPatientCharges)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/charges", h.ListAllCharges)
}

type createChargeRequest struct {
	PatientID uuid.UUID       `json:"patient_id"`
	RecordID  uuid.UUID       `json:"record_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (h *Handler) CreateCharge(c echo.Context) error {
	var req createChargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ch, err := h.svc.CreateCharge(c.Request().Context(), req.PatientID, req.RecordID, req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ch)
}

func (h *Handler) GetCharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ch, err := h.svc.GetCharge(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "charge not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) ListMyPending(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	charges, err := h.svc.ListPending(c.Request().Context(), ident.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, charges)
}

func (h *Handler) ListMyCharges(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	pg := pagination.FromContext(c)
	charges, total, err := h.svc.ListByPatient(c.Request().Context(), ident.AccountID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(charges, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPatientCharges(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	pg := pagination.FromContext(c)
	charges, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(charges, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListAllCharges(c echo.Context) error {
	pg := pagination.FromContext(c)
	charges, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(charges, total, pg.Limit, pg.Offset))
}
