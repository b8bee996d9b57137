package scheduling

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	patient := api.Group("", auth.RequireRole(auth.RolePatient))
	patient.POST("/appointments", h.Book)

	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.PUT("/appointments/:id/reschedule", h.Reschedule)
	api.DELETE("/appointments/:id", h.Cancel)
}

type bookRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      *string   `json:"reason,omitempty"`
}

func (h *Handler) Book(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.Book(c.Request().Context(), ident.AccountID, req.DoctorID, req.ScheduledAt, req.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

// List shows the caller's own appointments; admins see everything.
func (h *Handler) List(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	pg := pagination.FromContext(c)
	var (
		appts []*Appointment
		total int
		err   error
	)
	switch ident.Role {
	case auth.RolePatient:
		appts, total, err = h.svc.ListByPatient(c.Request().Context(), ident.AccountID, pg.Limit, pg.Offset)
	case auth.RoleDoctor:
		appts, total, err = h.svc.ListByDoctor(c.Request().Context(), ident.AccountID, pg.Limit, pg.Offset)
	case auth.RoleAdmin:
		appts, total, err = h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	a, err := h.loadVisible(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

type rescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	a, err := h.loadVisible(c)
	if err != nil {
		return err
	}

	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.svc.Reschedule(c.Request().Context(), a.ID, req.ScheduledAt)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Cancel(c echo.Context) error {
	a, err := h.loadVisible(c)
	if err != nil {
		return err
	}

	cancelled, err := h.svc.Cancel(c.Request().Context(), a.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cancelled)
}

// loadVisible fetches the appointment and enforces that patients and doctors
// only see their own. A foreign appointment reads as missing.
func (h *Handler) loadVisible(c echo.Context) (*Appointment, error) {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return nil, err
	}

	switch ident.Role {
	case auth.RolePatient:
		if a.PatientID != ident.AccountID {
			return nil, echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
	case auth.RoleDoctor:
		if a.DoctorID != ident.AccountID {
			return nil, echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
	}
	return a, nil
}
