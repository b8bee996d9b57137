package records

import (
	"errors"
	"net/http"

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
	doctor := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doctor.POST("/records", h.Create)
	doctor.PUT("/records/:id", h.Update)
	doctor.DELETE("/records/:id", h.Delete)

	api.GET("/records", h.List)
	api.GET("/records/:id", h.Get)
}

type createRecordRequest struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Diagnosis     string     `json:"diagnosis"`
	Prescription  *string    `json:"prescription,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

func (h *Handler) Create(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec := &MedicalRecord{
		PatientID:     req.PatientID,
		DoctorID:      ident.AccountID,
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
	}
	if err := h.svc.Create(c.Request().Context(), rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	rec, err := h.loadVisible(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

type updateRecordRequest struct {
	Diagnosis    string  `json:"diagnosis"`
	Prescription *string `json:"prescription,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (h *Handler) Update(c echo.Context) error {
	rec, err := h.loadVisible(c)
	if err != nil {
		return err
	}

	var req updateRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.svc.Update(c.Request().Context(), rec.ID, req.Diagnosis, req.Prescription, req.Notes)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	rec, err := h.loadVisible(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), rec.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List shows the caller's own records; admins see everything.
func (h *Handler) List(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	pg := pagination.FromContext(c)
	var (
		recs  []*MedicalRecord
		total int
		err   error
	)
	switch ident.Role {
	case auth.RolePatient:
		recs, total, err = h.svc.ListByPatient(c.Request().Context(), ident.AccountID, pg.Limit, pg.Offset)
	case auth.RoleDoctor:
		recs, total, err = h.svc.ListByDoctor(c.Request().Context(), ident.AccountID, pg.Limit, pg.Offset)
	case auth.RoleAdmin:
		recs, total, err = h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(recs, total, pg.Limit, pg.Offset))
}

// loadVisible fetches the record and hides it from patients and doctors who
// are not party to it.
func (h *Handler) loadVisible(c echo.Context) (*MedicalRecord, error) {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return nil, err
	}

	switch ident.Role {
	case auth.RolePatient:
		if rec.PatientID != ident.AccountID {
			return nil, echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
	case auth.RoleDoctor:
		if rec.DoctorID != ident.AccountID {
			return nil, echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
	}
	return rec, nil
}
