package labs

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
	// The catalog is readable by everyone signed in; admins manage it.
	api.GET("/lab-tests", h.ListTests)
	api.GET("/lab-tests/:id", h.GetTest)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/lab-tests", h.CreateTest)
	admin.PUT("/lab-tests/:id", h.UpdateTest)
	admin.DELETE("/lab-tests/:id", h.DeleteTest)

	doctor := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doctor.POST("/lab-assignments", h.Assign)
	doctor.PUT("/lab-assignments/:id/result", h.RecordResult)
	doctor.GET("/records/:id/lab-assignments", h.ListByRecord)

	patient := api.Group("", auth.RequireRole(auth.RolePatient))
	patient.GET("/my/lab-assignments", h.ListMine)
}

type testRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
}

func (h *Handler) CreateTest(c echo.Context) error {
	var req testRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, err := h.svc.CreateTest(c.Request().Context(), req.Name, req.Description, req.Cost)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	t, err := h.svc.GetTest(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "lab test not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req testRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, err := h.svc.UpdateTest(c.Request().Context(), id, req.Name, req.Description, req.Cost)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "lab test not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.svc.DeleteTest(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrTestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "lab test not found")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTests(c echo.Context) error {
	pg := pagination.FromContext(c)
	tests, total, err := h.svc.ListTests(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(tests, total, pg.Limit, pg.Offset))
}

type assignRequest struct {
	TestID    uuid.UUID `json:"test_id"`
	RecordID  uuid.UUID `json:"record_id"`
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) Assign(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.Assign(c.Request().Context(), req.TestID, req.RecordID, req.PatientID, ident.AccountID)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "lab test not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

type resultRequest struct {
	Result string `json:"result"`
}

func (h *Handler) RecordResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req resultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.RecordResult(c.Request().Context(), id, req.Result)
	if err != nil {
		switch {
		case errors.Is(err, ErrAssignmentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "lab assignment not found")
		case errors.Is(err, ErrResultRecorded):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListByRecord(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	assignments, err := h.svc.ListByRecord(c.Request().Context(), recordID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignments)
}

func (h *Handler) ListMine(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	pg := pagination.FromContext(c)
	assignments, total, err := h.svc.ListByPatient(c.Request().Context(), ident.AccountID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(assignments, total, pg.Limit, pg.Offset))
}
