package payments

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/healthrec/ehr/internal/domain/billing"
	"github.com/healthrec/ehr/internal/domain/ledger"
	"github.com/healthrec/ehr/internal/platform/auth"
	"github.com/healthrec/ehr/internal/platform/db"
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
	patient.GET("/wallet", h.GetWallet)
	patient.POST("/wallet/topup", h.TopUp)
	patient.POST("/billing/pay", h.PayBill)
	patient.GET("/billing/receipts", h.ListReceipts)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/admin/wallet", h.GetCollectionWallet)
}

func (h *Handler) GetWallet(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	w, err := h.svc.WalletBalance(c.Request().Context(), ident.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

type topUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) TopUp(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req topUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	w, err := h.svc.TopUp(c.Request().Context(), ident.AccountID, req.Amount)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, w)
}

type payBillRequest struct {
	ChargeID uuid.UUID       `json:"charge_id"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *Handler) PayBill(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req payBillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	receipt, err := h.svc.PayBill(c.Request().Context(), ident.AccountID, req.ChargeID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ErrAmountMismatch):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
		case errors.Is(err, billing.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, billing.ErrAlreadySettled), errors.Is(err, db.ErrTxConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, receipt)
}

func (h *Handler) ListReceipts(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	pg := pagination.FromContext(c)
	settlements, total, err := h.svc.Receipts(c.Request().Context(), ident.AccountID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(settlements, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetCollectionWallet(c echo.Context) error {
	w, err := h.svc.CollectionBalance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}
