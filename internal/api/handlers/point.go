package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/baharkarakas/point-ledger/internal/api/httpx"
	"github.com/baharkarakas/point-ledger/internal/api/validate"
	"github.com/baharkarakas/point-ledger/internal/middleware"
	"github.com/baharkarakas/point-ledger/internal/models"
	"github.com/baharkarakas/point-ledger/internal/services"
)

const (
	chargeStep   int64 = 100
	maxBodyBytes       = 1 << 10
)

// PointService is the subset of services.PointService the handlers need.
type PointService interface {
	Point(ctx context.Context, userID int64) (models.Balance, error)
	Histories(ctx context.Context, userID int64) ([]models.HistoryEntry, error)
	Charge(ctx context.Context, userID, amount int64) (models.Balance, error)
	Use(ctx context.Context, userID, amount int64) (models.Balance, error)
}

type PointHandler struct {
	svc PointService
	log *zap.Logger
}

func NewPointHandler(svc PointService, log *zap.Logger) *PointHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PointHandler{svc: svc, log: log}
}

// GET /point/{id}
func (h *PointHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Point(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

// GET /point/{id}/histories
func (h *PointHandler) Histories(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	hist, err := h.svc.Histories(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, hist)
}

// PATCH /point/{id}/charge
func (h *PointHandler) Charge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	amount, ok := h.amount(w, r)
	if !ok {
		return
	}
	if errs := validate.Collect(
		validate.MinInt("amount", amount, 1),
		validate.MaxInt("amount", amount, models.MaxBalance),
		validate.MultipleOf("amount", amount, chargeStep),
	); errs != nil {
		writeValidation(w, errs)
		return
	}

	b, err := h.svc.Charge(r.Context(), id, amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

// PATCH /point/{id}/use
func (h *PointHandler) Use(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	amount, ok := h.amount(w, r)
	if !ok {
		return
	}
	if errs := validate.Collect(validate.MinInt("amount", amount, 1)); errs != nil {
		writeValidation(w, errs)
		return
	}

	b, err := h.svc.Use(r.Context(), id, amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *PointHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeValidation(w, validate.Errs{{Field: "id", Msg: "must be an integer"}})
		return 0, false
	}
	if errs := validate.Collect(validate.MinInt("id", id, 0)); errs != nil {
		writeValidation(w, errs)
		return 0, false
	}
	return id, true
}

func (h *PointHandler) amount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	amount, err := decodeAmount(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeValidation(w, validate.Errs{{Field: "amount", Msg: err.Error()}})
		return 0, false
	}
	return amount, true
}

var errAmountMissing = errors.New("required")

// decodeAmount accepts either a bare JSON integer or {"amount": n}.
func decodeAmount(body io.Reader) (int64, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return 0, errors.New("unreadable body")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, errAmountMissing
	}

	if raw[0] == '{' {
		var req struct {
			Amount *int64 `json:"amount"`
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			return 0, errors.New("must be an integer")
		}
		if req.Amount == nil {
			return 0, errAmountMissing
		}
		return *req.Amount, nil
	}

	var amount int64
	if err := json.Unmarshal(raw, &amount); err != nil {
		return 0, errors.New("must be an integer")
	}
	return amount, nil
}

func writeValidation(w http.ResponseWriter, errs validate.Errs) {
	httpx.WriteError(w, http.StatusBadRequest, "validation_error", "validation failed", errs)
}

func (h *PointHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", err.Error(), nil)
	case errors.Is(err, services.ErrBalanceLimitExceeded):
		httpx.WriteError(w, http.StatusConflict, "balance_limit_exceeded", err.Error(), nil)
	case errors.Is(err, services.ErrInsufficientBalance):
		httpx.WriteError(w, http.StatusConflict, "insufficient_balance", err.Error(), nil)
	case errors.Is(err, services.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user_not_found", err.Error(), nil)
	default:
		h.log.Error("point request failed",
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
