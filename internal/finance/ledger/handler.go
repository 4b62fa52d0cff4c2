package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lokafin/lokafin/internal/platform/httpx"
	"github.com/lokafin/lokafin/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type createRequest struct {
	MovementDate     string `json:"movement_date" validate:"required,datetime=2006-01-02"`
	IssuanceDate     string `json:"issuance_date" validate:"omitempty,datetime=2006-01-02"`
	Direction        string `json:"direction" validate:"required,oneof=INFLOW OUTFLOW"`
	Amount           string `json:"amount" validate:"required"`
	CategoryID       int64  `json:"category_id" validate:"required,gt=0"`
	PayeeID          int64  `json:"payee_id" validate:"required,gt=0"`
	AccountID        *int64 `json:"account_id"`
	PaymentMethodID  *int64 `json:"payment_method_id"`
	DocumentNumber   string `json:"document_number" validate:"max=50"`
	Installment      int    `json:"installment"`
	InstallmentCount int    `json:"installment_count"`
	Note             string `json:"note"`
}

type updateRequest struct {
	MovementDate    *string `json:"movement_date" validate:"omitempty,datetime=2006-01-02"`
	IssuanceDate    *string `json:"issuance_date" validate:"omitempty,datetime=2006-01-02"`
	Direction       *string `json:"direction" validate:"omitempty,oneof=INFLOW OUTFLOW"`
	Amount          *string `json:"amount"`
	CategoryID      *int64  `json:"category_id" validate:"omitempty,gt=0"`
	PayeeID         *int64  `json:"payee_id" validate:"omitempty,gt=0"`
	AccountID       *int64  `json:"account_id"`
	PaymentMethodID *int64  `json:"payment_method_id"`
	DocumentNumber  *string `json:"document_number" validate:"omitempty,max=50"`
	Note            *string `json:"note"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	movementDate, _ := time.Parse("2006-01-02", req.MovementDate)
	issuanceDate := movementDate
	if req.IssuanceDate != "" {
		issuanceDate, _ = time.Parse("2006-01-02", req.IssuanceDate)
	}

	actor, _ := shared.ActorFromContext(r.Context())
	e, err := h.service.Create(r.Context(), CreateInput{
		MovementDate:     movementDate,
		IssuanceDate:     issuanceDate,
		Direction:        Direction(req.Direction),
		Amount:           amount,
		CategoryID:       req.CategoryID,
		PayeeID:          req.PayeeID,
		AccountID:        req.AccountID,
		PaymentMethodID:  req.PaymentMethodID,
		DocumentNumber:   req.DocumentNumber,
		Installment:      req.Installment,
		InstallmentCount: req.InstallmentCount,
		Note:             req.Note,
		ActorLogin:       actor.Login,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Direction:      Direction(q.Get("direction")),
		DocumentNumber: q.Get("document_number"),
	}
	if raw := q.Get("date_from"); raw != "" {
		filters.DateFrom, _ = time.Parse("2006-01-02", raw)
	}
	if raw := q.Get("date_to"); raw != "" {
		filters.DateTo, _ = time.Parse("2006-01-02", raw)
	}
	filters.CategoryID, _ = strconv.ParseInt(q.Get("category_id"), 10, 64)
	filters.PayeeID, _ = strconv.ParseInt(q.Get("payee_id"), 10, 64)
	filters.AccountID, _ = strconv.ParseInt(q.Get("account_id"), 10, 64)
	if raw := q.Get("confirmed"); raw != "" {
		confirmed := raw == "true"
		filters.Confirmed = &confirmed
	}
	if raw := q.Get("amount_min"); raw != "" {
		min, err := parseAmount(raw)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		filters.AmountMin = &min
	}
	if raw := q.Get("amount_max"); raw != "" {
		max, err := parseAmount(raw)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		filters.AmountMax = &max
	}
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))
	filters.Offset, _ = strconv.Atoi(q.Get("offset"))

	out, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}

	in := UpdateInput{
		CategoryID:      req.CategoryID,
		PayeeID:         req.PayeeID,
		AccountID:       req.AccountID,
		PaymentMethodID: req.PaymentMethodID,
		DocumentNumber:  req.DocumentNumber,
		Note:            req.Note,
	}
	if req.MovementDate != nil {
		d, _ := time.Parse("2006-01-02", *req.MovementDate)
		in.MovementDate = &d
	}
	if req.IssuanceDate != nil {
		d, _ := time.Parse("2006-01-02", *req.IssuanceDate)
		in.IssuanceDate = &d
	}
	if req.Direction != nil {
		dir := Direction(*req.Direction)
		in.Direction = &dir
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		in.Amount = &amount
	}
	actor, _ := shared.ActorFromContext(r.Context())
	in.ActorLogin = actor.Login

	e, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), id, actor.Login); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	e, err := h.service.Confirm(r.Context(), id, actor.Login)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Unconfirm(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	e, err := h.service.Unconfirm(r.Context(), id, actor.Login)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, shared.Validationf("invalid id")
	}
	return id, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, shared.Validationf("invalid amount %q", raw)
	}
	return amount, nil
}
