package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

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
	CompanyID      int64  `json:"company_id" validate:"required,gt=0"`
	BankID         *int64 `json:"bank_id"`
	Agency         string `json:"agency" validate:"max=20"`
	Number         string `json:"number" validate:"required,max=30"`
	Type           string `json:"type" validate:"required,oneof=CHECKING SAVINGS CASH"`
	Description    string `json:"description" validate:"max=200"`
	OpeningBalance string `json:"opening_balance"`
	Default        bool   `json:"default"`
}

type updateRequest struct {
	Agency      *string `json:"agency" validate:"omitempty,max=20"`
	Number      *string `json:"number" validate:"omitempty,max=30"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Active      *bool   `json:"active"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, h.logger, shared.Validationf("company_id is required"))
		return
	}
	out, err := h.service.ListByCompany(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
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
	opening := decimal.Zero
	if req.OpeningBalance != "" {
		parsed, err := decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			httpx.RespondError(w, r, h.logger, shared.Validationf("invalid opening balance"))
			return
		}
		opening = parsed
	}
	actor, _ := shared.ActorFromContext(r.Context())
	a, err := h.service.Create(r.Context(), CreateInput{
		CompanyID:      req.CompanyID,
		BankID:         req.BankID,
		Agency:         req.Agency,
		Number:         req.Number,
		Type:           AccountType(req.Type),
		Description:    req.Description,
		OpeningBalance: opening,
		Default:        req.Default,
		ActorLogin:     actor.Login,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
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
	actor, _ := shared.ActorFromContext(r.Context())
	a, err := h.service.Update(r.Context(), id, UpdateInput{
		Agency:      req.Agency,
		Number:      req.Number,
		Description: req.Description,
		Active:      req.Active,
		ActorLogin:  actor.Login,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	a, err := h.service.SetDefault(r.Context(), id, actor.Login)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, shared.Validationf("invalid id")
	}
	return id, nil
}
