package settlement

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

// Handler exposes one direction of the settlement lifecycle over HTTP. The
// payables and receivables routers each mount their own instance.
type Handler struct {
	logger  *slog.Logger
	service *Service
	idem    *shared.IdempotencyStore
	module  string
}

// NewHandler constructs a settlement handler. The module name scopes
// idempotency keys so a payable and a receivable request cannot collide.
func NewHandler(logger *slog.Logger, service *Service, idem *shared.IdempotencyStore, module string) *Handler {
	return &Handler{logger: logger, service: service, idem: idem, module: module}
}

type createRequest struct {
	CompanyID        int64  `json:"company_id" validate:"required,gt=0"`
	CounterpartyID   int64  `json:"counterparty_id" validate:"required,gt=0"`
	AccountID        *int64 `json:"account_id"`
	CategoryID       *int64 `json:"category_id"`
	DocumentNumber   string `json:"document_number" validate:"max=50"`
	IssuanceDate     string `json:"issuance_date" validate:"required,datetime=2006-01-02"`
	DueDate          string `json:"due_date" validate:"required,datetime=2006-01-02"`
	OriginalAmount   string `json:"original_amount" validate:"required"`
	DiscountAmount   string `json:"discount_amount"`
	InterestAmount   string `json:"interest_amount"`
	FineAmount       string `json:"fine_amount"`
	Installment      int    `json:"installment"`
	InstallmentCount int    `json:"installment_count"`
	Note             string `json:"note"`
}

type updateRequest struct {
	CounterpartyID *int64  `json:"counterparty_id" validate:"omitempty,gt=0"`
	AccountID      *int64  `json:"account_id"`
	CategoryID     *int64  `json:"category_id"`
	DocumentNumber *string `json:"document_number" validate:"omitempty,max=50"`
	IssuanceDate   *string `json:"issuance_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate        *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	OriginalAmount *string `json:"original_amount"`
	Note           *string `json:"note"`
}

type eventRequest struct {
	EventDate       string `json:"event_date" validate:"required,datetime=2006-01-02"`
	Amount          string `json:"amount" validate:"required"`
	DiscountAmount  string `json:"discount_amount"`
	InterestAmount  string `json:"interest_amount"`
	FineAmount      string `json:"fine_amount"`
	AccountID       *int64 `json:"account_id"`
	PaymentMethodID *int64 `json:"payment_method_id"`
	DocumentNumber  string `json:"document_number" validate:"max=50"`
	Note            string `json:"note"`
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
	amount, err := parseAmount(req.OriginalAmount)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	discount, interest, fine, err := parseAdjustments(req.DiscountAmount, req.InterestAmount, req.FineAmount)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	issuance, _ := time.Parse("2006-01-02", req.IssuanceDate)
	due, _ := time.Parse("2006-01-02", req.DueDate)

	key, release, err := h.claimKey(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}

	actor, _ := shared.ActorFromContext(r.Context())
	doc, err := h.service.Create(r.Context(), CreateDocumentInput{
		CompanyID:        req.CompanyID,
		CounterpartyID:   req.CounterpartyID,
		AccountID:        req.AccountID,
		CategoryID:       req.CategoryID,
		DocumentNumber:   req.DocumentNumber,
		IssuanceDate:     issuance,
		DueDate:          due,
		OriginalAmount:   amount,
		DiscountAmount:   discount,
		InterestAmount:   interest,
		FineAmount:       fine,
		Installment:      req.Installment,
		InstallmentCount: req.InstallmentCount,
		Note:             req.Note,
		ActorLogin:       actor.Login,
	})
	if err != nil {
		release(r, key)
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	full, err := h.service.GetWithEvents(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, full)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListRequest{Status: Status(q.Get("status"))}
	req.CompanyID, _ = strconv.ParseInt(q.Get("company_id"), 10, 64)
	req.CounterpartyID, _ = strconv.ParseInt(q.Get("counterparty_id"), 10, 64)
	if raw := q.Get("due_from"); raw != "" {
		req.DueFrom, _ = time.Parse("2006-01-02", raw)
	}
	if raw := q.Get("due_to"); raw != "" {
		req.DueTo, _ = time.Parse("2006-01-02", raw)
	}
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))

	docs, err := h.service.List(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
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

	in := UpdateDocumentInput{
		CounterpartyID: req.CounterpartyID,
		AccountID:      req.AccountID,
		CategoryID:     req.CategoryID,
		DocumentNumber: req.DocumentNumber,
		Note:           req.Note,
	}
	if req.IssuanceDate != nil {
		d, _ := time.Parse("2006-01-02", *req.IssuanceDate)
		in.IssuanceDate = &d
	}
	if req.DueDate != nil {
		d, _ := time.Parse("2006-01-02", *req.DueDate)
		in.DueDate = &d
	}
	if req.OriginalAmount != nil {
		amount, err := parseAmount(*req.OriginalAmount)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		in.OriginalAmount = &amount
	}
	actor, _ := shared.ActorFromContext(r.Context())
	in.ActorLogin = actor.Login

	doc, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Cancel(r.Context(), id, actor.Login); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func (h *Handler) RegisterEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	var req eventRequest
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
	discount, interest, fine, err := parseAdjustments(req.DiscountAmount, req.InterestAmount, req.FineAmount)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	eventDate, _ := time.Parse("2006-01-02", req.EventDate)

	key, release, err := h.claimKey(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}

	actor, _ := shared.ActorFromContext(r.Context())
	doc, err := h.service.RegisterEvent(r.Context(), RegisterEventInput{
		DocumentID:      id,
		EventDate:       eventDate,
		Amount:          amount,
		DiscountAmount:  discount,
		InterestAmount:  interest,
		FineAmount:      fine,
		AccountID:       req.AccountID,
		PaymentMethodID: req.PaymentMethodID,
		DocumentNumber:  req.DocumentNumber,
		Note:            req.Note,
		ActorLogin:      actor.Login,
	})
	if err != nil {
		release(r, key)
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, h.logger, shared.Validationf("invalid event id"))
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	doc, err := h.service.DeleteEvent(r.Context(), eventID, actor.Login)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// claimKey reserves the Idempotency-Key header if the client sent one. The
// returned release func frees the key again when the service call fails, so
// the client may retry.
func (h *Handler) claimKey(r *http.Request) (string, func(*http.Request, string), error) {
	noop := func(*http.Request, string) {}
	key := r.Header.Get("Idempotency-Key")
	if key == "" || h.idem == nil {
		return "", noop, nil
	}
	if err := h.idem.CheckAndInsert(r.Context(), key, h.module); err != nil {
		return "", noop, err
	}
	return key, func(r *http.Request, key string) {
		if err := h.idem.Delete(r.Context(), key); err != nil {
			h.logger.Warn("idempotency key release failed", "key", key, "error", err)
		}
	}, nil
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

func parseAdjustments(discount, interest, fine string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	parse := func(raw string) (decimal.Decimal, error) {
		if raw == "" {
			return decimal.Zero, nil
		}
		return parseAmount(raw)
	}
	d, err := parse(discount)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	i, err := parse(interest)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	f, err := parse(fine)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	return d, i, f, nil
}
