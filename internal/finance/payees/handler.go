package payees

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

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
	Name       string `json:"name" validate:"required,max=200"`
	PersonType string `json:"person_type" validate:"required,oneof=INDIVIDUAL ORGANIZATION"`
	DocumentID string `json:"document_id" validate:"max=20"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"max=30"`
	Note       string `json:"note"`
}

type updateRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=200"`
	DocumentID *string `json:"document_id" validate:"omitempty,max=20"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	Note       *string `json:"note"`
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
	actor, _ := shared.ActorFromContext(r.Context())
	p, err := h.service.Create(r.Context(), CreateInput{
		Name:       req.Name,
		PersonType: PersonType(req.PersonType),
		DocumentID: req.DocumentID,
		Email:      req.Email,
		Phone:      req.Phone,
		Note:       req.Note,
		ActorLogin: actor.Login,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	out, err := h.service.List(r.Context(), ListFilters{
		Search:     r.URL.Query().Get("search"),
		PersonType: PersonType(r.URL.Query().Get("person_type")),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      limit,
		Offset:     offset,
	})
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
	actor, _ := shared.ActorFromContext(r.Context())
	p, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:       req.Name,
		DocumentID: req.DocumentID,
		Email:      req.Email,
		Phone:      req.Phone,
		Note:       req.Note,
		ActorLogin: actor.Login,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Deactivate(r.Context(), id, actor.Login); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Reactivate(r.Context(), id, actor.Login); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, shared.Validationf("invalid id")
	}
	return id, nil
}
