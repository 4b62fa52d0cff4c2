package categories

import (
	"context"
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
	Name     string `json:"name" validate:"required,max=100"`
	Kind     string `json:"kind" validate:"required,oneof=REVENUE EXPENSE TRANSFER"`
	ParentID *int64 `json:"parent_id"`
}

type updateRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
}

type moveRequest struct {
	NewParentID *int64 `json:"new_parent_id"`
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
	c, err := h.service.Create(r.Context(), CreateInput{
		Name:       req.Name,
		Kind:       Kind(req.Kind),
		ParentID:   req.ParentID,
		ActorLogin: actor.Login,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Kind:       Kind(r.URL.Query().Get("kind")),
		Search:     r.URL.Query().Get("search"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		parentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, r, h.logger, shared.Validationf("invalid parent_id"))
			return
		}
		filters.ParentID = &parentID
	}
	out, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Tree(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
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
	c, err := h.service.Update(r.Context(), id, UpdateInput{Name: req.Name, ActorLogin: actor.Login})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Deactivate)
}

func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Reactivate)
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	var req moveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Move(r.Context(), id, req.NewParentID, actor.Login); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64, actor string) error) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := op(r.Context(), id, actor.Login); err != nil {
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
