package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-todo-list/internal/service"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/httperr"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/middleware"
)

type itemRequest struct {
	Name       string `json:"name"`
	IsComplete bool   `json:"is_complete"`
}

// ListItems возвращает все элементы списка пользователя.
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	items, err := h.svc.ListItems(r.Context(), claims.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, itemToResponse(&items[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// ItemByID возвращает элемент по идентификатору.
func (h *Handlers) ItemByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := pathUUID(chi.URLParam(r, "id"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	item, err := h.svc.ItemByID(r.Context(), claims.UserID, id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// CreateItem создаёт новый элемент списка.
func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	var in itemRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidArgument)
		return
	}

	item, err := h.svc.CreateItem(r.Context(), claims.UserID, in.Name, in.IsComplete)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, itemToResponse(item))
}

// UpdateItem обновляет имя и признак выполнения элемента.
func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := pathUUID(chi.URLParam(r, "id"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in itemRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidArgument)
		return
	}

	item, err := h.svc.UpdateItem(r.Context(), claims.UserID, id, in.Name, in.IsComplete)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// DeleteItem удаляет элемент списка.
func (h *Handlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := pathUUID(chi.URLParam(r, "id"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteItem(r.Context(), claims.UserID, id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
