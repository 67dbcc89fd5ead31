package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentloop-backend/internal/repository"
)

type NotificationHandler struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationHandler(noteRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{noteRepo: noteRepo}
}

func (h *NotificationHandler) Register(r *mux.Router) {
	r.HandleFunc("/notifications", h.List).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id:[0-9]+}/read", h.MarkAsRead).Methods(http.MethodPost)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing actor")
		return
	}

	q := r.URL.Query()
	limit := parseInt32(q.Get("limit"), 20)
	offset := parseInt32(q.Get("offset"), 1) - 1

	notes, total, err := h.noteRepo.List(r.Context(), actor.UserID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notes,
		"total":         total,
	})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing actor")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.noteRepo.MarkAsRead(r.Context(), id, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
