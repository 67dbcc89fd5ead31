package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/feed"
	"rentloop-backend/internal/logger"
	"rentloop-backend/internal/service"
)

// RentalHandler exposes the lifecycle command surface, the read surface and
// the per-record change feed over HTTP.
type RentalHandler struct {
	lifecycle service.LifecycleService
	query     service.QueryService
	feed      *feed.Feed
}

func NewRentalHandler(lifecycle service.LifecycleService, query service.QueryService, changeFeed *feed.Feed) *RentalHandler {
	return &RentalHandler{
		lifecycle: lifecycle,
		query:     query,
		feed:      changeFeed,
	}
}

// Register mounts the rental routes on the router.
func (h *RentalHandler) Register(r *mux.Router) {
	r.HandleFunc("/rentals/{id:[0-9]+}/commands/{command}", h.AttemptCommand).Methods(http.MethodPost)
	r.HandleFunc("/rentals/{id:[0-9]+}/events", h.StreamEvents).Methods(http.MethodGet)
	r.HandleFunc("/rentals/{id:[0-9]+}", h.GetRental).Methods(http.MethodGet)
	r.HandleFunc("/rentals", h.ListRentals).Methods(http.MethodGet)
	r.HandleFunc("/lendings", h.ListLendings).Methods(http.MethodGet)
}

// AttemptCommand is the single mutation path to a rental's status.
func (h *RentalHandler) AttemptCommand(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing actor")
		return
	}

	vars := mux.Vars(r)
	rentalID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rental id")
		return
	}
	cmd := domain.Command(vars["command"])

	var payload service.Payload
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
	}

	result, err := h.lifecycle.Attempt(r.Context(), rentalID, cmd, actor, payload)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing actor")
		return
	}

	rentalID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	view, err := h.query.GetRental(r.Context(), actor.UserID, rentalID)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.query.ListRentals)
}

func (h *RentalHandler) ListLendings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.query.ListLendings)
}

func (h *RentalHandler) list(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error)) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing actor")
		return
	}

	q := r.URL.Query()
	page := parseInt32(q.Get("page"), 1)
	pageSize := parseInt32(q.Get("page_size"), 20)

	rentals, total, err := fn(r.Context(), actor.UserID, q.Get("status"), page, pageSize)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rentals": rentals,
		"total":   total,
	})
}

// StreamEvents serves the per-record change feed as server-sent events.
// Subscribers invalidate their cached copy on every event and re-read the
// rental; the stream never carries full record state.
func (h *RentalHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "missing actor")
		return
	}

	rentalID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.feed.Subscribe(rentalID)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				logger.Error("Failed to encode feed event", "error", err)
				continue
			}
			if _, err := w.Write([]byte("event: transition\ndata: " + string(data) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeLifecycleError(w http.ResponseWriter, err error) {
	var guardErr *service.GuardError
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "rental was updated concurrently, refresh and retry")
	case errors.As(err, &guardErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":     "precondition not met",
			"condition": guardErr.Condition,
		})
	case errors.Is(err, service.ErrUnknownCommand):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Command failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseInt32(s string, fallback int32) int32 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
