package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/repository"
)

// InspectionHandler records and signs the pickup and return inspections that
// gate the lifecycle's inspection edges. Only the rental's parties may touch
// them.
type InspectionHandler struct {
	inspRepo   repository.InspectionRepository
	rentalRepo repository.RentalRepository
}

func NewInspectionHandler(inspRepo repository.InspectionRepository, rentalRepo repository.RentalRepository) *InspectionHandler {
	return &InspectionHandler{inspRepo: inspRepo, rentalRepo: rentalRepo}
}

func (h *InspectionHandler) Register(r *mux.Router) {
	r.HandleFunc("/rentals/{id:[0-9]+}/inspections", h.CreateInspection).Methods(http.MethodPost)
	r.HandleFunc("/rentals/{id:[0-9]+}/inspections/{inspectionID:[0-9]+}/sign", h.SignInspection).Methods(http.MethodPost)
}

type createInspectionRequest struct {
	Direction domain.InspectionDirection `json:"direction"`
	PhotoURLs []string                   `json:"photo_urls"`
	Notes     string                     `json:"notes"`
}

func (h *InspectionHandler) CreateInspection(w http.ResponseWriter, r *http.Request) {
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

	var req createInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Direction != domain.InspectionDirectionOutbound && req.Direction != domain.InspectionDirectionInbound {
		writeError(w, http.StatusBadRequest, "direction must be OUTBOUND or INBOUND")
		return
	}

	rt := h.requireParty(w, r, actor, rentalID)
	if rt == nil {
		return
	}

	if _, err := h.inspRepo.GetByRentalAndDirection(r.Context(), rentalID, req.Direction); err == nil {
		writeError(w, http.StatusConflict, "inspection already exists for this direction")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	insp := &domain.Inspection{
		RentalID:  rentalID,
		Direction: req.Direction,
		PhotoURLs: req.PhotoURLs,
		Notes:     req.Notes,
	}
	if err := h.inspRepo.Create(r.Context(), insp); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, insp)
}

func (h *InspectionHandler) SignInspection(w http.ResponseWriter, r *http.Request) {
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
	inspectionID, err := strconv.ParseInt(vars["inspectionID"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	rt := h.requireParty(w, r, actor, rentalID)
	if rt == nil {
		return
	}
	// The lifecycle guards demand the renter's signature.
	if actor.UserID != rt.RenterID {
		writeError(w, http.StatusForbidden, "only the renter signs inspections")
		return
	}

	if err := h.inspRepo.Sign(r.Context(), rentalID, inspectionID, actor.UserID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "inspection not found for this rental")
			return
		}
		if errors.Is(err, repository.ErrConflict) {
			writeError(w, http.StatusConflict, "inspection is already signed")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed"})
}

// requireParty loads the rental and writes the error response itself when the
// actor is not one of its parties. A nil return means the response is done.
func (h *InspectionHandler) requireParty(w http.ResponseWriter, r *http.Request, actor domain.Actor, rentalID int64) *domain.Rental {
	rt, err := h.rentalRepo.GetByID(r.Context(), rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rental not found")
		} else {
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return nil
	}
	if actor.UserID != rt.RenterID && actor.UserID != rt.OwnerID {
		writeError(w, http.StatusForbidden, "not a party to this rental")
		return nil
	}
	return rt
}
