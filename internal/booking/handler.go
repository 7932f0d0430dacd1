package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medhive/marketplace-platform/internal/identity"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

// Handler handles HTTP requests for bookings.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a booking handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("booking: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /bookings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		req.UserID = actor.ID
	}

	b, err := h.svc.Create(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Get handles GET /bookings/{bookingID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	b, err := h.svc.GetByID(r.Context(), actor, chi.URLParam(r, "bookingID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListForUser handles GET /users/{userID}/bookings.
func (h *Handler) ListForUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	out, err := h.svc.ListForUser(r.Context(), actor, chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out, "count": len(out)})
}

// ListForProvider handles GET /providers/{providerID}/bookings.
func (h *Handler) ListForProvider(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	out, err := h.svc.ListForProvider(r.Context(), actor, chi.URLParam(r, "providerID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out, "count": len(out)})
}

// Accept handles POST /bookings/{bookingID}/accept.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, func(actor identity.Actor, id string) (*Booking, error) {
		return h.svc.Accept(r.Context(), actor, id)
	})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Reject handles POST /bookings/{bookingID}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	h.runTransition(w, r, func(actor identity.Actor, id string) (*Booking, error) {
		return h.svc.Reject(r.Context(), actor, id, req.Reason)
	})
}

// Start handles POST /bookings/{bookingID}/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, func(actor identity.Actor, id string) (*Booking, error) {
		return h.svc.StartService(r.Context(), actor, id)
	})
}

type completeRequest struct {
	Notes string `json:"notes"`
}

// Complete handles POST /bookings/{bookingID}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	h.runTransition(w, r, func(actor identity.Actor, id string) (*Booking, error) {
		return h.svc.CompleteService(r.Context(), actor, id, req.Notes)
	})
}

// Cancel handles POST /bookings/{bookingID}/cancel and DELETE
// /bookings/{bookingID}; deletion is cancellation.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, func(actor identity.Actor, id string) (*Booking, error) {
		return h.svc.Cancel(r.Context(), actor, id)
	})
}

// Reschedule handles POST /bookings/{bookingID}/reschedule.
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.runTransition(w, r, func(actor identity.Actor, id string) (*Booking, error) {
		return h.svc.Reschedule(r.Context(), actor, id, &req)
	})
}

type assignRequest struct {
	ProviderID string `json:"provider_id"`
}

// Assign handles POST /admin/bookings/{bookingID}/assign.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.runTransition(w, r, func(actor identity.Actor, id string) (*Booking, error) {
		return h.svc.AssignProvider(r.Context(), actor, id, req.ProviderID)
	})
}

// RefundQuote handles GET /bookings/{bookingID}/refund-quote.
func (h *Handler) RefundQuote(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "bookingID")
	if _, err := h.svc.GetByID(r.Context(), actor, id); err != nil {
		h.writeError(w, err)
		return
	}
	quote, err := h.svc.CalculateRefundAmount(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// AvailableProviders handles GET /bookings/{bookingID}/available-providers.
func (h *Handler) AvailableProviders(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "bookingID")
	if _, err := h.svc.GetByID(r.Context(), actor, id); err != nil {
		h.writeError(w, err)
		return
	}
	out, err := h.svc.FindAvailableProviders(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": out, "count": len(out)})
}

// ListByStatus handles GET /admin/bookings?status=pending.
func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	out, err := h.svc.ListByStatus(r.Context(), actor, Status(r.URL.Query().Get("status")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out, "count": len(out)})
}

func (h *Handler) runTransition(w http.ResponseWriter, r *http.Request, fn func(identity.Actor, string) (*Booking, error)) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	b, err := fn(actor, chi.URLParam(r, "bookingID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// writeError maps the booking error taxonomy onto HTTP statuses:
// NotFound→404, InvalidTransition/InvalidOperation→409,
// InvalidArgument→400, PermissionDenied→403.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrInvalidOperation):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		h.logger.Error("booking request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
