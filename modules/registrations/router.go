// Package registrations exposes the attendee-facing registration API and
// the door check-in endpoints.
package registrations

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/pkg/httpx"
	"github.com/dmitrymomot/eventkit/pkg/qrcode"
	"github.com/dmitrymomot/eventkit/pkg/tenant"
	"github.com/dmitrymomot/eventkit/svc/event"
	"github.com/dmitrymomot/eventkit/svc/registration"
)

// Router mounts the registration endpoints.
//
//	r.Mount("/registrations", registrations.Router(regSvc))
func Router(svc *registration.Service) chi.Router {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Post("/", h.register)
	r.Post("/check-in", h.checkInByCode)
	r.Get("/event/{eventID}", h.listByEvent)
	r.Route("/{registrationID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Get("/qr", h.qr)
		r.Post("/cancel", h.cancel)
		r.Post("/check-in", h.checkIn)
	})
	return r
}

type handlers struct {
	svc *registration.Service
}

type registrationResponse struct {
	ID               uuid.UUID  `json:"id"`
	EventID          uuid.UUID  `json:"event_id"`
	TicketTypeID     uuid.UUID  `json:"ticket_type_id"`
	Status           string     `json:"status"`
	ConfirmationCode string     `json:"confirmation_code"`
	ParticipantName  string     `json:"participant_name"`
	ParticipantEmail string     `json:"participant_email"`
	CancelReason     *string    `json:"cancel_reason,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CheckedInAt      *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toResponse(reg registration.Registration) registrationResponse {
	return registrationResponse{
		ID:               reg.ID,
		EventID:          reg.EventID,
		TicketTypeID:     reg.TicketTypeID,
		Status:           string(reg.Status),
		ConfirmationCode: reg.ConfirmationCode,
		ParticipantName:  reg.ParticipantName,
		ParticipantEmail: reg.ParticipantEmail,
		CancelReason:     reg.CancelReason,
		CancelledAt:      reg.CancelledAt,
		CheckedInAt:      reg.CheckedInAt,
		CreatedAt:        reg.CreatedAt,
	}
}

type registerRequest struct {
	EventID          uuid.UUID  `json:"event_id"`
	TicketTypeID     uuid.UUID  `json:"ticket_type_id"`
	UserID           *uuid.UUID `json:"user_id"`
	ParticipantName  string     `json:"participant_name"`
	ParticipantEmail string     `json:"participant_email"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	reg, err := h.svc.Register(r.Context(), registration.RegisterInput{
		EventID:          req.EventID,
		TicketTypeID:     req.TicketTypeID,
		UserID:           req.UserID,
		ParticipantName:  req.ParticipantName,
		ParticipantEmail: req.ParticipantEmail,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(reg))
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "registrationID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid registration id")
		return
	}
	reg, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(reg))
}

// qr renders the confirmation code as a PNG for the attendee's ticket view.
func (h *handlers) qr(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "registrationID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid registration id")
		return
	}
	reg, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	png, err := qrcode.Generate(reg.ConfirmationCode, qrcode.DefaultSize)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal_error", "could not render qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprint(len(png)))
	_, _ = w.Write(png)
}

type cancelRequest struct {
	Reason *string `json:"reason"`
}

func (h *handlers) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "registrationID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid registration id")
		return
	}
	var req cancelRequest
	if r.ContentLength > 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}
	reg, err := h.svc.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(reg))
}

func (h *handlers) checkIn(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "registrationID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid registration id")
		return
	}
	reg, err := h.svc.CheckIn(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(reg))
}

type checkInByCodeRequest struct {
	Code string `json:"code"`
}

func (h *handlers) checkInByCode(w http.ResponseWriter, r *http.Request) {
	var req checkInByCodeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	reg, err := h.svc.CheckInByCode(r.Context(), req.Code)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(reg))
}

func (h *handlers) listByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	regs, err := h.svc.ListByEvent(r.Context(), eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]registrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, toResponse(reg))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registration.ErrRegistrationNotFound),
		errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, event.ErrTicketTypeNotFound):
		httpx.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, registration.ErrSoldOut):
		httpx.Error(w, http.StatusConflict, "sold_out", err.Error())
	case errors.Is(err, registration.ErrAlreadyRegistered):
		httpx.Error(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, registration.ErrAlreadyCancelled):
		httpx.Error(w, http.StatusConflict, "already_cancelled", err.Error())
	case errors.Is(err, registration.ErrAlreadyCheckedIn):
		httpx.Error(w, http.StatusConflict, "already_checked_in", err.Error())
	case errors.Is(err, registration.ErrNotConfirmed):
		httpx.Error(w, http.StatusConflict, "not_confirmed", err.Error())
	case errors.Is(err, registration.ErrEventNotOpen),
		errors.Is(err, registration.ErrTicketTypeInactive),
		errors.Is(err, registration.ErrSalesNotOpen),
		errors.Is(err, registration.ErrSalesClosed):
		httpx.Error(w, http.StatusUnprocessableEntity, "not_available", err.Error())
	case errors.Is(err, registration.ErrContended):
		// Retryable: the inventory row was locked past the wait bound.
		httpx.Error(w, http.StatusServiceUnavailable, "contended", err.Error())
	case errors.Is(err, registration.ErrNotAllowed):
		httpx.Error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, registration.ErrInvalidInput):
		httpx.Error(w, http.StatusUnprocessableEntity, "invalid_input", err.Error())
	case errors.Is(err, tenant.ErrNoTenantInContext):
		httpx.Error(w, http.StatusUnauthorized, "no_tenant", err.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
