// Package events exposes the organizer-facing event and ticket-type API.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/pkg/httpx"
	"github.com/dmitrymomot/eventkit/pkg/tenant"
	"github.com/dmitrymomot/eventkit/svc/event"
)

// Router mounts the event endpoints.
//
//	r.Mount("/events", events.Router(eventSvc))
func Router(svc *event.Service) chi.Router {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Route("/{eventID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/publish", h.transition(svc.Publish))
		r.Post("/complete", h.transition(svc.Complete))
		r.Post("/cancel", h.transition(svc.Cancel))
		r.Route("/ticket-types", func(r chi.Router) {
			r.Post("/", h.addTicketType)
			r.Get("/", h.listTicketTypes)
			r.Get("/{ticketTypeID}", h.getTicketType)
			r.Patch("/{ticketTypeID}", h.updateTicketType)
		})
	})
	return r
}

type handlers struct {
	svc *event.Service
}

type eventResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEventResponse(ev event.Event) eventResponse {
	return eventResponse{
		ID:          ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		Status:      string(ev.Status),
		StartsAt:    ev.StartsAt,
		EndsAt:      ev.EndsAt,
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
}

type ticketTypeResponse struct {
	ID           uuid.UUID  `json:"id"`
	EventID      uuid.UUID  `json:"event_id"`
	Name         string     `json:"name"`
	Capacity     *int32     `json:"capacity"`
	Sold         int32      `json:"sold"`
	Reserved     int32      `json:"reserved"`
	Available    *int32     `json:"available"`
	Version      int64      `json:"version"`
	Active       bool       `json:"active"`
	SalesStartAt *time.Time `json:"sales_start_at,omitempty"`
	SalesEndAt   *time.Time `json:"sales_end_at,omitempty"`
}

func toTicketTypeResponse(tt event.TicketType) ticketTypeResponse {
	resp := ticketTypeResponse{
		ID:           tt.ID,
		EventID:      tt.EventID,
		Name:         tt.Name,
		Capacity:     tt.Capacity,
		Sold:         tt.Sold,
		Reserved:     tt.Reserved,
		Version:      tt.Version,
		Active:       tt.Active,
		SalesStartAt: tt.SalesStartAt,
		SalesEndAt:   tt.SalesEndAt,
	}
	if tt.Capacity != nil {
		available := tt.Available()
		resp.Available = &available
	}
	return resp
}

type createEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	ev, err := h.svc.CreateEvent(r.Context(), event.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEventResponse(ev))
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	evs, err := h.svc.ListEvents(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]eventResponse, 0, len(evs))
	for _, ev := range evs {
		out = append(out, toEventResponse(ev))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	ev, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEventResponse(ev))
}

// transition adapts the three lifecycle operations, which share a shape.
func (h *handlers) transition(op func(ctx context.Context, id uuid.UUID) (event.Event, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "eventID"))
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid event id")
			return
		}
		ev, err := op(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toEventResponse(ev))
	}
}

type addTicketTypeRequest struct {
	Name         string     `json:"name"`
	Capacity     *int32     `json:"capacity"`
	SalesStartAt *time.Time `json:"sales_start_at"`
	SalesEndAt   *time.Time `json:"sales_end_at"`
}

func (h *handlers) addTicketType(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	var req addTicketTypeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	tt, err := h.svc.AddTicketType(r.Context(), event.AddTicketTypeInput{
		EventID:      eventID,
		Name:         req.Name,
		Capacity:     req.Capacity,
		SalesStartAt: req.SalesStartAt,
		SalesEndAt:   req.SalesEndAt,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTicketTypeResponse(tt))
}

func (h *handlers) listTicketTypes(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	tts, err := h.svc.ListTicketTypes(r.Context(), eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]ticketTypeResponse, 0, len(tts))
	for _, tt := range tts {
		out = append(out, toTicketTypeResponse(tt))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *handlers) getTicketType(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "ticketTypeID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid ticket type id")
		return
	}
	tt, err := h.svc.GetTicketType(r.Context(), eventID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTicketTypeResponse(tt))
}

// updateTicketTypeRequest distinguishes "capacity absent" from
// "capacity: null": the raw message is only non-nil when the key was sent,
// and a JSON null inside it means unlimited.
type updateTicketTypeRequest struct {
	Version      int64           `json:"version"`
	Name         *string         `json:"name"`
	Capacity     json.RawMessage `json:"capacity"`
	Active       *bool           `json:"active"`
	SalesStartAt *time.Time      `json:"sales_start_at"`
	SalesEndAt   *time.Time      `json:"sales_end_at"`
}

func (h *handlers) updateTicketType(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "ticketTypeID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid ticket type id")
		return
	}
	var req updateTicketTypeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	in := event.UpdateTicketTypeInput{
		EventID:      eventID,
		TicketTypeID: id,
		Version:      req.Version,
		Name:         req.Name,
		Active:       req.Active,
		SalesStartAt: req.SalesStartAt,
		SalesEndAt:   req.SalesEndAt,
	}
	if req.Capacity != nil {
		var capacity *int32
		if err := json.Unmarshal(req.Capacity, &capacity); err != nil {
			httpx.Error(w, http.StatusBadRequest, "bad_request", "invalid capacity")
			return
		}
		in.Capacity = &capacity
	}

	tt, err := h.svc.UpdateTicketType(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTicketTypeResponse(tt))
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, event.ErrEventNotFound):
		httpx.Error(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, event.ErrTicketTypeNotFound):
		httpx.Error(w, http.StatusNotFound, "ticket_type_not_found", err.Error())
	case errors.Is(err, event.ErrInvalidTransition):
		httpx.Error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, event.ErrStartTimeInPast):
		httpx.Error(w, http.StatusUnprocessableEntity, "start_time_in_past", err.Error())
	case errors.Is(err, event.ErrVersionConflict):
		httpx.Error(w, http.StatusConflict, "version_conflict", err.Error())
	case errors.Is(err, event.ErrCapacityBelowSold):
		httpx.Error(w, http.StatusUnprocessableEntity, "capacity_below_sold", err.Error())
	case errors.Is(err, event.ErrInvalidInput):
		httpx.Error(w, http.StatusUnprocessableEntity, "invalid_input", err.Error())
	case errors.Is(err, tenant.ErrNoTenantInContext):
		httpx.Error(w, http.StatusUnauthorized, "no_tenant", err.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
