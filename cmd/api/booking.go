package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"maidan/internal/domain/bookings"
	"maidan/internal/interval"
	"maidan/internal/notifications"
	"maidan/internal/scheduler"
)

var errInvalidPagination = errors.New("invalid pagination parameters")

type RequestBookingPayload struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

// BookingResponse is the wire shape of a booking. The ref code stands in for
// the numeric ID in anything user-facing.
type BookingResponse struct {
	ID        int64  `json:"id"`
	Ref       string `json:"ref"`
	VenueID   int64  `json:"venue_id"`
	UserID    int64  `json:"user_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
	Rating    *int   `json:"rating,omitempty"`
}

func (app *application) bookingResponse(b *bookings.Booking) BookingResponse {
	ref, err := app.refCodes.Encode(b.ID)
	if err != nil {
		app.logger.Errorw("encoding booking ref", "booking_id", b.ID, "error", err)
	}
	return BookingResponse{
		ID:        b.ID,
		Ref:       ref,
		VenueID:   b.VenueID,
		UserID:    b.UserID,
		Date:      b.Date.Format("2006-01-02"),
		StartTime: interval.FormatClock(b.StartMin),
		EndTime:   interval.FormatClock(b.EndMin),
		Status:    b.Status,
		Rating:    b.Rating,
	}
}

func (app *application) bookingResponses(list []bookings.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, app.bookingResponse(&list[i]))
	}
	return out
}

// schedulerError translates scheduler sentinels to HTTP responses. Slot
// conflicts, invalid transitions and self-booking all surface as client
// errors with the reason intact.
func (app *application) schedulerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scheduler.ErrValidation):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, scheduler.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, scheduler.ErrUnauthorized), errors.Is(err, scheduler.ErrSelfBooking):
		app.forbiddenResponse(w, r, err)
	case errors.Is(err, scheduler.ErrSlotConflict), errors.Is(err, scheduler.ErrInvalidState):
		app.conflictResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

func (app *application) requestBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid venue ID"))
		return
	}

	var payload RequestBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid date: %w", err))
		return
	}
	startMin, err := interval.ParseClock(payload.StartTime)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	endMin, err := interval.ParseClock(payload.EndTime)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.scheduler.RequestBooking(r.Context(), scheduler.Request{
		VenueID:     venueID,
		RequesterID: user.ID,
		Date:        date,
		Slot:        interval.Span{Start: startMin, End: endMin},
	})
	if err != nil {
		app.schedulerError(w, r, err)
		return
	}

	resp := app.bookingResponse(booking)

	app.notifyVenueOwner(r, booking, notifications.BookingRequested, resp.Ref)

	if err := app.jsonResponse(w, http.StatusCreated, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// notifyVenueOwner pushes a booking event to the venue's owner. Delivery is
// best effort; a failed owner lookup skips the push but leaves a trace.
func (app *application) notifyVenueOwner(r *http.Request, booking *bookings.Booking, event notifications.BookingEvent, ref string) {
	ownerID, err := app.store.Bookings.FindVenueOwner(r.Context(), booking.VenueID)
	if err != nil {
		app.logger.Warnw("skipping owner push notification", "venue_id", booking.VenueID, "event", string(event), "error", err)
		return
	}
	notifications.CallAsync(func(ctx context.Context) error {
		return notifications.SendBookingNotification(ctx, app.push, app.store.PushTokens, ownerID, event, ref)
	})
}

func (app *application) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking ID"))
		return
	}

	if err := app.scheduler.Cancel(r.Context(), bookingID, user.ID); err != nil {
		app.schedulerError(w, r, err)
		return
	}

	booking, err := app.store.Bookings.FindBooking(r.Context(), bookingID)
	if err == nil {
		resp := app.bookingResponse(booking)
		app.notifyVenueOwner(r, booking, notifications.BookingCancelled, resp.Ref)
		if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) confirmBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking ID"))
		return
	}

	if err := app.scheduler.Confirm(r.Context(), bookingID, user.ID); err != nil {
		app.schedulerError(w, r, err)
		return
	}

	booking, err := app.store.Bookings.FindBooking(r.Context(), bookingID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := app.bookingResponse(booking)

	notifications.CallAsync(func(ctx context.Context) error {
		return notifications.SendBookingNotification(ctx, app.push, app.store.PushTokens, booking.UserID, notifications.BookingConfirmed, resp.Ref)
	})

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getVenueBookingsHandler lists a venue's bookings for one day. Owner only;
// this is the confirmation dashboard feed.
func (app *application) getVenueBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid venue ID"))
		return
	}

	isOwner, err := app.store.Venues.IsOwner(r.Context(), venueID, user.ID)
	if err != nil {
		app.venueStoreError(w, r, err)
		return
	}
	if !isOwner {
		app.forbiddenResponse(w, r, fmt.Errorf("only the venue owner may list its bookings"))
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		app.badRequestResponse(w, r, fmt.Errorf("missing date"))
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid date: %w", err))
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", bookings.StatusPending, bookings.StatusConfirmed, bookings.StatusCancelled:
	default:
		app.badRequestResponse(w, r, fmt.Errorf("invalid status filter"))
		return
	}

	list, err := app.store.Bookings.ListForVenueDate(r.Context(), venueID, date, status)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.bookingResponses(list)); err != nil {
		app.internalServerError(w, r, err)
	}
}
