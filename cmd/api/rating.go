package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"maidan/internal/moderation"
)

type RateBookingPayload struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// moderationError translates aggregator sentinels to HTTP responses.
func (app *application) moderationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, moderation.ErrValidation):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, moderation.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, moderation.ErrUnauthorized):
		app.forbiddenResponse(w, r, err)
	case errors.Is(err, moderation.ErrAlreadyRated), errors.Is(err, moderation.ErrDuplicateReport):
		app.conflictResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

// rateBookingHandler records a rating on the caller's own booking and returns
// the venue's recomputed average.
func (app *application) rateBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking ID"))
		return
	}

	var payload RateBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	avg, err := app.moderation.RateBooking(r.Context(), bookingID, user.ID, payload.Rating)
	if err != nil {
		app.moderationError(w, r, err)
		return
	}

	response := map[string]any{
		"rating":        payload.Rating,
		"venue_average": avg,
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
