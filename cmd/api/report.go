package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type ReportVenuePayload struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// reportVenueHandler files an abuse report against a venue. One report per
// user per venue; crossing the threshold takes the listing offline.
func (app *application) reportVenueHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid venue ID"))
		return
	}

	var payload ReportVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	report, deactivated, err := app.moderation.ReportVenue(r.Context(), venueID, user.ID, payload.Reason)
	if err != nil {
		app.moderationError(w, r, err)
		return
	}

	if deactivated {
		app.logger.Infow("venue deactivated by report threshold", "venue_id", venueID)
	}

	response := map[string]any{
		"report":            report,
		"venue_deactivated": deactivated,
	}

	if err := app.jsonResponse(w, http.StatusCreated, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
