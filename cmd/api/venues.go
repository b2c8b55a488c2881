package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"maidan/internal/domain/venues"
	"maidan/internal/store"
)

type CreateVenuePayload struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Address     string   `json:"address" validate:"required,max=255"`
	Category    string   `json:"category" validate:"required,oneof=futsal cricket basketball tennis badminton multi"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,max=60"`
}

func (app *application) venueStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, store.ErrConflict):
		app.conflictResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

func (app *application) createVenueHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venue := &venues.Venue{
		OwnerID:     user.ID,
		Name:        payload.Name,
		Address:     payload.Address,
		Category:    payload.Category,
		Description: payload.Description,
		Amenities:   payload.Amenities,
	}

	if err := app.store.Venues.Create(r.Context(), venue); err != nil {
		app.venueStoreError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, venue); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid venue ID"))
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		app.venueStoreError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, venue); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listVenuesHandler lists active venues, best rated first. Deactivated
// listings never appear here.
func (app *application) listVenuesHandler(w http.ResponseWriter, r *http.Request) {
	filter := store.VenueFilter{Limit: 20}

	if val := r.URL.Query().Get("limit"); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 1 || limit > 100 {
			app.badRequestResponse(w, r, errInvalidPagination)
			return
		}
		filter.Limit = limit
	}
	if val := r.URL.Query().Get("offset"); val != "" {
		offset, err := strconv.Atoi(val)
		if err != nil || offset < 0 {
			app.badRequestResponse(w, r, errInvalidPagination)
			return
		}
		filter.Offset = offset
	}
	filter.Category = r.URL.Query().Get("category")

	list, err := app.store.Venues.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateVenueHandler(w http.ResponseWriter, r *http.Request) {
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
		app.forbiddenResponse(w, r, fmt.Errorf("only the venue owner may update the listing"))
		return
	}

	var payload struct {
		Name        *string  `json:"name"`
		Address     *string  `json:"address"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
		Amenities   []string `json:"amenities"`
	}
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := make(map[string]any)
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Address != nil {
		updates["address"] = *payload.Address
	}
	if payload.Category != nil {
		updates["category"] = *payload.Category
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Amenities != nil {
		updates["amenities"] = payload.Amenities
	}
	if len(updates) == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("no fields to update"))
		return
	}

	if err := app.store.Venues.Update(r.Context(), venueID, updates); err != nil {
		app.venueStoreError(w, r, err)
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		app.venueStoreError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, venue); err != nil {
		app.internalServerError(w, r, err)
	}
}
