package main

import (
	"net/http"
	"strconv"

	"maidan/internal/domain/users"
	"maidan/internal/store"
)

type userKey string

const userCtx userKey = "user"

func getUserFromContext(r *http.Request) *users.User {
	user, _ := r.Context().Value(userCtx).(*users.User)
	return user
}

// getMyBookingsHandler lists the authenticated user's bookings, newest first.
// Supports ?status=pending|confirmed|cancelled and page/limit pagination.
func (app *application) getMyBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	filter := store.BookingFilter{Page: 1, Limit: 20}

	if val := r.URL.Query().Get("page"); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page < 1 {
			app.badRequestResponse(w, r, errInvalidPagination)
			return
		}
		filter.Page = page
	}
	if val := r.URL.Query().Get("limit"); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 1 || limit > 100 {
			app.badRequestResponse(w, r, errInvalidPagination)
			return
		}
		filter.Limit = limit
	}
	if val := r.URL.Query().Get("status"); val != "" {
		filter.Status = &val
	}

	list, err := app.store.Bookings.ListByUser(r.Context(), user.ID, filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.bookingResponses(list)); err != nil {
		app.internalServerError(w, r, err)
	}
}

type PushTokenPayload struct {
	Token string `json:"token" validate:"required"`
}

func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.PushTokens.AddOrUpdate(r.Context(), user.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.PushTokens.Remove(r.Context(), user.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
