package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"maidan/internal/domain/bookings"
	"maidan/internal/domain/venues"
	"maidan/internal/notifications"
	"maidan/internal/scheduler"
	"maidan/internal/store"
)

// stubBookingStore satisfies the Bookings capability with canned responses;
// only FindVenueOwner matters here.
type stubBookingStore struct {
	ownerErr error
}

func (s *stubBookingStore) FindActiveVenue(context.Context, int64) (*venues.Venue, error) {
	return nil, scheduler.ErrNotFound
}

func (s *stubBookingStore) FindBookings(context.Context, int64, time.Time) ([]bookings.Booking, error) {
	return nil, nil
}

func (s *stubBookingStore) InsertBooking(context.Context, *bookings.Booking) error {
	return nil
}

func (s *stubBookingStore) FindBooking(context.Context, int64) (*bookings.Booking, error) {
	return nil, scheduler.ErrNotFound
}

func (s *stubBookingStore) FindVenueOwner(context.Context, int64) (int64, error) {
	return 0, s.ownerErr
}

func (s *stubBookingStore) UpdateBookingStatus(context.Context, int64, string) error {
	return nil
}

func (s *stubBookingStore) InSlotLock(_ context.Context, _ int64, _ time.Time, fn func(scheduler.Store) error) error {
	return fn(s)
}

func (s *stubBookingStore) ListForVenueDate(context.Context, int64, time.Time, string) ([]bookings.Booking, error) {
	return nil, nil
}

func (s *stubBookingStore) ListByUser(context.Context, int64, store.BookingFilter) ([]bookings.Booking, error) {
	return nil, nil
}

func TestNotifyVenueOwnerLogsLookupFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	app := &application{
		logger: zap.New(core).Sugar(),
		store: store.Storage{
			Bookings: &stubBookingStore{ownerErr: errors.New("connection reset")},
		},
	}

	r := httptest.NewRequest("POST", "/v1/venues/7/bookings", nil)
	b := &bookings.Booking{ID: 1, VenueID: 7}

	app.notifyVenueOwner(r, b, notifications.BookingRequested, "ref123")

	entries := logs.FilterMessage("skipping owner push notification").All()
	if len(entries) != 1 {
		t.Fatalf("warn entries = %d, want 1", len(entries))
	}
	ctxMap := entries[0].ContextMap()
	if ctxMap["venue_id"] != int64(7) {
		t.Errorf("venue_id = %v, want 7", ctxMap["venue_id"])
	}
}
