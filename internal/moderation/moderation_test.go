package moderation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"maidan/internal/domain/bookings"
	"maidan/internal/domain/reports"
	"maidan/internal/domain/venues"
)

type fakeStore struct {
	bookings map[int64]*bookings.Booking
	venues   map[int64]*venues.Venue
	reports  map[string]*reports.Report
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: make(map[int64]*bookings.Booking),
		venues:   make(map[int64]*venues.Venue),
		reports:  make(map[string]*reports.Report),
	}
}

func reportKey(venueID, reporterID int64) string {
	return fmt.Sprintf("%d/%d", venueID, reporterID)
}

func (f *fakeStore) addVenue(id int64) *venues.Venue {
	v := &venues.Venue{ID: id, Active: true}
	f.venues[id] = v
	return v
}

func (f *fakeStore) addBooking(id, venueID, userID int64) *bookings.Booking {
	b := &bookings.Booking{ID: id, VenueID: venueID, UserID: userID, Status: bookings.StatusConfirmed}
	f.bookings[id] = b
	return b
}

func (f *fakeStore) FindBooking(_ context.Context, bookingID int64) (*bookings.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) UpdateBookingRating(_ context.Context, bookingID int64, rating int) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return ErrNotFound
	}
	b.Rating = &rating
	b.Rated = true
	return nil
}

func (f *fakeStore) VenueRatings(_ context.Context, venueID int64) ([]int, error) {
	var out []int
	for _, b := range f.bookings {
		if b.VenueID == venueID && b.Rated && b.Rating != nil {
			out = append(out, *b.Rating)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateVenueRating(_ context.Context, venueID int64, rating float64) error {
	v, ok := f.venues[venueID]
	if !ok {
		return ErrNotFound
	}
	v.Rating = rating
	return nil
}

func (f *fakeStore) FindReport(_ context.Context, venueID, reporterID int64) (*reports.Report, error) {
	r, ok := f.reports[reportKey(venueID, reporterID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) InsertReport(_ context.Context, r *reports.Report) error {
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.reports[reportKey(r.VenueID, r.ReporterID)] = &cp
	return nil
}

func (f *fakeStore) IncrementReportCount(_ context.Context, venueID int64) (int, error) {
	v, ok := f.venues[venueID]
	if !ok {
		return 0, ErrNotFound
	}
	v.ReportCount++
	return v.ReportCount, nil
}

func (f *fakeStore) DeactivateVenue(_ context.Context, venueID int64) error {
	v, ok := f.venues[venueID]
	if !ok {
		return ErrNotFound
	}
	v.Active = false
	return nil
}

func (f *fakeStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(f)
}

func TestRateBookingUpdatesVenueAverage(t *testing.T) {
	store := newFakeStore()
	venue := store.addVenue(1)
	store.addBooking(1, 1, 20)
	store.addBooking(2, 1, 30)
	a := New(store)
	ctx := context.Background()

	if _, err := a.RateBooking(ctx, 1, 20, 5); err != nil {
		t.Fatalf("first rating: %v", err)
	}
	avg, err := a.RateBooking(ctx, 2, 30, 3)
	if err != nil {
		t.Fatalf("second rating: %v", err)
	}

	if math.Abs(avg-4.0) > 1e-9 {
		t.Errorf("average = %v, want 4.0", avg)
	}
	if math.Abs(venue.Rating-4.0) > 1e-9 {
		t.Errorf("venue rating = %v, want 4.0", venue.Rating)
	}
}

func TestRateBookingValidation(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1)
	store.addBooking(1, 1, 20)
	a := New(store)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		if _, err := a.RateBooking(ctx, 1, 20, rating); !errors.Is(err, ErrValidation) {
			t.Errorf("rating %d: got %v, want ErrValidation", rating, err)
		}
	}
}

func TestRateBookingOnlyOnce(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1)
	store.addBooking(1, 1, 20)
	a := New(store)
	ctx := context.Background()

	if _, err := a.RateBooking(ctx, 1, 20, 4); err != nil {
		t.Fatalf("rating: %v", err)
	}
	if _, err := a.RateBooking(ctx, 1, 20, 2); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("second rating: got %v, want ErrAlreadyRated", err)
	}
}

func TestRateBookingAuthorization(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1)
	store.addBooking(1, 1, 20)
	a := New(store)
	ctx := context.Background()

	if _, err := a.RateBooking(ctx, 1, 99, 4); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
	if _, err := a.RateBooking(ctx, 404, 20, 4); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestVenueAverageDefaultsToZero(t *testing.T) {
	if got := average(nil); got != 0 {
		t.Errorf("average(nil) = %v, want 0", got)
	}
}

func TestReportVenueDuplicate(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1)
	a := New(store)
	ctx := context.Background()

	if _, _, err := a.ReportVenue(ctx, 1, 20, "spam listing"); err != nil {
		t.Fatalf("first report: %v", err)
	}
	if _, _, err := a.ReportVenue(ctx, 1, 20, "still spam"); !errors.Is(err, ErrDuplicateReport) {
		t.Errorf("second report: got %v, want ErrDuplicateReport", err)
	}
}

func TestReportVenueThresholdDeactivates(t *testing.T) {
	store := newFakeStore()
	venue := store.addVenue(1)
	a := New(store)
	ctx := context.Background()

	for i := 0; i < venues.ReportThreshold; i++ {
		reporterID := int64(100 + i)
		_, deactivated, err := a.ReportVenue(ctx, 1, reporterID, "abuse")
		if err != nil {
			t.Fatalf("report %d: %v", i+1, err)
		}
		wantDeactivated := i == venues.ReportThreshold-1
		if deactivated != wantDeactivated {
			t.Errorf("report %d: deactivated = %v, want %v", i+1, deactivated, wantDeactivated)
		}
	}
	if venue.Active {
		t.Error("venue should be inactive after threshold")
	}

	// further reports never reactivate
	if _, _, err := a.ReportVenue(ctx, 1, 999, "more abuse"); err != nil {
		t.Fatalf("post-threshold report: %v", err)
	}
	if venue.Active {
		t.Error("venue must stay inactive")
	}
}

func TestReportVenueValidation(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1)
	a := New(store)

	if _, _, err := a.ReportVenue(context.Background(), 1, 20, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
}
