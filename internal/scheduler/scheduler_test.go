package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"maidan/internal/domain/bookings"
	"maidan/internal/domain/venues"
	"maidan/internal/interval"
)

// fakeStore is an in-memory Store. InSlotLock serializes through a single
// mutex, which is enough to model the per-slot lock in tests.
type fakeStore struct {
	mu      sync.Mutex
	venues  map[int64]*venues.Venue
	byID    map[int64]*bookings.Booking
	nextID  int64
	inserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		venues: make(map[int64]*venues.Venue),
		byID:   make(map[int64]*bookings.Booking),
	}
}

func (f *fakeStore) addVenue(id, ownerID int64, active bool) {
	f.venues[id] = &venues.Venue{ID: id, OwnerID: ownerID, Active: active}
}

func (f *fakeStore) FindActiveVenue(_ context.Context, venueID int64) (*venues.Venue, error) {
	v, ok := f.venues[venueID]
	if !ok || !v.Active {
		return nil, ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) FindBookings(_ context.Context, venueID int64, date time.Time) ([]bookings.Booking, error) {
	var out []bookings.Booking
	for _, b := range f.byID {
		if b.VenueID == venueID && b.Date.Equal(date) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertBooking(_ context.Context, b *bookings.Booking) error {
	f.nextID++
	f.inserts++
	b.ID = f.nextID
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeStore) FindBooking(_ context.Context, bookingID int64) (*bookings.Booking, error) {
	b, ok := f.byID[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) FindVenueOwner(_ context.Context, venueID int64) (int64, error) {
	v, ok := f.venues[venueID]
	if !ok {
		return 0, ErrNotFound
	}
	return v.OwnerID, nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, bookingID int64, status string) error {
	b, ok := f.byID[bookingID]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeStore) InSlotLock(_ context.Context, _ int64, _ time.Time, fn func(Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

var testDate = time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC)

func clock(t *testing.T, v string) int {
	t.Helper()
	min, err := interval.ParseClock(v)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", v, err)
	}
	return min
}

func request(t *testing.T, venueID, requesterID int64, start, end string) Request {
	t.Helper()
	return Request{
		VenueID:     venueID,
		RequesterID: requesterID,
		Date:        testDate,
		Slot:        interval.Span{Start: clock(t, start), End: clock(t, end)},
	}
}

func TestRequestBookingCreatesPending(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, true)
	s := New(store)

	b, err := s.RequestBooking(context.Background(), request(t, 1, 20, "09:00", "10:00"))
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if b.Status != bookings.StatusPending {
		t.Errorf("status = %q, want %q", b.Status, bookings.StatusPending)
	}
	if b.ID == 0 {
		t.Error("booking was not assigned an ID")
	}
}

func TestRequestBookingSlotConflict(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, true)
	s := New(store)
	ctx := context.Background()

	if _, err := s.RequestBooking(ctx, request(t, 1, 20, "09:30", "10:30")); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	_, err := s.RequestBooking(ctx, request(t, 1, 30, "09:00", "10:00"))
	if !errors.Is(err, ErrSlotConflict) {
		t.Errorf("overlapping request: got %v, want ErrSlotConflict", err)
	}

	// boundary-touching slots do not conflict
	if _, err := s.RequestBooking(ctx, request(t, 1, 30, "10:30", "11:30")); err != nil {
		t.Errorf("boundary-touching request: %v", err)
	}
}

func TestRequestBookingIgnoresCancelled(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, true)
	s := New(store)
	ctx := context.Background()

	b, err := s.RequestBooking(ctx, request(t, 1, 20, "09:00", "10:00"))
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	if err := s.Cancel(ctx, b.ID, 20); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := s.RequestBooking(ctx, request(t, 1, 30, "09:00", "10:00")); err != nil {
		t.Errorf("slot of a cancelled booking should be free again: %v", err)
	}
}

func TestRequestBookingSelfBooking(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, true)
	s := New(store)

	_, err := s.RequestBooking(context.Background(), request(t, 1, 10, "09:00", "10:00"))
	if !errors.Is(err, ErrSelfBooking) {
		t.Errorf("got %v, want ErrSelfBooking", err)
	}
}

func TestRequestBookingInactiveVenue(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, false)
	s := New(store)

	_, err := s.RequestBooking(context.Background(), request(t, 1, 20, "09:00", "10:00"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRequestBookingInvalidSpan(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, true)
	s := New(store)

	_, err := s.RequestBooking(context.Background(), request(t, 1, 20, "10:00", "09:00"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
}

func TestCancelTransitions(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, true)
	s := New(store)
	ctx := context.Background()

	b, err := s.RequestBooking(ctx, request(t, 1, 20, "09:00", "10:00"))
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	if err := s.Cancel(ctx, b.ID, 30); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("cancel by stranger: got %v, want ErrUnauthorized", err)
	}

	if err := s.Cancel(ctx, b.ID, 20); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := store.FindBooking(ctx, b.ID)
	if got.Status != bookings.StatusCancelled {
		t.Errorf("status = %q, want %q", got.Status, bookings.StatusCancelled)
	}

	if err := s.Cancel(ctx, b.ID, 20); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second cancel: got %v, want ErrInvalidState", err)
	}

	if err := s.Cancel(ctx, 999, 20); !errors.Is(err, ErrNotFound) {
		t.Errorf("cancel missing booking: got %v, want ErrNotFound", err)
	}
}

func TestConfirmTransitions(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, true)
	s := New(store)
	ctx := context.Background()

	b, err := s.RequestBooking(ctx, request(t, 1, 20, "09:00", "10:00"))
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	if err := s.Confirm(ctx, b.ID, 20); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("confirm by non-owner: got %v, want ErrUnauthorized", err)
	}

	if err := s.Confirm(ctx, b.ID, 10); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, _ := store.FindBooking(ctx, b.ID)
	if got.Status != bookings.StatusConfirmed {
		t.Errorf("status = %q, want %q", got.Status, bookings.StatusConfirmed)
	}

	if err := s.Confirm(ctx, b.ID, 10); !errors.Is(err, ErrInvalidState) {
		t.Errorf("confirm a confirmed booking: got %v, want ErrInvalidState", err)
	}
}

func TestConcurrentRequestsSameSlot(t *testing.T) {
	store := newFakeStore()
	store.addVenue(1, 10, true)
	s := New(store)
	ctx := context.Background()

	reqs := []Request{
		request(t, 1, 20, "09:00", "10:00"),
		request(t, 1, 21, "09:00", "10:00"),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(reqs))
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.RequestBooking(ctx, reqs[i])
		}(i)
	}
	wg.Wait()

	var conflicts, wins int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Errorf("wins = %d, conflicts = %d, want exactly one of each", wins, conflicts)
	}
	if store.inserts != 1 {
		t.Errorf("inserts = %d, want 1", store.inserts)
	}
}
