// Package scheduler owns the booking conflict rule and the booking state
// machine. It is storage-agnostic: persistence is injected through the Store
// interface so the core can be exercised against an in-memory fake.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"maidan/internal/domain/bookings"
	"maidan/internal/domain/venues"
	"maidan/internal/interval"
)

// Store is the persistence capability the scheduler needs. FindActiveVenue
// and FindBooking return ErrNotFound when the entity is absent.
type Store interface {
	FindActiveVenue(ctx context.Context, venueID int64) (*venues.Venue, error)
	FindBookings(ctx context.Context, venueID int64, date time.Time) ([]bookings.Booking, error)
	InsertBooking(ctx context.Context, b *bookings.Booking) error
	FindBooking(ctx context.Context, bookingID int64) (*bookings.Booking, error)
	FindVenueOwner(ctx context.Context, venueID int64) (int64, error)
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error

	// InSlotLock runs fn while holding an exclusive lock on the
	// (venueID, date) slot key. The conflict check and the insert in
	// RequestBooking happen inside fn, which closes the
	// check-then-insert race between concurrent requests.
	InSlotLock(ctx context.Context, venueID int64, date time.Time, fn func(Store) error) error
}

type Scheduler struct {
	store Store
}

func New(store Store) *Scheduler {
	return &Scheduler{store: store}
}

// Request carries a booking request for a venue time slot.
type Request struct {
	VenueID     int64
	RequesterID int64
	Date        time.Time
	Slot        interval.Span
}

// RequestBooking validates the request against the venue and its existing
// bookings and, when the slot is free, creates a pending booking.
func (s *Scheduler) RequestBooking(ctx context.Context, req Request) (*bookings.Booking, error) {
	if !req.Slot.Valid() {
		return nil, fmt.Errorf("%w: start must be before end and within one day", ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: missing date", ErrValidation)
	}

	venue, err := s.store.FindActiveVenue(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if venue.OwnerID == req.RequesterID {
		return nil, ErrSelfBooking
	}

	booking := &bookings.Booking{
		VenueID:  req.VenueID,
		UserID:   req.RequesterID,
		Date:     req.Date,
		StartMin: req.Slot.Start,
		EndMin:   req.Slot.End,
		Status:   bookings.StatusPending,
	}

	err = s.store.InSlotLock(ctx, req.VenueID, req.Date, func(tx Store) error {
		existing, err := tx.FindBookings(ctx, req.VenueID, req.Date)
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].Status == bookings.StatusCancelled {
				continue
			}
			if interval.Overlaps(existing[i].Span(), req.Slot) {
				return ErrSlotConflict
			}
		}
		return tx.InsertBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel transitions a pending booking to cancelled. Only the original
// requester may cancel; confirmed and cancelled bookings are terminal.
func (s *Scheduler) Cancel(ctx context.Context, bookingID, requesterID int64) error {
	booking, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != requesterID {
		return ErrUnauthorized
	}
	if booking.Status != bookings.StatusPending {
		return fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidState, booking.Status)
	}
	return s.store.UpdateBookingStatus(ctx, bookingID, bookings.StatusCancelled)
}

// Confirm transitions a pending booking to confirmed. Only the venue owner
// may confirm, and only while the booking is pending.
func (s *Scheduler) Confirm(ctx context.Context, bookingID, ownerID int64) error {
	booking, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	venueOwner, err := s.store.FindVenueOwner(ctx, booking.VenueID)
	if err != nil {
		return err
	}
	if venueOwner != ownerID {
		return ErrUnauthorized
	}
	if booking.Status != bookings.StatusPending {
		return fmt.Errorf("%w: cannot confirm a %s booking", ErrInvalidState, booking.Status)
	}
	return s.store.UpdateBookingStatus(ctx, bookingID, bookings.StatusConfirmed)
}
