// Package moderation folds post-booking ratings into a venue's average score
// and applies the abuse-report threshold that deactivates a listing.
package moderation

import (
	"context"
	"errors"
	"fmt"

	"maidan/internal/domain/bookings"
	"maidan/internal/domain/reports"
	"maidan/internal/domain/venues"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("caller lacks rights over this entity")
	ErrAlreadyRated    = errors.New("booking has already been rated")
	ErrDuplicateReport = errors.New("venue already reported by this user")
	ErrValidation      = errors.New("invalid input")
)

// Store is the persistence capability the aggregator needs. FindBooking and
// FindReport return ErrNotFound when the entity is absent. InTx runs fn
// against a transaction-scoped Store; every write inside fn commits as one
// unit or not at all.
type Store interface {
	FindBooking(ctx context.Context, bookingID int64) (*bookings.Booking, error)
	UpdateBookingRating(ctx context.Context, bookingID int64, rating int) error
	VenueRatings(ctx context.Context, venueID int64) ([]int, error)
	UpdateVenueRating(ctx context.Context, venueID int64, rating float64) error

	FindReport(ctx context.Context, venueID, reporterID int64) (*reports.Report, error)
	InsertReport(ctx context.Context, r *reports.Report) error
	IncrementReportCount(ctx context.Context, venueID int64) (int, error)
	DeactivateVenue(ctx context.Context, venueID int64) error

	InTx(ctx context.Context, fn func(Store) error) error
}

type Aggregator struct {
	store Store
}

func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// RateBooking records a 1-5 rating on a booking and recomputes the owning
// venue's average over all rated bookings. Both writes commit together.
// Returns the new venue average.
func (a *Aggregator) RateBooking(ctx context.Context, bookingID, raterID int64, rating int) (float64, error) {
	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	var avg float64
	err := a.store.InTx(ctx, func(tx Store) error {
		booking, err := tx.FindBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != raterID {
			return ErrUnauthorized
		}
		if booking.Rated {
			return ErrAlreadyRated
		}

		if err := tx.UpdateBookingRating(ctx, bookingID, rating); err != nil {
			return err
		}

		ratings, err := tx.VenueRatings(ctx, booking.VenueID)
		if err != nil {
			return err
		}
		avg = average(ratings)
		return tx.UpdateVenueRating(ctx, booking.VenueID, avg)
	})
	if err != nil {
		return 0, err
	}
	return avg, nil
}

// ReportVenue files an abuse report. The report insert, the counter bump and
// a possible deactivation commit as one unit. Returns the report and whether
// this report crossed the deactivation threshold.
func (a *Aggregator) ReportVenue(ctx context.Context, venueID, reporterID int64, reason string) (*reports.Report, bool, error) {
	if reason == "" {
		return nil, false, fmt.Errorf("%w: missing reason", ErrValidation)
	}

	report := &reports.Report{
		VenueID:    venueID,
		ReporterID: reporterID,
		Reason:     reason,
	}

	var deactivated bool
	err := a.store.InTx(ctx, func(tx Store) error {
		_, err := tx.FindReport(ctx, venueID, reporterID)
		if err == nil {
			return ErrDuplicateReport
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		if err := tx.InsertReport(ctx, report); err != nil {
			return err
		}
		count, err := tx.IncrementReportCount(ctx, venueID)
		if err != nil {
			return err
		}
		if count >= venues.ReportThreshold {
			deactivated = true
			return tx.DeactivateVenue(ctx, venueID)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return report, deactivated, nil
}

// average is the arithmetic mean of the rated values, 0 when none exist.
func average(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
