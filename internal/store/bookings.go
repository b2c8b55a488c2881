package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"maidan/internal/domain/bookings"
	"maidan/internal/domain/venues"
	"maidan/internal/scheduler"
)

// BookingStore implements scheduler.Store against Postgres, plus the listing
// queries the API layer uses for dashboards.
type BookingStore struct {
	db   DBTX
	pool *pgxpool.Pool
}

var _ scheduler.Store = (*BookingStore)(nil)

const bookingColumns = `id, venue_id, user_id, date, start_min, end_min, status, rating, rated, created_at, updated_at`

func scanBooking(row pgx.Row, b *bookings.Booking) error {
	return row.Scan(
		&b.ID,
		&b.VenueID,
		&b.UserID,
		&b.Date,
		&b.StartMin,
		&b.EndMin,
		&b.Status,
		&b.Rating,
		&b.Rated,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

func (s *BookingStore) FindActiveVenue(ctx context.Context, venueID int64) (*venues.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, owner_id, name, address, category, description, amenities,
		       report_count, active, rating, created_at, updated_at
		FROM venues
		WHERE id = $1 AND active = true
	`
	var v venues.Venue
	err := s.db.QueryRow(ctx, query, venueID).Scan(
		&v.ID,
		&v.OwnerID,
		&v.Name,
		&v.Address,
		&v.Category,
		&v.Description,
		&v.Amenities,
		&v.ReportCount,
		&v.Active,
		&v.Rating,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, scheduler.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *BookingStore) FindBookings(ctx context.Context, venueID int64, date time.Time) ([]bookings.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE venue_id = $1 AND date = $2
		ORDER BY start_min
	`
	rows, err := s.db.Query(ctx, query, venueID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bookings.Booking
	for rows.Next() {
		var b bookings.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *BookingStore) InsertBooking(ctx context.Context, b *bookings.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO bookings (venue_id, user_id, date, start_min, end_min, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRow(ctx, query,
		b.VenueID,
		b.UserID,
		b.Date,
		b.StartMin,
		b.EndMin,
		b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (s *BookingStore) FindBooking(ctx context.Context, bookingID int64) (*bookings.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b bookings.Booking
	if err := scanBooking(s.db.QueryRow(ctx, query, bookingID), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, scheduler.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *BookingStore) FindVenueOwner(ctx context.Context, venueID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var ownerID int64
	err := s.db.QueryRow(ctx, `SELECT owner_id FROM venues WHERE id = $1`, venueID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, scheduler.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

func (s *BookingStore) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	res, err := s.db.Exec(ctx, query, status, bookingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return scheduler.ErrNotFound
	}
	return nil
}

// InSlotLock serializes check-then-insert per (venue, date) with a
// transaction-scoped Postgres advisory lock, so two concurrent requests for
// the same slot cannot both pass the conflict check.
func (s *BookingStore) InSlotLock(ctx context.Context, venueID int64, date time.Time, fn func(scheduler.Store) error) error {
	if s.pool == nil {
		return errors.New("store: nested slot lock")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Printf("warning: rollback failed: %v", err)
		}
	}()

	key := fmt.Sprintf("slot:%d:%s", venueID, date.Format("2006-01-02"))
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return err
	}

	if err := fn(&BookingStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type BookingFilter struct {
	Status *string
	Page   int
	Limit  int
}

func (f BookingFilter) offset() int {
	return (f.Page - 1) * f.Limit
}

func (s *BookingStore) ListForVenueDate(ctx context.Context, venueID int64, date time.Time, status string) ([]bookings.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE venue_id = $1 AND date = $2
	`
	args := []any{venueID, date}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY start_min`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bookings.Booking
	for rows.Next() {
		var b bookings.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *BookingStore) ListByUser(ctx context.Context, userID int64, filter BookingFilter) ([]bookings.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
	`
	args := []any{userID}
	idx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *filter.Status)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY date DESC, start_min DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, filter.offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bookings.Booking
	for rows.Next() {
		var b bookings.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
