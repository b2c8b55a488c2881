package store

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"maidan/internal/domain/bookings"
	"maidan/internal/domain/reports"
	"maidan/internal/moderation"
)

// ModerationStore implements moderation.Store against Postgres.
type ModerationStore struct {
	db   DBTX
	pool *pgxpool.Pool
}

var _ moderation.Store = (*ModerationStore)(nil)

func (s *ModerationStore) FindBooking(ctx context.Context, bookingID int64) (*bookings.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b bookings.Booking
	if err := scanBooking(s.db.QueryRow(ctx, query, bookingID), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, moderation.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *ModerationStore) UpdateBookingRating(ctx context.Context, bookingID int64, rating int) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE bookings
		SET rating = $1, rated = true, updated_at = NOW()
		WHERE id = $2
	`
	res, err := s.db.Exec(ctx, query, rating, bookingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return moderation.ErrNotFound
	}
	return nil
}

func (s *ModerationStore) VenueRatings(ctx context.Context, venueID int64) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT rating
		FROM bookings
		WHERE venue_id = $1 AND rated = true AND rating IS NOT NULL
	`
	rows, err := s.db.Query(ctx, query, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ModerationStore) UpdateVenueRating(ctx context.Context, venueID int64, rating float64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, `UPDATE venues SET rating = $1, updated_at = NOW() WHERE id = $2`, rating, venueID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return moderation.ErrNotFound
	}
	return nil
}

func (s *ModerationStore) FindReport(ctx context.Context, venueID, reporterID int64) (*reports.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, venue_id, reporter_id, reason, created_at
		FROM reports
		WHERE venue_id = $1 AND reporter_id = $2
	`
	var r reports.Report
	err := s.db.QueryRow(ctx, query, venueID, reporterID).Scan(
		&r.ID,
		&r.VenueID,
		&r.ReporterID,
		&r.Reason,
		&r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, moderation.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *ModerationStore) InsertReport(ctx context.Context, r *reports.Report) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO reports (venue_id, reporter_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return s.db.QueryRow(ctx, query, r.VenueID, r.ReporterID, r.Reason).Scan(&r.ID, &r.CreatedAt)
}

func (s *ModerationStore) IncrementReportCount(ctx context.Context, venueID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE venues
		SET report_count = report_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING report_count
	`
	var count int
	if err := s.db.QueryRow(ctx, query, venueID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, moderation.ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

func (s *ModerationStore) DeactivateVenue(ctx context.Context, venueID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, `UPDATE venues SET active = false, updated_at = NOW() WHERE id = $1`, venueID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return moderation.ErrNotFound
	}
	return nil
}

// InTx runs fn against a transaction-scoped store; the rating write and the
// venue average update (or report insert, counter bump and deactivation)
// commit as one unit.
func (s *ModerationStore) InTx(ctx context.Context, fn func(moderation.Store) error) error {
	if s.pool == nil {
		return errors.New("store: nested transaction")
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

	if err := fn(&ModerationStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
