package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"maidan/internal/domain/bookings"
	"maidan/internal/domain/users"
	"maidan/internal/domain/venues"
	"maidan/internal/moderation"
	"maidan/internal/scheduler"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query code
// runs inside and outside transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Storage struct {
	Users interface {
		Create(ctx context.Context, u *users.User, activationToken string) error
		Activate(ctx context.Context, activationToken string) error
		GetByID(ctx context.Context, userID int64) (*users.User, error)
		GetByEmail(ctx context.Context, email string) (*users.User, error)
		SaveRefreshToken(ctx context.Context, userID int64, token string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
	}
	Venues interface {
		Create(ctx context.Context, v *venues.Venue) error
		GetByID(ctx context.Context, venueID int64) (*venues.Venue, error)
		List(ctx context.Context, filter VenueFilter) ([]venues.Venue, error)
		Update(ctx context.Context, venueID int64, updateData map[string]any) error
		IsOwner(ctx context.Context, venueID, userID int64) (bool, error)
		GetOwnedVenueIDs(ctx context.Context, userID int64) ([]int64, error)
	}
	Bookings interface {
		scheduler.Store
		ListForVenueDate(ctx context.Context, venueID int64, date time.Time, status string) ([]bookings.Booking, error)
		ListByUser(ctx context.Context, userID int64, filter BookingFilter) ([]bookings.Booking, error)
	}
	Moderation moderation.Store
	PushTokens interface {
		AddOrUpdate(ctx context.Context, userID int64, token string) error
		Remove(ctx context.Context, userID int64, token string) error
		TokensByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:      &UsersStore{db: db},
		Venues:     &VenuesStore{db: db},
		Bookings:   &BookingStore{db: db, pool: db},
		Moderation: &ModerationStore{db: db, pool: db},
		PushTokens: &PushTokensStore{db: db},
	}
}
