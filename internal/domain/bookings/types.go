package bookings

import (
	"time"

	"maidan/internal/interval"
)

// Booking statuses. A booking starts out pending; confirmed and cancelled
// are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking represents a reservation of a venue time slot on a calendar date.
// StartMin/EndMin are minutes from midnight, half-open [StartMin, EndMin).
type Booking struct {
	ID        int64     `json:"id"`
	VenueID   int64     `json:"venue_id"`
	UserID    int64     `json:"user_id"`
	Date      time.Time `json:"date"`
	StartMin  int       `json:"start_min"`
	EndMin    int       `json:"end_min"`
	Status    string    `json:"status"`
	Rating    *int      `json:"rating,omitempty"`
	Rated     bool      `json:"rated"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Span returns the booked interval as a half-open minute span.
func (b *Booking) Span() interval.Span {
	return interval.Span{Start: b.StartMin, End: b.EndMin}
}
