package reports

import "time"

// Report is an abuse report filed by a user against a venue. A user may
// report a given venue at most once.
type Report struct {
	ID         int64     `json:"id"`
	VenueID    int64     `json:"venue_id"`
	ReporterID int64     `json:"reporter_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
