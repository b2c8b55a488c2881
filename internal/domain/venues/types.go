package venues

import "time"

// ReportThreshold is the number of abuse reports after which a venue is
// deactivated. Deactivation is permanent; there is no automatic reinstatement.
const ReportThreshold = 5

// Venue represents a bookable playground listing.
type Venue struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Category    string    `json:"category"`
	Description *string   `json:"description,omitempty"`
	Amenities   []string  `json:"amenities,omitempty"`
	ReportCount int       `json:"report_count"`
	Active      bool      `json:"active"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
