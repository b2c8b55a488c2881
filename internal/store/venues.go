package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"maidan/internal/domain/venues"
)

type VenuesStore struct {
	db *pgxpool.Pool
}

// VenueFilter narrows listing queries. Zero value lists all active venues.
type VenueFilter struct {
	Category string
	Limit    int
	Offset   int
}

func (s *VenuesStore) Create(ctx context.Context, v *venues.Venue) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var existing int64
	err := s.db.QueryRow(ctx, `SELECT id FROM venues WHERE name = $1 AND owner_id = $2`, v.Name, v.OwnerID).Scan(&existing)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	query := `
		INSERT INTO venues (owner_id, name, address, category, description, amenities)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, report_count, active, rating, created_at, updated_at
	`
	return s.db.QueryRow(ctx, query,
		v.OwnerID,
		v.Name,
		v.Address,
		v.Category,
		v.Description,
		v.Amenities,
	).Scan(&v.ID, &v.ReportCount, &v.Active, &v.Rating, &v.CreatedAt, &v.UpdatedAt)
}

func (s *VenuesStore) GetByID(ctx context.Context, venueID int64) (*venues.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, owner_id, name, address, category, description, amenities,
		       report_count, active, rating, created_at, updated_at
		FROM venues
		WHERE id = $1
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
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *VenuesStore) List(ctx context.Context, filter VenueFilter) ([]venues.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, owner_id, name, address, category, description, amenities,
		       report_count, active, rating, created_at, updated_at
		FROM venues
		WHERE active = true
	`
	args := []any{}
	idx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, filter.Category)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY rating DESC, created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []venues.Venue
	for rows.Next() {
		var v venues.Venue
		if err := rows.Scan(
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
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update builds the SET clause from the given fields. Only listing fields may
// be changed here; report_count, active and rating are owned by moderation.
func (s *VenuesStore) Update(ctx context.Context, venueID int64, updateData map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := "UPDATE venues SET "
	args := []any{}
	argCounter := 1

	for key, value := range updateData {
		switch key {
		case "name", "address", "category", "description":
			query += fmt.Sprintf("%s = $%d, ", key, argCounter)
			args = append(args, value)
			argCounter++
		case "amenities":
			amenities, ok := value.([]string)
			if !ok {
				return fmt.Errorf("invalid amenities data")
			}
			query += fmt.Sprintf("amenities = $%d, ", argCounter)
			args = append(args, amenities)
			argCounter++
		default:
			return fmt.Errorf("unsupported field: %s", key)
		}
	}

	query += fmt.Sprintf("updated_at = NOW() WHERE id = $%d", argCounter)
	args = append(args, venueID)

	res, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *VenuesStore) IsOwner(ctx context.Context, venueID, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var ownerID int64
	err := s.db.QueryRow(ctx, `SELECT owner_id FROM venues WHERE id = $1`, venueID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return ownerID == userID, nil
}

func (s *VenuesStore) GetOwnedVenueIDs(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT id FROM venues WHERE owner_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
