package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// RouteRepository handles read access to the routes table
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// GetByID retrieves a route by ID
func (r *RouteRepository) GetByID(routeID uuid.UUID) (*models.Route, error) {
	query := `
		SELECT id, origin, destination, departure_time, seat_capacity,
			   base_price, is_active, created_at
		FROM routes
		WHERE id = $1
	`

	var route models.Route
	err := r.db.Get(&route, query, routeID)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "route", ID: routeID.String()}
	}
	if err != nil {
		return nil, err
	}

	return &route, nil
}

// ListActive retrieves all active routes
func (r *RouteRepository) ListActive() ([]models.Route, error) {
	query := `
		SELECT id, origin, destination, departure_time, seat_capacity,
			   base_price, is_active, created_at
		FROM routes
		WHERE is_active = true
		ORDER BY origin, destination, departure_time
	`

	var routes []models.Route
	if err := r.db.Select(&routes, query); err != nil {
		return nil, err
	}

	return routes, nil
}
