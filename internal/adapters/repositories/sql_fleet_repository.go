package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"

	"go.uber.org/zap"
)

// SQL-backed implementation of the FleetRepository port. Works with both the
// sqlite and pgx drivers.
type SQLFleetRepository struct {
	DB  *sql.DB
	log *zap.Logger
}

func NewSQLFleetRepository(db *sql.DB, log *zap.Logger) *SQLFleetRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLFleetRepository{DB: db, log: log}
}

// Return all facilities ordered by name, with their specialties.
func (s *SQLFleetRepository) ListFacilities(ctx context.Context) (_ []*domain.Facility, err error) {
	defer obs.Time(ctx, s.log, "fleet.ListFacilities")(&err)

	if s.DB == nil {
		return nil, errors.New("sql fleet repository: DB is nil")
	}

	query := `
	SELECT
		name,
		lat,
		lon,
		wait_minutes,
		capacity,
		occupancy
	FROM facilities
	ORDER BY name;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list facilities: query facilities table: %w", err)
	}
	defer rows.Close()

	facilities := make([]*domain.Facility, 0, 16)
	byName := make(map[string]*domain.Facility)
	for rows.Next() {
		f := &domain.Facility{}
		if err := rows.Scan(&f.Name, &f.Location.Lat, &f.Location.Lon, &f.WaitMinutes, &f.Capacity, &f.Occupancy); err != nil {
			return nil, fmt.Errorf("list facilities: scan row: %w", err)
		}
		facilities = append(facilities, f)
		byName[f.Name] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list facilities: row iteration: %w", err)
	}

	specRows, err := s.DB.QueryContext(ctx, `
	SELECT facility_name, specialty
	FROM facility_specialties
	ORDER BY facility_name, specialty;
	`)
	if err != nil {
		return nil, fmt.Errorf("list facilities: query facility_specialties table: %w", err)
	}
	defer specRows.Close()

	for specRows.Next() {
		var name, specialty string
		if err := specRows.Scan(&name, &specialty); err != nil {
			return nil, fmt.Errorf("list facilities: scan specialty row: %w", err)
		}
		if f, ok := byName[name]; ok {
			f.Specialties = append(f.Specialties, specialty)
		}
	}
	if err := specRows.Err(); err != nil {
		return nil, fmt.Errorf("list facilities: specialty row iteration: %w", err)
	}

	return facilities, nil
}

// Return all units ordered by ID. History starts empty.
func (s *SQLFleetRepository) ListUnits(ctx context.Context) (_ []*domain.Unit, err error) {
	defer obs.Time(ctx, s.log, "fleet.ListUnits")(&err)

	if s.DB == nil {
		return nil, errors.New("sql fleet repository: DB is nil")
	}

	query := `
	SELECT
		unit_id,
		lat,
		lon,
		specialty
	FROM units
	ORDER BY unit_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list units: query units table: %w", err)
	}
	defer rows.Close()

	units := make([]*domain.Unit, 0, 16)
	for rows.Next() {
		var (
			id, specialty string
			pos           domain.Coordinates
		)
		if err := rows.Scan(&id, &pos.Lat, &pos.Lon, &specialty); err != nil {
			return nil, fmt.Errorf("list units: scan row: %w", err)
		}
		units = append(units, domain.NewUnit(id, pos, specialty))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list units: row iteration: %w", err)
	}

	return units, nil
}
