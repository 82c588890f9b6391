package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// InitSchema creates the fleet tables. The DDL runs unchanged on SQLite and
// PostgreSQL.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createFacilitiesQuery := `
	CREATE TABLE IF NOT EXISTS facilities (
		name TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		wait_minutes INTEGER NOT NULL DEFAULT 0,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		occupancy INTEGER NOT NULL DEFAULT 0 CHECK (occupancy >= 0 AND occupancy <= capacity)
	);
	`

	createSpecialtiesQuery := `
	CREATE TABLE IF NOT EXISTS facility_specialties (
		facility_name TEXT NOT NULL REFERENCES facilities(name) ON DELETE CASCADE,
		specialty TEXT NOT NULL,
		PRIMARY KEY (facility_name, specialty)
	);
	`

	createUnitsQuery := `
	CREATE TABLE IF NOT EXISTS units (
		unit_id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		specialty TEXT NOT NULL
	);
	`

	statements := []string{
		createFacilitiesQuery,
		createSpecialtiesQuery,
		createUnitsQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type FacilitySeed struct {
	Name        string   `yaml:"name" validate:"required"`
	Lat         float64  `yaml:"lat" validate:"latitude"`
	Lon         float64  `yaml:"lon" validate:"longitude"`
	Specialties []string `yaml:"specialties" validate:"min=1,dive,required"`
	WaitMinutes int      `yaml:"wait_minutes" validate:"min=0"`
	Capacity    int      `yaml:"capacity" validate:"gt=0"`
	Occupancy   int      `yaml:"occupancy" validate:"min=0,ltefield=Capacity"`
}

type UnitSeed struct {
	ID        string  `yaml:"id" validate:"required"`
	Lat       float64 `yaml:"lat" validate:"latitude"`
	Lon       float64 `yaml:"lon" validate:"longitude"`
	Specialty string  `yaml:"specialty" validate:"required"`
}

type FleetSeed struct {
	Facilities []FacilitySeed `yaml:"facilities" validate:"dive"`
	Units      []UnitSeed     `yaml:"units" validate:"dive"`
}

// LoadSeed reads and validates a YAML fleet file.
func LoadSeed(path string) (*FleetSeed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}

	var seed FleetSeed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("load seed: parse yaml: %w", err)
	}

	for i := range seed.Facilities {
		seed.Facilities[i].Name = strings.TrimSpace(seed.Facilities[i].Name)
	}
	for i := range seed.Units {
		seed.Units[i].ID = strings.TrimSpace(seed.Units[i].ID)
	}

	if err := validator.New().Struct(&seed); err != nil {
		return nil, fmt.Errorf("load seed: validate: %w", err)
	}

	if err := uniqueNames(seed); err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	return &seed, nil
}

func uniqueNames(seed FleetSeed) error {
	facilities := make(map[string]struct{}, len(seed.Facilities))
	for _, f := range seed.Facilities {
		if _, dup := facilities[f.Name]; dup {
			return fmt.Errorf("duplicate facility %q", f.Name)
		}
		facilities[f.Name] = struct{}{}
	}

	units := make(map[string]struct{}, len(seed.Units))
	for _, u := range seed.Units {
		if _, dup := units[u.ID]; dup {
			return fmt.Errorf("duplicate unit %q", u.ID)
		}
		units[u.ID] = struct{}{}
	}
	return nil
}

// SeedFromYAML loads the fleet file at path and upserts it.
func SeedFromYAML(ctx context.Context, db *sql.DB, path string) error {
	seed, err := LoadSeed(path)
	if err != nil {
		return err
	}
	return Seed(ctx, db, seed)
}

// Seed upserts every facility and unit in one transaction. Specialties of a
// seeded facility are replaced.
func Seed(ctx context.Context, db *sql.DB, seed *FleetSeed) error {
	if db == nil {
		return errors.New("seed fleet: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed fleet: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsertFacility := `
	INSERT INTO facilities (name, lat, lon, wait_minutes, capacity, occupancy)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (name) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		wait_minutes = EXCLUDED.wait_minutes,
		capacity = EXCLUDED.capacity,
		occupancy = EXCLUDED.occupancy;
	`
	deleteSpecialties := `DELETE FROM facility_specialties WHERE facility_name = $1;`
	insertSpecialty := `INSERT INTO facility_specialties (facility_name, specialty) VALUES ($1, $2);`
	upsertUnit := `
	INSERT INTO units (unit_id, lat, lon, specialty)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (unit_id) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		specialty = EXCLUDED.specialty;
	`

	for _, f := range seed.Facilities {
		if _, err := tx.ExecContext(ctx, upsertFacility,
			f.Name, f.Lat, f.Lon, f.WaitMinutes, f.Capacity, f.Occupancy); err != nil {
			return fmt.Errorf("seed fleet: upsert facility %q: %w", f.Name, err)
		}
		if _, err := tx.ExecContext(ctx, deleteSpecialties, f.Name); err != nil {
			return fmt.Errorf("seed fleet: clear specialties of %q: %w", f.Name, err)
		}
		for _, s := range f.Specialties {
			if _, err := tx.ExecContext(ctx, insertSpecialty, f.Name, s); err != nil {
				return fmt.Errorf("seed fleet: insert specialty %q of %q: %w", s, f.Name, err)
			}
		}
	}

	for _, u := range seed.Units {
		if _, err := tx.ExecContext(ctx, upsertUnit, u.ID, u.Lat, u.Lon, u.Specialty); err != nil {
			return fmt.Errorf("seed fleet: upsert unit %q: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fleet: commit tx: %w", err)
	}

	return nil
}
