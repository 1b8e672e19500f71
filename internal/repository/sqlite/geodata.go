package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/geodata-manager/internal/apperror"
	"github.com/sakif/geodata-manager/internal/model"
	"github.com/sakif/geodata-manager/internal/repository"
)

// GeoDataDB is the geodata repository view over the shared connection pool.
type GeoDataDB struct {
	conn *sql.DB
}

// compile-time check that *GeoDataDB implements repository.GeoDataRepository
var _ repository.GeoDataRepository = (*GeoDataDB)(nil)

const geoDataColumns = `id, owner_id, file_name, file_type, file_url, is_visible, created_at, updated_at`

func scanGeoData(row interface{ Scan(...any) error }, g *model.GeoData) error {
	return row.Scan(
		&g.ID,
		&g.OwnerID,
		&g.FileName,
		&g.FileType,
		&g.FileURL,
		&g.IsVisible,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
}

// Create inserts a new record, generating id and timestamps in place.
// A CHECK violation (file_type outside the closed set) surfaces as a
// validation error rather than a bare driver error.
func (db *GeoDataDB) Create(ctx context.Context, record *model.GeoData) error {
	now := time.Now()
	record.ID = xid.New().String()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO geodata (id, owner_id, file_name, file_type, file_url, is_visible, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.OwnerID,
		record.FileName,
		record.FileType,
		record.FileURL,
		record.IsVisible,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "CHECK constraint failed") {
			return apperror.ValidationFailed("fileType", "file type must be one of geojson, kml, tiff")
		}
		return fmt.Errorf("sqlite: creating geodata: %w", err)
	}

	return nil
}

// List returns every record, newest first, with no owner or visibility
// filter — callers must not assume the output belongs to them.
func (db *GeoDataDB) List(ctx context.Context) ([]model.GeoData, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+geoDataColumns+` FROM geodata ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing geodata: %w", err)
	}
	defer rows.Close()

	return collectGeoData(rows)
}

// ListByOwner returns the caller's records, newest first. No rows is an
// empty slice, not an error.
func (db *GeoDataDB) ListByOwner(ctx context.Context, ownerID string) ([]model.GeoData, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+geoDataColumns+` FROM geodata WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing geodata for owner: %w", err)
	}
	defer rows.Close()

	return collectGeoData(rows)
}

func collectGeoData(rows *sql.Rows) ([]model.GeoData, error) {
	records := make([]model.GeoData, 0)
	for rows.Next() {
		var g model.GeoData
		if err := scanGeoData(rows, &g); err != nil {
			return nil, fmt.Errorf("sqlite: scanning geodata row: %w", err)
		}
		records = append(records, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating geodata: %w", err)
	}
	return records, nil
}

// GetByIDAndOwner looks a record up by id AND owner. A row owned by
// someone else scans as no row at all, so not-found and not-owner are the
// same apperror.NotFound and nothing distinguishes them to the caller.
func (db *GeoDataDB) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*model.GeoData, error) {
	var g model.GeoData

	err := scanGeoData(db.conn.QueryRowContext(ctx,
		`SELECT `+geoDataColumns+` FROM geodata WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	), &g)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("geodata")
		}
		return nil, fmt.Errorf("sqlite: getting geodata %s: %w", id, err)
	}

	return &g, nil
}

// Update writes the mutable fields of a record, scoped to its owner.
// Zero rows affected means not-found-or-not-owner. owner_id, id and
// created_at never change.
func (db *GeoDataDB) Update(ctx context.Context, record *model.GeoData) error {
	record.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE geodata
		 SET file_name = ?, file_type = ?, file_url = ?, is_visible = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		record.FileName,
		record.FileType,
		record.FileURL,
		record.IsVisible,
		record.UpdatedAt,
		record.ID,
		record.OwnerID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "CHECK constraint failed") {
			return apperror.ValidationFailed("fileType", "file type must be one of geojson, kml, tiff")
		}
		return fmt.Errorf("sqlite: updating geodata %s: %w", record.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("geodata")
	}

	return nil
}

// Delete removes a record, scoped to its owner.
func (db *GeoDataDB) Delete(ctx context.Context, id, ownerID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM geodata WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting geodata %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("geodata")
	}

	return nil
}
