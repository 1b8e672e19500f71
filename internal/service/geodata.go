// Package service contains the business logic layer: ownership rules,
// validation, and orchestration between repositories and file storage.
// Handlers parse HTTP and delegate here; repositories only touch SQL.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/geodata-manager/internal/apperror"
	"github.com/sakif/geodata-manager/internal/model"
	"github.com/sakif/geodata-manager/internal/repository"
	"github.com/sakif/geodata-manager/internal/storage"
)

// GeoDataService implements the ownership-scoped operations over geodata
// records. Every mutation takes the caller's identity and scopes the
// lookup by it — a non-owner's request is indistinguishable from a
// nonexistent id.
type GeoDataService struct {
	repo   repository.GeoDataRepository
	files  storage.FileStore
	logger *slog.Logger
}

func NewGeoDataService(repo repository.GeoDataRepository, files storage.FileStore, logger *slog.Logger) *GeoDataService {
	return &GeoDataService{
		repo:   repo,
		files:  files,
		logger: logger,
	}
}

// GeoDataUpdate carries the optional fields of an update request. Nil/empty
// means "leave unchanged". NewFileName/NewFileURL describe a replacement
// file already staged by the upload gate.
type GeoDataUpdate struct {
	FileName    *string
	IsVisible   *bool
	NewFileName string
	NewFileURL  string
}

// Create persists a new record owned by ownerID. The file type is derived
// here from the file name with the same classifier the upload gate uses,
// so the two checks cannot disagree.
func (s *GeoDataService) Create(ctx context.Context, ownerID, fileName, fileURL string) (*model.GeoData, error) {
	if strings.TrimSpace(fileName) == "" || strings.TrimSpace(fileURL) == "" {
		return nil, apperror.MissingFile()
	}

	fileType, err := model.ClassifyExtension(fileName)
	if err != nil {
		return nil, apperror.UnsupportedFile()
	}

	record := &model.GeoData{
		OwnerID:   ownerID,
		FileName:  fileName,
		FileType:  fileType,
		FileURL:   fileURL,
		IsVisible: true,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create geodata",
			slog.String("ownerID", ownerID),
			slog.String("fileName", fileName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating geodata: %w", err)
	}

	s.logger.Info("geodata created",
		slog.String("id", record.ID),
		slog.String("ownerID", ownerID),
		slog.String("fileType", string(record.FileType)),
	)

	return record, nil
}

// List returns every record regardless of owner or visibility. This is
// the one unscoped read — an intentional public listing.
func (s *GeoDataService) List(ctx context.Context) ([]model.GeoData, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list geodata", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing geodata: %w", err)
	}
	return records, nil
}

// Mine returns the caller's records. An empty result is an empty slice,
// never an error.
func (s *GeoDataService) Mine(ctx context.Context, ownerID string) ([]model.GeoData, error) {
	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list owned geodata",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing owned geodata: %w", err)
	}
	return records, nil
}

// Update merges the supplied fields over the stored record and persists
// it. A replacement file's fields win over body fields, which win over
// stored values. Any resulting file name must classify into the closed
// set; OwnerID never changes.
func (s *GeoDataService) Update(ctx context.Context, ownerID, id string, in GeoDataUpdate) (*model.GeoData, error) {
	record, err := s.repo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if in.FileName != nil {
		record.FileName = *in.FileName
	}
	if in.IsVisible != nil {
		record.IsVisible = *in.IsVisible
	}
	if in.NewFileName != "" {
		record.FileName = in.NewFileName
		record.FileURL = in.NewFileURL
	}

	// Re-derive the type from whatever name the record ends up with —
	// same predicate as the gate, so a rename cannot smuggle in a type
	// outside the closed set.
	fileType, err := model.ClassifyExtension(record.FileName)
	if err != nil {
		return nil, apperror.UnsupportedFile()
	}
	record.FileType = fileType

	if err := s.repo.Update(ctx, record); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("failed to update geodata",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating geodata: %w", err)
	}

	s.logger.Info("geodata updated", slog.String("id", record.ID))
	return record, nil
}

// ToggleVisibility flips the record's visibility and returns the new
// value only.
func (s *GeoDataService) ToggleVisibility(ctx context.Context, ownerID, id string) (bool, error) {
	record, err := s.repo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return false, err
	}

	record.IsVisible = !record.IsVisible
	if err := s.repo.Update(ctx, record); err != nil {
		if isDomainError(err) {
			return false, err
		}
		s.logger.Error("failed to toggle geodata visibility",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("toggling geodata visibility: %w", err)
	}

	return record.IsVisible, nil
}

// Delete removes the record, then deletes the stored bytes as best-effort
// cleanup. The record goes first: a failure between the two effects leaves
// an orphan file (harmless, sweepable) rather than a record pointing at
// nothing.
func (s *GeoDataService) Delete(ctx context.Context, ownerID, id string) error {
	record, err := s.repo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	key := storage.KeyFromURL(record.FileURL)
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete stored file, leaving orphan",
			slog.String("id", id),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("geodata deleted", slog.String("id", id))
	return nil
}

// isDomainError reports whether err is one of our domain errors (already
// carrying the right HTTP mapping) as opposed to an unexpected store
// failure.
func isDomainError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
