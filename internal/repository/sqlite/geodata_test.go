package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/geodata-manager/internal/apperror"
	"github.com/sakif/geodata-manager/internal/model"
)

func TestGeoDataCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")

	record := &model.GeoData{
		OwnerID:   owner.ID,
		FileName:  "area.geojson",
		FileType:  model.FileTypeGeoJSON,
		FileURL:   "/uploads/x_area.geojson",
		IsVisible: true,
	}
	if err := db.GeoData().Create(context.Background(), record); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if record.ID == "" {
		t.Error("Create() did not set record.ID")
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestGeoDataCreate_RejectsTypeOutsideClosedSet(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")

	record := &model.GeoData{
		OwnerID:  owner.ID,
		FileName: "photo.png",
		FileType: "png", // bypasses ClassifyExtension on purpose
		FileURL:  "/uploads/x_photo.png",
	}
	err := db.GeoData().Create(context.Background(), record)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation from the CHECK constraint", err)
	}
}

func TestGeoDataList_Unscoped(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	createTestGeoData(t, db, alice.ID, "a.kml", model.FileTypeKML)
	hidden := createTestGeoData(t, db, bob.ID, "b.tiff", model.FileTypeTIFF)
	hidden.IsVisible = false
	if err := db.GeoData().Update(context.Background(), hidden); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// The public listing ignores both owner and visibility.
	all, err := db.GeoData().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d records, want 2", len(all))
	}
}

func TestGeoDataListByOwner(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	aliceRec := createTestGeoData(t, db, alice.ID, "a.geojson", model.FileTypeGeoJSON)
	createTestGeoData(t, db, bob.ID, "b.kml", model.FileTypeKML)

	mine, err := db.GeoData().ListByOwner(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("ListByOwner() returned %d records, want 1", len(mine))
	}
	if mine[0].ID != aliceRec.ID {
		t.Errorf("record ID = %q, want %q", mine[0].ID, aliceRec.ID)
	}
}

func TestGeoDataListByOwner_EmptyIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")

	mine, err := db.GeoData().ListByOwner(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if mine == nil || len(mine) != 0 {
		t.Errorf("ListByOwner() = %v, want empty non-nil slice", mine)
	}
}

func TestGeoDataGetByIDAndOwner_ConflatesMissingAndForeign(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	record := createTestGeoData(t, db, alice.ID, "a.kml", model.FileTypeKML)

	// Bob probing Alice's id must look exactly like a nonexistent id.
	_, errForeign := db.GeoData().GetByIDAndOwner(context.Background(), record.ID, bob.ID)
	_, errMissing := db.GeoData().GetByIDAndOwner(context.Background(), "no-such-id", bob.ID)

	if !errors.Is(errForeign, apperror.ErrNotFound) {
		t.Errorf("foreign record error = %v, want ErrNotFound", errForeign)
	}
	if !errors.Is(errMissing, apperror.ErrNotFound) {
		t.Errorf("missing record error = %v, want ErrNotFound", errMissing)
	}
	if errForeign.Error() != errMissing.Error() {
		t.Errorf("messages differ (%q vs %q) — they must be indistinguishable", errForeign, errMissing)
	}
}

func TestGeoDataUpdate_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	record := createTestGeoData(t, db, alice.ID, "parcel.kml", model.FileTypeKML)

	// Owner can update.
	record.FileName = "region.tiff"
	record.FileType = model.FileTypeTIFF
	record.FileURL = "/uploads/x_region.tiff"
	if err := db.GeoData().Update(context.Background(), record); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.GeoData().GetByIDAndOwner(context.Background(), record.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetByIDAndOwner() error = %v", err)
	}
	if got.FileType != model.FileTypeTIFF {
		t.Errorf("FileType = %q, want tiff", got.FileType)
	}
	if got.OwnerID != alice.ID {
		t.Errorf("OwnerID changed to %q", got.OwnerID)
	}

	// A non-owner's update is a not-found.
	foreign := *record
	foreign.OwnerID = bob.ID
	if err := db.GeoData().Update(context.Background(), &foreign); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("non-owner Update() error = %v, want ErrNotFound", err)
	}
}

func TestGeoDataDelete_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	record := createTestGeoData(t, db, alice.ID, "a.geojson", model.FileTypeGeoJSON)

	if err := db.GeoData().Delete(context.Background(), record.ID, bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("non-owner Delete() error = %v, want ErrNotFound", err)
	}

	if err := db.GeoData().Delete(context.Background(), record.ID, alice.ID); err != nil {
		t.Fatalf("owner Delete() error = %v", err)
	}

	if _, err := db.GeoData().GetByIDAndOwner(context.Background(), record.ID, alice.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("record should be gone, got err = %v", err)
	}
}
