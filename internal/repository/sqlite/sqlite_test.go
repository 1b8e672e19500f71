package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/geodata-manager/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database, gone
// when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, username, email string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$notarealhashbutgoodenough",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestGeoData creates a record owned by ownerID and fails the test
// on error.
func createTestGeoData(t *testing.T, db *DB, ownerID, fileName string, fileType model.FileType) *model.GeoData {
	t.Helper()
	record := &model.GeoData{
		OwnerID:   ownerID,
		FileName:  fileName,
		FileType:  fileType,
		FileURL:   "/uploads/test_" + fileName,
		IsVisible: true,
	}
	if err := db.GeoData().Create(context.Background(), record); err != nil {
		t.Fatalf("failed to create test geodata: %v", err)
	}
	return record
}
