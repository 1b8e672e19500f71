package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/geodata-manager/internal/client"
	"github.com/sakif/geodata-manager/internal/server"
	"github.com/sakif/geodata-manager/internal/storage/disk"
)

// newTestClient runs the real server over an in-memory database and a
// temp-dir file store, and returns a client pointed at it.
func newTestClient(t *testing.T) *client.Client {
	t.Helper()

	dir := t.TempDir()
	store, err := disk.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := server.New(server.Config{
		Port:      0,
		DBPath:    ":memory:",
		JWTSecret: "test-secret-at-least-16-chars!!",
		UploadDir: filepath.Join(dir, "uploads"),
	}, store, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return client.New(ts.URL, filepath.Join(dir, "session", "token"))
}

func register(t *testing.T, c *client.Client) {
	t.Helper()
	ctx := context.Background()
	_, err := c.Register(ctx, "alice", "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	_, err = c.Login(ctx, "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)
}

func writeSample(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), 0o600))
	return path
}

func TestClient_LoginAndAccount(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	assert.False(t, c.Authenticated())

	_, err := c.Register(ctx, "alice", "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	_, err = c.Login(ctx, "alice@example.com", "wrong-password")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	user, err := c.Login(ctx, "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, c.Authenticated())

	account, err := c.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)

	require.NoError(t, c.Logout())
	assert.False(t, c.Authenticated())

	_, err = c.Account(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestClient_UploadAndManage(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	register(t, c)

	record, err := c.Upload(ctx, writeSample(t, "parcels.geojson"))
	require.NoError(t, err)
	assert.Equal(t, "parcels.geojson", record.FileName)
	assert.Equal(t, "geojson", string(record.FileType))

	_, err = c.Upload(ctx, writeSample(t, "photo.png"))
	assert.ErrorIs(t, err, client.ErrBadRequest)

	mine, err := c.Mine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	all, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	renamed, err := c.Rename(ctx, record.ID, "renamed.geojson")
	require.NoError(t, err)
	assert.Equal(t, "renamed.geojson", renamed.FileName)

	visible, err := c.Toggle(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, visible)

	require.NoError(t, c.Delete(ctx, record.ID))

	err = c.Delete(ctx, record.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestClient_SessionPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	store, err := disk.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := server.New(server.Config{
		DBPath:    ":memory:",
		JWTSecret: "test-secret-at-least-16-chars!!",
		UploadDir: filepath.Join(dir, "uploads"),
	}, store, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	tokenPath := filepath.Join(dir, "token")
	ctx := context.Background()

	first := client.New(ts.URL, tokenPath)
	_, err = first.Register(ctx, "alice", "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	_, err = first.Login(ctx, "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	// A fresh instance picks up the stored token.
	second := client.New(ts.URL, tokenPath)
	assert.True(t, second.Authenticated())

	account, err := second.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
}

func TestAPIError_Unwrap(t *testing.T) {
	err := &client.APIError{Kind: client.ErrNotFound, Message: "geodata not found"}
	assert.True(t, errors.Is(err, client.ErrNotFound))
	assert.Contains(t, err.Error(), "geodata not found")
}
