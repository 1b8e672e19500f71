// Package main is the entry point for the geodata manager server.
//
// Configuration is read from environment variables:
//
//	PORT            listen port (default 8080)
//	DB_PATH         sqlite database file (default data/geodata.db)
//	JWT_SECRET      token signing secret, at least 16 bytes (required)
//	STORAGE_BACKEND "disk" (default) or "s3"
//	UPLOAD_DIR      local upload directory for the disk backend (default data/uploads)
//	S3_REGION, S3_BUCKET, S3_ACCESS_KEY, S3_SECRET_KEY
//	                s3 backend settings
//	S3_ENDPOINT     optional custom endpoint for MinIO or compatible stores
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/geodata-manager/internal/server"
	"github.com/sakif/geodata-manager/internal/storage"
	"github.com/sakif/geodata-manager/internal/storage/disk"
	"github.com/sakif/geodata-manager/internal/storage/s3"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/geodata.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required; generate one with: openssl rand -hex 32")
		os.Exit(1)
	}

	files, uploadDir, err := buildFileStore(logger)
	if err != nil {
		logger.Error("failed to set up file storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg := server.Config{
		Port:      port,
		DBPath:    dbPath,
		JWTSecret: jwtSecret,
		UploadDir: uploadDir,
	}

	srv, err := server.New(cfg, files, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildFileStore picks the storage backend from STORAGE_BACKEND. The
// returned dir is non-empty only for the disk backend, where the server
// must serve /uploads/* itself.
func buildFileStore(logger *slog.Logger) (storage.FileStore, string, error) {
	switch backend := os.Getenv("STORAGE_BACKEND"); backend {
	case "", "disk":
		uploadDir := "data/uploads"
		if envDir := os.Getenv("UPLOAD_DIR"); envDir != "" {
			uploadDir = envDir
		}
		store, err := disk.New(uploadDir)
		if err != nil {
			return nil, "", err
		}
		logger.Info("using disk storage", slog.String("dir", uploadDir))
		return store, uploadDir, nil

	case "s3":
		cfg := s3.Config{
			Region:       os.Getenv("S3_REGION"),
			Bucket:       os.Getenv("S3_BUCKET"),
			AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("S3_SECRET_KEY"),
			BaseEndpoint: os.Getenv("S3_ENDPOINT"),
		}
		store, err := s3.New(context.Background(), cfg)
		if err != nil {
			return nil, "", err
		}
		logger.Info("using s3 storage", slog.String("bucket", cfg.Bucket))
		return store, "", nil

	default:
		logger.Error("unknown STORAGE_BACKEND", slog.String("value", backend))
		os.Exit(1)
		return nil, "", nil
	}
}
