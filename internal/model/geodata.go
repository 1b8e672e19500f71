package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileType is the closed set of geospatial formats the service accepts.
// No other value is ever valid — not in the upload gate, not in the store.
type FileType string

const (
	FileTypeGeoJSON FileType = "geojson"
	FileTypeKML     FileType = "kml"
	FileTypeTIFF    FileType = "tiff"
)

// ClassifyExtension maps a file name to its FileType by extension:
// lowercase, leading dot stripped. It is the single source of truth for
// file-type gating — the upload middleware and the update path both call
// it, so the two checks can never drift apart.
//
// "map.GeoJSON" → FileTypeGeoJSON; "photo.png" → error.
func ClassifyExtension(fileName string) (FileType, error) {
	base := filepath.Base(fileName)
	ext := filepath.Ext(base)
	if ext == base {
		// Dotfile like ".kml" — the whole name is the "extension", which
		// means there is no real one.
		ext = ""
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch FileType(ext) {
	case FileTypeGeoJSON, FileTypeKML, FileTypeTIFF:
		return FileType(ext), nil
	}
	return "", fmt.Errorf("model: unsupported file extension %q", ext)
}

// GeoData represents one uploaded geospatial file.
//
// OwnerID is fixed at creation — there is no ownership transfer. FileType
// is always derivable from FileName via ClassifyExtension; records that
// would violate that never reach the store.
type GeoData struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	FileName  string    `json:"fileName"`
	FileType  FileType  `json:"fileType"`
	FileURL   string    `json:"fileUrl"`
	IsVisible bool      `json:"isVisible"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
