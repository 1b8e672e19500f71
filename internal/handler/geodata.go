package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/geodata-manager/internal/apperror"
	"github.com/sakif/geodata-manager/internal/auth"
	"github.com/sakif/geodata-manager/internal/model"
	"github.com/sakif/geodata-manager/internal/service"
	"github.com/sakif/geodata-manager/internal/upload"
)

// GeoDataHandler serves the geodata CRUD endpoints. File uploads arrive
// pre-validated and pre-stored by the upload gate middleware; handlers
// only see the staged result in the request context.
type GeoDataHandler struct {
	geodata *service.GeoDataService
	logger  *slog.Logger
}

func NewGeoDataHandler(geodata *service.GeoDataService, logger *slog.Logger) *GeoDataHandler {
	return &GeoDataHandler{geodata: geodata, logger: logger}
}

type geoDataResponse struct {
	envelope
	GeoData *model.GeoData `json:"geoData"`
}

type geoDataListResponse struct {
	envelope
	GeoData []model.GeoData `json:"geoData"`
}

type toggleResponse struct {
	envelope
	IsVisible bool `json:"isVisible"`
}

// HandleUpload creates a record from the staged file.
//
// POST /api/geoData/upload
func (h *GeoDataHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("token is required"))
		return
	}

	staged, ok := upload.FileFromContext(r.Context())
	if !ok {
		writeError(w, apperror.MissingFile())
		return
	}

	record, err := h.geodata.Create(r.Context(), userID, staged.FileName, staged.FileURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, geoDataResponse{
		envelope: envelope{Success: true, Message: "file uploaded successfully"},
		GeoData:  record,
	})
}

// HandleList returns every record, any owner, any visibility.
//
// GET /api/geoData/list
func (h *GeoDataHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.geodata.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, geoDataListResponse{
		envelope: envelope{Success: true, Message: "geodata fetched successfully"},
		GeoData:  records,
	})
}

// HandleMine returns the caller's records.
//
// GET /api/geoData/my-geodata
func (h *GeoDataHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("token is required"))
		return
	}

	records, err := h.geodata.Mine(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, geoDataListResponse{
		envelope: envelope{Success: true, Message: "geodata fetched successfully"},
		GeoData:  records,
	})
}

// HandleUpdate merges body fields (and an optional replacement file)
// into an owned record.
//
// PUT /api/geoData/{id}
func (h *GeoDataHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("token is required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "geodata id is required"})
		return
	}

	in, err := h.decodeUpdate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
		return
	}

	record, err := h.geodata.Update(r.Context(), userID, id, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, geoDataResponse{
		envelope: envelope{Success: true, Message: "geodata updated successfully"},
		GeoData:  record,
	})
}

// decodeUpdate reads the optional fields from either the multipart form
// (when a replacement file was sent) or a JSON body.
func (h *GeoDataHandler) decodeUpdate(r *http.Request) (service.GeoDataUpdate, error) {
	var in service.GeoDataUpdate

	if staged, ok := upload.FileFromContext(r.Context()); ok {
		in.NewFileName = staged.FileName
		in.NewFileURL = staged.FileURL
	}

	if r.MultipartForm != nil {
		if v := r.FormValue("fileName"); v != "" {
			in.FileName = &v
		}
		if v := r.FormValue("isVisible"); v != "" {
			visible, err := strconv.ParseBool(v)
			if err != nil {
				return in, errors.New("isVisible must be a boolean")
			}
			in.IsVisible = &visible
		}
		return in, nil
	}

	// An empty body is a valid no-op update.
	var body struct {
		FileName  *string `json:"fileName"`
		IsVisible *bool   `json:"isVisible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return in, errors.New("invalid JSON body")
	}
	in.FileName = body.FileName
	in.IsVisible = body.IsVisible
	return in, nil
}

// HandleToggle flips the record's visibility.
//
// PATCH /api/geoData/{id}/toggle
func (h *GeoDataHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("token is required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "geodata id is required"})
		return
	}

	visible, err := h.geodata.ToggleVisibility(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{
		envelope:  envelope{Success: true, Message: "visibility toggled successfully"},
		IsVisible: visible,
	})
}

// HandleDelete removes an owned record and its stored file.
//
// DELETE /api/geoData/{id}
func (h *GeoDataHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("token is required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "geodata id is required"})
		return
	}

	if err := h.geodata.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "geodata deleted successfully"})
}
