// Package upload implements the file-upload gate: a middleware that
// validates an incoming file's extension against the closed set and stages
// the bytes in the FileStore before the handler runs.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/geodata-manager/internal/apperror"
	"github.com/sakif/geodata-manager/internal/model"
	"github.com/sakif/geodata-manager/internal/storage"
)

// fileField is the multipart field name clients send the file under.
// It is "fileUrl" for compatibility with the existing web frontend.
const fileField = "fileUrl"

// maxUploadBytes bounds how much of a multipart body is buffered in
// memory; the rest spills to temp files.
const maxUploadBytes = 32 << 20

// StagedFile is a validated, already-stored upload handed to the handler
// through the request context.
type StagedFile struct {
	FileName string         // original client-supplied name
	FileURL  string         // where the bytes were stored
	FileType model.FileType // classified from the extension
}

type contextKey string

const stagedFileKey contextKey = "stagedFile"

// FileFromContext returns the staged file, if the gate staged one.
func FileFromContext(ctx context.Context) (StagedFile, bool) {
	f, ok := ctx.Value(stagedFileKey).(StagedFile)
	return f, ok
}

// Gate validates and stages the request's file field, if present.
//
// A file whose extension is outside {geojson, kml, tiff} is rejected with
// 400 before anything is persisted and before the handler runs. A valid
// file is streamed into the store and exposed via FileFromContext. A
// request with no file passes through untouched — whether a file is
// required is the handler's decision (create requires one, update does
// not), so one gate serves both routes.
func Gate(store storage.FileStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
				if errors.Is(err, http.ErrNotMultipart) {
					// JSON-only request (e.g. an update with no new file).
					next.ServeHTTP(w, r)
					return
				}
				writeGateError(w, http.StatusBadRequest, "malformed upload: "+err.Error())
				return
			}

			file, header, err := r.FormFile(fileField)
			if err != nil {
				if errors.Is(err, http.ErrMissingFile) {
					next.ServeHTTP(w, r)
					return
				}
				writeGateError(w, http.StatusBadRequest, "malformed upload: "+err.Error())
				return
			}
			defer file.Close()

			fileType, err := model.ClassifyExtension(header.Filename)
			if err != nil {
				writeGateError(w, http.StatusBadRequest, apperror.UnsupportedFile().Message)
				return
			}

			fileURL, err := store.Save(r.Context(), header.Filename, file)
			if err != nil {
				logger.Error("failed to store upload",
					slog.String("fileName", header.Filename),
					slog.String("error", err.Error()),
				)
				writeGateError(w, http.StatusInternalServerError, "failed to store uploaded file")
				return
			}

			staged := StagedFile{
				FileName: header.Filename,
				FileURL:  fileURL,
				FileType: fileType,
			}
			ctx := context.WithValue(r.Context(), stagedFileKey, staged)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeGateError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: false, Message: message})
}
