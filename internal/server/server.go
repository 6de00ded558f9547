// Package server is the HTTP boundary consuming the storage engine. It
// extracts bytes, metadata, and scope from authenticated requests, calls the
// storage router, and records the resulting payloads in the catalog.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/atelierflow/media-stash/internal/fs"
	"github.com/atelierflow/media-stash/internal/media"
	"github.com/atelierflow/media-stash/internal/sqlite"
)

type Config struct {
	AdminToken        string `env:"MEDIA_STASH_ADMIN_TOKEN,required"`
	Addr              string `env:"MEDIA_STASH_ADDR" envDefault:":8080"`
	StorageRoot       string `env:"MEDIA_STASH_STORAGE_ROOT,required"`
	DBPath            string `env:"MEDIA_STASH_DB_PATH,required"`
	MaxBodySize       int64  `env:"MEDIA_STASH_MAX_BODY_SIZE" envDefault:"67108864"`
	AutoCreateDirs    bool   `env:"MEDIA_STASH_AUTO_CREATE_DIRS" envDefault:"true"`
	ValidateMime      bool   `env:"MEDIA_STASH_VALIDATE_MIME" envDefault:"true"`
	GenerateChecksums bool   `env:"MEDIA_STASH_GENERATE_CHECKSUMS" envDefault:"true"`
}

func New(cfg *Config) *http.Server {
	// Initialize structured logger with JSON handler
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize the local backend and the payload catalog
	storage := fs.NewStorage(logger, cfg.StorageRoot, cfg.AutoCreateDirs)
	repo, err := sqlite.NewRepository(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize repository", "error", err)
		panic(fmt.Sprintf("Failed to initialize repository: %v", err))
	}

	// Initialize the storage router with one backend per mode
	router := media.NewService(logger, media.Options{
		ValidateMime:      cfg.ValidateMime,
		GenerateChecksums: cfg.GenerateChecksums,
	}, map[media.StorageMode]media.Backend{
		media.StorageModeDatabase: media.NewInlineStore(),
		media.StorageModeLocal:    storage,
		media.StorageModeCloud:    media.NewCloudStore(),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthz)
	mux.HandleFunc("POST /v1/media", auth(cfg.AdminToken, saveMedia(router, storage, repo)))
	mux.HandleFunc("GET /v1/media/{id}", auth(cfg.AdminToken, downloadMedia(storage, repo)))
	mux.HandleFunc("DELETE /v1/media/{id}", auth(cfg.AdminToken, deleteMedia(storage, repo)))
	mux.HandleFunc("GET /v1/users/{id}/media", auth(cfg.AdminToken, listUserMedia(repo)))
	mux.HandleFunc("GET /v1/users/{id}/stats", auth(cfg.AdminToken, userStats(storage)))
	mux.HandleFunc("DELETE /v1/scopes/agents", auth(cfg.AdminToken, deleteAgentScope(storage, repo)))
	mux.HandleFunc("DELETE /v1/scopes/workflows", auth(cfg.AdminToken, deleteWorkflowScope(storage, repo)))

	// Wrap the handler with logging middleware
	handler := loggingMiddleware(limitBody(mux, cfg.MaxBodySize))

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// errorResponse is the JSON error body. Details carries the structured
// fields of validation errors so clients can render actionable messages.
type errorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message, Details: details}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// writeSaveError maps engine errors to HTTP responses, preserving the
// structured detail of validation errors.
func writeSaveError(w http.ResponseWriter, err error) {
	var mimeErr *media.InvalidMimeTypeError
	var modeErr *media.InvalidStorageModeError
	var sizeErr *media.FileTooLargeError

	switch {
	case errors.As(err, &mimeErr):
		writeError(w, http.StatusUnsupportedMediaType, err.Error(), map[string]any{
			"received": mimeErr.Received,
			"allowed":  mimeErr.Allowed,
		})
	case errors.As(err, &modeErr):
		writeError(w, http.StatusBadRequest, err.Error(), map[string]any{
			"mode": modeErr.Mode,
		})
	case errors.As(err, &sizeErr):
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large for inline storage: %s exceeds the %s limit",
				humanize.IBytes(uint64(sizeErr.Size)), humanize.IBytes(uint64(sizeErr.MaxSize))),
			map[string]any{
				"size":        sizeErr.Size,
				"maxSize":     sizeErr.MaxSize,
				"recommended": sizeErr.Recommended,
			})
	case errors.Is(err, media.ErrNotImplemented):
		writeError(w, http.StatusNotImplemented, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Save failed", nil)
	}
}

func saveMedia(router *media.Service, storage *fs.Storage, repo *sqlite.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse multipart form
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			status := http.StatusBadRequest
			message := "Failed to parse multipart form"
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				status = http.StatusRequestEntityTooLarge
				message = "Request entity too large"
			}
			writeError(w, status, message, nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No file provided", nil)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read file", nil)
			return
		}

		scope := media.ScopeContext{
			UserID:          r.FormValue("user_id"),
			WorkflowID:      r.FormValue("workflow_id"),
			AgentInstanceID: r.FormValue("agent_id"),
		}
		if scope.UserID == "" || scope.WorkflowID == "" || scope.AgentInstanceID == "" {
			writeError(w, http.StatusBadRequest, "user_id, workflow_id and agent_id are required", nil)
			return
		}

		mimeType := r.FormValue("mime_type")
		if mimeType == "" {
			mimeType = header.Header.Get("Content-Type")
		}

		meta := media.FileMetadata{
			OriginalName: header.Filename,
			MimeType:     mimeType,
			Size:         int64(len(data)),
			GeneratedBy:  r.FormValue("generated_by"),
			Prompt:       r.FormValue("prompt"),
		}
		cfg := media.PersistenceConfig{StorageMode: media.StorageMode(r.FormValue("mode"))}

		payload, err := router.Save(data, meta, cfg, scope)
		if err != nil {
			slog.Error("Save failed", "error", err, "filename", header.Filename)
			writeSaveError(w, err)
			return
		}

		rec := &sqlite.Record{
			ID:          uuid.NewString(),
			UserID:      scope.UserID,
			WorkflowID:  scope.WorkflowID,
			AgentID:     scope.AgentInstanceID,
			FileName:    payload.FileName,
			MimeType:    payload.MimeType,
			Size:        payload.Size,
			StorageMode: string(payload.StorageMode),
			Checksum:    payload.Checksum,
			RelPath:     payload.Path,
			Data:        payload.Data,
			CreatedAt:   time.Now().UTC(),
		}
		if err := repo.Create(rec); err != nil {
			// Roll back the filesystem write if the catalog insert fails
			if payload.Path != "" {
				storage.DeleteFile(payload.Path)
			}
			slog.Error("Failed to record payload", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to record payload", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(rec); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

func downloadMedia(storage *fs.Storage, repo *sqlite.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		rec, err := repo.FindByID(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "Media not found", nil)
			return
		}

		var data []byte
		switch media.StorageMode(rec.StorageMode) {
		case media.StorageModeDatabase:
			data = rec.Data
		case media.StorageModeLocal:
			data, err = storage.Read(rec.RelPath)
			if err != nil {
				if errors.Is(err, media.ErrFileNotFound) {
					writeError(w, http.StatusNotFound, "Media not found", nil)
					return
				}
				slog.Error("Read failed", "error", err, "media_id", id)
				writeError(w, http.StatusInternalServerError, "Read failed", nil)
				return
			}
		default:
			writeError(w, http.StatusNotImplemented, "Storage mode not supported for download", nil)
			return
		}

		w.Header().Set("Content-Type", rec.MimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.FileName))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			slog.Error("Failed to write response", "error", err)
		}
	}
}

func deleteMedia(storage *fs.Storage, repo *sqlite.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("Deleting media", "media_id", id)

		rec, err := repo.FindByID(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "Media not found", nil)
			return
		}

		if rec.RelPath != "" {
			storage.DeleteFile(rec.RelPath)
		}
		if err := repo.Delete(id); err != nil {
			slog.Error("Delete failed", "error", err, "media_id", id)
			writeError(w, http.StatusInternalServerError, "Delete failed", nil)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func listUserMedia(repo *sqlite.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("id")

		records, err := repo.ListByUser(userID)
		if err != nil {
			slog.Error("List media failed", "error", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "Failed to list media", nil)
			return
		}
		if records == nil {
			records = []*sqlite.Record{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(records); err != nil {
			slog.Error("Failed to encode media list", "error", err)
		}
	}
}

func userStats(storage *fs.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("id")

		stats := storage.UserStorageStats(userID)
		slog.Info("User storage stats",
			"user_id", userID,
			"total_files", stats.TotalFiles,
			"total_size", humanize.IBytes(uint64(stats.TotalSize)),
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			slog.Error("Failed to encode stats", "error", err)
		}
	}
}

func deleteAgentScope(storage *fs.Storage, repo *sqlite.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		workflowID := r.URL.Query().Get("workflow_id")
		agentID := r.URL.Query().Get("agent_id")
		if userID == "" || workflowID == "" || agentID == "" {
			writeError(w, http.StatusBadRequest, "user_id, workflow_id and agent_id are required", nil)
			return
		}

		count := storage.DeleteAgentScope(userID, workflowID, agentID)
		if _, err := repo.DeleteByAgentScope(userID, workflowID, agentID); err != nil {
			slog.Warn("Failed to purge catalog records", "error", err)
		}

		writeDeletedCount(w, count)
	}
}

func deleteWorkflowScope(storage *fs.Storage, repo *sqlite.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		workflowID := r.URL.Query().Get("workflow_id")
		if userID == "" || workflowID == "" {
			writeError(w, http.StatusBadRequest, "user_id and workflow_id are required", nil)
			return
		}

		count := storage.DeleteWorkflowScope(userID, workflowID)
		if _, err := repo.DeleteByWorkflowScope(userID, workflowID); err != nil {
			slog.Warn("Failed to purge catalog records", "error", err)
		}

		writeDeletedCount(w, count)
	}
}

func writeDeletedCount(w http.ResponseWriter, count int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]int{"deleted_files": count}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
