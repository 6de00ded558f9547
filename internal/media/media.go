// Package media implements the storage engine for binary artifacts produced
// by workflow agents: validation, checksumming, and dispatch to a storage
// backend selected by the caller's persistence configuration.
package media

import "time"

// StorageMode selects the backend a payload is persisted with.
type StorageMode string

const (
	// StorageModeDatabase embeds the bytes inline in the parent record.
	StorageModeDatabase StorageMode = "database"
	// StorageModeLocal writes the bytes to the local filesystem hierarchy.
	StorageModeLocal StorageMode = "local"
	// StorageModeCloud is a placeholder for a future object-store backend.
	StorageModeCloud StorageMode = "cloud"
)

// FileMetadata is the caller-supplied description of an artifact being saved.
// It is transient; it is not persisted as its own entity.
type FileMetadata struct {
	OriginalName string
	MimeType     string
	Size         int64
	// GeneratedBy identifies the producing agent, if any.
	GeneratedBy string
	// Prompt is the generation prompt text, if any.
	Prompt string
}

// PersistenceConfig carries the caller's storage-mode selection. The logging
// toggles ride along from the caller's workflow settings; the engine ignores
// them.
type PersistenceConfig struct {
	StorageMode StorageMode `json:"storage_mode"`
	LogChats    bool        `json:"log_chats"`
	LogErrors   bool        `json:"log_errors"`
	LogTasks    bool        `json:"log_tasks"`
}

// ScopeContext identifies the hierarchical storage scope of a save call.
type ScopeContext struct {
	UserID          string
	WorkflowID      string
	AgentInstanceID string
}

// MediaPayload is the persisted record returned by a save. Exactly one of
// Data, Path, or URL is set, keyed by StorageMode; use the constructors to
// keep that invariant at construction sites.
type MediaPayload struct {
	MimeType    string            `json:"mime_type"`
	FileName    string            `json:"file_name"`
	Size        int64             `json:"size"`
	StorageMode StorageMode       `json:"storage_mode"`
	Data        []byte            `json:"data,omitempty"`
	Path        string            `json:"path,omitempty"`
	URL         string            `json:"url,omitempty"`
	Checksum    string            `json:"checksum,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewInlinePayload builds a database-mode payload carrying the raw bytes.
func NewInlinePayload(fileName string, meta FileMetadata, data []byte, checksum string) MediaPayload {
	return MediaPayload{
		MimeType:    meta.MimeType,
		FileName:    fileName,
		Size:        int64(len(data)),
		StorageMode: StorageModeDatabase,
		Data:        data,
		Checksum:    checksum,
		Metadata:    payloadMetadata(meta),
	}
}

// NewLocalPayload builds a local-mode payload referencing a relative storage
// path. The path always uses forward-slash separators.
func NewLocalPayload(fileName string, meta FileMetadata, size int64, relPath, checksum string) MediaPayload {
	return MediaPayload{
		MimeType:    meta.MimeType,
		FileName:    fileName,
		Size:        size,
		StorageMode: StorageModeLocal,
		Path:        relPath,
		Checksum:    checksum,
		Metadata:    payloadMetadata(meta),
	}
}

// Backend persists a validated artifact under one storage mode.
type Backend interface {
	// Save persists the bytes and returns the resulting payload. The checksum
	// is precomputed by the router and may be empty when disabled.
	Save(data []byte, meta FileMetadata, scope ScopeContext, checksum string) (MediaPayload, error)
}

func payloadMetadata(meta FileMetadata) map[string]string {
	m := map[string]string{
		"stored_at": time.Now().UTC().Format(time.RFC3339),
	}
	if meta.GeneratedBy != "" {
		m["generated_by"] = meta.GeneratedBy
	}
	if meta.Prompt != "" {
		m["prompt"] = meta.Prompt
	}
	return m
}
