// Package sqlite persists the media payload catalog: one record per saved
// payload, including the inline bytes for database-mode saves.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is a catalog row describing one saved media payload. Data holds the
// inline bytes for database-mode payloads; RelPath references the filesystem
// for local-mode payloads.
type Record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	WorkflowID  string    `json:"workflow_id"`
	AgentID     string    `json:"agent_id"`
	FileName    string    `json:"file_name"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StorageMode string    `json:"storage_mode"`
	Checksum    string    `json:"checksum,omitempty"`
	RelPath     string    `json:"path,omitempty"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository stores payload records in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository opens the database at dbPath and ensures the schema exists.
func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) initSchema() error {
	createTableQuery := `
	CREATE TABLE IF NOT EXISTS media_payloads (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		workflow_id TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		storage_mode TEXT NOT NULL,
		checksum TEXT,
		rel_path TEXT,
		data BLOB,
		created_at DATETIME NOT NULL
	);`
	if _, err := r.db.Exec(createTableQuery); err != nil {
		return fmt.Errorf("failed to create media_payloads table: %w", err)
	}

	createIndexesQuery := `
	CREATE INDEX IF NOT EXISTS idx_media_payloads_user ON media_payloads(user_id);
	CREATE INDEX IF NOT EXISTS idx_media_payloads_scope ON media_payloads(user_id, workflow_id, agent_id);
	`
	if _, err := r.db.Exec(createIndexesQuery); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Create stores a payload record.
func (r *Repository) Create(rec *Record) error {
	query := `
	INSERT INTO media_payloads (id, user_id, workflow_id, agent_id, file_name, mime_type, size, storage_mode, checksum, rel_path, data, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		rec.ID,
		rec.UserID,
		rec.WorkflowID,
		rec.AgentID,
		rec.FileName,
		rec.MimeType,
		rec.Size,
		rec.StorageMode,
		rec.Checksum,
		rec.RelPath,
		rec.Data,
		rec.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create payload record: %w", err)
	}

	return nil
}

// FindByID retrieves a payload record by ID.
func (r *Repository) FindByID(id string) (*Record, error) {
	query := `
	SELECT id, user_id, workflow_id, agent_id, file_name, mime_type, size, storage_mode, checksum, rel_path, data, created_at
	FROM media_payloads
	WHERE id = ?
	`

	var rec Record
	var checksum, relPath sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.WorkflowID,
		&rec.AgentID,
		&rec.FileName,
		&rec.MimeType,
		&rec.Size,
		&rec.StorageMode,
		&checksum,
		&relPath,
		&rec.Data,
		&rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("payload record not found")
		}
		return nil, fmt.Errorf("failed to find payload record: %w", err)
	}
	if checksum.Valid {
		rec.Checksum = checksum.String
	}
	if relPath.Valid {
		rec.RelPath = relPath.String
	}

	return &rec, nil
}

// ListByUser retrieves all payload records for a user, newest first. The
// inline bytes are not loaded.
func (r *Repository) ListByUser(userID string) ([]*Record, error) {
	query := `
	SELECT id, user_id, workflow_id, agent_id, file_name, mime_type, size, storage_mode, checksum, rel_path, created_at
	FROM media_payloads
	WHERE user_id = ?
	ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payload records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var checksum, relPath sql.NullString
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.WorkflowID,
			&rec.AgentID,
			&rec.FileName,
			&rec.MimeType,
			&rec.Size,
			&rec.StorageMode,
			&checksum,
			&relPath,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payload row: %w", err)
		}
		if checksum.Valid {
			rec.Checksum = checksum.String
		}
		if relPath.Valid {
			rec.RelPath = relPath.String
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payload rows: %w", err)
	}

	return records, nil
}

// Delete removes a payload record by ID.
func (r *Repository) Delete(id string) error {
	query := `DELETE FROM media_payloads WHERE id = ?`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete payload record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("payload record not found")
	}

	return nil
}

// DeleteByAgentScope removes all records for an agent instance and returns
// the number of rows deleted.
func (r *Repository) DeleteByAgentScope(userID, workflowID, agentID string) (int64, error) {
	query := `DELETE FROM media_payloads WHERE user_id = ? AND workflow_id = ? AND agent_id = ?`

	result, err := r.db.Exec(query, userID, workflowID, agentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payload records: %w", err)
	}
	return result.RowsAffected()
}

// DeleteByWorkflowScope removes all records for a workflow and returns the
// number of rows deleted.
func (r *Repository) DeleteByWorkflowScope(userID, workflowID string) (int64, error) {
	query := `DELETE FROM media_payloads WHERE user_id = ? AND workflow_id = ?`

	result, err := r.db.Exec(query, userID, workflowID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payload records: %w", err)
	}
	return result.RowsAffected()
}
