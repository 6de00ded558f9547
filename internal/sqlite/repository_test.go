package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(id, userID, workflowID, agentID string) *Record {
	return &Record{
		ID:          id,
		UserID:      userID,
		WorkflowID:  workflowID,
		AgentID:     agentID,
		FileName:    "art.png",
		MimeType:    "image/png",
		Size:        42,
		StorageMode: "local",
		Checksum:    "deadbeef",
		RelPath:     "users/" + userID + "/workflows/" + workflowID + "/agents/" + agentID + "/2025-03/art.png",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := newTestRepository(t)

	rec := testRecord("id-1", "u1", "w1", "a1")
	rec.Data = []byte{0x89, 0x50, 0x4e, 0x47}
	require.NoError(t, repo.Create(rec))

	got, err := repo.FindByID("id-1")
	require.NoError(t, err)
	assert.Equal(t, rec.FileName, got.FileName)
	assert.Equal(t, rec.MimeType, got.MimeType)
	assert.Equal(t, rec.Size, got.Size)
	assert.Equal(t, rec.StorageMode, got.StorageMode)
	assert.Equal(t, rec.Checksum, got.Checksum)
	assert.Equal(t, rec.RelPath, got.RelPath)
	assert.Equal(t, rec.Data, got.Data)
}

func TestRepositoryFindMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.FindByID("nope")
	assert.Error(t, err)
}

func TestRepositoryListByUser(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(testRecord("id-1", "u1", "w1", "a1")))
	require.NoError(t, repo.Create(testRecord("id-2", "u1", "w2", "a1")))
	require.NoError(t, repo.Create(testRecord("id-3", "u2", "w1", "a1")))

	records, err := repo.ListByUser("u1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "u1", rec.UserID)
		assert.Empty(t, rec.Data)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(testRecord("id-1", "u1", "w1", "a1")))
	require.NoError(t, repo.Delete("id-1"))

	_, err := repo.FindByID("id-1")
	assert.Error(t, err)
	assert.Error(t, repo.Delete("id-1"))
}

func TestRepositoryDeleteByScope(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(testRecord("id-1", "u1", "w1", "a1")))
	require.NoError(t, repo.Create(testRecord("id-2", "u1", "w1", "a1")))
	require.NoError(t, repo.Create(testRecord("id-3", "u1", "w1", "a2")))
	require.NoError(t, repo.Create(testRecord("id-4", "u1", "w2", "a1")))

	count, err := repo.DeleteByAgentScope("u1", "w1", "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.DeleteByWorkflowScope("u1", "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	records, err := repo.ListByUser("u1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "id-4", records[0].ID)
}
