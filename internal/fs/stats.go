package fs

import (
	"os"
	"path"
	"path/filepath"
)

// WorkflowStats is the per-workflow usage breakdown.
type WorkflowStats struct {
	Files int   `json:"files"`
	Size  int64 `json:"size"`
}

// UserStats aggregates storage usage for one user.
type UserStats struct {
	TotalFiles int                      `json:"total_files"`
	TotalSize  int64                    `json:"total_size"`
	ByWorkflow map[string]WorkflowStats `json:"by_workflow"`
}

// UserStorageStats walks the user's storage subtree and sums file counts and
// byte sizes per workflow. An absent user directory yields all-zero stats;
// unreadable subpaths contribute zero rather than aborting the aggregation.
func (s *Storage) UserStorageStats(userID string) UserStats {
	stats := UserStats{ByWorkflow: make(map[string]WorkflowStats)}

	relWorkflows := path.Join("users", userID, "workflows")
	entries, err := os.ReadDir(filepath.Join(s.root, filepath.FromSlash(relWorkflows)))
	if err != nil {
		return stats
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, size := s.sumTree(path.Join(relWorkflows, entry.Name()))
		stats.ByWorkflow[entry.Name()] = WorkflowStats{Files: files, Size: size}
		stats.TotalFiles += files
		stats.TotalSize += size
	}
	return stats
}

// sumTree recursively counts files and bytes beneath a relative directory.
func (s *Storage) sumTree(relDir string) (int, int64) {
	abs := filepath.Join(s.root, filepath.FromSlash(relDir))

	entries, err := os.ReadDir(abs)
	if err != nil {
		return 0, 0
	}

	files := 0
	var size int64
	for _, entry := range entries {
		if entry.IsDir() {
			f, b := s.sumTree(path.Join(relDir, entry.Name()))
			files += f
			size += b
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		size += info.Size()
	}
	return files, size
}
