package fs

import (
	"os"
	"path"
	"path/filepath"
)

// DeleteAgentScope removes every file under an agent instance's subtree and
// returns the number of files deleted. An absent scope yields 0.
func (s *Storage) DeleteAgentScope(userID, workflowID, agentInstanceID string) int {
	return s.deleteTree(path.Join("users", userID, "workflows", workflowID, "agents", agentInstanceID))
}

// DeleteWorkflowScope removes every file under a workflow's subtree and
// returns the number of files deleted. An absent scope yields 0.
func (s *Storage) DeleteWorkflowScope(userID, workflowID string) int {
	return s.deleteTree(path.Join("users", userID, "workflows", workflowID))
}

// deleteTree recursively deletes the subtree at the given relative path,
// counting removed files. Partial failures are logged and skipped rather
// than aborting the walk; emptied directories are removed on the way out.
func (s *Storage) deleteTree(relDir string) int {
	abs := filepath.Join(s.root, filepath.FromSlash(relDir))

	entries, err := os.ReadDir(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cleanup: list directory failed", "path", relDir, "error", err)
		}
		return 0
	}

	count := 0
	for _, entry := range entries {
		relChild := path.Join(relDir, entry.Name())
		if entry.IsDir() {
			count += s.deleteTree(relChild)
			continue
		}
		if err := os.Remove(filepath.Join(abs, entry.Name())); err != nil {
			s.logger.Warn("cleanup: delete file failed", "path", relChild, "error", err)
			continue
		}
		count++
	}

	// Remove the directory itself; it fails harmlessly if a child survived.
	_ = os.Remove(abs)

	return count
}
