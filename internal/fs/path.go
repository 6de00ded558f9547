package fs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/atelierflow/media-stash/internal/media"
)

// ScopeDir derives the relative storage directory for a scope at the given
// time: users/{user}/workflows/{workflow}/agents/{agent}/{YYYY-MM}. The
// result always uses forward-slash separators.
func ScopeDir(scope media.ScopeContext, at time.Time) string {
	return path.Join(
		"users", scope.UserID,
		"workflows", scope.WorkflowID,
		"agents", scope.AgentInstanceID,
		at.Format("2006-01"),
	)
}

// UniqueFileName sanitizes the base name and appends a millisecond timestamp
// plus eight random hex characters before the original extension, so
// concurrent uploads with identical names never collide.
func UniqueFileName(original string) string {
	safe := media.SanitizeFileName(original)
	ext := path.Ext(safe)
	base := strings.TrimSuffix(safe, ext)
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixMilli(), randomHex(4), ext)
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
