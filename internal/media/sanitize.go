package media

import "regexp"

// maxFileNameLength bounds sanitized names so derived paths stay well under
// filesystem name limits.
const maxFileNameLength = 100

var (
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	dotRuns         = regexp.MustCompile(`\.{2,}`)
	underscoreRuns  = regexp.MustCompile(`_{2,}`)
)

// SanitizeFileName strips path separators, traversal segments, and any other
// unsafe characters from a user-supplied filename. Every character outside
// [A-Za-z0-9._-] becomes "_", runs of dots and underscores collapse to one,
// and the result is truncated to 100 characters. The output never contains
// "/" or a ".." segment.
func SanitizeFileName(name string) string {
	safe := unsafeNameChars.ReplaceAllString(name, "_")
	safe = dotRuns.ReplaceAllString(safe, ".")
	safe = underscoreRuns.ReplaceAllString(safe, "_")
	if len(safe) > maxFileNameLength {
		safe = safe[:maxFileNameLength]
	}
	if safe == "" || safe == "." {
		safe = "file"
	}
	return safe
}
