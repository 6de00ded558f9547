package media

// allowedMimeTypes is the fixed allow-list of media formats agents may
// persist. Matching is exact string equality; no wildcard or prefix matching,
// so a disguised executable cannot pass as "image/png; charset=x" or similar.
var allowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
	"video/mp4",
	"video/webm",
	"application/pdf",
}

// AllowedMimeTypes returns a copy of the allow-list.
func AllowedMimeTypes() []string {
	out := make([]string, len(allowedMimeTypes))
	copy(out, allowedMimeTypes)
	return out
}

// ValidateMimeType checks a declared content type against the allow-list.
func ValidateMimeType(mimeType string) error {
	for _, allowed := range allowedMimeTypes {
		if mimeType == allowed {
			return nil
		}
	}
	return &InvalidMimeTypeError{Received: mimeType, Allowed: AllowedMimeTypes()}
}
