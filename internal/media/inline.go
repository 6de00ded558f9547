package media

// MaxInlineBytes is the hard ceiling for database-mode payloads. The
// embedding destination is a BSON document store with a 16 MiB per-document
// limit; oversize payloads are rejected here rather than on embed.
const MaxInlineBytes = 16 << 20

// InlineStore is the database-mode backend. It encodes small payloads for
// embedding directly in a parent record.
type InlineStore struct{}

// NewInlineStore creates an inline (database-mode) backend.
func NewInlineStore() *InlineStore {
	return &InlineStore{}
}

// Save returns a payload carrying the raw bytes. A payload of exactly
// MaxInlineBytes is accepted; one byte more fails with FileTooLargeError.
// The scope is unused: inline payloads have no shared namespace, so the
// sanitized original name needs no uniquification.
func (s *InlineStore) Save(data []byte, meta FileMetadata, _ ScopeContext, checksum string) (MediaPayload, error) {
	if int64(len(data)) > MaxInlineBytes {
		return MediaPayload{}, &FileTooLargeError{
			Size:        int64(len(data)),
			MaxSize:     MaxInlineBytes,
			Recommended: []StorageMode{StorageModeLocal, StorageModeCloud},
		}
	}
	return NewInlinePayload(SanitizeFileName(meta.OriginalName), meta, data, checksum), nil
}
