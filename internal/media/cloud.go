package media

import "fmt"

// CloudStore is the cloud-mode backend placeholder. The intended contract is
// to accept bytes and return a payload with URL set; until a provider is
// wired, every save fails with ErrNotImplemented. It must never fall back to
// another mode.
type CloudStore struct{}

// NewCloudStore creates the cloud placeholder backend.
func NewCloudStore() *CloudStore {
	return &CloudStore{}
}

// Save always fails with ErrNotImplemented.
func (s *CloudStore) Save(_ []byte, _ FileMetadata, _ ScopeContext, _ string) (MediaPayload, error) {
	return MediaPayload{}, fmt.Errorf("cloud backend: %w; use %q storage in the interim", ErrNotImplemented, StorageModeLocal)
}
