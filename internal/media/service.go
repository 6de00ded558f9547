package media

import "log/slog"

// Options are the constructor-time toggles of the storage engine.
type Options struct {
	// ValidateMime enables the allow-list check on save.
	ValidateMime bool
	// GenerateChecksums enables SHA-256 digests on save.
	GenerateChecksums bool
}

// Service is the storage router: it validates input, computes the checksum,
// and dispatches to the backend selected by the caller's configuration.
// Construct one per process (or per test) and pass it to consumers.
type Service struct {
	backends map[StorageMode]Backend
	opts     Options
	logger   *slog.Logger
}

// NewService creates a storage router over the given backends, keyed by mode.
func NewService(log *slog.Logger, opts Options, backends map[StorageMode]Backend) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		backends: backends,
		opts:     opts,
		logger:   log.With(slog.String("service", "media")),
	}
}

// Save persists an artifact under the configured storage mode and returns the
// resulting payload. Validation errors (invalid MIME type, invalid mode,
// oversize inline payload) reach the caller unmodified; backend I/O errors
// are propagated unchanged.
func (s *Service) Save(data []byte, meta FileMetadata, cfg PersistenceConfig, scope ScopeContext) (MediaPayload, error) {
	if s.opts.ValidateMime {
		if err := ValidateMimeType(meta.MimeType); err != nil {
			return MediaPayload{}, err
		}
	}

	var checksum string
	if s.opts.GenerateChecksums {
		checksum = Digest(data)
	}

	backend, ok := s.backends[cfg.StorageMode]
	if !ok {
		return MediaPayload{}, &InvalidStorageModeError{Mode: string(cfg.StorageMode)}
	}

	payload, err := backend.Save(data, meta, scope, checksum)
	if err != nil {
		return MediaPayload{}, err
	}

	s.logger.Info("media saved",
		"file_name", payload.FileName,
		"storage_mode", payload.StorageMode,
		"size", payload.Size,
		"user_id", scope.UserID,
		"workflow_id", scope.WorkflowID,
	)
	return payload, nil
}
