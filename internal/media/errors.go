package media

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers match with errors.Is.
var (
	// ErrFileNotFound reports a read or delete for a path that does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrNotImplemented reports a save against the cloud placeholder backend;
	// use local storage until a provider is wired.
	ErrNotImplemented = errors.New("cloud storage is not implemented")
)

// InvalidMimeTypeError reports a declared MIME type outside the allow-list.
type InvalidMimeTypeError struct {
	Received string
	Allowed  []string
}

func (e *InvalidMimeTypeError) Error() string {
	return fmt.Sprintf("invalid mime type %q: allowed types are %v", e.Received, e.Allowed)
}

// InvalidStorageModeError reports an unrecognized storage-mode value.
type InvalidStorageModeError struct {
	Mode string
}

func (e *InvalidStorageModeError) Error() string {
	return fmt.Sprintf("invalid storage mode %q", e.Mode)
}

// FileTooLargeError reports a database-mode payload exceeding the inline
// ceiling. Recommended lists the modes that accept payloads of this size.
type FileTooLargeError struct {
	Size        int64
	MaxSize     int64
	Recommended []StorageMode
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large for inline storage: %d bytes exceeds the %d byte limit", e.Size, e.MaxSize)
}

// WriteError reports a failed filesystem write. Path is the attempted
// relative path; the underlying cause is preserved for logging.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports a failed filesystem read for a reason other than absence.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
