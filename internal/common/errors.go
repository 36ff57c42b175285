// Package common defines sentinel errors shared across the store and sync
// layers. Callers should match them with errors.Is.
package common

import "errors"

var (
	// ErrNotFound signals a record lookup miss at the repository level.
	ErrNotFound = errors.New("not found")

	// ErrNotPersisted signals that a write did not reach durable storage;
	// the caller must not assume the record exists.
	ErrNotPersisted = errors.New("not persisted")

	// ErrUploadRejected signals a response the uploader could not treat as
	// success (non-2xx status or a missing/unparseable success indicator).
	ErrUploadRejected = errors.New("upload rejected")
)
