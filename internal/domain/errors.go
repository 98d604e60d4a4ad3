package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Store errors
	ErrMsgStoreUnavailable = "progression store unavailable"
	ErrMsgUserNotFound     = "user not found"

	// Update errors
	ErrMsgInvalidUpdate = "invalid progression update"

	// Catalog errors
	ErrMsgCatalogUnloaded = "progression catalog not loaded"
	ErrMsgInvalidCatalog  = "invalid progression catalog"

	// Offline queue errors
	ErrMsgQueueClosed = "offline queue closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrStoreUnavailable means a persistence read or commit failed; the update was not applied and is safe to retry
	ErrStoreUnavailable = errors.New(ErrMsgStoreUnavailable)

	// ErrUserNotFound is only returned when auto-creation of progression state is disabled
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)

	// ErrInvalidUpdate rejects an update before any mutation
	ErrInvalidUpdate = errors.New(ErrMsgInvalidUpdate)

	// ErrCatalogUnloaded is fatal to engine construction
	ErrCatalogUnloaded = errors.New(ErrMsgCatalogUnloaded)
	ErrInvalidCatalog  = errors.New(ErrMsgInvalidCatalog)

	ErrQueueClosed = errors.New(ErrMsgQueueClosed)
)
