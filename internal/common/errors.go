// Package common defines shared constants and sentinel errors used across
// the planner core. Callers should use errors.Is to match these values.
//
// The taxonomy follows the propagation rules of the auth/sync core:
//
//   - validation errors are rejected before any I/O and surface verbatim;
//   - credential errors are terminal, they never trigger a fallback;
//   - transient provider errors trigger the local fallback where one exists;
//   - storage errors trigger a one-shot local recovery before surfacing;
//   - sync errors are advisory: logged, swallowed, never shown to the user.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors (user-correctable, no I/O happened).
	ErrorValidation       = errors.New("validation error")
	ErrorEmptyCredentials = errors.New("email and password must not be empty")
	ErrorPasswordMismatch = errors.New("passwords do not match")
	ErrorPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrorInvalidTimeRange = errors.New("start time must be before end time")
	ErrorMissingTaskDate  = errors.New("task date is required")
	ErrorEmptyNoteContent = errors.New("note content must not be empty")
	ErrorEmptyFolderName  = errors.New("folder name must not be empty")

	// Credential errors (terminal, no fallback).
	ErrorUserNotFound  = errors.New("user not found")
	ErrorWrongPassword = errors.New("wrong password")
	ErrorUnauthorized  = errors.New("unauthorized")

	// Transient provider errors (network/timeout/infra).
	ErrorProviderUnavailable = errors.New("provider unavailable")

	// Storage errors.
	ErrorStorage        = errors.New("storage error")
	ErrorRecoveryFailed = errors.New("storage recovery failed")

	// Sync errors (never fatal, never surfaced).
	ErrorSyncFailed = errors.New("sync failed")

	// Orchestrator flow control.
	ErrorAuthBusy = errors.New("another auth operation is in progress")
)
