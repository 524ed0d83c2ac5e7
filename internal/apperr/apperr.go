// Package apperr defines the application error taxonomy shared by services
// and the HTTP layer. Services return (or wrap) these; handlers translate
// them to status codes without inspecting error strings.
package apperr

import "errors"

// Sentinel errors, matched with errors.Is.
var (
	// ErrNotFound covers both genuinely missing resources and resources
	// owned by someone else; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates bad or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a duplicate sibling name or duplicate email.
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDependency indicates an external collaborator (object storage)
	// failure. Fatal for uploads, logged and non-fatal for deletions.
	ErrDependency = errors.New("dependency failure")
)

// NotFound wraps ErrNotFound with a resource-specific message.
func NotFound(msg string) error { return wrapped{msg, ErrNotFound} }

// Validation wraps ErrValidation with a human-readable message safe to
// return to the client.
func Validation(msg string) error { return wrapped{msg, ErrValidation} }

// Conflict wraps ErrConflict with a human-readable message.
func Conflict(msg string) error { return wrapped{msg, ErrConflict} }

type wrapped struct {
	msg  string
	kind error
}

func (w wrapped) Error() string { return w.msg }
func (w wrapped) Unwrap() error { return w.kind }
