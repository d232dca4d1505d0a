// ================== pkg/apperr/apperr.go =================
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrDuplicate    = errors.New("resource already exists")

	// Coordination error kinds. Every one of these is per-request:
	// none of them is treated as fatal by the server.
	ErrNoWorkerAvailable        = errors.New("no worker available")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrVerificationInconclusive = errors.New("verification inconclusive")
	ErrCollaboratorTimeout      = errors.New("collaborator request timed out")
)
