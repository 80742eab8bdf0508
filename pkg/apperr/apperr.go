package apperr

import "errors"

// Sentinel errors for the letter workflow. Services wrap these with
// fmt.Errorf("...: %w", ...) so callers can match with errors.Is while
// still seeing a readable message.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState covers operations that are not legal for the letter's
	// current status or step, e.g. approving a rejected letter.
	ErrInvalidState = errors.New("invalid state")

	ErrValidation = errors.New("validation failed")

	// ErrMissingAttachments fires when the attachment gate at the first
	// approval step is not satisfied.
	ErrMissingAttachments = errors.New("missing required attachments")

	// ErrInvalidAssignment means approver resolution could not find a holder
	// for a required role; submission aborts entirely.
	ErrInvalidAssignment = errors.New("invalid approver assignment")

	ErrAlreadySigned   = errors.New("letter already signed")
	ErrNotSigned       = errors.New("letter not signed")
	ErrNothingToRevise = errors.New("nothing to revise")

	// ErrDuplicateNumber means the numbering uniqueness race was lost. The
	// reservation for the attempt has been rolled back and the caller may
	// retry.
	ErrDuplicateNumber = errors.New("duplicate letter number")

	// ErrStorage wraps blob store and render failures. The transition that
	// triggered the collaborator call is aborted as a whole.
	ErrStorage = errors.New("storage failure")
)
