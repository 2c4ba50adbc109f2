package errors

import "errors"

var (
	// requested entity is not found.
	ErrMissing = errors.New("missing")

	// requested entity is found more than expected.
	ErrTooMuch = errors.New("too much")

	// given value does not satisfy the domain rules.
	ErrInvalid = errors.New("invalid")

	// the status change is not allowed from the current status.
	ErrInvalidTransition = errors.New("status transition is not allowed")

	// the CRQ is not in the catalogue.
	ErrUnknownCRQ = errors.New("unknown CRQ")

	// credentials are wrong, or the token is not acceptable.
	ErrUnauthorized = errors.New("unauthorized")

	// the user is known but does not have the permission.
	ErrForbidden = errors.New("forbidden")
)

// Invalid describes which field broke which rule.
type Invalid struct {
	Field  string
	Reason string
}

func NewInvalid(field, reason string) error {
	return Invalid{Field: field, Reason: reason}
}

func (i Invalid) Error() string {
	if i.Field == "" {
		return i.Reason
	}
	return i.Field + ": " + i.Reason
}

func (Invalid) Unwrap() error {
	return ErrInvalid
}
