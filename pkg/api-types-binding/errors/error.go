package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/opst/crqboard/pkg/api/types/errors"
	domerr "github.com/opst/crqboard/pkg/domain/errors"
)

type ErrorMessageOption func(in *apierr.ErrorMessage) *apierr.ErrorMessage

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *apierr.ErrorMessage) *apierr.ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *apierr.ErrorMessage) *apierr.ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := apierr.ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		WithAdvice(advice),
		WithError(err),
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithError(err),
	)
}

func Unauthorized(message string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusUnauthorized,
		message,
		WithAdvice("log in again."),
		WithError(err),
	)
}

func Forbidden(message string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusForbidden,
		message,
		WithAdvice("ask your change leader for the permission."),
		WithError(err),
	)
}

// FromError translates errors from domain to HTTP errors.
//
// Errors not known by the domain are InternalServerError.
func FromError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	if herr := new(echo.HTTPError); errors.As(err, &herr) {
		return herr
	}

	switch {
	case errors.Is(err, domerr.ErrMissing):
		return NewErrorMessage(http.StatusNotFound, "not found", WithError(err))
	case errors.Is(err, domerr.ErrInvalidTransition):
		return NewErrorMessage(
			http.StatusConflict, "status can not be changed",
			WithAdvice(advice(err)), WithError(err),
		)
	case errors.Is(err, domerr.ErrInvalid), errors.Is(err, domerr.ErrUnknownCRQ):
		return BadRequest(advice(err), err)
	case errors.Is(err, domerr.ErrUnauthorized):
		return Unauthorized("unauthorized", err)
	case errors.Is(err, domerr.ErrForbidden):
		return Forbidden("forbidden", err)
	}
	return InternalServerError(err)
}

// advice is the innermost message of err, without wrapping locations.
func advice(err error) string {
	if inv := new(domerr.Invalid); errors.As(err, inv) {
		return inv.Error()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil || next == domerr.ErrInvalidTransition || next == domerr.ErrUnknownCRQ {
			return err.Error()
		}
		err = next
	}
}
