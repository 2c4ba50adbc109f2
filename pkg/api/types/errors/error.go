package errors

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrorMessage is the body of error responses.
//
// Cause stays in the server. It is written to logs, never to clients.
type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	Cause  error  `json:"-"`
}

var errNoReason = errors.New(`error message without "reason"`)

func (em *ErrorMessage) UnmarshalJSON(b []byte) error {
	var body struct {
		Reason *string `json:"reason"`
		Advice string  `json:"advice"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return err
	}
	if body.Reason == nil {
		return errNoReason
	}
	*em = ErrorMessage{Reason: *body.Reason, Advice: body.Advice}
	return nil
}

// Error is reason, advice and cause, each in a line.
func (e ErrorMessage) Error() string {
	sb := new(strings.Builder)
	sb.WriteString(e.Reason)
	if e.Advice != "" {
		sb.WriteString("\n" + e.Advice)
	}
	if e.Cause != nil {
		sb.WriteString("\ncaused by: " + e.Cause.Error())
	}
	return sb.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}
