package domain

import (
	"fmt"
	"strings"

	domerr "github.com/opst/crqboard/pkg/domain/errors"
)

// Status is the progress of an activity.
//
// Values are kept as they are written in spreadsheets and backups.
type Status string

const (
	// not started yet. Default of new activities.
	StatusPlanned Status = "Planejado"

	// started by the operator.
	StatusInProgress Status = "Em Execução"

	// finished on time.
	StatusDone Status = "Concluído"

	// finished after the planned end.
	StatusLate Status = "Atrasado"

	// finished before the planned end.
	StatusEarly Status = "Adiantado"
)

func Statuses() []Status {
	return []Status{StatusPlanned, StatusInProgress, StatusDone, StatusLate, StatusEarly}
}

// AsStatus parses a status.
//
// The match ignores letter case and surrounding spaces.
func AsStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses() {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", domerr.ErrInvalid, s)
}

func (s Status) String() string {
	return string(s)
}

// Finished is true for done, late and early.
func (s Status) Finished() bool {
	switch s {
	case StatusDone, StatusLate, StatusEarly:
		return true
	}
	return false
}

// Started is true when the activity has been put in execution.
func (s Status) Started() bool {
	return s == StatusInProgress || s.Finished()
}

// Color for dashboards, in "#rrggbb".
func (s Status) Color() string {
	switch s {
	case StatusDone:
		return "#28a745"
	case StatusInProgress:
		return "#007bff"
	case StatusPlanned:
		return "#ffc107"
	case StatusLate:
		return "#dc3545"
	case StatusEarly:
		return "#17a2b8"
	}
	return "#6c757d"
}
