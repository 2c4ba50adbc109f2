package domain

import (
	"fmt"
	"strings"
	"time"

	domerr "github.com/opst/crqboard/pkg/domain/errors"
)

// ActivityUpdate is an edit made by an operator.
type ActivityUpdate struct {
	// New status. Empty keeps the current one.
	Status Status

	// nil keeps the recorded time. When nothing is recorded, it may be filled by the status change.
	ActualStart *time.Time
	ActualEnd   *time.Time

	// forget the recorded time instead of keeping it.
	ClearActualStart bool
	ClearActualEnd   bool

	// nil fields are kept as they are.
	Notes        *string
	Milestone    *bool
	Predecessors *string
}

// ApplyUpdate computes the control row change for an operator edit.
//
// Finishing statuses (done, late, early) can be set only on activities which have been started.
//
// When the status changes, actual times are filled with now:
//
// - Planejado -> Em Execução: actual start, when neither given nor recorded.
//
// - Em Execução -> finished: actual end, when neither given nor recorded. Actual start is the recorded one, or the given one, or now.
//
// - other changes: actual start, when neither given nor recorded.
//
// Then the delay is computed against the planned end, and a done activity becomes late or early by it.
func ApplyUpdate(current Activity, upd ActivityUpdate, now time.Time) (ControlDelta, error) {
	oldStatus := current.Status
	newStatus := upd.Status
	if newStatus == "" {
		newStatus = oldStatus
	}
	newStatus, err := AsStatus(string(newStatus))
	if err != nil {
		return ControlDelta{}, err
	}

	if newStatus.Finished() && !oldStatus.Started() {
		return ControlDelta{}, fmt.Errorf(
			"%w: %s -> %s. put the activity in %s first",
			domerr.ErrInvalidTransition, oldStatus, newStatus, StatusInProgress,
		)
	}

	start, end := upd.ActualStart, upd.ActualEnd
	if start == nil && !upd.ClearActualStart {
		start = current.ActualStart
	}
	if end == nil && !upd.ClearActualEnd {
		end = current.ActualEnd
	}
	if oldStatus != newStatus {
		switch {
		case oldStatus == StatusPlanned && newStatus == StatusInProgress:
			if start == nil {
				start = &now
			}
		case oldStatus == StatusInProgress && newStatus.Finished():
			if end == nil {
				end = &now
			}
			if current.ActualStart != nil && !upd.ClearActualStart {
				start = current.ActualStart
			} else if start == nil {
				start = &now
			}
		default:
			if start == nil {
				start = &now
			}
		}
	}

	if start != nil && end != nil && end.Before(*start) {
		return ControlDelta{}, domerr.NewInvalid(
			"actual end", "actual end should be equal or after actual start",
		)
	}

	delay := 0
	if end != nil {
		delay = Delay(current.PlannedEnd, end)
	}
	newStatus = StatusByDelay(newStatus, delay)

	notes := current.Notes
	if upd.Notes != nil {
		notes = strings.TrimSpace(*upd.Notes)
	}
	milestone := current.Milestone
	if upd.Milestone != nil {
		milestone = *upd.Milestone
	}
	predecessors := current.Predecessors
	if upd.Predecessors != nil {
		p, err := NormalizePredecessors(*upd.Predecessors)
		if err != nil {
			return ControlDelta{}, err
		}
		predecessors = p
	}

	return ControlDelta{
		Status:           &newStatus,
		ActualStart:      start,
		ActualEnd:        end,
		DelayMinutes:     &delay,
		Notes:            &notes,
		Milestone:        &milestone,
		Predecessors:     &predecessors,
		ClearActualStart: start == nil && current.ActualStart != nil,
		ClearActualEnd:   end == nil && current.ActualEnd != nil,
	}, nil
}

// NormalizePredecessors validates a predecessor list and writes it canonically ("1,2,3").
func NormalizePredecessors(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	seqs := ParsePredecessors(s)
	if len(seqs) == 0 {
		return "", domerr.NewInvalid(
			"predecessors", fmt.Sprintf("%q should be comma separated seq numbers", s),
		)
	}
	return FormatPredecessors(seqs), nil
}

// ActivityDraft is an activity created by an operator, not by import.
type ActivityDraft struct {
	CRQ          string
	Seq          int
	Activity     string
	Group        string
	Location     string
	Executor     string
	Phone        string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	Duration     string

	// Empty is StatusPlanned.
	Status      Status
	ActualStart *time.Time
	ActualEnd   *time.Time
	Notes       string

	// nil is detected from Group.
	Milestone    *bool
	Predecessors string
}

// NewActivity validates a draft and splits it into a sheet row and its control state.
func NewActivity(d ActivityDraft, catalogue Catalogue) (SheetRow, ControlDelta, error) {
	activity := strings.TrimSpace(d.Activity)
	if activity == "" {
		return SheetRow{}, ControlDelta{}, domerr.NewInvalid("activity", "activity is required")
	}
	crq, ok := catalogue.Lookup(d.CRQ)
	if !ok {
		return SheetRow{}, ControlDelta{}, fmt.Errorf("%w: %q", domerr.ErrUnknownCRQ, d.CRQ)
	}
	if d.Seq < 1 {
		return SheetRow{}, ControlDelta{}, domerr.NewInvalid("seq", "seq should be 1 or more")
	}

	status := d.Status
	if status == "" {
		status = StatusPlanned
	}
	status, err := AsStatus(string(status))
	if err != nil {
		return SheetRow{}, ControlDelta{}, err
	}
	if d.ActualStart != nil && d.ActualEnd != nil && d.ActualEnd.Before(*d.ActualStart) {
		return SheetRow{}, ControlDelta{}, domerr.NewInvalid(
			"actual end", "actual end should be equal or after actual start",
		)
	}
	predecessors, err := NormalizePredecessors(d.Predecessors)
	if err != nil {
		return SheetRow{}, ControlDelta{}, err
	}

	row := SheetRow{
		CRQ:          crq.Name,
		Seq:          d.Seq,
		Activity:     activity,
		Group:        strings.TrimSpace(d.Group),
		Location:     strings.TrimSpace(d.Location),
		Executor:     strings.TrimSpace(d.Executor),
		Phone:        strings.TrimSpace(d.Phone),
		PlannedStart: d.PlannedStart,
		PlannedEnd:   d.PlannedEnd,
		Duration:     strings.TrimSpace(d.Duration),
	}

	delay := Delay(row.PlannedEnd, d.ActualEnd)
	status = StatusByDelay(status, delay)
	milestone := IsMilestoneGroup(row.Group)
	if d.Milestone != nil {
		milestone = *d.Milestone
	}
	notes := strings.TrimSpace(d.Notes)

	return row, ControlDelta{
		Status:       &status,
		ActualStart:  d.ActualStart,
		ActualEnd:    d.ActualEnd,
		DelayMinutes: &delay,
		Notes:        &notes,
		Milestone:    &milestone,
		Predecessors: &predecessors,
	}, nil
}
