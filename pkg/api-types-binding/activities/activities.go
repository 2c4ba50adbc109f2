package activities

import (
	"strings"
	"time"

	apiactivities "github.com/opst/crqboard/pkg/api/types/activities"
	"github.com/opst/crqboard/pkg/domain"
	domerr "github.com/opst/crqboard/pkg/domain/errors"
)

func Compose(a domain.Activity, catalogue domain.Catalogue, loc *time.Location) apiactivities.Activity {
	return apiactivities.Activity{
		RowId:    a.RowID,
		CRQ:      a.CRQ,
		Emoji:    catalogue.Emoji(a.CRQ),
		Seq:      a.Seq,
		Activity: a.SheetRow.Activity,
		Group:    a.Group,
		Location: a.Location,
		Executor: a.Executor,
		Phone:    a.Phone,

		PlannedStart: domain.FormatTime(a.PlannedStart, loc),
		PlannedEnd:   domain.FormatTime(a.PlannedEnd, loc),
		Duration:     a.Duration,

		Status:       string(a.Status),
		StatusColor:  a.Status.Color(),
		ActualStart:  domain.FormatTime(a.ActualStart, loc),
		ActualEnd:    domain.FormatTime(a.ActualEnd, loc),
		DelayMinutes: a.DelayMinutes,
		Delay:        domain.FormatDelay(a.DelayMinutes),
		Notes:        a.Notes,
		Milestone:    a.Milestone,
		Predecessors: domain.ParsePredecessors(a.Predecessors),

		ControlKey: a.Key.String(),
	}
}

func ComposeAll(acts []domain.Activity, catalogue domain.Catalogue, loc *time.Location) []apiactivities.Activity {
	ret := make([]apiactivities.Activity, 0, len(acts))
	for _, a := range acts {
		ret = append(ret, Compose(a, catalogue, loc))
	}
	return ret
}

// ComposeDetail composes the activity with the state of its predecessors found in all.
func ComposeDetail(a domain.Activity, all []domain.Activity, catalogue domain.Catalogue, loc *time.Location) apiactivities.Detail {
	ready, pending := domain.DependenciesReady(all, a.CRQ, domain.ParsePredecessors(a.Predecessors))
	return apiactivities.Detail{
		Activity:     Compose(a, catalogue, loc),
		Dependencies: apiactivities.Dependencies{Ready: ready, Pending: pending},
	}
}

func parseTime(s *string, loc *time.Location) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	return domain.ParseTime(*s, loc)
}

func blank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}

// ParseUpdate converts a request to an update.
//
// Status is checked here. Empty status keeps the current one.
//
// A missing actual time keeps the recorded one, and an empty string clears it.
func ParseUpdate(u apiactivities.Update, loc *time.Location) (domain.ActivityUpdate, error) {
	upd := domain.ActivityUpdate{
		Notes:        u.Notes,
		Milestone:    u.Milestone,
		Predecessors: u.Predecessors,
	}
	if u.Status != "" {
		st, err := domain.AsStatus(u.Status)
		if err != nil {
			return domain.ActivityUpdate{}, err
		}
		upd.Status = st
	}

	var err error
	if upd.ActualStart, err = parseTime(u.ActualStart, loc); err != nil {
		return domain.ActivityUpdate{}, domerr.NewInvalid("actualStart", err.Error())
	}
	if upd.ActualEnd, err = parseTime(u.ActualEnd, loc); err != nil {
		return domain.ActivityUpdate{}, domerr.NewInvalid("actualEnd", err.Error())
	}
	upd.ClearActualStart = blank(u.ActualStart)
	upd.ClearActualEnd = blank(u.ActualEnd)
	return upd, nil
}

// ParseDraft converts a request to a draft. Times should be in the operator format.
func ParseDraft(d apiactivities.Draft, loc *time.Location) (domain.ActivityDraft, error) {
	draft := domain.ActivityDraft{
		CRQ:          d.CRQ,
		Seq:          d.Seq,
		Activity:     d.Activity,
		Group:        d.Group,
		Location:     d.Location,
		Executor:     d.Executor,
		Phone:        d.Phone,
		Duration:     d.Duration,
		Notes:        d.Notes,
		Milestone:    d.Milestone,
		Predecessors: d.Predecessors,
	}
	if d.Status != "" {
		st, err := domain.AsStatus(d.Status)
		if err != nil {
			return domain.ActivityDraft{}, err
		}
		draft.Status = st
	}

	for _, f := range []struct {
		name string
		in   string
		out  **time.Time
	}{
		{name: "plannedStart", in: d.PlannedStart, out: &draft.PlannedStart},
		{name: "plannedEnd", in: d.PlannedEnd, out: &draft.PlannedEnd},
		{name: "actualStart", in: d.ActualStart, out: &draft.ActualStart},
		{name: "actualEnd", in: d.ActualEnd, out: &draft.ActualEnd},
	} {
		t, err := domain.ParseTime(f.in, loc)
		if err != nil {
			return domain.ActivityDraft{}, domerr.NewInvalid(f.name, err.Error())
		}
		*f.out = t
	}
	return draft, nil
}
