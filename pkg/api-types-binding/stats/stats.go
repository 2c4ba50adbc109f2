package stats

import (
	"slices"
	"time"

	bindactivities "github.com/opst/crqboard/pkg/api-types-binding/activities"
	apiactivities "github.com/opst/crqboard/pkg/api/types/activities"
	apistats "github.com/opst/crqboard/pkg/api/types/stats"
	"github.com/opst/crqboard/pkg/domain"
)

func ComposeStats(s domain.Stats) apistats.Stats {
	return apistats.Stats{
		Total:      s.Total,
		Done:       s.Done,
		InProgress: s.InProgress,
		Planned:    s.Planned,
		Late:       s.Late,
		Early:      s.Early,
		Milestones: s.Milestones,

		PctDone:       s.PctDone,
		PctInProgress: s.PctInProgress,
		PctPlanned:    s.PctPlanned,
		PctLate:       s.PctLate,
	}
}

// ComposeReport lists CRQs in catalogue order, then CRQs not in the catalogue by name.
func ComposeReport(r domain.Report, catalogue domain.Catalogue) apistats.Report {
	per := make([]apistats.CRQStats, 0, len(r.PerCRQ))
	for _, crq := range catalogue {
		per = append(per, apistats.CRQStats{
			CRQ: crq.Name, Emoji: crq.Emoji, Expected: crq.Total,
			Stats: ComposeStats(r.PerCRQ[crq.Name]),
		})
	}
	others := []string{}
	for name := range r.PerCRQ {
		if _, ok := catalogue.Lookup(name); !ok {
			others = append(others, name)
		}
	}
	slices.Sort(others)
	for _, name := range others {
		per = append(per, apistats.CRQStats{CRQ: name, Stats: ComposeStats(r.PerCRQ[name])})
	}
	return apistats.Report{Overall: ComposeStats(r.Overall), PerCRQ: per}
}

func ComposeBurndown(points []domain.BurndownPoint, loc *time.Location) []apistats.BurndownPoint {
	ret := make([]apistats.BurndownPoint, 0, len(points))
	for _, p := range points {
		ret = append(ret, apistats.BurndownPoint{
			At: domain.FormatTime(&p.At, loc), Remaining: p.Remaining, Done: p.Done,
		})
	}
	return ret
}

func ComposeGantt(windows []domain.GanttWindow, catalogue domain.Catalogue, loc *time.Location) []apistats.GanttWindow {
	ret := make([]apistats.GanttWindow, 0, len(windows))
	for _, w := range windows {
		ret = append(ret, apistats.GanttWindow{
			CRQ:          w.CRQ,
			Emoji:        catalogue.Emoji(w.CRQ),
			PlannedStart: domain.FormatTime(w.PlannedStart, loc),
			PlannedEnd:   domain.FormatTime(w.PlannedEnd, loc),
			ActualStart:  domain.FormatTime(w.ActualStart, loc),
			ActualEnd:    domain.FormatTime(w.ActualEnd, loc),
		})
	}
	return ret
}

// ComposeDashboard computes every board of the dashboard.
//
// limit is the number of upcoming activities. 0 or less is domain.DefaultNextLimit.
func ComposeDashboard(
	acts []domain.Activity,
	catalogue domain.Catalogue,
	now time.Time,
	loc *time.Location,
	limit int,
) apistats.Dashboard {
	if limit <= 0 {
		limit = domain.DefaultNextLimit
	}
	compose := func(as []domain.Activity) []apiactivities.Activity {
		return bindactivities.ComposeAll(as, catalogue, loc)
	}

	blocked := []apistats.Blocked{}
	for _, b := range domain.Blocked(acts) {
		blocked = append(blocked, apistats.Blocked{
			Activity: bindactivities.Compose(b.Activity, catalogue, loc),
			Pending:  b.Pending,
		})
	}

	ex := domain.ExecutionStatus(acts, now)
	running := []apistats.RunningActivity{}
	for _, r := range ex.Running {
		running = append(running, apistats.RunningActivity{
			Activity: bindactivities.Compose(r.Activity, catalogue, loc),
			Early:    r.Early,
		})
	}

	return apistats.Dashboard{
		Now:        now.In(loc).Format(domain.TimeLayout),
		Stats:      ComposeReport(domain.Statistics(acts, catalogue), catalogue),
		Delayed:    compose(domain.Delayed(acts, "")),
		Next:       compose(domain.Next(acts, "", limit)),
		Blocked:    blocked,
		Milestones: compose(domain.Milestones(acts, "")),
		Execution: apistats.Execution{
			ShouldBeRunning: compose(ex.ShouldBeRunning),
			Running:         running,
		},
		CompletedCRQs: domain.CompletedCRQs(acts, catalogue),
		Burndown:      ComposeBurndown(domain.Burndown(acts, "", now), loc),
		Gantt:         ComposeGantt(domain.Gantt(acts, catalogue), catalogue, loc),
	}
}
