package domain

import (
	"slices"
	"strings"
	"time"
)

// BurndownPoint is the work left at a moment.
type BurndownPoint struct {
	At        time.Time
	Remaining int
	Done      int
}

// Burndown traces finished activities of the CRQ ("" for all) over their actual end.
//
// Milestones are not counted. Finished activities without actual end are not plotted.
//
// # Returns
//
// - []BurndownPoint: starts with every activity remaining at the first actual end,
// then one point per finished activity, and ends at now when now is after the last one.
// When nothing is plotted yet, it is the only point at now.
func Burndown(acts []Activity, crq string, now time.Time) []BurndownPoint {
	work := filter(acts, inCRQ(crq), func(a Activity) bool { return !a.Milestone })
	total := len(work)

	ends := []time.Time{}
	for _, a := range work {
		if a.Status.Finished() && a.ActualEnd != nil {
			ends = append(ends, *a.ActualEnd)
		}
	}
	if len(ends) == 0 {
		return []BurndownPoint{{At: now, Remaining: total}}
	}
	slices.SortFunc(ends, func(a, b time.Time) int { return a.Compare(b) })

	points := make([]BurndownPoint, 0, len(ends)+2)
	points = append(points, BurndownPoint{At: ends[0], Remaining: total})
	for nth, end := range ends {
		done := nth + 1
		points = append(points, BurndownPoint{At: end, Remaining: total - done, Done: done})
	}
	if last := ends[len(ends)-1]; now.After(last) {
		points = append(points, BurndownPoint{At: now, Remaining: total - len(ends), Done: len(ends)})
	}
	return points
}

// GanttWindow is the time span a CRQ covers.
//
// nil means no activity has the time.
type GanttWindow struct {
	CRQ string

	PlannedStart *time.Time
	PlannedEnd   *time.Time
	ActualStart  *time.Time
	ActualEnd    *time.Time
}

func earlier(cur, t *time.Time) *time.Time {
	if t == nil || (cur != nil && !t.Before(*cur)) {
		return cur
	}
	return t
}

func later(cur, t *time.Time) *time.Time {
	if t == nil || (cur != nil && !t.After(*cur)) {
		return cur
	}
	return t
}

// Gantt spans each CRQ from its earliest start to its latest end, planned and actual.
//
// Milestones are not counted. A finished activity without actual end ends at its planned end.
// CRQs come in catalogue order, then CRQs not in the catalogue by name.
// CRQs without any time are left out.
func Gantt(acts []Activity, catalogue Catalogue) []GanttWindow {
	names := []string{}
	for _, crq := range catalogue {
		names = append(names, crq.Name)
	}
	others := []string{}
	for _, a := range acts {
		if _, ok := catalogue.Lookup(a.CRQ); ok {
			continue
		}
		if !slices.ContainsFunc(others, func(o string) bool { return strings.EqualFold(o, a.CRQ) }) {
			others = append(others, a.CRQ)
		}
	}
	slices.Sort(others)
	names = append(names, others...)

	windows := []GanttWindow{}
	for _, name := range names {
		w := GanttWindow{CRQ: name}
		for _, a := range filter(acts, inCRQ(name), func(a Activity) bool { return !a.Milestone }) {
			w.PlannedStart = earlier(w.PlannedStart, a.PlannedStart)
			w.PlannedEnd = later(w.PlannedEnd, a.PlannedEnd)
			w.ActualStart = earlier(w.ActualStart, a.ActualStart)

			end := a.ActualEnd
			if end == nil && a.Status.Finished() {
				end = a.PlannedEnd
			}
			w.ActualEnd = later(w.ActualEnd, end)
		}
		if w.PlannedStart == nil && w.PlannedEnd == nil && w.ActualStart == nil && w.ActualEnd == nil {
			continue
		}
		windows = append(windows, w)
	}
	return windows
}
