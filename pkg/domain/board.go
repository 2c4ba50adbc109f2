package domain

import (
	"slices"
	"strings"
	"time"
)

// DefaultNextLimit is how many upcoming activities are listed by default.
const DefaultNextLimit = 10

func inCRQ(crq string) func(Activity) bool {
	return func(a Activity) bool {
		return crq == "" || strings.EqualFold(a.CRQ, crq)
	}
}

func filter(acts []Activity, pred ...func(Activity) bool) []Activity {
	ret := []Activity{}
NEXT:
	for _, a := range acts {
		for _, p := range pred {
			if !p(a) {
				continue NEXT
			}
		}
		ret = append(ret, a)
	}
	return ret
}

// ByStatus lists activities in the status, in the CRQ ("" for all).
//
// StatusInProgress also matches StatusEarly.
func ByStatus(acts []Activity, status Status, crq string, excludeMilestones bool) []Activity {
	return filter(
		acts,
		inCRQ(crq),
		func(a Activity) bool { return !excludeMilestones || !a.Milestone },
		func(a Activity) bool {
			if status == StatusInProgress {
				return a.Status == StatusInProgress || a.Status == StatusEarly
			}
			return a.Status == status
		},
	)
}

// Delayed lists late activities and activities with positive delay.
func Delayed(acts []Activity, crq string) []Activity {
	return filter(
		acts,
		inCRQ(crq),
		func(a Activity) bool { return !a.Milestone },
		func(a Activity) bool { return a.Status == StatusLate || a.DelayMinutes > 0 },
	)
}

// Next lists planned activities by their planned start, up to limit.
//
// Activities without planned start come last.
func Next(acts []Activity, crq string, limit int) []Activity {
	planned := filter(
		acts,
		inCRQ(crq),
		func(a Activity) bool { return !a.Milestone && a.Status == StatusPlanned },
	)
	slices.SortStableFunc(planned, func(a, b Activity) int {
		switch {
		case a.PlannedStart == nil && b.PlannedStart == nil:
			return 0
		case a.PlannedStart == nil:
			return 1
		case b.PlannedStart == nil:
			return -1
		}
		return a.PlannedStart.Compare(*b.PlannedStart)
	})
	if 0 <= limit && limit < len(planned) {
		planned = planned[:limit]
	}
	return planned
}

func Milestones(acts []Activity, crq string) []Activity {
	return filter(acts, inCRQ(crq), func(a Activity) bool { return a.Milestone })
}

// CRQCompleted is true when the CRQ has activities and all of them are done.
//
// Only StatusDone counts; late or early activities keep the CRQ open.
func CRQCompleted(acts []Activity, crq string) bool {
	own := filter(acts, inCRQ(crq), func(a Activity) bool { return !a.Milestone })
	if len(own) == 0 {
		return false
	}
	for _, a := range own {
		if a.Status != StatusDone {
			return false
		}
	}
	return true
}

// CompletedCRQs lists completed CRQ names in catalogue order.
func CompletedCRQs(acts []Activity, catalogue Catalogue) []string {
	done := []string{}
	for _, crq := range catalogue {
		if CRQCompleted(acts, crq.Name) {
			done = append(done, crq.Name)
		}
	}
	return done
}

// DependenciesReady checks predecessors of an activity in the CRQ.
//
// A predecessor is pending unless it is found in the CRQ and is StatusDone.
//
// # Returns
//
// - bool: true when nothing is pending
//
// - []int: pending predecessor seqs
func DependenciesReady(acts []Activity, crq string, predecessors []int) (bool, []int) {
	pending := []int{}
	for _, seq := range predecessors {
		idx := slices.IndexFunc(acts, func(a Activity) bool {
			return a.Seq == seq && strings.EqualFold(a.CRQ, crq)
		})
		if idx < 0 || acts[idx].Status != StatusDone {
			pending = append(pending, seq)
		}
	}
	return len(pending) == 0, pending
}

// BlockedActivity is an activity waiting for its predecessors.
type BlockedActivity struct {
	Activity
	Pending []int
}

// Blocked lists unfinished activities with pending predecessors.
func Blocked(acts []Activity) []BlockedActivity {
	blocked := []BlockedActivity{}
	for _, a := range acts {
		if a.Milestone || a.Status.Finished() {
			continue
		}
		preds := ParsePredecessors(a.Predecessors)
		if len(preds) == 0 {
			continue
		}
		if ready, pending := DependenciesReady(acts, a.CRQ, preds); !ready {
			blocked = append(blocked, BlockedActivity{Activity: a, Pending: pending})
		}
	}
	return blocked
}

// RunningActivity is an activity in execution.
type RunningActivity struct {
	Activity

	// started before its planned start.
	Early bool
}

// Execution is the state of activities whose planned start has come.
type Execution struct {
	// planned start has passed, but not started yet.
	ShouldBeRunning []Activity

	Running []RunningActivity
}

// ExecutionStatus looks activities whose planned start is at or before now.
func ExecutionStatus(acts []Activity, now time.Time) Execution {
	ex := Execution{ShouldBeRunning: []Activity{}, Running: []RunningActivity{}}
	for _, a := range acts {
		if a.Milestone || a.PlannedStart == nil || a.PlannedStart.After(now) {
			continue
		}
		switch {
		case a.Status == StatusInProgress || a.Status == StatusEarly:
			early := a.ActualStart != nil && a.ActualStart.Before(*a.PlannedStart)
			ex.Running = append(ex.Running, RunningActivity{Activity: a, Early: early})
		case !a.Status.Started():
			ex.ShouldBeRunning = append(ex.ShouldBeRunning, a)
		}
	}
	return ex
}
