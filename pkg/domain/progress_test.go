package domain_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/crqboard/pkg/domain"
)

func endedAt(s string) func(*domain.Activity) {
	return func(a *domain.Activity) {
		a.ActualEnd = at(s)
	}
}

func plannedEnd(s string) func(*domain.Activity) {
	return func(a *domain.Activity) {
		a.PlannedEnd = at(s)
	}
}

func TestBurndown(t *testing.T) {
	now := *at("10/11/2025 23:30:00")

	acts := []domain.Activity{
		act("REDE", 1, domain.StatusDone, endedAt("10/11/2025 22:40:00")),
		act("REDE", 2, domain.StatusLate, endedAt("10/11/2025 22:10:00")),
		act("REDE", 3, domain.StatusInProgress),
		act("REDE", 4, domain.StatusDone, milestone, endedAt("10/11/2025 22:00:00")),
		act("REDE", 5, domain.StatusDone),
		act("NFS", 1, domain.StatusEarly, endedAt("10/11/2025 23:00:00")),
	}

	for name, testcase := range map[string]struct {
		crq  string
		now  time.Time
		then []domain.BurndownPoint
	}{
		"every CRQ": {
			now: now,
			then: []domain.BurndownPoint{
				{At: *at("10/11/2025 22:10:00"), Remaining: 5},
				{At: *at("10/11/2025 22:10:00"), Remaining: 4, Done: 1},
				{At: *at("10/11/2025 22:40:00"), Remaining: 3, Done: 2},
				{At: *at("10/11/2025 23:00:00"), Remaining: 2, Done: 3},
				{At: now, Remaining: 2, Done: 3},
			},
		},
		"one CRQ": {
			crq: "nfs",
			now: now,
			then: []domain.BurndownPoint{
				{At: *at("10/11/2025 23:00:00"), Remaining: 1},
				{At: *at("10/11/2025 23:00:00"), Remaining: 0, Done: 1},
				{At: now, Remaining: 0, Done: 1},
			},
		},
		"now is not after the last end": {
			crq: "NFS",
			now: *at("10/11/2025 23:00:00"),
			then: []domain.BurndownPoint{
				{At: *at("10/11/2025 23:00:00"), Remaining: 1},
				{At: *at("10/11/2025 23:00:00"), Remaining: 0, Done: 1},
			},
		},
		"nothing finished": {
			crq:  "SI",
			now:  now,
			then: []domain.BurndownPoint{{At: now, Remaining: 0}},
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual := domain.Burndown(acts, testcase.crq, testcase.now)
			if diff := cmp.Diff(testcase.then, actual); diff != "" {
				t.Errorf("(-expected, +actual)\n%s", diff)
			}
		})
	}
}

func TestGantt(t *testing.T) {
	acts := []domain.Activity{
		act(
			"REDE", 1, domain.StatusDone,
			plannedAt("10/11/2025 22:00:00"), plannedEnd("10/11/2025 22:30:00"),
			startedAt("10/11/2025 22:05:00"), endedAt("10/11/2025 22:20:00"),
		),
		act(
			"REDE", 2, domain.StatusLate,
			plannedAt("10/11/2025 22:30:00"), plannedEnd("10/11/2025 23:10:00"),
			startedAt("10/11/2025 22:20:00"),
		),
		act(
			"REDE", 3, domain.StatusPlanned, milestone,
			plannedAt("10/11/2025 21:00:00"), plannedEnd("11/11/2025 02:00:00"),
		),
		act("NFS", 1, domain.StatusPlanned),
		act("DNS", 1, domain.StatusInProgress, startedAt("10/11/2025 23:00:00")),
	}

	expected := []domain.GanttWindow{
		{
			CRQ:          "REDE",
			PlannedStart: at("10/11/2025 22:00:00"),
			PlannedEnd:   at("10/11/2025 23:10:00"),
			ActualStart:  at("10/11/2025 22:05:00"),
			ActualEnd:    at("10/11/2025 23:10:00"),
		},
		{
			CRQ:         "DNS",
			ActualStart: at("10/11/2025 23:00:00"),
		},
	}
	actual := domain.Gantt(acts, domain.DefaultCatalogue())
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}
}
