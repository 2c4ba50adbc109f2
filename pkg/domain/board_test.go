package domain_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/crqboard/pkg/domain"
)

func seqsOf(acts []domain.Activity) []string {
	ret := []string{}
	for _, a := range acts {
		ret = append(ret, a.Key.String())
	}
	return ret
}

func plannedAt(s string) func(*domain.Activity) {
	return func(a *domain.Activity) {
		a.PlannedStart = at(s)
	}
}

func startedAt(s string) func(*domain.Activity) {
	return func(a *domain.Activity) {
		a.ActualStart = at(s)
	}
}

func after(preds string) func(*domain.Activity) {
	return func(a *domain.Activity) {
		a.Predecessors = preds
	}
}

func TestByStatus(t *testing.T) {
	acts := []domain.Activity{
		act("REDE", 1, domain.StatusInProgress),
		act("REDE", 2, domain.StatusEarly),
		act("REDE", 3, domain.StatusInProgress, milestone),
		act("NFS", 1, domain.StatusInProgress),
		act("NFS", 2, domain.StatusDone),
	}

	for name, testcase := range map[string]struct {
		status            domain.Status
		crq               string
		excludeMilestones bool
		then              []string
	}{
		"in progress includes early": {
			status: domain.StatusInProgress, crq: "", excludeMilestones: true,
			then: []string{"1_REDE_0", "2_REDE_0", "1_NFS_0"},
		},
		"milestones can be included": {
			status: domain.StatusInProgress, crq: "REDE", excludeMilestones: false,
			then: []string{"1_REDE_0", "2_REDE_0", "3_REDE_0"},
		},
		"filtered by CRQ": {
			status: domain.StatusDone, crq: "nfs", excludeMilestones: true,
			then: []string{"2_NFS_0"},
		},
		"early only": {
			status: domain.StatusEarly, crq: "", excludeMilestones: true,
			then: []string{"2_REDE_0"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual := seqsOf(domain.ByStatus(acts, testcase.status, testcase.crq, testcase.excludeMilestones))
			if diff := cmp.Diff(testcase.then, actual); diff != "" {
				t.Errorf("(-expected, +actual)\n%s", diff)
			}
		})
	}
}

func TestDelayed(t *testing.T) {
	acts := []domain.Activity{
		act("REDE", 1, domain.StatusLate, delayed(10)),
		act("REDE", 2, domain.StatusInProgress, delayed(5)),
		act("REDE", 3, domain.StatusDone),
		act("REDE", 4, domain.StatusLate, milestone),
		act("SI", 1, domain.StatusLate),
	}

	if diff := cmp.Diff(
		[]string{"1_REDE_0", "2_REDE_0", "1_SI_0"},
		seqsOf(domain.Delayed(acts, "")),
	); diff != "" {
		t.Errorf("all CRQs: (-expected, +actual)\n%s", diff)
	}
	if diff := cmp.Diff(
		[]string{"1_SI_0"},
		seqsOf(domain.Delayed(acts, "SI")),
	); diff != "" {
		t.Errorf("SI: (-expected, +actual)\n%s", diff)
	}
}

func TestNext(t *testing.T) {
	acts := []domain.Activity{
		act("REDE", 1, domain.StatusPlanned, plannedAt("10/11/2025 23:00:00")),
		act("REDE", 2, domain.StatusPlanned),
		act("REDE", 3, domain.StatusPlanned, plannedAt("10/11/2025 21:00:00")),
		act("REDE", 4, domain.StatusInProgress, plannedAt("10/11/2025 20:00:00")),
		act("REDE", 5, domain.StatusPlanned, milestone, plannedAt("10/11/2025 20:00:00")),
		act("REDE", 6, domain.StatusPlanned, plannedAt("10/11/2025 22:00:00")),
	}

	if diff := cmp.Diff(
		[]string{"3_REDE_0", "6_REDE_0", "1_REDE_0", "2_REDE_0"},
		seqsOf(domain.Next(acts, "", domain.DefaultNextLimit)),
	); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}
	if diff := cmp.Diff(
		[]string{"3_REDE_0", "6_REDE_0"},
		seqsOf(domain.Next(acts, "REDE", 2)),
	); diff != "" {
		t.Errorf("limited: (-expected, +actual)\n%s", diff)
	}
}

func TestCRQCompleted(t *testing.T) {
	for name, testcase := range map[string]struct {
		when []domain.Activity
		then bool
	}{
		"no activities": {
			when: []domain.Activity{},
			then: false,
		},
		"only milestones": {
			when: []domain.Activity{act("NFS", 1, domain.StatusPlanned, milestone)},
			then: false,
		},
		"all done, milestones ignored": {
			when: []domain.Activity{
				act("NFS", 1, domain.StatusDone),
				act("NFS", 2, domain.StatusDone),
				act("NFS", 3, domain.StatusPlanned, milestone),
				act("REDE", 1, domain.StatusPlanned),
			},
			then: true,
		},
		"late activity keeps it open": {
			when: []domain.Activity{
				act("NFS", 1, domain.StatusDone),
				act("NFS", 2, domain.StatusLate),
			},
			then: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if actual := domain.CRQCompleted(testcase.when, "NFS"); actual != testcase.then {
				t.Errorf("(actual, expected) = (%v, %v)", actual, testcase.then)
			}
		})
	}

	t.Run("CompletedCRQs lists in catalogue order", func(t *testing.T) {
		acts := []domain.Activity{
			act("SI", 1, domain.StatusDone),
			act("REDE", 1, domain.StatusDone),
			act("NFS", 1, domain.StatusInProgress),
		}
		actual := domain.CompletedCRQs(acts, domain.DefaultCatalogue())
		if diff := cmp.Diff([]string{"REDE", "SI"}, actual); diff != "" {
			t.Errorf("(-expected, +actual)\n%s", diff)
		}
	})
}

func TestBlocked(t *testing.T) {
	acts := []domain.Activity{
		act("REDE", 1, domain.StatusDone),
		act("REDE", 2, domain.StatusLate),
		act("REDE", 3, domain.StatusPlanned, after("1")),
		act("REDE", 4, domain.StatusPlanned, after("1,2")),
		act("REDE", 5, domain.StatusInProgress, after("3, 99")),
		act("REDE", 6, domain.StatusDone, after("3")),
		act("REDE", 7, domain.StatusPlanned, milestone, after("3")),
		act("REDE", 8, domain.StatusPlanned, after("x,1")),
		act("NFS", 2, domain.StatusPlanned, after("1")),
	}

	type view struct {
		Key     string
		Pending []int
	}
	actual := []view{}
	for _, b := range domain.Blocked(acts) {
		actual = append(actual, view{Key: b.Key.String(), Pending: b.Pending})
	}

	expected := []view{
		// late predecessor is not done
		{Key: "4_REDE_0", Pending: []int{2}},
		{Key: "5_REDE_0", Pending: []int{3, 99}},
		// predecessor in other CRQ does not count
		{Key: "2_NFS_0", Pending: []int{1}},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}

	t.Run("DependenciesReady", func(t *testing.T) {
		ready, pending := domain.DependenciesReady(acts, "REDE", []int{1})
		if !ready || len(pending) != 0 {
			t.Errorf("(ready, pending) = (%v, %v)", ready, pending)
		}
		ready, pending = domain.DependenciesReady(acts, "REDE", []int{1, 3})
		if ready || !cmp.Equal(pending, []int{3}) {
			t.Errorf("(ready, pending) = (%v, %v)", ready, pending)
		}
	})
}

func TestExecutionStatus(t *testing.T) {
	now := *at("10/11/2025 22:30:00")
	acts := []domain.Activity{
		act("REDE", 1, domain.StatusPlanned, plannedAt("10/11/2025 22:00:00")),
		act("REDE", 2, domain.StatusPlanned, plannedAt("10/11/2025 23:00:00")),
		act("REDE", 3, domain.StatusInProgress, plannedAt("10/11/2025 22:00:00"), startedAt("10/11/2025 21:50:00")),
		act("REDE", 4, domain.StatusInProgress, plannedAt("10/11/2025 22:00:00"), startedAt("10/11/2025 22:05:00")),
		act("REDE", 5, domain.StatusDone, plannedAt("10/11/2025 21:00:00")),
		act("REDE", 6, domain.StatusPlanned, milestone, plannedAt("10/11/2025 21:00:00")),
		act("REDE", 7, domain.StatusEarly, plannedAt("10/11/2025 22:30:00"), startedAt("10/11/2025 22:00:00")),
		act("REDE", 8, domain.StatusPlanned),
	}

	ex := domain.ExecutionStatus(acts, now)

	if diff := cmp.Diff([]string{"1_REDE_0"}, seqsOf(ex.ShouldBeRunning)); diff != "" {
		t.Errorf("should be running: (-expected, +actual)\n%s", diff)
	}

	type running struct {
		Key   string
		Early bool
	}
	actual := []running{}
	for _, r := range ex.Running {
		actual = append(actual, running{Key: r.Key.String(), Early: r.Early})
	}
	expected := []running{
		{Key: "3_REDE_0", Early: true},
		{Key: "4_REDE_0", Early: false},
		{Key: "7_REDE_0", Early: true},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("running: (-expected, +actual)\n%s", diff)
	}

}
