package stats

import (
	apiactivities "github.com/opst/crqboard/pkg/api/types/activities"
)

type Stats struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"inProgress"`
	Planned    int `json:"planned"`
	Late       int `json:"late"`
	Early      int `json:"early"`
	Milestones int `json:"milestones"`

	PctDone       float64 `json:"pctDone"`
	PctInProgress float64 `json:"pctInProgress"`
	PctPlanned    float64 `json:"pctPlanned"`
	PctLate       float64 `json:"pctLate"`
}

type CRQStats struct {
	CRQ   string `json:"crq"`
	Emoji string `json:"emoji,omitempty"`

	// planned number of activities from the catalogue.
	Expected int `json:"expected"`

	Stats
}

type Report struct {
	Overall Stats      `json:"overall"`
	PerCRQ  []CRQStats `json:"perCrq"`
}

type Blocked struct {
	Activity apiactivities.Activity `json:"activity"`
	Pending  []int                  `json:"pending"`
}

type RunningActivity struct {
	Activity apiactivities.Activity `json:"activity"`
	Early    bool                   `json:"early"`
}

type Execution struct {
	ShouldBeRunning []apiactivities.Activity `json:"shouldBeRunning"`
	Running         []RunningActivity        `json:"running"`
}

type BurndownPoint struct {
	At        string `json:"at"`
	Remaining int    `json:"remaining"`
	Done      int    `json:"done"`
}

// GanttWindow is the span of a CRQ. Empty times are not known yet.
type GanttWindow struct {
	CRQ   string `json:"crq"`
	Emoji string `json:"emoji,omitempty"`

	PlannedStart string `json:"plannedStart"`
	PlannedEnd   string `json:"plannedEnd"`
	ActualStart  string `json:"actualStart"`
	ActualEnd    string `json:"actualEnd"`
}

type Dashboard struct {
	// when the dashboard is computed, in the operator time zone.
	Now string `json:"now"`

	Stats         Report                   `json:"stats"`
	Delayed       []apiactivities.Activity `json:"delayed"`
	Next          []apiactivities.Activity `json:"next"`
	Blocked       []Blocked                `json:"blocked"`
	Milestones    []apiactivities.Activity `json:"milestones"`
	Execution     Execution                `json:"execution"`
	CompletedCRQs []string                 `json:"completedCrqs"`
	Burndown      []BurndownPoint          `json:"burndown"`
	Gantt         []GanttWindow            `json:"gantt"`
}
