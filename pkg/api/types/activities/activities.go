package activities

// Times are written as "DD/MM/YYYY HH:MM:SS" in the operator time zone.
// Empty string means unset.

type Activity struct {
	RowId    int64  `json:"rowId"`
	CRQ      string `json:"crq"`
	Emoji    string `json:"emoji,omitempty"`
	Seq      int    `json:"seq"`
	Activity string `json:"activity"`
	Group    string `json:"group"`
	Location string `json:"location"`
	Executor string `json:"executor"`
	Phone    string `json:"phone"`

	PlannedStart string `json:"plannedStart"`
	PlannedEnd   string `json:"plannedEnd"`
	Duration     string `json:"duration"`

	Status       string `json:"status"`
	StatusColor  string `json:"statusColor"`
	ActualStart  string `json:"actualStart"`
	ActualEnd    string `json:"actualEnd"`
	DelayMinutes int    `json:"delayMinutes"`
	Delay        string `json:"delay"`
	Notes        string `json:"notes"`
	Milestone    bool   `json:"milestone"`
	Predecessors []int  `json:"predecessors"`

	// identity of the control row, like "12_REDE_0".
	ControlKey string `json:"controlKey"`
}

// Dependencies tells whether predecessors are done.
type Dependencies struct {
	Ready   bool  `json:"ready"`
	Pending []int `json:"pending"`
}

type Detail struct {
	Activity
	Dependencies Dependencies `json:"dependencies"`
}

// Update is a request to edit an activity.
//
// nil fields are kept as they are.
type Update struct {
	Status       string  `json:"status,omitempty"`
	ActualStart  *string `json:"actualStart,omitempty"`
	ActualEnd    *string `json:"actualEnd,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Milestone    *bool   `json:"milestone,omitempty"`
	Predecessors *string `json:"predecessors,omitempty"`
}

// Draft is a request to create an activity.
type Draft struct {
	CRQ          string `json:"crq"`
	Seq          int    `json:"seq"`
	Activity     string `json:"activity"`
	Group        string `json:"group,omitempty"`
	Location     string `json:"location,omitempty"`
	Executor     string `json:"executor,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PlannedStart string `json:"plannedStart,omitempty"`
	PlannedEnd   string `json:"plannedEnd,omitempty"`
	Duration     string `json:"duration,omitempty"`

	Status       string `json:"status,omitempty"`
	ActualStart  string `json:"actualStart,omitempty"`
	ActualEnd    string `json:"actualEnd,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Milestone    *bool  `json:"milestone,omitempty"`
	Predecessors string `json:"predecessors,omitempty"`
}
