package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	domerr "github.com/opst/crqboard/pkg/domain/errors"
)

// SheetRecord is a spreadsheet row as text, before validation.
type SheetRecord struct {
	CRQ      string
	Seq      string
	Activity string
	Group    string
	Location string
	Executor string
	Phone    string
	Start    string
	End      string
	Duration string
}

// Row validates the record and converts it to SheetRow.
//
// # Returns
//
// - SheetRow: converted row. RowID and ImportedAt are left zero.
//
// - []string: issues which do not reject the row, like unparsable planned times (they are left unset).
//
// - error: ErrInvalid when Seq is missing or not a number.
func (r SheetRecord) Row(loc *time.Location) (SheetRow, []string, error) {
	seq, err := ParseSeq(r.Seq)
	if err != nil {
		return SheetRow{}, nil, err
	}

	issues := []string{}
	start, err := ParseSheetTime(r.Start, loc)
	if err != nil {
		issues = append(issues, fmt.Sprintf("%s seq %d: Inicio: %s", r.CRQ, seq, err))
	}
	end, err := ParseSheetTime(r.End, loc)
	if err != nil {
		issues = append(issues, fmt.Sprintf("%s seq %d: Fim: %s", r.CRQ, seq, err))
	}

	return SheetRow{
		CRQ:          r.CRQ,
		Seq:          seq,
		Activity:     strings.TrimSpace(r.Activity),
		Group:        strings.TrimSpace(r.Group),
		Location:     strings.TrimSpace(r.Location),
		Executor:     strings.TrimSpace(r.Executor),
		Phone:        strings.TrimSpace(r.Phone),
		PlannedStart: start,
		PlannedEnd:   end,
		Duration:     strings.TrimSpace(r.Duration),
	}, issues, nil
}

// ParseSeq parses a sequence number, like "12" or "12.0".
func ParseSeq(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, domerr.NewInvalid("seq", "seq is empty")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.Trunc(f) != f || math.IsInf(f, 0) {
		return 0, domerr.NewInvalid("seq", fmt.Sprintf("%q is not a number", s))
	}
	return int(f), nil
}

// SheetRow is an activity as planned in the spreadsheet.
type SheetRow struct {
	// Identity assigned by the store.
	RowID int64

	CRQ          string
	Seq          int
	Activity     string
	Group        string
	Location     string
	Executor     string
	Phone        string
	PlannedStart *time.Time
	PlannedEnd   *time.Time

	// "Tempo" column. Free text.
	Duration string

	ImportedAt time.Time
}

// ControlKey identifies a control row.
//
// RowID 0 is the sheet-scoped key: it survives re-imports which reassign every RowID.
type ControlKey struct {
	Seq   int
	CRQ   string
	RowID int64
}

// SheetKey is the sheet-scoped key for (seq, crq).
func SheetKey(seq int, crq string) ControlKey {
	return ControlKey{Seq: seq, CRQ: crq}
}

func (k ControlKey) String() string {
	return fmt.Sprintf("%d_%s_%d", k.Seq, k.CRQ, k.RowID)
}

// Control is operator-entered state of an activity.
type Control struct {
	Key ControlKey

	Status       Status
	ActualStart  *time.Time
	ActualEnd    *time.Time
	DelayMinutes int
	Notes        string
	Milestone    bool

	// comma separated seqs in the same CRQ.
	Predecessors string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ControlDelta is a partial update of a control row.
//
// nil fields are left as they are. On insert, they take defaults.
type ControlDelta struct {
	Status       *Status
	ActualStart  *time.Time
	ActualEnd    *time.Time
	DelayMinutes *int
	Notes        *string
	Milestone    *bool
	Predecessors *string

	// clear the recorded time. ActualStart/ActualEnd are ignored then.
	ClearActualStart bool
	ClearActualEnd   bool
}

// Apply returns the control updated with the delta.
func (d ControlDelta) Apply(c Control) Control {
	if d.Status != nil {
		c.Status = *d.Status
	}
	if d.ActualStart != nil {
		c.ActualStart = d.ActualStart
	}
	if d.ActualEnd != nil {
		c.ActualEnd = d.ActualEnd
	}
	if d.ClearActualStart {
		c.ActualStart = nil
	}
	if d.ClearActualEnd {
		c.ActualEnd = nil
	}
	if d.DelayMinutes != nil {
		c.DelayMinutes = *d.DelayMinutes
	}
	if d.Notes != nil {
		c.Notes = *d.Notes
	}
	if d.Milestone != nil {
		c.Milestone = *d.Milestone
	}
	if d.Predecessors != nil {
		c.Predecessors = *d.Predecessors
	}
	return c
}

// NewControl is the control row for key before any update.
func NewControl(key ControlKey) Control {
	return Control{Key: key, Status: StatusPlanned}
}

// Activity is a sheet row joined with its control state.
type Activity struct {
	SheetRow

	Status       Status
	ActualStart  *time.Time
	ActualEnd    *time.Time
	DelayMinutes int
	Notes        string
	Milestone    bool
	Predecessors string

	// Key of the control row this activity is resolved from.
	// When HasControl is false, it is the key to be used to create one.
	Key        ControlKey
	HasControl bool
}

// IsMilestoneGroup tells a row is a milestone by its group.
//
// Milestones are rows without a group.
func IsMilestoneGroup(group string) bool {
	g := strings.TrimSpace(group)
	return g == "" || strings.EqualFold(g, "nan")
}

// Merge joins sheet rows with control rows.
//
// A row is looked up by (seq, crq, rowid) first, then by the sheet-scoped key (seq, crq, 0).
// Rows without control take the default state (StatusPlanned).
// A stored milestone flag can only turn a row into a milestone, never turn a detected milestone off.
//
// The result is ordered by CRQ (in catalogue order), seq and row id.
func Merge(rows []SheetRow, controls map[ControlKey]Control, catalogue Catalogue) []Activity {
	acts := make([]Activity, 0, len(rows))
	for _, row := range rows {
		act := Activity{
			SheetRow:  row,
			Status:    StatusPlanned,
			Milestone: IsMilestoneGroup(row.Group),
			Key:       SheetKey(row.Seq, row.CRQ),
		}

		ctrl, ok := controls[ControlKey{Seq: row.Seq, CRQ: row.CRQ, RowID: row.RowID}]
		if !ok {
			ctrl, ok = controls[SheetKey(row.Seq, row.CRQ)]
		}
		if ok {
			act.Key = ctrl.Key
			act.HasControl = true
			if ctrl.Status != "" {
				act.Status = ctrl.Status
			}
			act.ActualStart = ctrl.ActualStart
			act.ActualEnd = ctrl.ActualEnd
			act.DelayMinutes = ctrl.DelayMinutes
			act.Notes = ctrl.Notes
			act.Predecessors = ctrl.Predecessors
			act.Milestone = act.Milestone || ctrl.Milestone
		}
		acts = append(acts, act)
	}

	slices.SortStableFunc(acts, func(a, b Activity) int {
		return cmp.Or(
			cmp.Compare(catalogue.Index(a.CRQ), catalogue.Index(b.CRQ)),
			strings.Compare(a.CRQ, b.CRQ),
			cmp.Compare(a.Seq, b.Seq),
			cmp.Compare(a.RowID, b.RowID),
		)
	})
	return acts
}

// Control is the control row this activity is resolved from.
func (a Activity) Control() Control {
	return Control{
		Key:          a.Key,
		Status:       a.Status,
		ActualStart:  a.ActualStart,
		ActualEnd:    a.ActualEnd,
		DelayMinutes: a.DelayMinutes,
		Notes:        a.Notes,
		Milestone:    a.Milestone,
		Predecessors: a.Predecessors,
	}
}

// Find returns the activity with the row id.
func Find(acts []Activity, rowID int64) (Activity, bool) {
	for _, a := range acts {
		if a.RowID == rowID {
			return a, true
		}
	}
	return Activity{}, false
}

// ParsePredecessors parses a comma separated list of seqs.
//
// When any element is not a number, the list is empty.
func ParsePredecessors(s string) []int {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}
	}
	seqs := []int{}
	for _, elem := range strings.Split(s, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		n, err := strconv.Atoi(elem)
		if err != nil {
			return []int{}
		}
		seqs = append(seqs, n)
	}
	return seqs
}

// FormatPredecessors is the inverse of ParsePredecessors.
func FormatPredecessors(seqs []int) string {
	elems := make([]string, 0, len(seqs))
	for _, s := range seqs {
		elems = append(elems, strconv.Itoa(s))
	}
	return strings.Join(elems, ",")
}
