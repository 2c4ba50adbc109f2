// Package conformance is a test suite every ActivityInterface implementation should pass.
package conformance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/opst/crqboard/pkg/domain"
	kdb "github.com/opst/crqboard/pkg/domain/activity/db"
	domerr "github.com/opst/crqboard/pkg/domain/errors"
	"github.com/opst/crqboard/pkg/utils/try"
)

// Clock is the fixed time the testee should use for its timestamps.
var Clock = time.Date(2025, time.November, 10, 21, 0, 0, 0, time.UTC)

// Testee creates an empty store, using Clock as its clock.
type Testee func(t *testing.T) kdb.ActivityInterface

var gmt3 = domain.Zone(-3)

func at(s string) *time.Time {
	t, err := time.ParseInLocation(domain.TimeLayout, s, gmt3)
	if err != nil {
		panic(err)
	}
	return &t
}

func ref[T any](v T) *T {
	return &v
}

var sameInstant = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func fixtureRows() []domain.SheetRow {
	return []domain.SheetRow{
		{
			CRQ: "REDE", Seq: 1, Activity: "open window", Group: "",
			PlannedStart: at("10/11/2025 22:00:00"), PlannedEnd: at("10/11/2025 22:10:00"),
			Duration: "00:10",
		},
		{
			CRQ: "REDE", Seq: 2, Activity: "switch core", Group: "net",
			Location: "DC1", Executor: "Ana", Phone: "555-0101",
			PlannedStart: at("10/11/2025 22:10:00"), PlannedEnd: at("10/11/2025 23:00:00"),
		},
		{
			CRQ: "NFS", Seq: 1, Activity: "mount", Group: "storage",
		},
	}
}

func rowView(rows []domain.SheetRow) []domain.SheetRow {
	ret := make([]domain.SheetRow, 0, len(rows))
	for _, r := range rows {
		r.RowID = 0
		r.ImportedAt = time.Time{}
		ret = append(ret, r)
	}
	return ret
}

// Run runs the suite.
func Run(t *testing.T, testee Testee) {
	ctx := context.Background()

	t.Run("ReplaceSheet replaces every row", func(t *testing.T) {
		store := testee(t)

		try.To(store.ReplaceSheet(ctx, []domain.SheetRow{{CRQ: "SI", Seq: 9, Activity: "old"}})).OrFatal(t)
		n := try.To(store.ReplaceSheet(ctx, fixtureRows())).OrFatal(t)
		if n != 3 {
			t.Errorf("saved: %d", n)
		}

		actual := try.To(store.Sheet(ctx)).OrFatal(t)
		expected := []domain.SheetRow{fixtureRows()[2], fixtureRows()[0], fixtureRows()[1]} // NFS < REDE
		if diff := cmp.Diff(expected, rowView(actual), sameInstant); diff != "" {
			t.Errorf("(-expected, +actual)\n%s", diff)
		}
		for _, r := range actual {
			if r.RowID == 0 {
				t.Errorf("row id is not assigned: %+v", r)
			}
			if !r.ImportedAt.Equal(Clock) {
				t.Errorf("imported at: %s", r.ImportedAt)
			}
		}
	})

	t.Run("control rows survive ReplaceSheet", func(t *testing.T) {
		store := testee(t)
		try.To(store.ReplaceSheet(ctx, fixtureRows())).OrFatal(t)
		try.To(store.SaveControl(
			ctx, domain.SheetKey(2, "REDE"),
			domain.ControlDelta{Status: ref(domain.StatusInProgress)},
		)).OrFatal(t)

		try.To(store.ReplaceSheet(ctx, fixtureRows())).OrFatal(t)

		ctrl := try.To(store.Control(ctx, domain.SheetKey(2, "REDE"))).OrFatal(t)
		if ctrl.Status != domain.StatusInProgress {
			t.Errorf("status: %s", ctrl.Status)
		}
	})

	t.Run("Control of missing key is ErrMissing", func(t *testing.T) {
		store := testee(t)
		if _, err := store.Control(ctx, domain.SheetKey(1, "SI")); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("expected ErrMissing, but %v", err)
		}
	})

	t.Run("SaveControl inserts with defaults, then updates only given fields", func(t *testing.T) {
		store := testee(t)
		key := domain.SheetKey(2, "REDE")

		inserted := try.To(store.SaveControl(ctx, key, domain.ControlDelta{Notes: ref("waiting")})).OrFatal(t)
		expected := domain.Control{
			Key: key, Status: domain.StatusPlanned, Notes: "waiting",
			CreatedAt: Clock, UpdatedAt: Clock,
		}
		if diff := cmp.Diff(expected, inserted, sameInstant); diff != "" {
			t.Errorf("inserted: (-expected, +actual)\n%s", diff)
		}

		updated := try.To(store.SaveControl(ctx, key, domain.ControlDelta{
			Status:       ref(domain.StatusLate),
			ActualStart:  at("10/11/2025 22:10:00"),
			ActualEnd:    at("10/11/2025 23:15:00"),
			DelayMinutes: ref(15),
			Milestone:    ref(true),
			Predecessors: ref("1"),
		})).OrFatal(t)

		expected = domain.Control{
			Key: key, Status: domain.StatusLate,
			ActualStart: at("10/11/2025 22:10:00"), ActualEnd: at("10/11/2025 23:15:00"),
			DelayMinutes: 15, Notes: "waiting", Milestone: true, Predecessors: "1",
			CreatedAt: Clock, UpdatedAt: Clock,
		}
		if diff := cmp.Diff(expected, updated, sameInstant); diff != "" {
			t.Errorf("updated: (-expected, +actual)\n%s", diff)
		}

		stored := try.To(store.Control(ctx, key)).OrFatal(t)
		if diff := cmp.Diff(expected, stored, sameInstant); diff != "" {
			t.Errorf("stored: (-expected, +actual)\n%s", diff)
		}
	})

	t.Run("InitControls does not touch existing rows", func(t *testing.T) {
		store := testee(t)
		try.To(store.SaveControl(
			ctx, domain.SheetKey(1, "REDE"),
			domain.ControlDelta{Status: ref(domain.StatusDone)},
		)).OrFatal(t)

		n := try.To(store.InitControls(ctx, []domain.Control{
			domain.NewControl(domain.SheetKey(1, "REDE")),
			{Key: domain.SheetKey(2, "REDE"), Status: domain.StatusPlanned, Milestone: true},
			domain.NewControl(domain.SheetKey(1, "NFS")),
		})).OrFatal(t)
		if n != 2 {
			t.Errorf("inserted: %d", n)
		}

		ctrls := try.To(store.Controls(ctx)).OrFatal(t)
		if len(ctrls) != 3 {
			t.Fatalf("controls: %v", ctrls)
		}
		if c := ctrls[domain.SheetKey(1, "REDE")]; c.Status != domain.StatusDone {
			t.Errorf("existing row is overwritten: %+v", c)
		}
		if c := ctrls[domain.SheetKey(2, "REDE")]; c.Status != domain.StatusPlanned || !c.Milestone {
			t.Errorf("initialized row: %+v", c)
		}
	})

	t.Run("Create and Delete an activity", func(t *testing.T) {
		store := testee(t)
		try.To(store.ReplaceSheet(ctx, fixtureRows())).OrFatal(t)

		row, ctrl, err := store.Create(
			ctx,
			domain.SheetRow{CRQ: "SI", Seq: 4, Activity: "extra", Group: "sec", PlannedEnd: at("10/11/2025 23:00:00")},
			domain.ControlDelta{Status: ref(domain.StatusInProgress), ActualStart: at("10/11/2025 22:00:00")},
		)
		if err != nil {
			t.Fatal(err)
		}
		if row.RowID == 0 {
			t.Fatalf("row id is not assigned")
		}
		if ctrl.Key != (domain.ControlKey{Seq: 4, CRQ: "SI", RowID: row.RowID}) {
			t.Errorf("control key: %+v", ctrl.Key)
		}
		if ctrl.Status != domain.StatusInProgress || !ctrl.ActualStart.Equal(*at("10/11/2025 22:00:00")) {
			t.Errorf("control: %+v", ctrl)
		}
		if len(try.To(store.Sheet(ctx)).OrFatal(t)) != 4 {
			t.Errorf("row is not inserted")
		}

		result := try.To(store.Delete(ctx, row.RowID, ctrl.Key)).OrFatal(t)
		if result != (domain.RemoveResult{ExcelDeleted: 1, ControlDeleted: 1}) {
			t.Errorf("removed: %+v", result)
		}
		if _, err := store.Control(ctx, ctrl.Key); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("control is not deleted: %v", err)
		}

		result = try.To(store.Delete(ctx, row.RowID, ctrl.Key)).OrFatal(t)
		if result != (domain.RemoveResult{}) {
			t.Errorf("removed again: %+v", result)
		}
	})

	t.Run("Delete keeps a shared control row while the seq has another sheet row", func(t *testing.T) {
		store := testee(t)
		try.To(store.ReplaceSheet(ctx, []domain.SheetRow{
			{CRQ: "REDE", Seq: 5, Activity: "a"},
			{CRQ: "REDE", Seq: 5, Activity: "b"},
		})).OrFatal(t)
		key := domain.SheetKey(5, "REDE")
		try.To(store.InitControls(ctx, []domain.Control{domain.NewControl(key)})).OrFatal(t)
		try.To(store.SaveControl(ctx, key, domain.ControlDelta{Status: ref(domain.StatusInProgress)})).OrFatal(t)

		rows := try.To(store.Sheet(ctx)).OrFatal(t)
		if len(rows) != 2 {
			t.Fatalf("rows: %+v", rows)
		}

		result := try.To(store.Delete(ctx, rows[0].RowID, key)).OrFatal(t)
		if result != (domain.RemoveResult{ExcelDeleted: 1}) {
			t.Errorf("removed: %+v", result)
		}
		ctrl := try.To(store.Control(ctx, key)).OrFatal(t)
		if ctrl.Status != domain.StatusInProgress {
			t.Errorf("shared control is changed: %+v", ctrl)
		}

		result = try.To(store.Delete(ctx, rows[1].RowID, key)).OrFatal(t)
		if result != (domain.RemoveResult{ExcelDeleted: 1, ControlDeleted: 1}) {
			t.Errorf("removed: %+v", result)
		}
		if _, err := store.Control(ctx, key); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("control is not deleted: %v", err)
		}
	})

	t.Run("RemoveSeqs removes seqs of one CRQ", func(t *testing.T) {
		store := testee(t)
		try.To(store.ReplaceSheet(ctx, append(fixtureRows(), domain.SheetRow{CRQ: "NFS", Seq: 2, Activity: "x"}))).OrFatal(t)
		try.To(store.InitControls(ctx, []domain.Control{
			domain.NewControl(domain.SheetKey(1, "REDE")),
			domain.NewControl(domain.SheetKey(1, "NFS")),
			domain.NewControl(domain.SheetKey(2, "NFS")),
			domain.NewControl(domain.ControlKey{Seq: 2, CRQ: "NFS", RowID: 99}),
		})).OrFatal(t)

		result := try.To(store.RemoveSeqs(ctx, "NFS", []int{2, 3})).OrFatal(t)
		if result != (domain.RemoveResult{ExcelDeleted: 1, ControlDeleted: 2}) {
			t.Errorf("removed: %+v", result)
		}

		rows := try.To(store.Sheet(ctx)).OrFatal(t)
		if len(rows) != 3 {
			t.Errorf("rows: %+v", rows)
		}
		ctrls := try.To(store.Controls(ctx)).OrFatal(t)
		if _, ok := ctrls[domain.SheetKey(1, "NFS")]; !ok || len(ctrls) != 2 {
			t.Errorf("controls: %+v", ctrls)
		}

		if result := try.To(store.RemoveSeqs(ctx, "NFS", nil)).OrFatal(t); result != (domain.RemoveResult{}) {
			t.Errorf("nothing should be removed: %+v", result)
		}
	})

	t.Run("ClearAll empties the store", func(t *testing.T) {
		store := testee(t)
		try.To(store.ReplaceSheet(ctx, fixtureRows())).OrFatal(t)
		try.To(store.InitControls(ctx, []domain.Control{domain.NewControl(domain.SheetKey(1, "REDE"))})).OrFatal(t)

		result := try.To(store.ClearAll(ctx)).OrFatal(t)
		if result != (domain.ClearResult{ExcelDeleted: 3, ControlDeleted: 1, Success: true}) {
			t.Errorf("cleared: %+v", result)
		}
		if rows := try.To(store.Sheet(ctx)).OrFatal(t); len(rows) != 0 {
			t.Errorf("rows: %+v", rows)
		}
	})

	t.Run("Export and Import restore the store", func(t *testing.T) {
		store := testee(t)
		try.To(store.ReplaceSheet(ctx, fixtureRows())).OrFatal(t)
		try.To(store.SaveControl(ctx, domain.SheetKey(2, "REDE"), domain.ControlDelta{
			Status: ref(domain.StatusInProgress), ActualStart: at("10/11/2025 22:12:00"),
		})).OrFatal(t)

		rows, ctrls, err := store.Export(ctx)
		if err != nil {
			t.Fatal(err)
		}

		try.To(store.ClearAll(ctx)).OrFatal(t)
		try.To(store.ReplaceSheet(ctx, []domain.SheetRow{{CRQ: "SI", Seq: 1, Activity: "noise"}})).OrFatal(t)

		result := try.To(store.Import(ctx, rows, ctrls)).OrFatal(t)
		if result != (domain.ImportResult{ExcelImported: 3, ControlImported: 1}) {
			t.Errorf("imported: %+v", result)
		}

		restoredRows, restoredCtrls, err := store.Export(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(rows, restoredRows, sameInstant); diff != "" {
			t.Errorf("rows: (-expected, +actual)\n%s", diff)
		}
		if diff := cmp.Diff(ctrls, restoredCtrls, sameInstant); diff != "" {
			t.Errorf("controls: (-expected, +actual)\n%s", diff)
		}

		// new rows do not collide with restored row ids.
		created, _, err := store.Create(ctx, domain.SheetRow{CRQ: "SI", Seq: 2, Activity: "after"}, domain.ControlDelta{})
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range rows {
			if r.RowID == created.RowID {
				t.Errorf("row id %d is reused", created.RowID)
			}
		}
	})

	t.Run("Import skips entries which cannot be stored", func(t *testing.T) {
		store := testee(t)
		result := try.To(store.Import(
			ctx,
			[]domain.SheetRow{
				{RowID: 10, CRQ: "SI", Seq: 1, Activity: "a"},
				{RowID: 10, CRQ: "SI", Seq: 2, Activity: "duplicated id"},
			},
			[]domain.Control{
				domain.NewControl(domain.SheetKey(1, "SI")),
				domain.NewControl(domain.SheetKey(1, "SI")),
			},
		)).OrFatal(t)
		if result != (domain.ImportResult{ExcelImported: 1, ControlImported: 1, Skipped: 2}) {
			t.Errorf("imported: %+v", result)
		}
		ctrls := try.To(store.Controls(ctx)).OrFatal(t)
		if diff := cmp.Diff(
			[]domain.ControlKey{domain.SheetKey(1, "SI")},
			keysOf(ctrls),
			cmpopts.EquateEmpty(),
		); diff != "" {
			t.Errorf("(-expected, +actual)\n%s", diff)
		}
	})
}

func keysOf(m map[domain.ControlKey]domain.Control) []domain.ControlKey {
	ret := []domain.ControlKey{}
	for k := range m {
		ret = append(ret, k)
	}
	return ret
}
