package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/activity"
	mockdb "github.com/opst/crqboard/pkg/domain/activity/db/mock"
)

var gmt3 = domain.Zone(-3)

// 10/11/2025 22:00:00 in GMT-3
var now = time.Date(2025, time.November, 11, 1, 0, 0, 0, time.UTC)

func at(hh, mm int) *time.Time {
	t := time.Date(2025, time.November, 10, hh, mm, 0, 0, gmt3)
	return &t
}

func Status(statusCode int) func(error) bool {
	return func(err error) bool {
		switch actual := err.(type) {
		case *echo.HTTPError:
			return actual.Code == statusCode
		default:
			return false
		}
	}
}

// fixture is a store with three activities:
//
// - REDE seq 1 (row 1): done
//
// - REDE seq 2 (row 2): planned, after REDE seq 1
//
// - NFS seq 1 (row 3): planned, without control row
type fixture struct {
	rows     []domain.SheetRow
	controls map[domain.ControlKey]domain.Control
}

func newFixture() *fixture {
	return &fixture{
		rows: []domain.SheetRow{
			{
				RowID: 1, CRQ: "REDE", Seq: 1, Activity: "Backup", Group: "Core",
				PlannedStart: at(21, 0), PlannedEnd: at(21, 30), Duration: "00:30:00",
			},
			{
				RowID: 2, CRQ: "REDE", Seq: 2, Activity: "Migrar VLAN", Group: "Core",
				PlannedStart: at(21, 30), PlannedEnd: at(22, 30), Duration: "01:00:00",
			},
			{
				RowID: 3, CRQ: "NFS", Seq: 1, Activity: "Montar export", Group: "Storage",
				PlannedStart: at(23, 0), PlannedEnd: at(23, 30), Duration: "00:30:00",
			},
		},
		controls: map[domain.ControlKey]domain.Control{
			domain.SheetKey(1, "REDE"): {
				Key: domain.SheetKey(1, "REDE"), Status: domain.StatusDone,
				ActualStart: at(21, 0), ActualEnd: at(21, 30),
			},
			domain.SheetKey(2, "REDE"): {
				Key: domain.SheetKey(2, "REDE"), Status: domain.StatusPlanned,
				Predecessors: "1",
			},
		},
	}
}

// database returns a mock store serving the fixture.
//
// Sheet and control updates are reflected to the fixture.
func (f *fixture) database() *mockdb.ActivityInterface {
	m := mockdb.NewActivityInterface()
	m.Impl.Sheet = func(context.Context) ([]domain.SheetRow, error) {
		return f.rows, nil
	}
	m.Impl.Controls = func(context.Context) (map[domain.ControlKey]domain.Control, error) {
		return f.controls, nil
	}
	m.Impl.ReplaceSheet = func(_ context.Context, rows []domain.SheetRow) (int, error) {
		f.rows = make([]domain.SheetRow, 0, len(rows))
		for nth, r := range rows {
			r.RowID = int64(100 + nth)
			f.rows = append(f.rows, r)
		}
		return len(rows), nil
	}
	m.Impl.InitControls = func(_ context.Context, ctrls []domain.Control) (int, error) {
		for _, c := range ctrls {
			f.controls[c.Key] = c
		}
		return len(ctrls), nil
	}
	m.Impl.SaveControl = func(_ context.Context, key domain.ControlKey, delta domain.ControlDelta) (domain.Control, error) {
		ctrl, ok := f.controls[key]
		if !ok {
			ctrl = domain.NewControl(key)
		}
		ctrl = delta.Apply(ctrl)
		f.controls[key] = ctrl
		return ctrl, nil
	}
	return m
}

func service(t *testing.T, database *mockdb.ActivityInterface) activity.Interface {
	t.Helper()
	return activity.New(
		database, domain.DefaultCatalogue(),
		activity.WithClock(func() time.Time { return now }),
		activity.WithLocation(gmt3),
	)
}
