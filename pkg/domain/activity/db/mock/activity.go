package mocks

import (
	"context"
	"errors"

	"github.com/opst/crqboard/pkg/domain"
	kdb "github.com/opst/crqboard/pkg/domain/activity/db"
	dbmock "github.com/opst/crqboard/pkg/domain/internal/db/mock"
)

type ActivityInterface struct {
	Impl struct {
		ReplaceSheet func(context.Context, []domain.SheetRow) (int, error)
		Sheet        func(context.Context) ([]domain.SheetRow, error)
		Controls     func(context.Context) (map[domain.ControlKey]domain.Control, error)
		Control      func(context.Context, domain.ControlKey) (domain.Control, error)
		SaveControl  func(context.Context, domain.ControlKey, domain.ControlDelta) (domain.Control, error)
		InitControls func(context.Context, []domain.Control) (int, error)
		Create       func(context.Context, domain.SheetRow, domain.ControlDelta) (domain.SheetRow, domain.Control, error)
		Delete       func(context.Context, int64, domain.ControlKey) (domain.RemoveResult, error)
		RemoveSeqs   func(context.Context, string, []int) (domain.RemoveResult, error)
		ClearAll     func(context.Context) (domain.ClearResult, error)
		Export       func(context.Context) ([]domain.SheetRow, []domain.Control, error)
		Import       func(context.Context, []domain.SheetRow, []domain.Control) (domain.ImportResult, error)
	}
	Calls struct {
		ReplaceSheet dbmock.CallLog[[]domain.SheetRow]
		Sheet        dbmock.CallLog[struct{}]
		Controls     dbmock.CallLog[struct{}]
		Control      dbmock.CallLog[domain.ControlKey]
		SaveControl  dbmock.CallLog[struct {
			Key   domain.ControlKey
			Delta domain.ControlDelta
		}]
		InitControls dbmock.CallLog[[]domain.Control]
		Create       dbmock.CallLog[struct {
			Row   domain.SheetRow
			Delta domain.ControlDelta
		}]
		Delete dbmock.CallLog[struct {
			RowID int64
			Key   domain.ControlKey
		}]
		RemoveSeqs dbmock.CallLog[struct {
			CRQ  string
			Seqs []int
		}]
		ClearAll dbmock.CallLog[struct{}]
		Export   dbmock.CallLog[struct{}]
		Import   dbmock.CallLog[struct {
			Rows     []domain.SheetRow
			Controls []domain.Control
		}]
	}
}

func NewActivityInterface() *ActivityInterface {
	return &ActivityInterface{}
}

var _ kdb.ActivityInterface = &ActivityInterface{}

func (m *ActivityInterface) ReplaceSheet(ctx context.Context, rows []domain.SheetRow) (int, error) {
	m.Calls.ReplaceSheet = append(m.Calls.ReplaceSheet, rows)
	if m.Impl.ReplaceSheet != nil {
		return m.Impl.ReplaceSheet(ctx, rows)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) Sheet(ctx context.Context) ([]domain.SheetRow, error) {
	m.Calls.Sheet = append(m.Calls.Sheet, struct{}{})
	if m.Impl.Sheet != nil {
		return m.Impl.Sheet(ctx)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) Controls(ctx context.Context) (map[domain.ControlKey]domain.Control, error) {
	m.Calls.Controls = append(m.Calls.Controls, struct{}{})
	if m.Impl.Controls != nil {
		return m.Impl.Controls(ctx)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) Control(ctx context.Context, key domain.ControlKey) (domain.Control, error) {
	m.Calls.Control = append(m.Calls.Control, key)
	if m.Impl.Control != nil {
		return m.Impl.Control(ctx, key)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) SaveControl(ctx context.Context, key domain.ControlKey, delta domain.ControlDelta) (domain.Control, error) {
	m.Calls.SaveControl = append(m.Calls.SaveControl, struct {
		Key   domain.ControlKey
		Delta domain.ControlDelta
	}{Key: key, Delta: delta})
	if m.Impl.SaveControl != nil {
		return m.Impl.SaveControl(ctx, key, delta)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) InitControls(ctx context.Context, ctrls []domain.Control) (int, error) {
	m.Calls.InitControls = append(m.Calls.InitControls, ctrls)
	if m.Impl.InitControls != nil {
		return m.Impl.InitControls(ctx, ctrls)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) Create(ctx context.Context, row domain.SheetRow, delta domain.ControlDelta) (domain.SheetRow, domain.Control, error) {
	m.Calls.Create = append(m.Calls.Create, struct {
		Row   domain.SheetRow
		Delta domain.ControlDelta
	}{Row: row, Delta: delta})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, row, delta)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) Delete(ctx context.Context, rowID int64, key domain.ControlKey) (domain.RemoveResult, error) {
	m.Calls.Delete = append(m.Calls.Delete, struct {
		RowID int64
		Key   domain.ControlKey
	}{RowID: rowID, Key: key})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, rowID, key)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) RemoveSeqs(ctx context.Context, crq string, seqs []int) (domain.RemoveResult, error) {
	m.Calls.RemoveSeqs = append(m.Calls.RemoveSeqs, struct {
		CRQ  string
		Seqs []int
	}{CRQ: crq, Seqs: seqs})
	if m.Impl.RemoveSeqs != nil {
		return m.Impl.RemoveSeqs(ctx, crq, seqs)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) ClearAll(ctx context.Context) (domain.ClearResult, error) {
	m.Calls.ClearAll = append(m.Calls.ClearAll, struct{}{})
	if m.Impl.ClearAll != nil {
		return m.Impl.ClearAll(ctx)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) Export(ctx context.Context) ([]domain.SheetRow, []domain.Control, error) {
	m.Calls.Export = append(m.Calls.Export, struct{}{})
	if m.Impl.Export != nil {
		return m.Impl.Export(ctx)
	}
	panic(errors.New("it should no be called"))
}

func (m *ActivityInterface) Import(ctx context.Context, rows []domain.SheetRow, ctrls []domain.Control) (domain.ImportResult, error) {
	m.Calls.Import = append(m.Calls.Import, struct {
		Rows     []domain.SheetRow
		Controls []domain.Control
	}{Rows: rows, Controls: ctrls})
	if m.Impl.Import != nil {
		return m.Impl.Import(ctx, rows, ctrls)
	}
	panic(errors.New("it should no be called"))
}
