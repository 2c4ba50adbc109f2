package db

import (
	"context"

	"github.com/opst/crqboard/pkg/domain"
)

// ActivityInterface is the store of sheet rows and control rows.
type ActivityInterface interface {
	// ReplaceSheet deletes all sheet rows and inserts rows, in one transaction.
	//
	// Control rows are left as they are.
	//
	// # Returns
	//
	// - int: count of inserted rows
	//
	// - error
	ReplaceSheet(ctx context.Context, rows []domain.SheetRow) (int, error)

	// Sheet returns all sheet rows, ordered by CRQ, seq and row id.
	Sheet(ctx context.Context) ([]domain.SheetRow, error)

	// Controls returns all control rows.
	Controls(ctx context.Context) (map[domain.ControlKey]domain.Control, error)

	// Control returns the control row for key.
	//
	// When it is missing, the error is ErrMissing.
	Control(ctx context.Context, key domain.ControlKey) (domain.Control, error)

	// SaveControl updates the control row for key with delta, or inserts it.
	//
	// On insert, fields not set in delta take defaults of domain.NewControl.
	//
	// # Returns
	//
	// - domain.Control: control row after saving
	//
	// - error
	SaveControl(ctx context.Context, key domain.ControlKey, delta domain.ControlDelta) (domain.Control, error)

	// InitControls inserts control rows which do not exist yet.
	//
	// Existing rows are left as they are.
	//
	// # Returns
	//
	// - int: count of inserted rows
	//
	// - error
	InitControls(ctx context.Context, controls []domain.Control) (int, error)

	// Create inserts a sheet row and its control row keyed by the new row id.
	//
	// # Returns
	//
	// - domain.SheetRow: inserted row, with its RowID
	//
	// - domain.Control: inserted control row
	//
	// - error
	Create(ctx context.Context, row domain.SheetRow, delta domain.ControlDelta) (domain.SheetRow, domain.Control, error)

	// Delete removes the sheet row with rowID and the control row for key.
	//
	// A sheet-scoped control row (key.RowID == 0) is kept while another sheet row
	// has the same seq and CRQ.
	Delete(ctx context.Context, rowID int64, key domain.ControlKey) (domain.RemoveResult, error)

	// RemoveSeqs removes seqs of a CRQ from both of sheet rows and control rows.
	RemoveSeqs(ctx context.Context, crq string, seqs []int) (domain.RemoveResult, error)

	// ClearAll removes every sheet row and control row.
	ClearAll(ctx context.Context) (domain.ClearResult, error)

	// Export returns every sheet row and control row.
	Export(ctx context.Context) ([]domain.SheetRow, []domain.Control, error)

	// Import replaces every sheet row and control row.
	//
	// Sheet rows keep their RowID when it is set.
	// Entries which cannot be stored are skipped and counted.
	Import(ctx context.Context, rows []domain.SheetRow, controls []domain.Control) (domain.ImportResult, error)
}
