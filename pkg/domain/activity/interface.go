package activity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/activity/db"
	"github.com/opst/crqboard/pkg/domain/errors/dberrors"
	xe "github.com/opst/crqboard/pkg/errors"
)

type Interface interface {
	Database() db.ActivityInterface
	Catalogue() domain.Catalogue

	// Now is the operator clock.
	Now() time.Time

	// Location is the time zone the operators work in.
	Location() *time.Location

	// Activities returns every activity, sheet rows merged with control rows.
	Activities(ctx context.Context) ([]domain.Activity, error)

	// Activity returns the activity of the sheet row.
	//
	// # Returns
	//
	// - error: ErrMissing when there are no such row.
	Activity(ctx context.Context, rowID int64) (domain.Activity, error)

	// ImportSheet replaces the sheet with records and creates control rows
	// for activities which do not have one yet.
	ImportSheet(ctx context.Context, records []domain.SheetRecord) (SheetImport, error)

	// Update applies an operator edit.
	//
	// # Returns
	//
	// - error: ErrMissing when there are no such row.
	// ErrInvalidTransition or ErrInvalid when the update is rejected.
	Update(ctx context.Context, rowID int64, upd domain.ActivityUpdate) (domain.Activity, error)

	// Create adds an activity which is not in the sheet.
	Create(ctx context.Context, draft domain.ActivityDraft) (domain.Activity, error)

	// Delete removes the sheet row and its control row.
	Delete(ctx context.Context, rowID int64) (domain.RemoveResult, error)

	// Export makes a backup document.
	Export(ctx context.Context) (domain.Backup, error)

	// Restore replaces the store with the backup.
	//
	// Entries which cannot be read are skipped, counted and returned as []error.
	Restore(ctx context.Context, backup domain.Backup) (domain.ImportResult, []error, error)
}

// SheetImport is the outcome of ImportSheet.
type SheetImport struct {
	// sheet rows saved.
	Saved int

	// records not saved because their seq is invalid.
	Skipped int

	// control rows created.
	Initialized int

	// problems found in records. Skipped records are also reported here.
	Issues []string
}

type impl struct {
	database  db.ActivityInterface
	catalogue domain.Catalogue
	now       func() time.Time
	loc       *time.Location
}

type Option func(*impl) *impl

// WithClock sets the operator clock. Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(i *impl) *impl {
		i.now = now
		return i
	}
}

// WithLocation sets the operator time zone. Default is GMT-3.
func WithLocation(loc *time.Location) Option {
	return func(i *impl) *impl {
		i.loc = loc
		return i
	}
}

func New(database db.ActivityInterface, catalogue domain.Catalogue, options ...Option) Interface {
	i := &impl{
		database:  database,
		catalogue: catalogue,
		now:       time.Now,
		loc:       domain.Zone(-3),
	}
	for _, o := range options {
		i = o(i)
	}
	return i
}

func (i *impl) Database() db.ActivityInterface {
	return i.database
}

func (i *impl) Catalogue() domain.Catalogue {
	return i.catalogue
}

func (i *impl) Now() time.Time {
	return i.now().In(i.loc)
}

func (i *impl) Location() *time.Location {
	return i.loc
}

func (i *impl) Activities(ctx context.Context) ([]domain.Activity, error) {
	rows, err := i.database.Sheet(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ctrls, err := i.database.Controls(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return domain.Merge(rows, ctrls, i.catalogue), nil
}

func (i *impl) Activity(ctx context.Context, rowID int64) (domain.Activity, error) {
	acts, err := i.Activities(ctx)
	if err != nil {
		return domain.Activity{}, err
	}
	act, ok := domain.Find(acts, rowID)
	if !ok {
		return domain.Activity{}, xe.Wrap(dberrors.Missing{
			Table: "excel_data", Identity: strconv.FormatInt(rowID, 10),
		})
	}
	return act, nil
}

func (i *impl) ImportSheet(ctx context.Context, records []domain.SheetRecord) (SheetImport, error) {
	result := SheetImport{Issues: []string{}}

	rows := make([]domain.SheetRow, 0, len(records))
	for _, rec := range records {
		row, issues, err := rec.Row(i.loc)
		result.Issues = append(result.Issues, issues...)
		if err != nil {
			result.Skipped += 1
			result.Issues = append(result.Issues, fmt.Sprintf("%s: skipped: %s", rec.CRQ, err))
			continue
		}
		rows = append(rows, row)
	}

	saved, err := i.database.ReplaceSheet(ctx, rows)
	if err != nil {
		return SheetImport{}, xe.Wrap(err)
	}
	result.Saved = saved

	acts, err := i.Activities(ctx)
	if err != nil {
		return SheetImport{}, err
	}
	missing := []domain.Control{}
	for _, a := range acts {
		if a.HasControl {
			continue
		}
		ctrl := domain.NewControl(a.Key)
		ctrl.Milestone = a.Milestone
		missing = append(missing, ctrl)
	}
	if len(missing) == 0 {
		return result, nil
	}

	initialized, err := i.database.InitControls(ctx, missing)
	if err != nil {
		return SheetImport{}, xe.Wrap(err)
	}
	result.Initialized = initialized
	return result, nil
}

func (i *impl) merged(row domain.SheetRow, ctrl domain.Control) domain.Activity {
	return domain.Merge(
		[]domain.SheetRow{row},
		map[domain.ControlKey]domain.Control{ctrl.Key: ctrl},
		i.catalogue,
	)[0]
}

func (i *impl) Update(ctx context.Context, rowID int64, upd domain.ActivityUpdate) (domain.Activity, error) {
	current, err := i.Activity(ctx, rowID)
	if err != nil {
		return domain.Activity{}, err
	}

	delta, err := domain.ApplyUpdate(current, upd, i.Now())
	if err != nil {
		return domain.Activity{}, xe.Wrap(err)
	}

	ctrl, err := i.database.SaveControl(ctx, current.Key, delta)
	if err != nil {
		return domain.Activity{}, xe.Wrap(err)
	}
	return i.merged(current.SheetRow, ctrl), nil
}

func (i *impl) Create(ctx context.Context, draft domain.ActivityDraft) (domain.Activity, error) {
	row, delta, err := domain.NewActivity(draft, i.catalogue)
	if err != nil {
		return domain.Activity{}, xe.Wrap(err)
	}
	created, ctrl, err := i.database.Create(ctx, row, delta)
	if err != nil {
		return domain.Activity{}, xe.Wrap(err)
	}
	return i.merged(created, ctrl), nil
}

func (i *impl) Delete(ctx context.Context, rowID int64) (domain.RemoveResult, error) {
	act, err := i.Activity(ctx, rowID)
	if err != nil {
		return domain.RemoveResult{}, err
	}
	result, err := i.database.Delete(ctx, act.RowID, act.Key)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	return result, nil
}

func (i *impl) Export(ctx context.Context) (domain.Backup, error) {
	rows, ctrls, err := i.database.Export(ctx)
	if err != nil {
		return domain.Backup{}, xe.Wrap(err)
	}
	return domain.NewBackup(rows, ctrls, i.now(), i.loc), nil
}

func (i *impl) Restore(ctx context.Context, backup domain.Backup) (domain.ImportResult, []error, error) {
	rows, ctrls, errs := backup.Contents(i.loc)
	result, err := i.database.Import(ctx, rows, ctrls)
	if err != nil {
		return domain.ImportResult{}, errs, xe.Wrap(err)
	}
	result.Skipped += len(errs)
	return result, errs, nil
}
