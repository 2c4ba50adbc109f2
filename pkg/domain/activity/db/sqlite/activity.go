package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/opst/crqboard/pkg/domain"
	kdb "github.com/opst/crqboard/pkg/domain/activity/db"
	domerr "github.com/opst/crqboard/pkg/domain/errors"
	"github.com/opst/crqboard/pkg/domain/errors/dberrors"
	xe "github.com/opst/crqboard/pkg/errors"
)

// Times are stored as RFC 3339 text in UTC.
const timeFormat = time.RFC3339Nano

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type activitySqlite struct { // implements kdb.ActivityInterface
	db  *sql.DB
	now func() time.Time
}

var _ kdb.ActivityInterface = &activitySqlite{}

type Option func(*activitySqlite) *activitySqlite

// WithClock sets the clock used for import, creation and update timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *activitySqlite) *activitySqlite {
		a.now = now
		return a
	}
}

func New(db *sql.DB, options ...Option) *activitySqlite {
	a := &activitySqlite{db: db, now: time.Now}
	for _, o := range options {
		a = o(a)
	}
	return a
}

func toText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

func stamp(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func fromText(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeFormat, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseStamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeFormat, s)
}

const sheetColumns = `
	id, sequencia, seq, atividade, grupo, localidade,
	executor, telefone, inicio, fim, tempo, data_importacao`

func scanSheet(rows *sql.Rows) ([]domain.SheetRow, error) {
	ret := []domain.SheetRow{}
	for rows.Next() {
		var r domain.SheetRow
		var inicio, fim sql.NullString
		var imported string
		if err := rows.Scan(
			&r.RowID, &r.CRQ, &r.Seq, &r.Activity, &r.Group, &r.Location,
			&r.Executor, &r.Phone, &inicio, &fim, &r.Duration, &imported,
		); err != nil {
			return nil, err
		}
		var err error
		if r.PlannedStart, err = fromText(inicio); err != nil {
			return nil, err
		}
		if r.PlannedEnd, err = fromText(fim); err != nil {
			return nil, err
		}
		if r.ImportedAt, err = parseStamp(imported); err != nil {
			return nil, err
		}
		ret = append(ret, r)
	}
	return ret, rows.Err()
}

const controlColumns = `
	seq, sequencia, excel_data_id, status,
	horario_inicio_real, horario_fim_real, atraso_minutos,
	observacoes, is_milestone, predecessoras,
	data_criacao, data_atualizacao`

func scanControls(rows *sql.Rows) ([]domain.Control, error) {
	ret := []domain.Control{}
	for rows.Next() {
		var c domain.Control
		var status string
		var start, end sql.NullString
		var created, updated string
		if err := rows.Scan(
			&c.Key.Seq, &c.Key.CRQ, &c.Key.RowID, &status,
			&start, &end, &c.DelayMinutes,
			&c.Notes, &c.Milestone, &c.Predecessors,
			&created, &updated,
		); err != nil {
			return nil, err
		}
		c.Status = domain.Status(status)

		var err error
		if c.ActualStart, err = fromText(start); err != nil {
			return nil, err
		}
		if c.ActualEnd, err = fromText(end); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseStamp(created); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseStamp(updated); err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	return ret, rows.Err()
}

func insertRow(ctx context.Context, q queryer, r domain.SheetRow, now time.Time) (domain.SheetRow, error) {
	if r.ImportedAt.IsZero() {
		r.ImportedAt = now
	}
	var id any
	if r.RowID > 0 {
		id = r.RowID
	}
	res, err := q.ExecContext(
		ctx,
		`
		INSERT INTO excel_data (`+sheetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
		id, r.CRQ, r.Seq, r.Activity, r.Group, r.Location,
		r.Executor, r.Phone, toText(r.PlannedStart), toText(r.PlannedEnd), r.Duration, stamp(r.ImportedAt),
	)
	if err != nil {
		return domain.SheetRow{}, err
	}
	if r.RowID, err = res.LastInsertId(); err != nil {
		return domain.SheetRow{}, err
	}
	return r, nil
}

func upsertControl(ctx context.Context, q queryer, c domain.Control) error {
	_, err := q.ExecContext(
		ctx,
		`
		INSERT INTO activity_control (`+controlColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (seq, sequencia, excel_data_id) DO UPDATE SET
			status = excluded.status,
			horario_inicio_real = excluded.horario_inicio_real,
			horario_fim_real = excluded.horario_fim_real,
			atraso_minutos = excluded.atraso_minutos,
			observacoes = excluded.observacoes,
			is_milestone = excluded.is_milestone,
			predecessoras = excluded.predecessoras,
			data_atualizacao = excluded.data_atualizacao
		`,
		c.Key.Seq, c.Key.CRQ, c.Key.RowID, string(c.Status),
		toText(c.ActualStart), toText(c.ActualEnd), c.DelayMinutes,
		c.Notes, c.Milestone, c.Predecessors,
		stamp(c.CreatedAt), stamp(c.UpdatedAt),
	)
	return err
}

func affected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

func (a *activitySqlite) ReplaceSheet(ctx context.Context, rows []domain.SheetRow) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM excel_data`); err != nil {
		return 0, xe.Wrap(err)
	}
	now := a.now()
	for _, r := range rows {
		r.RowID = 0
		if _, err := insertRow(ctx, tx, r, now); err != nil {
			return 0, xe.Wrap(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, xe.Wrap(err)
	}
	return len(rows), nil
}

func sheet(ctx context.Context, q queryer) ([]domain.SheetRow, error) {
	rows, err := q.QueryContext(
		ctx, `SELECT `+sheetColumns+` FROM excel_data ORDER BY sequencia, seq, id`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()
	ret, err := scanSheet(rows)
	return ret, xe.Wrap(err)
}

func controls(ctx context.Context, q queryer) ([]domain.Control, error) {
	rows, err := q.QueryContext(
		ctx, `SELECT `+controlColumns+` FROM activity_control ORDER BY sequencia, seq, excel_data_id`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()
	ret, err := scanControls(rows)
	return ret, xe.Wrap(err)
}

func (a *activitySqlite) Sheet(ctx context.Context) ([]domain.SheetRow, error) {
	return sheet(ctx, a.db)
}

func (a *activitySqlite) Controls(ctx context.Context) (map[domain.ControlKey]domain.Control, error) {
	ctrls, err := controls(ctx, a.db)
	if err != nil {
		return nil, err
	}
	ret := make(map[domain.ControlKey]domain.Control, len(ctrls))
	for _, c := range ctrls {
		ret[c.Key] = c
	}
	return ret, nil
}

func getControl(ctx context.Context, q queryer, key domain.ControlKey) (domain.Control, error) {
	rows, err := q.QueryContext(
		ctx,
		`SELECT `+controlColumns+` FROM activity_control
		WHERE seq = ? AND sequencia = ? AND excel_data_id = ?`,
		key.Seq, key.CRQ, key.RowID,
	)
	if err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	defer rows.Close()

	ctrls, err := scanControls(rows)
	if err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	if len(ctrls) == 0 {
		return domain.Control{}, xe.Wrap(dberrors.Missing{Table: "activity_control", Identity: key.String()})
	}
	return ctrls[0], nil
}

func (a *activitySqlite) Control(ctx context.Context, key domain.ControlKey) (domain.Control, error) {
	return getControl(ctx, a.db, key)
}

func (a *activitySqlite) SaveControl(ctx context.Context, key domain.ControlKey, delta domain.ControlDelta) (domain.Control, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	defer tx.Rollback()

	now := a.now()
	current, err := getControl(ctx, tx, key)
	if err != nil {
		if !errors.Is(err, domerr.ErrMissing) {
			return domain.Control{}, err
		}
		current = domain.NewControl(key)
		current.CreatedAt = now
	}

	updated := delta.Apply(current)
	updated.UpdatedAt = now
	if err := upsertControl(ctx, tx, updated); err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	return updated, nil
}

func (a *activitySqlite) InitControls(ctx context.Context, ctrls []domain.Control) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer tx.Rollback()

	now := stamp(a.now())
	inserted := 0
	for _, c := range ctrls {
		if c.Status == "" {
			c.Status = domain.StatusPlanned
		}
		res, err := tx.ExecContext(
			ctx,
			`
			INSERT INTO activity_control (`+controlColumns+`)
			VALUES (?, ?, ?, ?, NULL, NULL, 0, '', ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
			`,
			c.Key.Seq, c.Key.CRQ, c.Key.RowID, string(c.Status), c.Milestone, c.Predecessors, now, now,
		)
		if err != nil {
			return 0, xe.Wrap(err)
		}
		inserted += affected(res)
	}
	if err := tx.Commit(); err != nil {
		return 0, xe.Wrap(err)
	}
	return inserted, nil
}

func (a *activitySqlite) Create(ctx context.Context, row domain.SheetRow, delta domain.ControlDelta) (domain.SheetRow, domain.Control, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.SheetRow{}, domain.Control{}, xe.Wrap(err)
	}
	defer tx.Rollback()

	now := a.now()
	row.RowID = 0
	created, err := insertRow(ctx, tx, row, now)
	if err != nil {
		return domain.SheetRow{}, domain.Control{}, xe.Wrap(err)
	}

	ctrl := delta.Apply(domain.NewControl(
		domain.ControlKey{Seq: created.Seq, CRQ: created.CRQ, RowID: created.RowID},
	))
	ctrl.CreatedAt = now
	ctrl.UpdatedAt = now
	if err := upsertControl(ctx, tx, ctrl); err != nil {
		return domain.SheetRow{}, domain.Control{}, xe.Wrap(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.SheetRow{}, domain.Control{}, xe.Wrap(err)
	}
	return created, ctrl, nil
}

func (a *activitySqlite) Delete(ctx context.Context, rowID int64, key domain.ControlKey) (domain.RemoveResult, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	defer tx.Rollback()

	sheetRes, err := tx.ExecContext(ctx, `DELETE FROM excel_data WHERE id = ?`, rowID)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	ctrlRes, err := tx.ExecContext(
		ctx,
		`DELETE FROM activity_control
		WHERE seq = ? AND sequencia = ? AND excel_data_id = ?
			AND (
				excel_data_id <> 0
				OR NOT EXISTS (SELECT 1 FROM excel_data WHERE seq = ? AND sequencia = ?)
			)`,
		key.Seq, key.CRQ, key.RowID, key.Seq, key.CRQ,
	)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	return domain.RemoveResult{ExcelDeleted: affected(sheetRes), ControlDeleted: affected(ctrlRes)}, nil
}

func (a *activitySqlite) RemoveSeqs(ctx context.Context, crq string, seqs []int) (domain.RemoveResult, error) {
	if len(seqs) == 0 {
		return domain.RemoveResult{}, nil
	}
	in := strings.TrimSuffix(strings.Repeat("?, ", len(seqs)), ", ")
	args := []any{crq}
	for _, s := range seqs {
		args = append(args, s)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	defer tx.Rollback()

	sheetRes, err := tx.ExecContext(
		ctx, `DELETE FROM excel_data WHERE sequencia = ? AND seq IN (`+in+`)`, args...,
	)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	ctrlRes, err := tx.ExecContext(
		ctx, `DELETE FROM activity_control WHERE sequencia = ? AND seq IN (`+in+`)`, args...,
	)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	return domain.RemoveResult{ExcelDeleted: affected(sheetRes), ControlDeleted: affected(ctrlRes)}, nil
}

func (a *activitySqlite) ClearAll(ctx context.Context) (domain.ClearResult, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}
	defer tx.Rollback()

	sheetRes, err := tx.ExecContext(ctx, `DELETE FROM excel_data`)
	if err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}
	ctrlRes, err := tx.ExecContext(ctx, `DELETE FROM activity_control`)
	if err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}
	var remaining int
	if err := tx.QueryRowContext(
		ctx, `SELECT (SELECT count(*) FROM excel_data) + (SELECT count(*) FROM activity_control)`,
	).Scan(&remaining); err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}
	return domain.ClearResult{
		ExcelDeleted:   affected(sheetRes),
		ControlDeleted: affected(ctrlRes),
		Success:        remaining == 0,
	}, nil
}

func (a *activitySqlite) Export(ctx context.Context) ([]domain.SheetRow, []domain.Control, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, xe.Wrap(err)
	}
	defer tx.Rollback()

	rows, err := sheet(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	ctrls, err := controls(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	return rows, ctrls, nil
}

func (a *activitySqlite) Import(ctx context.Context, rows []domain.SheetRow, ctrls []domain.Control) (domain.ImportResult, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ImportResult{}, xe.Wrap(err)
	}
	defer tx.Rollback()

	for _, q := range []string{`DELETE FROM excel_data`, `DELETE FROM activity_control`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return domain.ImportResult{}, xe.Wrap(err)
		}
	}

	now := a.now()
	result := domain.ImportResult{}

	// a failed statement does not abort the transaction in sqlite.
	for _, r := range rows {
		if _, err := insertRow(ctx, tx, r, now); err != nil {
			result.Skipped += 1
			continue
		}
		result.ExcelImported += 1
	}
	for _, c := range ctrls {
		if c.Status == "" {
			c.Status = domain.StatusPlanned
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO activity_control (`+controlColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Key.Seq, c.Key.CRQ, c.Key.RowID, string(c.Status),
			toText(c.ActualStart), toText(c.ActualEnd), c.DelayMinutes,
			c.Notes, c.Milestone, c.Predecessors,
			stamp(c.CreatedAt), stamp(c.UpdatedAt),
		); err != nil {
			result.Skipped += 1
			continue
		}
		result.ControlImported += 1
	}

	if err := tx.Commit(); err != nil {
		return domain.ImportResult{}, xe.Wrap(err)
	}
	return result, nil
}
