package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgtype"
	kpool "github.com/opst/crqboard/pkg/conn/db/postgres/pool"
	"github.com/opst/crqboard/pkg/conn/db/postgres/scanner"
	"github.com/opst/crqboard/pkg/domain"
	kdb "github.com/opst/crqboard/pkg/domain/activity/db"
	domerr "github.com/opst/crqboard/pkg/domain/errors"
	"github.com/opst/crqboard/pkg/domain/errors/dberrors"
	xe "github.com/opst/crqboard/pkg/errors"
)

type activityPG struct { // implements kdb.ActivityInterface
	pool kpool.Pool
	now  func() time.Time
}

var _ kdb.ActivityInterface = &activityPG{}

type Option func(*activityPG) *activityPG

// WithClock sets the clock used for import, creation and update timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *activityPG) *activityPG {
		a.now = now
		return a
	}
}

func New(pool kpool.Pool, options ...Option) *activityPG {
	a := &activityPG{pool: pool, now: time.Now}
	for _, o := range options {
		a = o(a)
	}
	return a
}

type sheetRecord struct {
	ID             int64              `sql:"id"`
	Sequencia      string             `sql:"sequencia"`
	Seq            int                `sql:"seq"`
	Atividade      string             `sql:"atividade"`
	Grupo          string             `sql:"grupo"`
	Localidade     string             `sql:"localidade"`
	Executor       string             `sql:"executor"`
	Telefone       string             `sql:"telefone"`
	Inicio         pgtype.Timestamptz `sql:"inicio"`
	Fim            pgtype.Timestamptz `sql:"fim"`
	Tempo          string             `sql:"tempo"`
	DataImportacao time.Time          `sql:"data_importacao"`
}

const sheetColumns = `
	"id", "sequencia", "seq", "atividade", "grupo", "localidade",
	"executor", "telefone", "inicio", "fim", "tempo", "data_importacao"`

func (r sheetRecord) SheetRow() domain.SheetRow {
	return domain.SheetRow{
		RowID:        r.ID,
		CRQ:          r.Sequencia,
		Seq:          r.Seq,
		Activity:     r.Atividade,
		Group:        r.Grupo,
		Location:     r.Localidade,
		Executor:     r.Executor,
		Phone:        r.Telefone,
		PlannedStart: fromTimestamptz(r.Inicio),
		PlannedEnd:   fromTimestamptz(r.Fim),
		Duration:     r.Tempo,
		ImportedAt:   r.DataImportacao,
	}
}

type controlRecord struct {
	Seq               int                `sql:"seq"`
	Sequencia         string             `sql:"sequencia"`
	ExcelDataID       int64              `sql:"excel_data_id"`
	Status            string             `sql:"status"`
	HorarioInicioReal pgtype.Timestamptz `sql:"horario_inicio_real"`
	HorarioFimReal    pgtype.Timestamptz `sql:"horario_fim_real"`
	AtrasoMinutos     int                `sql:"atraso_minutos"`
	Observacoes       string             `sql:"observacoes"`
	IsMilestone       bool               `sql:"is_milestone"`
	Predecessoras     string             `sql:"predecessoras"`
	DataCriacao       time.Time          `sql:"data_criacao"`
	DataAtualizacao   time.Time          `sql:"data_atualizacao"`
}

const controlColumns = `
	"seq", "sequencia", "excel_data_id", "status",
	"horario_inicio_real", "horario_fim_real", "atraso_minutos",
	"observacoes", "is_milestone", "predecessoras",
	"data_criacao", "data_atualizacao"`

func (r controlRecord) Control() domain.Control {
	return domain.Control{
		Key:          domain.ControlKey{Seq: r.Seq, CRQ: r.Sequencia, RowID: r.ExcelDataID},
		Status:       domain.Status(r.Status),
		ActualStart:  fromTimestamptz(r.HorarioInicioReal),
		ActualEnd:    fromTimestamptz(r.HorarioFimReal),
		DelayMinutes: r.AtrasoMinutos,
		Notes:        r.Observacoes,
		Milestone:    r.IsMilestone,
		Predecessors: r.Predecessoras,
		CreatedAt:    r.DataCriacao,
		UpdatedAt:    r.DataAtualizacao,
	}
}

func fromTimestamptz(t pgtype.Timestamptz) *time.Time {
	if t.Status != pgtype.Present {
		return nil
	}
	v := t.Time
	return &v
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{Time: *t, Status: pgtype.Present}
}

func insertRow(ctx context.Context, q kpool.Queryer, r domain.SheetRow, now time.Time) (domain.SheetRow, error) {
	if r.ImportedAt.IsZero() {
		r.ImportedAt = now
	}
	args := []interface{}{
		r.CRQ, r.Seq, r.Activity, r.Group, r.Location, r.Executor, r.Phone,
		toTimestamptz(r.PlannedStart), toTimestamptz(r.PlannedEnd), r.Duration, r.ImportedAt,
	}

	query := `
	insert into "excel_data" (
		"sequencia", "seq", "atividade", "grupo", "localidade", "executor", "telefone",
		"inicio", "fim", "tempo", "data_importacao"
	)
	values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	returning "id"
	`
	if r.RowID > 0 {
		query = `
		insert into "excel_data" (
			"sequencia", "seq", "atividade", "grupo", "localidade", "executor", "telefone",
			"inicio", "fim", "tempo", "data_importacao", "id"
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		returning "id"
		`
		args = append(args, r.RowID)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&r.RowID); err != nil {
		return domain.SheetRow{}, err
	}
	return r, nil
}

// upsertControl writes the control row as it is.
func upsertControl(ctx context.Context, q kpool.Queryer, c domain.Control) error {
	_, err := q.Exec(
		ctx,
		`
		insert into "activity_control" (`+controlColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		on conflict ("seq", "sequencia", "excel_data_id") do update set
			"status" = excluded."status",
			"horario_inicio_real" = excluded."horario_inicio_real",
			"horario_fim_real" = excluded."horario_fim_real",
			"atraso_minutos" = excluded."atraso_minutos",
			"observacoes" = excluded."observacoes",
			"is_milestone" = excluded."is_milestone",
			"predecessoras" = excluded."predecessoras",
			"data_atualizacao" = excluded."data_atualizacao"
		`,
		c.Key.Seq, c.Key.CRQ, c.Key.RowID, string(c.Status),
		toTimestamptz(c.ActualStart), toTimestamptz(c.ActualEnd), c.DelayMinutes,
		c.Notes, c.Milestone, c.Predecessors,
		c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (a *activityPG) ReplaceSheet(ctx context.Context, rows []domain.SheetRow) (int, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `delete from "excel_data"`); err != nil {
		return 0, xe.Wrap(err)
	}

	now := a.now()
	for _, r := range rows {
		r.RowID = 0
		if _, err := insertRow(ctx, tx, r, now); err != nil {
			return 0, xe.Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, xe.Wrap(err)
	}
	return len(rows), nil
}

func (a *activityPG) Sheet(ctx context.Context) ([]domain.SheetRow, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	return sheet(ctx, conn)
}

func sheet(ctx context.Context, q kpool.Queryer) ([]domain.SheetRow, error) {
	recs, err := scanner.New[sheetRecord]().QueryAll(
		ctx, q,
		`select `+sheetColumns+` from "excel_data" order by "sequencia", "seq", "id"`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	rows := make([]domain.SheetRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, r.SheetRow())
	}
	return rows, nil
}

func controls(ctx context.Context, q kpool.Queryer) ([]domain.Control, error) {
	recs, err := scanner.New[controlRecord]().QueryAll(
		ctx, q,
		`select `+controlColumns+` from "activity_control"
		order by "sequencia", "seq", "excel_data_id"`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ctrls := make([]domain.Control, 0, len(recs))
	for _, r := range recs {
		ctrls = append(ctrls, r.Control())
	}
	return ctrls, nil
}

func (a *activityPG) Controls(ctx context.Context) (map[domain.ControlKey]domain.Control, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	ctrls, err := controls(ctx, conn)
	if err != nil {
		return nil, err
	}
	ret := make(map[domain.ControlKey]domain.Control, len(ctrls))
	for _, c := range ctrls {
		ret[c.Key] = c
	}
	return ret, nil
}

func getControl(ctx context.Context, q kpool.Queryer, key domain.ControlKey, forUpdate bool) (domain.Control, error) {
	query := `select ` + controlColumns + ` from "activity_control"
	where "seq" = $1 and "sequencia" = $2 and "excel_data_id" = $3`
	if forUpdate {
		query += ` for update`
	}
	recs, err := scanner.New[controlRecord]().QueryAll(ctx, q, query, key.Seq, key.CRQ, key.RowID)
	if err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	switch len(recs) {
	case 0:
		return domain.Control{}, xe.Wrap(dberrors.Missing{Table: "activity_control", Identity: key.String()})
	case 1:
		return recs[0].Control(), nil
	}
	return domain.Control{}, xe.Wrap(dberrors.TooMuch{Table: "activity_control", Identity: key.String(), Expected: 1})
}

func (a *activityPG) Control(ctx context.Context, key domain.ControlKey) (domain.Control, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	defer conn.Release()

	return getControl(ctx, conn, key, false)
}

func isMissing(err error) bool {
	return errors.Is(err, domerr.ErrMissing)
}

func (a *activityPG) SaveControl(ctx context.Context, key domain.ControlKey, delta domain.ControlDelta) (domain.Control, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	now := a.now()
	current, err := getControl(ctx, tx, key, true)
	if err != nil {
		if !isMissing(err) {
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

	if err := tx.Commit(ctx); err != nil {
		return domain.Control{}, xe.Wrap(err)
	}
	return updated, nil
}

func (a *activityPG) InitControls(ctx context.Context, ctrls []domain.Control) (int, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	now := a.now()
	inserted := 0
	for _, c := range ctrls {
		if c.Status == "" {
			c.Status = domain.StatusPlanned
		}
		tag, err := tx.Exec(
			ctx,
			`
			insert into "activity_control" (`+controlColumns+`)
			values ($1, $2, $3, $4, null, null, 0, '', $5, $6, $7, $7)
			on conflict do nothing
			`,
			c.Key.Seq, c.Key.CRQ, c.Key.RowID, string(c.Status), c.Milestone, c.Predecessors, now,
		)
		if err != nil {
			return 0, xe.Wrap(err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, xe.Wrap(err)
	}
	return inserted, nil
}

func (a *activityPG) Create(ctx context.Context, row domain.SheetRow, delta domain.ControlDelta) (domain.SheetRow, domain.Control, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return domain.SheetRow{}, domain.Control{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

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

	if err := tx.Commit(ctx); err != nil {
		return domain.SheetRow{}, domain.Control{}, xe.Wrap(err)
	}
	return created, ctrl, nil
}

func (a *activityPG) Delete(ctx context.Context, rowID int64, key domain.ControlKey) (domain.RemoveResult, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	sheetTag, err := tx.Exec(ctx, `delete from "excel_data" where "id" = $1`, rowID)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	ctrlTag, err := tx.Exec(
		ctx,
		`delete from "activity_control"
		where "seq" = $1 and "sequencia" = $2 and "excel_data_id" = $3
			and (
				"excel_data_id" <> 0
				or not exists (
					select 1 from "excel_data" where "seq" = $1 and "sequencia" = $2
				)
			)`,
		key.Seq, key.CRQ, key.RowID,
	)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	return domain.RemoveResult{
		ExcelDeleted:   int(sheetTag.RowsAffected()),
		ControlDeleted: int(ctrlTag.RowsAffected()),
	}, nil
}

func (a *activityPG) RemoveSeqs(ctx context.Context, crq string, seqs []int) (domain.RemoveResult, error) {
	if len(seqs) == 0 {
		return domain.RemoveResult{}, nil
	}
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	sheetTag, err := tx.Exec(
		ctx,
		`delete from "excel_data" where "sequencia" = $1 and "seq" = any($2::integer[])`,
		crq, seqs,
	)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	ctrlTag, err := tx.Exec(
		ctx,
		`delete from "activity_control" where "sequencia" = $1 and "seq" = any($2::integer[])`,
		crq, seqs,
	)
	if err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.RemoveResult{}, xe.Wrap(err)
	}
	return domain.RemoveResult{
		ExcelDeleted:   int(sheetTag.RowsAffected()),
		ControlDeleted: int(ctrlTag.RowsAffected()),
	}, nil
}

func (a *activityPG) ClearAll(ctx context.Context) (domain.ClearResult, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	sheetTag, err := tx.Exec(ctx, `delete from "excel_data"`)
	if err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}
	ctrlTag, err := tx.Exec(ctx, `delete from "activity_control"`)
	if err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}

	var remaining int
	if err := tx.QueryRow(
		ctx,
		`select (select count(*) from "excel_data") + (select count(*) from "activity_control")`,
	).Scan(&remaining); err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ClearResult{}, xe.Wrap(err)
	}
	return domain.ClearResult{
		ExcelDeleted:   int(sheetTag.RowsAffected()),
		ControlDeleted: int(ctrlTag.RowsAffected()),
		Success:        remaining == 0,
	}, nil
}

func (a *activityPG) Export(ctx context.Context) ([]domain.SheetRow, []domain.Control, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, nil, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

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

func (a *activityPG) Import(ctx context.Context, rows []domain.SheetRow, ctrls []domain.Control) (domain.ImportResult, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return domain.ImportResult{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	for _, q := range []string{
		`delete from "excel_data"`,
		`delete from "activity_control"`,
	} {
		if _, err := tx.Exec(ctx, q); err != nil {
			return domain.ImportResult{}, xe.Wrap(err)
		}
	}

	now := a.now()
	result := domain.ImportResult{}

	// each entry is written in its own savepoint, so that a broken one does not abort others.
	savepoint := func(f func(kpool.Tx) error) (bool, error) {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return false, err
		}
		if err := f(sp); err != nil {
			if err := sp.Rollback(ctx); err != nil {
				return false, err
			}
			return false, nil
		}
		return true, sp.Commit(ctx)
	}

	for _, r := range rows {
		ok, err := savepoint(func(sp kpool.Tx) error {
			_, err := insertRow(ctx, sp, r, now)
			return err
		})
		if err != nil {
			return domain.ImportResult{}, xe.Wrap(err)
		}
		if ok {
			result.ExcelImported += 1
		} else {
			result.Skipped += 1
		}
	}

	if _, err := tx.Exec(
		ctx,
		`select setval(
			pg_get_serial_sequence('excel_data', 'id'),
			(select coalesce(max("id"), 0) + 1 from "excel_data"),
			false
		)`,
	); err != nil {
		return domain.ImportResult{}, xe.Wrap(err)
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
		ok, err := savepoint(func(sp kpool.Tx) error {
			_, err := sp.Exec(
				ctx,
				`insert into "activity_control" (`+controlColumns+`)
				values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				c.Key.Seq, c.Key.CRQ, c.Key.RowID, string(c.Status),
				toTimestamptz(c.ActualStart), toTimestamptz(c.ActualEnd), c.DelayMinutes,
				c.Notes, c.Milestone, c.Predecessors,
				c.CreatedAt, c.UpdatedAt,
			)
			return err
		})
		if err != nil {
			return domain.ImportResult{}, xe.Wrap(err)
		}
		if ok {
			result.ControlImported += 1
		} else {
			result.Skipped += 1
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ImportResult{}, xe.Wrap(err)
	}
	return result, nil
}
