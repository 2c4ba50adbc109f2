package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/opst/crqboard/pkg/conn/db/sqlite"
	"github.com/opst/crqboard/pkg/domain"
	kdb "github.com/opst/crqboard/pkg/domain/activity/db"
	"github.com/opst/crqboard/pkg/domain/activity/db/internal/conformance"
	testee "github.com/opst/crqboard/pkg/domain/activity/db/sqlite"
	schema "github.com/opst/crqboard/pkg/domain/schema/db/sqlite"
	"github.com/opst/crqboard/pkg/utils/try"
)

func TestActivitySqlite(t *testing.T) {
	conformance.Run(t, func(t *testing.T) kdb.ActivityInterface {
		ctx := context.Background()
		db := try.To(sqlite.Open(ctx, sqlite.Memory)).OrFatal(t)
		t.Cleanup(func() { db.Close() })

		if err := schema.New(db).Upgrade(ctx); err != nil {
			t.Fatal(err)
		}
		return testee.New(db, testee.WithClock(func() time.Time { return conformance.Clock }))
	})
}

func TestActivitySqlite_OnFile(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/store/crqboard.db"
	clock := testee.WithClock(func() time.Time { return conformance.Clock })

	{
		db := try.To(sqlite.Open(ctx, path)).OrFatal(t)
		if err := schema.New(db).Upgrade(ctx); err != nil {
			t.Fatal(err)
		}
		store := testee.New(db, clock)
		try.To(store.ReplaceSheet(ctx, nil)).OrFatal(t)
		notes := "kept on disk"
		if _, _, err := store.Create(
			ctx,
			domain.SheetRow{CRQ: "SI", Seq: 1, Activity: "persisted", Group: "sec"},
			domain.ControlDelta{Notes: &notes},
		); err != nil {
			t.Fatal(err)
		}
		db.Close()
	}

	db := try.To(sqlite.Open(ctx, path)).OrFatal(t)
	defer db.Close()
	rows := try.To(testee.New(db, clock).Sheet(ctx)).OrFatal(t)
	if len(rows) != 1 || rows[0].Activity != "persisted" {
		t.Errorf("rows are not persisted: %+v", rows)
	}
}
