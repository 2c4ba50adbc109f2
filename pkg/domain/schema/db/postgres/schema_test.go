package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opst/crqboard/pkg/conn/db/postgres/pool/testenv"
	schema "github.com/opst/crqboard/pkg/domain/schema/db/postgres"
	"github.com/opst/crqboard/pkg/utils/try"
)

func writeVersion(t *testing.T, repo string, version string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(repo, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPgSchema(t *testing.T) {
	ctx := context.Background()
	pool := testenv.NewPoolBroaker(ctx, t).GetPool(ctx, t)

	conn := try.To(pool.Acquire(ctx)).OrFatal(t)
	for _, q := range []string{
		`DROP TABLE IF EXISTS "schema_version"`,
		`DROP TABLE IF EXISTS "schema_test_foo"`,
	} {
		try.To(conn.Exec(ctx, q)).OrFatal(t)
	}
	conn.Release()
	t.Cleanup(func() {
		// restore the activity store schema for other packages.
		conn, err := pool.Acquire(context.Background())
		if err != nil {
			t.Log(err)
			return
		}
		defer conn.Release()
		conn.Exec(context.Background(), `DROP TABLE IF EXISTS "schema_test_foo"`)
		conn.Exec(context.Background(), `DELETE FROM "schema_version"`)
		conn.Exec(context.Background(), `INSERT INTO "schema_version" ("version") VALUES (1)`)
	})

	repo := t.TempDir()
	writeVersion(t, repo, "1", map[string]string{
		"01_version.sql": `CREATE TABLE IF NOT EXISTS "schema_version" ("version" integer NOT NULL);`,
		"02_foo.sql":     `CREATE TABLE "schema_test_foo" ("n" integer);`,
	})

	testee := schema.New(pool, repo)
	if v := try.To(testee.Version(ctx)).OrFatal(t); v != 0 {
		t.Errorf("version before upgrade: %d", v)
	}

	if err := testee.Upgrade(ctx); err != nil {
		t.Fatal(err)
	}
	if v := try.To(testee.Version(ctx)).OrFatal(t); v != 1 {
		t.Errorf("version after upgrade: %d", v)
	}

	cctx, cancel := testee.Context(ctx)
	defer cancel()
	if cctx.Err() != nil {
		t.Fatalf("context should be alive: %v", context.Cause(cctx))
	}

	writeVersion(t, repo, "2", map[string]string{
		"01_bar.sql": `ALTER TABLE "schema_test_foo" ADD COLUMN "m" integer;`,
	})

	select {
	case <-cctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context is not canceled by a new schema version")
	}
}
