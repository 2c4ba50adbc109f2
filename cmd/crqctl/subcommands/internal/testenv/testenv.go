package testenv

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	sconf "github.com/opst/crqboard/pkg/configs/server"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/opst/crqboard/pkg/utils/try"
)

// Now is 10/11/2025 22:00:00 in GMT-3.
var Now = time.Date(2025, time.November, 11, 1, 0, 0, 0, time.UTC)

// Config writes a config file using a fresh sqlite store, and returns its path.
func Config(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := "database:\n" +
		"  driver: sqlite\n" +
		"  uri: " + filepath.Join(dir, "crqboard.db") + "\n" +
		"auth:\n" +
		"  secret: fake-secret\n"

	path := filepath.Join(dir, "crqboard.yaml")
	if err := os.WriteFile(path, []byte(content), os.FileMode(0o600)); err != nil {
		t.Fatal(err)
	}
	return path
}

// Board opens a fresh store, with the clock stopped at Now.
func Board(t *testing.T) crqboard.CRQBoard {
	t.Helper()
	conf := try.To(sconf.LoadServerConfig(Config(t))).OrFatal(t)
	board := try.To(crqboard.New(
		context.Background(), conf,
		crqboard.WithClock(func() time.Time { return Now }),
	)).OrFatal(t)
	t.Cleanup(func() { board.Close() })
	return board
}

// Seed imports records in the store.
//
// - REDE 1, 2 and 3 (2 after 1, 3 after 2)
//
// - NFS 1
func Seed(t *testing.T, board crqboard.CRQBoard) {
	t.Helper()
	try.To(board.Activity().ImportSheet(context.Background(), []domain.SheetRecord{
		{CRQ: "REDE", Seq: "1", Activity: "Backup", Group: "Core", Start: "10/11/2025 21:00:00", End: "10/11/2025 21:30:00"},
		{CRQ: "REDE", Seq: "2", Activity: "Migrar VLAN", Group: "Core", Start: "10/11/2025 21:30:00", End: "10/11/2025 22:30:00"},
		{CRQ: "REDE", Seq: "3", Activity: "Validar rotas", Group: "Core", Start: "10/11/2025 22:30:00", End: "10/11/2025 23:00:00"},
		{CRQ: "NFS", Seq: "1", Activity: "Montar export", Group: "Storage", Start: "10/11/2025 23:00:00", End: "10/11/2025 23:30:00"},
	})).OrFatal(t)
}

// Logger discards everything.
func Logger() *log.Logger {
	return log.New(io.Discard, "", log.LstdFlags)
}
