package load_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/commandline"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/testenv"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/load"
	apistore "github.com/opst/crqboard/pkg/api/types/store"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/utils"
	"github.com/opst/crqboard/pkg/utils/try"
	"github.com/xuri/excelize/v2"
)

func xlsx(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for nth, row := range rows {
			cell := try.To(excelize.CoordinatesToCellName(1, nth+1)).OrFatal(t)
			r := row
			if err := f.SetSheetRow(name, cell, &r); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "plano.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

var header = []any{"Seq", "Atividade", "Grupo", "Localidade", "Executor", "Telefone", "Inicio", "Fim", "Tempo"}

func TestLoad(t *testing.T) {
	path := xlsx(t, map[string][][]any{
		"REDE": {
			header,
			{1, "Backup", "Core", "SP", "Ana", "", "10/11/2025 21:00:00", "10/11/2025 21:30:00", "00:30:00"},
			{2, "Migrar VLAN", "Core", "SP", "Ana", "", "10/11/2025 21:30:00", "10/11/2025 22:30:00", "01:00:00"},
			{"x", "Quebrada", "Core", "", "", "", "", "", ""},
		},
		"NFS": {
			header,
			{1, "Montar export", "Storage", "RJ", "Bia", "", "10/11/2025 23:00:00", "10/11/2025 23:30:00", "00:30:00"},
		},
	})

	t.Run("it imports sheets of known CRQs", func(t *testing.T) {
		board := testenv.Board(t)
		stdout := new(strings.Builder)

		err := load.Task()(
			context.Background(), testenv.Logger(), board,
			commandline.MockCommandline[load.Flags]{
				Fullname_: "crqctl load",
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
				Args_:     map[string][]string{load.ARG_FILE: {path}},
			},
			[]any{},
		)
		if err != nil {
			t.Fatal(err)
		}

		actual := apistore.SheetImport{}
		if err := json.Unmarshal([]byte(stdout.String()), &actual); err != nil {
			t.Fatal(err)
		}
		if actual.Saved != 3 || actual.Skipped != 1 || actual.Initialized != 3 {
			t.Errorf("result: %+v", actual)
		}

		acts := try.To(board.Activity().Activities(context.Background())).OrFatal(t)
		keys := utils.Map(acts, func(a domain.Activity) string { return a.Key.String() })
		if diff := cmp.Diff([]string{"1_REDE_0", "2_REDE_0", "1_NFS_0"}, keys); diff != "" {
			t.Errorf("activities: (-expected, +actual)\n%s", diff)
		}
	})

	t.Run("with --dry-run, it does not save", func(t *testing.T) {
		board := testenv.Board(t)
		stdout := new(strings.Builder)

		err := load.Task()(
			context.Background(), testenv.Logger(), board,
			commandline.MockCommandline[load.Flags]{
				Fullname_: "crqctl load",
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
				Flags_:    load.Flags{DryRun: true},
				Args_:     map[string][]string{load.ARG_FILE: {path}},
			},
			[]any{},
		)
		if err != nil {
			t.Fatal(err)
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout: %s", stdout.String())
		}
		acts := try.To(board.Activity().Activities(context.Background())).OrFatal(t)
		if len(acts) != 0 {
			t.Errorf("activities are saved: %d", len(acts))
		}
	})
}

func TestLoad_Fails(t *testing.T) {
	notAWorkbook := filepath.Join(t.TempDir(), "plano.xlsx")
	if err := os.WriteFile(notAWorkbook, []byte("seq,atividade\n1,a\n"), os.FileMode(0o644)); err != nil {
		t.Fatal(err)
	}

	for name, testcase := range map[string]struct {
		path string
		then func(error) bool
	}{
		"no known sheets": {
			path: xlsx(t, map[string][][]any{"Notas": {{"qualquer"}}}),
			then: func(err error) bool { return errors.Is(err, load.ErrNoSheets) },
		},
		"missing file": {
			path: filepath.Join(t.TempDir(), "nothing.xlsx"),
			then: func(err error) bool { return err != nil },
		},
		"not a workbook": {
			path: notAWorkbook,
			then: func(err error) bool { return err != nil },
		},
	} {
		t.Run(name, func(t *testing.T) {
			board := testenv.Board(t)
			err := load.Task()(
				context.Background(), testenv.Logger(), board,
				commandline.MockCommandline[load.Flags]{
					Fullname_: "crqctl load",
					Stdout_:   new(strings.Builder),
					Stderr_:   new(strings.Builder),
					Args_:     map[string][]string{load.ARG_FILE: {testcase.path}},
				},
				[]any{},
			)
			if !testcase.then(err) {
				t.Errorf("unexpected error: %v", err)
			}

			acts := try.To(board.Activity().Activities(context.Background())).OrFatal(t)
			if diff := cmp.Diff(0, len(acts)); diff != "" {
				t.Errorf("activities are saved: (-expected, +actual)\n%s", diff)
			}
		})
	}
}
