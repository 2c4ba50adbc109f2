package status_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/commandline"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/testenv"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/status"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/utils/try"
)

// row finds the line starting with prefix, and splits it into fields.
func row(t *testing.T, out string, prefix string) []string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.Fields(line)
		}
	}
	t.Fatalf("line %q is not found in:\n%s", prefix, out)
	return nil
}

func TestTask(t *testing.T) {
	ctx := context.Background()
	board := testenv.Board(t)
	testenv.Seed(t, board)

	{
		acts := try.To(board.Activity().Activities(ctx)).OrFatal(t)
		iactivity := board.Activity()
		// REDE 1: done 20 minutes late.
		start := *acts[0].PlannedStart
		end := acts[0].PlannedEnd.Add(20 * time.Minute)
		try.To(iactivity.Update(ctx, acts[0].RowID, domain.ActivityUpdate{
			Status: domain.StatusInProgress, ActualStart: &start,
		})).OrFatal(t)
		try.To(iactivity.Update(ctx, acts[0].RowID, domain.ActivityUpdate{
			Status: domain.StatusDone, ActualEnd: &end,
		})).OrFatal(t)
	}

	stdout := new(strings.Builder)
	err := status.Task()(
		ctx, testenv.Logger(), board,
		commandline.MockCommandline[struct{}]{
			Fullname_: "crqctl status",
			Stdout_:   stdout,
			Stderr_:   new(strings.Builder),
		},
		[]any{},
	)
	if err != nil {
		t.Fatal(err)
	}
	out := stdout.String()

	if !strings.HasPrefix(out, "Janela de mudança - 10/11/2025 22:00:00 (GMT-3)\n") {
		t.Errorf("title:\n%s", out)
	}

	for prefix, expected := range map[string][]string{
		"🟢 REDE":      {"🟢", "REDE", "3", "0", "0", "2", "1", "0", "0.0%"},
		"🔵 OPENSHIFT": {"🔵", "OPENSHIFT", "0", "0", "0", "0", "0", "0", "0.0%"},
		"🟠 NFS":       {"🟠", "NFS", "1", "0", "0", "1", "0", "0", "0.0%"},
		"TOTAL":       {"TOTAL", "4", "0", "0", "3", "1", "0", "0.0%"},
	} {
		if diff := cmp.Diff(expected, row(t, out, prefix)); diff != "" {
			t.Errorf("row %s: (-expected, +actual)\n%s", prefix, diff)
		}
	}

	for _, line := range []string{
		"Deveriam estar em execução:",
		"  🟢 REDE #2 Migrar VLAN (início planejado 10/11/2025 21:30:00)",
		"Atrasadas:",
		"  🟢 REDE #1 Backup +20 min",
	} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("line %q is not found in:\n%s", line, out)
		}
	}
	if strings.Contains(out, "Validar rotas") {
		t.Errorf("activities not yet due are listed:\n%s", out)
	}
}
