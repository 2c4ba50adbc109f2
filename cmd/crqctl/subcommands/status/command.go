package status

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show progress of the change window.",
		struct{}{},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Show progress of the change window.

Counts per CRQ are shown as a table, followed by activities which should be
in execution by now and activities finished late.
`),
	)
}

func Task() common.Task[struct{}] {
	return func(
		ctx context.Context,
		_ *log.Logger,
		board crqboard.CRQBoard,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		iactivity := board.Activity()
		acts, err := iactivity.Activities(ctx)
		if err != nil {
			return err
		}
		now := iactivity.Now().In(iactivity.Location())
		return Render(cl.Stdout(), acts, iactivity.Catalogue(), now)
	}
}

// Render writes the progress report.
//
// Colors are used only when w is a terminal.
func Render(w io.Writer, acts []domain.Activity, catalogue domain.Catalogue, now time.Time) error {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	color := func(s domain.Status) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(s.Color()))
	}
	count := func(n int, s domain.Status) cell {
		if n == 0 {
			return plain("0")
		}
		return styled(strconv.Itoa(n), color(s))
	}
	row := func(label string, s domain.Stats) []cell {
		return []cell{
			plain(label),
			plain(strconv.Itoa(s.Total)),
			count(s.Done, domain.StatusDone),
			count(s.InProgress, domain.StatusInProgress),
			count(s.Planned, domain.StatusPlanned),
			count(s.Late, domain.StatusLate),
			plain(strconv.Itoa(s.Milestones)),
			plain(fmt.Sprintf("%.1f%%", s.PctDone)),
		}
	}

	sb := new(strings.Builder)
	sb.WriteString(title.Render(fmt.Sprintf(
		"Janela de mudança - %s (%s)", now.Format(domain.TimeLayout), now.Location(),
	)))
	sb.WriteString("\n\n")

	report := domain.Statistics(acts, catalogue)
	tbl := newTable(
		r,
		"CRQ", "Total",
		domain.StatusDone.String(), domain.StatusInProgress.String(),
		domain.StatusPlanned.String(), domain.StatusLate.String(),
		"Marcos", "Progresso",
	)
	for _, crq := range catalogue {
		tbl.add(row(crq.Emoji+" "+crq.Name, report.PerCRQ[crq.Name])...)
	}
	tbl.add(row("TOTAL", report.Overall)...)
	sb.WriteString(tbl.String())

	if done := domain.CompletedCRQs(acts, catalogue); len(done) != 0 {
		fmt.Fprintf(sb, "\n%s %s\n", title.Render("CRQs concluídas:"), strings.Join(done, ", "))
	}

	ex := domain.ExecutionStatus(acts, now)
	if len(ex.ShouldBeRunning) != 0 {
		fmt.Fprintf(sb, "\n%s\n", title.Render("Deveriam estar em execução:"))
		for _, a := range ex.ShouldBeRunning {
			fmt.Fprintf(
				sb, "  %s %s #%d %s (início planejado %s)\n",
				catalogue.Emoji(a.CRQ), a.CRQ, a.Seq, a.Activity,
				domain.FormatTime(a.PlannedStart, now.Location()),
			)
		}
	}

	if delayed := domain.Delayed(acts, ""); len(delayed) != 0 {
		fmt.Fprintf(sb, "\n%s\n", title.Render("Atrasadas:"))
		for _, a := range delayed {
			fmt.Fprintf(
				sb, "  %s %s #%d %s %s\n",
				catalogue.Emoji(a.CRQ), a.CRQ, a.Seq, a.Activity,
				color(domain.StatusLate).Render(domain.FormatDelay(a.DelayMinutes)),
			)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
