// Package message builds the consolidated status message posted to the chat group.
package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/opst/crqboard/pkg/domain"
)

const (
	Title     = "🚀 *JANELA DE MUDANÇA - REDE*"
	Separator = "━━━━━━━━━━━━━━━━━━"
)

// Build renders the message.
//
// now is the operator clock; it should be already in the operator time zone.
//
// Per-CRQ progress is shown only for CRQs with activities in execution.
// Completed CRQs and delayed activities are listed when there are any.
func Build(acts []domain.Activity, catalogue domain.Catalogue, now time.Time) string {
	report := domain.Statistics(acts, catalogue)

	b := new(strings.Builder)
	fmt.Fprintf(b, "%s\n\n", Title)
	fmt.Fprintf(b, "📅 Data: %s | 🕐 Horário: %s\n\n", now.Format("02/01/2006"), now.Format("15:04:05"))
	fmt.Fprintf(b, "%s\n\n", Separator)

	fmt.Fprintf(b, "📈 *ANDAMENTO GERAL*\n")
	progress(b, report.Overall)
	fmt.Fprintf(b, "\n%s\n", Separator)

	for _, crq := range catalogue {
		stats, ok := report.PerCRQ[crq.Name]
		if !ok || stats.InProgress == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s *ANDAMENTO %s*\n", crq.Emoji, crq.Name)
		progress(b, stats)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "%s\n\n", Separator)

	if done := domain.CompletedCRQs(acts, catalogue); len(done) != 0 {
		b.WriteString("📋 *CONCLUÍDAS*\n")
		fmt.Fprintf(b, "  %s\n\n", strings.Join(done, ", "))
		fmt.Fprintf(b, "%s\n\n", Separator)
	}

	if len(domain.Delayed(acts, "")) != 0 {
		b.WriteString("🚨 *ATIVIDADES ATRASADAS*\n")
		for _, crq := range catalogue {
			for _, a := range domain.Delayed(acts, crq.Name) {
				fmt.Fprintf(
					b, "\n  %s [%s] %s: %s\n",
					crq.Emoji, crq.Name, a.Activity, domain.FormatDelay(a.DelayMinutes),
				)
				if notes := strings.TrimSpace(a.Notes); notes != "" {
					fmt.Fprintf(b, "     Observação: %s\n", notes)
				}
			}
		}
		fmt.Fprintf(b, "\n%s\n\n", Separator)
	}

	fmt.Fprintf(b, "✅ Atualizado em: %s\n", now.Format(domain.TimeLayout))
	return b.String()
}

func progress(b *strings.Builder, s domain.Stats) {
	fmt.Fprintf(b, "  ✅ Concluídas: %d/%d (%.1f%%)\n", s.Done, s.Total, s.PctDone)
	fmt.Fprintf(b, "  ⏳ Em Execução: %d/%d (%.1f%%)\n", s.InProgress, s.Total, s.PctInProgress)
	fmt.Fprintf(b, "  🟡 Planejadas: %d/%d (%.1f%%)\n", s.Planned, s.Total, s.PctPlanned)
	fmt.Fprintf(b, "  🔴 Atrasadas: %d/%d (%.1f%%)\n", s.Late, s.Total, s.PctLate)
}
