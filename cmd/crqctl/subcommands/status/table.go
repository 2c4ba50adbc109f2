package status

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// table renders rows in aligned columns.
//
// Cells may carry their own style. Cells without style use the row style.
type table struct {
	r       *lipgloss.Renderer
	headers []string
	rows    [][]cell
}

type cell struct {
	text  string
	style *lipgloss.Style
}

func plain(text string) cell {
	return cell{text: text}
}

func styled(text string, style lipgloss.Style) cell {
	return cell{text: text, style: &style}
}

func newTable(r *lipgloss.Renderer, headers ...string) *table {
	return &table{r: r, headers: headers}
}

func (t *table) add(cells ...cell) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.headers))
	for i, h := range t.headers {
		w[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(w) {
				w[i] = max(w[i], lipgloss.Width(c.text))
			}
		}
	}
	return w
}

func (t *table) String() string {
	widths := t.widths()
	header := t.r.NewStyle().Bold(true).PaddingRight(2)
	body := t.r.NewStyle().PaddingRight(2)

	sb := new(strings.Builder)
	line := make([]string, 0, len(t.headers))
	for i, h := range t.headers {
		line = append(line, header.Width(widths[i]+2).Render(h))
	}
	sb.WriteString(strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, line...), " "))
	sb.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(t.r.NewStyle().Faint(true).Render(strings.Repeat("─", total-2)))
	sb.WriteString("\n")

	for _, row := range t.rows {
		line = line[:0]
		for i, c := range row {
			if len(widths) <= i {
				break
			}
			style := body
			if c.style != nil {
				style = c.style.PaddingRight(2)
			}
			line = append(line, style.Width(widths[i]+2).Render(c.text))
		}
		sb.WriteString(strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, line...), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}
