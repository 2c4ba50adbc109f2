// Package sheet reads the change-window spreadsheet.
//
// A workbook has one sheet per CRQ. Rows are returned as text
// (domain.SheetRecord); validation happens when they are persisted.
package sheet

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/opst/crqboard/pkg/domain"
	xe "github.com/opst/crqboard/pkg/errors"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Column of the spreadsheet.
type Column int

const (
	Seq Column = iota
	Activity
	Group
	Location
	Executor
	Phone
	Start
	End
	Duration
)

// Columns in positional order.
var Columns = []Column{Seq, Activity, Group, Location, Executor, Phone, Start, End, Duration}

// MinimumColumns is the number of columns a sheet should have to be read.
const MinimumColumns = 5

var headers = map[Column][]string{
	Seq:      {"Seq", "Sequência", "#"},
	Activity: {"Atividade", "Atividades", "Descrição"},
	Group:    {"Grupo"},
	Location: {"Localidade", "Local"},
	Executor: {"Executor", "Responsável"},
	Phone:    {"Telefone", "Contato"},
	Start:    {"Inicio", "Início Planejado"},
	End:      {"Fim", "Término", "Fim Planejado"},
	Duration: {"Tempo", "Duração"},
}

func (c Column) String() string {
	if c < 0 || int(c) >= len(Columns) {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return headers[c][0]
}

// Fold normalises a header for comparison.
//
// Case, spaces and diacritics are ignored: "Início" and " inicio" are the same.
func Fold(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.In(unicode.White_Space)),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = strings.Join(strings.Fields(s), "")
	}
	return cases.Fold().String(folded)
}

// Summary is what was read from a sheet.
type Summary struct {
	// Name of the sheet in the workbook.
	Name string

	// CRQ the sheet is mapped to.
	CRQ string

	// Number of records read.
	Records int
}

// Workbook is the content of a spreadsheet.
type Workbook struct {
	Records []domain.SheetRecord

	// Sheets read, in workbook order.
	Sheets []Summary

	// Sheets skipped and why.
	Warnings []string
}

// LoadFile reads the spreadsheet at path.
func LoadFile(path string, catalogue domain.Catalogue) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return Workbook{}, xe.Wrap(err)
	}
	defer f.Close()
	return Load(f, catalogue)
}

// Load reads a spreadsheet.
//
// Sheets are mapped to CRQs with Catalogue.ForSheet. Sheets not mapped to any CRQ are
// ignored silently. Sheets with too few columns are skipped with a warning.
func Load(r io.Reader, catalogue domain.Catalogue) (Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Workbook{}, xe.Wrap(err)
	}
	defer f.Close()

	wb := Workbook{Records: []domain.SheetRecord{}, Sheets: []Summary{}, Warnings: []string{}}
	for _, name := range f.GetSheetList() {
		crq, ok := catalogue.ForSheet(name)
		if !ok {
			continue
		}

		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return Workbook{}, xe.Wrap(err)
		}
		if len(rows) == 0 {
			wb.Warnings = append(wb.Warnings, fmt.Sprintf("sheet %s: empty", name))
			continue
		}

		layout := mapColumns(rows[0])
		if len(layout) < MinimumColumns {
			wb.Warnings = append(wb.Warnings, fmt.Sprintf(
				"sheet %s: %d columns found, %d expected", name, len(layout), len(Columns),
			))
			continue
		}

		count := 0
		for _, row := range rows[1:] {
			rec := layout.record(f, crq.Name, row)
			if strings.TrimSpace(rec.Seq) == "" && strings.TrimSpace(rec.Activity) == "" {
				continue
			}
			wb.Records = append(wb.Records, rec)
			count += 1
		}
		wb.Sheets = append(wb.Sheets, Summary{Name: name, CRQ: crq.Name, Records: count})
	}
	return wb, nil
}

// layout maps columns to cell indexes.
type layout map[Column]int

// mapColumns finds columns by header.
//
// Columns whose header is not found take their positional index,
// as long as the header row is wide enough and that index is not taken by another column.
func mapColumns(header []string) layout {
	found := layout{}
	taken := map[int]bool{}

	for _, col := range Columns {
		for _, alias := range headers[col] {
			want := Fold(alias)
			idx := -1
			for nth, h := range header {
				if !taken[nth] && Fold(h) == want {
					idx = nth
					break
				}
			}
			if 0 <= idx {
				found[col] = idx
				taken[idx] = true
				break
			}
		}
	}

	for _, col := range Columns {
		if _, ok := found[col]; ok {
			continue
		}
		pos := int(col)
		if pos < len(header) && !taken[pos] {
			found[col] = pos
			taken[pos] = true
		}
	}
	return found
}

func (l layout) cell(row []string, col Column) string {
	idx, ok := l[col]
	if !ok || len(row) <= idx {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (l layout) record(f *excelize.File, crq string, row []string) domain.SheetRecord {
	return domain.SheetRecord{
		CRQ:      crq,
		Seq:      Text(l.cell(row, Seq)),
		Activity: Text(l.cell(row, Activity)),
		Group:    Text(l.cell(row, Group)),
		Location: Text(l.cell(row, Location)),
		Executor: Text(l.cell(row, Executor)),
		Phone:    Text(l.cell(row, Phone)),
		Start:    timestamp(f, l.cell(row, Start)),
		End:      timestamp(f, l.cell(row, End)),
		Duration: duration(l.cell(row, Duration)),
	}
}

// Text renders a raw cell value.
//
// Integral numbers lose their decimals ("5.0" -> "5"). "nan" is empty.
func Text(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "nan") {
		return ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return raw
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}

// timestamp renders a date cell as domain.TimeLayout.
//
// Date cells are stored as serial numbers. Cells typed as text are returned as they are.
func timestamp(f *excelize.File, raw string) string {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial <= 0 {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, date1904(f))
	if err != nil {
		return raw
	}
	return t.Round(time.Second).Format(domain.TimeLayout)
}

func date1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

// duration renders the "Tempo" column.
//
// A fraction of a day (time typed cell) is rendered as HH:MM:SS.
func duration(raw string) string {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v == math.Trunc(v) || v < 0 || 1 <= v {
		return Text(raw)
	}
	d := time.Duration(math.Round(v*24*60*60)) * time.Second
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
