package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BackupVersion is the version of the backup document written by this package.
const BackupVersion = "1.0"

// Backup is a JSON document holding every sheet row and control row.
//
// Field names are kept compatible with backups of earlier releases.
// Activity times are written in TimeLayout; timestamps of the document itself are RFC 3339.
type Backup struct {
	Version     string          `json:"version"`
	ExportDate  string          `json:"export_date"`
	ExcelData   []BackupRow     `json:"excel_data"`
	ControlData []BackupControl `json:"control_data"`
	Metadata    BackupMetadata  `json:"metadata"`
}

type BackupRow struct {
	ID             int64  `json:"id,omitempty"`
	Sequencia      string `json:"sequencia"`
	Seq            int    `json:"seq"`
	Atividade      string `json:"atividade"`
	Grupo          string `json:"grupo"`
	Localidade     string `json:"localidade"`
	Executor       string `json:"executor"`
	Telefone       string `json:"telefone"`
	Inicio         string `json:"inicio"`
	Fim            string `json:"fim"`
	Tempo          string `json:"tempo"`
	DataImportacao string `json:"data_importacao,omitempty"`
}

type BackupControl struct {
	Seq               int      `json:"seq"`
	Sequencia         string   `json:"sequencia"`
	ExcelDataID       int64    `json:"excel_data_id"`
	Status            string   `json:"status"`
	HorarioInicioReal string   `json:"horario_inicio_real"`
	HorarioFimReal    string   `json:"horario_fim_real"`
	AtrasoMinutos     int      `json:"atraso_minutos"`
	Observacoes       string   `json:"observacoes"`
	IsMilestone       FlexBool `json:"is_milestone"`
	Predecessoras     string   `json:"predecessoras"`
	DataCriacao       string   `json:"data_criacao"`
	DataAtualizacao   string   `json:"data_atualizacao"`
}

type BackupMetadata struct {
	ExcelCount   int `json:"excel_count"`
	ControlCount int `json:"control_count"`
}

// FlexBool is a bool which also reads 0/1 and "true"/"false".
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	switch strings.ToLower(s) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("not a boolean: %s", string(b))
	}
	return nil
}

func (f FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// NewBackup builds a backup document.
func NewBackup(rows []SheetRow, controls []Control, now time.Time, loc *time.Location) Backup {
	b := Backup{
		Version:     BackupVersion,
		ExportDate:  now.In(loc).Format(time.RFC3339),
		ExcelData:   make([]BackupRow, 0, len(rows)),
		ControlData: make([]BackupControl, 0, len(controls)),
	}
	for _, r := range rows {
		b.ExcelData = append(b.ExcelData, BackupRow{
			ID:             r.RowID,
			Sequencia:      r.CRQ,
			Seq:            r.Seq,
			Atividade:      r.Activity,
			Grupo:          r.Group,
			Localidade:     r.Location,
			Executor:       r.Executor,
			Telefone:       r.Phone,
			Inicio:         FormatTime(r.PlannedStart, loc),
			Fim:            FormatTime(r.PlannedEnd, loc),
			Tempo:          r.Duration,
			DataImportacao: formatStamp(r.ImportedAt, loc),
		})
	}
	for _, c := range controls {
		b.ControlData = append(b.ControlData, BackupControl{
			Seq:               c.Key.Seq,
			Sequencia:         c.Key.CRQ,
			ExcelDataID:       c.Key.RowID,
			Status:            string(c.Status),
			HorarioInicioReal: FormatTime(c.ActualStart, loc),
			HorarioFimReal:    FormatTime(c.ActualEnd, loc),
			AtrasoMinutos:     c.DelayMinutes,
			Observacoes:       c.Notes,
			IsMilestone:       FlexBool(c.Milestone),
			Predecessoras:     c.Predecessors,
			DataCriacao:       formatStamp(c.CreatedAt, loc),
			DataAtualizacao:   formatStamp(c.UpdatedAt, loc),
		})
	}
	b.Metadata = BackupMetadata{ExcelCount: len(b.ExcelData), ControlCount: len(b.ControlData)}
	return b
}

func formatStamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(time.RFC3339)
}

func parseStamp(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := ParseSheetTime(s, loc); err == nil && t != nil {
		return *t
	}
	return time.Time{}
}

// Row converts a backup row. Times are read in any format ParseSheetTime accepts.
func (r BackupRow) Row(loc *time.Location) (SheetRow, error) {
	if strings.TrimSpace(r.Sequencia) == "" {
		return SheetRow{}, fmt.Errorf("excel_data (seq %d): sequencia is empty", r.Seq)
	}
	start, err := ParseSheetTime(r.Inicio, loc)
	if err != nil {
		return SheetRow{}, fmt.Errorf("excel_data (seq %d): inicio: %w", r.Seq, err)
	}
	end, err := ParseSheetTime(r.Fim, loc)
	if err != nil {
		return SheetRow{}, fmt.Errorf("excel_data (seq %d): fim: %w", r.Seq, err)
	}
	return SheetRow{
		RowID:        r.ID,
		CRQ:          strings.TrimSpace(r.Sequencia),
		Seq:          r.Seq,
		Activity:     r.Atividade,
		Group:        r.Grupo,
		Location:     r.Localidade,
		Executor:     r.Executor,
		Phone:        r.Telefone,
		PlannedStart: start,
		PlannedEnd:   end,
		Duration:     r.Tempo,
		ImportedAt:   parseStamp(r.DataImportacao, loc),
	}, nil
}

// Control converts a backup control row.
func (c BackupControl) Control(loc *time.Location) (Control, error) {
	if strings.TrimSpace(c.Sequencia) == "" {
		return Control{}, fmt.Errorf("control_data (seq %d): sequencia is empty", c.Seq)
	}
	status := StatusPlanned
	if strings.TrimSpace(c.Status) != "" {
		st, err := AsStatus(c.Status)
		if err != nil {
			return Control{}, fmt.Errorf("control_data (seq %d): %w", c.Seq, err)
		}
		status = st
	}
	start, err := ParseSheetTime(c.HorarioInicioReal, loc)
	if err != nil {
		return Control{}, fmt.Errorf("control_data (seq %d): horario_inicio_real: %w", c.Seq, err)
	}
	end, err := ParseSheetTime(c.HorarioFimReal, loc)
	if err != nil {
		return Control{}, fmt.Errorf("control_data (seq %d): horario_fim_real: %w", c.Seq, err)
	}
	return Control{
		Key:          ControlKey{Seq: c.Seq, CRQ: strings.TrimSpace(c.Sequencia), RowID: c.ExcelDataID},
		Status:       status,
		ActualStart:  start,
		ActualEnd:    end,
		DelayMinutes: c.AtrasoMinutos,
		Notes:        c.Observacoes,
		Milestone:    bool(c.IsMilestone),
		Predecessors: c.Predecessoras,
		CreatedAt:    parseStamp(c.DataCriacao, loc),
		UpdatedAt:    parseStamp(c.DataAtualizacao, loc),
	}, nil
}

// Contents converts the document. Entries which cannot be converted are reported and left out.
func (b Backup) Contents(loc *time.Location) ([]SheetRow, []Control, []error) {
	rows := make([]SheetRow, 0, len(b.ExcelData))
	ctrls := make([]Control, 0, len(b.ControlData))
	errs := []error{}
	for _, r := range b.ExcelData {
		row, err := r.Row(loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	for _, c := range b.ControlData {
		ctrl, err := c.Control(loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ctrls = append(ctrls, ctrl)
	}
	return rows, ctrls, errs
}

// ImportResult is the outcome of restoring a backup.
type ImportResult struct {
	ExcelImported   int
	ControlImported int

	// entries which were not restored.
	Skipped int
}

// ClearResult is the outcome of clearing the store.
type ClearResult struct {
	ExcelDeleted   int
	ControlDeleted int

	// both tables are empty after clearing.
	Success bool
}

// RemoveResult is the outcome of removing activities.
type RemoveResult struct {
	ExcelDeleted   int
	ControlDeleted int
}
