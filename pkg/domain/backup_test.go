package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/crqboard/pkg/domain"
)

func TestFlexBool(t *testing.T) {
	for in, expected := range map[string]bool{
		`true`:    true,
		`false`:   false,
		`1`:       true,
		`0`:       false,
		`"1"`:     true,
		`"false"`: false,
		`null`:    false,
	} {
		var actual domain.FlexBool
		if err := json.Unmarshal([]byte(in), &actual); err != nil {
			t.Errorf("%s: unexpected error: %v", in, err)
			continue
		}
		if bool(actual) != expected {
			t.Errorf("%s: (actual, expected) = (%v, %v)", in, actual, expected)
		}
	}

	var f domain.FlexBool
	if err := json.Unmarshal([]byte(`"yes"`), &f); err == nil {
		t.Errorf("\"yes\" should not be a boolean")
	}
}

func TestBackup(t *testing.T) {
	now := *at("11/11/2025 01:00:00")
	imported := *at("10/11/2025 18:00:00")

	rows := []domain.SheetRow{
		{
			RowID: 7, CRQ: "REDE", Seq: 1, Activity: "open window", Group: "",
			PlannedStart: at("10/11/2025 22:00:00"), PlannedEnd: at("10/11/2025 22:10:00"),
			Duration: "00:10", ImportedAt: imported,
		},
		{
			RowID: 8, CRQ: "REDE", Seq: 2, Activity: "switch", Group: "net",
			Location: "DC1", Executor: "Ana", Phone: "555",
			ImportedAt: imported,
		},
	}
	controls := []domain.Control{
		{
			Key:          domain.SheetKey(2, "REDE"),
			Status:       domain.StatusLate,
			ActualStart:  at("10/11/2025 22:10:00"),
			ActualEnd:    at("10/11/2025 22:40:00"),
			DelayMinutes: 30,
			Notes:        "vendor",
			Predecessors: "1",
			CreatedAt:    imported,
			UpdatedAt:    now,
		},
	}

	t.Run("it is written with the compatible field names", func(t *testing.T) {
		doc := domain.NewBackup(rows, controls, now, gmt3)
		b, err := json.Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}

		generic := map[string]any{}
		if err := json.Unmarshal(b, &generic); err != nil {
			t.Fatal(err)
		}
		if generic["version"] != "1.0" {
			t.Errorf("version: %v", generic["version"])
		}
		if generic["export_date"] != "2025-11-11T01:00:00-03:00" {
			t.Errorf("export_date: %v", generic["export_date"])
		}
		excel := generic["excel_data"].([]any)[0].(map[string]any)
		if excel["sequencia"] != "REDE" || excel["inicio"] != "10/11/2025 22:00:00" {
			t.Errorf("excel_data[0]: %v", excel)
		}
		ctrl := generic["control_data"].([]any)[0].(map[string]any)
		if ctrl["status"] != "Atrasado" || ctrl["is_milestone"] != false || ctrl["atraso_minutos"] != float64(30) {
			t.Errorf("control_data[0]: %v", ctrl)
		}
		meta := generic["metadata"].(map[string]any)
		if meta["excel_count"] != float64(2) || meta["control_count"] != float64(1) {
			t.Errorf("metadata: %v", meta)
		}
	})

	t.Run("contents are restored", func(t *testing.T) {
		doc := domain.NewBackup(rows, controls, now, gmt3)
		b, err := json.Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		var restored domain.Backup
		if err := json.Unmarshal(b, &restored); err != nil {
			t.Fatal(err)
		}

		actualRows, actualControls, errs := restored.Contents(gmt3)
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}

		opt := cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })
		if diff := cmp.Diff(rows, actualRows, opt); diff != "" {
			t.Errorf("rows: (-expected, +actual)\n%s", diff)
		}
		if diff := cmp.Diff(controls, actualControls, opt); diff != "" {
			t.Errorf("controls: (-expected, +actual)\n%s", diff)
		}
	})

	t.Run("broken entries are skipped and reported", func(t *testing.T) {
		doc := domain.Backup{
			Version: "1.0",
			ExcelData: []domain.BackupRow{
				{Sequencia: "NFS", Seq: 1, Atividade: "ok", Inicio: "2025-11-10 22:00:00"},
				{Sequencia: "", Seq: 2},
				{Sequencia: "NFS", Seq: 3, Inicio: "someday"},
			},
			ControlData: []domain.BackupControl{
				{Sequencia: "NFS", Seq: 1, Status: "Concluído", IsMilestone: true},
				{Sequencia: "NFS", Seq: 2, Status: "Pausado"},
				{Sequencia: "NFS", Seq: 3},
			},
		}

		actualRows, actualControls, errs := doc.Contents(gmt3)
		if len(actualRows) != 1 || !actualRows[0].PlannedStart.Equal(*at("10/11/2025 22:00:00")) {
			t.Errorf("rows: %+v", actualRows)
		}
		if len(actualControls) != 2 {
			t.Fatalf("controls: %+v", actualControls)
		}
		if !actualControls[0].Milestone || actualControls[0].Status != domain.StatusDone {
			t.Errorf("controls[0]: %+v", actualControls[0])
		}
		if actualControls[1].Status != domain.StatusPlanned {
			t.Errorf("control without status should be planned: %+v", actualControls[1])
		}
		if len(errs) != 3 {
			t.Errorf("expected 3 errors, but %v", errs)
		}
	})
}
