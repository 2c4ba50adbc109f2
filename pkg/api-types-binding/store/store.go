package store

import (
	apistore "github.com/opst/crqboard/pkg/api/types/store"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/activity"
	"github.com/opst/crqboard/pkg/sheet"
)

func ComposeSheetImport(wb sheet.Workbook, r activity.SheetImport) apistore.SheetImport {
	issues := r.Issues
	if issues == nil {
		issues = []string{}
	}
	warnings := wb.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	sheets := make([]apistore.Sheet, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		sheets = append(sheets, apistore.Sheet{Name: s.Name, CRQ: s.CRQ, Records: s.Records})
	}
	return apistore.SheetImport{
		Sheets:      sheets,
		Warnings:    warnings,
		Saved:       r.Saved,
		Skipped:     r.Skipped,
		Initialized: r.Initialized,
		Issues:      issues,
	}
}

func ComposeRestore(r domain.ImportResult, errs []error) apistore.Restore {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return apistore.Restore{
		ExcelImported:   r.ExcelImported,
		ControlImported: r.ControlImported,
		Skipped:         r.Skipped,
		Errors:          messages,
	}
}

func ComposeRemoved(r domain.RemoveResult) apistore.Removed {
	return apistore.Removed{ExcelDeleted: r.ExcelDeleted, ControlDeleted: r.ControlDeleted}
}

func ComposeCleared(r domain.ClearResult) apistore.Cleared {
	return apistore.Cleared{
		Removed: apistore.Removed{ExcelDeleted: r.ExcelDeleted, ControlDeleted: r.ControlDeleted},
		Success: r.Success,
	}
}
