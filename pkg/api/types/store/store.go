package store

type Sheet struct {
	Name    string `json:"name"`
	CRQ     string `json:"crq"`
	Records int    `json:"records"`
}

type SheetImport struct {
	Sheets      []Sheet  `json:"sheets"`
	Warnings    []string `json:"warnings"`
	Saved       int      `json:"saved"`
	Skipped     int      `json:"skipped"`
	Initialized int      `json:"initialized"`
	Issues      []string `json:"issues"`
}

type Restore struct {
	ExcelImported   int      `json:"excelImported"`
	ControlImported int      `json:"controlImported"`
	Skipped         int      `json:"skipped"`
	Errors          []string `json:"errors"`
}

type Removed struct {
	ExcelDeleted   int `json:"excelDeleted"`
	ControlDeleted int `json:"controlDeleted"`
}

type Cleared struct {
	Removed
	Success bool `json:"success"`
}
