package models

// MaxImportErrors caps the row errors reported back from an import.
const MaxImportErrors = 10

// ImportRow is one uploaded spreadsheet row. Unlike a student entry, the
// level-specific fields are optional and a missing course becomes UnspecifiedCourse.
type ImportRow struct {
	Name     string `json:"name" validate:"required"`
	RollNo   string `json:"roll_no" validate:"required"`
	Level    string `json:"level" validate:"required,oneof=JC UG PG"`
	Course   string `json:"course"`
	Year     string `json:"year"`
	JcYear   string `json:"jc_year"`
	JcStream string `json:"jc_stream"`
	Purpose  string `json:"purpose" validate:"required"`
}

// ImportResult summarises a bulk upload.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ExportRequest selects what to export and how.
type ExportRequest struct {
	Format    string `form:"format"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}
