package models

import "strings"

// Level classifies a visitor and decides which academic fields are required.
type Level string

const (
	LevelJC Level = "JC"
	LevelUG Level = "UG"
	LevelPG Level = "PG"
)

// Defaults applied during normalisation.
const (
	DefaultJCCourse   = "Junior College"
	UnspecifiedCourse = "Not Specified"
	DefaultPurpose    = "Study"
)

// ParseLevel upper-cases and validates a level value.
func ParseLevel(raw string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(raw)))
	switch l {
	case LevelJC, LevelUG, LevelPG:
		return l, true
	}
	return l, false
}

// Visitor is one library visit.
type Visitor struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	RollNo    string  `db:"roll_no" json:"roll_no"`
	Level     Level   `db:"level" json:"level"`
	Course    string  `db:"course" json:"course"`
	Year      *string `db:"year" json:"year"`
	JcYear    *string `db:"jc_year" json:"jc_year"`
	JcStream  *string `db:"jc_stream" json:"jc_stream"`
	Purpose   string  `db:"purpose" json:"purpose"`
	EntryTime string  `db:"entry_time" json:"entry_time"`
	ExitTime  *string `db:"exit_time" json:"exit_time"`
	VisitDate string  `db:"visit_date" json:"visit_date"`
	VisitDay  string  `db:"visit_day" json:"visit_day"`
}

// Active reports whether the visitor has not exited yet.
func (v Visitor) Active() bool {
	return v.ExitTime == nil
}

// VisitorDraft is a validated, normalised visit ready for insertion.
// Stamp is only set for back-filled admin entries; otherwise the store stamps the record.
type VisitorDraft struct {
	Name     string
	RollNo   string
	Level    Level
	Course   string
	Year     *string
	JcYear   *string
	JcStream *string
	Purpose  string
	Stamp    *VisitStamp
}

// VisitStamp carries an explicit date and times for a manual entry.
type VisitStamp struct {
	VisitDate string
	EntryTime string
	ExitTime  *string
}

// VisitRequest is the student-facing "record visit" payload.
type VisitRequest struct {
	Name     string `json:"name" form:"name" validate:"required"`
	RollNo   string `json:"roll_no" form:"roll_no" validate:"required"`
	Level    string `json:"level" form:"level" validate:"required"`
	Course   string `json:"course" form:"course"`
	Year     string `json:"year" form:"year"`
	JcYear   string `json:"jc_year" form:"jc_year"`
	JcStream string `json:"jc_stream" form:"jc_stream"`
	Purpose  string `json:"purpose" form:"purpose" validate:"required"`
}

// AdminVisitRequest back-fills a visit with explicit timing.
type AdminVisitRequest struct {
	VisitRequest
	VisitDate string `json:"visit_date" validate:"required"`
	EntryTime string `json:"entry_time" validate:"required"`
	ExitTime  string `json:"exit_time"`
}

// VisitStatus is the three-way classification used by the check in/out flow.
type VisitStatus string

const (
	StatusActive       VisitStatus = "ACTIVE"
	StatusExited       VisitStatus = "EXITED"
	StatusNeverVisited VisitStatus = "NEVER_VISITED"
)

// StatusResult pairs a status with the active visit when there is one.
type StatusResult struct {
	Status  VisitStatus `json:"status"`
	Visitor *Visitor    `json:"visitor,omitempty"`
}

// VisitorFilter narrows the admin listing. Empty fields are ignored.
type VisitorFilter struct {
	Level     string `form:"level"`
	Date      string `form:"date"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// BulkActionType names a bulk operation.
type BulkActionType string

const (
	BulkMarkExit BulkActionType = "mark_exit"
	BulkDelete   BulkActionType = "delete"
)

// BulkActionRequest applies one action to many visitors.
type BulkActionRequest struct {
	Action     BulkActionType `json:"action" validate:"required,oneof=mark_exit delete"`
	VisitorIDs []int64        `json:"visitor_ids" validate:"required,min=1,dive,gt=0"`
}

// BulkActionResult reports per-id outcomes.
type BulkActionResult struct {
	Action    BulkActionType `json:"action"`
	Processed int            `json:"processed"`
	Succeeded int            `json:"succeeded"`
	FailedIDs []int64        `json:"failed_ids"`
}
