package repository

import (
	"fmt"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/clock"
)

// visitorRow is the insert shape shared by the SQL and REST stores.
type visitorRow struct {
	Name      string  `json:"name"`
	RollNo    string  `json:"roll_no"`
	Level     string  `json:"level"`
	Course    string  `json:"course"`
	Year      *string `json:"year"`
	JcYear    *string `json:"jc_year"`
	JcStream  *string `json:"jc_stream"`
	Purpose   string  `json:"purpose"`
	EntryTime string  `json:"entry_time"`
	ExitTime  *string `json:"exit_time"`
	VisitDate string  `json:"visit_date"`
	VisitDay  string  `json:"visit_day"`
}

// newVisitorRow stamps the draft from the calendar unless it carries an explicit stamp.
func newVisitorRow(draft models.VisitorDraft, calendar *clock.Calendar) (visitorRow, error) {
	row := visitorRow{
		Name:     draft.Name,
		RollNo:   draft.RollNo,
		Level:    string(draft.Level),
		Course:   draft.Course,
		Year:     draft.Year,
		JcYear:   draft.JcYear,
		JcStream: draft.JcStream,
		Purpose:  draft.Purpose,
	}

	if draft.Stamp == nil {
		stamp := calendar.Stamp()
		row.VisitDate, row.EntryTime, row.VisitDay = stamp.Date, stamp.Time, stamp.Weekday
		return row, nil
	}

	day, err := clock.WeekdayOf(draft.Stamp.VisitDate)
	if err != nil {
		return visitorRow{}, fmt.Errorf("stamp visitor: %w", err)
	}
	row.VisitDate = draft.Stamp.VisitDate
	row.EntryTime = draft.Stamp.EntryTime
	row.ExitTime = draft.Stamp.ExitTime
	row.VisitDay = day
	return row, nil
}
