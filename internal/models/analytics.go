package models

// DateRange is an inclusive span of YYYY-MM-DD dates.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// VisitorAnalytics summarises the visits inside a date range.
type VisitorAnalytics struct {
	Range               DateRange      `json:"range"`
	Total               int            `json:"total"`
	Active              int            `json:"active"`
	AvgDurationMinutes  float64        `json:"avg_duration_minutes"`
	LevelDistribution   map[string]int `json:"level_distribution"`
	CourseDistribution  map[string]int `json:"course_distribution"`
	PurposeDistribution map[string]int `json:"purpose_distribution"`
	DailyTrend          []DailyCount   `json:"daily_trend"`
	PeakHours           []HourCount    `json:"peak_hours"`
}

// DailyCount is the number of visits on one date.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HourCount is the number of entries that started within one clock hour.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}
