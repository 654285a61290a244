package dto

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/libvisit-api/internal/models"
)

func TestNewAnalyticsDashboard(t *testing.T) {
	courses := map[string]int{}
	for i := 0; i < 12; i++ {
		courses[fmt.Sprintf("C%02d", i)] = i + 1
	}
	a := &models.VisitorAnalytics{
		Range:               models.DateRange{Start: "2024-03-01", End: "2024-03-02"},
		Total:               5,
		Active:              2,
		AvgDurationMinutes:  42.5,
		LevelDistribution:   map[string]int{"UG": 3, "JC": 1, "PG": 1},
		CourseDistribution:  courses,
		PurposeDistribution: map[string]int{"Study": 4, "Other": 1},
		DailyTrend:          []models.DailyCount{{Date: "2024-03-01", Count: 2}, {Date: "2024-03-02", Count: 3}},
		PeakHours:           []models.HourCount{{Hour: 8, Count: 1}, {Hour: 9, Count: 0}},
	}

	got := NewAnalyticsDashboard(a, nil)

	assert.Equal(t, AnalyticsStats{Total: 5, Active: 2, AvgDuration: 42.5}, got.Stats)
	assert.Equal(t, []string{"UG", "JC", "PG"}, got.LevelData.Labels)
	assert.Equal(t, []int{3, 1, 1}, got.LevelData.Values)
	assert.Len(t, got.LevelData.Colors, 3)

	require.Len(t, got.CourseData.Labels, 10)
	assert.Equal(t, "C11", got.CourseData.Labels[0])
	assert.Equal(t, 12, got.CourseData.Values[0])
	assert.Equal(t, "C02", got.CourseData.Labels[9])

	assert.Equal(t, []string{"Study", "Other"}, got.PurposeData.Labels)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, got.DailyTrend.Labels)
	assert.Equal(t, []int{2, 3}, got.DailyTrend.Values)
	assert.Equal(t, []string{"8:00", "9:00"}, got.PeakHours.Labels)
	assert.Nil(t, got.Visitors)
}
