package dto

import (
	"fmt"
	"sort"

	"github.com/noah-isme/libvisit-api/internal/models"
)

// maxCourseBars caps the course chart to the busiest courses.
const maxCourseBars = 10

var levelColors = []string{"#f59e0b", "#10b981", "#8b5cf6"}

// AnalyticsDashboardResponse is the chart-ready analytics payload for the admin dashboard.
type AnalyticsDashboardResponse struct {
	Range       models.DateRange `json:"range"`
	Stats       AnalyticsStats   `json:"stats"`
	LevelData   ChartSeries      `json:"levelData"`
	CourseData  ChartSeries      `json:"courseData"`
	PurposeData ChartSeries      `json:"purposeData"`
	DailyTrend  ChartSeries      `json:"dailyTrend"`
	PeakHours   ChartSeries      `json:"peakHours"`
	Visitors    []models.Visitor `json:"visitors,omitempty"`
}

// AnalyticsStats are the headline numbers.
type AnalyticsStats struct {
	Total       int     `json:"total"`
	Active      int     `json:"active"`
	AvgDuration float64 `json:"avgDuration"`
}

// ChartSeries is a labelled series; Colors is only set for the level chart.
type ChartSeries struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Colors []string `json:"colors,omitempty"`
}

// NewAnalyticsDashboard shapes analytics for charting. visitors may be nil.
func NewAnalyticsDashboard(a *models.VisitorAnalytics, visitors []models.Visitor) AnalyticsDashboardResponse {
	resp := AnalyticsDashboardResponse{
		Range: a.Range,
		Stats: AnalyticsStats{
			Total:       a.Total,
			Active:      a.Active,
			AvgDuration: a.AvgDurationMinutes,
		},
		LevelData:   rankedSeries(a.LevelDistribution, 0),
		CourseData:  rankedSeries(a.CourseDistribution, maxCourseBars),
		PurposeData: rankedSeries(a.PurposeDistribution, 0),
		DailyTrend:  ChartSeries{Labels: []string{}, Values: []int{}},
		PeakHours:   ChartSeries{Labels: []string{}, Values: []int{}},
		Visitors:    visitors,
	}
	resp.LevelData.Colors = levelColors

	for _, d := range a.DailyTrend {
		resp.DailyTrend.Labels = append(resp.DailyTrend.Labels, d.Date)
		resp.DailyTrend.Values = append(resp.DailyTrend.Values, d.Count)
	}
	for _, h := range a.PeakHours {
		resp.PeakHours.Labels = append(resp.PeakHours.Labels, fmt.Sprintf("%d:00", h.Hour))
		resp.PeakHours.Values = append(resp.PeakHours.Values, h.Count)
	}
	return resp
}

// rankedSeries orders counts descending, ties by label, keeping at most limit entries (0 = all).
func rankedSeries(counts map[string]int, limit int) ChartSeries {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if limit > 0 && len(labels) > limit {
		labels = labels[:limit]
	}

	series := ChartSeries{Labels: labels, Values: make([]int, len(labels))}
	for i, label := range labels {
		series.Values[i] = counts[label]
	}
	return series
}
