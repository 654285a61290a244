package service

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/clock"
)

const (
	peakHourFirst = 8
	peakHourLast  = 20

	// A wrapped (exit before entry) duration longer than this is treated as bad data, not an overnight stay.
	maxOvernightSpan = 12 * time.Hour

	unknownLabel = "Unknown"
	otherLabel   = "Other"
)

// AggregateVisitors derives dashboard statistics from records. It never fails: unparsable
// times are skipped and the result is deterministic for a given input.
func AggregateVisitors(records []models.Visitor, r models.DateRange) models.VisitorAnalytics {
	out := models.VisitorAnalytics{
		Range:               r,
		Total:               len(records),
		Active:              lo.CountBy(records, func(v models.Visitor) bool { return v.Active() }),
		LevelDistribution:   map[string]int{},
		CourseDistribution:  map[string]int{},
		PurposeDistribution: map[string]int{},
		DailyTrend:          []models.DailyCount{},
		PeakHours:           make([]models.HourCount, 0, peakHourLast-peakHourFirst+1),
	}

	daily := map[string]int{}
	hours := map[int]int{}
	var durations []float64

	for _, v := range records {
		out.LevelDistribution[labelOr(string(v.Level), unknownLabel)]++
		out.CourseDistribution[courseLabel(v)]++
		out.PurposeDistribution[labelOr(v.Purpose, otherLabel)]++

		if v.VisitDate != "" {
			daily[v.VisitDate]++
		}
		if hour, ok := entryHour(v.EntryTime); ok && hour >= peakHourFirst && hour <= peakHourLast {
			hours[hour]++
		}
		if minutes, ok := visitMinutes(v); ok {
			durations = append(durations, minutes)
		}
	}

	dates := lo.Keys(daily)
	sort.Strings(dates)
	for _, d := range dates {
		out.DailyTrend = append(out.DailyTrend, models.DailyCount{Date: d, Count: daily[d]})
	}
	for h := peakHourFirst; h <= peakHourLast; h++ {
		out.PeakHours = append(out.PeakHours, models.HourCount{Hour: h, Count: hours[h]})
	}
	if len(durations) > 0 {
		out.AvgDurationMinutes = round1(lo.Sum(durations) / float64(len(durations)))
	}
	return out
}

// courseLabel uses the stream for JC visitors and the course otherwise.
func courseLabel(v models.Visitor) string {
	if v.Level == models.LevelJC {
		return labelOr(lo.FromPtr(v.JcStream), unknownLabel)
	}
	return labelOr(v.Course, unknownLabel)
}

func labelOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func entryHour(raw string) (int, bool) {
	head, _, found := strings.Cut(raw, ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

// visitMinutes returns the stay length, wrapping past midnight once.
func visitMinutes(v models.Visitor) (float64, bool) {
	if v.ExitTime == nil || v.EntryTime == "" {
		return 0, false
	}
	entry, ok := parseTimeOfDay(v.EntryTime)
	if !ok {
		return 0, false
	}
	exit, ok := parseTimeOfDay(*v.ExitTime)
	if !ok {
		return 0, false
	}

	span := exit.Sub(entry)
	if span < 0 {
		span += 24 * time.Hour
		if span > maxOvernightSpan {
			return 0, false
		}
	}
	return span.Minutes(), true
}

func parseTimeOfDay(raw string) (time.Time, bool) {
	for _, layout := range []string{clock.TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
