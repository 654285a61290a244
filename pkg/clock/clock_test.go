package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarStampsInZone(t *testing.T) {
	// 20:00 UTC on a Monday is 01:30 Tuesday in IST.
	instant := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	cal, err := NewCalendar(Fixed(instant), "Asia/Kolkata")
	require.NoError(t, err)

	stamp := cal.Stamp()
	assert.Equal(t, "2024-01-02", stamp.Date)
	assert.Equal(t, "01:30:00", stamp.Time)
	assert.Equal(t, "Tuesday", stamp.Weekday)
	assert.Equal(t, "2024-01-02", cal.Today())
	assert.Equal(t, "01:30:00", cal.TimeOfDay())
}

func TestNewCalendarRejectsUnknownZone(t *testing.T) {
	_, err := NewCalendar(nil, "Mars/Olympus")
	assert.Error(t, err)
}

func TestNormalizeTime(t *testing.T) {
	got, err := NormalizeTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05:00", got)

	got, err = NormalizeTime("17:45:30")
	require.NoError(t, err)
	assert.Equal(t, "17:45:30", got)

	_, err = NormalizeTime("25:00")
	assert.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	day, err := WeekdayOf("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "Friday", day)

	_, err = WeekdayOf("15/03/2024")
	assert.Error(t, err)
}
