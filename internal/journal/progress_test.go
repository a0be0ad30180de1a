package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/dailylog/internal/model"
)

func at(ts time.Time) model.Entry { return model.Entry{Timestamp: ts} }

func TestComputeProgress_ThreeDaysOfSixtyFive(t *testing.T) {
	entries := []model.Entry{
		at(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		at(time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)), // same day
		at(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)),
		at(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)),
	}

	p := ComputeProgress(entries, 65, time.UTC)

	assert.Equal(t, 3, p.DaysLogged)
	assert.Equal(t, 65, p.TargetDays)
	assert.Equal(t, 5, p.Percentage)
}

func TestComputeProgress_UsesLocalCalendarDate(t *testing.T) {
	// 23:30 and 00:30 in UTC+2 are two local days but one UTC day.
	loc := time.FixedZone("UTC+2", 2*3600)
	entries := []model.Entry{
		at(time.Date(2024, 1, 1, 23, 30, 0, 0, loc)),
		at(time.Date(2024, 1, 2, 0, 30, 0, 0, loc)),
	}

	assert.Equal(t, 2, ComputeProgress(entries, 65, loc).DaysLogged)
	assert.Equal(t, 1, ComputeProgress(entries, 65, time.UTC).DaysLogged)
}

func TestComputeProgress_CapsAtHundred(t *testing.T) {
	var entries []model.Entry
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		entries = append(entries, at(start.AddDate(0, 0, i)))
	}

	p := ComputeProgress(entries, 4, time.UTC)

	assert.Equal(t, 10, p.DaysLogged)
	assert.Equal(t, 100, p.Percentage)
}

func TestComputeProgress_EdgeCases(t *testing.T) {
	assert.Equal(t, Progress{TargetDays: 65}, ComputeProgress(nil, 65, time.UTC))
	assert.Equal(t, 0, ComputeProgress([]model.Entry{at(time.Now())}, 0, nil).Percentage)
}

func TestComputeProgress_RoundsHalfUp(t *testing.T) {
	// 1/8 = 12.5 % → 13
	p := ComputeProgress([]model.Entry{at(time.Now())}, 8, time.UTC)
	assert.Equal(t, 13, p.Percentage)
}
