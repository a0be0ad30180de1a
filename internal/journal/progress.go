package journal

import (
	"math"
	"time"

	"github.com/sakif/dailylog/internal/model"
)

// DefaultTargetDays is the number of logged days that counts as 100 %.
const DefaultTargetDays = 65

// Progress summarises how many distinct days have at least one entry.
type Progress struct {
	DaysLogged int `json:"daysLogged"`
	TargetDays int `json:"targetDays"`
	Percentage int `json:"percentage"`
}

// ComputeProgress counts distinct calendar days in loc and expresses them as
// a percentage of targetDays, rounded half away from zero and capped at 100.
//
// Days are calendar dates in loc, not 24h buckets of instants: 23:30 and
// 00:30 local time are two different days even though they are one hour apart.
// A nil loc means time.Local.
func ComputeProgress(entries []model.Entry, targetDays int, loc *time.Location) Progress {
	if loc == nil {
		loc = time.Local
	}

	type day struct {
		y int
		m time.Month
		d int
	}
	days := make(map[day]struct{}, len(entries))
	for _, e := range entries {
		y, m, d := e.Timestamp.In(loc).Date()
		days[day{y, m, d}] = struct{}{}
	}

	p := Progress{DaysLogged: len(days), TargetDays: targetDays}
	if targetDays <= 0 {
		return p
	}

	pct := int(math.Round(100 * float64(p.DaysLogged) / float64(targetDays)))
	p.Percentage = min(100, pct)
	return p
}
