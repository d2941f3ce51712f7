package stats

import (
	"time"

	"github.com/runlab/unwrapped/internal/record"
)

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November",
	"December",
}

var dayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
	"Saturday", "Sunday",
}

// TimeAnalytics distributes run timestamps across month,
// ISO-weekday (Monday=0), and hour buckets. Nullable fields are
// nil when no run carried a parseable timestamp; every other
// field is present with zero-defaulted content.
type TimeAnalytics struct {
	RunsPerMonth     [12]int        `json:"runs_per_month"`
	BusiestMonth     *string        `json:"busiest_month"`
	BusiestMonthRuns int            `json:"busiest_month_count"`
	BusiestDay       *string        `json:"busiest_day"`
	BusiestDayRuns   int            `json:"busiest_day_count"`
	BusiestHour      *int           `json:"busiest_hour"`
	BusiestHourRuns  int            `json:"busiest_hour_count"`
	FirstRun         *string        `json:"first_run"`
	LastRun          *string        `json:"last_run"`
	WeekendRuns      int            `json:"weekend_runs"`
	WeekdayRuns      int            `json:"weekday_runs"`
	DayDistribution  map[string]int `json:"day_distribution"`
}

// isoWeekday converts Go's Sunday=0 convention to ISO Monday=0.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// argmaxBucket returns the smallest key holding the maximum
// count, plus that count. Resolving ties to the smallest key is
// the documented replacement for the source platform's
// iteration-order tie-break. ok is false for an empty map.
func argmaxBucket(counts map[int]int) (key, count int, ok bool) {
	for k, c := range counts {
		if !ok || c > count || (c == count && k < key) {
			key, count, ok = k, c, true
		}
	}
	return key, count, ok
}

// ComputeTimeAnalytics builds the time-bucket distribution from
// a run collection. Runs without a parseable timestamp are
// excluded; an empty or all-invalid input yields the zero shape.
func ComputeTimeAnalytics(runs []record.Run) TimeAnalytics {
	analytics := TimeAnalytics{
		DayDistribution: make(map[string]int, len(dayNames)),
	}
	for _, day := range dayNames {
		analytics.DayDistribution[day] = 0
	}

	var times []time.Time
	for _, run := range runs {
		if run.Created != nil {
			times = append(times, *run.Created)
		}
	}
	if len(times) == 0 {
		return analytics
	}

	monthCounts := make(map[int]int)
	dayCounts := make(map[int]int)
	hourCounts := make(map[int]int)
	first, last := times[0], times[0]

	for _, t := range times {
		monthCounts[int(t.Month())]++
		dayCounts[isoWeekday(t)]++
		hourCounts[t.Hour()]++

		if isoWeekday(t) >= 5 {
			analytics.WeekendRuns++
		} else {
			analytics.WeekdayRuns++
		}
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}

	for m, c := range monthCounts {
		analytics.RunsPerMonth[m-1] = c
	}
	if m, c, ok := argmaxBucket(monthCounts); ok {
		name := monthNames[m-1]
		analytics.BusiestMonth = &name
		analytics.BusiestMonthRuns = c
	}
	if d, c, ok := argmaxBucket(dayCounts); ok {
		name := dayNames[d]
		analytics.BusiestDay = &name
		analytics.BusiestDayRuns = c
	}
	if h, c, ok := argmaxBucket(hourCounts); ok {
		hour := h
		analytics.BusiestHour = &hour
		analytics.BusiestHourRuns = c
	}

	firstStr := first.Format(time.RFC3339)
	lastStr := last.Format(time.RFC3339)
	analytics.FirstRun = &firstStr
	analytics.LastRun = &lastStr

	return analytics
}

// monthBuckets counts runs per month-of-year as a 12-length
// ordered sequence; used for per-project growth computation.
func monthBuckets(runs []record.Run) [12]int {
	var months [12]int
	for _, run := range runs {
		if run.Created != nil {
			months[int(run.Created.Month())-1]++
		}
	}
	return months
}

// meanMonthlyGrowth averages month-over-month percentage change
// across all transitions whose prior month count is nonzero,
// rounded to one decimal. No qualifying transition yields 0.
func meanMonthlyGrowth(months [12]int) float64 {
	var sum float64
	var n int
	for i := 1; i < len(months); i++ {
		prev := months[i-1]
		if prev == 0 {
			continue
		}
		sum += float64(months[i]-prev) / float64(prev) * 100
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}
