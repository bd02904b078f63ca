// Package metrics derives presentation statistics from already-fetched
// record sequences. Every function here is pure: no I/O, no clocks.
package metrics

import (
	"sort"
	"time"

	"devwell-dashboard/internal/model"
)

// goalThreshold is the score a day must reach on both dimensions to count
// as meeting goals.
const goalThreshold = 70.0

// consistencyDelta is the largest day-over-day score change that still
// counts as consistent.
const consistencyDelta = 20.0

// Average computes the mean of a numeric field across a sequence. An empty
// sequence averages to 0, not NaN.
func Average[T any](items []T, value func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += value(item)
	}
	return sum / float64(len(items))
}

// PercentChange is the relative change from previous to current, in
// percent. When previous is 0 the change is defined as exactly 100, even
// when current is also 0.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 100
	}
	return (current - previous) / previous * 100
}

func scoreOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// ConsistencyScore measures day-over-day stability across an insight
// sequence. For each adjacent day pair, one point is awarded per dimension
// (sleep, productivity) whose delta stays under 20; the score is the
// fraction of possible points, in [0,100]. Fewer than two days score 0.
func ConsistencyScore(insights []model.ActivityInsight) float64 {
	if len(insights) < 2 {
		return 0
	}

	ordered := byDateAscending(insights)
	var points int
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if abs(scoreOrZero(cur.SleepScore)-scoreOrZero(prev.SleepScore)) < consistencyDelta {
			points++
		}
		if abs(scoreOrZero(cur.ProductivityScore)-scoreOrZero(prev.ProductivityScore)) < consistencyDelta {
			points++
		}
	}
	return float64(points) / float64(2*(len(ordered)-1)) * 100
}

// GoalsMet reports whether a day reached the 70-point threshold on both
// sleep and productivity.
func GoalsMet(in model.ActivityInsight) bool {
	return scoreOrZero(in.SleepScore) >= goalThreshold &&
		scoreOrZero(in.ProductivityScore) >= goalThreshold
}

// GoalsMetCount counts the days in the sequence that met both goals.
func GoalsMetCount(insights []model.ActivityInsight) int {
	var n int
	for _, in := range insights {
		if GoalsMet(in) {
			n++
		}
	}
	return n
}

// WeekBucket aggregates one ISO week of a month's insights.
type WeekBucket struct {
	WeekStart            time.Time `json:"week_start"`
	Days                 int       `json:"days"`
	CommitCount          int       `json:"commit_count"`
	ActiveHours          int       `json:"active_hours"`
	AvgSleepScore        float64   `json:"avg_sleep_score"`
	AvgProductivityScore float64   `json:"avg_productivity_score"`
}

// WeeklyBuckets partitions a month's insights into ISO-week-aligned buckets
// starting from the week containing the first of the month. Counts are
// summed and scores averaged per bucket; an empty bucket averages to 0.
func WeeklyBuckets(year int, month time.Month, insights []model.ActivityInsight) []WeekBucket {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0)

	// Back up to the Monday of the first calendar week.
	weekStart := first.AddDate(0, 0, -((int(first.Weekday()) + 6) % 7))

	var buckets []WeekBucket
	for ; weekStart.Before(last); weekStart = weekStart.AddDate(0, 0, 7) {
		weekEnd := weekStart.AddDate(0, 0, 7)
		bucket := WeekBucket{WeekStart: weekStart}

		var sleepScores, prodScores []float64
		for _, in := range insights {
			d := in.Date
			if d.Before(weekStart) || !d.Before(weekEnd) {
				continue
			}
			bucket.Days++
			bucket.CommitCount += in.CommitCount
			bucket.ActiveHours += in.ActiveHours
			if in.SleepScore != nil {
				sleepScores = append(sleepScores, *in.SleepScore)
			}
			if in.ProductivityScore != nil {
				prodScores = append(prodScores, *in.ProductivityScore)
			}
		}
		bucket.AvgSleepScore = Average(sleepScores, func(f float64) float64 { return f })
		bucket.AvgProductivityScore = Average(prodScores, func(f float64) float64 { return f })
		buckets = append(buckets, bucket)
	}
	return buckets
}

// MonthlyReport is the aggregate view of one month, with percentage deltas
// against the previous month.
type MonthlyReport struct {
	Year                     int          `json:"year"`
	Month                    time.Month   `json:"month"`
	AvgSleepScore            float64      `json:"avg_sleep_score"`
	AvgProductivityScore     float64      `json:"avg_productivity_score"`
	TotalCommits             int          `json:"total_commits"`
	TotalActiveHours         int          `json:"total_active_hours"`
	ConsistencyScore         float64      `json:"consistency_score"`
	GoalsMetDays             int          `json:"goals_met_days"`
	SleepScoreChange         float64      `json:"sleep_score_change"`
	ProductivityScoreChange  float64      `json:"productivity_score_change"`
	CommitChange             float64      `json:"commit_change"`
	Weeks                    []WeekBucket `json:"weeks"`
}

// BuildMonthlyReport aggregates one month of insights and compares it
// against the previous month's.
func BuildMonthlyReport(year int, month time.Month, current, previous []model.ActivityInsight) MonthlyReport {
	report := MonthlyReport{
		Year:                 year,
		Month:                month,
		AvgSleepScore:        averageSleep(current),
		AvgProductivityScore: averageProductivity(current),
		TotalCommits:         totalCommits(current),
		ConsistencyScore:     ConsistencyScore(current),
		GoalsMetDays:         GoalsMetCount(current),
		Weeks:                WeeklyBuckets(year, month, current),
	}
	for _, in := range current {
		report.TotalActiveHours += in.ActiveHours
	}

	report.SleepScoreChange = PercentChange(report.AvgSleepScore, averageSleep(previous))
	report.ProductivityScoreChange = PercentChange(report.AvgProductivityScore, averageProductivity(previous))
	report.CommitChange = PercentChange(float64(report.TotalCommits), float64(totalCommits(previous)))
	return report
}

// DailySummary is the presentation-ready view of a single day.
type DailySummary struct {
	Date              time.Time `json:"date"`
	CommitCount       int       `json:"commit_count"`
	ActiveHours       int       `json:"active_hours"`
	SleepScore        *float64  `json:"sleep_score,omitempty"`
	ProductivityScore *float64  `json:"productivity_score,omitempty"`
	Recommendations   []string  `json:"recommendations"`
	GoalsMet          bool      `json:"goals_met"`
}

// NewDailySummary merges a day's insight (which may be absent) with its
// commit stats. Stats win for commit figures since they come straight from
// the commit table.
func NewDailySummary(date time.Time, insight *model.ActivityInsight, stats model.CommitStats) DailySummary {
	summary := DailySummary{
		Date:            date,
		CommitCount:     stats.Count,
		ActiveHours:     stats.Hours,
		Recommendations: []string{},
	}
	if insight != nil {
		summary.SleepScore = insight.SleepScore
		summary.ProductivityScore = insight.ProductivityScore
		if insight.Recommendations != nil {
			summary.Recommendations = insight.Recommendations
		}
		summary.GoalsMet = GoalsMet(*insight)
	}
	return summary
}

func averageSleep(insights []model.ActivityInsight) float64 {
	return Average(insights, func(in model.ActivityInsight) float64 {
		return scoreOrZero(in.SleepScore)
	})
}

func averageProductivity(insights []model.ActivityInsight) float64 {
	return Average(insights, func(in model.ActivityInsight) float64 {
		return scoreOrZero(in.ProductivityScore)
	})
}

func totalCommits(insights []model.ActivityInsight) int {
	var n int
	for _, in := range insights {
		n += in.CommitCount
	}
	return n
}

func byDateAscending(insights []model.ActivityInsight) []model.ActivityInsight {
	ordered := make([]model.ActivityInsight, len(insights))
	copy(ordered, insights)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})
	return ordered
}
