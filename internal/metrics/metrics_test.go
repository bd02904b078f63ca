package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devwell-dashboard/internal/model"
)

func score(v float64) *float64 {
	return &v
}

func insight(date string, sleep, prod float64) model.ActivityInsight {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.ActivityInsight{
		Date:       d,
		SleepScore: score(sleep), ProductivityScore: score(prod),
	}
}

func TestAverage(t *testing.T) {
	t.Run("empty sequence averages to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Average(nil, func(f float64) float64 { return f }))
		assert.Equal(t, 0.0, Average([]float64{}, func(f float64) float64 { return f }))
	})

	t.Run("average lies within min and max", func(t *testing.T) {
		values := []float64{3, 9, 4.5, 7, 12, 0.5}
		avg := Average(values, func(f float64) float64 { return f })
		assert.GreaterOrEqual(t, avg, 0.5)
		assert.LessOrEqual(t, avg, 12.0)
		assert.InDelta(t, 6.0, avg, 0.0001)
	})

	t.Run("extracts fields from structs", func(t *testing.T) {
		records := []model.SleepRecord{
			{DurationHours: 6},
			{DurationHours: 8},
		}
		avg := Average(records, func(r model.SleepRecord) float64 { return r.DurationHours })
		assert.InDelta(t, 7.0, avg, 0.0001)
	})
}

func TestPercentChange(t *testing.T) {
	t.Run("zero previous is defined as 100", func(t *testing.T) {
		assert.Equal(t, 100.0, PercentChange(50, 0))
		assert.Equal(t, 100.0, PercentChange(-3, 0))
		// The zero-over-zero edge case is also exactly 100 by definition.
		assert.Equal(t, 100.0, PercentChange(0, 0))
	})

	t.Run("regular deltas", func(t *testing.T) {
		assert.InDelta(t, 50.0, PercentChange(150, 100), 0.0001)
		assert.InDelta(t, -25.0, PercentChange(75, 100), 0.0001)
		assert.InDelta(t, 0.0, PercentChange(80, 80), 0.0001)
	})
}

func TestConsistencyScore(t *testing.T) {
	t.Run("fewer than two days scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, ConsistencyScore(nil))
		assert.Equal(t, 0.0, ConsistencyScore([]model.ActivityInsight{insight("2025-03-01", 80, 70)}))
	})

	t.Run("two identical days score 100", func(t *testing.T) {
		insights := []model.ActivityInsight{
			insight("2025-03-01", 80, 70),
			insight("2025-03-02", 80, 70),
		}
		assert.Equal(t, 100.0, ConsistencyScore(insights))
	})

	t.Run("one dimension swinging halves the score", func(t *testing.T) {
		insights := []model.ActivityInsight{
			insight("2025-03-01", 80, 20),
			insight("2025-03-02", 85, 90),
		}
		assert.InDelta(t, 50.0, ConsistencyScore(insights), 0.0001)
	})

	t.Run("order of input does not matter", func(t *testing.T) {
		insights := []model.ActivityInsight{
			insight("2025-03-03", 40, 40),
			insight("2025-03-01", 80, 80),
			insight("2025-03-02", 75, 75),
		}
		// Ordered by date the pairs are (80,75) consistent and (75,40) not.
		assert.InDelta(t, 50.0, ConsistencyScore(insights), 0.0001)
	})

	t.Run("a delta of exactly 20 is not consistent", func(t *testing.T) {
		insights := []model.ActivityInsight{
			insight("2025-03-01", 50, 50),
			insight("2025-03-02", 70, 69.9),
		}
		assert.InDelta(t, 50.0, ConsistencyScore(insights), 0.0001)
	})
}

func TestGoalsMetCount(t *testing.T) {
	insights := []model.ActivityInsight{
		insight("2025-03-01", 80, 75),
		insight("2025-03-02", 60, 90),
	}
	// Only the first day clears 70 on both dimensions.
	assert.Equal(t, 1, GoalsMetCount(insights))

	t.Run("threshold is inclusive", func(t *testing.T) {
		assert.True(t, GoalsMet(insight("2025-03-03", 70, 70)))
	})

	t.Run("missing scores never meet goals", func(t *testing.T) {
		assert.False(t, GoalsMet(model.ActivityInsight{ProductivityScore: score(90)}))
	})
}

func TestWeeklyBuckets(t *testing.T) {
	// March 2025 starts on a Saturday; the first bucket's Monday is Feb 24.
	in := []model.ActivityInsight{
		insight("2025-03-01", 80, 70),
		insight("2025-03-03", 60, 60),
		insight("2025-03-04", 70, 80),
		insight("2025-03-31", 90, 90),
	}
	in[0].CommitCount, in[0].ActiveHours = 5, 3
	in[1].CommitCount, in[1].ActiveHours = 2, 1
	in[2].CommitCount, in[2].ActiveHours = 4, 2

	buckets := WeeklyBuckets(2025, time.March, in)
	require.Len(t, buckets, 6)

	first := buckets[0]
	assert.Equal(t, time.Date(2025, time.February, 24, 0, 0, 0, 0, time.UTC), first.WeekStart)
	assert.Equal(t, 1, first.Days)
	assert.Equal(t, 5, first.CommitCount)
	assert.Equal(t, 3, first.ActiveHours)
	assert.InDelta(t, 80.0, first.AvgSleepScore, 0.0001)

	second := buckets[1]
	assert.Equal(t, 2, second.Days)
	assert.Equal(t, 6, second.CommitCount)
	assert.InDelta(t, 65.0, second.AvgSleepScore, 0.0001)
	assert.InDelta(t, 70.0, second.AvgProductivityScore, 0.0001)

	t.Run("empty buckets average to zero", func(t *testing.T) {
		third := buckets[2]
		assert.Equal(t, 0, third.Days)
		assert.Equal(t, 0.0, third.AvgSleepScore)
		assert.Equal(t, 0.0, third.AvgProductivityScore)
	})

	t.Run("last day of the month lands in the final bucket", func(t *testing.T) {
		assert.Equal(t, 1, buckets[5].Days)
		assert.InDelta(t, 90.0, buckets[5].AvgSleepScore, 0.0001)
	})
}

func TestBuildMonthlyReport(t *testing.T) {
	current := []model.ActivityInsight{
		insight("2025-03-01", 80, 75),
		insight("2025-03-02", 60, 90),
	}
	current[0].CommitCount = 6
	current[1].CommitCount = 4
	previous := []model.ActivityInsight{
		insight("2025-02-10", 70, 80),
	}
	previous[0].CommitCount = 5

	report := BuildMonthlyReport(2025, time.March, current, previous)

	assert.Equal(t, 2025, report.Year)
	assert.Equal(t, time.March, report.Month)
	assert.InDelta(t, 70.0, report.AvgSleepScore, 0.0001)
	assert.InDelta(t, 82.5, report.AvgProductivityScore, 0.0001)
	assert.Equal(t, 10, report.TotalCommits)
	assert.Equal(t, 1, report.GoalsMetDays)
	assert.InDelta(t, 0.0, report.SleepScoreChange, 0.0001)
	assert.InDelta(t, 100.0, report.CommitChange, 0.0001)
	assert.NotEmpty(t, report.Weeks)

	t.Run("empty previous month yields 100 percent deltas", func(t *testing.T) {
		report := BuildMonthlyReport(2025, time.March, current, nil)
		assert.Equal(t, 100.0, report.SleepScoreChange)
		assert.Equal(t, 100.0, report.CommitChange)
	})
}

func TestNewDailySummary(t *testing.T) {
	day := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	stats := model.CommitStats{Count: 3, Hours: 2}

	t.Run("without an insight", func(t *testing.T) {
		summary := NewDailySummary(day, nil, stats)
		assert.Equal(t, 3, summary.CommitCount)
		assert.Equal(t, 2, summary.ActiveHours)
		assert.Nil(t, summary.SleepScore)
		assert.False(t, summary.GoalsMet)
		assert.NotNil(t, summary.Recommendations)
	})

	t.Run("with an insight", func(t *testing.T) {
		in := insight("2025-03-01", 85, 75)
		in.Recommendations = []string{"wind down earlier"}
		summary := NewDailySummary(day, &in, stats)
		assert.True(t, summary.GoalsMet)
		assert.Equal(t, []string{"wind down earlier"}, summary.Recommendations)
		require.NotNil(t, summary.SleepScore)
		assert.Equal(t, 85.0, *summary.SleepScore)
	})
}
