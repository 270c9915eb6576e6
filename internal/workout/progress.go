package workout

import (
	"time"

	"github.com/google/uuid"
)

// weeklyProgressNamespace seeds the name based ids of weekly rollups.
var weeklyProgressNamespace = uuid.MustParse("9a0f6c52-3b8e-4f4e-9d43-6f1e2d7c8b10")

// WeeklyProgress is computed on every query and never stored.
type WeeklyProgress struct {
	ID            uuid.UUID `json:"id"`
	WeekStart     time.Time `json:"weekStart"`
	TotalWorkouts int       `json:"totalWorkouts"`
	TotalSets     int       `json:"totalSets"`
	TotalVolume   float64   `json:"totalVolume"`
}

func weeklyProgressID(weekStart time.Time) uuid.UUID {
	return uuid.NewSHA1(weeklyProgressNamespace, []byte(weekStart.UTC().Format(time.RFC3339)))
}

// Summary holds totals over the whole log.
type Summary struct {
	TotalWorkouts   int       `json:"totalWorkouts"`
	TotalSets       int       `json:"totalSets"`
	TotalReps       int       `json:"totalReps"`
	TotalVolume     float64   `json:"totalVolume"`
	DistinctNames   int       `json:"distinctExercises"`
	FirstWorkoutAt  time.Time `json:"firstWorkoutAt"`
	LatestWorkoutAt time.Time `json:"latestWorkoutAt"`
}
