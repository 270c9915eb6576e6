package workout

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Analyzer derives views over an exercise log. It never modifies the slices it is given;
// every result is a newly allocated slice.
type Analyzer struct {
	calendar Calendar
	now      func() time.Time
}

// NewAnalyzer creates an analyzer for the given calendar. A nil clock means time.Now.
func NewAnalyzer(calendar Calendar, clock func() time.Time) *Analyzer {
	if clock == nil {
		clock = time.Now
	}
	return &Analyzer{
		calendar: calendar,
		now:      clock,
	}
}

func (a *Analyzer) Calendar() Calendar {
	return a.calendar
}

// History returns the entries whose lowercased name equals the lowercased name, newest first.
func (a *Analyzer) History(exercises []Exercise, name string) []Exercise {
	lowerName := lower(name)
	history := make([]Exercise, 0)
	for _, ex := range exercises {
		if lower(ex.Name) == lowerName {
			history = append(history, ex.clone())
		}
	}
	sortByDateDesc(history)
	return history
}

// Filter returns the entries within the date range of the filter, newest first.
// An unknown filter yields an empty result.
func (a *Analyzer) Filter(exercises []Exercise, filter DateFilter) []Exercise {
	include, ok := a.dateMatcher(filter)
	if !ok {
		return []Exercise{}
	}

	filtered := make([]Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if include(ex.Date) {
			filtered = append(filtered, ex.clone())
		}
	}
	sortByDateDesc(filtered)
	return filtered
}

func (a *Analyzer) dateMatcher(filter DateFilter) (func(time.Time) bool, bool) {
	now := a.now()
	switch filter {
	case FilterAll:
		return func(time.Time) bool { return true }, true
	case FilterToday:
		return func(date time.Time) bool {
			return a.calendar.SameDay(date, now)
		}, true
	case FilterThisWeek:
		weekStart := a.calendar.StartOfWeek(now)
		return func(date time.Time) bool {
			return !date.Before(weekStart)
		}, true
	case FilterThisMonth:
		monthStart := a.calendar.StartOfMonth(now)
		return func(date time.Time) bool {
			return !date.Before(monthStart)
		}, true
	case FilterLastMonth:
		from, to := a.calendar.PreviousMonthRange(now)
		if !from.Before(to) {
			return nil, false
		}
		return func(date time.Time) bool {
			return !date.Before(from) && date.Before(to)
		}, true
	default:
		return nil, false
	}
}

// Search keeps the entries whose name contains query, ignoring case.
// An empty query returns the input as is (copied); whitespace is matched like any other text.
func (a *Analyzer) Search(exercises []Exercise, query string) []Exercise {
	if query == "" {
		return cloneExercises(exercises)
	}

	foldedQuery := fold(query)
	found := make([]Exercise, 0)
	for _, ex := range exercises {
		if strings.Contains(fold(ex.Name), foldedQuery) {
			found = append(found, ex.clone())
		}
	}
	return found
}

// WeeklyProgress groups the entries by calendar week, newest week first.
// Weeks without entries are not included.
func (a *Analyzer) WeeklyProgress(exercises []Exercise) []WeeklyProgress {
	weekKey2progress := make(map[int64]*WeeklyProgress)
	for _, ex := range exercises {
		weekStart := a.calendar.StartOfWeek(ex.Date)
		key := weekStart.Unix()
		progress, ok := weekKey2progress[key]
		if !ok {
			progress = &WeeklyProgress{
				ID:        weeklyProgressID(weekStart),
				WeekStart: weekStart,
			}
			weekKey2progress[key] = progress
		}
		progress.TotalWorkouts++
		progress.TotalSets += len(ex.Sets)
		progress.TotalVolume += ex.Volume()
	}

	weekly := make([]WeeklyProgress, 0, len(weekKey2progress))
	for _, progress := range weekKey2progress {
		weekly = append(weekly, *progress)
	}
	sort.Slice(weekly, func(i, j int) bool {
		return weekly[i].WeekStart.After(weekly[j].WeekStart)
	})
	return weekly
}

// Recent returns up to limit newest entries.
func (a *Analyzer) Recent(exercises []Exercise, limit int) []Exercise {
	if limit <= 0 {
		return []Exercise{}
	}
	recent := cloneExercises(exercises)
	sortByDateDesc(recent)
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

func (a *Analyzer) Summary(exercises []Exercise) Summary {
	var summary Summary
	names := make(map[string]struct{})
	for _, ex := range exercises {
		summary.TotalWorkouts++
		summary.TotalSets += len(ex.Sets)
		summary.TotalReps += ex.TotalReps()
		summary.TotalVolume += ex.Volume()
		names[fold(ex.Name)] = struct{}{}

		if summary.FirstWorkoutAt.IsZero() || ex.Date.Before(summary.FirstWorkoutAt) {
			summary.FirstWorkoutAt = ex.Date
		}
		if summary.LatestWorkoutAt.IsZero() || ex.Date.After(summary.LatestWorkoutAt) {
			summary.LatestWorkoutAt = ex.Date
		}
	}
	summary.DistinctNames = len(names)
	return summary
}

func sortByDateDesc(exercises []Exercise) {
	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].Date.After(exercises[j].Date)
	})
}

// lower and fold build a new caser per call, a caser is not safe for concurrent use.
// lower keeps ß distinct from ss, fold does not.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func foldEqual(a, b string) bool {
	return fold(a) == fold(b)
}
