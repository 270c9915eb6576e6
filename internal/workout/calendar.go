package workout

import "time"

// Calendar fixes the week and month boundaries used by filters and rollups.
// A nil Location means UTC.
type Calendar struct {
	FirstWeekday time.Weekday
	Location     *time.Location
}

// DefaultCalendar is the ISO-8601 one: weeks start on Monday, in UTC.
func DefaultCalendar() Calendar {
	return Calendar{
		FirstWeekday: time.Monday,
		Location:     time.UTC,
	}
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Calendar) In(t time.Time) time.Time {
	return t.In(c.location())
}

func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = c.In(t)
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, c.location())
}

func (c Calendar) StartOfWeek(t time.Time) time.Time {
	dayStart := c.StartOfDay(t)
	offset := (int(dayStart.Weekday()) - int(c.FirstWeekday) + 7) % 7
	year, month, day := dayStart.Date()
	return time.Date(year, month, day-offset, 0, 0, 0, 0, c.location())
}

func (c Calendar) StartOfMonth(t time.Time) time.Time {
	t = c.In(t)
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, c.location())
}

// MonthRange returns the half-open [start, nextStart) interval of the month containing t.
func (c Calendar) MonthRange(t time.Time) (time.Time, time.Time) {
	start := c.StartOfMonth(t)
	year, month, _ := start.Date()
	return start, time.Date(year, month+1, 1, 0, 0, 0, 0, c.location())
}

// PreviousMonthRange returns [start of previous month, start of t's month).
func (c Calendar) PreviousMonthRange(t time.Time) (time.Time, time.Time) {
	end := c.StartOfMonth(t)
	year, month, _ := end.Date()
	return time.Date(year, month-1, 1, 0, 0, 0, 0, c.location()), end
}

func (c Calendar) SameDay(a, b time.Time) bool {
	return c.StartOfDay(a).Equal(c.StartOfDay(b))
}
