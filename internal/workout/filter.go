package workout

import "fmt"

type DateFilter string

const (
	FilterAll       DateFilter = "all"
	FilterToday     DateFilter = "today"
	FilterThisWeek  DateFilter = "this_week"
	FilterThisMonth DateFilter = "this_month"
	FilterLastMonth DateFilter = "last_month"
)

var dateFilterNames = map[DateFilter]string{
	FilterAll:       "All Time",
	FilterToday:     "Today",
	FilterThisWeek:  "This Week",
	FilterThisMonth: "This Month",
	FilterLastMonth: "Last Month",
}

// DateFilters returns all filters in the order they are offered to the user.
func DateFilters() []DateFilter {
	return []DateFilter{
		FilterAll,
		FilterToday,
		FilterThisWeek,
		FilterThisMonth,
		FilterLastMonth,
	}
}

func (f DateFilter) String() string {
	return string(f)
}

func (f DateFilter) DisplayName() string {
	return dateFilterNames[f]
}

func (f DateFilter) IsValid() bool {
	_, ok := dateFilterNames[f]
	return ok
}

// ParseDateFilter accepts the filter value; an empty string means FilterAll.
func ParseDateFilter(s string) (DateFilter, error) {
	if s == "" {
		return FilterAll, nil
	}
	f := DateFilter(s)
	if !f.IsValid() {
		return "", fmt.Errorf("unknown date filter [%s]", s)
	}
	return f, nil
}
