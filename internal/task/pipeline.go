package task

import (
	"sort"
	"strings"
)

type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterIncomplete
	FilterDateRange
)

func (f Filter) String() string {
	switch f {
	case FilterCompleted:
		return "completed"
	case FilterIncomplete:
		return "incomplete"
	case FilterDateRange:
		return "date-range"
	default:
		return "all"
	}
}

type Sort int

const (
	SortNewest Sort = iota
	SortOldest
	SortDueAsc
	SortDueDesc
)

func (s Sort) String() string {
	switch s {
	case SortOldest:
		return "oldest"
	case SortDueAsc:
		return "due ↑"
	case SortDueDesc:
		return "due ↓"
	default:
		return "newest"
	}
}

// Query is the user-selected view over the canonical collection.
type Query struct {
	Filter     Filter
	RangeStart string // YYYY-MM-DD, date-range filter only
	RangeEnd   string
	Search     string
	Sort       Sort
}

// Visible derives the display list: filter, then search, then sort. It never
// mutates its input and holds no state.
func Visible(tasks []Task, q Query) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if passesFilter(t, q) && matchesSearch(t, q.Search) {
			out = append(out, t)
		}
	}
	sortTasks(out, q.Sort)
	return out
}

func passesFilter(t Task, q Query) bool {
	switch q.Filter {
	case FilterCompleted:
		return t.Completed
	case FilterIncomplete:
		return !t.Completed
	case FilterDateRange:
		// A half-configured range filters nothing, matching the behavior of
		// leaving the range inputs empty.
		if q.RangeStart == "" || q.RangeEnd == "" {
			return true
		}
		if t.DueDate == "" {
			return false
		}
		due, ok := parseDate(t.DueDate)
		if !ok {
			return false
		}
		start, ok := parseDate(q.RangeStart)
		if !ok {
			return false
		}
		end, ok := parseDate(q.RangeEnd)
		if !ok {
			return false
		}
		return !due.Before(start) && !due.After(end)
	default:
		return true
	}
}

func matchesSearch(t Task, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), q)
}

func sortTasks(tasks []Task, s Sort) {
	switch s {
	case SortOldest:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		})
	case SortDueAsc:
		sort.SliceStable(tasks, func(i, j int) bool {
			return dueLess(tasks[i], tasks[j], false)
		})
	case SortDueDesc:
		sort.SliceStable(tasks, func(i, j int) bool {
			return dueLess(tasks[i], tasks[j], true)
		})
	default: // SortNewest
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
}

// dueLess orders by due date; tasks without one go to the end of the list
// under both directions. YYYY-MM-DD strings compare correctly as text.
func dueLess(a, b Task, desc bool) bool {
	if a.DueDate == "" {
		return false
	}
	if b.DueDate == "" {
		return true
	}
	if desc {
		return a.DueDate > b.DueDate
	}
	return a.DueDate < b.DueDate
}
