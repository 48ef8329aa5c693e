package task

import "time"

// DateLayout is the calendar-date format used for due dates. Due dates carry
// no time component; the server stores and returns them verbatim.
const DateLayout = "2006-01-02"

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"is_completed"`
	DueDate     string    `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Owner       string    `json:"owner"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Draft is the client-side input for creating a task. The server assigns
// id, owner and both timestamps.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"is_completed"`
	DueDate     string `json:"due_date,omitempty"`
}

// ValidDate reports whether v is a well-formed YYYY-MM-DD calendar date.
func ValidDate(v string) bool {
	_, err := time.Parse(DateLayout, v)
	return err == nil
}

func parseDate(v string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
