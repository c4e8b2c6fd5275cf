package reminder

import (
	"fmt"
	"time"
)

// Candidate is a permanent list with a shopping frequency, together with
// the moment its current period started.
type Candidate struct {
	ListID        string
	ListName      string
	OwnerID       string
	FrequencyDays int
	CreatedAt     time.Time
	LastCompleted *time.Time
}

// PeriodStart is the last completion, or creation when the list was never
// completed.
func (c Candidate) PeriodStart() time.Time {
	if c.LastCompleted != nil && c.LastCompleted.After(c.CreatedAt) {
		return *c.LastCompleted
	}
	return c.CreatedAt
}

func (c Candidate) DueAt() time.Time {
	return c.PeriodStart().Add(time.Duration(c.FrequencyDays) * 24 * time.Hour)
}

func (c Candidate) Due(now time.Time) bool {
	return c.FrequencyDays > 0 && !now.Before(c.DueAt())
}

func Message(listName string) string {
	return fmt.Sprintf("Time to go shopping: %s", listName)
}
