package analytics

import (
	"fmt"
	"time"

	"github.com/smartlaw/crm-backend/pkg/models"
)

// GenerateTasks builds the four biweekly campaign-review reminders starting
// from now. Tasks are ephemeral: rebuilt on every request, never stored.
func GenerateTasks(now time.Time) []models.Task {
	tasks := make([]models.Task, 0, 4)
	for i := 0; i < 4; i++ {
		due := now.AddDate(0, 0, i*15)
		tasks = append(tasks, models.Task{
			ID:          fmt.Sprintf("task-%d", i),
			Description: "Biweekly review of campaigns and statistics",
			DueDate:     due.Format("2006-01-02"),
		})
	}
	return tasks
}
