package services

import (
	"math"
	"sort"
	"time"

	"github.com/Rafael-TF/EffiDo/models"
)

// CalculatePriorityScore weights a task by how soon it is due, how hard it
// is, and the priority the user assigned to it.
func CalculatePriorityScore(task models.Task, now time.Time) int {
	score := 0

	if !task.DueDate.IsZero() {
		daysUntilDue := daysUntilDue(task.DueDate, now)
		switch {
		case daysUntilDue <= 1:
			score += 50
		case daysUntilDue <= 3:
			score += 30
		case daysUntilDue <= 7:
			score += 10
		}
	}

	score += task.Difficulty * 5

	switch task.Priority {
	case models.PriorityLow:
		score += 3
	case models.PriorityMedium:
		score += 6
	case models.PriorityHigh:
		score += 9
	}

	return score
}

func daysUntilDue(dueDate, now time.Time) int {
	diff := dueDate.Sub(now).Hours() / 24
	return int(math.Ceil(math.Abs(diff)))
}

// PrioritizeTasks annotates each task with its priority score and returns
// them sorted most-urgent first. The sort is stable so equally scored tasks
// keep their original order.
func PrioritizeTasks(tasks []models.Task, now time.Time) []models.PrioritizedTask {
	prioritized := make([]models.PrioritizedTask, 0, len(tasks))
	for _, task := range tasks {
		prioritized = append(prioritized, models.PrioritizedTask{
			Task:          task,
			PriorityScore: CalculatePriorityScore(task, now),
		})
	}

	sort.SliceStable(prioritized, func(i, j int) bool {
		return prioritized[i].PriorityScore > prioritized[j].PriorityScore
	})

	return prioritized
}
