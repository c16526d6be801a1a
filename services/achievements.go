package services

import (
	"time"

	"github.com/Rafael-TF/EffiDo/models"
)

var achievementCatalog = struct {
	firstCompleted models.Achievement
	weekStreak     models.Achievement
	hundredDone    models.Achievement
}{
	firstCompleted: models.Achievement{ID: 1, Name: "First task completed", Icon: "🏆"},
	weekStreak:     models.Achievement{ID: 2, Name: "7-day streak", Icon: "🔥"},
	hundredDone:    models.Achievement{ID: 3, Name: "100 tasks completed", Icon: "💯"},
}

// CalculateAchievements returns every badge the task set currently earns.
// Badges are independent and re-derived on each call; there is no unlock
// ledger, so adding completed tasks can only add badges.
func CalculateAchievements(tasks []models.Task, now time.Time) []models.Achievement {
	achievements := []models.Achievement{}

	completed := 0
	for _, task := range tasks {
		if task.Status == models.StatusCompleted {
			completed++
		}
	}

	if completed >= 1 {
		achievements = append(achievements, achievementCatalog.firstCompleted)
	}

	stats := CalculateStats(tasks, now)
	if stats.StreakDays >= 7 {
		achievements = append(achievements, achievementCatalog.weekStreak)
	}

	if completed >= 100 {
		achievements = append(achievements, achievementCatalog.hundredDone)
	}

	return achievements
}
