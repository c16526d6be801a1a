package services

import (
	"testing"

	"github.com/Rafael-TF/EffiDo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func achievementNames(achievements []models.Achievement) []string {
	names := make([]string, 0, len(achievements))
	for _, a := range achievements {
		names = append(names, a.Name)
	}
	return names
}

func completedTasks(n int) []models.Task {
	tasks := make([]models.Task, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, taskCreatedAt(daysAgo(10), models.StatusCompleted))
	}
	return tasks
}

func TestAchievementsEmptyTaskSet(t *testing.T) {
	achievements := CalculateAchievements(nil, testNow)
	assert.Empty(t, achievements)
}

func TestAchievementsFirstCompletedTask(t *testing.T) {
	achievements := CalculateAchievements(completedTasks(1), testNow)

	names := achievementNames(achievements)
	assert.Contains(t, names, "First task completed")
	assert.NotContains(t, names, "100 tasks completed")
}

func TestAchievementsPendingTasksEarnNothing(t *testing.T) {
	tasks := []models.Task{
		taskCreatedAt(daysAgo(10), models.StatusPending),
		taskCreatedAt(daysAgo(10), models.StatusInProgress),
	}

	achievements := CalculateAchievements(tasks, testNow)
	assert.Empty(t, achievements)
}

func TestAchievementsHundredCompletedBoundary(t *testing.T) {
	names := achievementNames(CalculateAchievements(completedTasks(99), testNow))
	assert.NotContains(t, names, "100 tasks completed")

	names = achievementNames(CalculateAchievements(completedTasks(100), testNow))
	assert.Contains(t, names, "100 tasks completed")
}

func TestAchievementsSevenDayStreak(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, taskCreatedAt(daysAgo(i), models.StatusPending))
	}

	names := achievementNames(CalculateAchievements(tasks, testNow))
	assert.Contains(t, names, "7-day streak")

	// Six active days are not enough.
	names = achievementNames(CalculateAchievements(tasks[:6], testNow))
	assert.NotContains(t, names, "7-day streak")
}

func TestAchievementsMonotonicUnderAddedCompletions(t *testing.T) {
	base := completedTasks(1)
	baseNames := achievementNames(CalculateAchievements(base, testNow))
	require.Contains(t, baseNames, "First task completed")

	superset := append(completedTasks(50), base...)
	supersetNames := achievementNames(CalculateAchievements(superset, testNow))

	for _, name := range baseNames {
		assert.Contains(t, supersetNames, name)
	}
}

func TestAchievementsCatalogShape(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, taskCreatedAt(daysAgo(i), models.StatusCompleted))
	}
	tasks = append(tasks, completedTasks(100)...)

	achievements := CalculateAchievements(tasks, testNow)
	require.Len(t, achievements, 3)

	for _, a := range achievements {
		assert.NotZero(t, a.ID)
		assert.NotEmpty(t, a.Name)
		assert.NotEmpty(t, a.Icon)
	}
}
