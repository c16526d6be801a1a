package services

import (
	"testing"
	"time"

	"github.com/Rafael-TF/EffiDo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dueTask(due time.Time, priority models.TaskPriority, difficulty int) models.Task {
	return models.Task{
		Title:      "task",
		Status:     models.StatusPending,
		Priority:   priority,
		Difficulty: difficulty,
		DueDate:    due,
		CreatedAt:  testNow,
	}
}

func TestCalculatePriorityScoreDueDateBands(t *testing.T) {
	dueTomorrow := CalculatePriorityScore(dueTask(testNow.Add(20*time.Hour), models.PriorityLow, 0), testNow)
	dueInThree := CalculatePriorityScore(dueTask(testNow.AddDate(0, 0, 3), models.PriorityLow, 0), testNow)
	dueInSeven := CalculatePriorityScore(dueTask(testNow.AddDate(0, 0, 7), models.PriorityLow, 0), testNow)
	dueInMonth := CalculatePriorityScore(dueTask(testNow.AddDate(0, 1, 0), models.PriorityLow, 0), testNow)

	assert.Equal(t, 53, dueTomorrow)
	assert.Equal(t, 33, dueInThree)
	assert.Equal(t, 13, dueInSeven)
	assert.Equal(t, 3, dueInMonth)
}

func TestCalculatePriorityScorePriorityWeight(t *testing.T) {
	due := testNow.AddDate(0, 1, 0)

	low := CalculatePriorityScore(dueTask(due, models.PriorityLow, 0), testNow)
	medium := CalculatePriorityScore(dueTask(due, models.PriorityMedium, 0), testNow)
	high := CalculatePriorityScore(dueTask(due, models.PriorityHigh, 0), testNow)

	assert.Equal(t, 3, low)
	assert.Equal(t, 6, medium)
	assert.Equal(t, 9, high)
}

func TestCalculatePriorityScoreDifficultyWeight(t *testing.T) {
	due := testNow.AddDate(0, 1, 0)

	easy := CalculatePriorityScore(dueTask(due, models.PriorityLow, 1), testNow)
	hard := CalculatePriorityScore(dueTask(due, models.PriorityLow, 4), testNow)

	assert.Equal(t, 8, easy)
	assert.Equal(t, 23, hard)
}

func TestCalculatePriorityScoreNoDueDate(t *testing.T) {
	task := models.Task{
		Title:    "task",
		Status:   models.StatusPending,
		Priority: models.PriorityHigh,
	}

	assert.Equal(t, 9, CalculatePriorityScore(task, testNow))
}

func TestPrioritizeTasksOrdering(t *testing.T) {
	urgent := dueTask(testNow.Add(12*time.Hour), models.PriorityHigh, 2)
	soon := dueTask(testNow.AddDate(0, 0, 3), models.PriorityMedium, 0)
	someday := dueTask(testNow.AddDate(0, 2, 0), models.PriorityLow, 0)

	prioritized := PrioritizeTasks([]models.Task{someday, soon, urgent}, testNow)

	require.Len(t, prioritized, 3)
	assert.Equal(t, urgent.DueDate, prioritized[0].DueDate)
	assert.Equal(t, soon.DueDate, prioritized[1].DueDate)
	assert.Equal(t, someday.DueDate, prioritized[2].DueDate)

	for i := 1; i < len(prioritized); i++ {
		assert.GreaterOrEqual(t, prioritized[i-1].PriorityScore, prioritized[i].PriorityScore)
	}
}

func TestPrioritizeTasksStableForEqualScores(t *testing.T) {
	due := testNow.AddDate(0, 1, 0)
	first := dueTask(due, models.PriorityMedium, 0)
	first.Title = "first"
	second := dueTask(due, models.PriorityMedium, 0)
	second.Title = "second"

	prioritized := PrioritizeTasks([]models.Task{first, second}, testNow)

	require.Len(t, prioritized, 2)
	assert.Equal(t, "first", prioritized[0].Title)
	assert.Equal(t, "second", prioritized[1].Title)
}

func TestPrioritizeTasksEmptyInput(t *testing.T) {
	prioritized := PrioritizeTasks(nil, testNow)
	assert.Empty(t, prioritized)
}
