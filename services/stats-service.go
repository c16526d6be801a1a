package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Rafael-TF/EffiDo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatsService derives productivity statistics from a user's task set and
// keeps the denormalized snapshot on the user document up to date.
type StatsService struct {
	userCollection *mongo.Collection
	taskCollection *mongo.Collection
}

func NewStatsService(userCollection, taskCollection *mongo.Collection) *StatsService {
	return &StatsService{
		userCollection: userCollection,
		taskCollection: taskCollection,
	}
}

// CalculateStats computes the full statistics snapshot for a task set.
// It is a pure function of its input: no I/O, no clock access (the caller
// supplies now), same input always gives the same output.
func CalculateStats(tasks []models.Task, now time.Time) models.UserStats {
	totalTasks := len(tasks)

	completedTasks := 0
	for _, task := range tasks {
		if task.Status == models.StatusCompleted {
			completedTasks++
		}
	}

	stats := models.UserStats{
		TotalTasks:         totalTasks,
		CompletedTasks:     completedTasks,
		WeeklyProductivity: calculateWeeklyProductivity(tasks, now),
	}

	// Guard the zero-task case so rates never divide by zero.
	if totalTasks > 0 {
		ratio := float64(completedTasks) / float64(totalTasks) * 100
		stats.TaskCompletionRate = math.Round(ratio*100) / 100
		stats.ProductivityScore = int(math.Round(ratio))
	}

	stats.StreakDays = calculateStreakDays(stats.WeeklyProductivity)

	return stats
}

// calculateWeeklyProductivity builds the 7-entry daily series from 6 days
// ago through today. A day's score counts every task created that day, plus
// one more for each of those tasks that is completed, so a same-day
// completion counts twice.
func calculateWeeklyProductivity(tasks []models.Task, now time.Time) []models.DailyScore {
	week := make([]models.DailyScore, 0, 7)

	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		endOfDay := startOfDay.AddDate(0, 0, 1)

		score := 0
		for _, task := range tasks {
			if task.CreatedAt.Before(startOfDay) || !task.CreatedAt.Before(endOfDay) {
				continue
			}
			score++
			if task.Status == models.StatusCompleted {
				score++
			}
		}

		week = append(week, models.DailyScore{
			Day:   day.Weekday().String()[:3],
			Score: score,
		})
	}

	return week
}

// calculateStreakDays counts the run of consecutive days with nonzero score,
// scanning from today backward. A zero score today does not end the run (the
// day is not over yet); a zero on any earlier day does.
func calculateStreakDays(week []models.DailyScore) int {
	streak := 0
	for i := 0; i < len(week); i++ {
		score := week[len(week)-1-i].Score
		if score > 0 {
			streak++
		} else if i == 0 {
			continue
		} else {
			break
		}
	}
	return streak
}

// tasksForUser reads the user's complete task set. Statistics are always
// recomputed from the full set, never maintained incrementally.
func (s *StatsService) tasksForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.taskCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	return tasks, nil
}

// RefreshUserStats recomputes the snapshot from the user's current task set
// and writes it back onto the user document in a single update. Concurrent
// refreshes for the same user race benignly: the last write wins and each
// write is internally consistent.
func (s *StatsService) RefreshUserStats(ctx context.Context, userID primitive.ObjectID) (models.UserStats, error) {
	tasks, err := s.tasksForUser(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}

	stats := CalculateStats(tasks, time.Now())

	_, err = s.userCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": stats})
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to update user stats: %v", err)
	}

	return stats, nil
}

// GetUserStats computes the snapshot live from the current task set, so the
// stats endpoint can never return a formula different from the persisted one.
func (s *StatsService) GetUserStats(ctx context.Context, userID primitive.ObjectID) (models.UserStats, error) {
	tasks, err := s.tasksForUser(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	return CalculateStats(tasks, time.Now()), nil
}

// GetUserAchievements evaluates the badge catalog against the current task set.
func (s *StatsService) GetUserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.Achievement, error) {
	tasks, err := s.tasksForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CalculateAchievements(tasks, time.Now()), nil
}
