package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rafael-TF/EffiDo/logging"
	"github.com/Rafael-TF/EffiDo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrTaskNotFound is returned when a task id does not exist or is not owned
// by the requesting user. The two cases are deliberately indistinguishable.
var ErrTaskNotFound = errors.New("task not found")

// ErrValidation marks rejected input, so handlers can answer 400 instead
// of 500.
var ErrValidation = errors.New("validation failed")

type TaskService struct {
	taskCollection *mongo.Collection
	statsService   *StatsService
}

func NewTaskService(taskCollection *mongo.Collection, statsService *StatsService) *TaskService {
	return &TaskService{
		taskCollection: taskCollection,
		statsService:   statsService,
	}
}

// refreshStats recomputes the owner's statistics snapshot after a mutation.
// The refresh runs before the mutation's response is sent; a write-back
// failure surfaces to the caller, leaving the previously stored snapshot
// untouched.
func (s *TaskService) refreshStats(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.statsService.RefreshUserStats(ctx, userID); err != nil {
		logging.Logger.Errorf("Event ID: STATS_REFRESH_FAILED, Description: Failed to refresh stats for user %s: %v", userID.Hex(), err)
		return err
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, userID primitive.ObjectID, task models.Task) (*models.Task, error) {
	if task.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if !task.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, task.Status)
	}

	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !task.Priority.IsValid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, task.Priority)
	}

	now := time.Now()
	task.ID = primitive.NewObjectID()
	task.UserID = userID
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == models.StatusCompleted {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	if _, err := s.taskCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	if err := s.refreshStats(ctx, userID); err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskService) GetTasks(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.taskCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	return tasks, nil
}

// GetPrioritizedTasks returns the user's tasks sorted by computed urgency.
func (s *TaskService) GetPrioritizedTasks(ctx context.Context, userID primitive.ObjectID) ([]models.PrioritizedTask, error) {
	tasks, err := s.GetTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return PrioritizeTasks(tasks, time.Now()), nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.taskCollection.FindOne(ctx, bson.M{"_id": taskID, "userId": userID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}
	return &task, nil
}

type TaskUpdate struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Difficulty  int                 `json:"difficulty"`
	DueDate     time.Time           `json:"dueDate"`
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID primitive.ObjectID, update TaskUpdate) (*models.Task, error) {
	if update.Title == "" || update.Priority == "" || update.Status == "" || update.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: title, priority, status and due date are required", ErrValidation)
	}
	if !update.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, update.Status)
	}
	if !update.Priority.IsValid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, update.Priority)
	}

	var existing models.Task
	if err := s.taskCollection.FindOne(ctx, bson.M{"_id": taskID, "userId": userID}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}

	now := time.Now()
	set := bson.M{
		"title":       update.Title,
		"description": update.Description,
		"status":      update.Status,
		"priority":    update.Priority,
		"difficulty":  update.Difficulty,
		"dueDate":     update.DueDate,
		"updatedAt":   now,
	}

	// Track the completion timestamp across status transitions.
	unset := bson.M{}
	if update.Status == models.StatusCompleted && existing.Status != models.StatusCompleted {
		set["completedAt"] = now
	} else if update.Status != models.StatusCompleted && existing.Status == models.StatusCompleted {
		unset["completedAt"] = ""
	}

	change := bson.M{"$set": set}
	if len(unset) > 0 {
		change["$unset"] = unset
	}

	result, err := s.taskCollection.UpdateOne(ctx, bson.M{"_id": taskID, "userId": userID}, change)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrTaskNotFound
	}

	var updated models.Task
	if err := s.taskCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to retrieve updated task: %v", err)
	}

	if err := s.refreshStats(ctx, userID); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID primitive.ObjectID) error {
	result, err := s.taskCollection.DeleteOne(ctx, bson.M{"_id": taskID, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrTaskNotFound
	}

	return s.refreshStats(ctx, userID)
}
