package tasks

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepositoryInterface is the interface for a TaskRepository
type TaskRepositoryInterface interface {
	Add(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, taskID string, userID string) (*Task, error)
	FindAll(ctx context.Context, userID string) ([]Task, error)
	FindSchedulable(ctx context.Context, userID string) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, taskID string, userID string) error
	AssignWindow(ctx context.Context, taskID primitive.ObjectID, userID primitive.ObjectID, windowID *primitive.ObjectID) error
	ClearAssignments(ctx context.Context, userID string) error
	UnassignFromWindow(ctx context.Context, windowID string, userID string) error
}

// TaskRepository does everything related to storing tasks
type TaskRepository struct {
	DB     *mongo.Collection
	Logger logger.Interface
}

// Add adds a task
func (s *TaskRepository) Add(ctx context.Context, task *Task) error {
	task.CreatedAt = time.Now()
	task.LastModifiedAt = time.Now()
	task.ID = primitive.NewObjectID()
	_, err := s.DB.InsertOne(ctx, task)
	return err
}

// FindByID finds a specific task by ID
func (s *TaskRepository) FindByID(ctx context.Context, taskID string, userID string) (*Task, error) {
	var t = Task{}

	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, err
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	result := s.DB.FindOne(ctx, bson.M{"_id": taskObjectID, "userId": userObjectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	err = result.Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindAll finds all tasks of a user, newest first
func (s *TaskRepository) FindAll(ctx context.Context, userID string) ([]Task, error) {
	var tasks []Task

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.DB.Find(ctx, bson.M{"userId": userObjectID}, findOptions)
	if err != nil {
		return nil, err
	}

	err = cursor.All(ctx, &tasks)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// FindSchedulable finds the tasks of a user that a schedule run has to
// place: not done and not yet assigned to a window
func (s *TaskRepository) FindSchedulable(ctx context.Context, userID string) ([]Task, error) {
	var tasks []Task

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"userId":           userObjectID,
		"isDone":           false,
		"assignedWindowId": nil,
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := s.DB.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}

	err = cursor.All(ctx, &tasks)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update updates a task
func (s *TaskRepository) Update(ctx context.Context, task *Task) error {
	task.LastModifiedAt = time.Now()

	result, err := s.DB.UpdateOne(ctx, bson.M{"_id": task.ID, "userId": task.UserID}, bson.M{"$set": task})
	if err != nil {
		return err
	}

	if result.MatchedCount != 1 {
		return errors.Errorf("updated count for task %s != 1", task.ID.Hex())
	}

	return nil
}

// Delete deletes a task of a user
func (s *TaskRepository) Delete(ctx context.Context, taskID string, userID string) error {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return err
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	result, err := s.DB.DeleteOne(ctx, bson.M{"_id": taskObjectID, "userId": userObjectID})
	if err != nil {
		return err
	}

	if result.DeletedCount != 1 {
		return errors.Errorf("no task %s to delete", taskID)
	}

	return nil
}

// AssignWindow sets or clears the window a task is scheduled into
func (s *TaskRepository) AssignWindow(ctx context.Context, taskID primitive.ObjectID, userID primitive.ObjectID, windowID *primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"assignedWindowId": windowID,
			"lastModifiedAt":   time.Now(),
		},
	}

	result, err := s.DB.UpdateOne(ctx, bson.M{"_id": taskID, "userId": userID}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount != 1 {
		return errors.Errorf("no task %s to assign", taskID.Hex())
	}

	return nil
}

// ClearAssignments unassigns every task of a user
func (s *TaskRepository) ClearAssignments(ctx context.Context, userID string) error {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"assignedWindowId": nil,
			"lastModifiedAt":   time.Now(),
		},
	}

	_, err = s.DB.UpdateMany(ctx, bson.M{"userId": userObjectID, "assignedWindowId": bson.M{"$ne": nil}}, update)
	return err
}

// UnassignFromWindow unassigns all tasks that point at a single window.
// Used when the window itself gets deleted.
func (s *TaskRepository) UnassignFromWindow(ctx context.Context, windowID string, userID string) error {
	windowObjectID, err := primitive.ObjectIDFromHex(windowID)
	if err != nil {
		return err
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"assignedWindowId": nil,
			"lastModifiedAt":   time.Now(),
		},
	}

	_, err = s.DB.UpdateMany(ctx, bson.M{"userId": userObjectID, "assignedWindowId": windowObjectID}, update)
	return err
}
