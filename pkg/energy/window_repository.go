package energy

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

// WindowRepositoryInterface is the interface for a WindowRepository
type WindowRepositoryInterface interface {
	Add(ctx context.Context, window *Window) error
	FindByID(ctx context.Context, windowID string, userID string) (*Window, error)
	FindAll(ctx context.Context, userID string) ([]Window, error)
	Update(ctx context.Context, window *Window) error
	Remove(ctx context.Context, windowID string, userID string) error
}

// WindowRepository does everything related to storing energy windows
type WindowRepository struct {
	DB     *mongo.Collection
	Logger logger.Interface
}

// Add adds a window
func (s WindowRepository) Add(ctx context.Context, window *Window) error {
	window.CreatedAt = time.Now()
	window.LastModifiedAt = time.Now()
	window.ID = primitive.NewObjectID()
	_, err := s.DB.InsertOne(ctx, window)
	return err
}

// FindByID finds a single window of a user
func (s WindowRepository) FindByID(ctx context.Context, windowID string, userID string) (*Window, error) {
	var w = Window{}

	windowObjectID, err := primitive.ObjectIDFromHex(windowID)
	if err != nil {
		return nil, err
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	result := s.DB.FindOne(ctx, bson.M{"_id": windowObjectID, "userId": userObjectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	err = result.Decode(&w)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// FindAll finds all windows of a user, sorted by day of week and start time
func (s WindowRepository) FindAll(ctx context.Context, userID string) ([]Window, error) {
	var windows []Window

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "dayOfWeek", Value: 1}, {Key: "timeStart", Value: 1}})

	cursor, err := s.DB.Find(ctx, bson.M{"userId": userObjectID}, findOptions)
	if err != nil {
		return nil, err
	}

	err = cursor.All(ctx, &windows)
	if err != nil {
		return nil, err
	}

	return windows, nil
}

// Update updates a window
func (s WindowRepository) Update(ctx context.Context, window *Window) error {
	window.LastModifiedAt = time.Now()

	result, err := s.DB.UpdateOne(ctx, bson.M{"_id": window.ID, "userId": window.UserID}, bson.M{"$set": window})
	if err != nil {
		return err
	}

	if result.MatchedCount != 1 {
		return errors.Errorf("updated count for window %s != 1", window.ID.Hex())
	}

	return nil
}

// Remove deletes a window of a user
func (s WindowRepository) Remove(ctx context.Context, windowID string, userID string) error {
	windowObjectID, err := primitive.ObjectIDFromHex(windowID)
	if err != nil {
		return err
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	result, err := s.DB.DeleteOne(ctx, bson.M{"_id": windowObjectID, "userId": userObjectID})
	if err != nil {
		return err
	}

	if result.DeletedCount != 1 {
		return errors.Errorf("no window %s to delete", windowID)
	}

	return nil
}
