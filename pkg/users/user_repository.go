package users

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepositoryInterface is the interface for a UserRepository
type UserRepositoryInterface interface {
	Add(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, user *User) error
	Remove(ctx context.Context, id string) error
}

// UserRepository does everything related to user storing
type UserRepository struct {
	DB     *mongo.Collection
	Logger logger.Interface
}

// Add adds a user
func (s UserRepository) Add(ctx context.Context, user *User) error {
	user.CreatedAt = time.Now()
	user.LastModifiedAt = time.Now()
	user.ID = primitive.NewObjectID()
	_, err := s.DB.InsertOne(ctx, user)
	return err
}

// FindByID finds a user by ID
func (s UserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var u = User{}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := s.DB.FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	err = result.Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail finds a user by Email
func (s UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u = User{}

	result := s.DB.FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	err := result.Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByVerificationToken finds a user by its email verification token
func (s UserRepository) FindByVerificationToken(ctx context.Context, token string) (*User, error) {
	var u = User{}

	result := s.DB.FindOne(ctx, bson.M{"emailVerificationToken": token})
	if result.Err() != nil {
		return nil, result.Err()
	}

	err := result.Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update updates a user
func (s UserRepository) Update(ctx context.Context, user *User) error {
	user.LastModifiedAt = time.Now()

	result, err := s.DB.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": user})
	if err != nil {
		return err
	}

	if result.MatchedCount != 1 {
		return errors.Errorf("updated count for user %s != 1", user.ID.Hex())
	}

	return nil
}

// Remove deletes a user
func (s UserRepository) Remove(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := s.DB.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount != 1 {
		return errors.Errorf("no user %s to delete", id)
	}

	return nil
}
