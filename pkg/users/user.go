package users

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the model for a registered account
type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	Name           string             `json:"name" bson:"name" validate:"required"`
	Email          string             `json:"email" bson:"email" validate:"required,email"`
	Password       string             `json:"-" bson:"password" validate:"required"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt" validate:"isdefault"`
	LastModifiedAt time.Time          `json:"lastModifiedAt" bson:"lastModifiedAt" validate:"isdefault"`

	EmailVerified          bool   `json:"emailVerified" bson:"emailVerified"`
	EmailVerificationToken string `json:"-" bson:"emailVerificationToken,omitempty"`
}

// UserLogin is the payload for a login request
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
