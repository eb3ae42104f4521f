package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the stored account record. The same struct is persisted to MongoDB
// (bson tags) and PostgreSQL (gorm tags).
type User struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email" gorm:"uniqueIndex;not null"`
	Password     string    `json:"-" bson:"password"` // bcrypt hash, never serialized
	Bio          string    `json:"bio" bson:"bio"`
	ProfileImage string    `json:"profileImage" bson:"profile_image"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// PublicUser is a User without its password hash. Every endpoint that returns
// a user returns this shape.
type PublicUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserCompact is the projection used when expanding author and commenter
// references.
type UserCompact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Bio:          u.Bio,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}

// PublicUsers converts a slice of stored users.
func PublicUsers(users []User) []PublicUser {
	out := make([]PublicUser, len(users))
	for i := range users {
		out[i] = users[i].ToPublic()
	}
	return out
}

// RegisterRequest defines the request body for local registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Bio      string `json:"bio" validate:"omitempty,max=500"`
}

// LoginRequest defines the request body for local login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest is bound from JSON or multipart form. Empty fields keep
// their stored value.
type UpdateProfileRequest struct {
	Name string `json:"name" form:"name" validate:"omitempty,max=100"`
	Bio  string `json:"bio" form:"bio" validate:"omitempty,max=500"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
