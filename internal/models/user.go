package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAgent  = "agent"
	RoleAdmin  = "admin"
)

const DefaultProfilePhoto = "default-profile.jpg"

// User represents an account in the listing marketplace.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name" validate:"required,max=50"`
	Email          string             `bson:"email" json:"email" validate:"required,email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Mobile         string             `bson:"mobile" json:"mobile" validate:"required,len=10,numeric"`
	Role           string             `bson:"role" json:"role" validate:"required,oneof=buyer seller agent admin"`
	ProfilePhoto   string             `bson:"profile_photo" json:"profilePhoto"`
	Verified       bool               `bson:"verified" json:"verified"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the subset of a user that is safe to embed in other resources.
type PublicUser struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email,omitempty"`
	Mobile       string             `json:"mobile,omitempty"`
	Role         string             `json:"role,omitempty"`
	ProfilePhoto string             `json:"profilePhoto,omitempty"`
	Verified     bool               `json:"verified"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Mobile:       u.Mobile,
		Role:         u.Role,
		ProfilePhoto: u.ProfilePhoto,
		Verified:     u.Verified,
	}
}

// Summary is the name/avatar projection used when populating conversations.
func (u *User) Summary() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, ProfilePhoto: u.ProfilePhoto}
}

func IsValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSeller, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// CanList reports whether the role is allowed to publish properties.
func CanList(role string) bool {
	return role == RoleSeller || role == RoleAgent || role == RoleAdmin
}
