package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// ValidRole reports whether r is one of the known account roles.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin || r == RoleModerator
}

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Surname          string             `bson:"surname" json:"surname"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password" json:"-"`
	Role             string             `bson:"role" json:"role"`
	IsVerified       bool               `bson:"isVerified" json:"isVerified"`
	VerificationCode string             `bson:"verificationCode,omitempty" json:"-"`
	Address          string             `bson:"address,omitempty" json:"address,omitempty"`
	City             string             `bson:"city,omitempty" json:"city,omitempty"`
	Country          string             `bson:"country,omitempty" json:"country,omitempty"`
	Phone            string             `bson:"phone,omitempty" json:"phone,omitempty"`
	ResetToken       string             `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpiry *time.Time         `bson:"resetTokenExpiry,omitempty" json:"-"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
