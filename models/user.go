package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID       string             `bson:"user_id" json:"user_id"`
	UserName     string             `bson:"user_name" json:"user_name"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	UserID       string `json:"user_id" binding:"required,min=1,max=64"`
	UserName     string `json:"user_name" binding:"required,min=1,max=100"`
	UserPassword string `json:"user_password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	UserPassword string `json:"user_password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
}
