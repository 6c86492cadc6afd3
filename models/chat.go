package models

import "time"

type Chat struct {
	ChatID    string    `bson:"chat_id" json:"chat_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Message struct {
	MessageID string    `bson:"message_id" json:"message_id"`
	ChatID    string    `bson:"chat_id" json:"chat_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Role      string    `bson:"role" json:"role"` // "user" or "assistant"
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type ChatWithMessages struct {
	Chat     Chat      `json:"chat"`
	Messages []Message `json:"messages"`
}

type CreateChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type CreateMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,min=1,max=8000"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}
