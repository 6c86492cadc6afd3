package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rag-chatbot-backend/internal/ai"
	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/middleware"
	"rag-chatbot-backend/models"
	"rag-chatbot-backend/services"
	"rag-chatbot-backend/utils"
)

func SetupChatRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client,
	retrieval *services.RetrievalService, gemini *ai.GeminiClient, authMiddleware *middleware.AuthMiddleware) {

	db := mongoClient.Database(cfg.DBName)
	chatsCollection := db.Collection("chats")
	messagesCollection := db.Collection("messages")

	timeout := time.Duration(cfg.RemoteTimeoutSecs) * time.Second

	// RAG chat: retrieve the nearest passages, then condition the chat
	// model's answer on them.
	router.POST("/send_message", func(c *gin.Context) {
		var req models.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		snippets, err := retrieval.Retrieve(c.Request.Context(), req.Message, cfg.RetrievalTopK)
		if err != nil {
			logger.Error("retrieval failed", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		contents := make([]string, 0, len(snippets))
		for _, s := range snippets {
			contents = append(contents, s.Content)
		}

		reply, _, err := gemini.Answer(c.Request.Context(), req.Message, contents)
		if err != nil {
			logger.Error("answer synthesis failed", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": reply,
			"content": snippets,
		})
	})

	chats := router.Group("/chats")
	chats.Use(authMiddleware.RequireAuth())

	// Create a chat thread for the caller.
	chats.POST("", func(c *gin.Context) {
		var req models.CreateChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if middleware.GetUserID(c) != req.UserID {
			utils.RespondWithForbidden(c, "Not authorized to create a chat for this user")
			return
		}

		chat := models.Chat{
			ChatID:    primitive.NewObjectID().Hex(),
			UserID:    req.UserID,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		if _, err := chatsCollection.InsertOne(ctx, chat); err != nil {
			utils.RespondWithInternalError(c, "Failed to create chat", nil)
			return
		}

		c.JSON(http.StatusOK, chat)
	})

	// List the caller's chats. The path parameter is named :id because gin
	// requires a single wildcard name at this position; it is a user id
	// here and a chat id on the nested routes.
	chats.GET("/:id", func(c *gin.Context) {
		userID := c.Param("id")
		if middleware.GetUserID(c) != userID {
			utils.RespondWithForbidden(c, "Not authorized to access chats for this user")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		cursor, err := chatsCollection.Find(ctx, bson.M{"user_id": userID})
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list chats", nil)
			return
		}

		chatList := []models.Chat{}
		if err := cursor.All(ctx, &chatList); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode chats", nil)
			return
		}
		c.JSON(http.StatusOK, chatList)
	})

	// Append a message to a chat the caller owns.
	chats.POST("/:id/messages", func(c *gin.Context) {
		chatID := c.Param("id")

		var req models.CreateMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if middleware.GetUserID(c) != req.UserID {
			utils.RespondWithForbidden(c, "Not authorized to add a message to this chat")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		var chat models.Chat
		if err := chatsCollection.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&chat); err != nil {
			utils.RespondWithNotFound(c, "Chat not found")
			return
		}

		message := models.Message{
			MessageID: primitive.NewObjectID().Hex(),
			ChatID:    chatID,
			UserID:    req.UserID,
			Role:      req.Role,
			Content:   req.Content,
			Timestamp: time.Now().UTC(),
		}

		if _, err := messagesCollection.InsertOne(ctx, message); err != nil {
			utils.RespondWithInternalError(c, "Failed to store message", nil)
			return
		}

		// Bump the thread's updated_at on mutation.
		_, err := chatsCollection.UpdateOne(ctx,
			bson.M{"chat_id": chatID},
			bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
		if err != nil {
			logger.Warn("failed to bump chat timestamp", "chat_id", chatID, "error", err)
		}

		c.JSON(http.StatusOK, message)
	})

	// List a chat's messages.
	chats.GET("/:id/messages", func(c *gin.Context) {
		chatID := c.Param("id")

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if _, ok := loadOwnedChat(c, ctx, chatsCollection, chatID); !ok {
			return
		}

		messageList, err := loadMessages(ctx, messagesCollection, chatID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list messages", nil)
			return
		}
		c.JSON(http.StatusOK, messageList)
	})

	// Chat thread plus its messages in one response.
	chats.GET("/:id/full", func(c *gin.Context) {
		chatID := c.Param("id")

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		chat, ok := loadOwnedChat(c, ctx, chatsCollection, chatID)
		if !ok {
			return
		}

		messageList, err := loadMessages(ctx, messagesCollection, chatID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list messages", nil)
			return
		}
		c.JSON(http.StatusOK, models.ChatWithMessages{Chat: chat, Messages: messageList})
	})
}

// loadOwnedChat fetches the chat and enforces ownership, writing the 404 or
// 403 response itself when the check fails.
func loadOwnedChat(c *gin.Context, ctx context.Context, chatsCollection *mongo.Collection, chatID string) (models.Chat, bool) {
	var chat models.Chat
	if err := chatsCollection.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&chat); err != nil {
		utils.RespondWithNotFound(c, "Chat not found")
		return models.Chat{}, false
	}
	if middleware.GetUserID(c) != chat.UserID {
		utils.RespondWithForbidden(c, "Not authorized to access this chat")
		return models.Chat{}, false
	}
	return chat, true
}

func loadMessages(ctx context.Context, messagesCollection *mongo.Collection, chatID string) ([]models.Message, error) {
	cursor, err := messagesCollection.Find(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return nil, err
	}

	messageList := []models.Message{}
	if err := cursor.All(ctx, &messageList); err != nil {
		return nil, err
	}
	return messageList, nil
}
