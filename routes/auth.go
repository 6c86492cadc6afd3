package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/models"
	"rag-chatbot-backend/utils"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client) {
	db := mongoClient.Database(cfg.DBName)
	usersCollection := db.Collection("users")

	timeout := time.Duration(cfg.RemoteTimeoutSecs) * time.Second

	// Register endpoint
	router.POST("/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		// Check if the user id is taken
		var existingUser models.User
		if err := usersCollection.FindOne(ctx, bson.M{"user_id": req.UserID}).Decode(&existingUser); err == nil {
			utils.RespondWithError(c, http.StatusBadRequest, "user_exists", "User already exists", nil)
			return
		}

		hashedPassword, err := utils.HashPassword(req.UserPassword, cfg.BcryptCost)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to process password", nil)
			return
		}

		user := models.User{
			UserID:       req.UserID,
			UserName:     req.UserName,
			PasswordHash: hashedPassword,
			CreatedAt:    time.Now().UTC(),
		}

		if _, err := usersCollection.InsertOne(ctx, user); err != nil {
			// The unique index catches the check-then-insert race.
			if mongo.IsDuplicateKeyError(err) {
				utils.RespondWithError(c, http.StatusBadRequest, "user_exists", "User already exists", nil)
				return
			}
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		c.JSON(http.StatusCreated, user)
	})

	// Login endpoint issuing the bearer token
	router.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		var user models.User
		if err := usersCollection.FindOne(ctx, bson.M{"user_id": req.UserID}).Decode(&user); err != nil {
			utils.RespondWithUnauthorized(c, "Invalid user id or password")
			return
		}

		if !utils.CheckPassword(req.UserPassword, user.PasswordHash) {
			utils.RespondWithUnauthorized(c, "Invalid user id or password")
			return
		}

		duration, err := time.ParseDuration(cfg.JWTExpiresIn)
		if err != nil {
			duration = 24 * time.Hour
		}
		token, err := utils.GenerateJWT(user.UserID, cfg.SecretKey, cfg.Algorithm, duration)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(duration),
			UserID:    user.UserID,
			UserName:  user.UserName,
		})
	})
}
