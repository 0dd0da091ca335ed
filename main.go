package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wachat/wachat-backend/config"
	"github.com/wachat/wachat-backend/controllers"
	"github.com/wachat/wachat-backend/middleware"
	"github.com/wachat/wachat-backend/models"
	"github.com/wachat/wachat-backend/realtime"
)

func main() {
	// Basic logging
	log.Println("Starting WhatsApp chat backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.Message{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// The hub is the in-process fan-out channel for connected clients.
	hub := realtime.NewHub()
	go hub.Run()

	// With Redis configured, events are relayed through pub/sub so every
	// instance delivers them to its own clients.
	var sink realtime.Notifier = hub
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		bridge := realtime.NewRedisBridge(rdb, hub, cfg.RedisChannel)
		go func() {
			if err := bridge.Listen(context.Background()); err != nil {
				log.Fatalf("Redis event relay stopped: %v", err)
			}
		}()
		sink = bridge
		log.Printf("Redis event relay enabled on %s (channel %s)", cfg.RedisAddr, cfg.RedisChannel)
	}

	router := setupRouter(hub, sink)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires middleware and routes. The notification sink is passed
// in explicitly so tests can substitute a recording stub.
func setupRouter(hub *realtime.Hub, sink realtime.Notifier) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.RequestMetrics())

	// Health check endpoint
	router.GET("/", healthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Realtime channel
	router.GET("/ws", controllers.ServeWS(hub))

	api := router.Group("/api")
	{
		api.GET("/chats", controllers.GetChats)
		api.GET("/chats/:wa_id/messages", controllers.GetMessages)
		api.POST("/chats/:wa_id/messages", controllers.SendMessage(sink))
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "WhatsApp Clone Backend Running",
	})
}
