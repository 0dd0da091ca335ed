package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wachat/wachat-backend/config"
	"github.com/wachat/wachat-backend/models"
	"github.com/wachat/wachat-backend/realtime"
)

// chatSummaryQuery selects the most recent message per wa_id. Ties on
// timestamp resolve to the higher id so the ordering is deterministic.
// Works on both Postgres and the sqlite test database.
const chatSummaryQuery = `
SELECT wa_id, name, number,
       message   AS last_message,
       status    AS last_status,
       timestamp AS last_timestamp
FROM (
    SELECT wa_id, name, number, message, status, timestamp,
           ROW_NUMBER() OVER (PARTITION BY wa_id ORDER BY timestamp DESC, id DESC) AS rn
    FROM processed_messages
) latest
WHERE rn = 1
ORDER BY last_timestamp DESC`

// GetChats handles GET /api/chats - lists all conversations, most recently
// active first, each represented by its latest message.
func GetChats(c *gin.Context) {
	db := config.GetDB()

	chats := make([]models.ChatSummary, 0)
	if err := db.Raw(chatSummaryQuery).Scan(&chats).Error; err != nil {
		log.Printf("Failed to aggregate chats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch chats",
			},
		})
		return
	}

	c.JSON(http.StatusOK, chats)
}

// GetMessages handles GET /api/chats/:wa_id/messages - lists every message
// in one conversation, oldest first. No pagination.
func GetMessages(c *gin.Context) {
	db := config.GetDB()
	waID := c.Param("wa_id")

	messages := make([]models.Message, 0)
	if err := db.Where("wa_id = ?", waID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		log.Printf("Failed to fetch messages for %s: %v", waID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch messages",
			},
		})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessageRequest represents the request body for sending a message.
// Fields are not validated beyond JSON shape; the store decides what it
// accepts.
type SendMessageRequest struct {
	Name    string `json:"name"`
	Number  string `json:"number"`
	Message string `json:"message"`
}

// SendMessage returns the handler for POST /api/chats/:wa_id/messages. It
// always creates a new record with status "sent" stamped now, then emits a
// new_message event on sink. The conversation id comes from the path; a
// wa_id in the body is ignored.
func SendMessage(sink realtime.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid request data",
					"details": err.Error(),
				},
			})
			return
		}

		message := models.Message{
			WaID:      c.Param("wa_id"),
			Name:      req.Name,
			Number:    req.Number,
			Message:   req.Message,
			Status:    models.StatusSent,
			Timestamp: time.Now(),
		}

		db := config.GetDB()
		if err := db.Create(&message).Error; err != nil {
			log.Printf("Failed to create message: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create message",
				},
			})
			return
		}

		if sink != nil {
			sink.Emit(realtime.EventNewMessage, &message)
		}

		c.JSON(http.StatusCreated, message)
	}
}
