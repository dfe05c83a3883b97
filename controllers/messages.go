package controllers

import (
	"Recit/middleware"
	"Recit/services/feed"
	"Recit/services/games"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary Lists the messages of a game
// @Description Newest first, continuing before the cursor. The chat of a private game is only shown to its participants
// @Tags messages
// @Produce json
// @Param id path int true "Game id"
// @Param cursor query string false "RFC3339 updated_at to continue before"
// @Param message_id query int false "Only this message"
// @Success 200 {object} object{total_count=integer,edges=[]object,has_next_page=boolean}
// @Failure 403 {object} object{error=string,reason=string}
// @Router /games/{id}/messages [get]
func ListMessages(engine *feed.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := pathID(c, "id")
		if !ok {
			return
		}
		cursor, ok := queryTime(c, "cursor")
		if !ok {
			return
		}
		var messageID uint
		if raw := c.Query("message_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				invalid(c, "message_id", "must be a positive integer")
				return
			}
			messageID = uint(id)
		}

		page, err := engine.ListMessages(c.Request.Context(), middleware.CurrentUser(c), gameID, cursor, messageID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// @Summary Posts a message to a game
// @Tags messages
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Game id"
// @Param message body games.MessageInput true "Message"
// @Success 201 {object} views.Message
// @Failure 403 {object} object{error=string,reason=string}
// @Router /auth/games/{id}/messages [post]
// @Security ApiKeyAuth
func CreateMessage(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var in games.MessageInput
		if err := c.ShouldBindJSON(&in); err != nil {
			invalid(c, "body", "must be a JSON object of the documented shape")
			return
		}
		msg, err := svc.CreateMessage(c.Request.Context(), middleware.CurrentUser(c), gameID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// @Summary Edits a message
// @Tags messages
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Message id"
// @Param body body object{content=string} true "New content"
// @Success 200 {object} views.Message
// @Router /auth/messages/{id} [patch]
// @Security ApiKeyAuth
func UpdateMessage(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var body struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			invalid(c, "body", "must be a JSON object of the documented shape")
			return
		}
		msg, err := svc.UpdateMessage(c.Request.Context(), middleware.CurrentUser(c), id, body.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, msg)
	}
}

// @Summary Deletes a message
// @Tags messages
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Message id"
// @Success 200 {object} object{message=string}
// @Router /auth/messages/{id} [delete]
// @Security ApiKeyAuth
func DeleteMessage(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteMessage(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
	}
}
