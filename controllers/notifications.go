package controllers

import (
	"Recit/middleware"
	"Recit/sync"
	"Recit/utils/apperrors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const notificationsLimit = 50

// @Summary Lists the conversations with unseen activity
// @Description Freshest first
// @Tags notifications
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{notifications=[]object}
// @Router /auth/notifications [get]
// @Security ApiKeyAuth
func ListNotifications(sm *sync.SyncManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		badges, err := sm.RecentConversations(middleware.CurrentUser(c), notificationsLimit)
		if err != nil {
			respondError(c, apperrors.Upstream("list notifications", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": badges})
	}
}

// @Summary Marks the activity of a conversation as seen
// @Tags notifications
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Conversation id"
// @Success 200 {object} object{message=string}
// @Router /auth/notifications/{id} [delete]
// @Security ApiKeyAuth
func MarkNotificationSeen(sm *sync.SyncManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := sm.MarkSeen(middleware.CurrentUser(c), id); err != nil {
			respondError(c, apperrors.Upstream("mark seen", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Marked as seen"})
	}
}
