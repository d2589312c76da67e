package handlers

import (
	"tieba/internal/middleware"
	"tieba/internal/services"
	"tieba/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List 通知列表,新的在前
func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, pageSize := pagination(c)

	notifications, err := services.ListNotifications(user.ID, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"notifications": notifications,
		"unread_count":  services.UnreadNotificationCount(user.ID),
	})
}

// MarkRead 单条已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.MarkNotificationRead(user.ID, utils.StringToUint(c.Param("id"))); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "read"})
}

// MarkAllRead 全部已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.MarkAllNotificationsRead(user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "all read"})
}
