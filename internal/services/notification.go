package services

import (
	"fmt"
	"time"
	"tieba/internal/db"
	"tieba/internal/models"
	"tieba/internal/utils"

	"gorm.io/gorm"
)

const unreadCacheTTL = 30 * time.Second

func unreadCacheKey(userID uint) string {
	return fmt.Sprintf("notify:unread:%d", userID)
}

// Notify 给用户写入一条通知,尊重对方的通知开关
func Notify(userID uint, ntype models.NotificationType, title, content, relatedURL string) error {
	return notifyTx(db.DB, userID, ntype, title, content, relatedURL)
}

// notifyTx 事务内版本,评论/关注等写路径在自己的事务里调用
func notifyTx(tx *gorm.DB, userID uint, ntype models.NotificationType, title, content, relatedURL string) error {
	if !wantsNotification(tx, userID, ntype) {
		return nil
	}
	notification := models.UserNotification{
		UserID:     userID,
		Type:       ntype,
		Title:      title,
		Content:    content,
		RelatedURL: relatedURL,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return err
	}
	utils.GetCache().Delete(unreadCacheKey(userID))
	return nil
}

// wantsNotification 按消息设置判断是否投递,设置行缺失时默认投递
func wantsNotification(tx *gorm.DB, userID uint, ntype models.NotificationType) bool {
	var setting models.UserMessageSetting
	if err := tx.Where("user_id = ?", userID).First(&setting).Error; err != nil {
		return true
	}
	switch ntype {
	case models.NotificationTypePostLike, models.NotificationTypePostComment:
		return setting.ReceivePostNotifications
	case models.NotificationTypeCommentReply, models.NotificationTypeMention:
		return setting.ReceiveCommentNotifications
	case models.NotificationTypeFollow:
		return setting.ReceiveFollowNotifications
	case models.NotificationTypeSystem:
		return setting.ReceiveSystemMessages
	}
	return true
}

// ListNotifications 通知列表,最新在前
func ListNotifications(userID uint, page, pageSize int) ([]models.UserNotification, error) {
	var notifications []models.UserNotification
	err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&notifications).Error
	return notifications, err
}

// MarkNotificationRead 单条标记已读,不属于该用户时返回 ErrNotFound
func MarkNotificationRead(userID, notificationID uint) error {
	result := db.DB.Model(&models.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	utils.GetCache().Delete(unreadCacheKey(userID))
	return nil
}

// MarkAllNotificationsRead 全部标记已读
func MarkAllNotificationsRead(userID uint) error {
	err := db.DB.Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	utils.GetCache().Delete(unreadCacheKey(userID))
	return nil
}

// UnreadNotificationCount 未读数,短 TTL 缓存,写路径主动失效
func UnreadNotificationCount(userID uint) int64 {
	key := unreadCacheKey(userID)
	if cached := utils.GetCache().Get(key); cached != nil {
		if count, ok := cached.(int64); ok {
			return count
		}
	}
	var count int64
	db.DB.Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count)
	utils.GetCache().Set(key, count, unreadCacheTTL)
	return count
}
