package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypePostLike     NotificationType = "post_like"     // 帖子点赞
	NotificationTypePostComment  NotificationType = "post_comment"  // 帖子评论
	NotificationTypeCommentReply NotificationType = "comment_reply" // 评论回复
	NotificationTypeMention      NotificationType = "mention"       // 评论@提及
	NotificationTypeFollow       NotificationType = "follow"        // 关注
	NotificationTypeSystem       NotificationType = "system"        // 系统通知
)

// UserNotification 用户通知,按创建时间倒序展示
type UserNotification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;index" json:"user_id"` // Receiver
	User       User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Type       NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title      string           `gorm:"size:200;not null" json:"title"`
	Content    string           `gorm:"type:text" json:"content"`
	RelatedURL string           `gorm:"size:200" json:"related_url"` // 相关链接,如 /posts/1
	IsRead     bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt  time.Time        `gorm:"index" json:"created_at"`
}
