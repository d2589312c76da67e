package models

import (
	"time"
)

// 消息类型
const (
	MessageTypeText   int16 = 1 // 文本消息
	MessageTypeImage  int16 = 2 // 图片消息
	MessageTypeFile   int16 = 3 // 文件消息
	MessageTypeSystem int16 = 4 // 系统消息
)

// Conversation 私信会话,按无序用户对唯一
// 约定 user1_id < user2_id,查找/创建前先归一化,保证 A->B 与 B->A 落在同一行
type Conversation struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	User1ID uint `gorm:"not null;index:idx_conv_user1_time;uniqueIndex:idx_conv_pair" json:"user1_id"`
	User1   User `gorm:"foreignKey:User1ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	User2ID uint `gorm:"not null;index:idx_conv_user2_time;uniqueIndex:idx_conv_pair" json:"user2_id"`
	User2   User `gorm:"foreignKey:User2ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// 会话统计 - 未读数只属于各自一侧
	MessageCount     int `gorm:"default:0" json:"message_count"`
	UnreadCountUser1 int `gorm:"default:0" json:"unread_count_user1"`
	UnreadCountUser2 int `gorm:"default:0" json:"unread_count_user2"`

	LastMessageID *uint           `json:"last_message_id"`
	LastMessage   *PrivateMessage `gorm:"foreignKey:LastMessageID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"last_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index:idx_conv_user1_time;index:idx_conv_user2_time" json:"updated_at"`
}

// PrivateMessage 私信消息
// 双方各自维护删除标记,物理行保留到会话删除为止
type PrivateMessage struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ConversationID uint         `gorm:"not null;index" json:"conversation_id"`
	Conversation   Conversation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SenderID       uint         `gorm:"not null;index:idx_msg_sender_time" json:"sender_id"`
	Sender         User         `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReceiverID     uint         `gorm:"not null;index:idx_msg_receiver_read" json:"receiver_id"`
	Receiver       User         `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Content string `gorm:"type:text;not null" json:"content"`
	Type    int16  `gorm:"default:1" json:"type"`

	IsRead              bool `gorm:"default:false;index:idx_msg_receiver_read" json:"is_read"`
	IsDeletedBySender   bool `gorm:"default:false" json:"-"`
	IsDeletedByReceiver bool `gorm:"default:false" json:"-"`

	CreatedAt time.Time  `gorm:"index:idx_msg_sender_time" json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}

// UserMessageSetting 用户消息设置 (与 User 一对一),注册时创建默认行
type UserMessageSetting struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ReceivePrivateMessages      bool `gorm:"default:true" json:"receive_private_messages"`
	ReceiveSystemMessages       bool `gorm:"default:true" json:"receive_system_messages"`
	ReceivePostNotifications    bool `gorm:"default:true" json:"receive_post_notifications"`
	ReceiveCommentNotifications bool `gorm:"default:true" json:"receive_comment_notifications"`
	ReceiveFollowNotifications  bool `gorm:"default:true" json:"receive_follow_notifications"`

	AllowStrangerMessages bool `gorm:"default:true" json:"allow_stranger_messages"` // 关闭后仅互相关注可私信

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageBlacklist 消息黑名单,(user, blocked_user) 唯一
type MessageBlacklist struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index;uniqueIndex:idx_blacklist_pair" json:"user_id"`
	User          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	BlockedUserID uint      `gorm:"not null;uniqueIndex:idx_blacklist_pair" json:"blocked_user_id"`
	BlockedUser   User      `gorm:"foreignKey:BlockedUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Reason        string    `gorm:"size:200" json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}
