package models

import (
	"time"
)

// 用户状态
const (
	UserStatusActive int16 = 0 // 正常
	UserStatusMuted  int16 = 1 // 禁言
	UserStatusBanned int16 = 2 // 封禁
	UserStatusClosed int16 = 3 // 已注销(软删除,保留历史内容)
)

// 性别
const (
	GenderUnknown int16 = 0
	GenderMale    int16 = 1
	GenderFemale  int16 = 2
)

type User struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Username string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password string     `gorm:"not null" json:"-"`                // Hash
	Phone    *string    `gorm:"uniqueIndex;size:20" json:"phone"` // 可空,填写后全局唯一
	Nickname string     `gorm:"size:50" json:"nickname"`
	Avatar   string     `gorm:"size:255" json:"avatar"` // 头像路径,文件上传不在本仓库范围
	Gender   int16      `gorm:"default:0" json:"gender"`
	Birthday *time.Time `json:"birthday"`
	Bio      string     `gorm:"size:500" json:"bio"`

	// 统计字段 - 冗余计数,必须与子表行数保持一致
	PostCount      int `gorm:"default:0" json:"post_count"`
	CommentCount   int `gorm:"default:0" json:"comment_count"`
	FollowerCount  int `gorm:"default:0" json:"follower_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`

	// 状态字段
	IsVerified    bool       `gorm:"default:false" json:"is_verified"`
	LastLoginIP   string     `gorm:"size:45" json:"last_login_ip"`
	Status        int16      `gorm:"default:0;index" json:"status"`
	PunishExpires *time.Time `json:"punish_expires"` // 禁言/封禁到期时间

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// 用户不做物理删除,注销走 Status 转换,保留举报与发帖历史
}

// UserProfile 用户详细资料 (与 User 一对一)
type UserProfile struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	User     User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Location string `gorm:"size:100" json:"location"`
	Website  string `gorm:"size:200" json:"website"`
	Company  string `gorm:"size:100" json:"company"`
	School   string `gorm:"size:100" json:"school"`

	// 社交链接
	Github  string `gorm:"size:200" json:"github"`
	Twitter string `gorm:"size:200" json:"twitter"`
	Weibo   string `gorm:"size:200" json:"weibo"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
