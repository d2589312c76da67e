package models

import (
	"time"
)

// 帖子类型
const (
	PostTypeNormal       int16 = 1 // 普通帖
	PostTypeDigest       int16 = 2 // 精华帖
	PostTypePinned       int16 = 3 // 置顶帖
	PostTypeAnnouncement int16 = 4 // 公告帖
	PostTypePoll         int16 = 5 // 投票帖
)

// 帖子状态
const (
	PostStatusActive      int16 = 1 // 正常
	PostStatusUnderReview int16 = 2 // 审核中
	PostStatusDeleted     int16 = 3 // 已删除(软删除)
	PostStatusBanned      int16 = 4 // 封禁
	PostStatusDraft       int16 = 5 // 草稿
)

// Post 帖子主表
// 列表排序按 last_reply_at 倒序,未被回复过的帖子按 created_at 兜底
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID uint   `gorm:"not null;index:idx_post_author_time" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	BoardID  uint   `gorm:"not null;index:idx_post_board_type" json:"board_id"`
	Board    Board  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Type     int16  `gorm:"default:1;index:idx_post_board_type" json:"type"`

	// 统计字段 - 与对应子表行数保持一致
	ViewCount    int `gorm:"default:0" json:"view_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`
	LikeCount    int `gorm:"default:0" json:"like_count"`
	CollectCount int `gorm:"default:0" json:"collect_count"`
	ShareCount   int `gorm:"default:0" json:"share_count"`

	// 楼层发号器,只增不减,软删除评论不回收楼层号
	FloorCounter int `gorm:"default:0" json:"-"`

	Status     int16 `gorm:"default:1;index:idx_post_status_time" json:"status"`
	CanComment bool  `gorm:"default:true" json:"can_comment"`
	CanShare   bool  `gorm:"default:true" json:"can_share"`

	CreatedAt   time.Time  `gorm:"index:idx_post_author_time;index:idx_post_status_time" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastReplyAt *time.Time `gorm:"index" json:"last_reply_at"`
}

// PostLike 帖子点赞,(post, user) 唯一 - 每人对每帖至多一个赞
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_post_like" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_post_like" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// PostCollect 帖子收藏,(post, user) 唯一
type PostCollect struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_post_collect" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_post_collect" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// PostViewHistory 帖子浏览历史,追加写,view_count 随之 +1
type PostViewHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index:idx_view_post_time" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index:idx_view_user_time" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`
	ViewedAt  time.Time `gorm:"index:idx_view_post_time;index:idx_view_user_time" json:"viewed_at"`
}
