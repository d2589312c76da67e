package models

import (
	"time"
)

// 评论状态
const (
	CommentStatusActive      int16 = 1 // 正常
	CommentStatusUnderReview int16 = 2 // 审核中
	CommentStatusDeleted     int16 = 3 // 已删除(软删除,楼层号保留)
	CommentStatusBanned      int16 = 4 // 封禁
)

// Comment 评论主表
// 楼层号在创建时按帖子发号器分配一次,之后不再变化也不会被复用;
// parent_id 构成回复树,reply_count 只统计直接子回复
type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	AuthorID uint     `gorm:"not null;index:idx_comment_author_time" json:"author_id"`
	Author   User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID   uint     `gorm:"not null;index:idx_comment_post_floor" json:"post_id"`
	Post     Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentID *uint    `gorm:"index:idx_comment_parent_time" json:"parent_id"` // 顶层评论为空
	Parent   *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	FloorNumber int `gorm:"not null;index:idx_comment_post_floor" json:"floor_number"`

	// 统计字段
	LikeCount  int `gorm:"default:0" json:"like_count"`
	ReplyCount int `gorm:"default:0" json:"reply_count"` // 仅直接子回复

	Status int16 `gorm:"default:1;index:idx_comment_status_time" json:"status"`

	CreatedAt time.Time `gorm:"index:idx_comment_author_time;index:idx_comment_parent_time;index:idx_comment_status_time" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentLike 评论点赞,(comment, user) 唯一
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index;uniqueIndex:idx_comment_like" json:"comment_id"`
	Comment   Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_comment_like" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentMention 评论中 @ 到的用户,(comment, user) 唯一
type CommentMention struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CommentID       uint      `gorm:"not null;index;uniqueIndex:idx_comment_mention" json:"comment_id"`
	Comment         Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	MentionedUserID uint      `gorm:"not null;index;uniqueIndex:idx_comment_mention" json:"mentioned_user_id"`
	MentionedUser   User      `gorm:"foreignKey:MentionedUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}
