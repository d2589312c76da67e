package models

import (
	"time"
)

// 举报类型
const (
	ReportTypeAd      int16 = 1 // 广告营销
	ReportTypeIllegal int16 = 2 // 违法违规
	ReportTypePorn    int16 = 3 // 色情低俗
	ReportTypeAttack  int16 = 4 // 人身攻击
	ReportTypePrivacy int16 = 5 // 侵犯隐私
	ReportTypeSpam    int16 = 6 // 垃圾信息
	ReportTypeOther   int16 = 7 // 其他
)

// 举报处理状态,生命周期: pending -> in_progress -> resolved | rejected
const (
	ReportStatusPending    int16 = 1 // 待处理
	ReportStatusInProgress int16 = 2 // 处理中
	ReportStatusResolved   int16 = 3 // 已处理
	ReportStatusRejected   int16 = 4 // 已驳回
)

// PostReport 帖子举报队列
// handled_by/handled_at/handle_result 只在进入终态时写入
type PostReport struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PostID     uint   `gorm:"not null;index:idx_preport_post_status" json:"post_id"`
	Post       Post   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReporterID uint   `gorm:"not null;index:idx_preport_reporter_time" json:"reporter_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReportType int16  `gorm:"not null" json:"report_type"`
	Reason     string `gorm:"type:text;not null" json:"reason"`
	Evidence   string `gorm:"type:text" json:"evidence"`

	Status       int16      `gorm:"default:1;index:idx_preport_post_status" json:"status"`
	HandledByID  *uint      `json:"handled_by_id"`
	HandledBy    *User      `gorm:"foreignKey:HandledByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	HandledAt    *time.Time `json:"handled_at"`
	HandleResult string     `gorm:"type:text" json:"handle_result"`

	CreatedAt time.Time `gorm:"index:idx_preport_reporter_time" json:"created_at"`
}

// CommentReport 评论举报队列,与帖子举报各自独立
type CommentReport struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	CommentID  uint    `gorm:"not null;index:idx_creport_comment_status" json:"comment_id"`
	Comment    Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReporterID uint    `gorm:"not null;index:idx_creport_reporter_time" json:"reporter_id"`
	Reporter   User    `gorm:"foreignKey:ReporterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReportType int16   `gorm:"not null" json:"report_type"`
	Reason     string  `gorm:"type:text;not null" json:"reason"`
	Evidence   string  `gorm:"type:text" json:"evidence"`

	Status       int16      `gorm:"default:1;index:idx_creport_comment_status" json:"status"`
	HandledByID  *uint      `json:"handled_by_id"`
	HandledBy    *User      `gorm:"foreignKey:HandledByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	HandledAt    *time.Time `json:"handled_at"`
	HandleResult string     `gorm:"type:text" json:"handle_result"`

	CreatedAt time.Time `gorm:"index:idx_creport_reporter_time" json:"created_at"`
}
