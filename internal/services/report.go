package services

import (
	"fmt"
	"time"
	"tieba/internal/db"
	"tieba/internal/models"

	"gorm.io/gorm"
)

// ReportPost 举报帖子,进入帖子举报队列,初始状态待处理
func ReportPost(postID, reporterID uint, reportType int16, reason, evidence string) (*models.PostReport, error) {
	report := models.PostReport{
		PostID:     postID,
		ReporterID: reporterID,
		ReportType: reportType,
		Reason:     reason,
		Evidence:   evidence,
		Status:     models.ReportStatusPending,
	}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if post.Status == models.PostStatusDeleted {
			return ErrNotFound
		}
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ReportComment 举报评论,独立于帖子举报的队列
func ReportComment(commentID, reporterID uint, reportType int16, reason, evidence string) (*models.CommentReport, error) {
	report := models.CommentReport{
		CommentID:  commentID,
		ReporterID: reporterID,
		ReportType: reportType,
		Reason:     reason,
		Evidence:   evidence,
		Status:     models.ReportStatusPending,
	}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if comment.Status == models.CommentStatusDeleted {
			return ErrNotFound
		}
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ClaimPostReport 认领帖子举报:仅 待处理 -> 处理中
// 处理人信息此时还不写,终态才落 handled_*
func ClaimPostReport(reportID uint) error {
	return claimReport(&models.PostReport{}, reportID)
}

// ClaimCommentReport 认领评论举报
func ClaimCommentReport(reportID uint) error {
	return claimReport(&models.CommentReport{}, reportID)
}

func claimReport(model interface{}, reportID uint) error {
	result := db.DB.Model(model).
		Where("id = ? AND status = ?", reportID, models.ReportStatusPending).
		Update("status", models.ReportStatusInProgress)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return reportTransitionError(model, reportID)
	}
	return nil
}

// ResolvePostReport 处理完成:待处理/处理中 -> 已处理
// handled_by/handled_at/handle_result 与状态转换原子写入
func ResolvePostReport(reportID, handlerID uint, result string) error {
	return finishReport(&models.PostReport{}, reportID, handlerID, models.ReportStatusResolved, result)
}

// RejectPostReport 驳回帖子举报
func RejectPostReport(reportID, handlerID uint, result string) error {
	return finishReport(&models.PostReport{}, reportID, handlerID, models.ReportStatusRejected, result)
}

// ResolveCommentReport 处理完成评论举报
func ResolveCommentReport(reportID, handlerID uint, result string) error {
	return finishReport(&models.CommentReport{}, reportID, handlerID, models.ReportStatusResolved, result)
}

// RejectCommentReport 驳回评论举报
func RejectCommentReport(reportID, handlerID uint, result string) error {
	return finishReport(&models.CommentReport{}, reportID, handlerID, models.ReportStatusRejected, result)
}

func finishReport(model interface{}, reportID, handlerID uint, status int16, handleResult string) error {
	now := time.Now()
	result := db.DB.Model(model).
		Where("id = ? AND status IN ?", reportID,
			[]int16{models.ReportStatusPending, models.ReportStatusInProgress}).
		Updates(map[string]interface{}{
			"status":        status,
			"handled_by_id": handlerID,
			"handled_at":    now,
			"handle_result": handleResult,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return reportTransitionError(model, reportID)
	}
	return nil
}

// reportTransitionError 区分"没这条举报"和"状态不允许转换"
func reportTransitionError(model interface{}, reportID uint) error {
	var count int64
	if err := db.DB.Model(model).Where("id = ?", reportID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return fmt.Errorf("%w: report already handled", ErrInvalidState)
}

// ListPostReports 帖子举报队列,可按状态过滤,新的在前
func ListPostReports(status *int16, page, pageSize int) ([]models.PostReport, error) {
	query := db.DB.Model(&models.PostReport{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var reports []models.PostReport
	err := query.Order("created_at DESC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&reports).Error
	return reports, err
}

// ListCommentReports 评论举报队列
func ListCommentReports(status *int16, page, pageSize int) ([]models.CommentReport, error) {
	query := db.DB.Model(&models.CommentReport{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var reports []models.CommentReport
	err := query.Order("created_at DESC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&reports).Error
	return reports, err
}

// GetPostReport 查单条帖子举报
func GetPostReport(reportID uint) (*models.PostReport, error) {
	var report models.PostReport
	if err := db.DB.First(&report, reportID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// GetCommentReport 查单条评论举报
func GetCommentReport(reportID uint) (*models.CommentReport, error) {
	var report models.CommentReport
	if err := db.DB.First(&report, reportID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}
