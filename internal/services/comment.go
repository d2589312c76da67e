package services

import (
	"fmt"
	"time"
	"tieba/internal/db"
	"tieba/internal/models"
	"tieba/internal/utils"

	"gorm.io/gorm"
)

// CreateComment 发表评论/回复
// 楼层号从帖子的发号器取:同一事务里先原子自增 floor_counter 再读回,
// 行锁保证并发评论拿到的楼层各不相同且连续;楼层号一经分配不再变化。
// 评论行、帖子/用户/父评论计数、last_reply_at 同一事务落库。
func CreateComment(postID, authorID uint, content string, parentID *uint) (*models.Comment, error) {
	comment := models.Comment{
		Content:  utils.SanitizeUGC(content),
		AuthorID: authorID,
		PostID:   postID,
		ParentID: parentID,
		Status:   models.CommentStatusActive,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		author, err := ensureCanPublish(tx, authorID)
		if err != nil {
			return err
		}

		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if post.Status != models.PostStatusActive {
			return fmt.Errorf("%w: post not active", ErrInvalidState)
		}
		if !post.CanComment {
			return fmt.Errorf("%w: comments disabled", ErrInvalidState)
		}

		var board models.Board
		if err := tx.First(&board, post.BoardID).Error; err != nil {
			return err
		}
		if board.Status == models.BoardStatusBanned {
			return fmt.Errorf("%w: board banned", ErrInvalidState)
		}

		var parent *models.Comment
		if parentID != nil {
			parent = &models.Comment{}
			if err := tx.First(parent, *parentID).Error; err != nil {
				if isRecordNotFound(err) {
					return ErrNotFound
				}
				return err
			}
			if parent.PostID != postID {
				return fmt.Errorf("%w: parent belongs to another post", ErrInvalidState)
			}
			if parent.Status == models.CommentStatusDeleted {
				return fmt.Errorf("%w: parent deleted", ErrInvalidState)
			}
		}

		// 楼层发号:UPDATE 持有的行锁串行化并发评论,读回的值即本条的楼层
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("floor_counter", gorm.Expr("floor_counter + ?", 1)).Error; err != nil {
			return err
		}
		var fresh models.Post
		if err := tx.Select("floor_counter").First(&fresh, postID).Error; err != nil {
			return err
		}
		comment.FloorNumber = fresh.FloorCounter

		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumns(map[string]interface{}{
				"comment_count": gorm.Expr("comment_count + ?", 1),
				"last_reply_at": now,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", authorID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error; err != nil {
			return err
		}
		if parent != nil {
			// reply_count 只统计直接子回复
			if err := tx.Model(&models.Comment{}).Where("id = ?", parent.ID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error; err != nil {
				return err
			}
		}

		if err := recordMentions(tx, &comment, author); err != nil {
			return err
		}

		// 给帖子作者或被回复者发通知
		if parent != nil {
			if parent.AuthorID != authorID {
				return notifyTx(tx, parent.AuthorID, models.NotificationTypeCommentReply,
					"评论被回复", fmt.Sprintf("%s 回复了你在《%s》下的评论", author.Username, post.Title),
					fmt.Sprintf("/posts/%d#floor-%d", postID, comment.FloorNumber))
			}
			return nil
		}
		if post.AuthorID != authorID {
			return notifyTx(tx, post.AuthorID, models.NotificationTypePostComment,
				"帖子有新评论", fmt.Sprintf("%s 评论了你的帖子《%s》", author.Username, post.Title),
				fmt.Sprintf("/posts/%d#floor-%d", postID, comment.FloorNumber))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// recordMentions 解析 @提及,落 CommentMention 行并通知被提及者
// 同一条评论里提及同一个人只记一次
func recordMentions(tx *gorm.DB, comment *models.Comment, author *models.User) error {
	names := utils.ExtractMentions(comment.Content)
	for _, name := range names {
		var mentioned models.User
		if err := tx.Where("username = ?", name).First(&mentioned).Error; err != nil {
			if isRecordNotFound(err) {
				continue // @ 了不存在的用户,忽略
			}
			return err
		}
		if mentioned.ID == comment.AuthorID {
			continue
		}
		mention := models.CommentMention{
			CommentID:       comment.ID,
			MentionedUserID: mentioned.ID,
		}
		if err := tx.Create(&mention).Error; err != nil {
			if isDuplicate(err) {
				continue
			}
			return err
		}
		if err := notifyTx(tx, mentioned.ID, models.NotificationTypeMention,
			"有人提到了你", fmt.Sprintf("%s 在评论中提到了你", author.Username),
			fmt.Sprintf("/posts/%d#floor-%d", comment.PostID, comment.FloorNumber)); err != nil {
			return err
		}
	}
	return nil
}

// GetComment 查评论
func GetComment(commentID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := db.DB.First(&comment, commentID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// SoftDeleteComment 软删除评论
// 楼层号保留,子回复原样挂在它下面;举报和提及记录一并清理;
// 帖子/用户/父评论的计数同事务回退
func SoftDeleteComment(commentID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if comment.Status == models.CommentStatusDeleted {
			return fmt.Errorf("%w: already deleted", ErrInvalidState)
		}

		if err := tx.Model(&comment).Update("status", models.CommentStatusDeleted).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentMention{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", comment.AuthorID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error; err != nil {
			return err
		}
		if comment.ParentID != nil {
			return tx.Model(&models.Comment{}).Where("id = ?", *comment.ParentID).
				UpdateColumn("reply_count", gorm.Expr("reply_count - ?", 1)).Error
		}
		return nil
	})
}

// LikeComment 点赞评论,重复点赞返回 ErrConflict
func LikeComment(commentID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if comment.Status != models.CommentStatusActive {
			return fmt.Errorf("%w: comment not active", ErrInvalidState)
		}

		var existing models.CommentLike
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !isRecordNotFound(err) {
			return err
		}

		if err := tx.Create(&models.CommentLike{CommentID: commentID, UserID: userID}).Error; err != nil {
			if isDuplicate(err) {
				return ErrConflict
			}
			return err
		}
		return tx.Model(&comment).UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
}

// UnlikeComment 取消点赞
func UnlikeComment(commentID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&models.CommentLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
	})
}

// ListCommentsByPost 帖子下的评论,按楼层号排序
// 软删除的评论也会返回(占楼),由展示层决定如何渲染
func ListCommentsByPost(postID uint, page, pageSize int) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.DB.Where("post_id = ?", postID).
		Order("floor_number ASC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&comments).Error
	return comments, err
}

// ListReplies 某条评论的直接子回复,时间正序
func ListReplies(commentID uint, page, pageSize int) ([]models.Comment, error) {
	var replies []models.Comment
	err := db.DB.Where("parent_id = ?", commentID).
		Order("created_at ASC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&replies).Error
	return replies, err
}
