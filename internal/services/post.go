package services

import (
	"fmt"
	"time"
	"tieba/internal/db"
	"tieba/internal/models"
	"tieba/internal/utils"

	"gorm.io/gorm"
)

// CreatePostInput 发帖参数
type CreatePostInput struct {
	BoardID  uint
	AuthorID uint
	Title    string
	Content  string
	Type     int16
	Draft    bool // 存为草稿
}

// CreatePost 发帖
// 吧必须正常且未关闭发帖;审核制的吧落审核中状态;
// 发帖人必须是该吧的活跃成员。
// 计数口径:除软删除外的帖子都计入 user.post_count / board.post_count
// (与"post_count == count(status != deleted)"的一致性约定对齐)
func CreatePost(input CreatePostInput) (*models.Post, error) {
	if input.Type == 0 {
		input.Type = models.PostTypeNormal
	}

	post := models.Post{
		Title:      input.Title,
		Content:    utils.SanitizeUGC(input.Content),
		AuthorID:   input.AuthorID,
		BoardID:    input.BoardID,
		Type:       input.Type,
		Status:     models.PostStatusActive,
		CanComment: true,
		CanShare:   true,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := ensureCanPublish(tx, input.AuthorID); err != nil {
			return err
		}

		var board models.Board
		if err := tx.First(&board, input.BoardID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if board.Status != models.BoardStatusActive {
			return fmt.Errorf("%w: board not active", ErrInvalidState)
		}
		if board.PostPermission == models.PermissionClosed {
			return fmt.Errorf("%w: board closed for posting", ErrInvalidState)
		}

		var member models.BoardMember
		err := tx.Where("board_id = ? AND user_id = ? AND is_active = ?",
			input.BoardID, input.AuthorID, true).First(&member).Error
		if err != nil {
			if isRecordNotFound(err) {
				return fmt.Errorf("%w: not a board member", ErrPermissionDenied)
			}
			return err
		}

		if input.Draft {
			post.Status = models.PostStatusDraft
		} else if board.PostPermission == models.PermissionModerated {
			post.Status = models.PostStatusUnderReview
		}

		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		// 帖子行与冗余计数同事务落库
		if err := tx.Model(&models.User{}).Where("id = ?", input.AuthorID).
			UpdateColumn("post_count", gorm.Expr("post_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Board{}).Where("id = ?", input.BoardID).
			UpdateColumns(map[string]interface{}{
				"post_count":       gorm.Expr("post_count + ?", 1),
				"today_post_count": gorm.Expr("today_post_count + ?", 1),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PublishDraft 草稿发布,计数在创建时已经累加过,这里只转状态
func PublishDraft(postID, authorID uint) error {
	result := db.DB.Model(&models.Post{}).
		Where("id = ? AND author_id = ? AND status = ?", postID, authorID, models.PostStatusDraft).
		Update("status", models.PostStatusActive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPost 查帖子,软删除的帖子对外表现为不存在
func GetPost(postID uint) (*models.Post, error) {
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.Status == models.PostStatusDeleted {
		return nil, ErrNotFound
	}
	return &post, nil
}

// UpdatePost 作者编辑标题/正文,仅正常帖和草稿可编辑
func UpdatePost(postID, authorID uint, title, content string) error {
	result := db.DB.Model(&models.Post{}).
		Where("id = ? AND author_id = ? AND status IN ?", postID, authorID,
			[]int16{models.PostStatusActive, models.PostStatusDraft}).
		Updates(map[string]interface{}{
			"title":   title,
			"content": utils.SanitizeUGC(content),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeletePost 软删除帖子,评论/点赞等子表保留
// user.post_count 与 board.post_count 随状态转换同步扣减
func SoftDeletePost(postID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if post.Status == models.PostStatusDeleted {
			return fmt.Errorf("%w: already deleted", ErrInvalidState)
		}

		if err := tx.Model(&post).Update("status", models.PostStatusDeleted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", post.AuthorID).
			UpdateColumn("post_count", gorm.Expr("post_count - ?", 1)).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"post_count": gorm.Expr("post_count - ?", 1),
		}
		// 当天发的帖子同时回退今日计数
		if post.CreatedAt.After(startOfToday()) {
			updates["today_post_count"] = gorm.Expr("today_post_count - ?", 1)
		}
		return tx.Model(&models.Board{}).Where("id = ?", post.BoardID).
			UpdateColumns(updates).Error
	})
}

// HardDeletePost 物理删除帖子及全部子表,并回滚相关冗余计数
func HardDeletePost(postID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}

		// 评论者计数回滚(软删除的评论此前已扣过)
		if err := rollbackAuthorCounts(tx, &models.Comment{}, "comment_count",
			"post_id = ? AND status <> ?", postID, models.CommentStatusDeleted); err != nil {
			return err
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentReport{}).Error; err != nil {
				return err
			}
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentMention{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostCollect{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostViewHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostReport{}).Error; err != nil {
			return err
		}

		// 软删除状态的帖子此前已从计数里扣除
		if post.Status != models.PostStatusDeleted {
			if err := tx.Model(&models.User{}).Where("id = ?", post.AuthorID).
				UpdateColumn("post_count", gorm.Expr("post_count - ?", 1)).Error; err != nil {
				return err
			}
			updates := map[string]interface{}{
				"post_count": gorm.Expr("post_count - ?", 1),
			}
			if post.CreatedAt.After(startOfToday()) {
				updates["today_post_count"] = gorm.Expr("today_post_count - ?", 1)
			}
			if err := tx.Model(&models.Board{}).Where("id = ?", post.BoardID).
				UpdateColumns(updates).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&post).Error
	})
}

// LikePost 点赞帖子
// 每人每帖至多一个赞:重复点赞返回 ErrConflict,like_count 只会 +1 一次
func LikePost(postID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
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

		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !isRecordNotFound(err) {
			return err
		}

		if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
			if isDuplicate(err) {
				return ErrConflict
			}
			return err
		}
		if err := tx.Model(&post).UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
			return err
		}

		if post.AuthorID != userID {
			var liker models.User
			if err := tx.First(&liker, userID).Error; err != nil {
				return err
			}
			return notifyTx(tx, post.AuthorID, models.NotificationTypePostLike,
				"帖子获赞", fmt.Sprintf("%s 赞了你的帖子《%s》", liker.Username, post.Title),
				fmt.Sprintf("/posts/%d", postID))
		}
		return nil
	})
}

// UnlikePost 取消点赞,边不存在返回 ErrNotFound
func UnlikePost(postID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
	})
}

// CollectPost 收藏帖子,约束与点赞一致
func CollectPost(postID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
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

		var existing models.PostCollect
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !isRecordNotFound(err) {
			return err
		}

		if err := tx.Create(&models.PostCollect{PostID: postID, UserID: userID}).Error; err != nil {
			if isDuplicate(err) {
				return ErrConflict
			}
			return err
		}
		return tx.Model(&post).UpdateColumn("collect_count", gorm.Expr("collect_count + ?", 1)).Error
	})
}

// UncollectPost 取消收藏
func UncollectPost(postID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.PostCollect{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("collect_count", gorm.Expr("collect_count - ?", 1)).Error
	})
}

// RecordPostView 记录浏览历史并累加浏览数,同一事务完成
func RecordPostView(postID, userID uint, ip, userAgent string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		history := models.PostViewHistory{
			PostID:    postID,
			UserID:    userID,
			IPAddress: ip,
			UserAgent: userAgent,
			ViewedAt:  time.Now(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return tx.Model(&post).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	})
}

// SharePost 分享计数,帖子关闭分享或非正常状态时拒绝
func SharePost(postID uint) error {
	result := db.DB.Model(&models.Post{}).
		Where("id = ? AND status = ? AND can_share = ?", postID, models.PostStatusActive, true).
		UpdateColumn("share_count", gorm.Expr("share_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var post models.Post
		if err := db.DB.First(&post, postID).Error; err != nil {
			return ErrNotFound
		}
		return fmt.Errorf("%w: sharing not allowed", ErrInvalidState)
	}
	return nil
}

// ListPostsOptions 帖子列表过滤条件
type ListPostsOptions struct {
	BoardID  *uint
	AuthorID *uint
	Status   *int16 // 为空时只出正常帖
	Page     int
	PageSize int
}

// ListPosts 帖子列表
// 排序规则:最后回复时间倒序,从未被回复的帖子按创建时间兜底
func ListPosts(opts ListPostsOptions) ([]models.Post, error) {
	query := db.DB.Model(&models.Post{})
	if opts.BoardID != nil {
		query = query.Where("board_id = ?", *opts.BoardID)
	}
	if opts.AuthorID != nil {
		query = query.Where("author_id = ?", *opts.AuthorID)
	}
	if opts.Status != nil {
		query = query.Where("status = ?", *opts.Status)
	} else {
		query = query.Where("status = ?", models.PostStatusActive)
	}

	var posts []models.Post
	err := query.Order("COALESCE(last_reply_at, created_at) DESC, created_at DESC").
		Offset(offset(opts.Page, opts.PageSize)).Limit(opts.PageSize).
		Find(&posts).Error
	return posts, err
}

// startOfToday 今日零点,today_post_count 的回退口径
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
