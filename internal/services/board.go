package services

import (
	"fmt"
	"time"
	"tieba/internal/db"
	"tieba/internal/models"
	"tieba/internal/utils"

	"gorm.io/gorm"
)

const boardCacheTTL = time.Minute

func boardCacheKey(name string) string {
	return fmt.Sprintf("board:name:%s", name)
}

// CreateBoard 创建贴吧
// 吧名全局唯一;创建者自动成为创始人成员,member_count 从 1 起步
func CreateBoard(ownerID uint, name, description string, categoryID *uint) (*models.Board, error) {
	board := models.Board{
		Name:           name,
		Description:    description,
		OwnerID:        ownerID,
		CategoryID:     categoryID,
		Status:         models.BoardStatusActive,
		JoinPermission: models.PermissionOpen,
		PostPermission: models.PermissionOpen,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := ensureCanPublish(tx, ownerID); err != nil {
			return err
		}

		var existing models.Board
		err := tx.Where("name = ?", name).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: board name taken", ErrConflict)
		}
		if !isRecordNotFound(err) {
			return err
		}

		if err := tx.Create(&board).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%w: board name taken", ErrConflict)
			}
			return err
		}

		// 创始人成员和 member_count 同事务落库
		founder := models.BoardMember{
			BoardID:  board.ID,
			UserID:   ownerID,
			Role:     models.RoleFounder,
			IsActive: true,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&founder).Error; err != nil {
			return err
		}
		return tx.Model(&board).UpdateColumn("member_count", 1).Error
	})
	if err != nil {
		return nil, err
	}
	board.MemberCount = 1
	return &board, nil
}

// GetBoard 按 ID 查吧
func GetBoard(boardID uint) (*models.Board, error) {
	var board models.Board
	if err := db.DB.First(&board, boardID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &board, nil
}

// GetBoardByName 按名称查吧,热点读走本地缓存
func GetBoardByName(name string) (*models.Board, error) {
	key := boardCacheKey(name)
	if cached := utils.GetCache().Get(key); cached != nil {
		if board, ok := cached.(*models.Board); ok {
			return board, nil
		}
	}

	var board models.Board
	if err := db.DB.Where("name = ?", name).First(&board).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	utils.GetCache().Set(key, &board, boardCacheTTL)
	return &board, nil
}

// ListBoards 吧列表,可按分类过滤,默认只出正常状态
func ListBoards(categoryID *uint, page, pageSize int) ([]models.Board, error) {
	query := db.DB.Where("status = ?", models.BoardStatusActive)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var boards []models.Board
	err := query.Order("member_count DESC, created_at DESC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&boards).Error
	return boards, err
}

// JoinBoard 加入贴吧
// 审核制的吧先落一条 is_active=false 的记录,不计入 member_count;
// 重复加入返回 ErrConflict
func JoinBoard(boardID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, boardID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if board.Status != models.BoardStatusActive {
			return fmt.Errorf("%w: board not active", ErrInvalidState)
		}
		if board.JoinPermission == models.PermissionClosed {
			return fmt.Errorf("%w: board closed for joining", ErrInvalidState)
		}

		var existing models.BoardMember
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !isRecordNotFound(err) {
			return err
		}

		member := models.BoardMember{
			BoardID:  boardID,
			UserID:   userID,
			Role:     models.RoleMember,
			IsActive: board.JoinPermission == models.PermissionOpen,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			if isDuplicate(err) {
				return ErrConflict
			}
			return err
		}

		if !member.IsActive {
			// 待审核成员不计数,审批通过时再加
			return nil
		}
		return bumpBoardMemberCount(tx, boardID, 1)
	})
}

// ApproveMember 审核通过待审成员,此时才计入 member_count
func ApproveMember(boardID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.BoardMember{}).
			Where("board_id = ? AND user_id = ? AND is_active = ?", boardID, userID, false).
			Update("is_active", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return bumpBoardMemberCount(tx, boardID, 1)
	})
}

// LeaveBoard 退出贴吧,创始人不允许退出
func LeaveBoard(boardID, userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var member models.BoardMember
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&member).Error
		if err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if member.Role == models.RoleFounder {
			return fmt.Errorf("%w: founder cannot leave", ErrInvalidState)
		}
		if err := tx.Delete(&member).Error; err != nil {
			return err
		}
		if !member.IsActive {
			return nil
		}
		return bumpBoardMemberCount(tx, boardID, -1)
	})
}

// GetMembership 查成员关系
func GetMembership(boardID, userID uint) (*models.BoardMember, error) {
	var member models.BoardMember
	err := db.DB.Where("board_id = ? AND user_id = ?", boardID, userID).First(&member).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// SetMemberRole 调整成员角色
// 是否有权调整由上层鉴权决定,这里只负责落库
func SetMemberRole(boardID, userID uint, role int16) error {
	result := db.DB.Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// bumpBoardMemberCount 调整吧成员计数,delta 可正可负
func bumpBoardMemberCount(tx *gorm.DB, boardID uint, delta int) error {
	return tx.Model(&models.Board{}).Where("id = ?", boardID).
		UpdateColumn("member_count", gorm.Expr("member_count + ?", delta)).Error
}

// 吧务能力项
type AdminCapability string

const (
	CapManagePosts    AdminCapability = "posts"
	CapManageComments AdminCapability = "comments"
	CapManageMembers  AdminCapability = "members"
	CapManageSettings AdminCapability = "settings"
)

// AppointBoardAdmin 任命吧务,(board, user) 重复任命返回 ErrConflict
func AppointBoardAdmin(boardID, userID uint, admin models.BoardAdmin) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, boardID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}

		var existing models.BoardAdmin
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !isRecordNotFound(err) {
			return err
		}

		admin.BoardID = boardID
		admin.UserID = userID
		admin.AppointedAt = time.Now()
		if err := tx.Create(&admin).Error; err != nil {
			if isDuplicate(err) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
}

// RevokeBoardAdmin 撤销任命
func RevokeBoardAdmin(boardID, userID uint) error {
	result := db.DB.Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&models.BoardAdmin{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasBoardCapability 鉴权时查能力
// 吧主天然拥有全部能力;到期的任命行视为无效,但不删除
func HasBoardCapability(boardID, userID uint, cap AdminCapability) bool {
	var board models.Board
	if err := db.DB.First(&board, boardID).Error; err != nil {
		return false
	}
	if board.OwnerID == userID {
		return true
	}

	var admin models.BoardAdmin
	err := db.DB.Where("board_id = ? AND user_id = ?", boardID, userID).First(&admin).Error
	if err != nil {
		return false
	}
	if admin.ExpiresAt != nil && !admin.ExpiresAt.After(time.Now()) {
		return false
	}

	switch cap {
	case CapManagePosts:
		return admin.CanManagePosts
	case CapManageComments:
		return admin.CanManageComments
	case CapManageMembers:
		return admin.CanManageMembers
	case CapManageSettings:
		return admin.CanManageSettings
	}
	return false
}

// CreateAnnouncement 发布吧公告
func CreateAnnouncement(boardID, authorID uint, title, content string, atype int16, pinned bool, expiresAt *time.Time) (*models.BoardAnnouncement, error) {
	announcement := models.BoardAnnouncement{
		BoardID:   boardID,
		AuthorID:  authorID,
		Title:     title,
		Content:   utils.SanitizeUGC(content),
		Type:      atype,
		IsPinned:  pinned,
		IsActive:  true,
		ExpiresAt: expiresAt,
	}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, boardID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if board.Status != models.BoardStatusActive {
			return fmt.Errorf("%w: board not active", ErrInvalidState)
		}
		return tx.Create(&announcement).Error
	})
	if err != nil {
		return nil, err
	}
	return &announcement, nil
}

// ListAnnouncements 有效公告,置顶优先、新的在前,过期的不出
func ListAnnouncements(boardID uint) ([]models.BoardAnnouncement, error) {
	var announcements []models.BoardAnnouncement
	err := db.DB.Where("board_id = ? AND is_active = ?", boardID, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("is_pinned DESC, created_at DESC").
		Find(&announcements).Error
	return announcements, err
}

// DeleteBoard 删除贴吧
// 级联清理帖子(连同评论/点赞/收藏/浏览/举报)、成员、吧务、公告,
// 并在同一事务里回滚作者与评论者身上的冗余计数
func DeleteBoard(boardID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, boardID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}

		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("board_id = ?", boardID).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			// 作者发帖数回滚(软删除的帖子本来就不计数)
			if err := rollbackAuthorCounts(tx, &models.Post{}, "post_count",
				"board_id = ? AND status <> ?", boardID, models.PostStatusDeleted); err != nil {
				return err
			}
			// 评论者评论数回滚
			if err := rollbackAuthorCounts(tx, &models.Comment{}, "comment_count",
				"post_id IN ? AND status <> ?", postIDs, models.CommentStatusDeleted); err != nil {
				return err
			}

			var commentIDs []uint
			if err := tx.Model(&models.Comment{}).Where("post_id IN ?", postIDs).
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
				if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostCollect{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostViewHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostReport{}).Error; err != nil {
				return err
			}
			if err := tx.Where("board_id = ?", boardID).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("board_id = ?", boardID).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&models.BoardAdmin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&models.BoardAnnouncement{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&board).Error; err != nil {
			return err
		}

		utils.GetCache().Delete(boardCacheKey(board.Name))
		return nil
	})
}

// rollbackAuthorCounts 批量回滚 users 表上的冗余计数
// 按作者聚合待删除的行数,再逐个作者扣减
func rollbackAuthorCounts(tx *gorm.DB, model interface{}, column string, cond string, args ...interface{}) error {
	type authorCount struct {
		AuthorID uint
		Total    int
	}
	var rows []authorCount
	if err := tx.Model(model).Select("author_id, COUNT(*) AS total").
		Where(cond, args...).Group("author_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if err := tx.Model(&models.User{}).Where("id = ?", row.AuthorID).
			UpdateColumn(column, gorm.Expr(column+" - ?", row.Total)).Error; err != nil {
			return err
		}
	}
	return nil
}
