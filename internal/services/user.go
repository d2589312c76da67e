package services

import (
	"fmt"
	"time"
	"tieba/internal/db"
	"tieba/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterUser 注册用户,同时创建一对一的资料行和消息设置行
// 用户名/手机号重复返回 ErrConflict
func RegisterUser(username, password string, phone *string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Password: string(hashed),
		Phone:    phone,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%w: username or phone taken", ErrConflict)
			}
			return err
		}
		if err := tx.Create(&models.UserProfile{UserID: user.ID}).Error; err != nil {
			return err
		}
		// 消息设置默认全开
		setting := models.UserMessageSetting{
			UserID:                      user.ID,
			ReceivePrivateMessages:      true,
			ReceiveSystemMessages:       true,
			ReceivePostNotifications:    true,
			ReceiveCommentNotifications: true,
			ReceiveFollowNotifications:  true,
			AllowStrangerMessages:       true,
		}
		return tx.Create(&setting).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthenticateUser 校验用户名密码,成功后记录最后登录 IP
func AuthenticateUser(username, password, ip string) (*models.User, error) {
	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if user.Status == models.UserStatusClosed {
		return nil, fmt.Errorf("%w: account closed", ErrInvalidState)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: bad credentials", ErrNotFound)
	}
	if ip != "" {
		db.DB.Model(&user).UpdateColumn("last_login_ip", ip)
	}
	return &user, nil
}

// GetUser 按 ID 查用户
func GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 按用户名查用户
func GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserProfile 取一对一的详细资料
func GetUserProfile(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateUserProfile 更新详细资料(不含统计字段)
func UpdateUserProfile(userID uint, updates map[string]interface{}) error {
	result := db.DB.Model(&models.UserProfile{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateUser 注销账号 - 仅状态转换,发帖/举报等历史全部保留
func DeactivateUser(userID uint) error {
	result := db.DB.Model(&models.User{}).
		Where("id = ? AND status <> ?", userID, models.UserStatusClosed).
		Update("status", models.UserStatusClosed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FollowUser 关注用户
// 不允许自己关注自己;同一对用户重复关注返回 ErrConflict 且计数不会二次累加
func FollowUser(followerID, followingID uint) error {
	if followerID == followingID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidState)
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, followingID).Error; err != nil {
			if isRecordNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if target.Status == models.UserStatusClosed {
			return fmt.Errorf("%w: account closed", ErrInvalidState)
		}

		// 先查重,唯一索引兜底并发
		var existing models.FollowRelation
		err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !isRecordNotFound(err) {
			return err
		}

		edge := models.FollowRelation{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Create(&edge).Error; err != nil {
			if isDuplicate(err) {
				return ErrConflict
			}
			return err
		}

		// 关注边和双方计数在同一事务内落库
		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + ?", 1)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followingID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + ?", 1)).Error; err != nil {
			return err
		}

		var follower models.User
		if err := tx.First(&follower, followerID).Error; err != nil {
			return err
		}
		return notifyTx(tx, followingID, models.NotificationTypeFollow,
			"新粉丝", fmt.Sprintf("%s 关注了你", follower.Username),
			fmt.Sprintf("/users/%d", followerID))
	})
	return err
}

// UnfollowUser 取消关注,边不存在返回 ErrNotFound
func UnfollowUser(followerID, followingID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.FollowRelation{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count - ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", followingID).
			UpdateColumn("follower_count", gorm.Expr("follower_count - ?", 1)).Error
	})
}

// IsFollowing follower 是否关注了 following
func IsFollowing(followerID, followingID uint) bool {
	var edge models.FollowRelation
	err := db.DB.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&edge).Error
	return err == nil
}

// ListFollowers 粉丝列表(关注时间倒序)
func ListFollowers(userID uint, page, pageSize int) ([]models.User, error) {
	var users []models.User
	err := db.DB.Model(&models.User{}).
		Joins("JOIN follow_relations ON follow_relations.follower_id = users.id").
		Where("follow_relations.following_id = ?", userID).
		Order("follow_relations.created_at DESC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&users).Error
	return users, err
}

// ListFollowing 关注列表(关注时间倒序)
func ListFollowing(userID uint, page, pageSize int) ([]models.User, error) {
	var users []models.User
	err := db.DB.Model(&models.User{}).
		Joins("JOIN follow_relations ON follow_relations.following_id = users.id").
		Where("follow_relations.follower_id = ?", userID).
		Order("follow_relations.created_at DESC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&users).Error
	return users, err
}

// ensureCanPublish 检查用户能否发布内容,禁言到期自动恢复
// 返回加载好的用户行,供调用方复用
func ensureCanPublish(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch user.Status {
	case models.UserStatusClosed:
		return nil, fmt.Errorf("%w: account closed", ErrInvalidState)
	case models.UserStatusBanned:
		return nil, fmt.Errorf("%w: account banned", ErrInvalidState)
	case models.UserStatusMuted:
		// 禁言用户,检查是否已过期
		if user.PunishExpires != nil && time.Now().After(*user.PunishExpires) {
			if err := tx.Model(&user).Updates(map[string]interface{}{
				"status":         models.UserStatusActive,
				"punish_expires": nil,
			}).Error; err != nil {
				return nil, err
			}
			user.Status = models.UserStatusActive
		} else {
			return nil, fmt.Errorf("%w: account muted", ErrInvalidState)
		}
	}
	return &user, nil
}

// offset 分页换算,页码从 1 开始
func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
