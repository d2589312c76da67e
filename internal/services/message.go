package services

import (
	"fmt"
	"time"
	"tieba/internal/db"
	"tieba/internal/models"
	"tieba/internal/utils"

	"gorm.io/gorm"
)

// canonicalPair 无序用户对归一化:小 ID 在前
// A->B 和 B->A 都会落到同一行会话上
func canonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreateConversation 按归一化的用户对取会话,没有就建
// 双方同时首次互发时靠 (user1, user2) 唯一索引裁决:
// 先写入的赢,后写入的吃到冲突后改为复用已有行
func GetOrCreateConversation(userA, userB uint) (*models.Conversation, error) {
	u1, u2 := canonicalPair(userA, userB)

	var conversation models.Conversation
	err := db.DB.Where("user1_id = ? AND user2_id = ?", u1, u2).First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !isRecordNotFound(err) {
		return nil, err
	}

	conversation = models.Conversation{User1ID: u1, User2ID: u2}
	if err := db.DB.Create(&conversation).Error; err != nil {
		if isDuplicate(err) {
			// 并发首次互发,对方已建好,复用
			var existing models.Conversation
			if err := db.DB.Where("user1_id = ? AND user2_id = ?", u1, u2).
				First(&existing).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// SendMessage 发私信
// 黑名单和陌生人设置在写入前检查;消息行、message_count、
// 接收方一侧的未读数、last_message 同一事务落库
func SendMessage(senderID, receiverID uint, content string, mtype int16) (*models.PrivateMessage, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidState)
	}
	if mtype == 0 {
		mtype = models.MessageTypeText
	}

	var receiver models.User
	if err := db.DB.First(&receiver, receiverID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if receiver.Status == models.UserStatusClosed {
		return nil, fmt.Errorf("%w: account closed", ErrInvalidState)
	}

	// 黑名单:接收方拉黑了发送方
	var blocked models.MessageBlacklist
	err := db.DB.Where("user_id = ? AND blocked_user_id = ?", receiverID, senderID).
		First(&blocked).Error
	if err == nil {
		return nil, fmt.Errorf("%w: blocked by receiver", ErrPermissionDenied)
	}
	if !isRecordNotFound(err) {
		return nil, err
	}

	// 消息设置:关闭私信,或只收关注的人的私信
	var setting models.UserMessageSetting
	if err := db.DB.Where("user_id = ?", receiverID).First(&setting).Error; err == nil {
		if !setting.ReceivePrivateMessages {
			return nil, fmt.Errorf("%w: receiver disabled private messages", ErrPermissionDenied)
		}
		if !setting.AllowStrangerMessages && !IsFollowing(receiverID, senderID) {
			return nil, fmt.Errorf("%w: receiver only accepts messages from followed users", ErrPermissionDenied)
		}
	}

	conversation, err := GetOrCreateConversation(senderID, receiverID)
	if err != nil {
		return nil, err
	}

	message := models.PrivateMessage{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        utils.SanitizeText(content),
		Type:           mtype,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		// 未读数只加在接收方一侧
		unreadColumn := "unread_count_user1"
		if receiverID == conversation.User2ID {
			unreadColumn = "unread_count_user2"
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conversation.ID).
			UpdateColumns(map[string]interface{}{
				"message_count":   gorm.Expr("message_count + ?", 1),
				unreadColumn:      gorm.Expr(unreadColumn+" + ?", 1),
				"last_message_id": message.ID,
				"updated_at":      time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkConversationRead 已读回执
// 给未读消息补上 read_at,未读数按本次实际标记的条数递减:
// 标记期间并发送达的新消息不在本次 UPDATE 内,不能直接清零
func MarkConversationRead(conversationID, readerID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		conversation, err := loadConversationFor(tx, conversationID, readerID)
		if err != nil {
			return err
		}

		result := tx.Model(&models.PrivateMessage{}).
			Where("conversation_id = ? AND receiver_id = ? AND is_read = ?",
				conversationID, readerID, false).
			Updates(map[string]interface{}{
				"is_read": true,
				"read_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		unreadColumn := "unread_count_user1"
		if readerID == conversation.User2ID {
			unreadColumn = "unread_count_user2"
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conversationID).
			UpdateColumn(unreadColumn, gorm.Expr(unreadColumn+" - ?", result.RowsAffected)).Error
	})
}

// ListConversations 用户的会话列表,最近活跃在前
func ListConversations(userID uint, page, pageSize int) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := db.DB.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("updated_at DESC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&conversations).Error
	return conversations, err
}

// ListMessages 会话内的消息,最新在前
// 请求方单侧删除过的消息不再返回
func ListMessages(conversationID, userID uint, page, pageSize int) ([]models.PrivateMessage, error) {
	if _, err := loadConversationFor(db.DB, conversationID, userID); err != nil {
		return nil, err
	}

	query := db.DB.Where("conversation_id = ?", conversationID).
		Where("(sender_id = ? AND is_deleted_by_sender = ?) OR (receiver_id = ? AND is_deleted_by_receiver = ?)",
			userID, false, userID, false)

	var messages []models.PrivateMessage
	err := query.Order("created_at DESC").
		Offset(offset(page, pageSize)).Limit(pageSize).
		Find(&messages).Error
	return messages, err
}

// DeleteMessageForUser 单侧删除消息,只动自己一侧的标记,物理行保留
func DeleteMessageForUser(messageID, userID uint) error {
	var message models.PrivateMessage
	if err := db.DB.First(&message, messageID).Error; err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return err
	}

	switch userID {
	case message.SenderID:
		return db.DB.Model(&message).Update("is_deleted_by_sender", true).Error
	case message.ReceiverID:
		return db.DB.Model(&message).Update("is_deleted_by_receiver", true).Error
	}
	return ErrNotFound
}

// BlockUser 拉黑,重复拉黑返回 ErrConflict
func BlockUser(userID, blockedUserID uint, reason string) error {
	if userID == blockedUserID {
		return fmt.Errorf("%w: cannot block yourself", ErrInvalidState)
	}

	var existing models.MessageBlacklist
	err := db.DB.Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		First(&existing).Error
	if err == nil {
		return ErrConflict
	}
	if !isRecordNotFound(err) {
		return err
	}

	entry := models.MessageBlacklist{
		UserID:        userID,
		BlockedUserID: blockedUserID,
		Reason:        reason,
	}
	if err := db.DB.Create(&entry).Error; err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// UnblockUser 取消拉黑
func UnblockUser(userID, blockedUserID uint) error {
	result := db.DB.Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Delete(&models.MessageBlacklist{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMessageSetting 更新消息设置
func UpdateMessageSetting(userID uint, updates map[string]interface{}) error {
	result := db.DB.Model(&models.UserMessageSetting{}).
		Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// loadConversationFor 加载会话并校验参与方
// 非参与者一律按不存在处理,避免探测他人会话
func loadConversationFor(tx *gorm.DB, conversationID, userID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := tx.First(&conversation, conversationID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if conversation.User1ID != userID && conversation.User2ID != userID {
		return nil, ErrNotFound
	}
	return &conversation, nil
}
