package handlers

import (
	"tieba/internal/middleware"
	"tieba/internal/services"
	"tieba/internal/utils"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct{}

func NewMessageHandler() *MessageHandler {
	return &MessageHandler{}
}

// Send 发私信
func (h *MessageHandler) Send(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		ReceiverID uint   `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
		Type       int16  `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	msg, err := services.SendMessage(user.ID, req.ReceiverID, req.Content, req.Type)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, msg)
}

// Conversations 会话列表,最近更新在前
func (h *MessageHandler) Conversations(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, pageSize := pagination(c)

	convs, err := services.ListConversations(user.ID, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, convs)
}

// Messages 某个会话的消息记录
func (h *MessageHandler) Messages(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, pageSize := pagination(c)

	msgs, err := services.ListMessages(utils.StringToUint(c.Param("id")), user.ID, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, msgs)
}

// MarkRead 把会话里发给自己的消息全部置为已读
func (h *MessageHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.MarkConversationRead(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "read"})
}

// DeleteMessage 单侧删除消息,对方仍然可见
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.DeleteMessageForUser(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "deleted"})
}

// Block 拉黑
func (h *MessageHandler) Block(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := services.BlockUser(user.ID, req.UserID, req.Reason); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "blocked"})
}

// Unblock 解除拉黑
func (h *MessageHandler) Unblock(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.UnblockUser(user.ID, utils.StringToUint(c.Param("id"))); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "unblocked"})
}
