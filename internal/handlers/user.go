package handlers

import (
	"tieba/internal/middleware"
	"tieba/internal/services"
	"tieba/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile 用户主页:基础信息 + 详细资料
func (h *UserHandler) Profile(c *gin.Context) {
	userID := utils.StringToUint(c.Param("id"))

	user, err := services.GetUser(userID)
	if err != nil {
		Fail(c, err)
		return
	}
	profile, err := services.GetUserProfile(userID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"user": user, "profile": profile})
}

// UpdateProfile 更新自己的详细资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		Location string `json:"location"`
		Website  string `json:"website"`
		Company  string `json:"company"`
		School   string `json:"school"`
		Github   string `json:"github"`
		Twitter  string `json:"twitter"`
		Weibo    string `json:"weibo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	err := services.UpdateUserProfile(user.ID, map[string]interface{}{
		"location": req.Location,
		"website":  req.Website,
		"company":  req.Company,
		"school":   req.School,
		"github":   req.Github,
		"twitter":  req.Twitter,
		"weibo":    req.Weibo,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "updated"})
}

// Follow 关注
func (h *UserHandler) Follow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	targetID := utils.StringToUint(c.Param("id"))

	if err := services.FollowUser(user.ID, targetID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "followed"})
}

// Unfollow 取消关注
func (h *UserHandler) Unfollow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	targetID := utils.StringToUint(c.Param("id"))

	if err := services.UnfollowUser(user.ID, targetID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "unfollowed"})
}

// Followers 粉丝列表
func (h *UserHandler) Followers(c *gin.Context) {
	userID := utils.StringToUint(c.Param("id"))
	page, pageSize := pagination(c)

	users, err := services.ListFollowers(userID, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, users)
}

// Following 关注列表
func (h *UserHandler) Following(c *gin.Context) {
	userID := utils.StringToUint(c.Param("id"))
	page, pageSize := pagination(c)

	users, err := services.ListFollowing(userID, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, users)
}

// Deactivate 注销自己的账号(软删除,历史内容保留)
func (h *UserHandler) Deactivate(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.DeactivateUser(user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "account closed"})
}

// UpdateMessageSettings 私信/通知开关
func (h *UserHandler) UpdateMessageSettings(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		ReceivePrivateMessages      *bool `json:"receive_private_messages"`
		ReceiveSystemMessages       *bool `json:"receive_system_messages"`
		ReceivePostNotifications    *bool `json:"receive_post_notifications"`
		ReceiveCommentNotifications *bool `json:"receive_comment_notifications"`
		ReceiveFollowNotifications  *bool `json:"receive_follow_notifications"`
		AllowStrangerMessages       *bool `json:"allow_stranger_messages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.ReceivePrivateMessages != nil {
		updates["receive_private_messages"] = *req.ReceivePrivateMessages
	}
	if req.ReceiveSystemMessages != nil {
		updates["receive_system_messages"] = *req.ReceiveSystemMessages
	}
	if req.ReceivePostNotifications != nil {
		updates["receive_post_notifications"] = *req.ReceivePostNotifications
	}
	if req.ReceiveCommentNotifications != nil {
		updates["receive_comment_notifications"] = *req.ReceiveCommentNotifications
	}
	if req.ReceiveFollowNotifications != nil {
		updates["receive_follow_notifications"] = *req.ReceiveFollowNotifications
	}
	if req.AllowStrangerMessages != nil {
		updates["allow_stranger_messages"] = *req.AllowStrangerMessages
	}
	if len(updates) == 0 {
		BadRequest(c, "nothing to update")
		return
	}

	if err := services.UpdateMessageSetting(user.ID, updates); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "updated"})
}
