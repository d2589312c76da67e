package handlers

import (
	"time"

	"tieba/internal/middleware"
	"tieba/internal/models"
	"tieba/internal/services"
	"tieba/internal/utils"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct{}

func NewBoardHandler() *BoardHandler {
	return &BoardHandler{}
}

// Create 创建贴吧,创建者自动成为吧主
func (h *BoardHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		Name        string `json:"name" binding:"required,min=2,max=50"`
		Description string `json:"description"`
		CategoryID  *uint  `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	board, err := services.CreateBoard(user.ID, req.Name, req.Description, req.CategoryID)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, board)
}

// Show 贴吧详情
func (h *BoardHandler) Show(c *gin.Context) {
	board, err := services.GetBoard(utils.StringToUint(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, board)
}

// ShowByName 按名称查贴吧(走缓存)
func (h *BoardHandler) ShowByName(c *gin.Context) {
	board, err := services.GetBoardByName(c.Param("name"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, board)
}

// List 贴吧列表,可按分类过滤
func (h *BoardHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	var categoryID *uint
	if v := c.Query("category_id"); v != "" {
		id := utils.StringToUint(v)
		categoryID = &id
	}

	boards, err := services.ListBoards(categoryID, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, boards)
}

// Join 加入贴吧
func (h *BoardHandler) Join(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.JoinBoard(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "joined"})
}

// Leave 退出贴吧
func (h *BoardHandler) Leave(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.LeaveBoard(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "left"})
}

// ApproveMember 审批制贴吧的入吧申请,仅限有成员管理权限者
func (h *BoardHandler) ApproveMember(c *gin.Context) {
	user := middleware.CurrentUser(c)
	boardID := utils.StringToUint(c.Param("id"))
	memberID := utils.StringToUint(c.Param("user_id"))

	if !services.HasBoardCapability(boardID, user.ID, services.CapManageMembers) {
		Fail(c, services.ErrPermissionDenied)
		return
	}
	if err := services.ApproveMember(boardID, memberID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "approved"})
}

// AppointAdmin 任命小吧主
func (h *BoardHandler) AppointAdmin(c *gin.Context) {
	user := middleware.CurrentUser(c)
	boardID := utils.StringToUint(c.Param("id"))

	var req struct {
		UserID         uint       `json:"user_id" binding:"required"`
		ManagePosts    bool       `json:"can_manage_posts"`
		ManageComments bool       `json:"can_manage_comments"`
		ManageMembers  bool       `json:"can_manage_members"`
		ManageSettings bool       `json:"can_manage_settings"`
		ExpiresAt      *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if !services.HasBoardCapability(boardID, user.ID, services.CapManageMembers) {
		Fail(c, services.ErrPermissionDenied)
		return
	}
	err := services.AppointBoardAdmin(boardID, req.UserID, models.BoardAdmin{
		CanManagePosts:    req.ManagePosts,
		CanManageComments: req.ManageComments,
		CanManageMembers:  req.ManageMembers,
		CanManageSettings: req.ManageSettings,
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "appointed"})
}

// RevokeAdmin 撤销小吧主
func (h *BoardHandler) RevokeAdmin(c *gin.Context) {
	user := middleware.CurrentUser(c)
	boardID := utils.StringToUint(c.Param("id"))
	adminID := utils.StringToUint(c.Param("user_id"))

	if !services.HasBoardCapability(boardID, user.ID, services.CapManageMembers) {
		Fail(c, services.ErrPermissionDenied)
		return
	}
	if err := services.RevokeBoardAdmin(boardID, adminID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "revoked"})
}

// CreateAnnouncement 发公告,仅限有设置管理权限者
func (h *BoardHandler) CreateAnnouncement(c *gin.Context) {
	user := middleware.CurrentUser(c)
	boardID := utils.StringToUint(c.Param("id"))

	var req struct {
		Title     string     `json:"title" binding:"required"`
		Content   string     `json:"content" binding:"required"`
		Type      int16      `json:"type"`
		Pinned    bool       `json:"pinned"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if !services.HasBoardCapability(boardID, user.ID, services.CapManageSettings) {
		Fail(c, services.ErrPermissionDenied)
		return
	}
	ann, err := services.CreateAnnouncement(boardID, user.ID, req.Title, req.Content, req.Type, req.Pinned, req.ExpiresAt)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, ann)
}

// Announcements 公告列表,置顶优先
func (h *BoardHandler) Announcements(c *gin.Context) {
	anns, err := services.ListAnnouncements(utils.StringToUint(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, anns)
}

// Delete 解散贴吧,仅限吧主
func (h *BoardHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	boardID := utils.StringToUint(c.Param("id"))

	board, err := services.GetBoard(boardID)
	if err != nil {
		Fail(c, err)
		return
	}
	if board.OwnerID != user.ID {
		Fail(c, services.ErrPermissionDenied)
		return
	}
	if err := services.DeleteBoard(boardID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "board deleted"})
}
