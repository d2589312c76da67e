package handlers

import (
	"tieba/internal/middleware"
	"tieba/internal/services"
	"tieba/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// Create 回帖或楼中楼
func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		PostID   uint   `json:"post_id" binding:"required"`
		Content  string `json:"content" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	comment, err := services.CreateComment(req.PostID, user.ID, req.Content, req.ParentID)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, comment)
}

// ListByPost 帖子的楼层列表,楼层号升序,软删除的占楼也出
func (h *CommentHandler) ListByPost(c *gin.Context) {
	page, pageSize := pagination(c)

	comments, err := services.ListCommentsByPost(utils.StringToUint(c.Param("id")), page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, comments)
}

// Replies 楼中楼列表,时间升序
func (h *CommentHandler) Replies(c *gin.Context) {
	page, pageSize := pagination(c)

	replies, err := services.ListReplies(utils.StringToUint(c.Param("id")), page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, replies)
}

// Delete 删评论(软删除),作者或有评论管理权限的吧务
func (h *CommentHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	commentID := utils.StringToUint(c.Param("id"))

	comment, err := services.GetComment(commentID)
	if err != nil {
		Fail(c, err)
		return
	}
	if comment.AuthorID != user.ID {
		post, err := services.GetPost(comment.PostID)
		if err != nil {
			Fail(c, err)
			return
		}
		if !services.HasBoardCapability(post.BoardID, user.ID, services.CapManageComments) {
			Fail(c, services.ErrPermissionDenied)
			return
		}
	}
	if err := services.SoftDeleteComment(commentID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "deleted"})
}

// Like 点赞评论
func (h *CommentHandler) Like(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.LikeComment(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "liked"})
}

// Unlike 取消点赞评论
func (h *CommentHandler) Unlike(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.UnlikeComment(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "unliked"})
}
