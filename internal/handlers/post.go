package handlers

import (
	"tieba/internal/middleware"
	"tieba/internal/services"
	"tieba/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// Create 发帖
func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		BoardID uint   `json:"board_id" binding:"required"`
		Title   string `json:"title" binding:"required,max=200"`
		Content string `json:"content" binding:"required"`
		Type    int16  `json:"type"`
		Draft   bool   `json:"draft"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	post, err := services.CreatePost(services.CreatePostInput{
		BoardID:  req.BoardID,
		AuthorID: user.ID,
		Title:    req.Title,
		Content:  req.Content,
		Type:     req.Type,
		Draft:    req.Draft,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, post)
}

// Publish 草稿发布
func (h *PostHandler) Publish(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.PublishDraft(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "published"})
}

// Show 帖子详情,顺带记一次浏览
func (h *PostHandler) Show(c *gin.Context) {
	postID := utils.StringToUint(c.Param("id"))

	post, err := services.GetPost(postID)
	if err != nil {
		Fail(c, err)
		return
	}
	if user := middleware.CurrentUser(c); user != nil {
		// 浏览记录失败不影响帖子展示
		_ = services.RecordPostView(postID, user.ID, c.ClientIP(), c.Request.UserAgent())
	}
	OK(c, post)
}

// List 帖子列表,可按吧、作者、状态过滤
func (h *PostHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	opts := services.ListPostsOptions{Page: page, PageSize: pageSize}
	if v := c.Query("board_id"); v != "" {
		id := utils.StringToUint(v)
		opts.BoardID = &id
	}
	if v := c.Query("author_id"); v != "" {
		id := utils.StringToUint(v)
		opts.AuthorID = &id
	}

	posts, err := services.ListPosts(opts)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, posts)
}

// Update 编辑帖子,仅限作者
func (h *PostHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		Title   string `json:"title" binding:"required,max=200"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := services.UpdatePost(utils.StringToUint(c.Param("id")), user.ID, req.Title, req.Content); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "updated"})
}

// Delete 删帖(软删除),作者或有帖子管理权限的吧务
func (h *PostHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	postID := utils.StringToUint(c.Param("id"))

	post, err := services.GetPost(postID)
	if err != nil {
		Fail(c, err)
		return
	}
	if post.AuthorID != user.ID && !services.HasBoardCapability(post.BoardID, user.ID, services.CapManagePosts) {
		Fail(c, services.ErrPermissionDenied)
		return
	}
	if err := services.SoftDeletePost(postID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "deleted"})
}

// Like 点赞
func (h *PostHandler) Like(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.LikePost(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "liked"})
}

// Unlike 取消点赞
func (h *PostHandler) Unlike(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.UnlikePost(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "unliked"})
}

// Collect 收藏
func (h *PostHandler) Collect(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.CollectPost(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "collected"})
}

// Uncollect 取消收藏
func (h *PostHandler) Uncollect(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := services.UncollectPost(utils.StringToUint(c.Param("id")), user.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "uncollected"})
}

// Share 转发计数
func (h *PostHandler) Share(c *gin.Context) {
	if err := services.SharePost(utils.StringToUint(c.Param("id"))); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "shared"})
}
