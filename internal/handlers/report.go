package handlers

import (
	"tieba/internal/middleware"
	"tieba/internal/services"
	"tieba/internal/utils"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct{}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

type reportRequest struct {
	Type     int16  `json:"type" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	Evidence string `json:"evidence"`
}

// ReportPost 举报帖子
func (h *ReportHandler) ReportPost(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := services.ReportPost(utils.StringToUint(c.Param("id")), user.ID, req.Type, req.Reason, req.Evidence)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, report)
}

// ReportComment 举报评论
func (h *ReportHandler) ReportComment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := services.ReportComment(utils.StringToUint(c.Param("id")), user.ID, req.Type, req.Reason, req.Evidence)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, report)
}

// canHandleReports 举报处理入口的吧务鉴权
func canHandleReports(c *gin.Context, boardID uint, capability services.AdminCapability) bool {
	user := middleware.CurrentUser(c)
	if services.HasBoardCapability(boardID, user.ID, capability) {
		return true
	}
	Fail(c, services.ErrPermissionDenied)
	return false
}

// ClaimPostReport 认领帖子举报,pending -> in_progress
func (h *ReportHandler) ClaimPostReport(c *gin.Context) {
	report, err := services.GetPostReport(utils.StringToUint(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	post, err := services.GetPost(report.PostID)
	if err != nil {
		Fail(c, err)
		return
	}
	if !canHandleReports(c, post.BoardID, services.CapManagePosts) {
		return
	}
	if err := services.ClaimPostReport(report.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "claimed"})
}

// ResolvePostReport 举报成立
func (h *ReportHandler) ResolvePostReport(c *gin.Context) {
	h.finishPostReport(c, services.ResolvePostReport)
}

// RejectPostReport 举报不成立
func (h *ReportHandler) RejectPostReport(c *gin.Context) {
	h.finishPostReport(c, services.RejectPostReport)
}

func (h *ReportHandler) finishPostReport(c *gin.Context, finish func(reportID, handlerID uint, result string) error) {
	user := middleware.CurrentUser(c)

	var req struct {
		Result string `json:"result" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := services.GetPostReport(utils.StringToUint(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	post, err := services.GetPost(report.PostID)
	if err != nil {
		Fail(c, err)
		return
	}
	if !canHandleReports(c, post.BoardID, services.CapManagePosts) {
		return
	}
	if err := finish(report.ID, user.ID, req.Result); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "handled"})
}

// ClaimCommentReport 认领评论举报
func (h *ReportHandler) ClaimCommentReport(c *gin.Context) {
	report, err := services.GetCommentReport(utils.StringToUint(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	boardID, err := boardOfComment(report.CommentID)
	if err != nil {
		Fail(c, err)
		return
	}
	if !canHandleReports(c, boardID, services.CapManageComments) {
		return
	}
	if err := services.ClaimCommentReport(report.ID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "claimed"})
}

// ResolveCommentReport 评论举报成立
func (h *ReportHandler) ResolveCommentReport(c *gin.Context) {
	h.finishCommentReport(c, services.ResolveCommentReport)
}

// RejectCommentReport 评论举报不成立
func (h *ReportHandler) RejectCommentReport(c *gin.Context) {
	h.finishCommentReport(c, services.RejectCommentReport)
}

func (h *ReportHandler) finishCommentReport(c *gin.Context, finish func(reportID, handlerID uint, result string) error) {
	user := middleware.CurrentUser(c)

	var req struct {
		Result string `json:"result" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := services.GetCommentReport(utils.StringToUint(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	boardID, err := boardOfComment(report.CommentID)
	if err != nil {
		Fail(c, err)
		return
	}
	if !canHandleReports(c, boardID, services.CapManageComments) {
		return
	}
	if err := finish(report.ID, user.ID, req.Result); err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"message": "handled"})
}

func boardOfComment(commentID uint) (uint, error) {
	comment, err := services.GetComment(commentID)
	if err != nil {
		return 0, err
	}
	post, err := services.GetPost(comment.PostID)
	if err != nil {
		return 0, err
	}
	return post.BoardID, nil
}

// ListPostReports 帖子举报列表,可按状态过滤
func (h *ReportHandler) ListPostReports(c *gin.Context) {
	page, pageSize := pagination(c)

	var status *int16
	if v := c.Query("status"); v != "" {
		s := int16(utils.StringToInt(v))
		status = &s
	}

	reports, err := services.ListPostReports(status, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, reports)
}

// ListCommentReports 评论举报列表
func (h *ReportHandler) ListCommentReports(c *gin.Context) {
	page, pageSize := pagination(c)

	var status *int16
	if v := c.Query("status"); v != "" {
		s := int16(utils.StringToInt(v))
		status = &s
	}

	reports, err := services.ListCommentReports(status, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, reports)
}
