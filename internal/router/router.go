package router

import (
	"tieba/internal/handlers"
	"tieba/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	userHandler := handlers.NewUserHandler()
	boardHandler := handlers.NewBoardHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	messageHandler := handlers.NewMessageHandler()
	notificationHandler := handlers.NewNotificationHandler()
	reportHandler := handlers.NewReportHandler()

	// 公共路由 (Public Routes)
	r.POST("/signup", authHandler.Register) // 注册
	r.POST("/login", authHandler.Login)     // 登录
	r.POST("/logout", authHandler.Logout)   // 退出登录

	r.GET("/u/:id", userHandler.Profile)             // 用户主页
	r.GET("/u/:id/followers", userHandler.Followers) // 粉丝列表
	r.GET("/u/:id/following", userHandler.Following) // 关注列表

	r.GET("/boards", boardHandler.List)                       // 贴吧列表
	r.GET("/b/:id", boardHandler.Show)                        // 贴吧详情
	r.GET("/b/name/:name", boardHandler.ShowByName)           // 按名称查贴吧
	r.GET("/b/:id/announcements", boardHandler.Announcements) // 吧公告列表
	r.GET("/posts", postHandler.List)                         // 帖子列表
	r.GET("/p/:id", postHandler.Show)                         // 帖子详情
	r.GET("/p/:id/comments", commentHandler.ListByPost)       // 楼层列表
	r.GET("/comment/:id/replies", commentHandler.Replies)     // 楼中楼列表

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/u/:id/follow", userHandler.Follow)                     // 关注用户
		authorized.DELETE("/u/:id/follow", userHandler.Unfollow)                 // 取消关注
		authorized.POST("/settings/profile", userHandler.UpdateProfile)          // 更新个人资料
		authorized.POST("/settings/messages", userHandler.UpdateMessageSettings) // 私信/通知开关
		authorized.POST("/account/deactivate", userHandler.Deactivate)           // 注销账号

		authorized.POST("/boards", boardHandler.Create)                                // 创建贴吧
		authorized.POST("/b/:id/join", boardHandler.Join)                              // 加入贴吧
		authorized.POST("/b/:id/leave", boardHandler.Leave)                            // 退出贴吧
		authorized.DELETE("/b/:id", boardHandler.Delete)                               // 解散贴吧
		authorized.POST("/b/:id/members/:user_id/approve", boardHandler.ApproveMember) // 审批入吧申请
		authorized.POST("/b/:id/admins", boardHandler.AppointAdmin)                    // 任命小吧主
		authorized.DELETE("/b/:id/admins/:user_id", boardHandler.RevokeAdmin)          // 撤销小吧主
		authorized.POST("/b/:id/announcements", boardHandler.CreateAnnouncement)       // 发公告

		authorized.POST("/posts", postHandler.Create)              // 发帖
		authorized.POST("/p/:id/publish", postHandler.Publish)     // 草稿发布
		authorized.POST("/p/:id/edit", postHandler.Update)         // 编辑帖子
		authorized.DELETE("/p/:id", postHandler.Delete)            // 删帖
		authorized.POST("/p/:id/like", postHandler.Like)           // 点赞
		authorized.DELETE("/p/:id/like", postHandler.Unlike)       // 取消点赞
		authorized.POST("/p/:id/collect", postHandler.Collect)     // 收藏
		authorized.DELETE("/p/:id/collect", postHandler.Uncollect) // 取消收藏
		authorized.POST("/p/:id/share", postHandler.Share)         // 转发计数
		authorized.POST("/p/:id/report", reportHandler.ReportPost) // 举报帖子

		authorized.POST("/comments", commentHandler.Create)                 // 回帖/楼中楼
		authorized.DELETE("/comment/:id", commentHandler.Delete)            // 删评论
		authorized.POST("/comment/:id/like", commentHandler.Like)           // 点赞评论
		authorized.DELETE("/comment/:id/like", commentHandler.Unlike)       // 取消点赞评论
		authorized.POST("/comment/:id/report", reportHandler.ReportComment) // 举报评论

		authorized.POST("/messages", messageHandler.Send)                   // 发私信
		authorized.GET("/conversations", messageHandler.Conversations)      // 会话列表
		authorized.GET("/conversations/:id", messageHandler.Messages)       // 会话消息记录
		authorized.POST("/conversations/:id/read", messageHandler.MarkRead) // 会话已读
		authorized.DELETE("/messages/:id", messageHandler.DeleteMessage)    // 单侧删除消息
		authorized.POST("/blacklist", messageHandler.Block)                 // 拉黑
		authorized.DELETE("/blacklist/:id", messageHandler.Unblock)         // 解除拉黑

		authorized.GET("/notifications", notificationHandler.List)                  // 我的通知
		authorized.POST("/notifications/:id/read", notificationHandler.MarkRead)    // 单条已读
		authorized.POST("/notifications/read-all", notificationHandler.MarkAllRead) // 全部已读
	}

	// 吧务路由 (Moderation Routes)
	mod := r.Group("/mod")
	mod.Use(middleware.AuthRequired())
	{
		mod.GET("/reports/posts", reportHandler.ListPostReports)       // 帖子举报列表
		mod.GET("/reports/comments", reportHandler.ListCommentReports) // 评论举报列表

		mod.POST("/reports/posts/:id/claim", reportHandler.ClaimPostReport)     // 认领帖子举报
		mod.POST("/reports/posts/:id/resolve", reportHandler.ResolvePostReport) // 举报成立
		mod.POST("/reports/posts/:id/reject", reportHandler.RejectPostReport)   // 举报不成立

		mod.POST("/reports/comments/:id/claim", reportHandler.ClaimCommentReport)     // 认领评论举报
		mod.POST("/reports/comments/:id/resolve", reportHandler.ResolveCommentReport) // 评论举报成立
		mod.POST("/reports/comments/:id/reject", reportHandler.RejectCommentReport)   // 评论举报不成立
	}
}
