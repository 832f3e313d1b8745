package router

import (
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"StaffHub/config"
	"StaffHub/internal/handler"
	"StaffHub/internal/middleware"
	"StaffHub/internal/model"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.RequestMetrics())

	registerMedia(h)

	v1 := h.Group("/v1")

	auth := v1.Group("/auth", middleware.LoginRateLimitMiddleware())
	{
		auth.POST("/token", handler.Login)
		auth.POST("/refresh", handler.RefreshToken)
	}

	api := v1.Group("", middleware.Auth()...)
	api.Use(middleware.GeneralRateLimitMiddleware())

	{
		api.GET("/me", handler.GetMe)
		api.POST("/me/avatar", handler.UploadAvatar)
		api.GET("/employees", handler.SearchEmployees)
	}

	{
		api.GET("/sections", handler.ListSections)
		api.GET("/forms", handler.ListForms)
		api.GET("/forms/:id", handler.GetForm)
		api.GET("/forms/:id/preview", handler.PreviewForm)
	}

	{
		api.POST("/notifications", handler.SendNotification)
		api.GET("/notifications", handler.ListNotifications)
		api.GET("/user-notifications", handler.ListMyNotifications)
		api.GET("/user-notifications/unread-count", handler.UnreadNotificationCount)
		api.POST("/user-notifications/:id/read", handler.MarkNotificationRead)
	}

	complaints := api.Group("/complaints")
	{
		complaints.POST("", middleware.ComplaintRateLimitMiddleware(), handler.SubmitComplaint)
		complaints.GET("/mine", handler.MyComplaints)
		complaints.GET("/inbox", handler.ComplaintInbox)
		complaints.GET("/has-unread", handler.ComplaintsHasUnread)
		complaints.POST("/mark-all-seen", handler.MarkAllComplaintsSeen)
		complaints.GET("/:id", handler.GetComplaint)
		complaints.POST("/:id/reply", handler.ReplyComplaint)
		complaints.POST("/:id/mark-seen", handler.MarkComplaintSeen)
	}

	surveys := api.Group("/surveys")
	{
		surveys.POST("", handler.CreateSurvey)
		surveys.GET("", handler.ListSurveys)
		surveys.GET("/:id", handler.GetSurvey)
		surveys.PUT("/:id", handler.UpdateSurvey)
		surveys.DELETE("/:id", handler.DeleteSurvey)
		surveys.POST("/:id/change-status", handler.ChangeSurveyStatus)
		surveys.POST("/:id/submit", handler.SubmitSurvey)
		surveys.GET("/:id/results", handler.SurveyResults)
		surveys.GET("/:id/my-submission", handler.MySurveySubmission)
	}

	tasks := api.Group("/tasks")
	{
		tasks.POST("", handler.CreateTask)
		tasks.GET("", handler.ListTasks)
		tasks.GET("/:id", handler.GetTask)
		tasks.PUT("/:id", handler.UpdateTask)
		tasks.DELETE("/:id", handler.DeleteTask)
		tasks.POST("/:id/cancel", handler.CloseTask(model.TaskStatusCancelled))
		tasks.POST("/:id/mark-failed", handler.CloseTask(model.TaskStatusFailed))
		tasks.POST("/:id/mark-success", handler.CloseTask(model.TaskStatusSuccess))
		tasks.POST("/:id/complete-next-phase", handler.CompleteNextPhase)
		tasks.GET("/:id/comments", handler.ListTaskComments)
		tasks.POST("/:id/comments", handler.AddTaskComment)
	}

	{
		api.POST("/points/adjust", handler.AdjustPoints)
		api.GET("/points/logs", handler.PointLogs)
		api.POST("/points/reconcile/:user_id", handler.ReconcilePoints)
		api.GET("/honorboard", handler.HonorBoard)
		api.PATCH("/honorboard/toggle", handler.ToggleHonorBoard)
		api.POST("/honorboard/toggle", handler.ToggleHonorBoard)
	}
}

// registerMedia serves uploaded files under MEDIA_URL from MEDIA_ROOT.
func registerMedia(h *server.Hertz) {
	prefix := "/" + strings.Trim(config.Cfg.MediaURL, "/")
	if prefix == "/" {
		return
	}
	h.StaticFS(prefix, &app.FS{
		Root:        config.Cfg.MediaRoot,
		PathRewrite: app.NewPathSlashesStripper(strings.Count(prefix, "/")),
	})
}
