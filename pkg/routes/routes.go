package pkg

import (
	"ProjectTracker/internal/auth"
	"ProjectTracker/internal/communication"
	"ProjectTracker/internal/config"
	"ProjectTracker/internal/dashboard"
	"ProjectTracker/internal/marks"
	"ProjectTracker/internal/notification"
	"ProjectTracker/internal/project"
	"ProjectTracker/pkg/middleware"
	"context"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

var EchoModules = fx.Module("echo",
	fx.Provide(NewEchoServer),
	fx.Provide(config.NewLogger),
	fx.Provide(config.NewMongoDBConfig),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewResendConfig),
	fx.Provide(config.NewEmailService),
	fx.Provide(auth.NewAccountRepository),
	fx.Provide(auth.NewAccountService),
	fx.Provide(auth.NewAuthHandler),
	fx.Provide(notification.NewNotificationRepository),
	fx.Provide(notification.NewNotificationService),
	fx.Provide(notification.NewRefRepository),
	fx.Provide(notification.NewRefResolver),
	fx.Provide(notification.NewSweepRepository),
	fx.Provide(notification.NewSweepService),
	fx.Provide(notification.NewSweepScheduler),
	fx.Provide(notification.NewNotificationHandler),
	fx.Provide(project.NewProjectRepository),
	fx.Provide(project.NewProjectService),
	fx.Provide(project.NewProjectHandler),
	fx.Provide(communication.NewCommunicationRepository),
	fx.Provide(communication.NewCommunicationService),
	fx.Provide(communication.NewCommunicationHandler),
	fx.Provide(marks.NewMarksRepository),
	fx.Provide(marks.NewMarksService),
	fx.Provide(marks.NewMarksHandler),
	fx.Provide(dashboard.NewDashboardRepository),
	fx.Provide(dashboard.NewDashboardHandler),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(StartScheduler),
)

func NewEchoServer(lc fx.Lifecycle) *echo.Echo {
	e := echo.New()
	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:5173"
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{clientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(":" + port); err != nil {
					log.Fatal("Failed to start the server:", err)
				}
			}()
			log.Println("Server running on http://localhost:" + port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("shutting down the server ...")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func StartScheduler(lc fx.Lifecycle, scheduler *notification.SweepScheduler) {
	scheduler.Start(lc)
}

func RegisterRoutes(
	e *echo.Echo,
	authHandler *auth.AuthHandler,
	projectHandler *project.ProjectHandler,
	communicationHandler *communication.CommunicationHandler,
	notificationHandler *notification.NotificationHandler,
	marksHandler *marks.MarksHandler,
	dashboardHandler *dashboard.DashboardHandler,
) {
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/forgot-password", authHandler.ForgotPassword)
	e.POST("/reset-password", authHandler.ResetPassword)

	api := e.Group("/api")
	api.Use(middleware.JWTMiddleware)
	api.Use(middleware.CasbinMiddleware)

	api.GET("/profile", authHandler.Profile)

	// Projects
	api.POST("/projects", projectHandler.Create)
	api.GET("/projects", projectHandler.ListAll)
	api.GET("/projects/mine", projectHandler.Mine)
	api.GET("/projects/guided", projectHandler.ListGuided)
	api.POST("/projects/:id/submit", projectHandler.Submit)
	api.PUT("/projects/:id/approve", projectHandler.Approve)
	api.PUT("/projects/:id/reject", projectHandler.Reject)
	api.GET("/projects/:id/documents", projectHandler.ListDocuments)

	// Documents
	api.POST("/documents", projectHandler.UploadDocument)
	api.PUT("/documents/:id/review", projectHandler.ReviewDocument)

	// Milestones
	api.POST("/milestones", projectHandler.CreateMilestone)
	api.GET("/milestones/mine", projectHandler.ListMilestones)
	api.PUT("/milestones/:id/status", projectHandler.UpdateMilestoneStatus)

	// Teams
	api.POST("/teams", projectHandler.CreateTeam)
	api.GET("/teams/mine", projectHandler.MyTeams)
	api.GET("/teams/:id", projectHandler.Team)

	// Messaging and announcements
	api.POST("/communication/messages", communicationHandler.SendMessage)
	api.GET("/communication/messages/inbox", communicationHandler.Inbox)
	api.GET("/communication/messages/sent", communicationHandler.Sent)
	api.PUT("/communication/messages/:id/read", communicationHandler.MarkMessageRead)
	api.DELETE("/communication/messages/:id", communicationHandler.DeleteMessage)
	api.GET("/communication/announcements", communicationHandler.ListAnnouncements)

	// HOD operations
	api.POST("/hod/assign-guide", projectHandler.AssignGuide)
	api.GET("/hod/staff", authHandler.ListStaff)
	api.POST("/hod/staff", authHandler.CreateStaff)
	api.POST("/hod/announcements", communicationHandler.CreateAnnouncement)
	api.DELETE("/hod/announcements/:id", communicationHandler.DeactivateAnnouncement)

	// Notifications
	api.GET("/notifications", notificationHandler.List)
	api.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	api.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	api.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
	api.DELETE("/notifications/:id", notificationHandler.Delete)
	api.DELETE("/notifications/read", notificationHandler.ClearRead)
	api.POST("/notifications/sweep", notificationHandler.RunSweep)

	// Marks
	api.POST("/marks/assign-marks", marksHandler.AssignMarks)
	api.GET("/marks/mine", marksHandler.MyMarks)
	api.GET("/marks/:studentId/:projectId", marksHandler.ProjectMarks)

	// Dashboards
	api.GET("/dashboard/hod", dashboardHandler.HOD)
	api.GET("/dashboard/staff", dashboardHandler.Staff)
	api.GET("/dashboard/student", dashboardHandler.Student)
}
