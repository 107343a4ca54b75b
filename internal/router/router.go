package router

import (
	"readshelf/internal/drive"
	"readshelf/internal/handlers"
	"readshelf/internal/middleware"
	"readshelf/internal/pdfrender"
	"readshelf/internal/reconcile"
	"readshelf/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the process-wide dependencies handlers are built from.
type Deps struct {
	DB            *gorm.DB
	Storage       drive.Storage
	Channels      handlers.ChannelLookup // optional
	Renderer      *pdfrender.Renderer
	Notifier      *services.Notifier
	Stories       services.StoryUpdates // optional
	DriveFolderID string
}

// RegisterRoutes mounts the JSON API under /api. The session middleware
// must already be installed on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(d.DB)
	userHandler := handlers.NewUserHandler(d.DB)
	notificationHandler := handlers.NewNotificationHandler(d.DB, d.Notifier)
	bookmarkHandler := handlers.NewBookmarkHandler(d.DB, d.Stories)
	commentHandler := handlers.NewCommentHandler(d.DB, d.Notifier)
	voteHandler := handlers.NewVoteHandler(d.DB, d.Notifier)
	bookHandler := handlers.NewBookHandler(d.DB)
	driveHandler := handlers.NewDriveHandler(d.Storage, d.Channels)
	pdfHandler := handlers.NewPDFHandler(d.Storage, d.Renderer)
	adminHandler := handlers.NewAdminHandler(reconcile.DirectSource{Storage: d.Storage, DB: d.DB}, d.DriveFolderID)

	api := r.Group("/api")
	api.Use(middleware.LoadUser(d.DB))

	// 公共路由 (Public Routes)
	api.GET("/health", handlers.Health)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", authHandler.Me)

	api.GET("/all-books", bookHandler.List)
	api.GET("/books/:id", bookHandler.Get)
	api.GET("/get-comments", commentHandler.List)

	api.GET("/list-pdfs/:folder_id", driveHandler.ListPDFs)
	api.POST("/drive/webhook", driveHandler.Webhook)
	api.GET("/pdf/:id", pdfHandler.Pages)
	api.GET("/pdf/:id/cover", pdfHandler.Cover)
	api.GET("/pdf/:id/metadata", pdfHandler.Metadata)
	api.GET("/pdf/:id/raw", pdfHandler.Raw)

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.PUT("/profile", userHandler.UpdateProfile)
		authorized.PUT("/password", userHandler.ChangePassword)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
		authorized.GET("/notification-settings", notificationHandler.GetSettings)
		authorized.PUT("/notification-settings", notificationHandler.UpdateSettings)

		authorized.GET("/bookmarks", bookmarkHandler.List)
		authorized.POST("/bookmarks", bookmarkHandler.Upsert)
		authorized.DELETE("/bookmarks/:book_id", bookmarkHandler.Delete)

		authorized.POST("/add-comment", commentHandler.Create)
		authorized.PUT("/edit-comment/:id", commentHandler.Edit)
		authorized.DELETE("/delete-comment/:id", commentHandler.Delete)
		authorized.POST("/vote-comment/:id", voteHandler.Vote)
	}

	// 管理路由 (Admin Routes)
	admin := api.Group("")
	admin.Use(middleware.AdminRequired(d.DB))
	{
		admin.POST("/books", bookHandler.Create)
		admin.PUT("/books/:id", bookHandler.Update)
		admin.DELETE("/books/:id", bookHandler.Delete)
		admin.GET("/admin/reconcile", adminHandler.Reconcile)
	}
}
