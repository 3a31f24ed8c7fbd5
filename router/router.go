package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/controllers"
	"github.com/velourbar/members-app/middlewares"
	"github.com/velourbar/members-app/services"
)

func SetupRouter(db *gorm.DB, matchingSvc *services.MatchingService, rateLimiter *middlewares.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(rateLimiter.RateLimit())

	userCtrl := controllers.NewUserController(db)
	matchingCtrl := controllers.NewMatchingController(matchingSvc)
	notificationCtrl := controllers.NewNotificationController(db)
	membershipCtrl := controllers.NewMembershipController(db)
	visitPlanCtrl := controllers.NewVisitPlanController(db)
	eventCtrl := controllers.NewEventController(db)
	blogCtrl := controllers.NewBlogController(db)
	adminCtrl := controllers.NewAdminController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/register", userCtrl.Register)
		auth.POST("/login", userCtrl.Login)
	}

	// Marketing pages: published events and blog posts
	api.GET("/events", eventCtrl.GetPublishedEvents)
	api.GET("/events/:event_id", eventCtrl.GetEventByID)
	api.GET("/blog", blogCtrl.GetPublishedPosts)
	api.GET("/blog/:slug", blogCtrl.GetPostBySlug)

	// ----------------------------------------------------------------
	//                      MEMBER ROUTES
	// ----------------------------------------------------------------
	member := api.Group("/")
	member.Use(middlewares.AuthMiddleware())

	member.GET("/auth/profile", userCtrl.GetProfile)
	member.PATCH("/auth/profile", userCtrl.UpdateProfile)

	member.GET("/membership", membershipCtrl.GetMembership)
	member.POST("/membership/upgrade", membershipCtrl.Upgrade)

	// MATCHING (paid members)
	member.GET("/matching/requests", matchingCtrl.ListRequests)
	member.POST("/matching/requests", matchingCtrl.CreateRequest)
	member.POST("/matching/requests/:request_id/accept", matchingCtrl.AcceptRequest)
	member.POST("/matching/requests/:request_id/reject", matchingCtrl.RejectRequest)
	member.POST("/matching/requests/:request_id/cancel", matchingCtrl.CancelRequest)
	member.GET("/matching/history", matchingCtrl.GetHistory)

	member.GET("/notifications", notificationCtrl.GetNotifications)
	member.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkRead)

	member.GET("/visit-plans", visitPlanCtrl.GetVisitPlans)
	member.POST("/visit-plans", visitPlanCtrl.CreateVisitPlan)
	member.DELETE("/visit-plans/:plan_id", visitPlanCtrl.CancelVisitPlan)

	// ----------------------------------------------------------------
	//                      ADMIN CONSOLE
	// ----------------------------------------------------------------
	admin := api.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireAdmin())

	admin.GET("/stats", adminCtrl.GetDashboardStats)
	admin.GET("/members", membershipCtrl.ListMembers)

	admin.GET("/events", eventCtrl.GetAllEvents)
	admin.POST("/events", eventCtrl.CreateEvent)
	admin.PATCH("/events/:event_id", eventCtrl.UpdateEvent)
	admin.DELETE("/events/:event_id", eventCtrl.DeleteEvent)

	admin.GET("/blog", blogCtrl.GetAllPosts)
	admin.POST("/blog", blogCtrl.CreatePost)
	admin.PATCH("/blog/:post_id", blogCtrl.UpdatePost)
	admin.DELETE("/blog/:post_id", blogCtrl.DeletePost)

	return r
}
