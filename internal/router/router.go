// Package router assembles the gin engine: global middleware, route groups
// and the role guards in front of each resource.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/handler"
	"github.com/unisphere/unisphere-api/internal/middleware"
	"github.com/unisphere/unisphere-api/internal/service"
	"github.com/unisphere/unisphere-api/pkg/config"
	"github.com/unisphere/unisphere-api/pkg/logger"
	corsmiddleware "github.com/unisphere/unisphere-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unisphere/unisphere-api/pkg/middleware/requestid"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Class     *handler.ClassHandler
	Faculty   *handler.FacultyHandler
	Event     *handler.EventHandler
	Club      *handler.ClubHandler
	LostFound *handler.LostFoundHandler
	Menu      *handler.MenuHandler
	Order     *handler.OrderHandler
	Bus       *handler.BusHandler
	Chat      *handler.ChatHandler
	Campus    *handler.CampusHandler
	Quiz      *handler.QuizHandler
	Dashboard *handler.DashboardHandler
	Export    *handler.ExportHandler
	Health    *handler.HealthHandler
}

// Deps carries the cross-cutting collaborators the middleware chain needs.
type Deps struct {
	Tokens  middleware.TokenValidator
	Audit   middleware.AuditWriter
	Metrics *service.MetricsService
	Logger  *zap.Logger
}

// New builds the engine with every route mounted under cfg.APIPrefix.
func New(cfg *config.Config, h *Handlers, deps Deps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	r.Static("/uploads", cfg.Uploads.Dir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := middleware.JWT(deps.Tokens)
	admin := []gin.HandlerFunc{auth, middleware.AdminOnly()}
	audited := func(resource string) []gin.HandlerFunc {
		return chain(admin, middleware.Audit(deps.Audit, resource, deps.Logger))
	}

	api := r.Group(cfg.APIPrefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/google", h.Auth.Google)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", auth, h.Auth.Logout)
		authGroup.GET("/me", auth, h.Auth.Me)
		authGroup.POST("/change-password", auth, h.Auth.ChangePassword)
	}

	users := api.Group("/admin/users", audited("users")...)
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.POST("", h.User.Create)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
	}

	crud(api.Group("/class"), audited("classes"), h.Class.List, h.Class.Get, h.Class.Create, h.Class.Update, h.Class.Delete)
	crud(api.Group("/faculty"), audited("faculty"), h.Faculty.List, h.Faculty.Get, h.Faculty.Create, h.Faculty.Update, h.Faculty.Delete)
	crud(api.Group("/menu"), audited("menu"), h.Menu.List, h.Menu.Get, h.Menu.Create, h.Menu.Update, h.Menu.Delete)
	crud(api.Group("/bus"), audited("bus"), h.Bus.List, h.Bus.Get, h.Bus.Create, h.Bus.Update, h.Bus.Delete)
	crud(api.Group("/campus/buildings"), audited("buildings"), h.Campus.List, h.Campus.Get, h.Campus.Create, h.Campus.Update, h.Campus.Delete)

	events := api.Group("/events")
	crud(events, audited("events"), h.Event.List, h.Event.Get, h.Event.Create, h.Event.Update, h.Event.Delete)
	events.POST("/:id/rsvp", auth, h.Event.RSVP)
	events.DELETE("/:id/rsvp", auth, h.Event.CancelRSVP)

	clubs := api.Group("/clubs")
	crud(clubs, audited("clubs"), h.Club.List, h.Club.Get, h.Club.Create, h.Club.Update, h.Club.Delete)
	clubs.POST("/:id/members", chain(audited("clubs"), h.Club.AddMember)...)
	clubs.DELETE("/:id/members/:email", chain(audited("clubs"), h.Club.RemoveMember)...)
	clubs.POST("/:id/join", auth, h.Club.Join)

	campus := api.Group("/campus")
	{
		campus.GET("/nearby", h.Campus.Nearby)
		campus.GET("/distance", h.Campus.Distance)
	}

	lostFound := api.Group("/lostfound/items")
	{
		lostFound.GET("", h.LostFound.List)
		lostFound.GET("/:id", h.LostFound.Get)
		lostFound.POST("", auth, h.LostFound.Create)
		lostFound.POST("/:id/image", auth, h.LostFound.UploadImage)
	}
	adminLostFound := api.Group("/admin/lostfound/items", audited("lostfound")...)
	{
		adminLostFound.GET("", h.LostFound.List)
		adminLostFound.GET("/:id", h.LostFound.Get)
		adminLostFound.POST("", h.LostFound.Create)
		adminLostFound.PUT("/:id", h.LostFound.Update)
		adminLostFound.PATCH("/:id/status", h.LostFound.UpdateStatus)
		adminLostFound.DELETE("/:id", h.LostFound.Delete)
	}

	orders := api.Group("/orders", auth)
	{
		orders.POST("", h.Order.Checkout)
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.GET("/:id/receipt", h.Order.Receipt)
		orders.PATCH("/:id/status", middleware.AdminOnly(), middleware.Audit(deps.Audit, "orders", deps.Logger), h.Order.UpdateStatus)
	}
	api.GET("/receipts/download", h.Order.DownloadReceipt)

	chat := api.Group("/chat")
	{
		chat.GET("/ws", middleware.WebSocketJWT(deps.Tokens), h.Chat.Socket)
		chat.GET("/users", auth, h.Chat.Users)
		chat.GET("/conversations", auth, h.Chat.Conversations)
		chat.POST("/conversations", auth, h.Chat.StartConversation)
		chat.GET("/conversations/:id/messages", auth, h.Chat.Messages)
		chat.POST("/conversations/:id/messages", auth, h.Chat.Send)
	}

	quiz := api.Group("/virtual-quiz", auth)
	{
		quiz.POST("/generate", h.Quiz.Generate)
		quiz.POST("/check", h.Quiz.Check)
		quiz.POST("/grade", h.Quiz.Grade)
	}

	dashboard := api.Group("/admin/dashboard", admin...)
	{
		dashboard.GET("", h.Dashboard.Summary)
		dashboard.GET("/metrics", h.Dashboard.Metrics)
	}

	exports := api.Group("/admin/exports", admin...)
	{
		exports.GET("/orders", h.Export.Orders)
		exports.GET("/lostfound", h.Export.LostFound)
	}

	return r
}

// crud mounts public reads and guarded writes for a resource.
func crud(g *gin.RouterGroup, guard []gin.HandlerFunc, list, get, create, update, remove gin.HandlerFunc) {
	g.GET("", list)
	g.GET("/:id", get)
	g.POST("", chain(guard, create)...)
	g.PUT("/:id", chain(guard, update)...)
	g.DELETE("/:id", chain(guard, remove)...)
}

func chain(base []gin.HandlerFunc, next ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(base)+len(next))
	out = append(out, base...)
	return append(out, next...)
}
