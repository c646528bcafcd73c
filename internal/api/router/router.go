package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"headta/backend/config"
	"headta/backend/internal/api/handler"
	"headta/backend/internal/api/middleware"
	"headta/backend/internal/model"
	"headta/backend/pkg/jwt"
	"headta/backend/pkg/redis"
)

// maxBodyBytes 全局请求体上限（花名册导入为最大的请求）
const maxBodyBytes = 6 << 20

// Setup 初始化并返回 Gin 路由引擎，rdb 为 nil 时限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 邀请（无需认证，按 IP 限流）
		public := v1.Group("/invitations")
		public.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			public.GET("/:code/validate", h.Invitation.ValidateInvitation)
			public.POST("/:code/accept", h.Invitation.AcceptInvitation)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr))
		{
			// 学期日历
			semesters := authorized.Group("/semesters")
			{
				semesters.GET("", h.Semester.ListSemesters)
				semesters.GET("/current", h.Semester.GetCurrentSemester)
				semesters.GET("/parse", h.Semester.ParseSemester)
				semesters.GET("/calendar.ics", h.Semester.CalendarICS)
			}

			// 用户 / Head TA
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.GET("/:id/workload", h.User.GetWorkload)
				users.GET("/:id/assignments", h.User.ListAssignments)
				users.POST("", adminOnly, h.User.CreateUser)
				users.PUT("/:id", adminOnly, h.User.UpdateUser)
				users.DELETE("/:id", adminOnly, h.User.DeleteUser)
				users.POST("/import", adminOnly, h.User.ImportUsers)
			}

			// 教授
			professors := authorized.Group("/professors")
			{
				professors.GET("", h.Professor.ListProfessors)
				professors.GET("/:id", h.Professor.GetProfessor)
				professors.POST("", adminOnly, h.Professor.CreateProfessor)
			}

			// 课程
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", adminOnly, h.Course.CreateCourse)
			}

			// 开课、资格校验、推荐与分配
			offerings := authorized.Group("/offerings")
			{
				offerings.GET("", h.Offering.ListOfferings)
				offerings.GET("/:id", h.Offering.GetOffering)
				offerings.POST("", adminOnly, h.Offering.CreateOffering)
				offerings.DELETE("/:id", adminOnly, h.Offering.DeleteOffering)
				offerings.GET("/:id/eligibility", h.Offering.CheckEligibility)
				offerings.GET("/:id/suggestions", h.Offering.ListSuggestions)
				offerings.GET("/:id/assignments", h.Assignment.ListForOffering)
				offerings.POST("/:id/assignments", adminOnly, h.Assignment.Assign)
			}

			assignments := authorized.Group("/assignments")
			{
				assignments.PUT("/:id/hours", adminOnly, h.Assignment.UpdateHours)
				assignments.DELETE("/:id", adminOnly, h.Assignment.Unassign)
			}

			// 邀请管理
			invitations := authorized.Group("/invitations", adminOnly)
			{
				invitations.GET("", h.Invitation.ListPending)
				invitations.POST("", h.Invitation.CreateInvitation)
				invitations.DELETE("/:id", h.Invitation.RevokeInvitation)
			}

			authorized.GET("/dashboard", adminOnly, h.Dashboard.GetDashboard)
			authorized.GET("/export/assignments", adminOnly, h.Export.ExportAssignments)
		}
	}

	return r
}
