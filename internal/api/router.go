package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"userhub/internal/service"
	"userhub/pkg/mq"
)

type Router struct {
	Engine *gin.Engine
}

// NewRouter wires the HTTP surface. db and publisher may be nil in tests;
// the readiness probe then skips the corresponding check.
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	auth *service.AuthService,
	allowedOrigins []string,
	defaultLang string,
	db *pgxpool.Pool,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(LangMiddleware(defaultLang))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(allowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	authPublic := v1.Group("/auth")
	{
		authPublic.POST("/register/", authHandler.Register)
		authPublic.POST("/login/", authHandler.Login)
		authPublic.POST("/refresh-token/", authHandler.RefreshToken)
		authPublic.POST("/logout/", authHandler.Logout)
		authPublic.POST("/forgot-password/", authHandler.ForgotPassword)
		authPublic.POST("/reset-password/", authHandler.ResetPassword)
	}

	authProtected := v1.Group("/auth")
	authProtected.Use(AuthMiddleware(auth, logger))
	{
		authProtected.GET("/me/", authHandler.Me)
		authProtected.PATCH("/me/", authHandler.UpdateMe)
		authProtected.POST("/change-password/", authHandler.ChangePassword)
	}

	users := v1.Group("/user")
	users.Use(AuthMiddleware(auth, logger))
	{
		users.GET("/", userHandler.Search)
		users.POST("/", userHandler.Create)
		users.GET("/:id/", userHandler.Get)
		users.PATCH("/:id/", userHandler.Update)
		users.DELETE("/:id/", userHandler.Delete)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
