package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/apperr"
	"userhub/internal/i18n"
	"userhub/internal/model"
	"userhub/internal/service"
	"userhub/internal/usecase"
	"userhub/internal/util"
	"userhub/pkg/metrics"
	"userhub/pkg/trace"
)

const currentUserKey = "current_user"

// TraceMiddleware attaches a trace id to the request context and echoes it
// back in the response header.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName)
		if traceID == "" {
			traceID = trace.NewTraceID()
		}
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName, traceID)
		c.Next()
	}
}

// LangMiddleware resolves the request language from Accept-Language.
func LangMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := i18n.FromAcceptLanguage(c.GetHeader("Accept-Language"), defaultLang)
		c.Request = c.Request.WithContext(i18n.WithLang(c.Request.Context(), lang))
		c.Next()
	}
}

// MetricsMiddleware times every request by route template and status.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// CORSMiddleware allows the configured origins.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept-Language, X-Trace-ID")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// AuthMiddleware validates the bearer token and loads the current user into
// the gin context.
func AuthMiddleware(auth *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			respondError(c, logger, apperr.Unauthorized("auth.token_not_found"))
			c.Abort()
			return
		}

		user, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			respondError(c, logger, err)
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// currentUser returns the user placed in the context by AuthMiddleware.
func currentUser(c *gin.Context) *model.User {
	u, _ := c.Get(currentUserKey)
	user, _ := u.(*model.User)
	return user
}

// clientInfo captures the caller's user agent and IP for refresh token audit.
func clientInfo(c *gin.Context) usecase.ClientInfo {
	info := usecase.ClientInfo{}
	if ua := c.GetHeader("User-Agent"); ua != "" {
		info.DeviceInfo = &ua
	}
	if ip := c.ClientIP(); ip != "" {
		info.IPAddress = &ip
	}
	return info
}
