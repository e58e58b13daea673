package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/apperr"
	"userhub/internal/i18n"
	"userhub/pkg/trace"
)

// statusOf maps a domain error kind to its HTTP status. This is the only
// place a kind turns into a status code.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError translates a domain error into a localized HTTP response.
// Internal causes are logged with the trace id and never sent to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperr.FromError(err)

	if appErr.Kind == apperr.KindInternal {
		logger.Error("request failed",
			zap.String("trace_id", trace.FromContext(c.Request.Context())),
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		)
	}

	lang := i18n.LangFromContext(c.Request.Context())
	c.JSON(statusOf(appErr.Kind), gin.H{"error": i18n.T(lang, appErr.Key, appErr.Args)})
}

func respondMessage(c *gin.Context, status int, key string) {
	lang := i18n.LangFromContext(c.Request.Context())
	c.JSON(status, MessageResponse{Message: i18n.T(lang, key, nil)})
}

func badRequest(c *gin.Context, logger *zap.Logger, key string) {
	respondError(c, logger, apperr.Validation(key))
}
