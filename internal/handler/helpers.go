package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/fieldorder/internal/middleware"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
	"github.com/xxxsen/fieldorder/internal/pkg/response"
	"github.com/xxxsen/fieldorder/internal/service"
)

func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

func getPrincipal(c *gin.Context) service.Principal {
	return service.Principal{
		UserID: getUserID(c),
		Role:   c.GetString(middleware.ContextRoleKey),
	}
}

// routePath is the matched route pattern. Raw paths may carry share tokens
// and are kept out of logs.
func routePath(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return "unmatched"
}

func requestLogger(c *gin.Context) *zap.Logger {
	return logutil.GetLogger(c.Request.Context()).With(
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", routePath(c)),
		zap.String("user_id", getUserID(c)),
	)
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestLogger(c).Error("request failed", zap.Error(err))
	response.Fail(c, err)
}

// handlePublicError answers an anonymous share visitor. Only two outcomes
// exist: the link is unavailable, or something broke on our side.
func handlePublicError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if appErr.IsShareUnavailable(err) {
		response.ShareUnavailable(c)
		return
	}
	requestLogger(c).Error("public share request failed", zap.Error(err))
	response.Fail(c, appErr.ErrInternal)
}
