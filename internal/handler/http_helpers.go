package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamlog/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// handleStreamError 把服务层错误映射为 HTTP 响应，未知错误只记录日志不外泄细节
func (a *API) handleStreamError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, service.ErrStreamNotFound):
		respondError(c, http.StatusNotFound, "直播记录不存在")
	default:
		_ = c.Error(err)
		a.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
