package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"streamforge/pkg/errno"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed 根据错误类型返回失败响应
func Failed(c *gin.Context, err error) {
	var e *errno.Errno
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    errno.ErrInternalServer.Code,
			Message: err.Error(),
		})
		return
	}
	c.JSON(httpStatus(e), Response{Code: e.Code, Message: e.Message})
}

// httpStatus 业务错误码映射HTTP状态码
func httpStatus(e *errno.Errno) int {
	switch e {
	case errno.ErrUnauthorized:
		return http.StatusUnauthorized
	case errno.ErrForbidden, errno.ErrVideoPrivate, errno.ErrNotOwner:
		return http.StatusForbidden
	case errno.ErrNotFound, errno.ErrVideoNotFound, errno.ErrQualityNotFound,
		errno.ErrSegmentNotFound, errno.ErrThumbnailNotFound, errno.ErrNoQualities:
		return http.StatusNotFound
	case errno.ErrVideoFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errno.ErrRangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	case errno.ErrQueueFull:
		return http.StatusServiceUnavailable
	case errno.ErrInternalServer, errno.ErrDatabase:
		return http.StatusInternalServerError
	default:
		if e.Code >= 400 && e.Code < 600 {
			return e.Code
		}
		return http.StatusBadRequest
	}
}
