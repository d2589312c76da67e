package handlers

import (
	"errors"
	"net/http"
	"tieba/internal/services"
	"tieba/internal/utils"

	"github.com/gin-gonic/gin"
)

// OK 统一成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Fail 把服务层错误映射成 HTTP 状态码
// NotFound->404, Conflict->409, InvalidState->422, PermissionDenied->403
func Fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrPermissionDenied):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// BadRequest 参数错误
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// pagination 解析 page/page_size,带默认值和上限
func pagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if n := utils.StringToInt(c.Query("page")); n > 0 {
		page = n
	}
	if n := utils.StringToInt(c.Query("page_size")); n > 0 && n <= 100 {
		pageSize = n
	}
	return page, pageSize
}
