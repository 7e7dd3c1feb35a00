package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"onair/backend/internal/dto"
	"onair/backend/internal/service"
	"onair/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表（管理端）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, result.Items, result.Total, req.GetPage(), req.GetPageSize())
}

// GetUser 获取用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser 管理端更新用户（角色/部门）
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateProfile 用户自助更新资料
// PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// ResetPassword 管理端重置用户密码
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.ResetPassword(c.Request.Context(), id, &req, callerID); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteUser 删除用户
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportUsers 批量导入员工（Excel 文件上传，表单字段 file）
// POST /api/v1/users/import
func (h *UserHandler) ImportUsers(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传Excel文件（表单字段 file）")
		return
	}
	defer file.Close()

	rows, err := h.userSvc.ParseImportFile(file)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	result, err := h.userSvc.ImportUsers(c.Request.Context(), rows)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11004, "用户不存在")
	case errors.Is(err, service.ErrDivisionNotFound):
		response.NotFound(c, 12001, "部门不存在")
	case errors.Is(err, service.ErrCannotDeleteSelf):
		response.BadRequest(c, 11009, "不能删除自己的账号")
	case errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 11010, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/user_handler.go
