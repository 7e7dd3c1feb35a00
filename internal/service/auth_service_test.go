package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"onair/backend/config"
	"onair/backend/internal/dto"
	"onair/backend/internal/model"
	"onair/backend/internal/repository"
	"onair/backend/pkg/jwt"
)

func setupTestAuthService() (AuthService, *repository.Repository) {
	repo := newTestRepository()
	cfg := newTestConfig()
	cfg.Auth = config.AuthConfig{
		JWTSecret:               "test-secret-at-least-16-chars",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 720 * time.Hour,
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, repo
}

func seedUser(repo *repository.Repository, email, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Name:         "测试员工",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	_ = repo.User.Create(context.Background(), user)
	return user
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedUser(repo, "worker@onair.fm", "password123", "worker")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@onair.fm",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("应返回 token 对")
	}
	if resp.User.Email != "worker@onair.fm" || resp.User.Role != "worker" {
		t.Errorf("用户信息不符: %+v", resp.User)
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("过期时间不符: %d", resp.ExpiresIn)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedUser(repo, "worker@onair.fm", "password123", "worker")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "worker@onair.fm",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials，实际=%v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupTestAuthService()
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@onair.fm",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials，实际=%v", err)
	}
}

// ── Register 测试 ──

func seedInvite(repo *repository.Repository, code, role string, expiresAt time.Time) *model.InviteCode {
	invite := &model.InviteCode{
		Code:      code,
		Role:      role,
		ExpiresAt: expiresAt,
	}
	_ = repo.InviteCode.Create(context.Background(), invite)
	return invite
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedInvite(repo, "CODE-1", "worker", time.Now().Add(24*time.Hour))

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode: "CODE-1",
		Name:       "新员工",
		Email:      "new@onair.fm",
		Password:   "password123",
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if resp.Email != "new@onair.fm" {
		t.Errorf("注册响应不符: %+v", resp)
	}

	// 角色由邀请码绑定，邀请码被标记已用
	user, err := repo.User.GetByEmail(context.Background(), "new@onair.fm")
	if err != nil || user.Role != "worker" {
		t.Fatalf("注册用户角色应为邀请码绑定的 worker: %v", err)
	}
	invite, _ := repo.InviteCode.GetByCode(context.Background(), "CODE-1")
	if invite.UsedAt == nil || invite.UsedBy == nil || *invite.UsedBy != user.UserID {
		t.Error("邀请码应被标记已用")
	}
}

func TestAuthService_Register_InviteReuseRejected(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedInvite(repo, "CODE-1", "worker", time.Now().Add(24*time.Hour))

	first := &dto.RegisterRequest{InviteCode: "CODE-1", Name: "甲", Email: "a@onair.fm", Password: "password123"}
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}

	second := &dto.RegisterRequest{InviteCode: "CODE-1", Name: "乙", Email: "b@onair.fm", Password: "password123"}
	if _, err := svc.Register(context.Background(), second); !errors.Is(err, ErrInviteUsed) {
		t.Fatalf("期望 ErrInviteUsed，实际=%v", err)
	}
}

func TestAuthService_Register_InviteExpired(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedInvite(repo, "CODE-OLD", "worker", time.Now().Add(-time.Hour))

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode: "CODE-OLD", Name: "甲", Email: "a@onair.fm", Password: "password123",
	})
	if !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("期望 ErrInviteExpired，实际=%v", err)
	}
}

func TestAuthService_Register_InviteInvalid(t *testing.T) {
	svc, _ := setupTestAuthService()
	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode: "NO-SUCH", Name: "甲", Email: "a@onair.fm", Password: "password123",
	})
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("期望 ErrInviteInvalid，实际=%v", err)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedUser(repo, "taken@onair.fm", "password123", "worker")
	seedInvite(repo, "CODE-1", "worker", time.Now().Add(24*time.Hour))

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode: "CODE-1", Name: "甲", Email: "taken@onair.fm", Password: "password123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("期望 ErrEmailTaken，实际=%v", err)
	}
}

// ── RefreshToken 测试 ──

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedUser(repo, "worker@onair.fm", "password123", "worker")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@onair.fm", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("应返回新 access token")
	}
}

func TestAuthService_RefreshToken_AccessTokenRejected(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedUser(repo, "worker@onair.fm", "password123", "worker")

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@onair.fm", Password: "password123",
	})

	// 用 access token 换新应被拒绝
	if _, err := svc.RefreshToken(context.Background(), login.AccessToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("期望 ErrRefreshInvalid，实际=%v", err)
	}
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc, _ := setupTestAuthService()
	if _, err := svc.RefreshToken(context.Background(), "not-a-token"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("期望 ErrRefreshInvalid，实际=%v", err)
	}
}

// ── 邀请码生成与校验 ──

func TestAuthService_GenerateAndValidateInvite(t *testing.T) {
	svc, _ := setupTestAuthService()

	invite, err := svc.GenerateInvite(context.Background(), &dto.GenerateInviteRequest{
		Role: "manager",
	}, "admin-001")
	if err != nil {
		t.Fatalf("GenerateInvite 应成功: %v", err)
	}
	if invite.InviteCode == "" || invite.Role != "manager" {
		t.Errorf("邀请码响应不符: %+v", invite)
	}

	check, err := svc.ValidateInvite(context.Background(), invite.InviteCode)
	if err != nil {
		t.Fatalf("ValidateInvite 应成功: %v", err)
	}
	if !check.Valid || check.Role != "manager" {
		t.Errorf("校验结果不符: %+v", check)
	}
}

func TestAuthService_ValidateInvite_Unknown(t *testing.T) {
	svc, _ := setupTestAuthService()
	check, err := svc.ValidateInvite(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ValidateInvite 应成功: %v", err)
	}
	if check.Valid {
		t.Error("不存在的邀请码应校验失败")
	}
}

// ── ChangePassword 测试 ──

func TestAuthService_ChangePassword(t *testing.T) {
	svc, repo := setupTestAuthService()
	user := seedUser(repo, "worker@onair.fm", "oldpassword", "worker")
	user.MustChangePassword = true

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "oldpassword",
		NewPassword: "newpassword1",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	// 新密码可登录，改密标记清除
	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@onair.fm", Password: "newpassword1",
	})
	if err != nil {
		t.Fatalf("新密码登录应成功: %v", err)
	}
	if resp.User.MustChangePassword {
		t.Error("改密后 must_change_password 应清除")
	}
}

func TestAuthService_ChangePassword_WrongOld(t *testing.T) {
	svc, repo := setupTestAuthService()
	user := seedUser(repo, "worker@onair.fm", "oldpassword", "worker")

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "nope",
		NewPassword: "newpassword1",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("期望 ErrWrongPassword，实际=%v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
