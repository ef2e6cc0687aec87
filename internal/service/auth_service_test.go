package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"church-scale/backend/internal/dto"
	"church-scale/backend/internal/model"
	"church-scale/backend/pkg/jwt"
)

func newAuthTestEnv(t *testing.T) (AuthService, *testRepos) {
	t.Helper()
	cfg := newTestConfig()
	repo, mocks := newTestRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	// Redis 缺省为 nil：黑名单与限流降级
	return NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop()), mocks
}

func seedUser(t *testing.T, mocks *testRepos, email, password, role, approval string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	user := &model.User{
		Name:           "测试用户",
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		ApprovalStatus: approval,
		EmailVerified:  approval == model.ApprovalApproved,
	}
	if err := mocks.users.Create(context.Background(), user); err != nil {
		t.Fatalf("预置用户失败: %v", err)
	}
	return user
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "新同工",
		Email:    "new@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if resp.ApprovalStatus != model.ApprovalPending {
		t.Errorf("新用户审批状态 = %s, 期望 %s", resp.ApprovalStatus, model.ApprovalPending)
	}

	stored := mocks.users.users[resp.ID]
	if stored == nil {
		t.Fatal("用户未落库")
	}
	if stored.Role != model.RoleMember {
		t.Errorf("新用户角色 = %s, 期望 %s", stored.Role, model.RoleMember)
	}
	if stored.EmailVerified {
		t.Error("新用户邮箱不应处于已验证状态")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)
	seedUser(t, mocks, "dup@example.com", "password123", model.RoleMember, model.ApprovalApproved)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "重复注册",
		Email:    "dup@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("重复邮箱注册应被拒绝, got: %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)
	seedUser(t, mocks, "ok@example.com", "password123", model.RoleMember, model.ApprovalApproved)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ok@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录应签发 Token 对")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)
	seedUser(t, mocks, "ok@example.com", "password123", model.RoleMember, model.ApprovalApproved)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ok@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("错误密码应被拒绝, got: %v", err)
	}
}

// 待审批用户可登录，由访问门禁路由到待审批页
func TestLoginPendingUserAllowed(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)
	seedUser(t, mocks, "pending@example.com", "password123", model.RoleMember, model.ApprovalPending)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "pending@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("待审批用户登录应被允许: %v", err)
	}
	if resp.User.ApprovalStatus != model.ApprovalPending {
		t.Errorf("响应审批状态 = %s, 期望 %s", resp.User.ApprovalStatus, model.ApprovalPending)
	}
}

func TestLoginRejectedUserDenied(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)
	seedUser(t, mocks, "rejected@example.com", "password123", model.RoleMember, model.ApprovalRejected)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "rejected@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrAccountRejected) {
		t.Fatalf("已拒绝用户登录应被拒绝, got: %v", err)
	}
}

// 刷新以数据库为准重新快照：刷新前被拒绝的用户拿不到新 Token
func TestRefreshTokenResnapshotsFromDB(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)
	user := seedUser(t, mocks, "ok@example.com", "password123", model.RoleMember, model.ApprovalApproved)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ok@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("刷新应签发新 AccessToken")
	}

	// 审批被撤销后刷新失效
	user.ApprovalStatus = model.ApprovalRejected
	if _, err := svc.RefreshToken(context.Background(), login.RefreshToken); !errors.Is(err, ErrAccountRejected) {
		t.Fatalf("被拒绝用户刷新应失败, got: %v", err)
	}
}

// Access Token 不能当 Refresh Token 用
func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)
	seedUser(t, mocks, "ok@example.com", "password123", model.RoleMember, model.ApprovalApproved)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ok@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	if _, err := svc.RefreshToken(context.Background(), login.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("用 AccessToken 刷新应被拒绝, got: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, mocks := newAuthTestEnv(t)
	user := seedUser(t, mocks, "ok@example.com", "password123", model.RoleMember, model.ApprovalApproved)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword1",
	}); !errors.Is(err, ErrOldPasswordWrong) {
		t.Fatalf("原密码错误应被拒绝, got: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword1",
	}); err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{
		Email:    "ok@example.com",
		Password: "newpassword1",
	}); err != nil {
		t.Fatalf("新密码登录失败: %v", err)
	}
}
