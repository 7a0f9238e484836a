package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewService(repository.NewRepositories(db))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Errorf("new user should get the user role, got %q", user.Role)
	}
	if user.PasswordHash == "secret123" {
		t.Error("password must not be stored in plain text")
	}

	// 重复用户名
	if _, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Password: "other456"}); err == nil {
		t.Error("duplicate username should be rejected")
	}

	resp, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login should return a token")
	}

	// 令牌能换回用户
	got, err := svc.ValidateToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("validate token failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("token resolved to the wrong user")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Username: "bob", Password: "secret123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Login(ctx, &LoginRequest{Username: "bob", Password: "wrong"})
	if err == nil || !strings.Contains(err.Error(), "invalid username or password") {
		t.Fatalf("expected credential error, got %v", err)
	}

	// 不存在的用户也返回同样的错误
	_, err = svc.Login(ctx, &LoginRequest{Username: "nobody", Password: "x"})
	if err == nil || !strings.Contains(err.Error(), "invalid username or password") {
		t.Fatalf("expected credential error, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.ValidateToken(context.Background(), "not-a-jwt"); err == nil {
		t.Fatal("garbage token should be rejected")
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{Username: "carol", Password: "secret123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "newpass123",
	}); err == nil {
		t.Error("wrong old password should be rejected")
	}

	if err := svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{
		OldPassword: "secret123", NewPassword: "newpass123",
	}); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := svc.Login(ctx, &LoginRequest{Username: "carol", Password: "newpass123"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}
