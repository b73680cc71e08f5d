package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/testutil"
)

func newAuthService(db *gorm.DB, mode string) *AuthService {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: mode},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireHours: 24},
	}
	return NewAuthService(repository.NewUserRepository(db), nil, cfg)
}

func TestAuthService_Register(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newAuthService(db, "debug")

	resp, err := svc.Register(&dto.RegisterRequest{
		Username: "mamadou",
		Email:    "mamadou@example.com",
		Password: "motdepasse123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)

	// 重复邮箱
	_, err = svc.Register(&dto.RegisterRequest{
		Username: "autre",
		Email:    "mamadou@example.com",
		Password: "motdepasse123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)

	// 重复用户名
	_, err = svc.Register(&dto.RegisterRequest{
		Username: "mamadou",
		Email:    "autre@example.com",
		Password: "motdepasse123",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newAuthService(db, "debug")

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "fatou",
		Email:    "fatou@example.com",
		Password: "motdepasse123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(&dto.LoginRequest{Email: "fatou@example.com", Password: "motdepasse123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "fatou", resp.User.Username)

	// 密码错误
	_, err = svc.Login(&dto.LoginRequest{Email: "fatou@example.com", Password: "mauvais"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// 邮箱不存在
	_, err = svc.Login(&dto.LoginRequest{Email: "inconnu@example.com", Password: "motdepasse123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnverifiedEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	// release 模式强制邮箱验证
	svc := newAuthService(db, "release")

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "ibrahima",
		Email:    "ibrahima@example.com",
		Password: "motdepasse123",
	})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{Email: "ibrahima@example.com", Password: "motdepasse123"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newAuthService(db, "release")
	repo := repository.NewUserRepository(db)

	resp, err := svc.Register(&dto.RegisterRequest{
		Username: "aminata",
		Email:    "aminata@example.com",
		Password: "motdepasse123",
	})
	require.NoError(t, err)

	user, err := repo.GetByID(resp.UserID)
	require.NoError(t, err)
	require.NotNil(t, user.VerificationCode)

	loginResp, err := svc.VerifyEmail(*user.VerificationCode)
	require.NoError(t, err)
	assert.NotEmpty(t, loginResp.Token)
	assert.True(t, loginResp.User.EmailVerified)

	// 用过的验证码作废
	_, err = svc.VerifyEmail(*user.VerificationCode)
	assert.ErrorIs(t, err, ErrInvalidVerifyCode)

	// 验证后可以登录
	_, err = svc.Login(&dto.LoginRequest{Email: "aminata@example.com", Password: "motdepasse123"})
	assert.NoError(t, err)
}
