package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/glowday/api/config"
	"github.com/glowday/api/internal/dto"
	apperrors "github.com/glowday/api/internal/errors"
	"github.com/glowday/api/internal/model"
	"github.com/glowday/api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Bcrypt: config.BcryptConfig{Cost: 4},
		Verification: config.VerificationConfig{
			Mode:       config.IdentityEmail,
			CodeLength: 4,
		},
		JWT: config.JWTConfig{
			Secret:         "test-secret",
			ExpirationTime: time.Hour,
		},
	}
}

func newTestUserService(t *testing.T) (*UserService, *repository.UserRepository) {
	t.Helper()
	db := setupTestDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewUserService(repo, NewJWTService(testConfig().JWT), testConfig())
	svc.genCode = func(length int) (string, error) { return "1234", nil }
	return svc, repo
}

func register(t *testing.T, svc *UserService, email string) *model.User {
	t.Helper()
	user, token, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Alice",
		Email:    email,
		Password: "secret123",
	}, "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user
}

func TestRegister(t *testing.T) {
	svc, repo := newTestUserService(t)

	user := register(t, svc, "Alice@Example.com")

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.DefaultImageURL, user.ImageURL)
	assert.False(t, user.EmailVerified)
	assert.Empty(t, user.Password)

	full, err := repo.FindFull(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", full.Password)
	assert.NotEmpty(t, full.VerificationCode)
	assert.NotEqual(t, "1234", full.VerificationCode)
}

func TestRegisterUsernameCollision(t *testing.T) {
	svc, _ := newTestUserService(t)

	first := register(t, svc, "alice@example.com")
	second := register(t, svc, "alice@other.com")

	assert.Equal(t, "alice", first.Username)
	assert.Regexp(t, `^alice-\d{3}$`, second.Username)
	assert.NotEqual(t, first.Username, second.Username)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService(t)
	register(t, svc, "alice@example.com")

	_, _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Other",
		Email:    "ALICE@example.com",
		Password: "secret123",
	}, "")
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
}

func TestRegisterMissingIdentity(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Alice",
		Password: "secret123",
	}, "")

	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestVerifyCode(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := register(t, svc, "alice@example.com")

	resetToken, err := svc.VerifyCode(context.Background(), "alice@example.com", "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, resetToken)

	full, err := repo.FindFull(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, full.EmailVerified)
	assert.Empty(t, full.VerificationCode)
	assert.Equal(t, resetToken, full.ResetPasswordToken)

	// The code is single use.
	_, err = svc.VerifyCode(context.Background(), "alice@example.com", "1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCode)
}

func TestVerifyCodeRejectsWrongCode(t *testing.T) {
	svc, _ := newTestUserService(t)
	register(t, svc, "alice@example.com")

	_, err := svc.VerifyCode(context.Background(), "alice@example.com", "0000")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCode)

	_, err = svc.VerifyCode(context.Background(), "nobody@example.com", "1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCode)
}

func TestLoginRequiresVerification(t *testing.T) {
	svc, _ := newTestUserService(t)
	register(t, svc, "alice@example.com")

	_, _, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrNotVerified)

	_, err = svc.VerifyCode(context.Background(), "alice@example.com", "1234")
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "ALICE@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Empty(t, user.Password)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestUserService(t)
	register(t, svc, "alice@example.com")

	_, _, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Unknown identities fail with the same error as bad passwords.
	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := register(t, svc, "alice@example.com")

	_, err := svc.VerifyCode(context.Background(), "alice@example.com", "1234")
	require.NoError(t, err)

	require.NoError(t, repo.Store.Update(context.Background(), user.ID, map[string]interface{}{"status": false}))

	_, _, err = svc.Login(context.Background(), "alice@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestResendCode(t *testing.T) {
	svc, _ := newTestUserService(t)
	register(t, svc, "alice@example.com")

	svc.genCode = func(length int) (string, error) { return "9999", nil }
	require.NoError(t, svc.ResendCode(context.Background(), "alice@example.com"))

	_, err := svc.VerifyCode(context.Background(), "alice@example.com", "1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCode)

	_, err = svc.VerifyCode(context.Background(), "alice@example.com", "9999")
	assert.NoError(t, err)
}

func TestResendCodeUnknownIdentity(t *testing.T) {
	svc, _ := newTestUserService(t)

	assert.NoError(t, svc.ResendCode(context.Background(), "nobody@example.com"))
}

func TestSetPasswordClearsResetToken(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := register(t, svc, "alice@example.com")

	_, err := svc.VerifyCode(context.Background(), "alice@example.com", "1234")
	require.NoError(t, err)

	require.NoError(t, svc.SetPassword(context.Background(), user.ID, "newsecret"))

	full, err := repo.FindFull(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, full.ResetPasswordToken)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := register(t, svc, "alice@example.com")
	_, err := svc.VerifyCode(context.Background(), "alice@example.com", "1234")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "newsecret")
	assert.ErrorIs(t, err, apperrors.ErrOldPasswordInvalid)

	err = svc.ChangePassword(context.Background(), user.ID, "secret123", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrSamePassword)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "secret123", "newsecret"))

	_, _, err = svc.Login(context.Background(), "alice@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestUpdateStripsProtectedFields(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := register(t, svc, "alice@example.com")
	_, err := svc.VerifyCode(context.Background(), "alice@example.com", "1234")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), user.ID, map[string]interface{}{
		"name":     "Alice B",
		"password": "hijacked",
		"email":    "other@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	// The stripped password change must not have taken.
	_, _, err = svc.Login(context.Background(), "alice@example.com", "secret123")
	assert.NoError(t, err)
}

func TestUpdateMergesAddress(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := register(t, svc, "alice@example.com")

	updated, err := svc.Update(context.Background(), user.ID, map[string]interface{}{
		"street": "1 Main St",
	})
	require.NoError(t, err)

	updated, err = svc.Update(context.Background(), user.ID, map[string]interface{}{
		"building": "Tower A",
	})
	require.NoError(t, err)

	var address map[string]interface{}
	require.NoError(t, json.Unmarshal(updated.Address, &address))
	assert.Equal(t, "1 Main St", address["street"])
	assert.Equal(t, "Tower A", address["building"])
}

func TestUpdateRebuildsLocation(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := register(t, svc, "alice@example.com")

	updated, err := svc.Update(context.Background(), user.ID, map[string]interface{}{
		"latitude":  1.25,
		"longitude": 103.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.25, updated.Latitude)
	assert.Equal(t, 103.5, updated.Longitude)

	var point model.GeoPoint
	require.NoError(t, json.Unmarshal(updated.CurrentLocation, &point))
	assert.Equal(t, "Point", point.Type)
	assert.Equal(t, []float64{103.5, 1.25}, point.Coordinates)
}

func newMobileUserService(t *testing.T) (*UserService, *repository.UserRepository) {
	t.Helper()
	cfg := testConfig()
	cfg.Verification.Mode = config.IdentityMobile
	cfg.Verification.CodeLength = config.IdentityMobile.DefaultCodeLength()

	db := setupTestDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewUserService(repo, NewJWTService(cfg.JWT), cfg)
	svc.genCode = func(length int) (string, error) { return "123456", nil }
	return svc, repo
}

func registerMobile(t *testing.T, svc *UserService, mobile string) *model.User {
	t.Helper()
	user, token, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Alice",
		MobileNo: mobile,
		Password: "secret123",
	}, "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user
}

func TestRegisterMobileMode(t *testing.T) {
	svc, _ := newMobileUserService(t)

	first := registerMobile(t, svc, "+6281234567890")
	assert.Empty(t, first.Email)
	assert.Equal(t, "alice", first.Username)
	assert.False(t, first.MobileNoVerified)

	// A second email-less account with a distinct number must not trip the
	// email index.
	second := registerMobile(t, svc, "+6289876543210")
	assert.Regexp(t, `^alice-\d{3}$`, second.Username)
}

func TestRegisterMobileDuplicateNumber(t *testing.T) {
	svc, _ := newMobileUserService(t)
	registerMobile(t, svc, "+6281234567890")

	_, _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Other",
		MobileNo: "+6281234567890",
		Password: "secret123",
	}, "")
	assert.ErrorIs(t, err, apperrors.ErrMobileExists)
}

func TestRegisterMobileMissingIdentity(t *testing.T) {
	svc, _ := newMobileUserService(t)

	_, _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Alice",
		Password: "secret123",
	}, "")

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Mobile no. is required"}, validationErr.Messages)
}

func TestVerifyCodeMobileMode(t *testing.T) {
	svc, repo := newMobileUserService(t)

	var codeLength int
	svc.genCode = func(length int) (string, error) {
		codeLength = length
		return "123456", nil
	}

	user := registerMobile(t, svc, "+6281234567890")
	assert.Equal(t, 6, codeLength)

	resetToken, err := svc.VerifyCode(context.Background(), "+6281234567890", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, resetToken)

	full, err := repo.FindFull(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, full.MobileNoVerified)
	assert.False(t, full.EmailVerified)
	assert.Empty(t, full.VerificationCode)
}

func TestLoginMobileMode(t *testing.T) {
	svc, _ := newMobileUserService(t)
	registerMobile(t, svc, "+6281234567890")

	_, _, err := svc.Login(context.Background(), "+6281234567890", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrNotVerified)

	_, err = svc.VerifyCode(context.Background(), "+6281234567890", "123456")
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "+6281234567890", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "+6281234567890", user.MobileNo)
}
