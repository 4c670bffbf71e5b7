package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/glowday/api/config"
	"github.com/glowday/api/internal/constants"
	"github.com/glowday/api/internal/handler"
	"github.com/glowday/api/internal/middleware"
	"github.com/glowday/api/internal/model"
	"github.com/glowday/api/internal/repository"
	"github.com/glowday/api/internal/service"
	"github.com/glowday/api/pkg/crypto"
	"github.com/glowday/api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "glowday-api",
			Environment: "development",
			Port:        "8080",
		},
		Bcrypt: config.BcryptConfig{Cost: 4},
		Verification: config.VerificationConfig{
			Mode:       config.IdentityEmail,
			CodeLength: 4,
		},
		JWT: config.JWTConfig{
			Secret:         "test-secret",
			ExpirationTime: time.Hour,
		},
		Crypto: config.CryptoConfig{
			Secret: "0123456789abcdef",
			IV:     "fedcba9876543210",
		},
	}
}

type testAPI struct {
	engine *gin.Engine
	repo   *repository.UserRepository
	db     *gorm.DB
	cfg    *config.Config
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Role{}))

	cfg := testConfig()
	repo := repository.NewUserRepository(db)
	jwtService := service.NewJWTService(cfg.JWT)
	userService := service.NewUserService(repo, jwtService, cfg)
	roleService := service.NewRoleService(db)

	engine := NewRouter(
		handler.NewUserHandler(userService, nil, cfg),
		handler.NewRoleHandler(roleService),
		handler.NewHealthHandler(db),
		middleware.AuthMiddleware(jwtService, repo, cfg),
		nil,
		cfg,
	).SetupRoutes()

	return &testAPI{engine: engine, repo: repo, db: db, cfg: cfg}
}

func (api *testAPI) request(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	api.engine.ServeHTTP(recorder, req)
	return recorder
}

// registerVerified creates an account, marks it verified directly and logs in
// to obtain the wrapped bearer token.
func (api *testAPI) registerVerified(t *testing.T, email string) string {
	t.Helper()

	resp := api.request(t, http.MethodPost, "/api/user", gin.H{
		"name":     "Alice",
		"email":    email,
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope struct {
		Data model.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.NoError(t, api.repo.Store.Update(context.Background(), envelope.Data.ID, map[string]interface{}{
		"email_verified": true,
	}))

	login := api.request(t, http.MethodPost, "/api/user/login", gin.H{
		"email":    email,
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	token := login.Header().Get(constants.HeaderAccessToken)
	require.NotEmpty(t, token)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	api := setupAPI(t)

	resp := api.request(t, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRegisterReturnsEncryptedToken(t *testing.T) {
	api := setupAPI(t)

	resp := api.request(t, http.MethodPost, "/api/user", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope constants.Envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusCreated, envelope.StatusCode)
	assert.Equal(t, "Record created", envelope.Message)

	wrapped := resp.Header().Get(constants.HeaderAccessToken)
	require.NotEmpty(t, wrapped)

	// The header carries an AES-wrapped JWT for regular clients.
	raw, err := crypto.Decrypt(wrapped, api.cfg.Crypto.Secret, api.cfg.Crypto.IV)
	require.NoError(t, err)

	claims, err := service.NewJWTService(api.cfg.JWT).ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterDocsClientGetsRawToken(t *testing.T) {
	api := setupAPI(t)

	resp := api.request(t, http.MethodPost, "/api/user", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	}, map[string]string{"Referer": "http://localhost:8080/docs"})
	require.Equal(t, http.StatusCreated, resp.Code)

	token := resp.Header().Get(constants.HeaderAccessToken)
	_, err := service.NewJWTService(api.cfg.JWT).ValidateToken(token)
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	api := setupAPI(t)

	resp := api.request(t, http.MethodPost, "/api/user", gin.H{
		"email": "alice@example.com",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope constants.ErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Bad Request", envelope.Error)
	assert.NotEmpty(t, envelope.Message)
}

func TestLoginUnverifiedRejected(t *testing.T) {
	api := setupAPI(t)

	resp := api.request(t, http.MethodPost, "/api/user", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	login := api.request(t, http.MethodPost, "/api/user/login", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, login.Code)
	assert.Empty(t, login.Header().Get(constants.HeaderAccessToken))
}

func TestVerifyCodeEndpoint(t *testing.T) {
	api := setupAPI(t)

	resp := api.request(t, http.MethodPost, "/api/user", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var envelope struct {
		Data model.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	// Pin a known code so the flow can be driven over HTTP.
	hashed, err := crypto.HashPassword("1234", api.cfg.Bcrypt.Cost)
	require.NoError(t, err)
	require.NoError(t, api.repo.Store.Update(context.Background(), envelope.Data.ID, map[string]interface{}{
		"verification_code": hashed,
	}))

	verify := api.request(t, http.MethodPost, "/api/user/verify-code", gin.H{
		"email": "alice@example.com",
		"code":  "1234",
	}, nil)
	require.Equal(t, http.StatusOK, verify.Code, verify.Body.String())
	assert.NotEmpty(t, verify.Header().Get(constants.HeaderResetPasswordToken))

	// Replay is rejected.
	replay := api.request(t, http.MethodPost, "/api/user/verify-code", gin.H{
		"email": "alice@example.com",
		"code":  "1234",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, replay.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	api := setupAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.request(t, http.MethodGet, "/api/user", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.request(t, http.MethodGet, "/api/user/1", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.request(t, http.MethodPost, "/api/role", gin.H{"name": "x"}, nil).Code)
}

func TestListUsersPaginationHeader(t *testing.T) {
	api := setupAPI(t)
	token := api.registerVerified(t, "alice@example.com")

	resp := api.request(t, http.MethodGet, "/api/user?page=1&limit=5", nil, map[string]string{
		constants.HeaderAuthorization: "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var pagination constants.Pagination
	require.NoError(t, json.Unmarshal([]byte(resp.Header().Get(constants.HeaderPagination)), &pagination))
	assert.Equal(t, int64(1), pagination.Count)
	assert.Equal(t, 5, pagination.PerPage)
	assert.Equal(t, 1, pagination.CurrentPage)
}

func TestGetUserInvalidID(t *testing.T) {
	api := setupAPI(t)
	token := api.registerVerified(t, "alice@example.com")

	resp := api.request(t, http.MethodGet, "/api/user/not-a-number", nil, map[string]string{
		constants.HeaderAuthorization: "Bearer " + token,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope constants.ErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"Invalid Id"}, envelope.Message)
}

func TestRoleListIsPublic(t *testing.T) {
	api := setupAPI(t)
	require.NoError(t, api.db.Create(&model.Role{Name: model.RoleSuperAdmin}).Error)
	require.NoError(t, api.db.Create(&model.Role{Name: "vendor"}).Error)

	resp := api.request(t, http.MethodGet, "/api/role", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data []model.Role `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "vendor", envelope.Data[0].Name)
}

func TestChangePasswordEndpoint(t *testing.T) {
	api := setupAPI(t)
	token := api.registerVerified(t, "alice@example.com")

	resp := api.request(t, http.MethodPost, "/api/user/change-password", gin.H{
		"old_password": "secret123",
		"new_password": "secret123",
	}, map[string]string{
		constants.HeaderAuthorization: "Bearer " + token,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope constants.ErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"New Password Cannot Be The Same As The Old Password"}, envelope.Message)

	ok := api.request(t, http.MethodPost, "/api/user/change-password", gin.H{
		"old_password": "secret123",
		"new_password": "newsecret",
	}, map[string]string{
		constants.HeaderAuthorization: "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, ok.Code)
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	api := setupAPI(t)
	token := api.registerVerified(t, "alice@example.com")

	other := api.request(t, http.MethodPost, "/api/user", gin.H{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, other.Code)

	var envelope struct {
		Data model.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(other.Body.Bytes(), &envelope))

	resp := api.request(t, http.MethodDelete, "/api/user/"+itoa(envelope.Data.ID), nil, map[string]string{
		constants.HeaderAuthorization: "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// Hidden from reads, still on disk.
	missing := api.request(t, http.MethodGet, "/api/user/"+itoa(envelope.Data.ID), nil, map[string]string{
		constants.HeaderAuthorization: "Bearer " + token,
	})
	assert.Equal(t, http.StatusNotFound, missing.Code)

	var count int64
	require.NoError(t, api.db.Unscoped().Model(&model.User{}).Where("id = ?", envelope.Data.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func itoa(id uint) string {
	return strconv.Itoa(int(id))
}
