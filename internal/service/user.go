package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/glowday/api/config"
	"github.com/glowday/api/internal/dto"
	apperrors "github.com/glowday/api/internal/errors"
	"github.com/glowday/api/internal/model"
	"github.com/glowday/api/internal/repository"
	"github.com/glowday/api/pkg/crypto"
	"github.com/glowday/api/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// addressFields are merged into the nested address document instead of being
// stored as columns.
var addressFields = []string{"street", "building", "house", "landmark"}

// UserService layers registration, login and the verification flows on top of
// the shared CRUD lifecycle.
type UserService struct {
	*CRUDService[model.User]
	repo    *repository.UserRepository
	jwt     *JWTService
	cfg     *config.Config
	genCode func(length int) (string, error)
}

func NewUserService(repo *repository.UserRepository, jwtService *JWTService, cfg *config.Config) *UserService {
	s := &UserService{
		repo:    repo,
		jwt:     jwtService,
		cfg:     cfg,
		genCode: crypto.NumericCode,
	}
	s.CRUDService = NewCRUDService(repo.Store, Hooks[model.User]{
		BeforeCreate: s.beforeCreate,
		BeforeUpdate: s.beforeUpdate,
	})
	return s
}

func (s *UserService) mode() config.IdentityMode {
	return s.cfg.Verification.Mode
}

// Register creates an account after checking both identity fields for
// duplicates, then signs a token so the client is authenticated immediately.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest, imageURL string) (*model.User, string, error) {
	identity := strings.TrimSpace(req.Identity(s.mode()))
	if identity == "" {
		if s.mode() == config.IdentityMobile {
			return nil, "", apperrors.NewValidationError("Mobile no. is required")
		}
		return nil, "", apperrors.NewValidationError("Email is required")
	}

	if req.Email != "" {
		taken, err := s.repo.Exists(ctx, "email", req.Email)
		if err != nil {
			return nil, "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if taken {
			return nil, "", apperrors.ErrEmailExists
		}
	}
	if req.MobileNo != "" {
		taken, err := s.repo.Exists(ctx, "mobile_no", req.MobileNo)
		if err != nil {
			return nil, "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if taken {
			return nil, "", apperrors.ErrMobileExists
		}
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		MobileNo: req.MobileNo,
		Password: req.Password,
		Role:     req.Role,
		Gender:   req.Gender,
		Age:      req.Age,
		ImageURL: imageURL,
	}

	created, err := s.Create(ctx, user)
	if err != nil {
		// The unique index backstops the pre-checks under concurrency.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if s.mode() == config.IdentityMobile {
				return nil, "", apperrors.ErrMobileExists
			}
			return nil, "", apperrors.ErrEmailExists
		}
		return nil, "", err
	}

	token, err := s.jwt.GenerateToken(created)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// beforeCreate normalizes identity fields, derives a unique username, hashes
// the password and issues a hashed verification code.
func (s *UserService) beforeCreate(ctx context.Context, user *model.User) (*model.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.MobileNo = strings.TrimSpace(user.MobileNo)
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.ImageURL == "" {
		user.ImageURL = model.DefaultImageURL
	}

	username, err := s.generateUsername(ctx, user)
	if err != nil {
		return nil, err
	}
	user.Username = username

	code, err := s.genCode(s.cfg.Verification.CodeLength)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	hashedCode, err := crypto.HashPassword(code, s.cfg.Bcrypt.Cost)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	user.VerificationCode = hashedCode

	hashedPassword, err := crypto.HashPassword(user.Password, s.cfg.Bcrypt.Cost)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	user.Password = hashedPassword

	logger.GetLogger().Info("Verification code issued", zap.String("username", user.Username))
	return user, nil
}

// generateUsername slugifies the identity and retries with a random numeric
// suffix until the result is free.
func (s *UserService) generateUsername(ctx context.Context, user *model.User) (string, error) {
	base := user.Email
	if at := strings.Index(base, "@"); at > 0 {
		base = base[:at]
	}
	if base == "" {
		base = user.Name
	}
	base = strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if base == "" {
		base = "user"
	}

	candidate := base
	for attempt := 0; attempt < 10; attempt++ {
		taken, err := s.repo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if !taken {
			return candidate, nil
		}
		suffix, err := crypto.NumericCode(3)
		if err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
		candidate = fmt.Sprintf("%s-%s", base, suffix)
	}
	return "", apperrors.WrapError(apperrors.ErrInternal, fmt.Errorf("could not allocate username for %q", base))
}

// Login verifies credentials and account standing, then returns the projected
// record with a fresh token. The credential failure message never reveals
// whether the identity exists.
func (s *UserService) Login(ctx context.Context, identity, password string) (*model.User, string, error) {
	user, err := s.verifyCredentials(ctx, identity, password)
	if err != nil {
		return nil, "", err
	}
	if err := s.verifyStanding(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	projected, err := s.GetByID(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return projected, token, nil
}

func (s *UserService) verifyCredentials(ctx context.Context, identity, password string) (*model.User, error) {
	user, err := s.repo.FindByIdentity(ctx, s.mode(), identity)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil || !crypto.CheckHash(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// verifyStanding fails closed: a disabled account loses access even when
// verified.
func (s *UserService) verifyStanding(user *model.User) error {
	if !user.Status {
		return apperrors.ErrAccountDisabled
	}
	verified := user.EmailVerified
	if s.mode() == config.IdentityMobile {
		verified = user.MobileNoVerified
	}
	if !verified {
		return apperrors.ErrNotVerified
	}
	return nil
}

// VerifyCode consumes a verification code. On success the account's identity
// field is marked verified, the code is cleared so it cannot be replayed, and
// a reset token is issued for the follow-up set-password call. Every failure
// mode returns the same error.
func (s *UserService) VerifyCode(ctx context.Context, identity, code string) (string, error) {
	user, err := s.repo.FindByIdentity(ctx, s.mode(), identity)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil || user.VerificationCode == "" || !crypto.CheckHash(user.VerificationCode, code) {
		return "", apperrors.ErrInvalidCode
	}

	resetToken := crypto.ResetToken()
	changes := map[string]interface{}{
		"verification_code":       "",
		"reset_password_token":    resetToken,
		s.mode().VerifiedColumn(): true,
	}
	if err := s.repo.UpdateByIdentity(ctx, s.mode(), identity, changes); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return resetToken, nil
}

// ResendCode issues a fresh code for an existing account. The response is
// identical whether or not the identity exists.
func (s *UserService) ResendCode(ctx context.Context, identity string) error {
	user, err := s.repo.FindByIdentity(ctx, s.mode(), identity)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return nil
	}

	code, err := s.genCode(s.cfg.Verification.CodeLength)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	hashedCode, err := crypto.HashPassword(code, s.cfg.Bcrypt.Cost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.repo.UpdateByIdentity(ctx, s.mode(), identity, map[string]interface{}{
		"verification_code": hashedCode,
	}); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Verification code reissued", zap.Uint("id", user.ID))
	return nil
}

// SetPassword replaces the password and invalidates the reset token.
func (s *UserService) SetPassword(ctx context.Context, userID uint, password string) error {
	hashed, err := crypto.HashPassword(password, s.cfg.Bcrypt.Cost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.repo.Store.Update(ctx, userID, map[string]interface{}{
		"password":             hashed,
		"reset_password_token": "",
	}); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

// ChangePassword requires the old password and rejects reusing it.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.repo.FindFull(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !crypto.CheckHash(user.Password, oldPassword) {
		return apperrors.ErrOldPasswordInvalid
	}
	if oldPassword == newPassword || crypto.CheckHash(user.Password, newPassword) {
		return apperrors.ErrSamePassword
	}

	return s.SetPassword(ctx, userID, newPassword)
}

// beforeUpdate strips credential and identity columns out of partial updates,
// folds loose address fields into the nested address document and rebuilds
// the location point when coordinates change.
func (s *UserService) beforeUpdate(ctx context.Context, id uint, changes map[string]interface{}) (map[string]interface{}, error) {
	for _, field := range dto.ProtectedUserFields {
		delete(changes, field)
	}

	if err := s.mergeAddress(ctx, id, changes); err != nil {
		return nil, err
	}
	s.applyLocation(changes)

	return changes, nil
}

func (s *UserService) mergeAddress(ctx context.Context, id uint, changes map[string]interface{}) error {
	patch := map[string]interface{}{}
	for _, field := range addressFields {
		if value, ok := changes[field]; ok {
			patch[field] = value
			delete(changes, field)
		}
	}
	if nested, ok := changes["address"].(map[string]interface{}); ok {
		for key, value := range nested {
			patch[key] = value
		}
		delete(changes, "address")
	}
	if len(patch) == 0 {
		return nil
	}

	user, err := s.repo.FindFull(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	address := map[string]interface{}{}
	if len(user.Address) > 0 {
		if err := json.Unmarshal(user.Address, &address); err != nil {
			address = map[string]interface{}{}
		}
	}
	for key, value := range patch {
		address[key] = value
	}

	raw, err := json.Marshal(address)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	changes["address"] = datatypes.JSON(raw)
	return nil
}

func (s *UserService) applyLocation(changes map[string]interface{}) {
	lat, hasLat := toFloat(changes["latitude"])
	lng, hasLng := toFloat(changes["longitude"])
	if !hasLat || !hasLng {
		return
	}

	point := model.GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
	raw, err := json.Marshal(point)
	if err != nil {
		return
	}
	changes["latitude"] = lat
	changes["longitude"] = lng
	changes["current_location"] = datatypes.JSON(raw)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		// Multipart form values arrive as strings.
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
