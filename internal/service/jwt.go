package service

import (
	"time"

	"github.com/glowday/api/config"
	apperrors "github.com/glowday/api/internal/errors"
	"github.com/glowday/api/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload issued at login and on registration.
type Claims struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret     []byte
	expiration time.Duration
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.ExpirationTime,
	}
}

// GenerateToken signs a token for the user with the configured lifetime.
func (s *JWTService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:       user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a signed token. Any failure, expiry
// included, surfaces as the uniform unauthorized error.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}
