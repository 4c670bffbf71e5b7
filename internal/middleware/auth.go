package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glowday/api/config"
	"github.com/glowday/api/internal/constants"
	apperrors "github.com/glowday/api/internal/errors"
	"github.com/glowday/api/internal/repository"
	"github.com/glowday/api/internal/service"
	"github.com/glowday/api/pkg/crypto"
	"github.com/glowday/api/pkg/logger"
	"go.uber.org/zap"
)

// AuthMiddleware authenticates the bearer token and loads the account onto
// the context. Regular clients carry an encrypted token; requests referred
// from the API documentation carry it raw. Every failure path returns the
// same 401 body.
func AuthMiddleware(jwtService *service.JWTService, repo *repository.UserRepository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c)
			return
		}

		if cfg.Crypto.Secret != "" && !strings.Contains(c.GetHeader("Referer"), "docs") {
			decrypted, err := crypto.Decrypt(token, cfg.Crypto.Secret, cfg.Crypto.IV)
			if err != nil {
				unauthorized(c)
				return
			}
			token = decrypted
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			unauthorized(c)
			return
		}

		user, err := repo.FindFull(c.Request.Context(), claims.ID)
		if err != nil {
			unauthorized(c)
			return
		}
		if !user.Status {
			logger.GetLogger().Warn("Disabled account attempted access", zap.Uint("id", user.ID))
			unauthorized(c)
			return
		}

		c.Set(string(constants.CtxKeyUser), user)
		c.Set(string(constants.CtxKeyUserID), user.ID)

		ctx := context.WithValue(c.Request.Context(), constants.CtxKeyUser, user)
		ctx = context.WithValue(ctx, constants.CtxKeyUserID, user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(constants.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *gin.Context) {
	constants.RespondError(c, http.StatusUnauthorized,
		http.StatusText(http.StatusUnauthorized),
		[]string{apperrors.ErrUnauthorized.Message},
	)
	c.Abort()
}
