package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glowday/api/config"
	"github.com/glowday/api/internal/constants"
	"github.com/glowday/api/internal/dto"
	apperrors "github.com/glowday/api/internal/errors"
	"github.com/glowday/api/internal/model"
	"github.com/glowday/api/internal/service"
	"github.com/glowday/api/internal/validation"
	"github.com/glowday/api/pkg/crypto"
	"github.com/glowday/api/pkg/storage"
)

// UserHandler serves the auth flows alongside the standard resource
// endpoints. Record creation happens through Register, never the generic
// create route.
type UserHandler struct {
	*ResourceHandler[model.User]
	svc     *service.UserService
	storage storage.Storage
	cfg     *config.Config
}

func NewUserHandler(svc *service.UserService, store storage.Storage, cfg *config.Config) *UserHandler {
	return &UserHandler{
		ResourceHandler: NewResourceHandler(svc.CRUDService, nil),
		svc:             svc,
		storage:         store,
		cfg:             cfg,
	}
}

// isDocsClient reports whether the request came from the API documentation,
// which receives tokens unwrapped.
func isDocsClient(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Referer"), "docs")
}

// wrapToken encrypts a bearer token for regular clients. Documentation
// clients get the raw token, as do all clients when no AES key is configured.
func (h *UserHandler) wrapToken(c *gin.Context, token string) (string, error) {
	if isDocsClient(c) || h.cfg.Crypto.Secret == "" {
		return token, nil
	}
	return crypto.Encrypt(token, h.cfg.Crypto.Secret, h.cfg.Crypto.IV)
}

// Register handles POST /api/user. Accepts JSON or multipart form data with
// an optional image part; the access token travels in the access_token
// response header.
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.NewValidationError(validation.Messages(err)...))
		return
	}

	imageURL := ""
	if file, err := c.FormFile("image"); err == nil && h.storage != nil {
		url, uploadErr := h.storage.Upload(c.Request.Context(), file)
		if uploadErr != nil {
			respondWithError(c, apperrors.WrapError(apperrors.ErrInternal, uploadErr))
			return
		}
		imageURL = url
	}

	user, token, err := h.svc.Register(c.Request.Context(), &req, imageURL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	wrapped, err := h.wrapToken(c, token)
	if err != nil {
		respondWithError(c, apperrors.WrapError(apperrors.ErrInternal, err))
		return
	}

	constants.Respond(c, http.StatusCreated, "Record created", user, map[string]string{
		constants.HeaderAccessToken: wrapped,
	})
}

// Login handles POST /api/user/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.NewValidationError(validation.Messages(err)...))
		return
	}

	user, token, err := h.svc.Login(c.Request.Context(), req.Identity(h.cfg.Verification.Mode), req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	wrapped, err := h.wrapToken(c, token)
	if err != nil {
		respondWithError(c, apperrors.WrapError(apperrors.ErrInternal, err))
		return
	}

	constants.Respond(c, http.StatusOK, "Logged In Successfully", user, map[string]string{
		constants.HeaderAccessToken: wrapped,
	})
}

// VerifyCode handles POST /api/user/verify-code. The reset token for the
// follow-up set-password call travels in the reset_password_token header.
func (h *UserHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.NewValidationError(validation.Messages(err)...))
		return
	}

	resetToken, err := h.svc.VerifyCode(c.Request.Context(), req.Identity(h.cfg.Verification.Mode), req.Code)
	if err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusOK, "Code Verified Successfully", nil, map[string]string{
		constants.HeaderResetPasswordToken: resetToken,
	})
}

// ResendCode handles POST /api/user/resend-code. The response does not
// disclose whether the identity exists.
func (h *UserHandler) ResendCode(c *gin.Context) {
	var req dto.ResendCodeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.NewValidationError(validation.Messages(err)...))
		return
	}

	if err := h.svc.ResendCode(c.Request.Context(), req.Identity(h.cfg.Verification.Mode)); err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusOK, "Code Sent Successfully", nil, nil)
}

// Update handles PATCH /api/user/:id. Accepts a JSON column map or multipart
// form data with an optional image part replacing the profile picture.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, formErr := c.MultipartForm()
		if formErr != nil {
			respondWithError(c, apperrors.NewValidationError("Invalid request body"))
			return
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				changes[key] = values[0]
			}
		}
		if files := form.File["image"]; len(files) > 0 && h.storage != nil {
			url, uploadErr := h.storage.Upload(c.Request.Context(), files[0])
			if uploadErr != nil {
				respondWithError(c, apperrors.WrapError(apperrors.ErrInternal, uploadErr))
				return
			}
			changes["image_url"] = url
		}
	} else if err := c.ShouldBindJSON(&changes); err != nil {
		respondWithError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, changes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusOK, "Record updated", updated, nil)
}

// SetPassword handles POST /api/user/set-password for the authenticated user.
func (h *UserHandler) SetPassword(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req dto.SetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.NewValidationError(validation.Messages(err)...))
		return
	}

	if err := h.svc.SetPassword(c.Request.Context(), user.ID, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusOK, "Password Set Successfully", nil, nil)
}

// ChangePassword handles POST /api/user/change-password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.NewValidationError(validation.Messages(err)...))
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusOK, "Password Changed Successfully", nil, nil)
}

// currentUser reads the authenticated account placed on the context by the
// auth middleware.
func currentUser(c *gin.Context) (*model.User, error) {
	value, exists := c.Get(string(constants.CtxKeyUser))
	if !exists {
		return nil, apperrors.ErrUnauthorized
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
