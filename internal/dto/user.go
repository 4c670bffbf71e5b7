package dto

import "github.com/glowday/api/config"

// RegisterRequest accepts either JSON or multipart form data; the optional
// profile image arrives as a file part alongside the form fields.
type RegisterRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
	MobileNo string `json:"mobile_no" form:"mobile_no"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	Role     string `json:"role" form:"role"`
	Gender   string `json:"gender" form:"gender" binding:"omitempty,oneof=male female other"`
	Age      int    `json:"age" form:"age" binding:"omitempty,gte=0"`
}

// Identity returns the value for the configured identity field.
func (r RegisterRequest) Identity(mode config.IdentityMode) string {
	if mode == config.IdentityMobile {
		return r.MobileNo
	}
	return r.Email
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	MobileNo string `json:"mobile_no" form:"mobile_no"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (r LoginRequest) Identity(mode config.IdentityMode) string {
	if mode == config.IdentityMobile {
		return r.MobileNo
	}
	return r.Email
}

type VerifyCodeRequest struct {
	Email    string `json:"email" form:"email"`
	MobileNo string `json:"mobile_no" form:"mobile_no"`
	Code     string `json:"code" form:"code" binding:"required"`
}

func (r VerifyCodeRequest) Identity(mode config.IdentityMode) string {
	if mode == config.IdentityMobile {
		return r.MobileNo
	}
	return r.Email
}

type ResendCodeRequest struct {
	Email    string `json:"email" form:"email"`
	MobileNo string `json:"mobile_no" form:"mobile_no"`
}

func (r ResendCodeRequest) Identity(mode config.IdentityMode) string {
	if mode == config.IdentityMobile {
		return r.MobileNo
	}
	return r.Email
}

type SetPasswordRequest struct {
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" binding:"required"`
	NewPassword string `json:"new_password" form:"new_password" binding:"required,min=6"`
}

// ProtectedUserFields are stripped from partial updates; they only change
// through the dedicated auth flows.
var ProtectedUserFields = []string{
	"id",
	"slug",
	"email",
	"mobile_no",
	"username",
	"password",
	"verification_code",
	"reset_password_token",
	"email_verified",
	"mobile_no_verified",
	"payment_active",
	"created_at",
	"updated_at",
	"deleted_at",
}
