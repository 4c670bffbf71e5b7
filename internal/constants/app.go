package constants

// Application Information
const (
	AppName    = "glowday-api"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// HTTP Header Names
const (
	HeaderAuthorization      = "Authorization"
	HeaderPagination         = "Pagination"
	HeaderAccessToken        = "access_token"
	HeaderResetPasswordToken = "reset_password_token"
)
