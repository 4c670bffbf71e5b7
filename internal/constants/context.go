package constants

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// Context Keys for request metadata
const (
	CtxKeyRequestID ContextKey = "request_id"
	CtxKeyUser      ContextKey = "auth_user"
	CtxKeyUserID    ContextKey = "user_id"
)
