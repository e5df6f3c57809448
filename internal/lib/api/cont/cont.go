package cont

import "context"

type contextKey string

const usernameKey contextKey = "username"

// PutUsername stores the authenticated API username in the request context.
func PutUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// Username returns the authenticated API username, empty when absent.
func Username(ctx context.Context) string {
	if v, ok := ctx.Value(usernameKey).(string); ok {
		return v
	}
	return ""
}
