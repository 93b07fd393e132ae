package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
	"github.com/mbeoliero/coursehub/pkg/response"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer token
	BearerPrefix = "Bearer "
	// UserIdKey is the context key for user Id
	UserIdKey = "user_id"
	// UserRoleKey is the context key for the user's role
	UserRoleKey = "user_role"
)

// Authenticator verifies an access token
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*entity.User, error)
}

// Auth is the access token authentication middleware
func Auth(auth Authenticator) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		user, err := auth.Authenticate(ctx, AccessToken(c))
		if err != nil {
			response.Abort(ctx, c, err)
			return
		}

		// Store user info in context
		c.Set(UserIdKey, user.Id)
		c.Set(UserRoleKey, user.Role)

		c.Next(ctx)
	}
}

// RequireRole rejects callers whose role is not listed. It must run after Auth.
func RequireRole(roles ...string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		role := GetUserRole(c)
		for _, r := range roles {
			if r == role {
				c.Next(ctx)
				return
			}
		}
		response.Abort(ctx, c, errcode.ErrNoPermission)
	}
}

// AccessToken reads the access token from the cookie, falling back to a bearer header
func AccessToken(c *app.RequestContext) string {
	if v := c.Cookie(constant.CookieAccessToken); len(v) > 0 {
		return string(v)
	}
	return BearerToken(string(c.GetHeader(AuthorizationHeader)))
}

// RefreshToken reads the refresh token from the cookie, falling back to a bearer header
func RefreshToken(c *app.RequestContext) string {
	if v := c.Cookie(constant.CookieRefreshToken); len(v) > 0 {
		return string(v)
	}
	return BearerToken(string(c.GetHeader(AuthorizationHeader)))
}

// BearerToken extracts the token of an Authorization header value
func BearerToken(header string) string {
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
}

// GetUserId gets user Id from context
func GetUserId(c *app.RequestContext) string {
	if v, ok := c.Get(UserIdKey); ok {
		return v.(string)
	}
	return ""
}

// GetUserRole gets the user's role from context
func GetUserRole(c *app.RequestContext) string {
	if v, ok := c.Get(UserRoleKey); ok {
		return v.(string)
	}
	return ""
}
