package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"

	"github.com/mbeoliero/coursehub/internal/middleware"
	"github.com/mbeoliero/coursehub/internal/service"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
	"github.com/mbeoliero/coursehub/pkg/jwt"
	"github.com/mbeoliero/coursehub/pkg/response"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService  *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure}
}

// SignUp handles user registration
func (h *AuthHandler) SignUp(ctx context.Context, c *app.RequestContext) {
	var req service.SignUpRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	userInfo, err := h.authService.SignUp(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, userInfo)
}

// Login handles user login
func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req service.LoginRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	h.setTokenCookies(c, resp.Tokens)
	response.Success(ctx, c, resp)
}

// Refresh exchanges the refresh token for a new pair
func (h *AuthHandler) Refresh(ctx context.Context, c *app.RequestContext) {
	pair, err := h.authService.Refresh(ctx, middleware.RefreshToken(c))
	if err != nil {
		if e, ok := errcode.From(err); ok && e.Code == errcode.ErrRefreshReused.Code {
			h.clearTokenCookies(c)
		}
		response.Error(ctx, c, err)
		return
	}

	h.setTokenCookies(c, pair)
	response.Success(ctx, c, pair)
}

// Logout revokes the caller's keys and clears the cookies
func (h *AuthHandler) Logout(ctx context.Context, c *app.RequestContext) {
	if err := h.authService.Logout(ctx, middleware.GetUserId(c)); err != nil {
		response.Error(ctx, c, err)
		return
	}

	h.clearTokenCookies(c)
	response.Success(ctx, c, nil)
}

func (h *AuthHandler) setTokenCookies(c *app.RequestContext, pair *jwt.TokenPair) {
	h.setCookie(c, constant.CookieAccessToken, pair.AccessToken, h.authService.AccessTTL())
	h.setCookie(c, constant.CookieRefreshToken, pair.RefreshToken, h.authService.RefreshTTL())
}

func (h *AuthHandler) clearTokenCookies(c *app.RequestContext) {
	h.setCookie(c, constant.CookieAccessToken, "", -time.Second)
	h.setCookie(c, constant.CookieRefreshToken, "", -time.Second)
}

func (h *AuthHandler) setCookie(c *app.RequestContext, name, value string, ttl time.Duration) {
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", protocol.CookieSameSiteLaxMode, h.cookieSecure, true)
}
