package sdk

import (
	"context"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// SignUp registers a new student or lecturer
func (c *Client) SignUp(ctx context.Context, req *SignUpRequest) (*UserInfo, error) {
	var result UserInfo
	if err := c.post(ctx, "/v1/auth/signup", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates a user.
// The access token is automatically stored in the client for subsequent requests.
func (c *Client) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var result LoginResponse
	if err := c.post(ctx, "/v1/auth/login", req, &result); err != nil {
		return nil, err
	}
	if result.Tokens != nil {
		c.SetToken(result.Tokens.AccessToken)
	}
	return &result, nil
}

// Refresh exchanges refreshToken for a new pair and stores the new access token.
// A refresh token is single use; presenting it twice revokes the session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var result TokenPair
	if err := c.doAs(ctx, refreshToken, consts.MethodPost, "/v1/auth/refresh", nil, nil, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.AccessToken)
	return &result, nil
}

// Logout revokes the session and forgets the access token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var result UserInfo
	if err := c.get(ctx, "/v1/users/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUser returns a user's public profile
func (c *Client) GetUser(ctx context.Context, userId string) (*UserInfo, error) {
	var result UserInfo
	if err := c.get(ctx, "/v1/users/"+userId, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
