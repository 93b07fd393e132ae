package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mbeoliero/kit/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mbeoliero/coursehub/internal/config"
	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/internal/repository"
	"github.com/mbeoliero/coursehub/pkg/errcode"
	"github.com/mbeoliero/coursehub/pkg/jwt"
)

// AuthService handles authentication logic
type AuthService struct {
	userRepo   *repository.UserRepo
	keyRepo    *repository.KeyTokenRepo
	cfg        *config.Config
	tokenStore *jwt.TokenStore
}

// NewAuthService creates a new AuthService. Used refresh tokens are tracked in
// Redis when it is configured; the key record alone still detects reuse.
func NewAuthService(repos *repository.Repositories, cfg *config.Config) *AuthService {
	s := &AuthService{
		userRepo: repos.User,
		keyRepo:  repos.KeyToken,
		cfg:      cfg,
	}
	if repos.Redis != nil {
		s.tokenStore = jwt.NewTokenStore(repos.Redis, cfg.JWT.RefreshExpireHours)
	}
	return s
}

// SignUpRequest represents user registration request
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=128"`
	Role     string `json:"role" validate:"required,oneof=student lecturer"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url,max=512"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents user login response
type LoginResponse struct {
	User   *entity.UserInfo `json:"user"`
	Tokens *jwt.TokenPair   `json:"tokens"`
}

// AccessTTL is the lifetime of access tokens and their cookie
func (s *AuthService) AccessTTL() time.Duration {
	return time.Duration(s.cfg.JWT.AccessExpireHours) * time.Hour
}

// RefreshTTL is the lifetime of refresh tokens and their cookie
func (s *AuthService) RefreshTTL() time.Duration {
	return time.Duration(s.cfg.JWT.RefreshExpireHours) * time.Hour
}

// SignUp registers a new student or lecturer
func (s *AuthService) SignUp(ctx context.Context, req *SignUpRequest) (*entity.UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !entity.IsSignupRole(req.Role) {
		return nil, errcode.ErrRoleNotAllowed
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.CtxError(ctx, "check user exists failed: %v", err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if existing != nil {
		return nil, errcode.ErrUserExists
	}

	// Hash password with bcrypt
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.CtxError(ctx, "hash password failed: %v", err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}

	user := &entity.User{
		Id:       entity.NewId(),
		Email:    email,
		Name:     strings.TrimSpace(req.Name),
		Avatar:   req.Avatar,
		Password: string(hashedPassword),
		Role:     req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errcode.ErrUserExists
		}
		log.CtxError(ctx, "create user failed: %v", err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}

	log.CtxInfo(ctx, "user registered: user_id=%s, role=%s", user.Id, user.Role)
	return user.ToUserInfo(), nil
}

// Login verifies credentials, rotates the user's key record and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		log.CtxError(ctx, "get user failed: %v", err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if user == nil {
		return nil, errcode.ErrLoginFailed
	}

	// Verify password with bcrypt
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errcode.ErrLoginFailed
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	log.CtxInfo(ctx, "user logged in: user_id=%s", user.Id)
	return &LoginResponse{User: user.ToUserInfo(), Tokens: pair}, nil
}

// issue creates fresh signing keys for the user and a token pair signed with them
func (s *AuthService) issue(ctx context.Context, user *entity.User) (*jwt.TokenPair, error) {
	publicKey, err := jwt.GenerateKey()
	if err != nil {
		log.CtxError(ctx, "generate key failed: %v", err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	privateKey, err := jwt.GenerateKey()
	if err != nil {
		log.CtxError(ctx, "generate key failed: %v", err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}

	pair, err := jwt.GenerateTokenPair(identityOf(user), publicKey, privateKey, s.AccessTTL(), s.RefreshTTL())
	if err != nil {
		log.CtxError(ctx, "generate token failed: %v", err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}

	err = s.keyRepo.Upsert(ctx, &entity.KeyToken{
		UserId:       user.Id,
		PublicKey:    publicKey,
		PrivateKey:   privateKey,
		RefreshToken: pair.RefreshToken,
	})
	if err != nil {
		log.CtxError(ctx, "store key record failed: user_id=%s, error=%v", user.Id, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if s.tokenStore != nil {
		if err := s.tokenStore.ForceLogoutUser(ctx, user.Id); err != nil {
			log.CtxWarn(ctx, "reset used refresh tokens failed: user_id=%s, error=%v", user.Id, err)
		}
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. Presenting a refresh
// token that was already exchanged revokes the key record, which logs the
// user out everywhere.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	if refreshToken == "" {
		return nil, errcode.ErrTokenMissing
	}
	userId, err := jwt.PeekUserId(refreshToken)
	if err != nil {
		return nil, err
	}
	kt, err := s.keyRepo.GetByUserId(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "get key record failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if kt == nil {
		return nil, errcode.ErrKeyNotFound
	}

	if s.tokenStore != nil {
		used, err := s.tokenStore.IsUsed(ctx, userId, refreshToken)
		if err != nil {
			log.CtxWarn(ctx, "check used refresh token failed: %v", err)
		} else if used {
			return nil, s.revoke(ctx, userId)
		}
	}

	claims, err := jwt.ValidateToken(refreshToken, kt.PrivateKey, userId)
	if err != nil {
		return nil, err
	}
	if kt.RefreshToken != refreshToken {
		return nil, s.revoke(ctx, userId)
	}

	id := jwt.Identity{UserId: claims.UserId, Email: claims.Email, Role: claims.Role}
	pair, err := jwt.GenerateTokenPair(id, kt.PublicKey, kt.PrivateKey, s.AccessTTL(), s.RefreshTTL())
	if err != nil {
		log.CtxError(ctx, "generate token failed: %v", err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}

	rotated, err := s.keyRepo.RotateRefreshToken(ctx, userId, refreshToken, pair.RefreshToken)
	if err != nil {
		log.CtxError(ctx, "rotate refresh token failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if !rotated {
		// a concurrent refresh already consumed this token
		return nil, s.revoke(ctx, userId)
	}
	if s.tokenStore != nil {
		if err := s.tokenStore.MarkUsed(ctx, userId, refreshToken); err != nil {
			log.CtxWarn(ctx, "mark refresh token used failed: %v", err)
		}
	}

	log.CtxInfo(ctx, "token refreshed: user_id=%s", userId)
	return pair, nil
}

func (s *AuthService) revoke(ctx context.Context, userId string) error {
	log.CtxWarn(ctx, "refresh token reuse detected, revoking key record: user_id=%s", userId)
	if err := s.keyRepo.Delete(ctx, userId); err != nil {
		log.CtxError(ctx, "delete key record failed: user_id=%s, error=%v", userId, err)
	}
	return errcode.ErrRefreshReused
}

// Logout deletes the user's key record so every issued token stops verifying
func (s *AuthService) Logout(ctx context.Context, userId string) error {
	if err := s.keyRepo.Delete(ctx, userId); err != nil {
		log.CtxError(ctx, "delete key record failed: user_id=%s, error=%v", userId, err)
		return errcode.ErrInternalServer.Wrap(err)
	}
	if s.tokenStore != nil {
		if err := s.tokenStore.ForceLogoutUser(ctx, userId); err != nil {
			log.CtxWarn(ctx, "clear used refresh tokens failed: %v", err)
		}
	}
	log.CtxInfo(ctx, "user logged out: user_id=%s", userId)
	return nil
}

// Authenticate verifies an access token against the user's key record and
// returns the user it belongs to
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*entity.User, error) {
	if accessToken == "" {
		return nil, errcode.ErrTokenMissing
	}
	userId, err := jwt.PeekUserId(accessToken)
	if err != nil {
		return nil, err
	}
	kt, err := s.keyRepo.GetByUserId(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "get key record failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if kt == nil {
		return nil, errcode.ErrKeyNotFound
	}
	if _, err := jwt.ValidateToken(accessToken, kt.PublicKey, userId); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetById(ctx, nil, userId)
	if err != nil {
		log.CtxError(ctx, "get user failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if user == nil {
		return nil, errcode.ErrUnauthorized
	}
	return user, nil
}

func identityOf(u *entity.User) jwt.Identity {
	return jwt.Identity{UserId: u.Id, Email: u.Email, Role: u.Role}
}
