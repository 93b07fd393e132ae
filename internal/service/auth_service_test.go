package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/coursehub/internal/repository"
	"github.com/mbeoliero/coursehub/internal/repository/repotest"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
)

func signUpAndLogin(t *testing.T, env *testEnv) *LoginResponse {
	t.Helper()
	ctx := context.Background()

	info, err := env.auth.SignUp(ctx, &SignUpRequest{
		Email:    "Alice@Example.com",
		Password: "secret123",
		Name:     "Alice",
		Role:     constant.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", info.Email)

	resp, err := env.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	return resp
}

func TestAuth_SignUpLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	resp := signUpAndLogin(t, env)

	user, err := env.auth.Authenticate(ctx, resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.Id, user.Id)
	assert.Equal(t, constant.RoleStudent, user.Role)

	// refresh tokens are signed with the other key
	_, err = env.auth.Authenticate(ctx, resp.Tokens.RefreshToken)
	assert.ErrorIs(t, err, errcode.ErrTokenInvalid)

	_, err = env.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, errcode.ErrTokenMissing)

	_, err = env.auth.SignUp(ctx, &SignUpRequest{Email: "alice@example.com", Password: "x12345", Name: "A", Role: constant.RoleLecturer})
	assert.ErrorIs(t, err, errcode.ErrUserExists)

	_, err = env.auth.SignUp(ctx, &SignUpRequest{Email: "root@example.com", Password: "x12345", Name: "R", Role: constant.RoleAdmin})
	assert.ErrorIs(t, err, errcode.ErrRoleNotAllowed)

	_, err = env.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, errcode.ErrLoginFailed)

	info, err := env.users.GetUserInfo(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", info.Name)
}

func TestAuth_LogoutRevokesKeys(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	resp := signUpAndLogin(t, env)

	require.NoError(t, env.auth.Logout(ctx, resp.User.Id))

	_, err := env.auth.Authenticate(ctx, resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, errcode.ErrKeyNotFound)
	_, err = env.auth.Refresh(ctx, resp.Tokens.RefreshToken)
	assert.ErrorIs(t, err, errcode.ErrKeyNotFound)
}

func testRefreshReuse(t *testing.T, env *testEnv) {
	ctx := context.Background()
	resp := signUpAndLogin(t, env)

	next, err := env.auth.Refresh(ctx, resp.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.Tokens.RefreshToken, next.RefreshToken)

	_, err = env.auth.Authenticate(ctx, next.AccessToken)
	require.NoError(t, err)

	// replaying the first refresh token revokes the whole key record
	_, err = env.auth.Refresh(ctx, resp.Tokens.RefreshToken)
	assert.ErrorIs(t, err, errcode.ErrRefreshReused)

	_, err = env.auth.Authenticate(ctx, next.AccessToken)
	assert.ErrorIs(t, err, errcode.ErrKeyNotFound)
}

func TestAuth_RefreshReuseWithoutRedis(t *testing.T) {
	testRefreshReuse(t, newTestEnv(t))
}

func TestAuth_RefreshReuseWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repos := repository.NewRepositoriesWithDB(repotest.OpenDB(t), rdb)
	testRefreshReuse(t, newTestEnvWithRepos(t, repos))
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)

	name := "Alice Liddell"
	info, err := env.users.UpdateUserInfo(ctx, "alice", &UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, info.Name)

	_, err = env.users.GetUserInfo(ctx, "ghost")
	assert.ErrorIs(t, err, errcode.ErrUserNotFound)
}
