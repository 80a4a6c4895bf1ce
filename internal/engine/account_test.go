package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-notice/internal/common"
)

// 空存储首次启动创建管理员
func TestEnsureAdminOnEmptyStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.engine.EnsureAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	users, err := env.accessor.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "admin123", users[0].Password)

	created, err = env.engine.EnsureAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	users, _ = env.accessor.Users(ctx)
	assert.Len(t, users, 1)
}

// 测试注册表单校验
func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"缺少用户名", RegisterInput{Password: "secret1", Confirm: "secret1"}, "username"},
		{"用户名过短", RegisterInput{Username: "ab", Password: "secret1", Confirm: "secret1"}, "username"},
		{"缺少密码", RegisterInput{Username: "alice", Confirm: "secret1"}, "password"},
		{"密码过短", RegisterInput{Username: "alice", Password: "12345", Confirm: "12345"}, "password"},
		{"缺少确认密码", RegisterInput{Username: "alice", Password: "secret1"}, "confirm"},
		{"两次密码不一致", RegisterInput{Username: "alice", Password: "secret1", Confirm: "secret2"}, "confirm"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.engine.Register(context.Background(), tc.in)
			var ve *common.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.Empty(t, env.mem.Snapshot())
}

// 中文用户名按字符计长度
func TestRegisterRuneLength(t *testing.T) {
	env := newTestEnv(t)
	sess, err := env.engine.Register(context.Background(), RegisterInput{Username: "张小明", Password: "密码密码密码", Confirm: "密码密码密码"})
	require.NoError(t, err)
	assert.Equal(t, "张小明", sess.User.Account)
}

// 测试重名注册被拒绝且 users 不变
func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.engine.EnsureAdmin(ctx)
	require.NoError(t, err)
	loginAlice(t, env)
	before := env.mem.Snapshot()[common.KeyUsers]

	for _, name := range []string{"admin", "alice"} {
		_, err := env.engine.Register(ctx, RegisterInput{Username: name, Password: "secret1", Confirm: "secret1"})
		assert.ErrorIs(t, err, common.ErrValidation, name)
	}
	assert.Equal(t, before, env.mem.Snapshot()[common.KeyUsers])
}

// 测试注册后成为当前会话
func TestRegisterSetsSession(t *testing.T) {
	env := newTestEnv(t)
	sess := loginAlice(t, env)
	assert.Equal(t, fixedNow.UnixMilli(), sess.User.ID)

	current, err := env.engine.Session(context.Background())
	require.NoError(t, err)
	require.True(t, current.Authenticated())
	assert.Equal(t, "alice", current.User.Username)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.engine.EnsureAdmin(ctx)
	require.NoError(t, err)
	loginAlice(t, env)
	require.NoError(t, env.engine.Logout(ctx))

	_, err = env.engine.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	// 管理员不能从普通入口登录
	_, err = env.engine.Login(ctx, "admin", "admin123")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = env.engine.Login(ctx, "", "x")
	assert.ErrorIs(t, err, common.ErrValidation)

	sess, err := env.engine.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.User.Username)

	current, _ := env.engine.Session(ctx)
	assert.Equal(t, sess.User.ID, current.User.ID)
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.engine.EnsureAdmin(ctx)
	require.NoError(t, err)

	_, err = env.engine.AdminLogin(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	sess, err := env.engine.AdminLogin(ctx, "admin123")
	require.NoError(t, err)
	assert.True(t, sess.User.IsAdmin())
}

// 测试游客登录和退出
func TestGuestLoginAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.engine.GuestLogin(ctx)
	require.NoError(t, err)
	assert.True(t, sess.User.IsGuest())
	assert.Equal(t, "游客", sess.User.Username)

	users, _ := env.accessor.Users(ctx)
	assert.Empty(t, users)
	assert.NotContains(t, env.mem.Snapshot(), common.KeyUsers)

	require.NoError(t, env.engine.Logout(ctx))
	current, err := env.engine.Session(ctx)
	require.NoError(t, err)
	assert.False(t, current.Authenticated())
}
