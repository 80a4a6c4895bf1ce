package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
)

var testFields = model.NoticeFields{Title: "T", Content: "C", Category: "通知", Link: "https://x"}

// 测试新增通知的字段和位置
func TestAddNotice(t *testing.T) {
	env := newTestEnv(t)
	seedNotices(t, env, sampleNotices()...)
	ctx := context.Background()

	notice, result, err := env.engine.AddNotice(ctx, testFields)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.NoError(t, result.Warning)

	assert.Equal(t, fixedNow.UnixMilli(), notice.ID)
	assert.Equal(t, common.SourceAdmin, notice.Source)
	assert.Equal(t, "2024-03-25", notice.PublishDate)
	assert.Zero(t, notice.Views)
	assert.Zero(t, notice.Favorites)

	persisted, _ := env.accessor.Notices(ctx)
	require.Len(t, persisted, 4)
	assert.Equal(t, notice, persisted[0])
	assert.Equal(t, notice, env.engine.Notices()[0])

	require.Len(t, env.persister.contents, 1)
	snap := env.persister.contents[0]
	assert.True(t, strings.HasPrefix(snap, "import { Notice } from '../types';"))
	assert.Contains(t, snap, `"title": "T"`)
	assert.Contains(t, snap, "系统维护通知")
}

// 测试新增再删除恢复原集合
func TestAddDeleteRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	seedNotices(t, env, sampleNotices()...)
	ctx := context.Background()
	before := env.mem.Snapshot()[common.KeyNotices]

	notice, _, err := env.engine.AddNotice(ctx, testFields)
	require.NoError(t, err)
	result, err := env.engine.DeleteNotice(ctx, notice.ID)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	assert.Equal(t, before, env.mem.Snapshot()[common.KeyNotices])
	assert.Equal(t, sampleNotices(), env.engine.Notices())
}

// 测试同一毫秒内连续新增 id 不重复
func TestAddNoticeUniqueIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seen := map[int64]bool{}

	for i := 0; i < 20; i++ {
		n, _, err := env.engine.AddNotice(ctx, testFields)
		require.NoError(t, err)
		assert.False(t, seen[n.ID], "重复 id %d", n.ID)
		seen[n.ID] = true
	}
	persisted, _ := env.accessor.Notices(ctx)
	assert.Len(t, persisted, 20)
}

// 测试时间戳与已有 id 冲突时顺延
func TestAddNoticeAvoidsExistingID(t *testing.T) {
	env := newTestEnv(t)
	seedNotices(t, env, model.Notice{ID: fixedNow.UnixMilli(), Title: "已有"})

	n, _, err := env.engine.AddNotice(context.Background(), testFields)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli()+1, n.ID)
}

// 测试表单缺字段
func TestAddNoticeValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]model.NoticeFields{
		"title":    {Content: "C", Category: "通知", Link: "https://x"},
		"content":  {Title: "T", Category: "通知", Link: "https://x"},
		"category": {Title: "T", Content: "C", Link: "https://x"},
		"link":     {Title: "T", Content: "C", Category: "通知"},
	}
	for field, in := range cases {
		_, _, err := env.engine.AddNotice(context.Background(), in)
		var ve *common.ValidationError
		require.True(t, errors.As(err, &ve), field)
		assert.Equal(t, field, ve.Field)
	}
	assert.Empty(t, env.mem.Snapshot())
}

// 测试镜像失败时本地修改保留并返回警告
func TestAddNoticeMirrorFailure(t *testing.T) {
	env := newTestEnv(t)
	env.persister.err = &common.NetworkError{Op: "POST /api/update-mock-notices", Err: errors.New("connection refused")}

	notice, result, err := env.engine.AddNotice(context.Background(), testFields)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.ErrorIs(t, result.Warning, common.ErrNetwork)

	persisted, _ := env.accessor.Notices(context.Background())
	require.Len(t, persisted, 1)
	assert.Equal(t, notice.ID, persisted[0].ID)
}

// 快照服务不可达时删除通知
func TestDeleteNoticePersisterUnreachable(t *testing.T) {
	env := newTestEnv(t)
	seedNotices(t, env, sampleNotices()...)
	env.persister.err = &common.NetworkError{Op: "POST /api/update-mock-notices", Err: errors.New("dial tcp: connection refused")}
	ctx := context.Background()

	result, err := env.engine.DeleteNotice(ctx, 2)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	require.Error(t, result.Warning)

	persisted, _ := env.accessor.Notices(ctx)
	assert.Equal(t, -1, model.IndexOf(persisted, 2))

	// 重新从本地加载, 已删除的 id 仍然不在
	fresh := New(env.accessor, env.source, env.persister)
	list, err := fresh.LoadLocalNotices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, -1, model.IndexOf(list, 2))
}

// 测试删除不存在的通知不写入也不镜像
func TestDeleteNoticeUnknown(t *testing.T) {
	env := newTestEnv(t)
	seedNotices(t, env, sampleNotices()...)
	before := env.mem.Snapshot()

	result, err := env.engine.DeleteNotice(context.Background(), 12345)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, before, env.mem.Snapshot())
	assert.Empty(t, env.persister.contents)
}

// 测试删除只存在于缓存 (远程加载) 的通知
func TestDeleteNoticeFromRemoteCache(t *testing.T) {
	env := newTestEnv(t)
	env.source.data["notices"] = sampleNotices()
	ctx := context.Background()
	require.NoError(t, env.engine.LoadAllNotices(ctx))

	result, err := env.engine.DeleteNotice(ctx, 1)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	_, ok := env.engine.Notice(1)
	assert.False(t, ok)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.engine.EnsureAdmin(ctx)
	require.NoError(t, err)
	sess := loginAlice(t, env)

	require.NoError(t, env.engine.DeleteUser(ctx, sess.User.ID))
	users, err := env.engine.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)

	before := env.mem.Snapshot()
	require.NoError(t, env.engine.DeleteUser(ctx, 31337))
	assert.Equal(t, before, env.mem.Snapshot())
}

// 测试没有快照服务时只做本地修改
func TestMutationWithoutPersister(t *testing.T) {
	env := newTestEnv(t)
	e := New(env.accessor, env.source, nil, WithClock(func() time.Time { return fixedNow }))

	_, result, err := e.AddNotice(context.Background(), testFields)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.NoError(t, result.Warning)
}
