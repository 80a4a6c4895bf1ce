package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
)

// Accessor 对 users / notices / currentUser 三个集合的类型化访问
type Accessor struct {
	store Store
}

// NewAccessor 包装一个 Store
func NewAccessor(s Store) *Accessor {
	return &Accessor{store: s}
}

func (a *Accessor) read(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := a.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (a *Accessor) write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Users 读取用户列表, 不存在时返回空列表
func (a *Accessor) Users(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if _, err := a.read(ctx, common.KeyUsers, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (a *Accessor) SaveUsers(ctx context.Context, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	return a.write(ctx, common.KeyUsers, users)
}

// Notices 读取通知列表, 不存在时返回空列表
func (a *Accessor) Notices(ctx context.Context) ([]model.Notice, error) {
	notices := []model.Notice{}
	if _, err := a.read(ctx, common.KeyNotices, &notices); err != nil {
		return nil, err
	}
	if notices == nil {
		notices = []model.Notice{}
	}
	return notices, nil
}

func (a *Accessor) SaveNotices(ctx context.Context, notices []model.Notice) error {
	if notices == nil {
		notices = []model.Notice{}
	}
	return a.write(ctx, common.KeyNotices, notices)
}

// CurrentUser 当前会话用户, 未登录 (包括存的是 null) 返回 nil
func (a *Accessor) CurrentUser(ctx context.Context) (*model.User, error) {
	var user *model.User
	if _, err := a.read(ctx, common.KeyCurrentUser, &user); err != nil {
		return nil, err
	}
	if user != nil && user.Favorites == nil {
		user.Favorites = []int64{}
	}
	return user, nil
}

func (a *Accessor) SetCurrentUser(ctx context.Context, user *model.User) error {
	return a.write(ctx, common.KeyCurrentUser, user)
}

func (a *Accessor) ClearCurrentUser(ctx context.Context) error {
	if err := a.store.Remove(ctx, common.KeyCurrentUser); err != nil {
		return fmt.Errorf("remove %s: %w", common.KeyCurrentUser, err)
	}
	return nil
}
