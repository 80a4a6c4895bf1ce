package engine

import (
	"context"

	"go.uber.org/zap"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
	"campus-notice/internal/snapshot"
)

// MutationResult 两段式写入的结果: Applied 表示本地修改已生效,
// Warning 非空表示快照镜像失败, 本地修改不回滚
type MutationResult struct {
	Applied bool
	Warning error
}

// 以下管理操作不做角色校验, 由调用方判断是否为管理员

// AddNotice 新增管理员通知, 插入列表头部后镜像到快照
func (e *Engine) AddNotice(ctx context.Context, fields model.NoticeFields) (model.Notice, MutationResult, error) {
	if err := validateNoticeFields(fields); err != nil {
		return model.Notice{}, MutationResult{}, err
	}

	e.mu.Lock()
	if err := e.ensureLoaded(ctx); err != nil {
		e.mu.Unlock()
		return model.Notice{}, MutationResult{}, err
	}
	persisted, err := e.store.Notices(ctx)
	if err != nil {
		e.mu.Unlock()
		return model.Notice{}, MutationResult{}, err
	}

	now := e.now()
	notice := model.Notice{
		ID: e.nextID(func(id int64) bool {
			return model.IndexOf(e.notices, id) >= 0 || model.IndexOf(persisted, id) >= 0
		}),
		Title:       fields.Title,
		Content:     fields.Content,
		Source:      common.SourceAdmin,
		Category:    fields.Category,
		PublishDate: now.Format(common.DateLayout),
		Link:        fields.Link,
	}

	persisted = append([]model.Notice{notice}, persisted...)
	if err := e.store.SaveNotices(ctx, persisted); err != nil {
		e.mu.Unlock()
		return model.Notice{}, MutationResult{}, err
	}
	e.notices = append([]model.Notice{notice}, e.notices...)
	e.mu.Unlock()

	e.logger.Info("通知已添加", zap.Int64("notice_id", notice.ID), zap.String("title", notice.Title))
	return notice, e.mirror(ctx, persisted), nil
}

// DeleteNotice 删除通知后镜像剩余集合, id 不存在时不做任何写入
func (e *Engine) DeleteNotice(ctx context.Context, noticeID int64) (MutationResult, error) {
	e.mu.Lock()
	if err := e.ensureLoaded(ctx); err != nil {
		e.mu.Unlock()
		return MutationResult{}, err
	}
	persisted, err := e.store.Notices(ctx)
	if err != nil {
		e.mu.Unlock()
		return MutationResult{}, err
	}

	remaining, removed := without(persisted, noticeID)
	cache, removedCached := without(e.notices, noticeID)
	if !removed && !removedCached {
		e.mu.Unlock()
		e.logger.Debug("删除的通知不存在", zap.Int64("notice_id", noticeID))
		return MutationResult{}, nil
	}

	if err := e.store.SaveNotices(ctx, remaining); err != nil {
		e.mu.Unlock()
		return MutationResult{}, err
	}
	e.notices = cache
	e.mu.Unlock()

	e.logger.Info("通知已删除", zap.Int64("notice_id", noticeID))
	return e.mirror(ctx, remaining), nil
}

// DeleteUser 从 users 中删除用户, 不镜像
func (e *Engine) DeleteUser(ctx context.Context, userID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	users, err := e.store.Users(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.ID != userID {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return nil
	}
	if err := e.store.SaveUsers(ctx, kept); err != nil {
		return err
	}
	e.logger.Info("用户已删除", zap.Int64("user_id", userID))
	return nil
}

// Users 已注册用户
func (e *Engine) Users(ctx context.Context) ([]model.User, error) {
	return e.store.Users(ctx)
}

// mirror 快照镜像, 失败降级为警告
func (e *Engine) mirror(ctx context.Context, notices []model.Notice) MutationResult {
	result := MutationResult{Applied: true}
	if e.persister == nil {
		return result
	}

	content, err := snapshot.Render(notices)
	if err == nil {
		err = e.persister.Persist(ctx, content)
	}
	if err != nil {
		e.logger.Warn("本地已更新, 但快照文件更新失败", zap.Error(err))
		result.Warning = err
	}
	return result
}

func without(notices []model.Notice, id int64) ([]model.Notice, bool) {
	out := make([]model.Notice, 0, len(notices))
	removed := false
	for _, n := range notices {
		if n.ID == id {
			removed = true
			continue
		}
		out = append(out, n)
	}
	return out, removed
}

func validateNoticeFields(f model.NoticeFields) error {
	switch {
	case f.Title == "":
		return common.NewValidationError("title", "请输入通知标题")
	case f.Content == "":
		return common.NewValidationError("content", "请输入通知内容")
	case f.Category == "":
		return common.NewValidationError("category", "请选择通知类型")
	case f.Link == "":
		return common.NewValidationError("link", "请输入通知链接")
	}
	return nil
}
