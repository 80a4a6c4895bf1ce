package engine

import (
	"context"

	"go.uber.org/zap"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
)

// ToggleFavorite 收藏或取消收藏, 返回操作后的收藏状态。
//
// 依次写入会话 currentUser、users 中对应用户、notices 中的收藏计数,
// 三次写入之间没有事务保护。匿名会话返回 ErrUnauthenticated 且不写任何数据。
func (e *Engine) ToggleFavorite(ctx context.Context, sess *model.Session, noticeID int64) (bool, error) {
	if !sess.Authenticated() {
		return false, common.ErrUnauthenticated
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureLoaded(ctx); err != nil {
		return false, err
	}

	user := sess.User.Clone()
	favored := !user.HasFavorite(noticeID)
	if favored {
		user.Favorites = append(user.Favorites, noticeID)
	} else {
		kept := user.Favorites[:0]
		for _, id := range user.Favorites {
			if id != noticeID {
				kept = append(kept, id)
			}
		}
		user.Favorites = kept
	}

	if err := e.store.SetCurrentUser(ctx, user); err != nil {
		return false, err
	}
	sess.User = user

	users, err := e.store.Users(ctx)
	if err != nil {
		return favored, err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = *user.Clone()
		}
	}
	if err := e.store.SaveUsers(ctx, users); err != nil {
		return favored, err
	}

	notices := model.CloneNotices(e.notices)
	if i := model.IndexOf(notices, noticeID); i >= 0 {
		if favored {
			notices[i].Favorites++
		} else if notices[i].Favorites > 0 {
			notices[i].Favorites--
		}
	} else {
		e.logger.Debug("收藏的通知不在当前列表中", zap.Int64("notice_id", noticeID))
	}
	if err := e.store.SaveNotices(ctx, notices); err != nil {
		return favored, err
	}
	e.notices = notices

	return favored, nil
}

// RecordView 每次打开通知浏览量加一, 不按用户去重。不在缓存中的 id 静默忽略, 返回 nil
func (e *Engine) RecordView(ctx context.Context, noticeID int64) (*model.Notice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	i := model.IndexOf(e.notices, noticeID)
	if i < 0 {
		e.logger.Debug("浏览的通知不在当前列表中", zap.Int64("notice_id", noticeID))
		return nil, nil
	}

	notices := model.CloneNotices(e.notices)
	notices[i].Views++
	if err := e.store.SaveNotices(ctx, notices); err != nil {
		return nil, err
	}
	e.notices = notices

	viewed := notices[i]
	return &viewed, nil
}

// FavoriteNotices 个人中心的收藏列表, 取自本地存储的 notices
func (e *Engine) FavoriteNotices(ctx context.Context, sess *model.Session) ([]model.Notice, error) {
	if !sess.Authenticated() {
		return nil, common.ErrUnauthenticated
	}
	notices, err := e.store.Notices(ctx)
	if err != nil {
		return nil, err
	}

	out := []model.Notice{}
	for _, n := range notices {
		if sess.User.HasFavorite(n.ID) {
			out = append(out, n)
		}
	}
	return out, nil
}
