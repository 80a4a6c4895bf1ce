package engine

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
)

// LoadAllNotices 并发读取竞赛、教务通知、考试、实习四类数据, 按此顺序拼接后替换缓存。
// 任一请求失败则整体失败, 缓存保持原样。
func (e *Engine) LoadAllNotices(ctx context.Context) error {
	fetchers := []func(context.Context) ([]model.Notice, error){
		e.source.Competitions,
		e.source.Notices,
		e.source.Exams,
		e.source.Internships,
	}
	results := make([][]model.Notice, len(fetchers))

	var g errgroup.Group
	for i, fetch := range fetchers {
		i, fetch := i, fetch
		g.Go(func() error {
			list, err := fetch(ctx)
			if err != nil {
				return err
			}
			results[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error("获取通知失败", zap.Error(err))
		return err
	}

	all := make([]model.Notice, 0)
	for _, list := range results {
		all = append(all, list...)
	}

	e.mu.Lock()
	e.notices = all
	e.loaded = true
	e.mu.Unlock()

	e.logger.Info("通知已加载", zap.Int("count", len(all)))
	return nil
}

// LoadLocalNotices 用本地存储中的 notices 替换缓存
func (e *Engine) LoadLocalNotices(ctx context.Context) ([]model.Notice, error) {
	notices, err := e.store.Notices(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.notices = notices
	e.loaded = true
	e.mu.Unlock()
	return model.CloneNotices(notices), nil
}

// Search 远程合并搜索, 不影响缓存
func (e *Engine) Search(ctx context.Context, keyword string) ([]model.Notice, error) {
	if keyword == "" {
		return nil, common.NewValidationError("keyword", "请提供搜索关键词")
	}
	return e.source.Search(ctx, keyword)
}

// LoadCalendar 依次读取 QQ群、官网 的教务通知作为日历数据, 任一失败则保留旧数据
func (e *Engine) LoadCalendar(ctx context.Context) error {
	var all []model.Notice
	for _, source := range []string{common.SourceChatGroup, common.SourceOfficialSite} {
		list, err := e.source.NoticesBySource(ctx, source)
		if err != nil {
			e.logger.Error("获取日历通知失败", zap.String("source", source), zap.Error(err))
			return err
		}
		all = append(all, list...)
	}

	e.mu.Lock()
	e.calendar = all
	e.mu.Unlock()
	return nil
}

// NoticesOn 日历中某一天 (yyyy-mm-dd) 的通知
func (e *Engine) NoticesOn(date string) []model.Notice {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := []model.Notice{}
	for _, n := range e.calendar {
		if n.PublishDate == date {
			out = append(out, n)
		}
	}
	return out
}

// 日历徽标状态
const (
	BadgeSuccess    = "success"
	BadgeProcessing = "processing"
	BadgeWarning    = "warning"
	BadgeError      = "error"
	BadgeDefault    = "default"
)

// BadgeStatus 按来源和类型给出日历徽标
func BadgeStatus(category, source string) string {
	if source == common.SourceChatGroup {
		switch category {
		case common.CategoryAnnouncement:
			return BadgeProcessing
		case common.CategoryEventNotice:
			return BadgeWarning
		case common.CategorySecurityNotice:
			return BadgeError
		}
		return BadgeDefault
	}
	switch category {
	case common.CategoryAnnouncement:
		return BadgeSuccess
	case common.CategoryEventNotice:
		return BadgeProcessing
	case common.CategorySecurityNotice:
		return BadgeError
	}
	return BadgeDefault
}
