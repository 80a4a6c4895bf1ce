// Package engine 维护通知列表、收藏和浏览量, 负责内存缓存、本地存储和快照镜像之间的一致性。
//
// 内存中的通知列表只是缓存, 每次修改后整份写回本地存储 notices;
// 快照镜像失败只作为警告返回, 不回滚本地修改。
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"campus-notice/internal/model"
	"campus-notice/internal/snapshot"
	"campus-notice/internal/store"
)

// Source 远程通知数据源, 只读
type Source interface {
	Notices(ctx context.Context) ([]model.Notice, error)
	Competitions(ctx context.Context) ([]model.Notice, error)
	Exams(ctx context.Context) ([]model.Notice, error)
	Internships(ctx context.Context) ([]model.Notice, error)
	NoticesBySource(ctx context.Context, source string) ([]model.Notice, error)
	Search(ctx context.Context, keyword string) ([]model.Notice, error)
}

// Engine 通知聚合与收藏引擎
type Engine struct {
	mu sync.Mutex

	store     *store.Accessor
	source    Source
	persister snapshot.Persister
	logger    *zap.Logger
	now       func() time.Time

	notices  []model.Notice
	loaded   bool
	calendar []model.Notice
	lastID   int64
}

// Option 引擎选项
type Option func(*Engine)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock 替换时钟, 测试中固定 id 和发布日期
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New 创建引擎
func New(accessor *store.Accessor, source Source, persister snapshot.Persister, opts ...Option) *Engine {
	e := &Engine{
		store:     accessor,
		source:    source,
		persister: persister,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Notices 当前缓存的拷贝
func (e *Engine) Notices() []model.Notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneNotices(e.notices)
}

// Notice 按 id 在缓存中查找
func (e *Engine) Notice(id int64) (model.Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := model.IndexOf(e.notices, id); i >= 0 {
		return e.notices[i], true
	}
	return model.Notice{}, false
}

// ensureLoaded 首次修改前从本地存储载入缓存, 避免空缓存覆盖已有集合。调用方持有 mu
func (e *Engine) ensureLoaded(ctx context.Context) error {
	if e.loaded {
		return nil
	}
	notices, err := e.store.Notices(ctx)
	if err != nil {
		return err
	}
	e.notices = notices
	e.loaded = true
	return nil
}

// nextID 毫秒时间戳, 与已占用 id 冲突或时钟回退时顺延。调用方持有 mu
func (e *Engine) nextID(taken func(int64) bool) int64 {
	id := e.now().UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	for taken(id) {
		id++
	}
	e.lastID = id
	return id
}
