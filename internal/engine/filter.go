package engine

import (
	"slices"
	"strings"
	"time"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
)

// Predicate 列表过滤条件, Source / Category 为 "all" 或空表示不限
type Predicate struct {
	SearchText string `form:"search"`
	Source     string `form:"source"`
	Category   string `form:"category"`
}

// Matches 标题或内容包含搜索词 (不区分大小写), 且来源、类型匹配
func (p Predicate) Matches(n model.Notice) bool {
	if p.SearchText != "" {
		q := strings.ToLower(p.SearchText)
		if !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Content), q) {
			return false
		}
	}
	if !isAll(p.Source) && p.Source != n.Source {
		return false
	}
	if !isAll(p.Category) && p.Category != n.Category {
		return false
	}
	return true
}

func isAll(v string) bool {
	return v == "" || v == common.FilterAll
}

// FilterAndSort 过滤后按单一字段降序稳定排序, 不修改入参
// 未知排序字段保持原顺序
func FilterAndSort(notices []model.Notice, p Predicate, sortKey string) []model.Notice {
	out := make([]model.Notice, 0, len(notices))
	for _, n := range notices {
		if p.Matches(n) {
			out = append(out, n)
		}
	}

	switch sortKey {
	case common.SortByTime:
		slices.SortStableFunc(out, func(a, b model.Notice) int {
			return publishTime(b).Compare(publishTime(a))
		})
	case common.SortByViews:
		slices.SortStableFunc(out, func(a, b model.Notice) int {
			return b.Views - a.Views
		})
	case common.SortByFavorites:
		slices.SortStableFunc(out, func(a, b model.Notice) int {
			return b.Favorites - a.Favorites
		})
	}
	return out
}

// publishTime 按日历日比较, 无法解析的日期视为最早
func publishTime(n model.Notice) time.Time {
	s := strings.TrimSpace(n.PublishDate)
	if t, err := time.Parse(common.DateLayout, s); err == nil {
		return t
	}
	if len(s) > len(common.DateLayout) {
		if t, err := time.Parse(common.DateLayout, s[:len(common.DateLayout)]); err == nil {
			return t
		}
	}
	return time.Time{}
}
