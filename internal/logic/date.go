package logic

import (
	"strings"
	"time"

	"campus-notice/internal/common"
)

// 爬虫数据中出现过的日期格式, 月日可带或不带前导零
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006年1月2日",
	"2006.1.2",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
	"2006年1月2日 15:04:05",
}

// StandardizeDate 统一为 YYYY-MM-DD, 无法识别时原样返回
func StandardizeDate(s string) string {
	v := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(common.DateLayout)
		}
	}
	return s
}
