package model

// Notice 通知, 字段与前端及数据 API 的 JSON 保持一致
type Notice struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	Category    string `json:"category"`
	PublishDate string `json:"publish_date"` // yyyy-mm-dd
	Views       int    `json:"views"`
	Favorites   int    `json:"favorites"`
	Link        string `json:"link"`
}

// NoticeFields 管理员新增通知时填写的字段
type NoticeFields struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Link     string `json:"link"`
}

// IndexOf 返回 id 在列表中的下标, 不存在返回 -1
func IndexOf(notices []Notice, id int64) int {
	for i := range notices {
		if notices[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneNotices 拷贝一份通知列表
func CloneNotices(notices []Notice) []Notice {
	if notices == nil {
		return nil
	}
	out := make([]Notice, len(notices))
	copy(out, notices)
	return out
}
