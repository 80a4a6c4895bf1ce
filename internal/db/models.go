package db

import (
	"time"
)

// NoticeRow 爬虫数据库中四张表共用的行结构
// competitions / notices / exams / college_internships 结构相同, 查询时用 Table() 指定表名
type NoticeRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:text" json:"title"`
	Content     string `gorm:"type:text" json:"content"`
	Keywords    string `gorm:"type:text" json:"keywords"`
	Link        string `gorm:"type:text" json:"link"`
	PublishDate string `gorm:"type:text" json:"publish_date"`
	EventDate   string `gorm:"type:text" json:"event_date"`
	Category    string `gorm:"type:text" json:"category"`
	Views       int    `gorm:"default:0" json:"views"`
	Favorites   int    `gorm:"default:0" json:"favorites"`
	ImageURL    string `gorm:"column:image_url;type:text" json:"image_url"`
}

// KVEntry 本地键值存储, 每个 key 存一份 JSON
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:longtext" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName kv_entries
func (KVEntry) TableName() string {
	return "kv_entries"
}
