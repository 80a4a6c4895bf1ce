package common

// 通知来源
const (
	SourceOfficialSite = "官网"
	SourceChatGroup    = "QQ群"
	SourceAdmin        = "管理员"
)

// 通知类型
const (
	CategoryAnnouncement   = "通知"
	CategoryCompetition    = "比赛"
	CategoryInternship     = "实习"
	CategorySecurityNotice = "安全通知"
	CategoryEventNotice    = "活动通知"
)

// FilterAll 过滤条件中表示不限
const FilterAll = "all"

// 排序方式
const (
	SortByTime      = "time"
	SortByViews     = "views"
	SortByFavorites = "favorites"
)

// 本地存储中的三个集合
const (
	KeyUsers       = "users"
	KeyNotices     = "notices"
	KeyCurrentUser = "currentUser"
)

// 预置管理员账号, 首次启动时写入
const (
	AdminID       = 1
	AdminUsername = "admin"
	AdminAccount  = "admin"
	AdminPassword = "admin123"
)

// 游客身份, 每次游客登录重新生成, 不写入 users
const (
	GuestID       = -1
	GuestUsername = "游客"
	GuestAccount  = "guest"
)

// 注册校验
const (
	MinUsernameLen = 3
	MinPasswordLen = 6
)

// DateLayout publish_date 统一格式
const DateLayout = "2006-01-02"

// 爬虫数据库中的表
const (
	TableCompetitions = "competitions"
	TableNotices      = "notices"
	TableExams        = "exams"
	TableInternships  = "college_internships"
)

// SourceTables 数据 API 允许访问的表
var SourceTables = []string{TableCompetitions, TableNotices, TableExams, TableInternships}

// IsSourceTable 判断表名是否合法
func IsSourceTable(name string) bool {
	for _, t := range SourceTables {
		if t == name {
			return true
		}
	}
	return false
}
