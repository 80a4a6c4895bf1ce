package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"campus-notice/internal/common"
	"campus-notice/internal/engine"
	"campus-notice/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionHandler 当前会话, 未登录时 user 为 null
func (s *Server) SessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": toUserView(session(c).User)})
}

// LoginHandler 普通用户登录
func (s *Server) LoginHandler(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)
	sess, err := s.engine.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserView(sess.User)})
}

// AdminLoginHandler 管理员登录, 只需密码
func (s *Server) AdminLoginHandler(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)
	sess, err := s.engine.AdminLogin(c.Request.Context(), req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserView(sess.User)})
}

// GuestLoginHandler 游客登录
func (s *Server) GuestLoginHandler(c *gin.Context) {
	sess, err := s.engine.GuestLogin(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserView(sess.User)})
}

// RegisterHandler 注册并登录
func (s *Server) RegisterHandler(c *gin.Context) {
	var req engine.RegisterInput
	_ = c.ShouldBindJSON(&req)
	sess, err := s.engine.Register(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserView(sess.User)})
}

// LogoutHandler 退出登录
func (s *Server) LogoutHandler(c *gin.Context) {
	if err := s.engine.Logout(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// ListNoticesHandler 过滤并排序缓存中的通知, 默认按时间
func (s *Server) ListNoticesHandler(c *gin.Context) {
	var p engine.Predicate
	_ = c.ShouldBindQuery(&p)
	sortKey := c.DefaultQuery("sort", common.SortByTime)
	c.JSON(http.StatusOK, gin.H{"data": engine.FilterAndSort(s.engine.Notices(), p, sortKey)})
}

// ReloadHandler 重新加载缓存, from=local 时读取本地存储, 否则从远程拉取
func (s *Server) ReloadHandler(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("from") == "local" {
		list, err := s.engine.LoadLocalNotices(ctx)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(list)})
		return
	}
	if err := s.engine.LoadAllNotices(ctx); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(s.engine.Notices())})
}

// ViewHandler 打开通知详情, 浏览量加一
func (s *Server) ViewHandler(c *gin.Context) {
	id, ok := s.paramID(c)
	if !ok {
		return
	}
	notice, err := s.engine.RecordView(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if notice == nil {
		s.writeError(c, common.ErrNotFoundLocal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notice})
}

// FavoriteHandler 切换收藏
func (s *Server) FavoriteHandler(c *gin.Context) {
	id, ok := s.paramID(c)
	if !ok {
		return
	}
	sess := session(c)
	favored, err := s.engine.ToggleFavorite(c.Request.Context(), sess, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favored, "favorites": toUserView(sess.User).Favorites})
}

// FavoritesHandler 我的收藏
func (s *Server) FavoritesHandler(c *gin.Context) {
	list, err := s.engine.FavoriteNotices(c.Request.Context(), session(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// SearchHandler 远程搜索
func (s *Server) SearchHandler(c *gin.Context) {
	list, err := s.engine.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

type calendarItem struct {
	model.Notice
	Badge string `json:"badge"`
}

// CalendarHandler 日历某一天的通知, 默认今天
func (s *Server) CalendarHandler(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format(common.DateLayout))
	if _, err := time.Parse(common.DateLayout, date); err != nil {
		s.writeError(c, common.NewValidationError("date", "日期格式应为 YYYY-MM-DD"))
		return
	}
	if err := s.engine.LoadCalendar(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}

	items := []calendarItem{}
	for _, n := range s.engine.NoticesOn(date) {
		items = append(items, calendarItem{Notice: n, Badge: engine.BadgeStatus(n.Category, n.Source)})
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "data": items})
}

// AdminNoticesHandler 管理页读取本地存储中的通知
func (s *Server) AdminNoticesHandler(c *gin.Context) {
	list, err := s.engine.LoadLocalNotices(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// AddNoticeHandler 发布通知
func (s *Server) AddNoticeHandler(c *gin.Context) {
	var fields model.NoticeFields
	_ = c.ShouldBindJSON(&fields)
	notice, result, err := s.engine.AddNotice(c.Request.Context(), fields)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.withWarning(c, gin.H{"data": notice}, result)
}

// DeleteNoticeHandler 删除通知, 不存在时 applied 为 false
func (s *Server) DeleteNoticeHandler(c *gin.Context) {
	id, ok := s.paramID(c)
	if !ok {
		return
	}
	result, err := s.engine.DeleteNotice(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.withWarning(c, gin.H{"applied": result.Applied}, result)
}

// UsersHandler 用户列表
func (s *Server) UsersHandler(c *gin.Context) {
	users, err := s.engine.Users(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]*userView, 0, len(users))
	for i := range users {
		out = append(out, toUserView(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// DeleteUserHandler 删除用户
func (s *Server) DeleteUserHandler(c *gin.Context) {
	id, ok := s.paramID(c)
	if !ok {
		return
	}
	if err := s.engine.DeleteUser(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

func (s *Server) paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.writeError(c, common.NewValidationError("id", "无效的 id"))
		return 0, false
	}
	return id, true
}
