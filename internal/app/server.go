// Package app 面向前端的 JSON 服务, 通过 Engine 完成浏览、收藏、账号和管理操作。
package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-notice/internal/common"
	"campus-notice/internal/engine"
	"campus-notice/internal/middleware"
	"campus-notice/internal/model"
)

const sessionKey = "session"

var errForbidden = errors.New("需要管理员权限")

// Server 应用服务
type Server struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewServer 创建应用服务
func NewServer(e *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: e, logger: logger}
}

// SetupRouter 路由入口
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(s.logger), middleware.CORS())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.Use(s.loadSession)

	api.GET("/session", s.SessionHandler)
	api.POST("/session/login", s.LoginHandler)
	api.POST("/session/admin", s.AdminLoginHandler)
	api.POST("/session/guest", s.GuestLoginHandler)
	api.POST("/session/register", s.RegisterHandler)
	api.DELETE("/session", s.LogoutHandler)

	api.GET("/notices", s.ListNoticesHandler)
	api.POST("/notices/reload", s.ReloadHandler)
	api.POST("/notices/:id/view", s.ViewHandler)
	api.POST("/notices/:id/favorite", s.FavoriteHandler)
	api.GET("/favorites", s.FavoritesHandler)
	api.GET("/search", s.SearchHandler)
	api.GET("/calendar", s.CalendarHandler)

	admin := api.Group("/admin", s.requireAdmin)
	admin.GET("/notices", s.AdminNoticesHandler)
	admin.POST("/notices", s.AddNoticeHandler)
	admin.DELETE("/notices/:id", s.DeleteNoticeHandler)
	admin.GET("/users", s.UsersHandler)
	admin.DELETE("/users/:id", s.DeleteUserHandler)

	return r
}

// loadSession 每个请求读取一次当前会话
func (s *Server) loadSession(c *gin.Context) {
	sess, err := s.engine.Session(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		c.Abort()
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func session(c *gin.Context) *model.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*model.Session); ok {
			return sess
		}
	}
	return &model.Session{}
}

// requireAdmin 管理接口只允许 admin
func (s *Server) requireAdmin(c *gin.Context) {
	sess := session(c)
	switch {
	case !sess.Authenticated():
		s.writeError(c, common.ErrUnauthenticated)
	case !sess.User.IsAdmin():
		s.writeError(c, errForbidden)
	default:
		c.Next()
		return
	}
	c.Abort()
}

// writeError 错误统一映射为状态码和 {"error": ...}
func (s *Server) writeError(c *gin.Context, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误！"})
	case errors.Is(err, errForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrNotFoundLocal):
		c.JSON(http.StatusNotFound, gin.H{"error": "通知不存在"})
	case errors.Is(err, common.ErrNetwork):
		s.logger.Error("远程服务不可用", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		s.logger.Error("请求处理失败", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// withWarning 快照镜像失败时附带 warning, 状态码仍为 200
func (s *Server) withWarning(c *gin.Context, body gin.H, result engine.MutationResult) {
	if result.Warning != nil {
		s.logger.Warn("快照同步失败", zap.String("path", c.FullPath()), zap.Error(result.Warning))
		body["warning"] = result.Warning.Error()
	}
	c.JSON(http.StatusOK, body)
}

// userView 对外返回的用户信息, 不含密码
type userView struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Account   string  `json:"account"`
	Favorites []int64 `json:"favorites"`
}

func toUserView(u *model.User) *userView {
	if u == nil {
		return nil
	}
	favorites := u.Favorites
	if favorites == nil {
		favorites = []int64{}
	}
	return &userView{ID: u.ID, Username: u.Username, Account: u.Account, Favorites: favorites}
}
