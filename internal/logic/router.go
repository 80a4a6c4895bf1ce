package logic

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-notice/internal/common"
	"campus-notice/internal/middleware"
)

// SetupRouter 数据 API 路由入口
func SetupRouter(store *Store, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{store: store, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger), middleware.CORS())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.GET("/competitions", h.CompetitionsHandler)
	api.GET("/notices", h.NoticesHandler)
	api.GET("/exams", h.ExamsHandler)
	api.GET("/internships", h.InternshipsHandler)
	api.GET("/search", h.SearchHandler)
	api.GET("/item/:table/:id", h.ItemHandler)
	api.POST("/favorite/:table/:id", h.FavoriteHandler)
	api.GET("/categories", h.CategoriesHandler)
	api.GET("/test", h.TestHandler)

	return r
}

type handler struct {
	store  *Store
	logger *zap.Logger
}

// CompetitionsHandler 竞赛信息
func (h *handler) CompetitionsHandler(c *gin.Context) {
	items := h.store.List(c.Query("source"), "", common.TableCompetitions)
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// NoticesHandler 教务通知, notices 与 exams 两张表合并
func (h *handler) NoticesHandler(c *gin.Context) {
	items := h.store.List(c.Query("source"), "", common.TableNotices, common.TableExams)
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// ExamsHandler 考试信息
func (h *handler) ExamsHandler(c *gin.Context) {
	items := h.store.List(c.Query("source"), common.CategoryAnnouncement, common.TableExams)
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// InternshipsHandler 实习信息
func (h *handler) InternshipsHandler(c *gin.Context) {
	items := h.store.List(c.Query("source"), common.CategoryInternship, common.TableInternships)
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// SearchHandler 搜索所有表
func (h *handler) SearchHandler(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请提供搜索关键词"})
		return
	}
	items := h.store.Search(keyword, c.Query("source"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// ItemHandler 单条详情, 同时增加浏览量
func (h *handler) ItemHandler(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	row, err := h.store.View(c.Param("table"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": row})
}

// FavoriteHandler 收藏数加一
func (h *handler) FavoriteHandler(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	row, err := h.store.Favorite(c.Param("table"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": row.Favorites})
}

// CategoriesHandler 分类统计
func (h *handler) CategoriesHandler(c *gin.Context) {
	stats := h.store.Categories()
	categories := make([]string, 0, len(stats))
	for category := range stats {
		categories = append(categories, category)
	}
	slices.Sort(categories)
	c.JSON(http.StatusOK, gin.H{"categories": categories, "stats": stats})
}

// TestHandler 查看数据库中的表和样例数据
func (h *handler) TestHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "databases": h.store.Sample()})
}

func (h *handler) itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "项目不存在"})
		return 0, false
	}
	return id, true
}

func (h *handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidTable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("数据库操作失败", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
