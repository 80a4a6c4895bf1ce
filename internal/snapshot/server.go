package snapshot

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-notice/internal/middleware"
)

// Server 快照写入服务, 每次请求整份覆盖 FilePath
type Server struct {
	FilePath string
	logger   *zap.Logger
}

// NewServer filePath 为 mockNotices.ts 的位置
func NewServer(filePath string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{FilePath: filePath, logger: logger}
}

// SetupRouter 路由入口
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(s.logger), middleware.CORS())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.POST(UpdatePath, s.UpdateHandler)
	return r
}

// UpdateHandler 写入快照文件
func (s *Server) UpdateHandler(c *gin.Context) {
	var req updateRequest
	_ = c.ShouldBindJSON(&req)
	s.logger.Info("收到更新请求", zap.Int("content_length", len(req.Content)))

	if req.Content == "" {
		s.logger.Warn("请求缺少文件内容")
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少文件内容"})
		return
	}

	if err := s.write(req.Content); err != nil {
		s.logger.Error("更新文件失败", zap.String("path", s.FilePath), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新文件失败", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "文件更新成功"})
}

func (s *Server) write(content string) error {
	dir := filepath.Dir(s.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.FilePath, []byte(content), 0o644); err != nil {
		return err
	}

	info, err := os.Stat(s.FilePath)
	if err != nil {
		return err
	}
	s.logger.Debug("文件写入成功", zap.String("path", s.FilePath), zap.Int64("size", info.Size()))
	return nil
}
