package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"campus-notice/internal/app"
	"campus-notice/internal/db"
	"campus-notice/internal/engine"
	"campus-notice/internal/logic"
	"campus-notice/internal/remote"
	"campus-notice/internal/snapshot"
	"campus-notice/internal/store"
)

var (
	cfgFile string
	verbose bool

	cfg    *Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "campus-notice",
	Short: "校园通知聚合: 数据 API、快照服务和应用服务",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}

		cfg, err = LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.applyFlags(cmd); err != nil {
			return err
		}
		cfg.Print(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "启动数据 API, 读取爬虫数据库",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAPI(cmd.Context())
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "启动快照写入服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshot(cmd.Context())
	},
}

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "启动应用服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd.Context())
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "同时启动三个服务, 任一失败全部退出",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error { return runAPI(ctx) })
		g.Go(func() error { return runSnapshot(ctx) })
		g.Go(func() error { return runApp(ctx) })
		return g.Wait()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML 配置文件")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出 debug 日志")
	registerFlags(rootCmd)

	rootCmd.AddCommand(apiCmd, snapshotCmd, appCmd, allCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func runAPI(ctx context.Context) error {
	l := logger.Named("api")
	router := logic.SetupRouter(logic.NewStore(cfg.Sources(), l), l)
	return serve(ctx, l, cfg.APIAddr, router)
}

func runSnapshot(ctx context.Context) error {
	l := logger.Named("snapshot")
	router := snapshot.NewServer(cfg.SnapshotFile, l).SetupRouter()
	return serve(ctx, l, cfg.SnapshotAddr, router)
}

func runApp(ctx context.Context) error {
	l := logger.Named("app")

	kv, closeStore, err := openStore(l)
	if err != nil {
		return err
	}
	defer closeStore()

	e := engine.New(
		store.NewAccessor(kv),
		remote.NewClient(cfg.RemoteBaseURL, nil),
		snapshot.NewClient(cfg.SnapshotURL, nil),
		engine.WithLogger(l.Named("engine")),
	)
	if _, err := e.EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("初始化管理员失败: %w", err)
	}
	return serve(ctx, l, cfg.AppAddr, app.NewServer(e, l).SetupRouter())
}

// openStore memory 驱动用进程内存储, 其余走 gorm
func openStore(l *zap.Logger) (store.Store, func(), error) {
	storeCfg := cfg.Store()
	if storeCfg.Driver == db.DriverMemory {
		return store.NewMemoryStore(), func() {}, nil
	}
	conn, err := db.OpenStore(storeCfg, l)
	if err != nil {
		return nil, nil, err
	}
	return store.NewGormStore(conn), func() {
		if err := db.Close(conn); err != nil {
			l.Warn("关闭存储失败", zap.Error(err))
		}
	}, nil
}

// serve 监听直到 ctx 结束, 然后优雅关闭
func serve(ctx context.Context, l *zap.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		l.Info("server started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.Info("server stopping", zap.String("addr", addr))
		return srv.Shutdown(shutdownCtx)
	}
}
