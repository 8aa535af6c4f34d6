package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"slimearena/assets"
	"slimearena/player"
	"slimearena/server"
	"slimearena/term"
)

// SlimeArena 入口：启动 HTTP + WebSocket 服务，或以 -term 在本地终端试玩
func main() {
	var (
		addr       string
		configPath string
		logPath    string
		local      bool
	)
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (overrides config)")
	flag.StringVar(&configPath, "config", "", "YAML config file")
	flag.StringVar(&logPath, "log", "", "log file path (overrides config)")
	flag.BoolVar(&local, "term", false, "play a single local slime in the terminal")
	flag.Parse()

	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logPath != "" {
		cfg.LogFile = logPath
	}

	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	// 图片表进程内只加载一次，所有实体共享
	images, err := assets.Default()
	if err != nil {
		server.Log.Fatalf("load assets: %v", err)
	}

	if local {
		runTerminal(cfg, images)
		return
	}

	rm := server.Configure(cfg.Room, images)
	// 先预创建一个默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom(cfg.DefaultRoom)

	mux := http.NewServeMux()
	rm.Routes(mux)
	// 前后端分离：将 / 映射到 web 目录的静态资源
	mux.Handle("/", http.FileServer(http.Dir("web")))

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		server.Log.Infof("SlimeArena listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnf("shutdown: %v", err)
	}
	rm.Close()
}

func runTerminal(cfg server.Config, images *assets.Set) {
	rc := cfg.Room
	p, err := player.New(images, 0, 0, 1, 1, player.WithMoveSpeed(rc.Step))
	if err != nil {
		server.Log.Fatalf("create player: %v", err)
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		server.Log.Fatalf("open terminal: %v", err)
	}
	scene := term.NewScene(p, rc.ProjectileSpeed, rc.ProjectileTTL, server.Log)
	if err := term.Run(screen, scene); err != nil {
		server.Log.Fatalf("terminal: %v", err)
	}
}
