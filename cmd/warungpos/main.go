package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bjo163/warungpos/config"
	"github.com/bjo163/warungpos/internal/adminapi"
	"github.com/bjo163/warungpos/internal/app"
	"github.com/bjo163/warungpos/internal/webserver"
)

var (
	configFile = flag.String("c", "/etc/warungpos.yml", "config file path")
	initDb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer    = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("warungpos", version)
		return
	}

	cfgPath := *configFile
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfgPath = ""
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws := webserver.Init(application)
	adminapi.InitRouter()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ws.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("server stopped")
}
