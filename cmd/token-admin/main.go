package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iyhunko/inventory-service/internal/config"
	"github.com/iyhunko/inventory-service/internal/logger"
	"github.com/iyhunko/inventory-service/internal/repository/sql"
)

func main() {
	conf, err := config.LoadDatabaseFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	cmd := newRootCommand(sql.NewTokenRepository(db))
	if err := cmd.ExecuteContext(ctx); err != nil {
		db.Close()
		os.Exit(1)
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
