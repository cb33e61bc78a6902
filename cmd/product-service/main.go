package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-service/internal/config"
	httpAPI "github.com/iyhunko/inventory-service/internal/http"
	"github.com/iyhunko/inventory-service/internal/http/controller"
	"github.com/iyhunko/inventory-service/internal/logger"
	"github.com/iyhunko/inventory-service/internal/metrics"
	"github.com/iyhunko/inventory-service/internal/repository/sql"
	"github.com/iyhunko/inventory-service/internal/service"
	sqspkg "github.com/iyhunko/inventory-service/internal/sqs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	// Create repositories
	productRepository := sql.NewProductRepository(db)
	eventRepository := sql.NewEventRepository(db)
	transactionalRepository := sql.NewTransactionalRepository(db)
	tokenRepository := sql.NewTokenRepository(db)

	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
	handleErr("creating SQS client", err)
	sqsPublisher := sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)

	productService := service.NewProductService(productRepository, transactionalRepository)

	ctr := controller.New(conf, tokenRepository)
	productCtr := controller.NewProductController(productService)
	router := httpAPI.InitRouter(conf, tokenRepository, gin.New(), ctr, productCtr)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsServer := metrics.NewServer(conf)

	// Product changes reach SQS through the events table
	outboxWorker := service.NewOutboxWorker(eventRepository, sqsPublisher, conf.OutboxInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		outboxWorker.Start(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		return serve(httpServer)
	})
	g.Go(func() error {
		slog.Info("Metrics server starting", slog.String("port", conf.MetricsServer.Port))
		return serve(metricsServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(httpServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		handleErr("running product service", err)
	}
}

func serve(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
