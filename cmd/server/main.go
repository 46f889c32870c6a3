package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	httpv1 "github.com/motionlab/dance-analysis-service/internal/controller/http/v1"
	"github.com/motionlab/dance-analysis-service/internal/domain/port"
	"github.com/motionlab/dance-analysis-service/internal/infra/config"
	"github.com/motionlab/dance-analysis-service/internal/infra/ffmpeg"
	"github.com/motionlab/dance-analysis-service/internal/infra/memory"
	"github.com/motionlab/dance-analysis-service/internal/infra/metrics"
	minioarchive "github.com/motionlab/dance-analysis-service/internal/infra/minio"
	"github.com/motionlab/dance-analysis-service/internal/infra/pose"
	"github.com/motionlab/dance-analysis-service/internal/infra/rabbitmq"
	"github.com/motionlab/dance-analysis-service/internal/infra/render"
	"github.com/motionlab/dance-analysis-service/internal/infra/storage"
	"github.com/motionlab/dance-analysis-service/internal/infra/tracing"
	"github.com/motionlab/dance-analysis-service/internal/usecase"
	"github.com/motionlab/dance-analysis-service/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting dance-analysis-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	if cfg.OTLPEndpoint != "" {
		shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer shutdownTracing(context.Background())
		}
	}

	workspace, err := storage.NewWorkspace(cfg.DataDir, log)
	fatalOnErr(err, "create workspace")

	registry := memory.NewRegistry()

	// Optional status events
	var publisher port.StatusPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		fatalOnErr(err, "connect to rabbitmq")
		defer conn.Close()

		pub, err := rabbitmq.NewStatusPublisher(conn, cfg.RabbitMQExchange)
		fatalOnErr(err, "create status publisher")
		publisher = pub
	}

	// Optional artifact archiving
	var archiver port.ArtifactArchiver
	if cfg.MinIOEndpoint != "" {
		arc, err := minioarchive.NewArchiver(minioarchive.ArchiverConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.MinIOArchiveBucket,
		})
		fatalOnErr(err, "create minio archiver")
		fatalOnErr(arc.EnsureBucket(ctx), "ensure archive bucket")
		archiver = arc
	}

	analyzer := usecase.NewVideoAnalyzer(
		ffmpeg.NewSource(log),
		ffmpeg.NewEncoder(log),
		render.NewSkeleton(),
		cfg.FrameSkip,
		log,
	)

	runner := usecase.NewJobRunner(
		registry,
		analyzer,
		pose.NewEngine(cfg.PoseServiceURL, log),
		workspace,
		publisher,
		archiver,
		log,
		usecase.RunnerConfig{
			AllowedFormats: cfg.AllowedFormats,
			WorkerCount:    cfg.WorkerCount,
			QueueSize:      cfg.QueueSize,
			JobTimeout:     time.Duration(cfg.JobTimeoutMin) * time.Minute,
		},
	)
	runner.Start(ctx)

	// Retention cleanup ticker
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.CleanupIntervalMin) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				workspace.Prune(time.Duration(cfg.RetentionHours) * time.Hour)
			}
		}
	}()

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, runner, log)

	handler := httpv1.NewAnalysisHandler(runner, log)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: httpv1.NewRouter(handler, log),
	}

	go func() {
		log.Info("api server starting", zap.Int("port", cfg.HTTPPort))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server error", zap.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	apiSrv.Shutdown(shutdownCtx)
	metricsSrv.Shutdown(shutdownCtx)

	cancel()
	runner.Wait()
	log.Info("dance-analysis-service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
