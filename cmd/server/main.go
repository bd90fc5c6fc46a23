// Package main はアクセスエラーページサーバーのエントリポイント。
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"access-error-service/config"
	"access-error-service/internal/handler"
	"access-error-service/internal/infra"
	"access-error-service/internal/render"
	"access-error-service/internal/repository"
	"access-error-service/internal/sink"
	"access-error-service/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	cfg := config.Load()
	infra.SetupLogger(cfg, os.Stdout)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// 記録先: ファイルは常に、データベースは設定時のみ
	fileSink := sink.NewFileSink(cfg.LogFile)
	sinks := []usecase.LogSink{fileSink}

	if cfg.DatabaseEnabled() {
		db, err := infra.NewDB(cfg)
		if err != nil {
			slog.Error("failed to init database", "error", err)
			os.Exit(1)
		}

		var sealer usecase.Sealer
		if cfg.KMSKeyName != "" {
			kmsSealer, err := infra.NewKMSSealer(ctx, cfg.KMSKeyName)
			if err != nil {
				slog.Error("failed to init KMS client", "error", err)
				os.Exit(1)
			}
			defer func() {
				if closeErr := kmsSealer.Close(); closeErr != nil {
					slog.Error("failed to close KMS client", "error", closeErr)
				}
			}()
			sealer = kmsSealer
		}

		sinks = append(sinks, usecase.NewRecordService(repository.NewRecordRepository(db), sealer))
	}

	// DI
	metrics := infra.NewMetrics()
	service := usecase.NewReportService(metrics, sinks...).WithSinkTimeout(cfg.SinkTimeout)
	site := render.Site{AppName: cfg.AppName, ContactEmail: cfg.ContactEmail}
	h := handler.NewAccessErrorHandler(service, site, cfg.DenialStatus)
	router := handler.NewRouter(h, cfg.DenialPath, metrics.Handler())

	var root http.Handler = router
	if cfg.OtelEnabled {
		root = otelhttp.NewHandler(router, cfg.OtelServiceName)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server",
		"port", cfg.Port,
		"denial_path", cfg.DenialPath,
		"log_file", fileSink.Path(),
		"database_sink", cfg.DatabaseEnabled(),
	)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
