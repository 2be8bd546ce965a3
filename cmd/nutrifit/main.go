// Command nutrifit is the fitness and nutrition MCP server. It exposes the
// Nutritionix and WGER APIs as MCP tools over stdio or streamable HTTP, with
// an optional HTTP sidecar for health probes and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nutrifit/nutrifit/internal/config"
	"github.com/nutrifit/nutrifit/internal/health"
	"github.com/nutrifit/nutrifit/internal/observe"
	"github.com/nutrifit/nutrifit/internal/server"
	"github.com/nutrifit/nutrifit/internal/upstream/nutritionix"
	"github.com/nutrifit/nutrifit/internal/upstream/wger"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "nutrifit: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "nutrifit: %v\n", err)
		}
		return 1
	}

	logger, closeLog := newLogger(cfg.Server)
	slog.SetDefault(logger)
	defer closeLog()

	slog.Info("nutrifit starting",
		"config", *configPath,
		"transport", cfg.Server.Transport,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: "1.0.0",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	nix, err := buildNutritionix(cfg, metrics)
	if err != nil {
		slog.Error("failed to create Nutritionix client", "err", err)
		return 1
	}
	wgerClient := buildWGER(cfg, metrics)

	srv := server.New(cfg, nix, wgerClient, metrics)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	if cfg.Server.ListenAddr != "" {
		g.Go(func() error {
			return runSidecar(ctx, cfg, metrics, wgerClient)
		})
	}

	slog.Info("server ready")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

func buildNutritionix(cfg *config.Config, metrics *observe.Metrics) (*nutritionix.Client, error) {
	opts := []nutritionix.Option{nutritionix.WithMetrics(metrics)}
	if cfg.Nutritionix.BaseURL != "" {
		opts = append(opts, nutritionix.WithBaseURL(cfg.Nutritionix.BaseURL))
	}
	if cfg.Nutritionix.Timeout > 0 {
		opts = append(opts, nutritionix.WithTimeout(cfg.Nutritionix.Timeout))
	}
	return nutritionix.New(cfg.Nutritionix.AppID, cfg.Nutritionix.AppKey, opts...)
}

func buildWGER(cfg *config.Config, metrics *observe.Metrics) *wger.Client {
	opts := []wger.Option{wger.WithMetrics(metrics)}
	if cfg.WGER.BaseURL != "" {
		opts = append(opts, wger.WithBaseURL(cfg.WGER.BaseURL))
	}
	if cfg.WGER.UserAgent != "" {
		opts = append(opts, wger.WithUserAgent(cfg.WGER.UserAgent))
	}
	if cfg.WGER.Timeout > 0 {
		opts = append(opts, wger.WithTimeout(cfg.WGER.Timeout))
	}
	return wger.New(opts...)
}

// runSidecar serves health probes and Prometheus metrics on the sidecar
// listen address until ctx is cancelled.
func runSidecar(ctx context.Context, cfg *config.Config, metrics *observe.Metrics, wgerClient *wger.Client) error {
	checker := health.New(
		health.Checker{
			Name: "nutritionix",
			Check: func(context.Context) error {
				if cfg.Nutritionix.AppID == "" || cfg.Nutritionix.AppKey == "" {
					return errors.New("missing credentials")
				}
				return nil
			},
		},
		health.Checker{
			Name: "wger",
			Check: func(ctx context.Context) error {
				_, err := wgerClient.Equipment(ctx, 1)
				return err
			},
		},
	)

	mux := http.NewServeMux()
	checker.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: observe.Middleware(metrics)(mux),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("sidecar listening", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newLogger builds the process logger. With a log file configured, output
// goes both to stderr and a size-rotated file.
func newLogger(cfg config.ServerConfig) (*slog.Logger, func()) {
	var lvl slog.Level
	switch cfg.LogLevel {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeLog := func() {}
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = io.MultiWriter(os.Stderr, rotator)
		closeLog = func() { _ = rotator.Close() }
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})), closeLog
}
