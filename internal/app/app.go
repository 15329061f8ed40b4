// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/shopman/internal/commerce"
	"github.com/hitoshi/shopman/internal/config"
	"github.com/hitoshi/shopman/internal/database"
	"github.com/hitoshi/shopman/internal/handler"
	"github.com/hitoshi/shopman/internal/logger"
	"github.com/hitoshi/shopman/internal/metrics"
	"github.com/hitoshi/shopman/internal/middleware"
	"github.com/hitoshi/shopman/internal/repository"
	"github.com/hitoshi/shopman/internal/seed"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("state_backend", cfg.StateBackend),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// 状態ストアへ接続し、エンジンをシード・ハイドレートし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. 状態リポジトリの初期化
	stateRepo, closeRepo, err := newStateRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stateRepo.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to state store: %w", err)
	}

	slog.Info("state store connection established")

	// 2. シードデータの読み込み
	seedData := seed.Default()
	if cfg.SeedFile != "" {
		seedData, err = seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		slog.Info("seed data loaded from file", slog.String("path", cfg.SeedFile))
	}

	// 3. エンジンの生成と保存済みスナップショットの復元
	engine := commerce.New(seedData.Products, seedData.Users, seedData.DefaultUsername)
	hydrate(ctx, engine, stateRepo)

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitCheckout),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		HealthChecker:     stateRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Service:           engine,
		Saver:             stateRepo,
		Collector:         collector,
		Gatherer:          registry,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// newStateRepository は設定に応じた状態リポジトリを生成する。
// 返り値のクローズ関数は接続リソースを解放する。
func newStateRepository(cfg *config.Config) (repository.StateRepository, func(), error) {
	switch cfg.StateBackend {
	case config.BackendPostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return repository.NewPostgresStateRepo(db), func() { db.Close() }, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return repository.NewRedisStateRepo(client), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported state backend: %s", cfg.StateBackend)
	}
}

// hydrate は外部ストアのスナップショットでエンジンの状態を復元する。
// スナップショットの読み込み失敗は警告のみで、シード状態のまま起動を続ける。
func hydrate(ctx context.Context, engine *commerce.Engine, repo repository.StateRepository) {
	cart, err := repo.LoadCart(ctx)
	if err != nil {
		slog.Warn("failed to load cart snapshot", slog.String("error", err.Error()))
	}

	user, err := repo.LoadSession(ctx)
	if err != nil {
		slog.Warn("failed to load session snapshot", slog.String("error", err.Error()))
	}

	engine.Hydrate(cart, user)

	if cart != nil || user != nil {
		slog.Info("state restored from snapshot",
			slog.Int("cart_lines", len(cart)),
			slog.Bool("session", user != nil),
		)
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// postgresバックエンド専用。すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.StateBackend != config.BackendPostgres {
		return fmt.Errorf("migrate is only applicable to the postgres backend (current: %s)", cfg.StateBackend)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
