package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/aliendex/internal/alien"
	"github.com/hitoshi/aliendex/internal/auth"
	"github.com/hitoshi/aliendex/internal/comment"
	"github.com/hitoshi/aliendex/internal/config"
	"github.com/hitoshi/aliendex/internal/database"
	"github.com/hitoshi/aliendex/internal/handler"
	"github.com/hitoshi/aliendex/internal/logger"
	"github.com/hitoshi/aliendex/internal/metrics"
	"github.com/hitoshi/aliendex/internal/middleware"
	"github.com/hitoshi/aliendex/internal/repository"
	"github.com/hitoshi/aliendex/internal/security"
	"github.com/hitoshi/aliendex/internal/worker/cleanup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. LOG_LEVELを反映する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

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
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はMongoDBに接続し、疎通を確認する。
// 起動直後はMongoDBの準備が整っていないことがあるため、Pingはバックオフ付きで再試行する。
func openDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.Open(context.Background(), cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		return nil, err
	}

	retry := database.DefaultPingRetryConfig
	retry.Attempts = cfg.MongoConnectAttempts
	if err := db.PingWithRetry(context.Background(), retry); err != nil {
		closeDatabase(db)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("uri", maskMongoURI(cfg.MongoURI)),
		slog.String("database", cfg.MongoDatabase),
	)
	return db, nil
}

func closeDatabase(db *database.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Close(ctx); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}
}

// newRegistry はGo/プロセスの標準メトリクスを含むPrometheusレジストリを生成する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	// 2. リポジトリの初期化
	alienRepo := repository.NewMongoAlienRepo(db.Database)
	userRepo := repository.NewMongoUserRepo(db.Database)
	sessionRepo := repository.NewMongoSessionRepo(db.Database)

	// 3. メトリクス
	registry := newRegistry()
	collector := metrics.NewCollector(registry)

	// 4. セキュリティ
	signer := security.NewCookieSigner(cfg.SessionSecret)
	hasher := security.NewPasswordHasher(0)
	sanitizer := security.NewCommentSanitizer()

	// 5. ドメインサービスの初期化
	alienService := alien.NewService(alienRepo, collector, slog.Default())
	commentService := comment.NewService(alienRepo, sanitizer, collector, slog.Default())
	authService := auth.NewService(userRepo, sessionRepo, hasher,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitWrite),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		HealthChecker:     db,
		SessionFinder:     sessionRepo,
		CookieSigner:      signer,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
			Disabled:     !cfg.CSRFEnabled,
		},
		RateLimiter: rateLimiter,

		MetricsRecorder: collector,
		MetricsHandler:  metrics.Handler(registry),
		PanicRecorder:   collector,

		AlienService: alienService,
		SeedEnabled:  cfg.SeedEnabled,

		CommentService: commentService,

		AuthService: authService,
		UserConfig: handler.UserHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serveUntilSignal(server, "API server")
}

// serveUntilSignal はHTTPサーバーを起動し、SIGINTまたはSIGTERMを受信するとグレースフルシャットダウンする。
func serveUntilSignal(server *http.Server, name string) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		slog.Info(name+" starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("%s listen error: %w", name, err)
	case <-stop:
	}

	slog.Info("shutting down " + name + "...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s shutdown failed: %w", name, err)
	}

	slog.Info(name + " stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションのクリーンアップを定期実行し、
// /health と /metrics を提供する管理用HTTPサーバーを起動する。
func runWorker(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	sessionRepo := repository.NewMongoSessionRepo(db.Database)

	registry := newRegistry()
	collector := metrics.NewCollector(registry)

	cleanupJob := cleanup.NewCleanupJob(sessionRepo, collector, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)
	go cleanupJob.Start(ctx, cfg.SessionCleanupInterval)

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware(collector))
	r.Method(http.MethodGet, "/health", handler.NewHealthHandler(db))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return serveUntilSignal(server, "worker")
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("uri", maskMongoURI(cfg.MongoURI)),
		slog.String("database", cfg.MongoDatabase),
	)

	if err := database.RunMigrations(cfg.MongoURI, cfg.MongoDatabase); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSeed はエイリアンコレクションを固定データで置き換える。
func runSeed(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	service := alien.NewService(repository.NewMongoAlienRepo(db.Database), nil, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	defer cancel()

	aliens, err := service.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("seed completed", slog.Int("count", len(aliens)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskMongoURI は接続URIのパスワードをマスクする。
func maskMongoURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
