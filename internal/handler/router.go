package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/aliendex/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CookieSigner      CookieSigner
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// メトリクス（nilの場合は記録・公開しない）
	MetricsRecorder middleware.HTTPMetricsRecorder
	MetricsHandler  http.Handler
	PanicRecorder   middleware.PanicRecorder

	// エイリアン
	AlienService AlienServiceInterface
	SeedEnabled  bool

	// コメント
	CommentService CommentServiceInterface

	// ユーザー
	AuthService AuthServiceInterface
	UserConfig  UserHandlerConfig
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → RequestID → MethodOverride
//	→ Session → Logging → Metrics → RateLimit(General) → RateLimit(Write) → CSRF
//
// MethodOverrideはルーティングより前に評価される必要があるため最上位に置く。
// /health, /metrics, /api/csrf-token はセッション以降のチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.PanicRecorder))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.UserConfig.CookieSecure))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewMethodOverrideMiddleware())

	alienHandler := NewAlienHandler(deps.AlienService)
	commentHandler := NewCommentHandler(deps.CommentService)
	userHandler := NewUserHandler(deps.AuthService, deps.CookieSigner, deps.UserConfig)

	// --- 運用エンドポイント ---
	if deps.HealthChecker != nil {
		r.Method(http.MethodGet, "/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- アプリケーションのルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.CookieSigner))
		r.Use(middleware.NewLoggingMiddleware(logger))
		if deps.MetricsRecorder != nil {
			r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
		}
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(deps.RateLimiter.WriteMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Get(middleware.ErrorPagePath, ErrorPage)

		r.Route("/aliens", func(r chi.Router) {
			r.Get("/", alienHandler.List)
			r.Post("/", alienHandler.Create)
			r.Get("/mine", alienHandler.ListMine)
			if deps.SeedEnabled {
				r.Post("/seed", alienHandler.Seed)
			}

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", alienHandler.Get)
				r.Put("/", alienHandler.Update)
				r.Delete("/", alienHandler.Delete)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/{alienId}", commentHandler.Create)
			r.Delete("/delete/{alienId}/{commentId}", commentHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", userHandler.Signup)
			r.Post("/login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)
			r.Get("/me", userHandler.Me)
		})
	})

	return r
}
