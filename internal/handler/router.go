package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/nexlist/internal/metrics"
	"github.com/hitoshi/nexlist/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// database.DBの部分集合として定義する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Metrics           middleware.HTTPMetricsRecorder
	Gatherer          prometheus.Gatherer
	HealthChecker     HealthChecker

	// 認証
	AuthService  AuthServiceInterface
	AuthVerifier SessionVerifier
	LoginMetrics LoginMetrics
	AuthConfig   AuthHandlerConfig

	// Todo
	TodoService TodoServiceInterface

	// メモ
	MemoService MemoServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders → CORS → Metrics
//	→ (認証ルート外) Session → RateLimit(General)
//
// 認証ルート（/auth/*）・/health・/metricsはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthVerifier, deps.LoginMetrics, deps.AuthConfig)
	todoHandler := NewTodoHandler(deps.TodoService)
	memoHandler := NewMemoHandler(deps.MemoService)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", healthHandler(deps.HealthChecker))

	// Prometheusスクレイプ
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		// ログイン開始はIPキーのレート制限を追加
		r.With(deps.RateLimiter.LoginMiddleware()).Get("/login/google", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.TokenVerifier, deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// Todo管理
		r.Route("/todos", func(r chi.Router) {
			r.Post("/", todoHandler.Create)
			r.Get("/", todoHandler.List)
			r.Delete("/", todoHandler.DeleteAll)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", todoHandler.Get)
				r.Put("/", todoHandler.Update)
				r.Delete("/", todoHandler.Delete)

				// フラグ更新
				r.Put("/toggle", todoHandler.Toggle)
				r.Put("/today", todoHandler.Today)
			})
		})

		// メモ管理
		r.Route("/memo", func(r chi.Router) {
			r.Post("/", memoHandler.Create)
			r.Get("/", memoHandler.Get)
			r.Put("/", memoHandler.Update)
		})
	})

	return r
}

// healthHandler はDB接続を確認して稼働状態を返すハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
