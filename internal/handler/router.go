package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/membership/internal/metrics"
	"github.com/hitoshi/membership/internal/middleware"
)

// Pinger はヘルスチェック用のDB疎通確認インターフェース。
// *sql.DBがそのまま満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     Pinger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス（nilの場合は/metricsルートとHTTP計測を無効化）
	Metrics         *metrics.Collector
	MetricsGatherer prometheus.Gatherer

	// メンバーシップ
	MembershipService MembershipServiceInterface

	// リクエストログ出力先（nilの場合はslog.Defaultを使用）
	Logger *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → Metrics
//
// /api/v1/* のルートにはさらに Identity → RateLimit(General) を適用する。
// /health と /metrics は認証・レート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Metrics))
	}

	membershipHandler := NewMembershipHandler(deps.MembershipService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- ユーザーIDが必要なルート ---
	// ミドルウェアスタック: Identity → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewIdentityMiddleware())
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Route("/api/v1/membership", func(r chi.Router) {
			// POST /api/v1/membership - メンバーシップ登録（登録専用レート制限を追加）
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.RegisterMiddleware()).Post("/", membershipHandler.AddMembership)
			} else {
				r.Post("/", membershipHandler.AddMembership)
			}

			r.Get("/list", membershipHandler.GetMembershipList)
			r.Get("/detail", membershipHandler.GetMembershipDetail)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", membershipHandler.DeleteMembership)
				r.Post("/accumulate", membershipHandler.AccumulatePoint)
			})
		})
	})

	return r
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(healthResponse{Status: "unhealthy"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
	}
}
