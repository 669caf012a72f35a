package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/membership/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）
	GeneralBurst    int           // API全般のバーストサイズ
	RegisterRate    rate.Limit    // メンバーシップ登録のレート（req/sec）
	RegisterBurst   int           // メンバーシップ登録のバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// NewRateLimiterConfig はreq/min単位の設定値からRateLimiterConfigを生成する。
// デフォルト要件: API全般 120 req/min/user、登録 10 req/min/user
func NewRateLimiterConfig(generalPerMin, registerPerMin int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(generalPerMin) / 60.0),
		GeneralBurst:    generalPerMin,
		RegisterRate:    rate.Limit(float64(registerPerMin) / 60.0),
		RegisterBurst:   registerPerMin,
		CleanupInterval: 5 * time.Minute,
	}
}

// userLimiter はユーザーごとのレートリミッターとアクセス時刻を保持する。
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterPool はユーザーIDごとのリミッター群を管理する。
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
	rate     rate.Limit
	burst    int
}

func newLimiterPool(r rate.Limit, burst int) *limiterPool {
	return &limiterPool{
		limiters: make(map[string]*userLimiter),
		rate:     r,
		burst:    burst,
	}
}

// get はユーザーのリミッターを取得または作成し、最終アクセス時刻を更新する。
func (p *limiterPool) get(userID string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ul, exists := p.limiters[userID]; exists {
		ul.lastAccess = time.Now()
		return ul.limiter
	}

	limiter := rate.NewLimiter(p.rate, p.burst)
	p.limiters[userID] = &userLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

// count は現在管理されているエントリ数を返す。テストおよびメトリクス用。
func (p *limiterPool) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}

// evict は最終アクセス時刻がttlを超えたエントリを削除する。
func (p *limiterPool) evict(ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	for userID, ul := range p.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(p.limiters, userID)
		}
	}
}

// RateLimiter はユーザーごとのレート制限を管理する。
// API全般のレート制限とメンバーシップ登録のレート制限の2種類を提供する。
type RateLimiter struct {
	config   RateLimiterConfig
	general  *limiterPool
	register *limiterPool
	stopCh   chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		general:  newLimiterPool(config.GeneralRate, config.GeneralBurst),
		register: newLimiterPool(config.RegisterRate, config.RegisterBurst),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// リクエストコンテキストにユーザーIDが含まれている必要がある
// （IdentityMiddlewareの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.general, rl.config.GeneralRate, "general")
}

// RegisterMiddleware はメンバーシップ登録専用のレート制限ミドルウェアを返す。
// API全般のレート制限とは独立に動作する。
func (rl *RateLimiter) RegisterMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.register, rl.config.RegisterRate, "register")
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.count()
}

// RegisterLimiterCount は現在管理されている登録リミッターのエントリ数を返す。
func (rl *RateLimiter) RegisterLimiterCount() int {
	return rl.register.count()
}

func (rl *RateLimiter) middleware(pool *limiterPool, r rate.Limit, limitType string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userID, err := UserIDFromContext(req.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !pool.get(userID).Allow() {
				writeRateLimitResponse(w, r)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", limitType),
				)
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
// 最終アクセスからCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	ttl := rl.config.CleanupInterval * 2
	for {
		select {
		case <-ticker.C:
			rl.general.evict(ttl)
			rl.register.evict(ttl)
		case <-rl.stopCh:
			return
		}
	}
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:     "RATE_LIMIT_EXCEEDED",
		Message:  "リクエスト数が上限に達しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}
