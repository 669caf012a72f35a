// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/membership/internal/model"
)

// UserIDHeader は呼び出し元ユーザーIDを渡すリクエストヘッダー名。
const UserIDHeader = "X-USER-ID"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// NewIdentityMiddleware はX-USER-IDヘッダーから呼び出し元ユーザーIDを読み取り、
// リクエストコンテキストに注入するミドルウェアを返す。
// ヘッダーの値はそのまま信頼する（サーバー側セッションは持たない）。
// ヘッダーが欠落または空のリクエストには401 Unauthorizedを返す。
func NewIdentityMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
					Code:     "UNAUTHORIZED",
					Message:  "ユーザーIDが指定されていません。",
					Category: "auth",
					Action:   "X-USER-IDヘッダーにユーザーIDを指定してください。",
				})
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// アイデンティティミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
