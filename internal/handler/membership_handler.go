// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/membership/internal/middleware"
	"github.com/hitoshi/membership/internal/model"
)

// MembershipServiceInterface はメンバーシップハンドラーが必要とするサービスインターフェース。
type MembershipServiceInterface interface {
	// AddMembership はメンバーシップを新規登録する。
	AddMembership(ctx context.Context, userID string, membershipType model.MembershipType, initialPoint int) (*model.Membership, error)
	// GetMembership はユーザーIDと種別でメンバーシップ詳細を取得する。
	GetMembership(ctx context.Context, userID string, membershipType model.MembershipType) (*model.Membership, error)
	// GetMembershipList はユーザーの全メンバーシップを返す。
	GetMembershipList(ctx context.Context, userID string) ([]*model.Membership, error)
	// DeleteMembership はメンバーシップを削除する。
	DeleteMembership(ctx context.Context, membershipID, userID string) error
	// AccumulatePoint は決済金額に応じたポイントを加算する。
	AccumulatePoint(ctx context.Context, membershipID, userID string, amount int) error
}

// MembershipHandler はメンバーシップ管理のHTTPハンドラー。
type MembershipHandler struct {
	service MembershipServiceInterface
}

// NewMembershipHandler はMembershipHandlerを生成する。
func NewMembershipHandler(service MembershipServiceInterface) *MembershipHandler {
	return &MembershipHandler{service: service}
}

// membershipAddRequest はメンバーシップ登録リクエストのボディ。
type membershipAddRequest struct {
	MembershipType string `json:"membership_type"`
	Point          *int   `json:"point"`
}

// pointAccumulateRequest はポイント積立リクエストのボディ。
// pointには決済金額を指定する（加算されるポイント数ではない）。
type pointAccumulateRequest struct {
	Point *int `json:"point"`
}

// membershipAddResponse はメンバーシップ登録のAPIレスポンス。
type membershipAddResponse struct {
	ID             string `json:"id"`
	MembershipType string `json:"membership_type"`
}

// membershipDetailResponse はメンバーシップ詳細のAPIレスポンス。
type membershipDetailResponse struct {
	ID             string    `json:"id"`
	MembershipType string    `json:"membership_type"`
	CompanyName    string    `json:"company_name"`
	Point          int       `json:"point"`
	CreatedAt      time.Time `json:"created_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// AddMembership はメンバーシップ登録を処理する。
// POST /api/v1/membership
func (h *MembershipHandler) AddMembership(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUserIDError())
		return
	}

	var req membershipAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	membershipType, ok := model.ParseMembershipType(req.MembershipType)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMembershipTypeError(req.MembershipType))
		return
	}

	initialPoint := 0
	if req.Point != nil {
		initialPoint = *req.Point
	}

	m, err := h.service.AddMembership(r.Context(), userID, membershipType, initialPoint)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(membershipAddResponse{
		ID:             m.ID,
		MembershipType: string(m.MembershipType),
	})
}

// GetMembershipList はユーザーの全メンバーシップを一覧で返す。
// GET /api/v1/membership/list
func (h *MembershipHandler) GetMembershipList(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUserIDError())
		return
	}

	memberships, err := h.service.GetMembershipList(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]membershipDetailResponse, 0, len(memberships))
	for _, m := range memberships {
		res = append(res, toMembershipDetailResponse(m))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// GetMembershipDetail はメンバーシップ種別を指定して詳細を取得する。
// GET /api/v1/membership/detail?membership_type=NAVER
func (h *MembershipHandler) GetMembershipDetail(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUserIDError())
		return
	}

	typeParam := r.URL.Query().Get("membership_type")
	membershipType, ok := model.ParseMembershipType(typeParam)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMembershipTypeError(typeParam))
		return
	}

	m, err := h.service.GetMembership(r.Context(), userID, membershipType)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toMembershipDetailResponse(m))
}

// DeleteMembership はメンバーシップを削除する。
// DELETE /api/v1/membership/:id
func (h *MembershipHandler) DeleteMembership(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUserIDError())
		return
	}

	membershipID := chi.URLParam(r, "id")

	if err := h.service.DeleteMembership(r.Context(), membershipID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AccumulatePoint は決済金額に応じたポイント積立を処理する。
// POST /api/v1/membership/:id/accumulate
func (h *MembershipHandler) AccumulatePoint(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUserIDError())
		return
	}

	membershipID := chi.URLParam(r, "id")

	var req pointAccumulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	if req.Point == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	if err := h.service.AccumulatePoint(r.Context(), membershipID, userID, *req.Point); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// toMembershipDetailResponse はmodel.MembershipからAPIレスポンスに変換する。
func toMembershipDetailResponse(m *model.Membership) membershipDetailResponse {
	return membershipDetailResponse{
		ID:             m.ID,
		MembershipType: string(m.MembershipType),
		CompanyName:    m.MembershipType.CompanyName(),
		Point:          m.Point,
		CreatedAt:      m.CreatedAt,
	}
}

// newInvalidRequestError はリクエストボディ解析失敗のエラーを生成する。
func newInvalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeDuplicateMembership:
		return http.StatusConflict
	case model.ErrCodeMembershipNotFound:
		return http.StatusNotFound
	case model.ErrCodeNotMembershipOwner:
		return http.StatusForbidden
	case model.ErrCodeInvalidMembershipType, model.ErrCodeInvalidPoint, model.ErrCodeInvalidUserID:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
