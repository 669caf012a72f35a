// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, membership, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateMembership   = "DUPLICATE_MEMBERSHIP"
	ErrCodeMembershipNotFound    = "MEMBERSHIP_NOT_FOUND"
	ErrCodeNotMembershipOwner    = "NOT_MEMBERSHIP_OWNER"
	ErrCodeInvalidMembershipType = "INVALID_MEMBERSHIP_TYPE"
	ErrCodeInvalidPoint          = "INVALID_POINT"
	ErrCodeInvalidUserID         = "INVALID_USER_ID"
)

// NewDuplicateMembershipError は重複登録エラーを生成する。
// 同一ユーザーが同一種別のメンバーシップを二重登録しようとした場合に使用する。
func NewDuplicateMembershipError(membershipType MembershipType) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateMembership,
		Message:  fmt.Sprintf("このメンバーシップは既に登録されています: %s", membershipType),
		Category: "membership",
		Action:   "登録済みメンバーシップの一覧を確認してください。",
	}
}

// NewMembershipNotFoundError はメンバーシップ未検出エラーを生成する。
// 存在しないIDまたは未登録の(ユーザー, 種別)ペアが指定された場合に使用する。
// 所有者情報は含めない（存在しないレコードに対して誰が問い合わせても同一の応答とする）。
func NewMembershipNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeMembershipNotFound,
		Message:  "存在しないメンバーシップです。",
		Category: "membership",
		Action:   "メンバーシップIDまたは種別を確認してください。",
	}
}

// NewNotMembershipOwnerError は所有者不一致エラーを生成する。
func NewNotMembershipOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotMembershipOwner,
		Message:  "メンバーシップの所有者ではありません。",
		Category: "membership",
		Action:   "自分が所有するメンバーシップのIDを指定してください。",
	}
}

// NewInvalidMembershipTypeError は無効なメンバーシップ種別エラーを生成する。
func NewInvalidMembershipTypeError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMembershipType,
		Message:  fmt.Sprintf("無効なメンバーシップ種別です: %s", value),
		Category: "validation",
		Action:   "membership_typeには NAVER、KAKAO、LINE のいずれかを指定してください。",
	}
}

// NewInvalidPointError は無効なポイント値エラーを生成する。
func NewInvalidPointError(point int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPoint,
		Message:  fmt.Sprintf("無効なポイント値です: %d", point),
		Category: "validation",
		Action:   "pointには0以上の整数を指定してください。",
	}
}

// NewInvalidUserIDError は無効なユーザーIDエラーを生成する。
func NewInvalidUserIDError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUserID,
		Message:  "ユーザーIDが指定されていません。",
		Category: "validation",
		Action:   "X-USER-IDヘッダーにユーザーIDを指定してください。",
	}
}
