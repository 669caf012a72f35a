// Package model はドメインモデルを定義する。
package model

import "time"

// Membership はユーザーと外部ポイントプロバイダーとの会員登録を表す。
// 1ユーザーにつき同一種別のメンバーシップは1件のみ登録できる。
type Membership struct {
	ID             string
	UserID         string
	MembershipType MembershipType
	Point          int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MembershipType はメンバーシップの種別（外部プロバイダー）を表す。
type MembershipType string

const (
	// MembershipTypeNaver はNAVERメンバーシップ。
	MembershipTypeNaver MembershipType = "NAVER"
	// MembershipTypeKakao はKAKAOメンバーシップ。
	MembershipTypeKakao MembershipType = "KAKAO"
	// MembershipTypeLine はLINEメンバーシップ。
	MembershipTypeLine MembershipType = "LINE"
)

// CompanyName はメンバーシップ種別に対応する表示名を返す。
// 未知の種別の場合は空文字を返す。
func (t MembershipType) CompanyName() string {
	switch t {
	case MembershipTypeNaver:
		return "ネイバー"
	case MembershipTypeKakao:
		return "カカオ"
	case MembershipTypeLine:
		return "ライン"
	default:
		return ""
	}
}

// Valid はメンバーシップ種別が定義済みのいずれかであることを検証する。
func (t MembershipType) Valid() bool {
	switch t {
	case MembershipTypeNaver, MembershipTypeKakao, MembershipTypeLine:
		return true
	default:
		return false
	}
}

// ParseMembershipType は文字列からメンバーシップ種別を解析する。
// 定義済みの種別でない場合はfalseを返す。
func ParseMembershipType(s string) (MembershipType, bool) {
	t := MembershipType(s)
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// MembershipTypes は定義済みの全メンバーシップ種別を返す。
func MembershipTypes() []MembershipType {
	return []MembershipType{
		MembershipTypeNaver,
		MembershipTypeKakao,
		MembershipTypeLine,
	}
}
