// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/membership/internal/model"
)

// MembershipRepository はメンバーシップデータの永続化インターフェース。
type MembershipRepository interface {
	// FindByID は指定IDのメンバーシップを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Membership, error)

	// FindByUserAndType はユーザーIDと種別でメンバーシップを検索する。
	// 見つからない場合はnilを返す。
	FindByUserAndType(ctx context.Context, userID string, membershipType model.MembershipType) (*model.Membership, error)

	// ListByUserID はユーザーの全メンバーシップをcreated_at昇順で返す。
	// 1件もない場合は空スライスを返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Membership, error)

	// Create はメンバーシップを作成する。IDとタイムスタンプはストア側で採番する。
	// (user_id, membership_type)の一意制約違反の場合はDuplicateMembershipエラーを返す。
	Create(ctx context.Context, membership *model.Membership) error

	// DeleteByID は指定IDのメンバーシップを削除する。
	// 対象が存在しない場合はMembershipNotFoundエラーを返す。
	DeleteByID(ctx context.Context, id string) error

	// AddPoint は指定IDのメンバーシップにポイントを加算する。
	// 加算はストア側で原子的に行う。対象が存在しない場合はMembershipNotFoundエラーを返す。
	AddPoint(ctx context.Context, id string, points int) error
}
