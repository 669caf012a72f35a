package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/membership/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = pq.ErrorCode("23505")

// PostgresMembershipRepo はPostgreSQLを使用したメンバーシップリポジトリ。
type PostgresMembershipRepo struct {
	db *sql.DB
}

// NewPostgresMembershipRepo はPostgresMembershipRepoを生成する。
func NewPostgresMembershipRepo(db *sql.DB) *PostgresMembershipRepo {
	return &PostgresMembershipRepo{db: db}
}

// FindByID は指定IDのメンバーシップを取得する。見つからない場合はnilを返す。
func (r *PostgresMembershipRepo) FindByID(ctx context.Context, id string) (*model.Membership, error) {
	m := &model.Membership{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, membership_type, point, created_at, updated_at
		 FROM memberships WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.UserID, &m.MembershipType, &m.Point, &m.CreatedAt, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership by ID: %w", err)
	}

	return m, nil
}

// FindByUserAndType はユーザーIDと種別でメンバーシップを検索する。見つからない場合はnilを返す。
func (r *PostgresMembershipRepo) FindByUserAndType(ctx context.Context, userID string, membershipType model.MembershipType) (*model.Membership, error) {
	m := &model.Membership{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, membership_type, point, created_at, updated_at
		 FROM memberships WHERE user_id = $1 AND membership_type = $2`,
		userID, string(membershipType),
	).Scan(&m.ID, &m.UserID, &m.MembershipType, &m.Point, &m.CreatedAt, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership by user and type: %w", err)
	}

	return m, nil
}

// ListByUserID はユーザーの全メンバーシップをcreated_at昇順で返す。
// 同時刻のレコードはidで順序を安定させる。
func (r *PostgresMembershipRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, membership_type, point, created_at, updated_at
		 FROM memberships WHERE user_id = $1
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]*model.Membership, 0)
	for rows.Next() {
		m := &model.Membership{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.MembershipType, &m.Point, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return memberships, nil
}

// Create はメンバーシップを作成する。
// IDはUUIDで採番し、タイムスタンプを設定してから挿入する。
// (user_id, membership_type)の一意制約違反はDuplicateMembershipエラーに変換する。
func (r *PostgresMembershipRepo) Create(ctx context.Context, membership *model.Membership) error {
	if membership.ID == "" {
		membership.ID = uuid.NewString()
	}
	now := time.Now()
	membership.CreatedAt = now
	membership.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, membership_type, point, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		membership.ID, membership.UserID, string(membership.MembershipType),
		membership.Point, membership.CreatedAt, membership.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.NewDuplicateMembershipError(membership.MembershipType)
		}
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	return nil
}

// DeleteByID は指定IDのメンバーシップを削除する。
func (r *PostgresMembershipRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewMembershipNotFoundError()
	}
	return nil
}

// AddPoint は指定IDのメンバーシップにポイントを原子的に加算する。
// 読み取り・加算・書き込みをUPDATE文1つで行い、更新競合の窓を作らない。
func (r *PostgresMembershipRepo) AddPoint(ctx context.Context, id string, points int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET point = point + $1, updated_at = now() WHERE id = $2`,
		points, id,
	)
	if err != nil {
		return fmt.Errorf("failed to add point: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewMembershipNotFoundError()
	}
	return nil
}

// compile-time interface check
var _ MembershipRepository = (*PostgresMembershipRepo)(nil)
