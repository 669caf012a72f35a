// Package membership はメンバーシップ管理のドメインロジックを提供する。
package membership

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/membership/internal/model"
	"github.com/hitoshi/membership/internal/point"
	"github.com/hitoshi/membership/internal/repository"
)

// MetricsRecorder はドメインメトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordRegistration(membershipType string)
	RecordAccrual(points int)
	RecordDeletion()
}

// Service はメンバーシップ管理のサービス層。
// 登録・照会・削除・ポイント加算のビジネスルール（重複防止、所有者確認）を
// 一手に引き受ける。状態は一切保持せず、毎回ストアから取得する。
type Service struct {
	repo    repository.MembershipRepository
	rate    point.RateProvider
	metrics MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewService(
	repo repository.MembershipRepository,
	rate point.RateProvider,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		repo:    repo,
		rate:    rate,
		metrics: metrics,
	}
}

// AddMembership はメンバーシップを新規登録する。
// 同一ユーザー・同一種別のメンバーシップが既に存在する場合はDuplicateMembershipエラーを返す。
func (s *Service) AddMembership(ctx context.Context, userID string, membershipType model.MembershipType, initialPoint int) (*model.Membership, error) {
	if userID == "" {
		return nil, model.NewInvalidUserIDError()
	}
	if !membershipType.Valid() {
		return nil, model.NewInvalidMembershipTypeError(string(membershipType))
	}
	if initialPoint < 0 {
		return nil, model.NewInvalidPointError(initialPoint)
	}

	existing, err := s.repo.FindByUserAndType(ctx, userID, membershipType)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateMembershipError(membershipType)
	}

	m := &model.Membership{
		UserID:         userID,
		MembershipType: membershipType,
		Point:          initialPoint,
	}

	// 存在チェックと挿入の間の競合はストアの一意制約が防ぎ、
	// リポジトリがDuplicateMembershipエラーとして返す。
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	slog.Info("メンバーシップを登録しました",
		slog.String("membership_id", m.ID),
		slog.String("user_id", userID),
		slog.String("membership_type", string(membershipType)),
	)

	if s.metrics != nil {
		s.metrics.RecordRegistration(string(membershipType))
	}

	return m, nil
}

// GetMembership はユーザーIDと種別でメンバーシップ詳細を取得する。
// 未登録の場合はMembershipNotFoundエラーを返す。
func (s *Service) GetMembership(ctx context.Context, userID string, membershipType model.MembershipType) (*model.Membership, error) {
	m, err := s.repo.FindByUserAndType(ctx, userID, membershipType)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewMembershipNotFoundError()
	}

	return m, nil
}

// GetMembershipList はユーザーの全メンバーシップをcreated_at昇順で返す。
// 1件もない場合は空スライスを返す（エラーにしない）。
func (s *Service) GetMembershipList(ctx context.Context, userID string) ([]*model.Membership, error) {
	memberships, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップ一覧の取得に失敗しました: %w", err)
	}

	return memberships, nil
}

// DeleteMembership はメンバーシップを削除する。
// チェックは存在確認 → 所有者確認の順に行う。存在しないレコードは
// 問い合わせ元に関わらず同一のMembershipNotFoundエラーを返す。
func (s *Service) DeleteMembership(ctx context.Context, membershipID, userID string) error {
	m, err := s.repo.FindByID(ctx, membershipID)
	if err != nil {
		return fmt.Errorf("メンバーシップの取得に失敗しました: %w", err)
	}
	if m == nil {
		return model.NewMembershipNotFoundError()
	}
	if m.UserID != userID {
		return model.NewNotMembershipOwnerError()
	}

	if err := s.repo.DeleteByID(ctx, membershipID); err != nil {
		return fmt.Errorf("メンバーシップの削除に失敗しました: %w", err)
	}

	slog.Info("メンバーシップを削除しました",
		slog.String("membership_id", membershipID),
		slog.String("user_id", userID),
	)

	if s.metrics != nil {
		s.metrics.RecordDeletion()
	}

	return nil
}

// AccumulatePoint は決済金額amountに応じたポイントをメンバーシップに加算する。
// 付与ポイントの算出はRateProviderに委譲する。
// 存在確認・所有者確認はDeleteMembershipと同じ順序・同じエラー種別で行う。
func (s *Service) AccumulatePoint(ctx context.Context, membershipID, userID string, amount int) error {
	if amount < 0 {
		return model.NewInvalidPointError(amount)
	}

	m, err := s.repo.FindByID(ctx, membershipID)
	if err != nil {
		return fmt.Errorf("メンバーシップの取得に失敗しました: %w", err)
	}
	if m == nil {
		return model.NewMembershipNotFoundError()
	}
	if m.UserID != userID {
		return model.NewNotMembershipOwnerError()
	}

	points := s.rate.CalculateAmount(amount)

	if err := s.repo.AddPoint(ctx, membershipID, points); err != nil {
		return fmt.Errorf("ポイントの加算に失敗しました: %w", err)
	}

	slog.Info("ポイントを加算しました",
		slog.String("membership_id", membershipID),
		slog.Int("amount", amount),
		slog.Int("points", points),
	)

	if s.metrics != nil {
		s.metrics.RecordAccrual(points)
	}

	return nil
}
