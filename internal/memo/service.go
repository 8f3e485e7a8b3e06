// Package memo はユーザーごとのシングルトンメモに関するビジネスロジックを提供する。
package memo

import (
	"context"
	"fmt"

	"github.com/hitoshi/nexlist/internal/model"
	"github.com/hitoshi/nexlist/internal/repository"
	"github.com/hitoshi/nexlist/internal/security"
)

// Service はメモの作成・取得・更新を提供する。
// メモはユーザーごとに1件のみで、削除操作は存在しない。
type Service struct {
	repo      repository.MemoRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(repo repository.MemoRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create はメモを作成する。saved_atは未設定のまま。
// 既にメモが存在する場合はnilを返す（作成による上書きは許可しない）。
func (s *Service) Create(ctx context.Context, userID int64, content string) (*model.Memo, error) {
	memo, err := s.repo.Create(ctx, userID, s.sanitizer.Sanitize(content))
	if err != nil {
		return nil, fmt.Errorf("failed to create memo: %w", err)
	}
	return memo, nil
}

// Get はユーザーのメモを取得する。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, userID int64) (*model.Memo, error) {
	memo, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get memo: %w", err)
	}
	return memo, nil
}

// Update はメモの内容を更新し、saved_atに現在日付を記録する。
// メモが存在しない場合はnilを返す。
func (s *Service) Update(ctx context.Context, userID int64, content string) (*model.Memo, error) {
	memo, err := s.repo.Update(ctx, userID, s.sanitizer.Sanitize(content))
	if err != nil {
		return nil, fmt.Errorf("failed to update memo: %w", err)
	}
	return memo, nil
}
