// Package todo はTodoに関するビジネスロジックを提供する。
// 所有者スコープの強制はリポジトリ層に委譲し、このサービスは
// 入力のサニタイズと取得結果の受け渡しのみを担う。
package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/nexlist/internal/model"
	"github.com/hitoshi/nexlist/internal/repository"
	"github.com/hitoshi/nexlist/internal/security"
)

// Service はTodoのCRUD操作を提供する。
// 全操作は認証済み呼び出し元のユーザーIDを必須パラメータとして受け取る。
type Service struct {
	repo      repository.TodoRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(repo repository.TodoRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create はTodoを作成する。所有者IDは認証済み呼び出し元から与える。
func (s *Service) Create(ctx context.Context, userID int64, task string, dueDate *time.Time, today bool) (*model.Todo, error) {
	todo := &model.Todo{
		UserID:  userID,
		Task:    s.sanitizer.Sanitize(task),
		DueDate: dueDate,
		Today:   today,
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// List はユーザーのTodo一覧を返す。
// todayが非nilの場合はtodayフラグで絞り込む。
func (s *Service) List(ctx context.Context, userID int64, today *bool) ([]*model.Todo, error) {
	todos, err := s.repo.ListByUser(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Get は指定ユーザーが所有するTodoを取得する。
// 見つからない（または所有外の）場合はnilを返す。
func (s *Service) Get(ctx context.Context, id, userID int64) (*model.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

// Update はTodoの内容を更新する。見つからない場合はnilを返す。
func (s *Service) Update(ctx context.Context, id, userID int64, task string, dueDate *time.Time, today bool) (*model.Todo, error) {
	todo, err := s.repo.Update(ctx, id, userID, s.sanitizer.Sanitize(task), dueDate, today)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return todo, nil
}

// UpdateDone は完了フラグを更新する。見つからない場合はnilを返す。
func (s *Service) UpdateDone(ctx context.Context, id, userID int64, isDone bool) (*model.Todo, error) {
	todo, err := s.repo.UpdateDone(ctx, id, userID, isDone)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo done state: %w", err)
	}
	return todo, nil
}

// UpdateToday はtodayフラグを更新する。見つからない場合はnilを返す。
func (s *Service) UpdateToday(ctx context.Context, id, userID int64, today bool) (*model.Todo, error) {
	todo, err := s.repo.UpdateToday(ctx, id, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo today state: %w", err)
	}
	return todo, nil
}

// Delete は指定ユーザーが所有するTodoを削除する。
// 削除された場合はtrue、見つからない場合はfalseを返す。
func (s *Service) Delete(ctx context.Context, id, userID int64) (bool, error) {
	deleted, err := s.repo.DeleteByID(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}
	return deleted > 0, nil
}

// DeleteAll はユーザーの全Todoを削除し、削除行数を返す。
func (s *Service) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	deleted, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todos: %w", err)
	}
	return deleted, nil
}
