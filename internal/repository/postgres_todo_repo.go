package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/nexlist/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したTodoリポジトリ。
// 全クエリの述語にuser_idを含め、所有者スコープをSQLレベルで保証する。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// Create はTodoを作成し、採番されたIDをtodo.IDに書き戻す。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO todos (user_id, task, due_date, is_done, today)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		todo.UserID, todo.Task, todo.DueDate, todo.IsDone, todo.Today,
	).Scan(&todo.ID)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}

	return nil
}

// FindByID は指定ユーザーが所有するTodoを取得する。
// 存在しない場合と他ユーザー所有の場合はどちらもnilを返す。
func (r *PostgresTodoRepo) FindByID(ctx context.Context, id, userID int64) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, task, due_date, is_done, today
		 FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&todo.ID, &todo.UserID, &todo.Task, &todo.DueDate, &todo.IsDone, &todo.Today)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	return todo, nil
}

// ListByUser はユーザーのTodo一覧をID昇順で返す。
// todayが非nilの場合はtodayフラグの一致条件をANDで追加する。
func (r *PostgresTodoRepo) ListByUser(ctx context.Context, userID int64, today *bool) ([]*model.Todo, error) {
	query := `SELECT id, user_id, task, due_date, is_done, today
	          FROM todos WHERE user_id = $1`
	args := []interface{}{userID}

	if today != nil {
		query += ` AND today = $2`
		args = append(args, *today)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Task, &todo.DueDate, &todo.IsDone, &todo.Today); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// Update はTodoの内容（task, due_date, today）を更新する。
// 見つからない（または所有外の）場合はnilを返す。
func (r *PostgresTodoRepo) Update(ctx context.Context, id, userID int64, task string, dueDate *time.Time, today bool) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos SET task = $3, due_date = $4, today = $5
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, task, due_date, is_done, today`,
		id, userID, task, dueDate, today,
	).Scan(&todo.ID, &todo.UserID, &todo.Task, &todo.DueDate, &todo.IsDone, &todo.Today)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return todo, nil
}

// UpdateDone は完了フラグを更新する。見つからない場合はnilを返す。
func (r *PostgresTodoRepo) UpdateDone(ctx context.Context, id, userID int64, isDone bool) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos SET is_done = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, task, due_date, is_done, today`,
		id, userID, isDone,
	).Scan(&todo.ID, &todo.UserID, &todo.Task, &todo.DueDate, &todo.IsDone, &todo.Today)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo done state: %w", err)
	}

	return todo, nil
}

// UpdateToday はtodayフラグを更新する。見つからない場合はnilを返す。
func (r *PostgresTodoRepo) UpdateToday(ctx context.Context, id, userID int64, today bool) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos SET today = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, task, due_date, is_done, today`,
		id, userID, today,
	).Scan(&todo.ID, &todo.UserID, &todo.Task, &todo.DueDate, &todo.IsDone, &todo.Today)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo today state: %w", err)
	}

	return todo, nil
}

// DeleteByID は指定ユーザーが所有するTodoを削除し、削除行数を返す。
func (r *PostgresTodoRepo) DeleteByID(ctx context.Context, id, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// DeleteByUser はユーザーの全Todoを削除し、削除行数を返す。
func (r *PostgresTodoRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todos: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
