// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/nexlist/internal/model"
)

// ErrDuplicateGoogleSub は同一google_subのユーザーが既に存在することを示す。
// 初回ログインの同時実行で負けた側がこのエラーを受け取り、再検索に
// フォールバックする。
var ErrDuplicateGoogleSub = errors.New("duplicate google_sub")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByGoogleSub はGoogleのsubject IDでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByGoogleSub(ctx context.Context, sub string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDをuser.IDに書き戻す。
	// google_subの一意制約違反の場合はErrDuplicateGoogleSubを返す。
	Create(ctx context.Context, user *model.User) error
}

// TodoRepository はTodoデータの永続化インターフェース。
// 全ての読み取り・更新・削除はid AND user_idで絞り込み、
// 他ユーザーの行にはIDを知っていても到達できない。
type TodoRepository interface {
	// Create はTodoを作成し、採番されたIDをtodo.IDに書き戻す。
	// 所有者IDは認証済み呼び出し元から与えられ、クライアント入力からは取らない。
	Create(ctx context.Context, todo *model.Todo) error

	// FindByID は指定ユーザーが所有するTodoを取得する。
	// 存在しない場合と他ユーザー所有の場合はどちらもnilを返す。
	FindByID(ctx context.Context, id, userID int64) (*model.Todo, error)

	// ListByUser はユーザーのTodo一覧を返す。
	// todayが非nilの場合はtodayフラグの一致条件をANDで追加する。
	ListByUser(ctx context.Context, userID int64, today *bool) ([]*model.Todo, error)

	// Update はTodoの内容（task, due_date, today）を更新する。
	// 見つからない（または所有外の）場合はnilを返す。
	Update(ctx context.Context, id, userID int64, task string, dueDate *time.Time, today bool) (*model.Todo, error)

	// UpdateDone は完了フラグを更新する。見つからない場合はnilを返す。
	UpdateDone(ctx context.Context, id, userID int64, isDone bool) (*model.Todo, error)

	// UpdateToday はtodayフラグを更新する。見つからない場合はnilを返す。
	UpdateToday(ctx context.Context, id, userID int64, today bool) (*model.Todo, error)

	// DeleteByID は指定ユーザーが所有するTodoを削除し、削除行数を返す。
	DeleteByID(ctx context.Context, id, userID int64) (int64, error)

	// DeleteByUser はユーザーの全Todoを削除し、削除行数を返す。
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

// MemoRepository はメモデータの永続化インターフェース。
// メモはユーザーごとに最大1件（user_idが主キー）。
type MemoRepository interface {
	// Create はメモを作成する。saved_atは未設定（null）のまま。
	// 既にメモが存在する場合はnilを返す（上書きしない）。
	Create(ctx context.Context, userID int64, content string) (*model.Memo, error)

	// FindByUser はユーザーのメモを取得する。見つからない場合はnilを返す。
	FindByUser(ctx context.Context, userID int64) (*model.Memo, error)

	// Update はメモの内容を更新し、saved_atに現在日付を記録する。
	// メモが存在しない場合はnilを返す。
	Update(ctx context.Context, userID int64, content string) (*model.Memo, error)
}
