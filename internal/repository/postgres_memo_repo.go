package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nexlist/internal/model"
)

// PostgresMemoRepo はPostgreSQLを使用したメモリポジトリ。
// memosテーブルはuser_idが主キーで、1ユーザー1件の制約をDBが保証する。
type PostgresMemoRepo struct {
	db *sql.DB
}

// NewPostgresMemoRepo はPostgresMemoRepoを生成する。
func NewPostgresMemoRepo(db *sql.DB) *PostgresMemoRepo {
	return &PostgresMemoRepo{db: db}
}

// Create はメモを作成する。saved_atは未設定（null）のまま。
// 既にメモが存在する場合はnilを返す（上書きしない）。
// 存在チェックと挿入はON CONFLICTで原子的に行い、同時作成でも
// 2行目が入ることはない。
func (r *PostgresMemoRepo) Create(ctx context.Context, userID int64, content string) (*model.Memo, error) {
	memo := &model.Memo{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO memos (user_id, content, saved_at)
		 VALUES ($1, $2, NULL)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING user_id, content, saved_at`,
		userID, content,
	).Scan(&memo.UserID, &memo.Content, &memo.SavedAt)

	if err == sql.ErrNoRows {
		// 既存行があり挿入されなかった
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert memo: %w", err)
	}

	return memo, nil
}

// FindByUser はユーザーのメモを取得する。見つからない場合はnilを返す。
func (r *PostgresMemoRepo) FindByUser(ctx context.Context, userID int64) (*model.Memo, error) {
	memo := &model.Memo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, content, saved_at FROM memos WHERE user_id = $1`,
		userID,
	).Scan(&memo.UserID, &memo.Content, &memo.SavedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find memo: %w", err)
	}

	return memo, nil
}

// Update はメモの内容を更新し、saved_atに現在日付を記録する。
// メモが存在しない場合はnilを返す。
func (r *PostgresMemoRepo) Update(ctx context.Context, userID int64, content string) (*model.Memo, error) {
	memo := &model.Memo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE memos SET content = $2, saved_at = CURRENT_DATE
		 WHERE user_id = $1
		 RETURNING user_id, content, saved_at`,
		userID, content,
	).Scan(&memo.UserID, &memo.Content, &memo.SavedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update memo: %w", err)
	}

	return memo, nil
}

// compile-time interface check
var _ MemoRepository = (*PostgresMemoRepo)(nil)
