package model

import "time"

// Todo はユーザーが所有するタスクを表す。
// 全ての読み取り・更新・削除はid AND user_idで絞り込む。
type Todo struct {
	ID      int64
	UserID  int64
	Task    string
	DueDate *time.Time
	IsDone  bool
	Today   bool
}
