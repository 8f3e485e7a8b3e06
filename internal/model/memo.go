package model

import "time"

// Memo はユーザーごとに最大1件のフリーテキストメモを表す。
// user_idが主キーかつ外部キーで、シングルトン制約をDBレベルで保証する。
// SavedAtは明示的な保存（PUT）が行われるまでnullのまま。
type Memo struct {
	UserID  int64
	Content string
	SavedAt *time.Time
}
