// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, todo, memo, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeLoginRequired     = "LOGIN_REQUIRED"
	ErrCodeInvalidToken      = "INVALID_TOKEN"
	ErrCodeTokenExchange     = "TOKEN_EXCHANGE_FAILED"
	ErrCodeUserInfoFetch     = "USERINFO_FETCH_FAILED"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeTodoNotFound      = "TODO_NOT_FOUND"
	ErrCodeMemoNotFound      = "MEMO_NOT_FOUND"
	ErrCodeMemoAlreadyExists = "MEMO_ALREADY_EXISTS"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// NewLoginRequiredError はセッションCookie未設定のエラーを生成する。
func NewLoginRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginRequired,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewInvalidTokenError はセッショントークンが無効な場合のエラーを生成する。
// 署名不正・期限切れ・クレーム欠落のいずれも同一のエラーとして扱う。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "セッショントークンが無効です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewTokenExchangeError は認可コードのトークン交換失敗エラーを生成する。
func NewTokenExchangeError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExchange,
		Message:  "Googleからのトークン取得に失敗しました。",
		Category: "auth",
		Action:   "最初からログインをやり直してください。",
	}
}

// NewUserInfoFetchError はGoogleユーザー情報取得失敗エラーを生成する。
func NewUserInfoFetchError() *APIError {
	return &APIError{
		Code:     ErrCodeUserInfoFetch,
		Message:  "Googleからのユーザー情報取得に失敗しました。",
		Category: "auth",
		Action:   "最初からログインをやり直してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
// トークンは有効だがユーザー行が消えているケースを、無効トークンと区別する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewTodoNotFoundError はTodoが見つからない場合のエラーを生成する。
// 存在しないIDと他ユーザー所有のIDは意図的に区別しない。
func NewTodoNotFoundError(todoID int64) *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  fmt.Sprintf("指定されたTodoが見つかりません: %d", todoID),
		Category: "todo",
		Action:   "TodoのIDを確認してください。",
	}
}

// NewMemoNotFoundError はメモ未作成の場合のエラーを生成する。
func NewMemoNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeMemoNotFound,
		Message:  "メモが見つかりません。",
		Category: "memo",
		Action:   "先にメモを作成してください。",
	}
}

// NewMemoAlreadyExistsError はメモの二重作成エラーを生成する。
// メモはユーザーごとに1件のみで、作成後は更新のみ可能。
func NewMemoAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeMemoAlreadyExists,
		Message:  "メモは既に作成されています。",
		Category: "memo",
		Action:   "既存のメモを更新してください。",
	}
}

// NewInvalidRequestError はリクエストボディ不正のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}
