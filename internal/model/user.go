// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Googleアカウントと1対1で紐付き、GoogleSubが外部IDとの結合キーになる。
// 初回ログイン時に1度だけ作成され、以降のログインでプロフィールは上書きしない。
type User struct {
	ID            int64
	Email         string
	VerifiedEmail bool
	Name          string
	GivenName     string
	GoogleSub     string
	Picture       string
	CreatedAt     time.Time
}
