// Package token はセッショントークン（JWT）の発行と検証を提供する。
// トークンはuser_idとexpのみを持つベアラークレデンシャルで、
// サーバー側には一切永続化しない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid はトークンが無効であることを示す。
// 形式不正・署名不一致・期限切れ・user_idクレーム欠落のいずれも
// 通常の認証失敗として同一のエラーに集約する。
var ErrInvalid = errors.New("invalid token")

// Codec はセッショントークンのエンコード・デコードを行う。
// サーバーシークレットと署名アルゴリズムのみに依存する純粋な変換器。
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewCodec はCodecを生成する。
// シークレットが空、またはアルゴリズムがHMAC系（HS256/HS384/HS512）
// 以外の場合はエラーを返す。起動時に1度だけ呼び、失敗したら起動を中断する。
func NewCodec(secret, algorithm string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}

	return &Codec{
		secret: []byte(secret),
		method: method,
	}, nil
}

// Issue はuser_idと絶対期限（now + ttl）を埋め込んだ署名付きトークンを発行する。
func (c *Codec) Issue(userID int64, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     jwt.NewNumericDate(time.Now().Add(ttl)),
	}

	t := jwt.NewWithClaims(c.method, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンの署名と期限を検証し、埋め込まれたuser_idを返す。
// 無効な場合は全てErrInvalidを返す。期限切れも例外ではなく
// 通常の認証失敗として扱う。
func (c *Codec) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		// アルゴリズム混同攻撃対策: 発行時と同一のメソッドのみ受け付ける
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}))
	if err != nil || !parsed.Valid {
		return 0, ErrInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalid
	}

	// JSON経由の数値はfloat64でデコードされる
	raw, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalid
	}

	return int64(raw), nil
}
