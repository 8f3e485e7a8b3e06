// Package auth はGoogle OAuth認証フローとセッショントークンの発行を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/nexlist/internal/model"
	"github.com/hitoshi/nexlist/internal/repository"
)

// ErrTokenExchange は認可コードのトークン交換をGoogleが拒否したことを示す。
// HTTP境界では400として扱う。
var ErrTokenExchange = errors.New("oauth token exchange rejected")

// ErrUserInfoFetch はユーザー情報取得をGoogleが拒否したことを示す。
// HTTP境界では401として扱い、古いセッションCookieを破棄させる。
var ErrUserInfoFetch = errors.New("oauth user info fetch rejected")

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeToken は認可コードをアクセストークンに交換する。
	ExchangeToken(ctx context.Context, code string) (string, error)
	// FetchProfile はアクセストークンでユーザープロフィールを取得する。
	FetchProfile(ctx context.Context, accessToken string) (*GoogleProfile, error)
}

// TokenIssuer はセッショントークンの発行インターフェース。
// token.Codecの部分集合として定義する。
type TokenIssuer interface {
	Issue(userID int64, ttl time.Duration) (string, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	TokenTTL time.Duration // セッショントークンの有効期間
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	userRepo repository.UserRepository
	tokens   TokenIssuer
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:    oauth,
		userRepo: userRepo,
		tokens:   tokens,
		config:   config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッショントークンを発行する。
//
// 状態遷移は以下の順で厳密に進み、途中で失敗した場合そこで終了する:
//
//	コード受領 → トークン交換 → プロフィール取得 → ユーザー解決 → トークン発行
//
// プロフィール取得が成功するまでユーザー行は一切作成しないため、
// 失敗パスで部分的な永続化が残ることはない。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, *model.User, error) {
	// 1. 認可コードをアクセストークンに交換
	accessToken, err := s.oauth.ExchangeToken(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. アクセストークンでプロフィールを取得
	profile, err := s.oauth.FetchProfile(ctx, accessToken)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}

	// 3. google_subでユーザーを解決（初回ログインなら作成）
	user, err := s.resolveUser(ctx, profile)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	// 4. セッショントークンを発行
	sessionToken, err := s.tokens.Issue(user.ID, s.config.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return sessionToken, user, nil
}

// resolveUser はGoogleプロフィールをローカルユーザーに解決する。
// 既存ユーザーは保存済みの行をそのまま返す。以降のログインで
// 名前やアイコンを上書きしないのは意図した設計（プロフィール更新は対象外）。
//
// 初回ログインの同時実行はgoogle_subの一意制約が唯一のガード。
// 一意制約違反を受けた側は再検索にフォールバックし、リクエストを失敗させない。
func (s *Service) resolveUser(ctx context.Context, profile *GoogleProfile) (*model.User, error) {
	existing, err := s.userRepo.FindByGoogleSub(ctx, profile.Sub)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by sub: %w", err)
	}
	if existing != nil {
		slog.Info("existing user logged in",
			slog.Int64("user_id", existing.ID),
			slog.String("google_sub", profile.Sub),
		)
		return existing, nil
	}

	newUser := &model.User{
		Email:         profile.Email,
		VerifiedEmail: profile.VerifiedEmail,
		Name:          profile.Name,
		GivenName:     profile.GivenName,
		GoogleSub:     profile.Sub,
		Picture:       profile.Picture,
		CreatedAt:     time.Now(),
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateGoogleSub) {
			// 同一subの別コードによるコールバックと競合した。
			// 勝った側が作成した行を返す。
			created, findErr := s.userRepo.FindByGoogleSub(ctx, profile.Sub)
			if findErr != nil {
				return nil, fmt.Errorf("failed to find user after duplicate insert: %w", findErr)
			}
			if created == nil {
				return nil, fmt.Errorf("user vanished after duplicate insert: sub=%s", profile.Sub)
			}
			return created, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.Int64("user_id", newUser.ID),
		slog.String("email", profile.Email),
		slog.String("google_sub", profile.Sub),
	)

	return newUser, nil
}

// GetCurrentUser はユーザーIDから現在のユーザーを取得する。
// ユーザー行が存在しない場合はnilを返す（エラーではない）。
func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
