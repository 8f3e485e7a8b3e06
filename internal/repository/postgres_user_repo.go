package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/nexlist/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = pq.ErrorCode("23505")

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, verified_email, name, given_name, google_sub, picture, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.VerifiedEmail, &user.Name, &user.GivenName,
		&user.GoogleSub, &user.Picture, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByGoogleSub はGoogleのsubject IDでユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByGoogleSub(ctx context.Context, sub string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, verified_email, name, given_name, google_sub, picture, created_at
		 FROM users WHERE google_sub = $1`,
		sub,
	).Scan(&user.ID, &user.Email, &user.VerifiedEmail, &user.Name, &user.GivenName,
		&user.GoogleSub, &user.Picture, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by google_sub: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成し、採番されたIDをuser.IDに書き戻す。
// google_subの一意制約違反の場合はErrDuplicateGoogleSubを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, verified_email, name, given_name, google_sub, picture, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		user.Email, user.VerifiedEmail, user.Name, user.GivenName,
		user.GoogleSub, user.Picture, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("user already exists: %w", ErrDuplicateGoogleSub)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
