package repository

import (
	"testing"

	"github.com/lib/pq"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresTodoRepoはTodoRepositoryインターフェースを満たすことを検証
func TestPostgresTodoRepo_ImplementsInterface(t *testing.T) {
	var _ TodoRepository = (*PostgresTodoRepo)(nil)
}

// PostgresMemoRepoはMemoRepositoryインターフェースを満たすことを検証
func TestPostgresMemoRepo_ImplementsInterface(t *testing.T) {
	var _ MemoRepository = (*PostgresMemoRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresTodoRepoが正しく初期化されることを検証
func TestNewPostgresTodoRepo_Initializes(t *testing.T) {
	repo := NewPostgresTodoRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresMemoRepoが正しく初期化されることを検証
func TestNewPostgresMemoRepo_Initializes(t *testing.T) {
	repo := NewPostgresMemoRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// 一意制約違反コードがpqの23505と一致することを検証
func TestUniqueViolationCode(t *testing.T) {
	if uniqueViolation != pq.ErrorCode("23505") {
		t.Errorf("uniqueViolation = %q, want 23505", uniqueViolation)
	}
}
