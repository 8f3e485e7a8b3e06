package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/nexlist/internal/model"
	"github.com/hitoshi/nexlist/internal/repository"
)

// --- モック定義 ---

type mockOAuthProvider struct {
	getLoginURLFn   func(state string) string
	exchangeTokenFn func(ctx context.Context, code string) (string, error)
	fetchProfileFn  func(ctx context.Context, accessToken string) (*GoogleProfile, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeToken(ctx context.Context, code string) (string, error) {
	if m.exchangeTokenFn != nil {
		return m.exchangeTokenFn(ctx, code)
	}
	return "access-token", nil
}

func (m *mockOAuthProvider) FetchProfile(ctx context.Context, accessToken string) (*GoogleProfile, error) {
	if m.fetchProfileFn != nil {
		return m.fetchProfileFn(ctx, accessToken)
	}
	return &GoogleProfile{Sub: "sub-1", Email: "user@example.com"}, nil
}

type mockUserRepo struct {
	findByIDFn        func(ctx context.Context, id int64) (*model.User, error)
	findByGoogleSubFn func(ctx context.Context, sub string) (*model.User, error)
	createFn          func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByGoogleSub(ctx context.Context, sub string) (*model.User, error) {
	if m.findByGoogleSubFn != nil {
		return m.findByGoogleSubFn(ctx, sub)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

type mockTokenIssuer struct {
	issueFn func(userID int64, ttl time.Duration) (string, error)
}

func (m *mockTokenIssuer) Issue(userID int64, ttl time.Duration) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID, ttl)
	}
	return "session-token", nil
}

func newTestService(oauth *mockOAuthProvider, repo *mockUserRepo, issuer *mockTokenIssuer) *Service {
	return NewService(oauth, repo, issuer, ServiceConfig{TokenTTL: 30 * time.Minute})
}

// --- テスト ---

func TestService_HandleCallback_CreatesNewUser(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		findByGoogleSubFn: func(ctx context.Context, sub string) (*model.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 7
			created = user
			return nil
		},
	}
	oauth := &mockOAuthProvider{
		fetchProfileFn: func(ctx context.Context, accessToken string) (*GoogleProfile, error) {
			return &GoogleProfile{
				Sub:           "sub-new",
				Email:         "new@example.com",
				VerifiedEmail: true,
				Name:          "New User",
				GivenName:     "New",
				Picture:       "https://example.com/p.png",
			}, nil
		},
	}

	svc := newTestService(oauth, repo, &mockTokenIssuer{})

	sessionToken, user, err := svc.HandleCallback(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if sessionToken != "session-token" {
		t.Errorf("sessionToken = %q", sessionToken)
	}
	if user.ID != 7 {
		t.Errorf("user.ID = %d, want 7", user.ID)
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if created.GoogleSub != "sub-new" || created.Email != "new@example.com" {
		t.Errorf("created user = %+v", created)
	}
	if !created.VerifiedEmail {
		t.Error("expected verified_email to be carried over")
	}
}

func TestService_HandleCallback_ReturnsExistingUserUnchanged(t *testing.T) {
	existing := &model.User{
		ID:        3,
		Email:     "old@example.com",
		Name:      "Old Name",
		GoogleSub: "sub-existing",
	}
	createCalled := false
	repo := &mockUserRepo{
		findByGoogleSubFn: func(ctx context.Context, sub string) (*model.User, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			createCalled = true
			return nil
		},
	}
	oauth := &mockOAuthProvider{
		fetchProfileFn: func(ctx context.Context, accessToken string) (*GoogleProfile, error) {
			// 名前が変わっていてもローカルの行は上書きしない
			return &GoogleProfile{Sub: "sub-existing", Email: "old@example.com", Name: "Renamed"}, nil
		},
	}

	svc := newTestService(oauth, repo, &mockTokenIssuer{})

	_, user, err := svc.HandleCallback(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if createCalled {
		t.Error("Create should not be called for existing user")
	}
	if user.Name != "Old Name" {
		t.Errorf("user.Name = %q, profile must not overwrite stored row", user.Name)
	}
}

func TestService_HandleCallback_ExchangeFailure_StopsBeforeProfileFetch(t *testing.T) {
	profileCalled := false
	oauth := &mockOAuthProvider{
		exchangeTokenFn: func(ctx context.Context, code string) (string, error) {
			return "", ErrTokenExchange
		},
		fetchProfileFn: func(ctx context.Context, accessToken string) (*GoogleProfile, error) {
			profileCalled = true
			return nil, nil
		},
	}

	svc := newTestService(oauth, &mockUserRepo{}, &mockTokenIssuer{})

	_, _, err := svc.HandleCallback(context.Background(), "bad-code")
	if !errors.Is(err, ErrTokenExchange) {
		t.Errorf("err = %v, want ErrTokenExchange", err)
	}
	if profileCalled {
		t.Error("FetchProfile should not be called after exchange failure")
	}
}

func TestService_HandleCallback_ProfileFailure_NoUserCreated(t *testing.T) {
	createCalled := false
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			createCalled = true
			return nil
		},
	}
	oauth := &mockOAuthProvider{
		fetchProfileFn: func(ctx context.Context, accessToken string) (*GoogleProfile, error) {
			return nil, ErrUserInfoFetch
		},
	}

	svc := newTestService(oauth, repo, &mockTokenIssuer{})

	_, _, err := svc.HandleCallback(context.Background(), "code")
	if !errors.Is(err, ErrUserInfoFetch) {
		t.Errorf("err = %v, want ErrUserInfoFetch", err)
	}
	if createCalled {
		t.Error("user must not be created when profile fetch fails")
	}
}

func TestService_HandleCallback_DuplicateSub_FallsBackToLookup(t *testing.T) {
	winner := &model.User{ID: 9, GoogleSub: "sub-race"}
	lookups := 0
	repo := &mockUserRepo{
		findByGoogleSubFn: func(ctx context.Context, sub string) (*model.User, error) {
			lookups++
			if lookups == 1 {
				// 1回目は未作成、挿入競合後の再検索で勝者の行が見える
				return nil, nil
			}
			return winner, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateGoogleSub
		},
	}
	oauth := &mockOAuthProvider{
		fetchProfileFn: func(ctx context.Context, accessToken string) (*GoogleProfile, error) {
			return &GoogleProfile{Sub: "sub-race", Email: "race@example.com"}, nil
		},
	}

	svc := newTestService(oauth, repo, &mockTokenIssuer{})

	_, user, err := svc.HandleCallback(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if user.ID != 9 {
		t.Errorf("user.ID = %d, want winner row 9", user.ID)
	}
}

func TestService_HandleCallback_TokenIssueFailure(t *testing.T) {
	issuer := &mockTokenIssuer{
		issueFn: func(userID int64, ttl time.Duration) (string, error) {
			return "", errors.New("signing failed")
		},
	}
	repo := &mockUserRepo{
		findByGoogleSubFn: func(ctx context.Context, sub string) (*model.User, error) {
			return &model.User{ID: 1, GoogleSub: sub}, nil
		},
	}

	svc := newTestService(&mockOAuthProvider{}, repo, issuer)

	_, _, err := svc.HandleCallback(context.Background(), "code")
	if err == nil {
		t.Fatal("expected error when token issue fails")
	}
}

func TestService_GetCurrentUser_NilForVanishedUser(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, nil
		},
	}

	svc := newTestService(&mockOAuthProvider{}, repo, &mockTokenIssuer{})

	user, err := svc.GetCurrentUser(context.Background(), 123)
	if err != nil {
		t.Fatalf("GetCurrentUser: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}
}
