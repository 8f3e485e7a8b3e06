package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/nexlist/internal/middleware"
	"github.com/hitoshi/nexlist/internal/model"
)

// --- モック定義 ---

type mockMemoService struct {
	createFn func(ctx context.Context, userID int64, content string) (*model.Memo, error)
	getFn    func(ctx context.Context, userID int64) (*model.Memo, error)
	updateFn func(ctx context.Context, userID int64, content string) (*model.Memo, error)
}

func (m *mockMemoService) Create(ctx context.Context, userID int64, content string) (*model.Memo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, content)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMemoService) Get(ctx context.Context, userID int64) (*model.Memo, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMemoService) Update(ctx context.Context, userID int64, content string) (*model.Memo, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, content)
	}
	return nil, errors.New("not implemented")
}

func memoRequestWithUser(method, body string, userID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/memo", nil)
	} else {
		req = httptest.NewRequest(method, "/memo", strings.NewReader(body))
	}
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

// --- テスト ---

func TestMemoHandler_Create_Returns201WithNullSavedAt(t *testing.T) {
	svc := &mockMemoService{
		createFn: func(ctx context.Context, userID int64, content string) (*model.Memo, error) {
			// 作成直後はsaved_at未設定
			return &model.Memo{UserID: userID, Content: content, SavedAt: nil}, nil
		},
	}
	h := NewMemoHandler(svc)

	w := httptest.NewRecorder()
	h.Create(w, memoRequestWithUser(http.MethodPost, `{"content":"hello"}`, 42))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	var resp memoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if resp.Content != "hello" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.SavedAt != nil {
		t.Errorf("saved_at = %v, want null before first update", resp.SavedAt)
	}
}

func TestMemoHandler_Create_AlreadyExists_Returns409(t *testing.T) {
	svc := &mockMemoService{
		createFn: func(ctx context.Context, userID int64, content string) (*model.Memo, error) {
			return nil, nil
		},
	}
	h := NewMemoHandler(svc)

	w := httptest.NewRecorder()
	h.Create(w, memoRequestWithUser(http.MethodPost, `{"content":"second"}`, 42))

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != model.ErrCodeMemoAlreadyExists {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeMemoAlreadyExists)
	}
}

func TestMemoHandler_Create_InvalidBody_Returns400(t *testing.T) {
	h := NewMemoHandler(&mockMemoService{})

	w := httptest.NewRecorder()
	h.Create(w, memoRequestWithUser(http.MethodPost, `{not json`, 42))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestMemoHandler_Get_ReturnsMemo(t *testing.T) {
	savedAt := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	svc := &mockMemoService{
		getFn: func(ctx context.Context, userID int64) (*model.Memo, error) {
			return &model.Memo{UserID: userID, Content: "note", SavedAt: &savedAt}, nil
		},
	}
	h := NewMemoHandler(svc)

	w := httptest.NewRecorder()
	h.Get(w, memoRequestWithUser(http.MethodGet, "", 42))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp memoResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Content != "note" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.SavedAt == nil || *resp.SavedAt != "2026-08-29" {
		t.Errorf("saved_at = %v, want 2026-08-29", resp.SavedAt)
	}
}

func TestMemoHandler_Get_NotCreated_Returns404(t *testing.T) {
	svc := &mockMemoService{
		getFn: func(ctx context.Context, userID int64) (*model.Memo, error) {
			return nil, nil
		},
	}
	h := NewMemoHandler(svc)

	w := httptest.NewRecorder()
	h.Get(w, memoRequestWithUser(http.MethodGet, "", 42))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != model.ErrCodeMemoNotFound {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeMemoNotFound)
	}
}

func TestMemoHandler_Update_StampsSavedAt(t *testing.T) {
	savedAt := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	svc := &mockMemoService{
		updateFn: func(ctx context.Context, userID int64, content string) (*model.Memo, error) {
			return &model.Memo{UserID: userID, Content: content, SavedAt: &savedAt}, nil
		},
	}
	h := NewMemoHandler(svc)

	w := httptest.NewRecorder()
	h.Update(w, memoRequestWithUser(http.MethodPut, `{"content":"updated"}`, 42))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp memoResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.SavedAt == nil {
		t.Fatal("saved_at should be stamped after update")
	}
}

func TestMemoHandler_Update_NotCreated_Returns404(t *testing.T) {
	svc := &mockMemoService{
		updateFn: func(ctx context.Context, userID int64, content string) (*model.Memo, error) {
			return nil, nil
		},
	}
	h := NewMemoHandler(svc)

	w := httptest.NewRecorder()
	h.Update(w, memoRequestWithUser(http.MethodPut, `{"content":"x"}`, 42))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestMemoHandler_NoUserInContext_Returns401(t *testing.T) {
	h := NewMemoHandler(&mockMemoService{})

	req := httptest.NewRequest(http.MethodGet, "/memo", nil)
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
