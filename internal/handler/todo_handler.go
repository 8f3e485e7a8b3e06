package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nexlist/internal/middleware"
	"github.com/hitoshi/nexlist/internal/model"
)

// dateLayout はリクエスト・レスポンスで日付を表すフォーマット。
const dateLayout = "2006-01-02"

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	Create(ctx context.Context, userID int64, task string, dueDate *time.Time, today bool) (*model.Todo, error)
	List(ctx context.Context, userID int64, today *bool) ([]*model.Todo, error)
	Get(ctx context.Context, id, userID int64) (*model.Todo, error)
	Update(ctx context.Context, id, userID int64, task string, dueDate *time.Time, today bool) (*model.Todo, error)
	UpdateDone(ctx context.Context, id, userID int64, isDone bool) (*model.Todo, error)
	UpdateToday(ctx context.Context, id, userID int64, today bool) (*model.Todo, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}

// TodoHandler はTodoのCRUDを提供するHTTPハンドラー。
// 全エンドポイントはセッションミドルウェアの内側で動く前提。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{service: service}
}

type todoRequest struct {
	Task    string  `json:"task"`
	DueDate *string `json:"due_date"`
	Today   bool    `json:"today"`
}

type todoDoneRequest struct {
	IsDone *bool `json:"is_done"`
}

type todoTodayRequest struct {
	Today *bool `json:"today"`
}

type todoResponse struct {
	ID      int64   `json:"id"`
	Task    string  `json:"task"`
	DueDate *string `json:"due_date"`
	IsDone  bool    `json:"is_done"`
	Today   bool    `json:"today"`
}

func newTodoResponse(t *model.Todo) todoResponse {
	resp := todoResponse{
		ID:     t.ID,
		Task:   t.Task,
		IsDone: t.IsDone,
		Today:  t.Today,
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(dateLayout)
		resp.DueDate = &s
	}
	return resp
}

// Create はTodoを作成する。
// POST /todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Task == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("task is required"))
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("due_date must be in YYYY-MM-DD format"))
		return
	}

	todo, err := h.service.Create(r.Context(), userID, req.Task, dueDate, req.Today)
	if err != nil {
		slog.Error("failed to create todo", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusCreated, newTodoResponse(todo))
}

// List はTodo一覧を返す。?today=true で今日のタスクのみに絞り込める。
// GET /todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	var today *bool
	if v := r.URL.Query().Get("today"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidRequestError("today must be a boolean"))
			return
		}
		today = &b
	}

	todos, err := h.service.List(r.Context(), userID, today)
	if err != nil {
		slog.Error("failed to list todos", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	resp := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		resp = append(resp, newTodoResponse(t))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get は単一のTodoを返す。所有外のIDは存在しないものとして404を返す。
// GET /todos/{id}
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	id, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	todo, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		slog.Error("failed to get todo", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if todo == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewTodoNotFoundError(id))
		return
	}

	writeJSON(w, http.StatusOK, newTodoResponse(todo))
}

// Update はTodoの内容を更新する。
// PUT /todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	id, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Task == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("task is required"))
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("due_date must be in YYYY-MM-DD format"))
		return
	}

	todo, err := h.service.Update(r.Context(), id, userID, req.Task, dueDate, req.Today)
	if err != nil {
		slog.Error("failed to update todo", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if todo == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewTodoNotFoundError(id))
		return
	}

	writeJSON(w, http.StatusOK, newTodoResponse(todo))
}

// Toggle は完了フラグを更新する。
// PUT /todos/{id}/toggle
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	id, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	var req todoDoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsDone == nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("is_done is required"))
		return
	}

	todo, err := h.service.UpdateDone(r.Context(), id, userID, *req.IsDone)
	if err != nil {
		slog.Error("failed to toggle todo", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if todo == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewTodoNotFoundError(id))
		return
	}

	writeJSON(w, http.StatusOK, newTodoResponse(todo))
}

// Today はtodayフラグを更新する。
// PUT /todos/{id}/today
func (h *TodoHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	id, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	var req todoTodayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Today == nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("today is required"))
		return
	}

	todo, err := h.service.UpdateToday(r.Context(), id, userID, *req.Today)
	if err != nil {
		slog.Error("failed to update todo today flag", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if todo == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewTodoNotFoundError(id))
		return
	}

	writeJSON(w, http.StatusOK, newTodoResponse(todo))
}

// Delete は単一のTodoを削除する。
// DELETE /todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	id, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id, userID)
	if err != nil {
		slog.Error("failed to delete todo", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if !deleted {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewTodoNotFoundError(id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll はユーザーの全Todoを削除する。
// DELETE /todos
func (h *TodoHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	deleted, err := h.service.DeleteAll(r.Context(), userID)
	if err != nil {
		slog.Error("failed to delete all todos", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	slog.Info("deleted all todos",
		slog.Int64("user_id", userID),
		slog.Int64("count", deleted),
	)

	w.WriteHeader(http.StatusNoContent)
}

// parseTodoID はURLパスからTodo IDを取り出す。
// 不正な値の場合はエラーレスポンスを書き込んでfalseを返す。
func parseTodoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("invalid todo id"))
		return 0, false
	}
	return id, true
}

// parseDueDate はYYYY-MM-DD形式の日付文字列を解析する。nilはnilのまま返す。
func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// writeJSON はJSONレスポンスを書き込む共通ヘルパー。
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
