package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/nexlist/internal/middleware"
	"github.com/hitoshi/nexlist/internal/model"
)

// MemoServiceInterface はメモハンドラーが必要とするサービスインターフェース。
type MemoServiceInterface interface {
	Create(ctx context.Context, userID int64, content string) (*model.Memo, error)
	Get(ctx context.Context, userID int64) (*model.Memo, error)
	Update(ctx context.Context, userID int64, content string) (*model.Memo, error)
}

// MemoHandler はユーザーごとのシングルトンメモを扱うHTTPハンドラー。
type MemoHandler struct {
	service MemoServiceInterface
}

// NewMemoHandler はMemoHandlerを生成する。
func NewMemoHandler(service MemoServiceInterface) *MemoHandler {
	return &MemoHandler{service: service}
}

type memoRequest struct {
	Content string `json:"content"`
}

type memoResponse struct {
	UserID  int64   `json:"user_id"`
	Content string  `json:"content"`
	SavedAt *string `json:"saved_at"`
}

func newMemoResponse(m *model.Memo) memoResponse {
	resp := memoResponse{UserID: m.UserID, Content: m.Content}
	if m.SavedAt != nil {
		s := m.SavedAt.Format(dateLayout)
		resp.SavedAt = &s
	}
	return resp
}

// Create はメモを作成する。既にメモが存在する場合は409を返す。
// POST /memo
func (h *MemoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	var req memoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("invalid request body"))
		return
	}

	memo, err := h.service.Create(r.Context(), userID, req.Content)
	if err != nil {
		slog.Error("failed to create memo", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if memo == nil {
		middleware.WriteErrorResponse(w, http.StatusConflict, model.NewMemoAlreadyExistsError())
		return
	}

	writeJSON(w, http.StatusCreated, newMemoResponse(memo))
}

// Get はユーザーのメモを取得する。
// GET /memo
func (h *MemoHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	memo, err := h.service.Get(r.Context(), userID)
	if err != nil {
		slog.Error("failed to get memo", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if memo == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewMemoNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, newMemoResponse(memo))
}

// Update はメモの内容を更新し、saved_atに保存日を記録する。
// PUT /memo
func (h *MemoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	var req memoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("invalid request body"))
		return
	}

	memo, err := h.service.Update(r.Context(), userID, req.Content)
	if err != nil {
		slog.Error("failed to update memo", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if memo == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewMemoNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, newMemoResponse(memo))
}
