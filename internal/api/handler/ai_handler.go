package handler

import (
	"encoding/json"
	"net/http"

	"codexa/internal/api/middleware"
	"codexa/internal/app/service"
	"codexa/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type AIHandler struct {
	aiService *service.AIService
	rdb       *redis.Client
}

func NewAIHandler(aiService *service.AIService, rdb *redis.Client) *AIHandler {
	return &AIHandler{aiService: aiService, rdb: rdb}
}

func (h *AIHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(auth chi.Router) {
		auth.Use(middleware.Authenticator(h.rdb))
		auth.Post("/chat", h.chat)
	})
}

func (h *AIHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req service.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.aiService.Chat(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
