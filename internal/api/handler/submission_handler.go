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

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	rdb               *redis.Client
}

func NewSubmissionHandler(ss *service.SubmissionService, rdb *redis.Client) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, rdb: rdb}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(auth chi.Router) {
		auth.Use(middleware.Authenticator(h.rdb))
		auth.Post("/run/{problemID}", h.runCode)
		auth.Post("/submit/{problemID}", h.submitCode)
	})
}

func (h *SubmissionHandler) runCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	problemID := chi.URLParam(r, "problemID")

	var req service.CodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.submissionService.RunCode(r.Context(), userID, problemID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *SubmissionHandler) submitCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	problemID := chi.URLParam(r, "problemID")

	var req service.CodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.submissionService.Submit(r.Context(), userID, problemID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// Rejected submissions still carry the full verdict body.
	if !resp.Accepted {
		common.RespondWithJSON(w, http.StatusBadRequest, resp)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}
