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

type VideoHandler struct {
	videoService *service.VideoService
	rdb          *redis.Client
}

func NewVideoHandler(vs *service.VideoService, rdb *redis.Client) *VideoHandler {
	return &VideoHandler{videoService: vs, rdb: rdb}
}

func (h *VideoHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator(h.rdb))
		admin.Use(middleware.AdminOnly)
		admin.Get("/create/{problemID}", h.createUploadSignature)
		admin.Post("/save", h.saveMetadata)
		admin.Delete("/delete/{problemID}", h.deleteVideo)
	})
}

func (h *VideoHandler) createUploadSignature(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	problemID := chi.URLParam(r, "problemID")

	creds, err := h.videoService.CreateUploadSignature(r.Context(), userID, problemID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, creds)
}

func (h *VideoHandler) saveMetadata(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SaveVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	video, err := h.videoService.SaveMetadata(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, video)
}

func (h *VideoHandler) deleteVideo(w http.ResponseWriter, r *http.Request) {
	problemID := chi.URLParam(r, "problemID")

	if err := h.videoService.Delete(r.Context(), problemID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Video deleted successfully"})
}
