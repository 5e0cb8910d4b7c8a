package api

import (
	"net/http"
	"time"

	"codexa/internal/api/handler"
	"codexa/internal/api/middleware"
	"codexa/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func NewRouter(
	authService *service.AuthService,
	problemService *service.ProblemService,
	submissionService *service.SubmissionService,
	aiService *service.AIService,
	videoService *service.VideoService,
	rdb *redis.Client,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	// Generous enough for synchronous judge polling on submit.
	r.Use(chiMiddleware.Timeout(3 * time.Minute))

	// Verifies the JWT from the token cookie (or Authorization header) and
	// puts its claims in context. Authenticator enforces it per route group.
	r.Use(middleware.Verifier)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService, rdb)
	r.Route("/user", authHandler.RegisterRoutes)

	problemHandler := handler.NewProblemHandler(problemService, submissionService, rdb)
	r.Route("/problem", problemHandler.RegisterRoutes)

	submissionHandler := handler.NewSubmissionHandler(submissionService, rdb)
	r.Route("/submission", submissionHandler.RegisterRoutes)

	aiHandler := handler.NewAIHandler(aiService, rdb)
	r.Route("/ai", aiHandler.RegisterRoutes)

	videoHandler := handler.NewVideoHandler(videoService, rdb)
	r.Route("/video", videoHandler.RegisterRoutes)

	return r
}
