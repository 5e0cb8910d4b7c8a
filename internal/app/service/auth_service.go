package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"codexa/internal/common"
	"codexa/internal/common/security"
	"codexa/internal/domain/model"
	"codexa/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type AuthService struct {
	userRepo       repository.UserRepository
	submissionRepo repository.SubmissionRepository
	rdb            *redis.Client
	db             *sql.DB // For the delete-profile cascade
}

func NewAuthService(userRepo repository.UserRepository, subRepo repository.SubmissionRepository, rdb *redis.Client, db *sql.DB) *AuthService {
	return &AuthService{userRepo: userRepo, submissionRepo: subRepo, rdb: rdb, db: db}
}

type RegisterRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"emailid"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"emailid"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"-"` // Delivered via cookie, not the body
}

func validateRegistration(req RegisterRequest) error {
	if req.FirstName == "" || req.Email == "" || req.Password == "" {
		return common.Errorf("mandatory fields are missing: %w", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return common.Errorf("invalid email format: %w", common.ErrValidation)
	}
	if len(req.Password) < 8 {
		return common.Errorf("password must be at least 8 characters long: %w", common.ErrValidation)
	}
	return nil
}

func (s *AuthService) register(ctx context.Context, req RegisterRequest, role string) (*AuthResponse, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := security.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return s.register(ctx, req, model.RoleUser)
}

// RegisterAdmin creates an admin account. The route is itself admin-only.
func (s *AuthService) RegisterAdmin(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return s.register(ctx, req, model.RoleAdmin)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.Errorf("email and password are required: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("invalid credentials: %w", common.ErrUnauthorized)
		}
		return nil, err
	}
	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}

	token, err := security.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Logout blocklists the raw token until its own expiry, after which the key
// lapses on its own.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	exp, err := security.TokenExpiry(rawToken)
	if err != nil {
		return common.Errorf("malformed token: %w", common.ErrBadRequest)
	}
	key := "token:" + rawToken
	if err := s.rdb.Set(ctx, key, "blocked", 0).Err(); err != nil {
		return fmt.Errorf("failed to blocklist token: %w", err)
	}
	if err := s.rdb.ExpireAt(ctx, key, exp).Err(); err != nil {
		return fmt.Errorf("failed to expire blocklisted token: %w", err)
	}
	return nil
}

// DeleteProfile removes the user and their submissions in one transaction.
// The solved-problems rows go with the user via FK cascade.
func (s *AuthService) DeleteProfile(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.DeleteByUser(ctx, tx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, tx, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

// IsTokenBlocked reports whether a raw token has been blocklisted by logout.
func IsTokenBlocked(ctx context.Context, rdb *redis.Client, rawToken string) (bool, error) {
	n, err := rdb.Exists(ctx, "token:"+rawToken).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CookieMaxAge is how long the auth cookie lives; kept in lockstep with the
// token expiry so the cookie never outlives its token.
func CookieMaxAge(exp time.Duration) int {
	return int(exp / time.Second)
}
