package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codexa/internal/common"
	"codexa/internal/domain/model"
)

type VideoRepository interface {
	Create(ctx context.Context, video *model.SolutionVideo) error
	FindByProblemID(ctx context.Context, problemID string) (*model.SolutionVideo, error)
	Exists(ctx context.Context, problemID, userID, publicID string) (bool, error)
	DeleteByProblemID(ctx context.Context, problemID string) error
}

type pgVideoRepository struct {
	db *sql.DB
}

func NewPgVideoRepository(db *sql.DB) VideoRepository {
	return &pgVideoRepository{db: db}
}

func (r *pgVideoRepository) Create(ctx context.Context, v *model.SolutionVideo) error {
	query := `INSERT INTO solution_videos (id, problem_id, user_id, public_id, secure_url, thumbnail_url, duration)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, v.ID, v.ProblemID, v.UserID, v.PublicID, v.SecureURL, v.ThumbnailURL, v.Duration)
	if err != nil {
		return fmt.Errorf("pgVideoRepository.Create: %w", err)
	}
	return nil
}

func (r *pgVideoRepository) FindByProblemID(ctx context.Context, problemID string) (*model.SolutionVideo, error) {
	query := `SELECT id, problem_id, user_id, public_id, secure_url, thumbnail_url, duration, created_at
	          FROM solution_videos WHERE problem_id = $1`
	v := &model.SolutionVideo{}
	err := r.db.QueryRowContext(ctx, query, problemID).Scan(
		&v.ID, &v.ProblemID, &v.UserID, &v.PublicID, &v.SecureURL, &v.ThumbnailURL, &v.Duration, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgVideoRepository.FindByProblemID: %w", err)
	}
	return v, nil
}

func (r *pgVideoRepository) Exists(ctx context.Context, problemID, userID, publicID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM solution_videos WHERE problem_id = $1 AND user_id = $2 AND public_id = $3)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, problemID, userID, publicID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgVideoRepository.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgVideoRepository) DeleteByProblemID(ctx context.Context, problemID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM solution_videos WHERE problem_id = $1`, problemID)
	if err != nil {
		return fmt.Errorf("pgVideoRepository.DeleteByProblemID: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}
