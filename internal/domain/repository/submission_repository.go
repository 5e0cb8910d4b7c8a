package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codexa/internal/common"
	"codexa/internal/domain/model"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error

	// Update writes the terminal verdict fields of a submission. A submission
	// row is mutated exactly once after creation.
	Update(ctx context.Context, submission *model.Submission) error

	FindByID(ctx context.Context, id string) (*model.Submission, error)
	ListByUserAndProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error)
	DeleteByUser(ctx context.Context, tx *sql.Tx, userID string) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, code, language, status, test_cases_passed, test_cases_total, runtime, memory_kb, error_message)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.ProblemID, s.Code, s.Language, s.Status,
		s.TestCasesPassed, s.TestCasesTotal, s.Runtime, s.MemoryKB, s.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) Update(ctx context.Context, s *model.Submission) error {
	query := `UPDATE submissions SET
	            status = $1, test_cases_passed = $2, runtime = $3, memory_kb = $4,
	            error_message = $5, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		s.Status, s.TestCasesPassed, s.Runtime, s.MemoryKB, s.ErrorMessage, s.ID,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT id, user_id, problem_id, code, language, status, test_cases_passed, test_cases_total, runtime, memory_kb, error_message, created_at, updated_at
	          FROM submissions WHERE id = $1`
	s := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.ProblemID, &s.Code, &s.Language, &s.Status,
		&s.TestCasesPassed, &s.TestCasesTotal, &s.Runtime, &s.MemoryKB, &s.ErrorMessage,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByID: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) ListByUserAndProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error) {
	query := `SELECT id, user_id, problem_id, code, language, status, test_cases_passed, test_cases_total, runtime, memory_kb, error_message, created_at, updated_at
	          FROM submissions WHERE user_id = $1 AND problem_id = $2
	          ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndProblem query: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.ProblemID, &s.Code, &s.Language, &s.Status,
			&s.TestCasesPassed, &s.TestCasesTotal, &s.Runtime, &s.MemoryKB, &s.ErrorMessage,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndProblem scan: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndProblem rows.Err: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) DeleteByUser(ctx context.Context, tx *sql.Tx, userID string) error {
	query := `DELETE FROM submissions WHERE user_id = $1`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.DeleteByUser: %w", err)
	}
	return nil
}
