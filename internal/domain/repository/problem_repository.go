package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"codexa/internal/common"
	"codexa/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	Update(ctx context.Context, problem *model.Problem) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	List(ctx context.Context, limit, offset int) ([]model.ProblemSummary, int, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

// The embedded test-case and code lists are stored as JSONB documents; each
// problem is one row, read and written whole.
func (r *pgProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	visible, hidden, start, refs, err := marshalProblemDocs(p)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create marshal: %w", err)
	}

	query := `INSERT INTO problems (id, title, slug, description, difficulty, tag, visible_cases, hidden_cases, start_code, reference_solutions, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty, p.Tag, visible, hidden, start, refs, p.CreatedByID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) Update(ctx context.Context, p *model.Problem) error {
	visible, hidden, start, refs, err := marshalProblemDocs(p)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Update marshal: %w", err)
	}

	query := `UPDATE problems SET
	            title = $1, slug = $2, description = $3, difficulty = $4, tag = $5,
	            visible_cases = $6, hidden_cases = $7, start_code = $8, reference_solutions = $9,
	            created_by = $10, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $11`
	res, err := r.db.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.Difficulty, p.Tag, visible, hidden, start, refs, p.CreatedByID, p.ID)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT id, title, slug, description, difficulty, tag,
	                 visible_cases, hidden_cases, start_code, reference_solutions,
	                 created_by, created_at, updated_at
	          FROM problems WHERE id = $1`

	p := &model.Problem{}
	var visible, hidden, start, refs []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Difficulty, &p.Tag,
		&visible, &hidden, &start, &refs,
		&p.CreatedByID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	if err := unmarshalProblemDocs(p, visible, hidden, start, refs); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.FindByID unmarshal: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) List(ctx context.Context, limit, offset int) ([]model.ProblemSummary, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.List count: %w", err)
	}

	query := `SELECT id, title, difficulty, tag FROM problems
	          ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.List query: %w", err)
	}
	defer rows.Close()

	problems := []model.ProblemSummary{}
	for rows.Next() {
		var p model.ProblemSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Difficulty, &p.Tag); err != nil {
			return nil, 0, fmt.Errorf("pgProblemRepository.List scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.List rows.Err: %w", err)
	}
	return problems, total, nil
}

func marshalProblemDocs(p *model.Problem) (visible, hidden, start, refs []byte, err error) {
	if visible, err = json.Marshal(p.VisibleTestCases); err != nil {
		return
	}
	if hidden, err = json.Marshal(p.HiddenTestCases); err != nil {
		return
	}
	if start, err = json.Marshal(p.StartCode); err != nil {
		return
	}
	refs, err = json.Marshal(p.ReferenceSolutions)
	return
}

func unmarshalProblemDocs(p *model.Problem, visible, hidden, start, refs []byte) error {
	if err := json.Unmarshal(visible, &p.VisibleTestCases); err != nil {
		return err
	}
	if err := json.Unmarshal(hidden, &p.HiddenTestCases); err != nil {
		return err
	}
	if err := json.Unmarshal(start, &p.StartCode); err != nil {
		return err
	}
	return json.Unmarshal(refs, &p.ReferenceSolutions)
}
