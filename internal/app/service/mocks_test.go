package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"codexa/internal/common"
	"codexa/internal/domain/model"
	"codexa/internal/judge"
)

// fakeJudge returns scripted results without talking to any server. Each
// SubmitBatch call consumes the next script entry.
type fakeJudge struct {
	mu      sync.Mutex
	batches [][]judge.BatchCase
	script  []fakeJudgeRun
}

type fakeJudgeRun struct {
	results []judge.TestResult
	err     error
}

func (f *fakeJudge) enqueue(results []judge.TestResult, err error) {
	f.script = append(f.script, fakeJudgeRun{results: results, err: err})
}

func (f *fakeJudge) SubmitBatch(ctx context.Context, cases []judge.BatchCase) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, cases)
	if len(f.script) == 0 {
		return nil, fmt.Errorf("fakeJudge: no scripted run")
	}
	if f.script[0].err != nil {
		run := f.script[0]
		f.script = f.script[1:]
		return nil, run.err
	}
	tokens := make([]string, len(cases))
	for i := range cases {
		tokens[i] = fmt.Sprintf("tok-%d", i)
	}
	return tokens, nil
}

func (f *fakeJudge) FetchResults(ctx context.Context, tokens []string) ([]judge.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run := f.script[0]
	f.script = f.script[1:]
	return run.results, run.err
}

func (f *fakeJudge) lastBatch() []judge.BatchCase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil
	}
	return f.batches[len(f.batches)-1]
}

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.User
	solved map[string]map[string]bool
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}, solved: map[string]map[string]bool{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	delete(r.solved, id)
	return nil
}

func (r *memUserRepo) AddSolvedProblem(ctx context.Context, userID, problemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.solved[userID] == nil {
		r.solved[userID] = map[string]bool{}
	}
	r.solved[userID][problemID] = true
	return nil
}

func (r *memUserRepo) ListSolvedProblems(ctx context.Context, userID string) ([]model.ProblemSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.ProblemSummary{}
	for pid := range r.solved[userID] {
		out = append(out, model.ProblemSummary{ID: pid})
	}
	return out, nil
}

type memProblemRepo struct {
	mu       sync.Mutex
	problems map[string]*model.Problem
}

func newMemProblemRepo() *memProblemRepo {
	return &memProblemRepo{problems: map[string]*model.Problem{}}
}

func (r *memProblemRepo) Create(ctx context.Context, p *model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.problems {
		if existing.Slug == p.Slug {
			return common.ErrConflict
		}
	}
	cp := *p
	r.problems[p.ID] = &cp
	return nil
}

func (r *memProblemRepo) Update(ctx context.Context, p *model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.problems[p.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *p
	r.problems[p.ID] = &cp
	return nil
}

func (r *memProblemRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.problems[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.problems, id)
	return nil
}

func (r *memProblemRepo) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.problems[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProblemRepo) List(ctx context.Context, limit, offset int) ([]model.ProblemSummary, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.ProblemSummary{}
	for _, p := range r.problems {
		out = append(out, model.ProblemSummary{ID: p.ID, Title: p.Title, Difficulty: p.Difficulty, Tag: p.Tag})
	}
	return out, len(r.problems), nil
}

type memSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[string]*model.Submission
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{submissions: map[string]*model.Submission{}}
}

func (r *memSubmissionRepo) Create(ctx context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.submissions[s.ID] = &cp
	return nil
}

func (r *memSubmissionRepo) Update(ctx context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.submissions[s.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *s
	r.submissions[s.ID] = &cp
	return nil
}

func (r *memSubmissionRepo) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSubmissionRepo) ListByUserAndProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Submission{}
	for _, s := range r.submissions {
		if s.UserID == userID && s.ProblemID == problemID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSubmissionRepo) DeleteByUser(ctx context.Context, tx *sql.Tx, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.submissions {
		if s.UserID == userID {
			delete(r.submissions, id)
		}
	}
	return nil
}

// only returns the single submission stored, for tests that create exactly one
func (r *memSubmissionRepo) single() *model.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.submissions {
		cp := *s
		return &cp
	}
	return nil
}

type memVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*model.SolutionVideo // keyed by problem id
}

func newMemVideoRepo() *memVideoRepo {
	return &memVideoRepo{videos: map[string]*model.SolutionVideo{}}
}

func (r *memVideoRepo) Create(ctx context.Context, v *model.SolutionVideo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.videos[v.ProblemID] = &cp
	return nil
}

func (r *memVideoRepo) FindByProblemID(ctx context.Context, problemID string) (*model.SolutionVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[problemID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memVideoRepo) Exists(ctx context.Context, problemID, userID, publicID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[problemID]
	return ok && v.UserID == userID && v.PublicID == publicID, nil
}

func (r *memVideoRepo) DeleteByProblemID(ctx context.Context, problemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[problemID]; !ok {
		return common.ErrNotFound
	}
	delete(r.videos, problemID)
	return nil
}
