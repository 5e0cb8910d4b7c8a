package service

import (
	"context"
	"time"

	"codexa/internal/common"
	"codexa/internal/domain/model"
	"codexa/internal/domain/repository"
	"codexa/internal/judge"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	userRepo       repository.UserRepository
	judge          JudgeClient
	pollTimeout    time.Duration
	logger         *zap.Logger
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	userRepo repository.UserRepository,
	jc JudgeClient,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		userRepo:       userRepo,
		judge:          jc,
		pollTimeout:    pollTimeout,
		logger:         logger,
	}
}

type CodeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// CaseReport is the per-case detail returned by run mode for user-facing
// debugging. Field names follow the judging service's wire format.
type CaseReport struct {
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
	Stdout         string `json:"stdout"`
	StatusID       int    `json:"status_id"`
	Time           string `json:"time"`
	MemoryKB       int    `json:"memory"`
	Stderr         string `json:"stderr"`
	CompileOutput  string `json:"compile_output"`
	Message        string `json:"message"`
}

type RunCodeResponse struct {
	Success   bool         `json:"success"`
	TestCases []CaseReport `json:"testCases"`
	Runtime   float64      `json:"runtime"`
	MemoryKB  int          `json:"memory"`
}

type SubmitResponse struct {
	Accepted        bool    `json:"accepted"`
	TotalTestCases  int     `json:"totalTestCases"`
	PassedTestCases int     `json:"passedTestCases"`
	Runtime         float64 `json:"runtime"`
	MemoryKB        int     `json:"memory"`
	Message         string  `json:"message,omitempty"`
}

func (s *SubmissionService) validate(userID, problemID string, req CodeRequest) (language string, languageID int, err error) {
	if userID == "" || problemID == "" || req.Code == "" || req.Language == "" {
		return "", 0, common.Errorf("some field missing: %w", common.ErrValidation)
	}
	language = judge.NormalizeLanguage(req.Language)
	languageID, err = judge.LanguageID(language)
	if err != nil {
		return "", 0, err
	}
	return language, languageID, nil
}

// RunCode judges the user's code against the problem's visible test cases and
// returns per-case detail. Nothing is persisted; apart from the external
// judging call the operation has no side effects.
func (s *SubmissionService) RunCode(ctx context.Context, userID, problemID string, req CodeRequest) (*RunCodeResponse, error) {
	_, languageID, err := s.validate(userID, problemID, req)
	if err != nil {
		return nil, err
	}

	problem, err := s.problemRepo.FindByID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	results, err := runTestCases(ctx, s.judge, req.Code, languageID, problem.VisibleTestCases, s.pollTimeout)
	if err != nil {
		return nil, err
	}

	out := judge.Aggregate(results)
	resp := &RunCodeResponse{
		Success:   out.Passed == len(results),
		TestCases: make([]CaseReport, 0, len(results)),
		Runtime:   out.Runtime,
		MemoryKB:  out.MemoryKB,
	}
	for i, r := range results {
		resp.TestCases = append(resp.TestCases, CaseReport{
			Stdin:          problem.VisibleTestCases[i].Input,
			ExpectedOutput: problem.VisibleTestCases[i].Output,
			Stdout:         r.Stdout,
			StatusID:       int(r.StatusID),
			Time:           r.Time,
			MemoryKB:       r.MemoryKB,
			Stderr:         r.Stderr,
			CompileOutput:  r.CompileOutput,
			Message:        r.Message,
		})
	}
	return resp, nil
}

// Submit judges the user's code against the problem's hidden test cases and
// records the graded attempt. A pending submission row is created before the
// judging call so the attempt exists even if judging fails outright; in that
// case the row is marked failed rather than left pending forever.
func (s *SubmissionService) Submit(ctx context.Context, userID, problemID string, req CodeRequest) (*SubmitResponse, error) {
	language, languageID, err := s.validate(userID, problemID, req)
	if err != nil {
		return nil, err
	}

	problem, err := s.problemRepo.FindByID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	submission := &model.Submission{
		ID:             uuid.NewString(),
		UserID:         userID,
		ProblemID:      problemID,
		Code:           req.Code,
		Language:       language,
		Status:         model.StatusPending,
		TestCasesTotal: len(problem.HiddenTestCases),
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	results, err := runTestCases(ctx, s.judge, req.Code, languageID, problem.HiddenTestCases, s.pollTimeout)
	if err != nil {
		s.markFailed(submission, err)
		return nil, err
	}

	out := judge.Aggregate(results)
	submission.Status = model.SubmissionStatus(out.Verdict)
	submission.TestCasesPassed = out.Passed
	submission.Runtime = out.Runtime
	submission.MemoryKB = out.MemoryKB
	if out.ErrorMessage != "" {
		msg := out.ErrorMessage
		submission.ErrorMessage = &msg
	}
	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, err
	}

	if out.Accepted() {
		if err := s.userRepo.AddSolvedProblem(ctx, userID, problemID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("submission judged",
		zap.String("submission_id", submission.ID),
		zap.String("problem_id", problemID),
		zap.String("verdict", string(out.Verdict)),
		zap.Int("passed", out.Passed),
		zap.Int("total", submission.TestCasesTotal),
	)

	return &SubmitResponse{
		Accepted:        out.Accepted(),
		TotalTestCases:  submission.TestCasesTotal,
		PassedTestCases: out.Passed,
		Runtime:         out.Runtime,
		MemoryKB:        out.MemoryKB,
		Message:         out.Verdict.Title(),
	}, nil
}

// markFailed moves a pending submission to the failed terminal state after an
// orchestration error. Best effort: the original error is what the caller
// surfaces, so a secondary update failure is only logged.
func (s *SubmissionService) markFailed(submission *model.Submission, cause error) {
	msg := cause.Error()
	submission.Status = model.StatusFailed
	submission.ErrorMessage = &msg
	// Fresh context: the request context may already be cancelled or expired.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		s.logger.Error("failed to mark submission as failed",
			zap.String("submission_id", submission.ID), zap.Error(err))
	}
}

// ListForProblem returns the user's submission history for one problem.
func (s *SubmissionService) ListForProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error) {
	return s.submissionRepo.ListByUserAndProblem(ctx, userID, problemID)
}
