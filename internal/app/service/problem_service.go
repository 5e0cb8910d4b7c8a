package service

import (
	"context"
	"errors"
	"time"

	"codexa/internal/common"
	"codexa/internal/domain/model"
	"codexa/internal/domain/repository"
	"codexa/internal/judge"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
	userRepo    repository.UserRepository
	videoRepo   repository.VideoRepository
	judge       JudgeClient
	pollTimeout time.Duration
	logger      *zap.Logger
}

func NewProblemService(
	problemRepo repository.ProblemRepository,
	userRepo repository.UserRepository,
	videoRepo repository.VideoRepository,
	jc JudgeClient,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *ProblemService {
	return &ProblemService{
		problemRepo: problemRepo,
		userRepo:    userRepo,
		videoRepo:   videoRepo,
		judge:       jc,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

type ProblemRequest struct {
	Title              string                    `json:"title"`
	Description        string                    `json:"description"`
	Difficulty         model.ProblemDifficulty   `json:"difficulty"`
	Tag                model.ProblemTag          `json:"tags"`
	VisibleTestCases   []model.TestCase          `json:"visibleTestCases"`
	HiddenTestCases    []model.TestCase          `json:"hiddenTestCases"`
	StartCode          []model.CodeStub          `json:"startCode"`
	ReferenceSolutions []model.ReferenceSolution `json:"referenceSolution"`
}

// ProblemDetail is the problem plus its editorial video, when one exists.
type ProblemDetail struct {
	*model.Problem
	SecureURL    *string  `json:"secureUrl,omitempty"`
	ThumbnailURL *string  `json:"thumbnailUrl,omitempty"`
	Duration     *float64 `json:"duration,omitempty"`
}

func (s *ProblemService) validateRequest(req ProblemRequest) error {
	if req.Title == "" || req.Description == "" {
		return common.Errorf("title and description are required: %w", common.ErrValidation)
	}
	if !model.ValidDifficulty(req.Difficulty) {
		return common.Errorf("invalid difficulty %q: %w", req.Difficulty, common.ErrValidation)
	}
	if !model.ValidTag(req.Tag) {
		return common.Errorf("invalid tag %q: %w", req.Tag, common.ErrValidation)
	}
	if len(req.VisibleTestCases) == 0 || len(req.HiddenTestCases) == 0 {
		return common.Errorf("at least one visible and one hidden test case required: %w", common.ErrValidation)
	}
	if len(req.ReferenceSolutions) == 0 {
		return common.Errorf("reference solutions are required: %w", common.ErrValidation)
	}
	return nil
}

// validateReferenceSolutions runs every reference solution against the visible
// test cases and requires each case to be accepted. Any other terminal (or
// still-transient) status aborts with the status's descriptive message, so a
// problem's own solutions are never silently broken.
func (s *ProblemService) validateReferenceSolutions(ctx context.Context, visible []model.TestCase, refs []model.ReferenceSolution) error {
	for _, ref := range refs {
		language := judge.NormalizeLanguage(ref.Language)
		languageID, err := judge.LanguageID(language)
		if err != nil {
			return err
		}

		results, err := runTestCases(ctx, s.judge, ref.CompleteCode, languageID, visible, s.pollTimeout)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.StatusID != judge.StatusAccepted {
				return common.Errorf("reference solution (%s): %s: %w", language, r.StatusID.Message(), common.ErrValidation)
			}
		}
	}
	return nil
}

// Create validates the reference solutions first; nothing is persisted when
// validation fails.
func (s *ProblemService) Create(ctx context.Context, userID string, req ProblemRequest) (*model.Problem, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.validateReferenceSolutions(ctx, req.VisibleTestCases, req.ReferenceSolutions); err != nil {
		return nil, err
	}

	problem := &model.Problem{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Slug:               slug.Make(req.Title),
		Description:        req.Description,
		Difficulty:         req.Difficulty,
		Tag:                req.Tag,
		VisibleTestCases:   req.VisibleTestCases,
		HiddenTestCases:    req.HiddenTestCases,
		StartCode:          req.StartCode,
		ReferenceSolutions: req.ReferenceSolutions,
		CreatedByID:        &userID,
	}
	if err := s.problemRepo.Create(ctx, problem); err != nil {
		return nil, err
	}

	s.logger.Info("problem created", zap.String("problem_id", problem.ID), zap.String("slug", problem.Slug))
	return problem, nil
}

// Update re-validates all reference solutions before writing, same as Create.
func (s *ProblemService) Update(ctx context.Context, userID, id string, req ProblemRequest) (*model.Problem, error) {
	if id == "" {
		return nil, common.Errorf("invalid id field: %w", common.ErrValidation)
	}
	problem, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.validateReferenceSolutions(ctx, req.VisibleTestCases, req.ReferenceSolutions); err != nil {
		return nil, err
	}

	problem.Title = req.Title
	problem.Slug = slug.Make(req.Title)
	problem.Description = req.Description
	problem.Difficulty = req.Difficulty
	problem.Tag = req.Tag
	problem.VisibleTestCases = req.VisibleTestCases
	problem.HiddenTestCases = req.HiddenTestCases
	problem.StartCode = req.StartCode
	problem.ReferenceSolutions = req.ReferenceSolutions
	problem.CreatedByID = &userID

	if err := s.problemRepo.Update(ctx, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

func (s *ProblemService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return common.Errorf("id field is missing: %w", common.ErrValidation)
	}
	return s.problemRepo.Delete(ctx, id)
}

// GetByID returns the full problem with the editorial video attached when one
// exists. Missing video is not an error.
func (s *ProblemService) GetByID(ctx context.Context, id string) (*ProblemDetail, error) {
	if id == "" {
		return nil, common.Errorf("id field is missing: %w", common.ErrValidation)
	}
	problem, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProblemDetail{Problem: problem}
	video, err := s.videoRepo.FindByProblemID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("failed to fetch solution video", zap.String("problem_id", id), zap.Error(err))
		}
		return detail, nil
	}
	detail.SecureURL = &video.SecureURL
	detail.ThumbnailURL = &video.ThumbnailURL
	detail.Duration = &video.Duration
	return detail, nil
}

func (s *ProblemService) List(ctx context.Context, page, pageSize int) ([]model.ProblemSummary, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	return s.problemRepo.List(ctx, pageSize, (page-1)*pageSize)
}

func (s *ProblemService) ListSolvedByUser(ctx context.Context, userID string) ([]model.ProblemSummary, error) {
	return s.userRepo.ListSolvedProblems(ctx, userID)
}
