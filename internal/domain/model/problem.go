package model

import "time"

type ProblemDifficulty string
type ProblemTag string

const (
	DifficultyEasy   ProblemDifficulty = "easy"
	DifficultyMedium ProblemDifficulty = "medium"
	DifficultyHard   ProblemDifficulty = "hard"

	TagArray      ProblemTag = "array"
	TagLinkedList ProblemTag = "linkedList"
	TagGraph      ProblemTag = "graph"
	TagDP         ProblemTag = "dp"
)

func ValidDifficulty(d ProblemDifficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

func ValidTag(t ProblemTag) bool {
	switch t {
	case TagArray, TagLinkedList, TagGraph, TagDP:
		return true
	}
	return false
}

// TestCase is one input/output pair of a problem. Explanation is only set on
// visible cases; hidden cases carry input and output alone.
type TestCase struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// CodeStub is the per-language starter template shown in the editor.
type CodeStub struct {
	Language    string `json:"language"`
	InitialCode string `json:"initialCode"`
}

// ReferenceSolution is a known-good solution used to validate a problem's
// visible test cases at create/update time.
type ReferenceSolution struct {
	Language     string `json:"language"`
	CompleteCode string `json:"completeCode"`
}

type Problem struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Slug               string              `json:"slug"`
	Description        string              `json:"description"`
	Difficulty         ProblemDifficulty   `json:"difficulty"`
	Tag                ProblemTag          `json:"tags"`
	VisibleTestCases   []TestCase          `json:"visibleTestCases,omitempty"`
	HiddenTestCases    []TestCase          `json:"hiddenTestCases,omitempty"`
	StartCode          []CodeStub          `json:"startCode,omitempty"`
	ReferenceSolutions []ReferenceSolution `json:"referenceSolution,omitempty"`
	CreatedByID        *string             `json:"problemCreator,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// ProblemSummary is the pared-down shape used by list views and the
// solved-problems listing.
type ProblemSummary struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Difficulty ProblemDifficulty `json:"difficulty"`
	Tag        ProblemTag        `json:"tags"`
}
