package service

import (
	"context"
	"time"

	"codexa/internal/domain/model"
	"codexa/internal/judge"
)

// JudgeClient is the slice of the judging client the services need. Satisfied
// by *judge.Client; tests substitute a fake or an httptest-backed instance.
type JudgeClient interface {
	SubmitBatch(ctx context.Context, cases []judge.BatchCase) ([]string, error)
	FetchResults(ctx context.Context, tokens []string) ([]judge.TestResult, error)
}

// runTestCases is the single batch-build-and-judge sequence shared by run,
// submit, and reference-solution validation. It builds one batch case per test
// case, submits it, and polls to completion under the given deadline. Results
// come back in test-case order.
func runTestCases(ctx context.Context, jc JudgeClient, code string, languageID int, cases []model.TestCase, timeout time.Duration) ([]judge.TestResult, error) {
	batch := make([]judge.BatchCase, 0, len(cases))
	for _, tc := range cases {
		batch = append(batch, judge.BatchCase{
			SourceCode:     code,
			LanguageID:     languageID,
			Stdin:          tc.Input,
			ExpectedOutput: tc.Output,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tokens, err := jc.SubmitBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	return jc.FetchResults(ctx, tokens)
}
