package engine

import (
	"context"
	"errors"
	"math"

	"github.com/certilearn/assess-backend/internal/model"
)

// Canonical scoring weights. The legacy platform mixed 0.6/0.4 and 0.7/0.3
// across call sites; 0.7/0.3 is the single documented constant here and the
// pass threshold always comes from the governing spec's pass_percentage.
const (
	WeightTest     = 0.7
	WeightBehavior = 0.3
)

// CodeExecutor runs a code answer against a question's test cases and
// returns per-case pass/fail in case order. Implemented by the external
// execution service client; the engine only consumes its output.
type CodeExecutor interface {
	Execute(ctx context.Context, q model.Question, source string, cases []model.TestCase) ([]bool, error)
}

// ScoreResult is the outcome of grading one attempt.
type ScoreResult struct {
	Correct         int
	Total           int
	QuestionResults []bool
	TestScore       float64
	BehaviorScore   int
	FinalScore      int
	Passed          bool
}

// Scorer grades an attempt's question snapshot against its answers. Given
// identical inputs it always produces identical output, which keeps review
// re-scoring deterministic and auditable: code execution results are
// captured in QuestionResults at grading time and never re-run.
type Scorer struct {
	exec CodeExecutor
}

// NewScorer creates a Scorer backed by the given code executor.
func NewScorer(exec CodeExecutor) *Scorer {
	return &Scorer{exec: exec}
}

// Score grades every question in the snapshot. MCQ correctness is exact
// equality of the submitted option index; unanswered questions count as
// incorrect, never as an error. A code question passes only if every test
// case (hidden ones included) passes.
//
// If the execution service is unreachable after its bounded retries, the
// affected code question is scored as failed and grading continues, so an
// attempt can never be left stuck in grading. The execution error is
// reported alongside the result for logging.
func (s *Scorer) Score(ctx context.Context, questions []model.Question, answers map[int]model.Answer, behaviorScore, passPercentage int) (ScoreResult, error) {
	total := len(questions)
	results := make([]bool, total)
	var execErr error

	for i, q := range questions {
		ans, answered := answers[i]
		if !answered {
			continue
		}

		switch q.Type {
		case model.QuestionTypeMCQ:
			results[i] = ans.SelectedOption != nil && *ans.SelectedOption == q.CorrectIndex

		case model.QuestionTypeCode:
			if ans.CodeSource == "" {
				continue
			}
			caseResults, err := s.exec.Execute(ctx, q, ans.CodeSource, q.TestCases)
			if err != nil {
				// Deterministic failure policy: the question scores as
				// failed rather than blocking finalization.
				if errors.Is(err, ErrExecutionUnavailable) {
					execErr = err
					continue
				}
				return ScoreResult{}, err
			}
			results[i] = allPassed(caseResults, len(q.TestCases))
		}
	}

	correct := 0
	for _, ok := range results {
		if ok {
			correct++
		}
	}

	testScore := 0.0
	if total > 0 {
		testScore = 100 * float64(correct) / float64(total)
	}

	finalScore, passed := Combine(testScore, behaviorScore, passPercentage)

	return ScoreResult{
		Correct:         correct,
		Total:           total,
		QuestionResults: results,
		TestScore:       testScore,
		BehaviorScore:   behaviorScore,
		FinalScore:      finalScore,
		Passed:          passed,
	}, execErr
}

// Combine folds a test score and behavior score into the final score and
// pass verdict. Shared by first-pass grading and review re-scoring.
func Combine(testScore float64, behaviorScore, passPercentage int) (finalScore int, passed bool) {
	finalScore = int(math.Round(testScore*WeightTest + float64(behaviorScore)*WeightBehavior))
	passed = finalScore >= passPercentage
	return finalScore, passed
}

// allPassed requires a verdict for every case and all of them true.
func allPassed(results []bool, want int) bool {
	if len(results) != want {
		return false
	}
	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}
