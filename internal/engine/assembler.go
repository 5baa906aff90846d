package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
)

// Assembler turns a test spec plus the pooled questions of its referenced
// banks into the concrete ordered question list for one attempt.
//
// With Randomize set, assembly draws a uniform without-replacement sample,
// so repeated calls on the same spec may legitimately return different
// subsets and orderings: the randomized path is non-idempotent by design.
// With Randomize unset, assembly is fully deterministic: stored order,
// truncated to the requested count.
type Assembler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAssembler creates an Assembler with an entropy-seeded source.
func NewAssembler() *Assembler {
	return NewSeededAssembler(time.Now().UnixNano())
}

// NewSeededAssembler creates an Assembler with a fixed seed. Tests use this
// to pin the randomized path.
func NewSeededAssembler(seed int64) *Assembler {
	return &Assembler{rng: rand.New(rand.NewSource(seed))}
}

// Assemble produces exactly spec.QuestionCount questions from the pooled
// bank questions. The pool is deduplicated by question identity first.
// Returns ErrInsufficientQuestions when the deduplicated pool is smaller
// than the requested count.
func (a *Assembler) Assemble(spec *model.TestSpec, pool []model.Question) ([]model.Question, error) {
	deduped := dedupeByID(pool)

	if len(deduped) < spec.QuestionCount {
		return nil, ErrInsufficientQuestions
	}

	if !spec.Randomize {
		selected := make([]model.Question, spec.QuestionCount)
		copy(selected, deduped[:spec.QuestionCount])
		return selected, nil
	}

	// Uniform sample without replacement via a permutation prefix.
	// rand.Rand is not safe for concurrent use, so draws are serialized.
	a.mu.Lock()
	perm := a.rng.Perm(len(deduped))
	a.mu.Unlock()

	selected := make([]model.Question, spec.QuestionCount)
	for i := 0; i < spec.QuestionCount; i++ {
		selected[i] = deduped[perm[i]]
	}
	return selected, nil
}

// dedupeByID keeps the first occurrence of each question ID, preserving
// stored order.
func dedupeByID(pool []model.Question) []model.Question {
	seen := make(map[uuid.UUID]struct{}, len(pool))
	out := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}
