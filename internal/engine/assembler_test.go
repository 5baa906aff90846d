package engine

import (
	"fmt"
	"testing"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
)

func mcqPool(n int) []model.Question {
	pool := make([]model.Question, n)
	for i := range pool {
		pool[i] = model.Question{
			ID:           uuid.New(),
			Title:        fmt.Sprintf("question %d", i),
			Type:         model.QuestionTypeMCQ,
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
			OrderNum:     i,
		}
	}
	return pool
}

func TestAssembleOrderedIsDeterministic(t *testing.T) {
	pool := mcqPool(10)
	spec := &model.TestSpec{QuestionCount: 6, Randomize: false}
	a := NewAssembler()

	first, err := a.Assemble(spec, pool)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := a.Assemble(spec, pool)
		if err != nil {
			t.Fatalf("assemble run %d: %v", i, err)
		}
		if len(again) != 6 {
			t.Fatalf("got %d questions, want 6", len(again))
		}
		for j := range again {
			if again[j].ID != first[j].ID {
				t.Fatalf("run %d differs at position %d: deterministic path must return identical lists", i, j)
			}
		}
	}

	// Stored order is preserved.
	for j, q := range first {
		if q.ID != pool[j].ID {
			t.Fatalf("position %d not in stored order", j)
		}
	}
}

func TestAssembleExactPoolSizeReturnsAllInOrder(t *testing.T) {
	pool := mcqPool(5)
	spec := &model.TestSpec{QuestionCount: 5, Randomize: false}

	got, err := NewAssembler().Assemble(spec, pool)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d questions, want all 5", len(got))
	}
	for i := range got {
		if got[i].ID != pool[i].ID {
			t.Fatalf("position %d out of stored order", i)
		}
	}
}

func TestAssembleInsufficientQuestions(t *testing.T) {
	tests := []struct {
		name      string
		poolSize  int
		count     int
		randomize bool
	}{
		{"randomized small pool", 3, 5, true},
		{"ordered small pool", 3, 5, false},
		{"empty pool", 0, 1, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := &model.TestSpec{QuestionCount: tc.count, Randomize: tc.randomize}
			_, err := NewAssembler().Assemble(spec, mcqPool(tc.poolSize))
			if err != ErrInsufficientQuestions {
				t.Fatalf("got %v, want ErrInsufficientQuestions", err)
			}
		})
	}
}

func TestAssembleDeduplicatesBeforeCounting(t *testing.T) {
	pool := mcqPool(4)
	// Same 4 questions pooled from two overlapping banks.
	doubled := append(append([]model.Question{}, pool...), pool...)

	spec := &model.TestSpec{QuestionCount: 5, Randomize: true}
	if _, err := NewAssembler().Assemble(spec, doubled); err != ErrInsufficientQuestions {
		t.Fatalf("duplicates must not satisfy the requested count, got %v", err)
	}

	spec.QuestionCount = 4
	got, err := NewAssembler().Assemble(spec, doubled)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	seen := make(map[uuid.UUID]bool)
	for _, q := range got {
		if seen[q.ID] {
			t.Fatalf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true
	}
}

// The randomized path is non-idempotent by design: re-invoking the
// assembler on the same spec may produce a different subset or ordering.
func TestAssembleRandomizedIsNonIdempotent(t *testing.T) {
	pool := mcqPool(30)
	spec := &model.TestSpec{QuestionCount: 10, Randomize: true}
	a := NewSeededAssembler(42)

	first, err := a.Assemble(spec, pool)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	differed := false
	for i := 0; i < 10 && !differed; i++ {
		next, err := a.Assemble(spec, pool)
		if err != nil {
			t.Fatalf("assemble run %d: %v", i, err)
		}
		for j := range next {
			if next[j].ID != first[j].ID {
				differed = true
				break
			}
		}
	}
	if !differed {
		t.Fatal("randomized assembly never produced a different ordering across 10 draws")
	}
}

func TestAssembleRandomizedSeededIsReproducible(t *testing.T) {
	pool := mcqPool(20)
	spec := &model.TestSpec{QuestionCount: 7, Randomize: true}

	first, err := NewSeededAssembler(7).Assemble(spec, pool)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	second, err := NewSeededAssembler(7).Assemble(spec, pool)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same seed produced different draws at position %d", i)
		}
	}
}

func TestAssembleReturnsCopy(t *testing.T) {
	pool := mcqPool(5)
	spec := &model.TestSpec{QuestionCount: 3, Randomize: false}

	got, err := NewAssembler().Assemble(spec, pool)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	got[0].Title = "mutated"
	if pool[0].Title == "mutated" {
		t.Fatal("assembled list aliases the source pool")
	}
}
