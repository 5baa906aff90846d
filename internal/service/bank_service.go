package service

import (
	"context"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/repository"
	"github.com/google/uuid"
)

// BankService handles question bank business logic.
type BankService struct {
	bankRepo *repository.QuestionBankRepository
}

// NewBankService creates a new BankService.
func NewBankService(bankRepo *repository.QuestionBankRepository) *BankService {
	return &BankService{bankRepo: bankRepo}
}

// Create stores a new empty bank.
func (s *BankService) Create(ctx context.Context, req model.CreateQuestionBankRequest) (*model.QuestionBank, error) {
	bank := &model.QuestionBank{
		Name:       req.Name,
		Difficulty: req.Difficulty,
		Topic:      req.Topic,
	}
	if err := s.bankRepo.Create(ctx, bank); err != nil {
		return nil, err
	}
	return bank, nil
}

// Get retrieves one bank with its question count.
func (s *BankService) Get(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	return s.bankRepo.GetByID(ctx, id)
}

// List retrieves all banks.
func (s *BankService) List(ctx context.Context) ([]model.QuestionBank, error) {
	banks, err := s.bankRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if banks == nil {
		banks = []model.QuestionBank{}
	}
	return banks, nil
}

// Delete removes a bank and its questions. Running attempts keep their
// snapshots; only future assemblies are affected.
func (s *BankService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.bankRepo.Delete(ctx, id)
}

// ReplaceQuestions swaps out a bank's entire question list. Partial edits
// are not supported; the bank's author tooling always sends the full set.
func (s *BankService) ReplaceQuestions(ctx context.Context, bankID uuid.UUID, req model.ReplaceQuestionsRequest) ([]model.Question, error) {
	if _, err := s.bankRepo.GetByID(ctx, bankID); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		questions = append(questions, model.Question{
			ID:           uuid.New(),
			BankID:       bankID,
			Title:        q.Title,
			Type:         model.QuestionType(q.Type),
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Statement:    q.Statement,
			TestCases:    q.TestCases,
			Difficulty:   q.Difficulty,
			Tags:         q.Tags,
			OrderNum:     i,
		})
	}

	if err := s.bankRepo.ReplaceQuestions(ctx, bankID, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ListQuestions retrieves a bank's questions in stored order.
func (s *BankService) ListQuestions(ctx context.Context, bankID uuid.UUID) ([]model.Question, error) {
	questions, err := s.bankRepo.ListQuestions(ctx, bankID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}
