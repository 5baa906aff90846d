package service

import (
	"context"
	"fmt"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/repository"
)

// SpecService handles test spec authoring logic.
type SpecService struct {
	specRepo *repository.TestSpecRepository
	bankRepo *repository.QuestionBankRepository
}

// NewSpecService creates a new SpecService.
func NewSpecService(specRepo *repository.TestSpecRepository, bankRepo *repository.QuestionBankRepository) *SpecService {
	return &SpecService{specRepo: specRepo, bankRepo: bankRepo}
}

// Upsert creates or replaces the spec governing a (cert_id, difficulty)
// pair, after verifying every referenced bank exists.
func (s *SpecService) Upsert(ctx context.Context, req model.UpsertTestSpecRequest) (*model.TestSpec, error) {
	for _, bankID := range req.BankIDs {
		if _, err := s.bankRepo.GetByID(ctx, bankID); err != nil {
			return nil, fmt.Errorf("bank %s: %w", bankID, err)
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	spec := &model.TestSpec{
		CertID:               req.CertID,
		Difficulty:           req.Difficulty,
		BankIDs:              req.BankIDs,
		QuestionCount:        req.QuestionCount,
		DurationMinutes:      req.DurationMinutes,
		PassPercentage:       req.PassPercentage,
		Randomize:            req.Randomize,
		Restrictions:         req.Restrictions,
		PrerequisiteCourseID: req.PrerequisiteCourseID,
		Active:               active,
	}
	if err := s.specRepo.Upsert(ctx, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// GetByCert retrieves the spec for a (cert_id, difficulty) pair.
func (s *SpecService) GetByCert(ctx context.Context, certID, difficulty string) (*model.TestSpec, error) {
	return s.specRepo.GetByCert(ctx, certID, difficulty)
}

// List retrieves all specs.
func (s *SpecService) List(ctx context.Context) ([]model.TestSpec, error) {
	specs, err := s.specRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if specs == nil {
		specs = []model.TestSpec{}
	}
	return specs, nil
}
