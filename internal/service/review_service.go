package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/certilearn/assess-backend/internal/engine"
	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ReviewService handles post-attempt review business logic.
type ReviewService struct {
	reviewRepo  *repository.ReviewRepository
	attemptRepo *repository.AttemptRepository
	log         zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo *repository.ReviewRepository, attemptRepo *repository.AttemptRepository, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		attemptRepo: attemptRepo,
		log:         log.With().Str("component", "review_service").Logger(),
	}
}

// Apply records a reviewer's decision against a finalized attempt and
// re-derives the final score from the stored per-question results. Code
// questions are never re-executed during review.
func (s *ReviewService) Apply(ctx context.Context, attemptID uuid.UUID, reviewer string, req model.ReviewRequest) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	reviews, err := s.reviewRepo.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	attempt.Reviews = reviews

	rev, err := engine.ApplyReview(attempt, model.ReviewDecision(req.Decision), req.Notes, reviewer, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Insert(ctx, rev); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	if err := s.attemptRepo.ApplyReviewScores(ctx, attemptID, attempt.BehaviorScore, attempt.FinalScore, attempt.Passed); err != nil {
		return nil, fmt.Errorf("apply review scores: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Str("decision", req.Decision).
		Str("reviewer", reviewer).
		Int("final_score", attempt.FinalScore).
		Msg("review applied")

	return attempt, nil
}

// ListByAttempt returns an attempt's full review trail, oldest first.
func (s *ReviewService) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.AdminReview, error) {
	reviews, err := s.reviewRepo.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []model.AdminReview{}
	}
	return reviews, nil
}
