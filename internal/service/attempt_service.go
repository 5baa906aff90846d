package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/certilearn/assess-backend/internal/config"
	"github.com/certilearn/assess-backend/internal/engine"
	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/repository"
	ws "github.com/certilearn/assess-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	// ErrSpecNotAvailable is returned when no active spec governs the
	// requested (cert_id, difficulty) pair.
	ErrSpecNotAvailable = errors.New("no active test spec for this certification and difficulty")
	// ErrAttemptNotFound is returned when the attempt id resolves nowhere.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrNotOwner is returned when a learner touches someone else's attempt.
	ErrNotOwner = errors.New("attempt does not belong to this user")
)

// AttemptService orchestrates the attempt lifecycle around the in-memory
// session engine: assembly, the live session operations, grading, and
// persistence. The engine owns correctness of state transitions; this
// service owns durability and the async side channels (persist queue,
// monitor feed, expiry index).
type AttemptService struct {
	attemptRepo   *repository.AttemptRepository
	specRepo      *repository.TestSpecRepository
	bankRepo      *repository.QuestionBankRepository
	violationRepo *repository.ViolationRepository
	assembler     *engine.Assembler
	scorer        *engine.Scorer
	registry      *engine.Registry
	rdb           *redis.Client
	log           zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	specRepo *repository.TestSpecRepository,
	bankRepo *repository.QuestionBankRepository,
	violationRepo *repository.ViolationRepository,
	assembler *engine.Assembler,
	scorer *engine.Scorer,
	registry *engine.Registry,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attemptRepo:   attemptRepo,
		specRepo:      specRepo,
		bankRepo:      bankRepo,
		violationRepo: violationRepo,
		assembler:     assembler,
		scorer:        scorer,
		registry:      registry,
		rdb:           rdb,
		log:           log.With().Str("component", "attempt_service").Logger(),
	}
}

// Start assembles a test from the governing spec and activates a session.
// The question snapshot is persisted before the session is exposed, so a
// crash between the two never leaks an unstartable attempt into memory.
func (s *AttemptService) Start(ctx context.Context, userID int, req model.StartAttemptRequest) (*model.AttemptForLearner, error) {
	spec, err := s.specRepo.GetByCert(ctx, req.CertID, req.Difficulty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSpecNotAvailable
		}
		return nil, fmt.Errorf("get spec: %w", err)
	}
	if !spec.Active {
		return nil, ErrSpecNotAvailable
	}

	pool, err := s.bankRepo.ListQuestionsByBanks(ctx, spec.BankIDs)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}

	questions, err := s.assembler.Assemble(spec, pool)
	if err != nil {
		return nil, err
	}

	attempt := &model.Attempt{
		ID:              uuid.New(),
		UserID:          userID,
		CertID:          spec.CertID,
		Difficulty:      spec.Difficulty,
		Questions:       questions,
		PassPercentage:  spec.PassPercentage,
		DurationMinutes: spec.DurationMinutes,
		Status:          model.AttemptStatusAssembling,
	}

	sess := engine.NewSession(attempt, time.Now())

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	sess = s.registry.GetOrPut(attempt.ID, sess)

	// Index the deadline so the sweeper finds stale sessions without
	// scanning. Best-effort: the DB backstop catches misses.
	if err := s.rdb.ZAdd(ctx, config.CacheKey.AttemptExpiryIndexKey(), redis.Z{
		Score:  float64(sess.Deadline().Unix()),
		Member: attempt.ID.String(),
	}).Err(); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("failed to index deadline")
	}

	snap := sess.Snapshot()
	view := snap.ForLearner(sess.Remaining(time.Now()))
	return &view, nil
}

// RecordViolation appends one proctoring event to the session, queues it
// for durable persistence, and fans it out to the live monitor feed. The
// hot path is the in-memory append; everything after is asynchronous or
// best-effort so signal producers are never blocked.
func (s *AttemptService) RecordViolation(ctx context.Context, attemptID uuid.UUID, userID int, req model.RecordViolationRequest) (*engine.RecordOutcome, error) {
	sess, _, err := s.loadSession(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, engine.ErrSessionNotActive
	}
	if err := s.checkOwner(sess, userID); err != nil {
		return nil, err
	}

	ev := model.ViolationEvent{
		Type:       model.ViolationType(req.Type),
		OccurredAt: time.Unix(req.Timestamp, 0),
		Confidence: req.Confidence,
	}

	outcome, recErr := sess.RecordViolation(ev, time.Now())
	if recErr != nil {
		// The record may still have flipped a stale session into grading.
		s.maybeGrade(ctx, sess)
		return nil, recErr
	}

	s.enqueueViolation(ctx, attemptID, ev)
	s.publishViolation(ctx, attemptID, ev, outcome)

	if outcome.AutoFailTripped {
		s.log.Info().Str("attempt_id", attemptID.String()).Msg("auto-fail threshold reached")
	}
	s.maybeGrade(ctx, sess)

	return &outcome, nil
}

// Answer upserts one answer and mirrors it into the Redis autosave hash so
// a reconnecting client can recover unsubmitted work.
func (s *AttemptService) Answer(ctx context.Context, attemptID uuid.UUID, userID, index int, req model.AnswerRequest) error {
	sess, _, err := s.loadSession(ctx, attemptID)
	if err != nil {
		return err
	}
	if sess == nil {
		return engine.ErrSessionNotActive
	}
	if err := s.checkOwner(sess, userID); err != nil {
		return err
	}

	ans := model.Answer{
		SelectedOption: req.SelectedOption,
		CodeSource:     req.CodeSource,
	}
	if err := sess.Answer(index, ans, time.Now()); err != nil {
		s.maybeGrade(ctx, sess)
		return err
	}

	// Best-effort autosave mirror; the session map is authoritative.
	if payload, merr := json.Marshal(ans); merr == nil {
		key := config.CacheKey.AttemptAnswersKey(attemptID.String())
		if err := s.rdb.HSet(ctx, key, strconv.Itoa(index), payload).Err(); err != nil {
			s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("autosave mirror failed")
		}
	}
	return nil
}

// Submit finishes the attempt and grades it. Duplicate submits are
// tolerated: once finalized, the stored result is returned unchanged and
// no re-grading happens.
func (s *AttemptService) Submit(ctx context.Context, attemptID uuid.UUID, userID int) (*model.AttemptForLearner, error) {
	sess, attempt, err := s.loadSession(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		// Terminal attempt: idempotent replay of the stored result.
		if attempt.UserID != userID {
			return nil, ErrNotOwner
		}
		view := attempt.ForLearner(0)
		return &view, nil
	}
	if err := s.checkOwner(sess, userID); err != nil {
		return nil, err
	}

	// Whether this call wins the transition or the deadline beat it to
	// grading, someone has to finish the job; grade() is a no-op on a
	// session already finalized by a concurrent winner.
	sess.Submit(time.Now())
	s.maybeGrade(ctx, sess)

	snap := sess.Snapshot()
	view := snap.ForLearner(0)
	return &view, nil
}

// Get returns the learner view of an attempt, applying lazy expiry first
// so a stale session is graded before it is read.
func (s *AttemptService) Get(ctx context.Context, attemptID uuid.UUID, userID int) (*model.AttemptForLearner, error) {
	sess, attempt, err := s.loadSession(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if sess != nil {
		if err := s.checkOwner(sess, userID); err != nil {
			return nil, err
		}
		now := time.Now()
		sess.ExpireIfDue(now)
		s.maybeGrade(ctx, sess)
		snap := sess.Snapshot()
		view := snap.ForLearner(sess.Remaining(now))
		return &view, nil
	}

	if attempt.UserID != userID {
		return nil, ErrNotOwner
	}
	view := attempt.ForLearner(0)
	return &view, nil
}

// GetFull returns the unredacted attempt for reviewer tooling, including
// correct answers and per-question results.
func (s *AttemptService) GetFull(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error) {
	sess, attempt, err := s.loadSession(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		snap := sess.Snapshot()
		return &snap, nil
	}
	return attempt, nil
}

// ListByUser returns a learner's attempt history without snapshots.
func (s *AttemptService) ListByUser(ctx context.Context, userID int) ([]model.Attempt, error) {
	return s.attemptRepo.ListByUser(ctx, userID)
}

// SweepExpired grades every attempt whose deadline passed. The Redis
// deadline index drives the common case; a DB pass backstops entries the
// index lost.
func (s *AttemptService) SweepExpired(ctx context.Context) int {
	now := time.Now()
	swept := 0

	ids, err := s.rdb.ZRangeByScore(ctx, config.CacheKey.AttemptExpiryIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("expiry index read failed, falling back to db scan")
	}

	dbIDs, err := s.attemptRepo.ListActiveStartedBefore(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("db expiry scan failed")
	}
	for _, id := range dbIDs {
		ids = append(ids, id.String())
	}

	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}

		id, err := uuid.Parse(raw)
		if err != nil {
			s.rdb.ZRem(ctx, config.CacheKey.AttemptExpiryIndexKey(), raw)
			continue
		}

		sess, _, err := s.loadSession(ctx, id)
		if err != nil || sess == nil {
			// Already terminal or gone; drop the index entry.
			s.rdb.ZRem(ctx, config.CacheKey.AttemptExpiryIndexKey(), raw)
			continue
		}
		if sess.ExpireIfDue(now) {
			s.log.Info().Str("attempt_id", raw).Msg("session timed out")
		}
		s.maybeGrade(ctx, sess)
		if sess.Snapshot().Status != model.AttemptStatusActive {
			swept++
		}
	}
	return swept
}

// loadSession resolves an attempt id to its live session, rehydrating from
// the database after a restart. A nil session with a non-nil attempt means
// the attempt is terminal and read-only.
func (s *AttemptService) loadSession(ctx context.Context, attemptID uuid.UUID) (*engine.Session, *model.Attempt, error) {
	if sess, ok := s.registry.Get(attemptID); ok {
		return sess, nil, nil
	}

	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("get attempt: %w", err)
	}

	if attempt.Status != model.AttemptStatusActive {
		return nil, attempt, nil
	}

	events, err := s.violationRepo.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, nil, fmt.Errorf("load violations: %w", err)
	}

	sess := engine.Rehydrate(attempt, events)
	// GetOrPut keeps the single-session-per-attempt invariant when two
	// requests rehydrate concurrently.
	sess = s.registry.GetOrPut(attemptID, sess)
	return sess, nil, nil
}

// maybeGrade finishes any session that has entered grading: scores it,
// finalizes, persists, and tears down live state. Safe to call from every
// path; a session that is still active or already finalized is untouched.
func (s *AttemptService) maybeGrade(ctx context.Context, sess *engine.Session) {
	snap := sess.Snapshot()
	if snap.Status != model.AttemptStatusGrading {
		return
	}

	result, execErr := s.scorer.Score(ctx, snap.Questions, snap.Answers, snap.BehaviorScore, snap.PassPercentage)
	if execErr != nil {
		// Affected code questions are already scored as failed; grading
		// must still complete.
		s.log.Warn().Err(execErr).Str("attempt_id", snap.ID.String()).Msg("execution service degraded during grading")
	}

	// An auto-failed attempt never passes, whatever the arithmetic says.
	if snap.EndReason == model.EndReasonAutoFail {
		result.Passed = false
	}

	now := time.Now()
	if !sess.Finalize(result, now) {
		// A concurrent grader won; nothing left to do.
		return
	}

	final := sess.Snapshot()
	if err := s.attemptRepo.Finalize(ctx, &final); err != nil {
		s.log.Error().Err(err).Str("attempt_id", final.ID.String()).Msg("failed to persist finalized attempt")
		return
	}

	s.registry.Remove(final.ID)
	s.rdb.ZRem(ctx, config.CacheKey.AttemptExpiryIndexKey(), final.ID.String())
	s.rdb.Del(ctx, config.CacheKey.AttemptAnswersKey(final.ID.String()))
	s.publishStatus(ctx, final)

	s.log.Info().
		Str("attempt_id", final.ID.String()).
		Str("end_reason", string(final.EndReason)).
		Int("final_score", final.FinalScore).
		Bool("passed", final.Passed).
		Msg("attempt finalized")
}

func (s *AttemptService) checkOwner(sess *engine.Session, userID int) error {
	if sess.Snapshot().UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// enqueueViolation pushes the event onto the persistence queue consumed by
// the violation worker.
func (s *AttemptService) enqueueViolation(ctx context.Context, attemptID uuid.UUID, ev model.ViolationEvent) {
	rec := repository.ViolationRecord{AttemptID: attemptID, Event: ev}
	payload, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("attempt_id", attemptID.String()).Msg("failed to enqueue violation")
	}
}

// publishViolation fans the event out to the reviewer monitor feed.
func (s *AttemptService) publishViolation(ctx context.Context, attemptID uuid.UUID, ev model.ViolationEvent, outcome engine.RecordOutcome) {
	feed := ws.ViolationFeedEvent{
		Event:          ws.EventViolation,
		AttemptID:      attemptID.String(),
		Type:           string(ev.Type),
		OccurredAt:     ev.OccurredAt,
		Confidence:     ev.Confidence,
		BehaviorScore:  outcome.BehaviorScore,
		ViolationCount: outcome.ViolationCount,
	}
	payload, err := json.Marshal(feed)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.AttemptMonitorChannel(attemptID.String()), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("monitor feed publish failed")
	}
}

func (s *AttemptService) publishStatus(ctx context.Context, attempt model.Attempt) {
	feed := ws.StatusFeedEvent{
		Event:     ws.EventStatus,
		AttemptID: attempt.ID.String(),
		Status:    string(attempt.Status),
		EndReason: string(attempt.EndReason),
	}
	payload, err := json.Marshal(feed)
	if err != nil {
		return
	}
	s.rdb.Publish(ctx, config.CacheKey.AttemptMonitorChannel(attempt.ID.String()), payload)
}
