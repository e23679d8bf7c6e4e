package score

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/alama/core"
)

type (
	Repository interface {
		// CountQualifying counts the user's records of cat that earn points.
		CountQualifying(ctx context.Context, cat Category, userID string) (int, error)
		// GetStoredScore returns the total persisted on the user's profile (0 if never computed).
		GetStoredScore(ctx context.Context, userID string) (int, error)
		// SetStoredScore overwrites the total persisted on the user's profile.
		SetStoredScore(ctx context.Context, userID string, total int) error
	}

	Service interface {
		// Compute recomputes the user's total from scratch and persists it.
		// It never fails: see Result.Outcome for the path taken.
		Compute(ctx context.Context, userID string) Result
		// RecomputeAll runs Compute for every user, at most `concurrency` at a time (unbounded if <= 0).
		RecomputeAll(ctx context.Context, userIDs []string, concurrency int) []Result
	}

	service struct {
		repo      Repository
		weights   Weights
		logger    core.Logger
		listeners []Listener
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, weights Weights, logger core.Logger, listeners ...Listener) Service {
	return &service{
		repo:      repo,
		weights:   weights,
		logger:    logger,
		listeners: listeners,
	}
}

func (svc *service) Compute(ctx context.Context, userID string) Result {
	counts, err := svc.countAll(ctx, userID)
	if err != nil {
		svc.logger.Error("computing score", errors.Wrap(err, "counting activity records"), logData(userID))
		return svc.fallback(ctx, userID, err)
	}

	total := Total(counts, svc.weights)
	res := Result{
		UserID:  userID,
		Score:   total,
		Outcome: OutcomeComputed,
		Counts:  counts,
	}

	if err = svc.repo.SetStoredScore(ctx, userID, total); err != nil {
		// the fresh total is still served; the stored one stays stale until the next successful write
		res.Err = errors.Wrap(err, "persisting score")
		svc.logger.Error("persisting score", res.Err, logData(userID))
		return res
	}
	res.Persisted = true

	for _, l := range svc.listeners {
		l.ScoreUpdated(ctx, userID, total)
	}
	return res
}

// countAll fans out one query per category and waits for all of them to settle.
// Any failure invalidates the whole pass.
func (svc *service) countAll(ctx context.Context, userID string) (Counts, error) {
	var g errgroup.Group
	results := make([]int, len(Categories))

	for i, cat := range Categories {
		i, cat := i, cat
		g.Go(func() error {
			n, err := svc.repo.CountQualifying(ctx, cat, userID)
			if err != nil {
				return errors.Wrapf(err, "counting %s records", cat)
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(Counts, len(Categories))
	for i, cat := range Categories {
		counts[cat] = results[i]
	}
	return counts, nil
}

func (svc *service) fallback(ctx context.Context, userID string, cause error) Result {
	stored, err := svc.repo.GetStoredScore(ctx, userID)
	if err != nil {
		svc.logger.Error("reading stored score", errors.Wrap(err, "reading stored score"), logData(userID))
		return Result{UserID: userID, Outcome: OutcomeDefault, Err: cause}
	}
	return Result{UserID: userID, Score: stored, Outcome: OutcomeFallback, Err: cause}
}

func (svc *service) RecomputeAll(ctx context.Context, userIDs []string, concurrency int) []Result {
	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	results := make([]Result, len(userIDs))
	for i, id := range userIDs {
		i, id := i, id
		g.Go(func() error {
			results[i] = svc.Compute(ctx, id)
			return nil
		})
	}
	_ = g.Wait() // Compute never fails
	return results
}

func logData(userID string) map[string]interface{} {
	return map[string]interface{}{"user_id": userID}
}
