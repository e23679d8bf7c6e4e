package leaderboard

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/score"
)

type (
	// Repository reads ranked profiles: only profiles with a stored score are ranked,
	// ordered by score descending then username ascending.
	Repository interface {
		// TopEntries returns the first `limit` ranked profiles (all if limit <= 0), Rank left unset.
		TopEntries(ctx context.Context, limit int) ([]Entry, error)
		CountRanked(ctx context.Context) (int, error)
		// GetStanding returns the user's rank, 0 when unranked.
		GetStanding(ctx context.Context, userID string) (Standing, error)
	}

	// Cache mirrors stored scores for fast rank lookups.
	Cache interface {
		SetScore(ctx context.Context, userID string, total int) error
		SetScores(ctx context.Context, entries []Entry) error
		// Standing returns ok=false on a cache miss.
		Standing(ctx context.Context, userID string) (st Standing, ok bool, err error)
	}

	Service interface {
		score.Listener

		Top(ctx context.Context, limit int) (Board, error)
		Standing(ctx context.Context, userID string) (Standing, error)
		// Warm loads every stored score into the cache.
		Warm(ctx context.Context) (int, error)
	}

	service struct {
		repo   Repository
		cache  Cache // optional
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

// NewService returns a leaderboard Service; cache may be nil.
func NewService(repo Repository, cache Cache, logger core.Logger) Service {
	return &service{repo: repo, cache: cache, logger: logger}
}

func (svc *service) Top(ctx context.Context, limit int) (Board, error) {
	entries, err := svc.repo.TopEntries(ctx, limit)
	if err != nil {
		return Board{}, errors.Wrap(err, "querying top entries")
	}
	total, err := svc.repo.CountRanked(ctx)
	if err != nil {
		return Board{}, errors.Wrap(err, "counting ranked users")
	}

	rank := 1
	for i := range entries {
		entries[i].Rank = rank
		rank++
	}
	if entries == nil {
		entries = []Entry{}
	}
	return Board{Entries: entries, TotalUsers: total}, nil
}

func (svc *service) Standing(ctx context.Context, userID string) (Standing, error) {
	if svc.cache != nil {
		st, ok, err := svc.cache.Standing(ctx, userID)
		if err != nil {
			svc.logger.Warn("reading cached standing", errors.Wrap(err, "reading cached standing"))
		} else if ok {
			return st, nil
		}
	}

	st, err := svc.repo.GetStanding(ctx, userID)
	if err != nil {
		return Standing{}, errors.Wrap(err, "getting standing")
	}
	return st, nil
}

// ScoreUpdated keeps the cache in line with freshly persisted totals.
func (svc *service) ScoreUpdated(ctx context.Context, userID string, total int) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.SetScore(ctx, userID, total); err != nil {
		svc.logger.Warn("caching score", errors.Wrap(err, "caching score"), map[string]interface{}{"user_id": userID})
	}
}

func (svc *service) Warm(ctx context.Context) (int, error) {
	if svc.cache == nil {
		return 0, nil
	}
	entries, err := svc.repo.TopEntries(ctx, 0)
	if err != nil {
		return 0, errors.Wrap(err, "querying entries")
	}
	if err = svc.cache.SetScores(ctx, entries); err != nil {
		return 0, errors.Wrap(err, "caching scores")
	}
	return len(entries), nil
}
