package score

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store unreachable")

func scenarioCounts() Counts {
	return Counts{
		CategoryVideo:        4,
		CategoryExam:         2,
		CategoryDailyQuiz:    3,
		CategoryPracticeQuiz: 0,
		CategoryBooking:      1,
	}
}

func Test_service_Compute(t *testing.T) {
	ctx := context.Background()

	t.Run("computes, persists and notifies", func(t *testing.T) {
		repo := newRepoMock(scenarioCounts())
		lsn := &listenerMock{}
		svc := NewService(repo, DefaultWeights, nopLogger{}, lsn)

		res := svc.Compute(ctx, "u1")
		assert.Equal(t, 185, res.Score)
		assert.Equal(t, OutcomeComputed, res.Outcome)
		assert.True(t, res.Persisted)
		assert.NoError(t, res.Err)
		assert.Equal(t, scenarioCounts(), res.Counts)
		assert.Equal(t, 185, repo.stored)
		assert.Equal(t, len(Categories), repo.countCalls)
		assert.Equal(t, map[string]int{"u1": 185}, lsn.updates)
	})

	t.Run("zero records are persisted as zero", func(t *testing.T) {
		repo := newRepoMock(Counts{})
		repo.stored = 40
		svc := NewService(repo, DefaultWeights, nopLogger{})

		res := svc.Compute(ctx, "u1")
		assert.Equal(t, 0, res.Score)
		assert.Equal(t, OutcomeComputed, res.Outcome)
		assert.True(t, res.Persisted)
		assert.Equal(t, 0, repo.stored)
		assert.Equal(t, 1, repo.setCalls)
	})

	t.Run("any failing category falls back to the stored total", func(t *testing.T) {
		for _, cat := range Categories {
			repo := newRepoMock(scenarioCounts())
			repo.stored = 42
			repo.countErrs[cat] = errStore
			lsn := &listenerMock{}
			svc := NewService(repo, DefaultWeights, nopLogger{}, lsn)

			res := svc.Compute(ctx, "u1")
			assert.Equal(t, 42, res.Score, cat)
			assert.Equal(t, OutcomeFallback, res.Outcome, cat)
			assert.False(t, res.Persisted, cat)
			assert.Nil(t, res.Counts, cat)
			assert.ErrorIs(t, res.Err, errStore, cat)
			assert.EqualError(t, res.Err, "counting "+string(cat)+" records: store unreachable", cat)
			assert.Equal(t, 0, repo.setCalls, "no write on the fallback path")
			assert.Nil(t, lsn.updates)
		}
	})

	t.Run("failed fallback read yields zero", func(t *testing.T) {
		repo := newRepoMock(scenarioCounts())
		repo.countErrs[CategoryBooking] = errStore
		repo.getErr = errStore
		svc := NewService(repo, DefaultWeights, nopLogger{})

		res := svc.Compute(ctx, "u1")
		assert.Equal(t, 0, res.Score)
		assert.Equal(t, OutcomeDefault, res.Outcome)
		assert.Error(t, res.Err)
		assert.Equal(t, 0, repo.setCalls)
	})

	t.Run("failed write still returns the fresh total", func(t *testing.T) {
		repo := newRepoMock(scenarioCounts())
		repo.stored = 7
		repo.setErr = errStore
		lsn := &listenerMock{}
		svc := NewService(repo, DefaultWeights, nopLogger{}, lsn)

		res := svc.Compute(ctx, "u1")
		assert.Equal(t, 185, res.Score)
		assert.Equal(t, OutcomeComputed, res.Outcome)
		assert.False(t, res.Persisted)
		assert.ErrorIs(t, res.Err, errStore)
		assert.Equal(t, 7, repo.stored)
		assert.Nil(t, lsn.updates)
	})

	t.Run("weights are supplied at construction", func(t *testing.T) {
		repo := newRepoMock(scenarioCounts())
		svc := NewService(repo, Weights{Video: 1, Exam: 1, DailyQuiz: 1, PracticeQuiz: 1, Booking: 1}, nopLogger{})

		res := svc.Compute(ctx, "u1")
		assert.Equal(t, 10, res.Score)
	})

	t.Run("idempotent without data change", func(t *testing.T) {
		repo := newRepoMock(scenarioCounts())
		svc := NewService(repo, DefaultWeights, nopLogger{})

		first := svc.Compute(ctx, "u1")
		storedAfterFirst := repo.stored
		second := svc.Compute(ctx, "u1")
		assert.Equal(t, first.Score, second.Score)
		assert.Equal(t, storedAfterFirst, repo.stored)
	})
}

func Test_service_RecomputeAll(t *testing.T) {
	repo := newRepoMock(scenarioCounts())
	svc := NewService(repo, DefaultWeights, nopLogger{})

	ids := []string{"a", "b", "c", "d", "e"}
	for _, limit := range []int{0, 1, 2, 10} {
		results := svc.RecomputeAll(context.Background(), ids, limit)
		require.Len(t, results, len(ids))
		for i, res := range results {
			assert.Equal(t, ids[i], res.UserID)
			assert.Equal(t, 185, res.Score)
			assert.Equal(t, OutcomeComputed, res.Outcome)
		}
	}
	assert.Empty(t, svc.RecomputeAll(context.Background(), nil, 3))
}
