package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/leaderboard"
)

// rankingOrder is total: byte-wise username then id settle every tie, the same way the in-memory store does.
var rankingOrder = []core.DBOrdering{
	{Field: "total_score", Ascending: false},
	{Field: `COALESCE(username, '') COLLATE "C"`, Ascending: true},
	{Field: "id", Ascending: true},
}

func orderBy(ordering []core.DBOrdering) string {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return strings.Join(orderList, ", ")
}

type leaderboardRepository struct {
	exec core.DBExecutor
}

var _ leaderboard.Repository = (*leaderboardRepository)(nil) // interface compliance check

func NewLeaderboardRepository(exec core.DBExecutor) *leaderboardRepository {
	return &leaderboardRepository{exec: exec}
}

func (repo leaderboardRepository) TopEntries(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	q := `SELECT id AS user_id, name, COALESCE(username, '') AS username, total_score AS score
		FROM profiles WHERE total_score IS NOT NULL
		ORDER BY ` + orderBy(rankingOrder)

	var entries []leaderboard.Entry
	var err error
	if limit > 0 {
		err = repo.exec.SelectContext(ctx, &entries, q+` LIMIT $1`, limit)
	} else {
		err = repo.exec.SelectContext(ctx, &entries, q)
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting leaderboard")
	}
	return entries, nil
}

func (repo leaderboardRepository) CountRanked(ctx context.Context) (int, error) {
	var n int
	if err := repo.exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles WHERE total_score IS NOT NULL`); err != nil {
		return 0, errors.Wrap(err, "counting ranked profiles")
	}
	return n, nil
}

func (repo leaderboardRepository) GetStanding(ctx context.Context, userID string) (leaderboard.Standing, error) {
	st := leaderboard.Standing{UserID: userID}
	err := repo.exec.GetContext(ctx, &st, `SELECT p.id AS user_id, p.total_score AS score,
			(SELECT COUNT(*) FROM profiles o
				WHERE o.total_score > p.total_score
				OR (o.total_score = p.total_score AND (COALESCE(o.username, '') COLLATE "C", o.id) < (COALESCE(p.username, '') COLLATE "C", p.id))) + 1 AS rank
		FROM profiles p
		WHERE p.id = $1 AND p.total_score IS NOT NULL`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return leaderboard.Standing{UserID: userID}, nil
		}
		return leaderboard.Standing{}, errors.Wrap(err, "selecting standing")
	}
	return st, nil
}
