package rediscache

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/leaderboard"
)

// ScoreKey is the sorted set holding every stored total, keyed by user id.
const ScoreKey = "leaderboard:score"

// NewClient connects to redis and checks it is reachable.
func NewClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

type LeaderboardCache struct {
	client redis.Cmdable
	key    string
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil) // interface compliance check

func NewLeaderboardCache(client redis.Cmdable) *LeaderboardCache {
	return &LeaderboardCache{client: client, key: ScoreKey}
}

func (c *LeaderboardCache) SetScore(ctx context.Context, userID string, total int) error {
	err := c.client.ZAdd(ctx, c.key, redis.Z{Score: float64(total), Member: userID}).Err()
	return errors.Wrap(err, "adding score")
}

// SetScores replaces the whole set atomically.
func (c *LeaderboardCache) SetScores(ctx context.Context, entries []leaderboard.Entry) error {
	members := make([]redis.Z, len(entries))
	for i, e := range entries {
		members[i] = redis.Z{Score: float64(e.Score), Member: e.UserID}
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, c.key, members...)
		}
		return nil
	})
	return errors.Wrap(err, "replacing scores")
}

func (c *LeaderboardCache) Standing(ctx context.Context, userID string) (leaderboard.Standing, bool, error) {
	var rankCmd *redis.IntCmd
	var scoreCmd *redis.FloatCmd
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		rankCmd = pipe.ZRevRank(ctx, c.key, userID)
		scoreCmd = pipe.ZScore(ctx, c.key, userID)
		return nil
	})
	if err == redis.Nil {
		return leaderboard.Standing{}, false, nil
	}
	if err != nil {
		return leaderboard.Standing{}, false, errors.Wrap(err, "reading standing")
	}

	return leaderboard.Standing{
		UserID: userID,
		Rank:   int(rankCmd.Val()) + 1, // ZREVRANK is 0-based
		Score:  int(scoreCmd.Val()),
	}, true, nil
}
