package sqlxrepos

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core/leaderboard"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
	logsvc "github.com/trezcool/alama/services/logger"
	"github.com/trezcool/alama/tests"
)

func intPtr(n int) *int { return &n }

func TestScoreRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	usrRepo := NewUserRepository(db)
	repo := NewScoreRepository(db)

	p, err := usrRepo.CreateProfile(ctx, user.Profile{Name: "Ada", Username: "ada", Roles: []string{user.RoleStudent}})
	require.NoError(t, err)

	var dailyID, practiceID int64
	require.NoError(t, db.Get(&dailyID, `INSERT INTO quizzes (kind, title) VALUES ('daily', 'd') RETURNING id`))
	require.NoError(t, db.Get(&practiceID, `INSERT INTO quizzes (kind, title) VALUES ('practice', 'p') RETURNING id`))
	db.MustExec(`INSERT INTO video_watches (user_id, video_id, watched) VALUES ($1, 'v1', true), ($1, 'v2', false)`, p.ID)
	db.MustExec(`INSERT INTO exam_interactions (user_id, exam_id, viewed_solution, solved_with_help)
		VALUES ($1, 'e1', true, false), ($1, 'e2', false, true), ($1, 'e3', false, false)`, p.ID)
	db.MustExec(`INSERT INTO quiz_answers (user_id, quiz_id, is_correct) VALUES ($1, $2, true), ($1, $2, false), ($1, $3, true)`,
		p.ID, dailyID, practiceID)
	db.MustExec(`INSERT INTO alumni_bookings (user_id, alumni_id) VALUES ($1, 'a1')`, p.ID)

	want := score.Counts{
		score.CategoryVideo:        1,
		score.CategoryExam:         2,
		score.CategoryDailyQuiz:    1,
		score.CategoryPracticeQuiz: 1,
		score.CategoryBooking:      1,
	}
	for cat, n := range want {
		got, err := repo.CountQualifying(ctx, cat, p.ID)
		require.NoError(t, err)
		assert.Equal(t, n, got, cat)
	}

	stored, err := repo.GetStoredScore(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored)

	require.NoError(t, repo.SetStoredScore(ctx, p.ID, 128))
	stored, err = repo.GetStoredScore(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 128, stored)

	missing := uuid.NewString()
	_, err = repo.GetStoredScore(ctx, missing)
	assert.Equal(t, score.ErrUnknownUser, err)
	assert.Equal(t, score.ErrUnknownUser, repo.SetStoredScore(ctx, missing, 1))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := NewUserRepository(db)

	stu, err := repo.CreateProfile(ctx, user.Profile{Name: "Ada", Username: "ada", Roles: []string{user.RoleStudent}})
	require.NoError(t, err)
	_, err = repo.CreateProfile(ctx, user.Profile{Name: "Tom", Username: "tom", Roles: []string{user.RoleTeacher}})
	require.NoError(t, err)

	got, err := repo.GetProfile(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
	assert.Nil(t, got.TotalScore)
	assert.True(t, got.IsStudent())

	_, err = repo.GetProfile(ctx, uuid.NewString())
	assert.Equal(t, user.ErrNotFound, err)

	ids, err := repo.QueryProfileIDs(ctx, user.QueryFilter{RolePrefix: user.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, []string{stu.ID}, ids)

	ids, err = repo.QueryProfileIDs(ctx, user.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestLeaderboardRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	usrRepo := NewUserRepository(db)
	repo := NewLeaderboardRepository(db)

	bob, err := usrRepo.CreateProfile(ctx, user.Profile{Name: "Bob", Username: "bob", TotalScore: intPtr(50)})
	require.NoError(t, err)
	ada, err := usrRepo.CreateProfile(ctx, user.Profile{Name: "Ada", Username: "ada", TotalScore: intPtr(50)})
	require.NoError(t, err)
	cid, err := usrRepo.CreateProfile(ctx, user.Profile{Name: "Cid", Username: "cid", TotalScore: intPtr(90)})
	require.NoError(t, err)
	dan, err := usrRepo.CreateProfile(ctx, user.Profile{Name: "Dan", Username: "dan"})
	require.NoError(t, err)

	entries, err := repo.TopEntries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{cid.ID, ada.ID, bob.ID}, []string{entries[0].UserID, entries[1].UserID, entries[2].UserID})

	entries, err = repo.TopEntries(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	n, err := repo.CountRanked(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	st, err := repo.GetStanding(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, leaderboard.Standing{UserID: bob.ID, Rank: 3, Score: 50}, st)

	st, err = repo.GetStanding(ctx, dan.ID)
	require.NoError(t, err)
	assert.Equal(t, leaderboard.Standing{UserID: dan.ID}, st)
}

func TestLeaderboardRepository_ties(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	usrRepo := NewUserRepository(db)
	repo := NewLeaderboardRepository(db)

	ids := make([]string, 5)
	for i := range ids {
		p, err := usrRepo.CreateProfile(ctx, user.Profile{Name: "Anon", TotalScore: intPtr(40)})
		require.NoError(t, err)
		ids[i] = p.ID
	}
	sort.Strings(ids)

	entries, err := repo.TopEntries(ctx, 0)
	require.NoError(t, err)
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.UserID
	}
	assert.Equal(t, ids, got)

	for i, id := range ids {
		st, err := repo.GetStanding(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i+1, st.Rank)
	}
}

func TestScoreRepository_countErrorNamedOnce(t *testing.T) {
	db := testutil.PrepareDB(t)
	svc := score.NewService(NewScoreRepository(db), score.DefaultWeights, logsvc.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := svc.Compute(ctx, uuid.NewString())

	require.Error(t, res.Err)
	assert.Equal(t, 1, strings.Count(res.Err.Error(), "counting"), res.Err.Error())
	assert.ErrorIs(t, res.Err, context.Canceled)
}
