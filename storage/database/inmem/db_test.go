package inmemdb

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core/leaderboard"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
)

func intPtr(n int) *int { return &n }

func seedActivity(db *DB, userID string) {
	daily := db.AddQuiz(Quiz{Kind: score.QuizKindDaily, Title: "daily"})
	practice := db.AddQuiz(Quiz{Kind: score.QuizKindPractice, Title: "practice"})

	db.AddVideoWatch(VideoWatch{UserID: userID, VideoID: "v1", Watched: true})
	db.AddVideoWatch(VideoWatch{UserID: userID, VideoID: "v2", Watched: true})
	db.AddVideoWatch(VideoWatch{UserID: userID, VideoID: "v3", Watched: false})
	db.AddExamInteraction(ExamInteraction{UserID: userID, ExamID: "e1", ViewedSolution: true})
	db.AddExamInteraction(ExamInteraction{UserID: userID, ExamID: "e2", SolvedWithHelp: true})
	db.AddExamInteraction(ExamInteraction{UserID: userID, ExamID: "e3"})
	db.AddQuizAnswer(QuizAnswer{UserID: userID, QuizID: daily.ID, IsCorrect: true})
	db.AddQuizAnswer(QuizAnswer{UserID: userID, QuizID: daily.ID, IsCorrect: false})
	db.AddQuizAnswer(QuizAnswer{UserID: userID, QuizID: practice.ID, IsCorrect: true})
	db.AddBooking(Booking{UserID: userID, AlumniID: "a1"})
	db.AddBooking(Booking{UserID: "someone-else", AlumniID: "a1"})
}

func TestDB_CountQualifying(t *testing.T) {
	ctx := context.Background()
	db := New()
	p := db.AddProfile(user.Profile{Name: "Ada", Username: "ada"})
	seedActivity(db, p.ID)

	tests := []struct {
		cat  score.Category
		want int
	}{
		{cat: score.CategoryVideo, want: 2},
		{cat: score.CategoryExam, want: 2},
		{cat: score.CategoryDailyQuiz, want: 1},
		{cat: score.CategoryPracticeQuiz, want: 1},
		{cat: score.CategoryBooking, want: 1},
	}
	for _, tc := range tests {
		t.Run(string(tc.cat), func(t *testing.T) {
			n, err := db.CountQualifying(ctx, tc.cat, p.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestDB_StoredScore(t *testing.T) {
	ctx := context.Background()
	db := New()
	p := db.AddProfile(user.Profile{Name: "Ada", Username: "ada"})

	got, err := db.GetStoredScore(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	require.NoError(t, db.SetStoredScore(ctx, p.ID, 120))
	got, err = db.GetStoredScore(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, got)

	_, err = db.GetStoredScore(ctx, "missing")
	assert.Equal(t, score.ErrUnknownUser, err)
	assert.Equal(t, score.ErrUnknownUser, db.SetStoredScore(ctx, "missing", 1))
}

func TestDB_FailOn(t *testing.T) {
	ctx := context.Background()
	db := New()
	p := db.AddProfile(user.Profile{Name: "Ada"})
	boom := errors.New("boom")

	db.FailOn(OpCount(score.CategoryExam), boom)
	_, err := db.CountQualifying(ctx, score.CategoryExam, p.ID)
	assert.Equal(t, boom, err)
	_, err = db.CountQualifying(ctx, score.CategoryVideo, p.ID)
	assert.NoError(t, err)

	db.FailOn(OpCount(score.CategoryExam), nil)
	_, err = db.CountQualifying(ctx, score.CategoryExam, p.ID)
	assert.NoError(t, err)

	db.FailOn(OpSetScore, boom)
	assert.Equal(t, boom, db.SetStoredScore(ctx, p.ID, 1))
}

func TestDB_QueryProfileIDs(t *testing.T) {
	ctx := context.Background()
	db := New()
	s1 := db.AddProfile(user.Profile{Name: "S1", Roles: []string{user.RoleStudent}})
	t1 := db.AddProfile(user.Profile{Name: "T1", Roles: []string{user.RoleTeacher}})
	s2 := db.AddProfile(user.Profile{Name: "S2", Roles: []string{user.RoleStudent, user.RoleAdmin}})

	ids, err := db.QueryProfileIDs(ctx, user.QueryFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{s1.ID, t1.ID, s2.ID}, ids)

	ids, err = db.QueryProfileIDs(ctx, user.QueryFilter{RolePrefix: user.RoleStudent})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{s1.ID, s2.ID}, ids)

	_, err = db.GetProfile(ctx, "missing")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestDB_Leaderboard(t *testing.T) {
	ctx := context.Background()
	db := New()
	bob := db.AddProfile(user.Profile{Name: "Bob", Username: "bob", TotalScore: intPtr(50)})
	ada := db.AddProfile(user.Profile{Name: "Ada", Username: "ada", TotalScore: intPtr(50)})
	cid := db.AddProfile(user.Profile{Name: "Cid", Username: "cid", TotalScore: intPtr(90)})
	dan := db.AddProfile(user.Profile{Name: "Dan", Username: "dan"})

	entries, err := db.TopEntries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{cid.ID, ada.ID, bob.ID}, []string{entries[0].UserID, entries[1].UserID, entries[2].UserID})

	entries, err = db.TopEntries(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	n, err := db.CountRanked(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	st, err := db.GetStanding(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, leaderboard.Standing{UserID: bob.ID, Rank: 3, Score: 50}, st)

	st, err = db.GetStanding(ctx, dan.ID)
	require.NoError(t, err)
	assert.Equal(t, leaderboard.Standing{UserID: dan.ID}, st)
}

func TestDB_Leaderboard_ties(t *testing.T) {
	ctx := context.Background()
	db := New()
	ids := make([]string, 5)
	for i := range ids {
		ids[i] = db.AddProfile(user.Profile{Name: "Anon", TotalScore: intPtr(40)}).ID
	}
	sort.Strings(ids)

	for run := 0; run < 3; run++ {
		entries, err := db.TopEntries(ctx, 0)
		require.NoError(t, err)
		got := make([]string, len(entries))
		for i, e := range entries {
			got[i] = e.UserID
		}
		assert.Equal(t, ids, got)
	}

	for i, id := range ids {
		st, err := db.GetStanding(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i+1, st.Rank)
	}
}
