package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
	"github.com/trezcool/alama/storage/database"
	"github.com/trezcool/alama/storage/database/inmem"
)

// NewConfig returns a config suitable for tests: in-memory store, no redis, no request logs.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:   "Alama",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			DisableReqLogs:     true,
			JWTExpirationDelta: time.Hour,
			ShutdownTimeout:    time.Second,
		},
		Database:    core.DatabaseConfig{Engine: database.EngineMemory},
		Leaderboard: core.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100},
	}
}

func CreateProfile(t *testing.T, db *inmemdb.DB, name, uname string, roles []string, total ...int) user.Profile {
	t.Helper()
	prof := user.Profile{
		Name:     name,
		Username: uname,
		Email:    uname + "@test.cd",
		Roles:    roles,
	}
	if len(total) > 0 {
		prof.TotalScore = &total[0]
	}
	return db.AddProfile(prof)
}

// Activity holds the number of qualifying records to seed per category.
type Activity struct {
	Videos          int
	Exams           int
	DailyQuizzes    int
	PracticeQuizzes int
	Bookings        int
}

// SeedActivity adds qualifying records for userID, plus a few that earn nothing.
func SeedActivity(db *inmemdb.DB, userID string, act Activity) {
	for i := 0; i < act.Videos; i++ {
		db.AddVideoWatch(inmemdb.VideoWatch{UserID: userID, VideoID: fmt.Sprintf("video-%d", i), Watched: true})
	}
	db.AddVideoWatch(inmemdb.VideoWatch{UserID: userID, VideoID: "unwatched"})

	for i := 0; i < act.Exams; i++ {
		db.AddExamInteraction(inmemdb.ExamInteraction{UserID: userID, ExamID: fmt.Sprintf("exam-%d", i), ViewedSolution: i%2 == 0, SolvedWithHelp: i%2 == 1})
	}
	db.AddExamInteraction(inmemdb.ExamInteraction{UserID: userID, ExamID: "untouched"})

	daily := db.AddQuiz(inmemdb.Quiz{Kind: score.QuizKindDaily, Title: "daily"})
	practice := db.AddQuiz(inmemdb.Quiz{Kind: score.QuizKindPractice, Title: "practice"})
	for i := 0; i < act.DailyQuizzes; i++ {
		db.AddQuizAnswer(inmemdb.QuizAnswer{UserID: userID, QuizID: daily.ID, IsCorrect: true})
	}
	for i := 0; i < act.PracticeQuizzes; i++ {
		db.AddQuizAnswer(inmemdb.QuizAnswer{UserID: userID, QuizID: practice.ID, IsCorrect: true})
	}
	db.AddQuizAnswer(inmemdb.QuizAnswer{UserID: userID, QuizID: daily.ID})

	for i := 0; i < act.Bookings; i++ {
		db.AddBooking(inmemdb.Booking{UserID: userID, AlumniID: fmt.Sprintf("alumni-%d", i)})
	}
}

// PrepareDB opens & migrates the database at TEST_DATABASE_URL, skipping the test when unset.
// Every table is truncated on cleanup.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	rawURL := os.Getenv("TEST_DATABASE_URL")
	if rawURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.OpenURL(context.Background(), rawURL)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}

	t.Cleanup(func() {
		db.MustExec(`TRUNCATE quiz_answers, quizzes, video_watches, exam_interactions, alumni_bookings, profiles CASCADE`)
		_ = db.Close()
	})
	return db
}
