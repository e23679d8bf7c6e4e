package inmemdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/leaderboard"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
)

// Operations that can be made to fail with FailOn.
const (
	OpGetScore    = "get_score"
	OpSetScore    = "set_score"
	OpGetProfile  = "get_profile"
	OpQueryIDs    = "query_ids"
	OpLeaderboard = "leaderboard"
	opCountPrefix = "count:"
)

// OpCount is the FailOn operation name for counting records of cat.
func OpCount(cat score.Category) string {
	return opCountPrefix + string(cat)
}

type (
	VideoWatch struct {
		UserID  string
		VideoID string
		Watched bool
	}

	ExamInteraction struct {
		UserID         string
		ExamID         string
		ViewedSolution bool
		SolvedWithHelp bool
	}

	Quiz struct {
		ID         string
		Kind       string
		Title      string
		ExpiryDate time.Time
	}

	QuizAnswer struct {
		UserID    string
		QuizID    string
		IsCorrect bool
	}

	Booking struct {
		UserID    string
		AlumniID  string
		BookedFor time.Time
	}
)

// DB is a thread safe in-memory store implementing the score, user and leaderboard repositories.
type DB struct {
	mu       sync.RWMutex
	profiles map[string]user.Profile
	videos   []VideoWatch
	exams    []ExamInteraction
	quizzes  map[string]Quiz
	answers  []QuizAnswer
	bookings []Booking
	failures map[string]error
}

var (
	_ score.Repository       = (*DB)(nil)
	_ user.Repository        = (*DB)(nil)
	_ leaderboard.Repository = (*DB)(nil)
	_ core.Pinger            = (*DB)(nil)
)

func New() *DB {
	return &DB{
		profiles: make(map[string]user.Profile),
		quizzes:  make(map[string]Quiz),
		failures: make(map[string]error),
	}
}

// FailOn makes every subsequent `op` return err; a nil err clears the failure.
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err == nil {
		delete(db.failures, op)
		return
	}
	db.failures[op] = err
}

func (db *DB) failure(op string) error {
	return db.failures[op]
}

func (db *DB) PingContext(context.Context) error {
	return nil
}

func (db *DB) Close() error {
	return nil
}

func (db *DB) AddProfile(p user.Profile) user.Profile {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	db.profiles[p.ID] = p
	return p
}

func (db *DB) AddVideoWatch(v VideoWatch) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.videos = append(db.videos, v)
}

func (db *DB) AddExamInteraction(e ExamInteraction) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.exams = append(db.exams, e)
}

func (db *DB) AddQuiz(q Quiz) Quiz {
	db.mu.Lock()
	defer db.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	db.quizzes[q.ID] = q
	return q
}

func (db *DB) AddQuizAnswer(a QuizAnswer) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.answers = append(db.answers, a)
}

func (db *DB) AddBooking(b Booking) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.bookings = append(db.bookings, b)
}

func (db *DB) CountQualifying(_ context.Context, cat score.Category, userID string) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.failure(OpCount(cat)); err != nil {
		return 0, err
	}

	var n int
	switch cat {
	case score.CategoryVideo:
		for _, v := range db.videos {
			if v.UserID == userID && v.Watched {
				n++
			}
		}
	case score.CategoryExam:
		for _, e := range db.exams {
			if e.UserID == userID && (e.ViewedSolution || e.SolvedWithHelp) {
				n++
			}
		}
	case score.CategoryDailyQuiz, score.CategoryPracticeQuiz:
		kind, _ := cat.QuizKind()
		for _, a := range db.answers {
			if a.UserID == userID && a.IsCorrect && db.quizzes[a.QuizID].Kind == kind {
				n++
			}
		}
	case score.CategoryBooking:
		for _, b := range db.bookings {
			if b.UserID == userID {
				n++
			}
		}
	}
	return n, nil
}

func (db *DB) GetStoredScore(_ context.Context, userID string) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.failure(OpGetScore); err != nil {
		return 0, err
	}
	p, ok := db.profiles[userID]
	if !ok {
		return 0, score.ErrUnknownUser
	}
	return p.Score(), nil
}

func (db *DB) SetStoredScore(_ context.Context, userID string, total int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failure(OpSetScore); err != nil {
		return err
	}
	p, ok := db.profiles[userID]
	if !ok {
		return score.ErrUnknownUser
	}
	p.TotalScore = &total
	p.UpdatedAt = time.Now().UTC()
	db.profiles[userID] = p
	return nil
}

func (db *DB) GetProfile(_ context.Context, id string) (user.Profile, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.failure(OpGetProfile); err != nil {
		return user.Profile{}, err
	}
	p, ok := db.profiles[id]
	if !ok {
		return user.Profile{}, user.ErrNotFound
	}
	return p, nil
}

func (db *DB) QueryProfileIDs(_ context.Context, filter user.QueryFilter) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.failure(OpQueryIDs); err != nil {
		return nil, err
	}

	profiles := make([]user.Profile, 0, len(db.profiles))
	for _, p := range db.profiles {
		if filter.RolePrefix == "" || p.RoleStartsWith(filter.RolePrefix) {
			profiles = append(profiles, p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].ID < profiles[j].ID
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids, nil
}

// ranked returns the profiles having a stored score, best first.
func (db *DB) ranked() []user.Profile {
	profiles := make([]user.Profile, 0, len(db.profiles))
	for _, p := range db.profiles {
		if p.TotalScore != nil {
			profiles = append(profiles, p)
		}
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		pi, pj := profiles[i], profiles[j]
		if si, sj := *pi.TotalScore, *pj.TotalScore; si != sj {
			return si > sj
		}
		if c := strings.Compare(pi.Username, pj.Username); c != 0 {
			return c < 0
		}
		return pi.ID < pj.ID
	})
	return profiles
}

func (db *DB) TopEntries(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.failure(OpLeaderboard); err != nil {
		return nil, err
	}
	profiles := db.ranked()
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}

	entries := make([]leaderboard.Entry, len(profiles))
	for i, p := range profiles {
		entries[i] = leaderboard.Entry{
			UserID:   p.ID,
			Name:     p.Name,
			Username: p.Username,
			Score:    p.Score(),
		}
	}
	return entries, nil
}

func (db *DB) CountRanked(context.Context) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.failure(OpLeaderboard); err != nil {
		return 0, err
	}
	var n int
	for _, p := range db.profiles {
		if p.TotalScore != nil {
			n++
		}
	}
	return n, nil
}

func (db *DB) GetStanding(_ context.Context, userID string) (leaderboard.Standing, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.failure(OpLeaderboard); err != nil {
		return leaderboard.Standing{}, err
	}
	for i, p := range db.ranked() {
		if p.ID == userID {
			return leaderboard.Standing{UserID: userID, Rank: i + 1, Score: p.Score()}, nil
		}
	}
	return leaderboard.Standing{UserID: userID}, nil
}
