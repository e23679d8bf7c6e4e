package score

import (
	"context"
	"errors"
)

// ErrUnknownUser is returned by repositories when no profile row exists for a user.
var ErrUnknownUser = errors.New("unknown user")

// Category is an activity category that earns points.
type Category string

const (
	CategoryVideo        Category = "video"
	CategoryExam         Category = "exam"
	CategoryDailyQuiz    Category = "daily_quiz"
	CategoryPracticeQuiz Category = "practice_quiz"
	CategoryBooking      Category = "booking"
)

// Categories lists every scored category.
var Categories = []Category{
	CategoryVideo,
	CategoryExam,
	CategoryDailyQuiz,
	CategoryPracticeQuiz,
	CategoryBooking,
}

// Quiz kinds, as stored on quizzes.kind.
const (
	QuizKindDaily    = "daily"
	QuizKindPractice = "practice"
)

// QuizKind returns the quiz discriminator of quiz categories.
func (c Category) QuizKind() (string, bool) {
	switch c {
	case CategoryDailyQuiz:
		return QuizKindDaily, true
	case CategoryPracticeQuiz:
		return QuizKindPractice, true
	default:
		return "", false
	}
}

// Weights holds the points awarded per qualifying record of each category.
type Weights struct {
	Video        int `json:"video"`
	Exam         int `json:"exam"`
	DailyQuiz    int `json:"daily_quiz"`
	PracticeQuiz int `json:"practice_quiz"`
	Booking      int `json:"booking"`
}

// DefaultWeights is the platform's points table.
var DefaultWeights = Weights{
	Video:        5,
	Exam:         10,
	DailyQuiz:    25,
	PracticeQuiz: 8,
	Booking:      70,
}

// Of returns the weight of cat; unknown categories weigh nothing.
func (w Weights) Of(cat Category) int {
	switch cat {
	case CategoryVideo:
		return w.Video
	case CategoryExam:
		return w.Exam
	case CategoryDailyQuiz:
		return w.DailyQuiz
	case CategoryPracticeQuiz:
		return w.PracticeQuiz
	case CategoryBooking:
		return w.Booking
	default:
		return 0
	}
}

// Counts holds the number of qualifying records per category.
type Counts map[Category]int

// Total reduces counts to a point total using w.
func Total(counts Counts, w Weights) int {
	var total int
	for cat, n := range counts {
		total += n * w.Of(cat)
	}
	return total
}

// Outcome tells which path produced a Result.
type Outcome string

const (
	// OutcomeComputed: every category query succeeded and the total was freshly computed.
	OutcomeComputed Outcome = "computed"
	// OutcomeFallback: a category query failed, the previously stored total was returned.
	OutcomeFallback Outcome = "fallback"
	// OutcomeDefault: both the computation and the stored total read failed.
	OutcomeDefault Outcome = "default"
)

// Result is the outcome of one score computation. It is always usable: Score is never left undefined.
type Result struct {
	UserID    string  `json:"user_id"`
	Score     int     `json:"score"`
	Outcome   Outcome `json:"outcome"`
	Counts    Counts  `json:"counts,omitempty"`
	Persisted bool    `json:"persisted"`
	Err       error   `json:"-"` // first error met, if any
}

// Listener is notified after a freshly computed total has been persisted.
type Listener interface {
	ScoreUpdated(ctx context.Context, userID string, total int)
}
