package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/score"
)

var countQueries = map[score.Category]string{
	score.CategoryVideo: `SELECT COUNT(*) FROM video_watches
		WHERE user_id = $1 AND watched = true`,
	score.CategoryExam: `SELECT COUNT(*) FROM exam_interactions
		WHERE user_id = $1 AND (viewed_solution = true OR solved_with_help = true)`,
	score.CategoryBooking: `SELECT COUNT(*) FROM alumni_bookings
		WHERE user_id = $1`,
}

const countCorrectAnswersQuery = `SELECT COUNT(*) FROM quiz_answers a
	JOIN quizzes q ON q.id = a.quiz_id
	WHERE a.user_id = $1 AND a.is_correct = true AND q.kind = $2`

type scoreRepository struct {
	exec core.DBExecutor
}

var _ score.Repository = (*scoreRepository)(nil) // interface compliance check

func NewScoreRepository(exec core.DBExecutor) *scoreRepository {
	return &scoreRepository{exec: exec}
}

func (repo scoreRepository) CountQualifying(ctx context.Context, cat score.Category, userID string) (int, error) {
	var n int
	var err error

	if kind, ok := cat.QuizKind(); ok {
		err = repo.exec.GetContext(ctx, &n, countCorrectAnswersQuery, userID, kind)
	} else if q, ok := countQueries[cat]; ok {
		err = repo.exec.GetContext(ctx, &n, q, userID)
	} else {
		return 0, errors.Errorf("unknown category %q", cat)
	}

	if err != nil {
		return 0, err // the service names the category
	}
	return n, nil
}

func (repo scoreRepository) GetStoredScore(ctx context.Context, userID string) (int, error) {
	var total null.Int
	err := repo.exec.GetContext(ctx, &total, `SELECT total_score FROM profiles WHERE id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, score.ErrUnknownUser
		}
		return 0, errors.Wrap(err, "selecting total score")
	}
	return total.Int, nil
}

func (repo scoreRepository) SetStoredScore(ctx context.Context, userID string, total int) error {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE profiles SET total_score = $2, updated_at = now() WHERE id = $1`, userID, total)
	if err != nil {
		return errors.Wrap(err, "updating total score")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating total score")
	}
	if n == 0 {
		return score.ErrUnknownUser
	}
	return nil
}
