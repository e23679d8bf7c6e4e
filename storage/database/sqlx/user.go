package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

type profileRow struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Username   null.String    `db:"username"`
	Email      null.String    `db:"email"`
	Roles      pq.StringArray `db:"roles"`
	TotalScore null.Int       `db:"total_score"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row profileRow) unpack() user.Profile {
	return user.Profile{
		ID:         row.ID,
		Name:       row.Name,
		Username:   row.Username.String,
		Email:      row.Email.String,
		Roles:      []string(row.Roles),
		TotalScore: row.TotalScore.Ptr(),
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) GetProfile(ctx context.Context, id string) (user.Profile, error) {
	var row profileRow
	err := repo.exec.GetContext(ctx, &row, `SELECT id, name, username, email, roles, total_score, created_at, updated_at
		FROM profiles WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.Profile{}, user.ErrNotFound
		}
		return user.Profile{}, errors.Wrap(err, "selecting profile")
	}
	return row.unpack(), nil
}

func (repo userRepository) QueryProfileIDs(ctx context.Context, filter user.QueryFilter) ([]string, error) {
	var ids []string
	var err error

	if filter.RolePrefix != "" {
		err = repo.exec.SelectContext(ctx, &ids, `SELECT id FROM profiles
			WHERE EXISTS (SELECT 1 FROM unnest(roles) AS role WHERE role LIKE $1)
			ORDER BY created_at, id`, filter.RolePrefix+"%")
	} else {
		err = repo.exec.SelectContext(ctx, &ids, `SELECT id FROM profiles ORDER BY created_at, id`)
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting profile ids")
	}
	return ids, nil
}

// CreateProfile inserts a profile row; the id is generated when empty.
// Profiles are owned by the auth provider; this is used by seeds & tests.
func (repo userRepository) CreateProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	var row profileRow
	err := repo.exec.GetContext(ctx, &row, `INSERT INTO profiles (id, name, username, email, roles, total_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, name, username, email, roles, total_score, created_at, updated_at`,
		p.ID, p.Name, null.NewString(p.Username, p.Username != ""), null.NewString(p.Email, p.Email != ""),
		pq.StringArray(p.Roles), null.IntFromPtr(p.TotalScore), now)
	if err != nil {
		return user.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return row.unpack(), nil
}
