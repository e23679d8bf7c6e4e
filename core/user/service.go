package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("user not found")
)

type (
	Repository interface {
		GetProfile(ctx context.Context, id string) (Profile, error)
		// QueryProfileIDs returns the ids of the profiles matching filter, oldest first.
		QueryProfileIDs(ctx context.Context, filter QueryFilter) ([]string, error)
	}

	Service interface {
		Get(ctx context.Context, id string) (Profile, error)
		QueryIDs(ctx context.Context, filter QueryFilter) ([]string, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Get(ctx context.Context, id string) (Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Profile{}, ErrNotFound
	}
	return svc.repo.GetProfile(ctx, id)
}

func (svc *service) QueryIDs(ctx context.Context, filter QueryFilter) ([]string, error) {
	return svc.repo.QueryProfileIDs(ctx, filter)
}
