package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	profiles map[string]Profile
}

func (m repoMock) GetProfile(_ context.Context, id string) (Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return Profile{}, ErrNotFound
}

func (m repoMock) QueryProfileIDs(_ context.Context, filter QueryFilter) ([]string, error) {
	var ids []string
	for id, p := range m.profiles {
		if filter.RolePrefix == "" || p.RoleStartsWith(filter.RolePrefix) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func Test_service_Get(t *testing.T) {
	id := uuid.New().String()
	total := 185
	svc := NewService(repoMock{profiles: map[string]Profile{
		id: {ID: id, Name: "Baraka", Roles: []string{RoleStudent}, TotalScore: &total},
	}})

	p, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 185, p.Score())
	assert.True(t, p.IsStudent())
	assert.False(t, p.IsAdmin())

	_, err = svc.Get(context.Background(), "not-a-uuid")
	assert.Equal(t, ErrNotFound, err)

	_, err = svc.Get(context.Background(), uuid.New().String())
	assert.Equal(t, ErrNotFound, err)
}

func TestProfile_Score(t *testing.T) {
	var p Profile
	assert.Equal(t, 0, p.Score())

	p.Roles = []string{RoleAdminPrincipal}
	assert.True(t, p.IsAdmin())
	assert.False(t, p.IsTeacher())
}
