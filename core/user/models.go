package user

import (
	"strings"
	"time"
)

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher = "teacher:"

	// Student
	RoleStudent = "student:"
)

// Profile is a user's profile row. TotalScore is nil until a first score computation was persisted.
type Profile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Roles      []string  `json:"roles"`
	TotalScore *int      `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// Score returns the stored total score, 0 if never computed.
func (p *Profile) Score() int {
	if p.TotalScore == nil {
		return 0
	}
	return *p.TotalScore
}

func (p *Profile) RoleStartsWith(prefix string) bool {
	for _, role := range p.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (p *Profile) IsAdmin() bool {
	return p.RoleStartsWith(RoleAdmin)
}

func (p *Profile) IsTeacher() bool {
	return p.RoleStartsWith(RoleTeacher)
}

func (p *Profile) IsStudent() bool {
	return p.RoleStartsWith(RoleStudent)
}

type QueryFilter struct {
	// RolePrefix keeps profiles having a role starting with it, eg: RoleStudent.
	RolePrefix string
}
