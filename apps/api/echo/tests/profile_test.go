package tests

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core/user"
	"github.com/trezcool/alama/tests"
)

func Test_profileApi_mine(t *testing.T) {
	app := setup(t)
	ada := testutil.CreateProfile(t, app.db, "Ada", "ada", []string{user.RoleStudent}, 42)

	app.run(t, []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/v1/profiles/me",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "unknown profile",
			method:   http.MethodGet,
			path:     "/v1/profiles/me",
			token:    app.getToken(t, user.Profile{ID: uuid.NewString()}),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "ok",
			method:   http.MethodGet,
			path:     "/v1/profiles/me",
			token:    app.getToken(t, ada),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, ada),
		},
	})
}
