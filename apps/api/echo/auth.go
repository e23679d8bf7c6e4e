package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

const contextTokenKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the auth provider; Subject is the profile id.
type Claims struct {
	jwt.StandardClaims
	Username  string   `json:"username,omitempty"`
	Email     string   `json:"email,omitempty"`
	IsStudent bool     `json:"is_student,omitempty"`
	IsTeacher bool     `json:"is_teacher,omitempty"`
	IsAdmin   bool     `json:"is_admin,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

type tokenSigner struct {
	key    []byte
	issuer string
	expiry time.Duration
}

func newTokenSigner(conf *core.Config) *tokenSigner {
	return &tokenSigner{
		key:    []byte(conf.SecretKey),
		issuer: conf.AppName,
		expiry: conf.Server.JWTExpirationDelta,
	}
}

func (ts *tokenSigner) middlewareConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    ts.key,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// NewClaims returns the claims of a token representing prof.
func NewClaims(prof user.Profile, issuer string, expiry time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   prof.ID,
			ExpiresAt: now.Add(expiry).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username:  prof.Username,
		Email:     prof.Email,
		IsStudent: prof.IsStudent(),
		IsTeacher: prof.IsTeacher(),
		IsAdmin:   prof.IsAdmin(),
		Roles:     prof.Roles,
	}
}

// GenerateToken signs a JWT for prof with the app's secret key.
func GenerateToken(conf *core.Config, prof user.Profile) (string, error) {
	ts := newTokenSigner(conf)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, NewClaims(prof, ts.issuer, ts.expiry))

	ss, err := token.SignedString(ts.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
