package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/leaderboard"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
)

type ServerDeps struct {
	Conf           *core.Config
	Logger         core.Logger
	Store          core.Pinger
	ScoreSvc       score.Service
	UserSvc        user.Service
	LeaderboardSvc leaderboard.Service
	Validate       *validator.Validate
	Translator     ut.Translator
}

type Server struct {
	deps     ServerDeps
	app      *echo.Echo
	jwt      echo.MiddlewareFunc
	signer   *tokenSigner
	shutdown chan os.Signal
	errors   chan error
}

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		signer:   newTokenSigner(deps.Conf),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.app.Server.Addr = deps.Conf.Server.Address
	s.app.Server.ReadTimeout = deps.Conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = deps.Conf.Server.WriteTimeout
	s.app.HideBanner = true

	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	s.jwt = middleware.JWTWithConfig(s.signer.middlewareConfig())

	registerScoreAPI(v1, s.jwt, s.deps.ScoreSvc, s.deps.Validate)
	registerProfileAPI(v1, s.jwt, s.deps.UserSvc)
	registerLeaderboardAPI(v1, s.jwt, s.deps.LeaderboardSvc, s.deps.Validate, conf.Leaderboard)
}

// Start listens until the server is shut down; a failure is sent on Errors().
func (s *Server) Start() {
	if err := s.app.StartServer(s.app.Server); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	if s.deps.Store != nil {
		if err := s.deps.Store.PingContext(ctx.Request().Context()); err != nil {
			s.deps.Logger.Error("pinging store", errors.Wrap(err, "pinging store"))
			return ctx.String(http.StatusServiceUnavailable, "store unavailable")
		}
	}
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
