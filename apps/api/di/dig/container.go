package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/alama/apps/api/echo"
	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/leaderboard"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
	logsvc "github.com/trezcool/alama/services/logger"
	rediscache "github.com/trezcool/alama/storage/cache/redis"
	"github.com/trezcool/alama/storage/database"
	"github.com/trezcool/alama/storage/database/inmem"
	sqlxrepos "github.com/trezcool/alama/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories groups the storage implementations picked by database.engine.
type Repositories struct {
	dig.Out
	Score       score.Repository
	User        user.Repository
	Leaderboard leaderboard.Repository
	Pinger      core.Pinger
	Closer      io.Closer
}

func newZapLogger(conf *core.Config) (*zap.Logger, error) {
	return logsvc.NewZapLogger(conf)
}

func newLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zl.Named("api"), conf)
}

func newDBLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zl.Named("db"), conf)
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.Engine == database.EngineMemory {
		db := inmemdb.New()
		return Repositories{
			Score:       db,
			User:        db,
			Leaderboard: db,
			Pinger:      db,
			Closer:      db,
		}
	}

	db, err := database.Setup(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Repositories{
		Score:       sqlxrepos.NewScoreRepository(db),
		User:        sqlxrepos.NewUserRepository(db),
		Leaderboard: sqlxrepos.NewLeaderboardRepository(db),
		Pinger:      db,
		Closer:      db,
	}
}

// newLeaderboardCache returns a nil cache when redis is disabled or unreachable.
func newLeaderboardCache(conf *core.Config, logger core.Logger) leaderboard.Cache {
	if !conf.Redis.Enabled {
		return nil
	}
	client, err := rediscache.NewClient(context.Background(), conf)
	if err != nil {
		logger.Warn("leaderboard cache disabled", err)
		return nil
	}
	return rediscache.NewLeaderboardCache(client)
}

func newScoreService(repo score.Repository, logger core.Logger, boardSvc leaderboard.Service) score.Service {
	return score.NewService(repo, score.DefaultWeights, logger, boardSvc)
}

func newValidate(translator ut.Translator) *validator.Validate {
	return core.NewValidate(translator)
}

func newServerDeps(
	conf *core.Config,
	logger core.Logger,
	store core.Pinger,
	scoreSvc score.Service,
	userSvc user.Service,
	boardSvc leaderboard.Service,
	validate *validator.Validate,
	translator ut.Translator,
) echoapi.ServerDeps {
	return echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Store:          store,
		ScoreSvc:       scoreSvc,
		UserSvc:        userSvc,
		LeaderboardSvc: boardSvc,
		Validate:       validate,
		Translator:     translator,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newLeaderboardCache))
	must(c.Provide(leaderboard.NewService))
	must(c.Provide(newScoreService))
	must(c.Provide(user.NewService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidate))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
