package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/leaderboard"
	"github.com/trezcool/alama/core/user"
	logsvc "github.com/trezcool/alama/services/logger"
	rediscache "github.com/trezcool/alama/storage/cache/redis"
	"github.com/trezcool/alama/storage/database"
	"github.com/trezcool/alama/storage/database/inmem"
	sqlxrepos "github.com/trezcool/alama/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)

	zl, err := logsvc.NewZapLogger(conf)
	errAndDie(err)
	defer func() { _ = zl.Sync() }()
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)

	cli := commandLine{conf: conf, out: os.Stdout}

	// set up leaderboard cache
	var cache leaderboard.Cache
	if conf.Redis.Enabled {
		client, cErr := rediscache.NewClient(context.Background(), conf)
		errAndDie(cErr)
		defer func() { _ = client.Close() }()
		cache = rediscache.NewLeaderboardCache(client)
	}

	// set up DB
	if conf.Database.Engine == database.EngineMemory {
		mem := inmemdb.New()
		cli.scoreSvc = newScoreService(mem, mem, cache, logger)
		cli.userSvc = user.NewService(mem)
	} else {
		var db *sqlx.DB
		db, err = database.Open(context.Background(), conf)
		errAndDie(err)
		defer func() { _ = db.Close() }()

		cli.db = db
		cli.scoreSvc = newScoreService(
			sqlxrepos.NewScoreRepository(db),
			sqlxrepos.NewLeaderboardRepository(db),
			cache,
			logger,
		)
		cli.userSvc = user.NewService(sqlxrepos.NewUserRepository(db))
	}

	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
