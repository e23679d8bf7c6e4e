package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/alama/apps/api/echo"
	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/leaderboard"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
	"github.com/trezcool/alama/storage/database"
)

var (
	migrateFunc = database.RunMigrations // mockable

	errHelp = errors.New("help provided")
	errNoDB = errors.New("migrations need a database server; database.engine is \"memory\"")
)

type commandLine struct {
	conf     *core.Config
	db       *sqlx.DB // nil with the in-memory engine
	scoreSvc score.Service
	userSvc  user.Service
	out      io.Writer
}

// newScoreService returns a score.Service that keeps the leaderboard cache (if any) in line
// with the totals it stores.
func newScoreService(
	repo score.Repository,
	boardRepo leaderboard.Repository,
	cache leaderboard.Cache,
	logger core.Logger,
) score.Service {
	if cache == nil {
		return score.NewService(repo, score.DefaultWeights, logger)
	}
	boardSvc := leaderboard.NewService(boardRepo, cache, logger)
	return score.NewService(repo, score.DefaultWeights, logger, boardSvc)
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command: up, up-by-one, up-to V, down, down-to V, redo, reset, status, version")
	_, _ = fmt.Fprintln(cli.out, "  recompute -user ID | -all [-students] [-concurrency N] - recompute & store total scores")
	_, _ = fmt.Fprintln(cli.out, "  token -user ID - print a signed API token for a profile (DEV)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	recomputeCmd := flag.NewFlagSet("recompute", flag.ContinueOnError)
	recomputeCmd.SetOutput(cli.out)
	recomputeUser := recomputeCmd.String("user", "", "The profile id to recompute.")
	recomputeAll := recomputeCmd.Bool("all", false, "Recompute every profile.")
	recomputeStudents := recomputeCmd.Bool("students", false, "With -all: only student profiles.")
	recomputeConcurrency := recomputeCmd.Int("concurrency", 8, "Max concurrent computations.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenUser := tokenCmd.String("user", "", "The profile id the token is for.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "recompute":
		if err := recomputeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if (*recomputeUser == "") == !*recomputeAll { // exactly one of -user, -all
			recomputeCmd.Usage()
			return errHelp
		}
		return cli.recompute(core.CleanString(*recomputeUser, true), *recomputeStudents, *recomputeConcurrency)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenUser == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(core.CleanString(*tokenUser, true))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDB
	}
	return migrateFunc(cli.db, args[0], args[1:]...)
}

func (cli *commandLine) recompute(userID string, studentsOnly bool, concurrency int) error {
	ctx := context.Background()

	var ids []string
	if userID != "" {
		if _, err := cli.userSvc.Get(ctx, userID); err != nil {
			return fmt.Errorf("getting profile %q: %w", userID, err)
		}
		ids = []string{userID}
	} else {
		var filter user.QueryFilter
		if studentsOnly {
			filter.RolePrefix = user.RoleStudent
		}
		var err error
		if ids, err = cli.userSvc.QueryIDs(ctx, filter); err != nil {
			return fmt.Errorf("querying profiles: %w", err)
		}
	}

	var failed int
	for _, res := range cli.scoreSvc.RecomputeAll(ctx, ids, concurrency) {
		if res.Outcome != score.OutcomeComputed || !res.Persisted {
			failed++
		}
		_, _ = fmt.Fprintf(cli.out, "%s\t%d\t%s\tpersisted=%t\n", res.UserID, res.Score, res.Outcome, res.Persisted)
	}
	_, _ = fmt.Fprintf(cli.out, "recomputed %d score(s)\n", len(ids)-failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d score(s) could not be recomputed", failed, len(ids))
	}
	return nil
}

func (cli *commandLine) token(userID string) error {
	prof, err := cli.userSvc.Get(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("getting profile %q: %w", userID, err)
	}
	token, err := echoapi.GenerateToken(cli.conf, prof)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, token)
	return nil
}
