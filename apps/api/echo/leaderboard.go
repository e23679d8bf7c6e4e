package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/leaderboard"
)

type leaderboardApi struct {
	svc      leaderboard.Service
	validate *validator.Validate
	conf     core.LeaderboardConfig
}

func registerLeaderboardAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc leaderboard.Service,
	validate *validator.Validate,
	conf core.LeaderboardConfig,
) {
	api := leaderboardApi{svc: svc, validate: validate, conf: conf}

	lg := g.Group("/leaderboard", jwt)
	lg.GET("", api.top)
	lg.GET("/me", api.mine)
}

func (api *leaderboardApi) top(ctx echo.Context) error {
	var q LeaderboardQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to LeaderboardQuery")
	}
	if err := api.validate.Struct(q); err != nil {
		return err
	}

	limit := q.Limit
	if limit == 0 {
		limit = api.conf.DefaultLimit
	}
	if api.conf.MaxLimit > 0 && limit > api.conf.MaxLimit {
		limit = api.conf.MaxLimit
	}

	board, err := api.svc.Top(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "getting leaderboard")
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *leaderboardApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	st, err := api.svc.Standing(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting standing")
	}
	return ctx.JSON(http.StatusOK, st)
}
