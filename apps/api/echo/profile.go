package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/user"
)

type profileApi struct {
	svc user.Service
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service) {
	api := profileApi{svc: svc}

	pg := g.Group("/profiles", jwt)
	pg.GET("/me", api.mine)
}

func (api *profileApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	prof, err := api.svc.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}
