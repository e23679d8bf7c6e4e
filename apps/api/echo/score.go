package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/score"
)

// max concurrent computations of a recompute request
const recomputeConcurrency = 8

type scoreApi struct {
	svc      score.Service
	validate *validator.Validate
}

func registerScoreAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc score.Service, validate *validator.Validate) {
	api := scoreApi{svc: svc, validate: validate}

	sg := g.Group("/scores", jwt)
	sg.GET("/me", api.mine)
	sg.POST("/me/refresh", api.refreshMine)
	sg.POST("/recompute", api.recompute, adminMiddleware())
	sg.POST("/:id/recompute", api.recomputeOne, adminMiddleware())
}

func (api *scoreApi) tracker(ctx echo.Context) (*score.Tracker, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting context claims")
	}
	return score.NewTracker(api.svc, score.StaticSession(claims.Subject)), nil
}

func (api *scoreApi) mine(ctx echo.Context) error {
	tracker, err := api.tracker(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newTrackerResponse(tracker.Mount(ctx.Request().Context())))
}

func (api *scoreApi) refreshMine(ctx echo.Context) error {
	tracker, err := api.tracker(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newTrackerResponse(tracker.Refresh(ctx.Request().Context())))
}

func (api *scoreApi) recomputeOne(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "id", Error: "id must be a valid UUID"})
	}
	res := api.svc.Compute(ctx.Request().Context(), id)
	return ctx.JSON(http.StatusOK, newScoreResponse(res))
}

func (api *scoreApi) recompute(ctx echo.Context) error {
	var data RecomputeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecomputeRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	results := api.svc.RecomputeAll(ctx.Request().Context(), data.UserIDs, recomputeConcurrency)
	resp := RecomputeResponse{Results: make([]ScoreResponse, len(results))}
	for i, res := range results {
		resp.Results[i] = newScoreResponse(res)
	}
	return ctx.JSON(http.StatusOK, resp)
}

func newTrackerResponse(st score.State) TrackerResponse {
	return TrackerResponse{Score: st.Score, Loading: st.Loading, Outcome: string(st.Outcome)}
}

func newScoreResponse(res score.Result) ScoreResponse {
	return ScoreResponse{
		UserID:    res.UserID,
		Score:     res.Score,
		Outcome:   string(res.Outcome),
		Persisted: res.Persisted,
	}
}
