package httpserver

import (
	goerrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/declnet"
	"github.com/kbukum/graphflow/errors"
	"github.com/kbukum/graphflow/executor"
	"github.com/kbukum/graphflow/logger"
	"github.com/kbukum/graphflow/observability"
	"github.com/kbukum/graphflow/pipeerr"
	"github.com/kbukum/graphflow/planner"
	"github.com/kbukum/graphflow/version"
)

// writeError maps err to an errors.AppError (translating the pipeline
// engine's own pipeerr kinds where recognized) and writes its ToResponse()
// at the appropriate HTTP status.
func writeError(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	var unsolvable *pipeerr.UnsolvableGraphError
	var cyclic *pipeerr.CyclicDependencyError
	var missing *pipeerr.MissingOutputsError
	switch {
	case goerrors.As(err, &unsolvable):
		return errors.UnsolvableGraph(unsolvable.Output, unsolvable.Chain).WithCause(err)
	case goerrors.As(err, &cyclic):
		return errors.CyclicDependency(cyclic.Cycle).WithCause(err)
	case goerrors.As(err, &missing):
		return errors.MissingOutputs(missing.Op, missing.Missing).WithCause(err)
	default:
		return errors.Internal(err)
	}
}

// registerRoutes wires the health, compile and run endpoints onto engine.
// registry resolves the component names referenced by an inbound network
// definition; networks submitted over HTTP may not use includes, since no
// Loader is reachable from a request body.
func registerRoutes(engine *gin.Engine, registry *declnet.BodyRegistry, log *logger.Logger, metrics *observability.Metrics) {
	engine.GET("/healthz", health(registry))
	engine.GET("/v1/components", listComponents(registry))
	engine.POST("/v1/compile", compileNetwork(registry))
	engine.POST("/v1/run", runNetwork(registry, log, metrics))
}

// health reports the server's own status plus one component entry for the
// body registry, degraded when it holds no components to execute.
func health(registry *declnet.BodyRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth("httpserver", version.GetShortVersion())

		registryHealth := observability.Health{
			Name:   "component_registry",
			Status: observability.HealthStatusUp,
			Details: map[string]string{
				"components": fmt.Sprintf("%d", len(registry.List())),
			},
		}
		if len(registry.List()) == 0 {
			registryHealth.Status = observability.HealthStatusDegraded
			registryHealth.Message = "no components registered"
		}
		sh.AddComponent(registryHealth)

		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, sh)
	}
}

func listComponents(registry *declnet.BodyRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"components": registry.List()})
	}
}

// compileRequest is the shared request body for /v1/compile and /v1/run:
// an inline network definition plus the compile parameters.
type compileRequest struct {
	Network      declnet.NetworkDef  `json:"network" binding:"required"`
	KnownInputs  []string            `json:"known_inputs"`
	AskedOutputs []string            `json:"asked_outputs"`
	Config       config.EngineConfig `json:"config"`
}

func compileNetwork(registry *declnet.BodyRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req compileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, errors.InvalidInput("", err.Error()))
			return
		}

		resolved, err := declnet.Resolve(&req.Network, registry, nil)
		if err != nil {
			writeError(c, err)
			return
		}

		req.Config.ApplyDefaults()
		p, err := planner.Compile(resolved.Network, planner.Request{
			KnownInputs:  req.KnownInputs,
			AskedOutputs: req.AskedOutputs,
			Config:       req.Config,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		ops := make([]string, 0, p.Len())
		for _, op := range p.Operations() {
			ops = append(ops, op.Name())
		}
		c.JSON(http.StatusOK, gin.H{
			"operations": ops,
			"comments":   p.Comments,
			"cache_key":  p.CacheKey,
		})
	}
}

// runRequest extends compileRequest with the concrete input values an
// execution needs on top of KnownInputs' names.
type runRequest struct {
	compileRequest
	Inputs map[string]any `json:"inputs"`
}

func runNetwork(registry *declnet.BodyRegistry, log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req runRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, errors.InvalidInput("", err.Error()))
			return
		}

		resolved, err := declnet.Resolve(&req.Network, registry, nil)
		if err != nil {
			writeError(c, err)
			return
		}

		req.Config.ApplyDefaults()
		ex := executor.New(req.Config, log)
		ex.Metrics = metrics
		sol, err := ex.Execute(c.Request.Context(), resolved.Network, planner.Request{
			KnownInputs:  req.KnownInputs,
			AskedOutputs: req.AskedOutputs,
			Config:       req.Config,
		}, req.Inputs)
		if err != nil {
			writeError(c, err)
			return
		}

		results := make(map[string]string, len(sol.Results()))
		for name, r := range sol.Results() {
			results[name] = string(r.Status)
		}
		c.JSON(http.StatusOK, gin.H{
			"values":     sol.Values(),
			"results":    results,
			"overwrites": sol.Overwrites(),
		})
	}
}
