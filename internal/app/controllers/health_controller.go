package controllers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/pkg/logger"
)

const healthTimeout = 2 * time.Second

// HealthCheck probes one dependency. Optional checks are reported without failing the
// whole service.
type HealthCheck struct {
	Name     string
	Optional bool
	Probe    func(ctx context.Context) error
}

// ComponentHealth is the outcome of one check
type ComponentHealth struct {
	Name   string `json:"name" example:"postgres"`
	Status string `json:"status" example:"UP"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status     string            `json:"status" example:"UP"`
	Components []ComponentHealth `json:"components"`
}

// HealthController reports the state of the service and its dependencies
type HealthController struct {
	checks []HealthCheck
}

// NewHealthController creates a new HealthController
func NewHealthController(checks ...HealthCheck) *HealthController {
	return &HealthController{checks: checks}
}

// Health runs every check concurrently
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=controllers.HealthResponse} "Service is up"
// @Failure 503 {object} dto.APIResponse{data=controllers.HealthResponse} "A required dependency is down"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()

	var (
		mu   sync.Mutex
		g    errgroup.Group
		res  = HealthResponse{Status: "UP", Components: make([]ComponentHealth, 0, len(c.checks))}
		down bool
	)
	for _, check := range c.checks {
		check := check
		g.Go(func() error {
			component := ComponentHealth{Name: check.Name, Status: "UP"}
			if err := check.Probe(probeCtx); err != nil {
				component.Status = "DOWN"
				component.Error = err.Error()
				logger.Ctx(probeCtx).Warn().Err(err).Str("component", check.Name).Msg("Health check failed")
			}

			mu.Lock()
			defer mu.Unlock()
			res.Components = append(res.Components, component)
			if component.Status == "DOWN" && !check.Optional {
				down = true
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(res.Components, func(i, j int) bool { return res.Components[i].Name < res.Components[j].Name })

	status := http.StatusOK
	if down {
		res.Status = "DOWN"
		status = http.StatusServiceUnavailable
	}
	body := dto.NewSuccessResponse(res, "")
	body.Success = !down
	ctx.JSON(status, body)
}
