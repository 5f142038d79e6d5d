package handler

import (
	"net/http"

	"github.com/vfg2006/campaign-manager-api/infrastructure/repository"
	"github.com/vfg2006/campaign-manager-api/internal/api/handler/router"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/launching"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/optimizing"
	"github.com/vfg2006/campaign-manager-api/pkg/metrics"
	"github.com/vfg2006/campaign-manager-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

// Metrics expõe o registro Prometheus da aplicação.
func Metrics(m *metrics.Metrics) []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: m.Handler(),
		},
	}
}

func Launches(service launching.Launcher) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/launch",
			Method:      http.MethodPost,
			Handler:     LaunchCampaign(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/launch/jobs/:id",
			Method:      http.MethodGet,
			Handler:     GetLaunchJob(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Connections(repo repository.ConnectionRepository) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/connections",
			Method:      http.MethodGet,
			Handler:     ListConnections(repo),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Optimization(service optimizing.Optimizer) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/optimization/cycles/:id/logs",
			Method:      http.MethodGet,
			Handler:     GetCycleLogs(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/connections/:id/optimization/logs",
			Method:      http.MethodGet,
			Handler:     GetConnectionOptimizationLogs(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
