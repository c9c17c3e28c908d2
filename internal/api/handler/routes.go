package handler

import (
	"net/http"

	"github.com/vfg2006/ads-metrics-api/internal/api/handler/router"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/reporting"
	"github.com/vfg2006/ads-metrics-api/pkg/middleware"
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

func Prometheus() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: PrometheusHandler(),
		},
	}
}

func GoogleAdsMetrics(service reporting.Reporter) []router.Route {
	return []router.Route{
		{
			Path:    "/api/google-ads/metrics",
			Method:  http.MethodGet,
			Handler: GetGoogleAdsMetrics(service),
		},
	}
}

func Snapshots(service reporting.Reporter) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/snapshots",
			Method:  http.MethodGet,
			Handler: GetMetricsSnapshots(service),
		},
	}
}

func CronJobs(services CronJobServices, authenticator authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/run/:type",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly(authenticator)},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly(authenticator)},
		},
	}
}
