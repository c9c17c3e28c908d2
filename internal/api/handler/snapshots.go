package handler

import (
	"errors"
	"net/http"

	"github.com/vfg2006/ads-metrics-api/internal/usecases/reporting"
	"github.com/vfg2006/ads-metrics-api/pkg/apiErrors"
	"github.com/vfg2006/ads-metrics-api/pkg/log"
)

// GetMetricsSnapshots lista os snapshots diários persistidos de uma conta
func GetMetricsSnapshots(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query := r.URL.Query()
		snapshots, err := service.GetSnapshots(
			r.Context(),
			query.Get("customerId"),
			query.Get("startDate"),
			query.Get("endDate"),
		)
		if errors.Is(err, reporting.ErrSnapshotsDisabled) {
			apiErrors.WriteError(w, apiErrors.ErrServiceDisabled, err.Error())
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		if err := apiErrors.WriteSuccess(w, snapshots); err != nil {
			logger.WithError(err).Error("snapshots: failed to encode response")
		}
	})
}
