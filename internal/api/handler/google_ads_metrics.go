package handler

import (
	"errors"
	"net/http"

	"github.com/vfg2006/ads-metrics-api/internal/domain"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/reporting"
	"github.com/vfg2006/ads-metrics-api/pkg/apiErrors"
	"github.com/vfg2006/ads-metrics-api/pkg/log"
)

// GetGoogleAdsMetrics atende GET /api/google-ads/metrics?customerIds=&startDate=&endDate=
func GetGoogleAdsMetrics(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query := r.URL.Query()
		report, err := service.GetAggregateMetrics(
			r.Context(),
			query.Get("customerIds"),
			query.Get("startDate"),
			query.Get("endDate"),
		)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		if err := apiErrors.WriteSuccess(w, report); err != nil {
			logger.WithError(err).Error("metrics: failed to encode response")
		}
	})
}

// writeServiceError devolve 400 para erros de validação e 500 para o restante,
// sempre com a mensagem original do erro
func writeServiceError(w http.ResponseWriter, logger log.Logger, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		logger.WithField("reason", validationErr.Reason).Warn("metrics: invalid request")
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, validationErr.Error())
		return
	}

	logger.WithError(err).Error("metrics: request failed")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, err.Error())
}
