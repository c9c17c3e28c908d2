package googleads

import (
	"context"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads/adsclient"
	adsdomain "github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-metrics-api/internal/domain"
)

const metricsQueryTemplate = `
	SELECT
		customer.id,
		customer.descriptive_name,
		metrics.cost_micros,
		metrics.conversions,
		metrics.impressions,
		metrics.clicks
	FROM customer
	WHERE segments.date BETWEEN '%s' AND '%s'`

type GoogleAdsIntegrator struct {
	Client adsclient.Client
}

func New(client adsclient.Client) *GoogleAdsIntegrator {
	return &GoogleAdsIntegrator{
		Client: client,
	}
}

// BuildMetricsQuery monta a consulta GAQL para o intervalo inclusivo
func BuildMetricsQuery(filters *domain.MetricsFilters) string {
	return fmt.Sprintf(metricsQueryTemplate, filters.StartDateString(), filters.EndDateString())
}

// GetMetrics busca e consolida as métricas de uma conta no período
func (s *GoogleAdsIntegrator) GetMetrics(ctx context.Context, customerID string, filters *domain.MetricsFilters) (*domain.AccountMetrics, error) {
	resp, err := s.Client.SearchStream(ctx, customerID, BuildMetricsQuery(filters))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": customerID,
			"error":       err.Error(),
		}).Error("metrics: failed to get account metrics from Google Ads")
		return nil, pkgerrors.Wrapf(err, "fetch metrics for customer %s", customerID)
	}

	accountMetrics := FactoryAccountMetrics(customerID, resp)

	logrus.WithFields(logrus.Fields{
		"customer_id":   accountMetrics.CustomerID,
		"customer_name": accountMetrics.CustomerName,
		"rows":          len(resp.Rows()),
	}).Debug("metrics: successfully retrieved account metrics")

	return accountMetrics, nil
}

// FactoryAccountMetrics soma as linhas da resposta em métricas da conta.
// O último nome descritivo não vazio prevalece.
func FactoryAccountMetrics(customerID string, resp *adsdomain.SearchStreamResponse) *domain.AccountMetrics {
	var (
		costMicros   int64
		conversions  float64
		impressions  int64
		clicks       int64
		customerName string
	)

	for _, row := range resp.Rows() {
		if row.Customer != nil && row.Customer.DescriptiveName != "" {
			customerName = row.Customer.DescriptiveName
		}

		if row.Metrics == nil {
			continue
		}

		costMicros += row.Metrics.CostMicros.Int64()
		conversions += row.Metrics.Conversions.Float64()
		impressions += row.Metrics.Impressions.Int64()
		clicks += row.Metrics.Clicks.Int64()
	}

	if customerName == "" {
		customerName = domain.FallbackCustomerName(customerID)
	}

	spend := domain.MicrosToUnits(costMicros)

	return &domain.AccountMetrics{
		CustomerID:        domain.NormalizeCustomerID(customerID),
		CustomerName:      customerName,
		Spend:             spend,
		Conversions:       conversions,
		CostPerConversion: domain.CostPerConversion(spend, conversions),
		Impressions:       impressions,
		Clicks:            clicks,
	}
}
