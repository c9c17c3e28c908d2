package reporting

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

import (
	"context"

	"github.com/vfg2006/ads-metrics-api/internal/domain"
)

// MetricsFetcher obtém as métricas consolidadas de uma única conta
type MetricsFetcher interface {
	GetMetrics(ctx context.Context, customerID string, filters *domain.MetricsFilters) (*domain.AccountMetrics, error)
}

// Reporter é a interface consumida pela camada HTTP
type Reporter interface {
	// GetAggregateMetrics valida a requisição, consulta todas as contas e agrega o resultado
	GetAggregateMetrics(ctx context.Context, rawCustomerIDs, startDate, endDate string) (*domain.MetricsReport, error)

	// GetSnapshots lista os snapshots diários persistidos de uma conta
	GetSnapshots(ctx context.Context, customerID, startDate, endDate string) ([]*domain.MetricsSnapshot, error)
}
