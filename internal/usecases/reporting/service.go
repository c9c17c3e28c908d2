package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/ads-metrics-api/infrastructure/repository"
	"github.com/vfg2006/ads-metrics-api/internal/config"
	"github.com/vfg2006/ads-metrics-api/internal/domain"
	"github.com/vfg2006/ads-metrics-api/pkg/log"
	"github.com/vfg2006/ads-metrics-api/pkg/utils"
)

// ErrSnapshotsDisabled indica que o armazenamento de snapshots não foi configurado
var ErrSnapshotsDisabled = errors.New("metrics snapshots are disabled: set SNAPSHOT_SYNC_ENABLED=true and configure the database")

type Service struct {
	cfg          *config.Config
	fetcher      MetricsFetcher
	snapshotRepo repository.MetricsSnapshotRepository
}

var _ Reporter = (*Service)(nil)

func NewService(cfg *config.Config, fetcher MetricsFetcher) *Service {
	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
	}
}

// WithSnapshots habilita a leitura dos snapshots persistidos
func (s *Service) WithSnapshots(repo repository.MetricsSnapshotRepository) *Service {
	s.snapshotRepo = repo
	return s
}

func (s *Service) GetAggregateMetrics(ctx context.Context, rawCustomerIDs, startDate, endDate string) (*domain.MetricsReport, error) {
	filters, err := domain.NewMetricsFilters(startDate, endDate)
	if err != nil {
		return nil, err
	}

	customerIDs, err := s.resolveCustomerIDs(rawCustomerIDs)
	if err != nil {
		return nil, err
	}

	logger := log.ForContext(ctx)
	logger.WithFields(log.Fields{
		"customer_ids": len(customerIDs),
		"start_date":   filters.StartDateString(),
		"end_date":     filters.EndDateString(),
	}).Debug("metrics: fetching accounts")

	startedAt := time.Now()

	accounts, err := s.fetchAll(ctx, customerIDs, filters)
	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		account.CTR = domain.ClickThroughRate(account.Clicks, account.Impressions)
	}

	report := &domain.MetricsReport{
		Summary:  domain.NewMetricsSummary(accounts),
		Accounts: accounts,
	}

	logger.WithFields(log.Fields{
		"customer_ids": len(customerIDs),
		"total_spend":  report.Summary.TotalSpend,
		"duration_ms":  time.Since(startedAt).Milliseconds(),
	}).Info("metrics: aggregated account metrics")

	return report, nil
}

// resolveCustomerIDs prioriza o parâmetro explícito e cai para a lista configurada
func (s *Service) resolveCustomerIDs(rawCustomerIDs string) ([]string, error) {
	var customerIDs []string
	if rawCustomerIDs != "" {
		customerIDs = utils.SplitAndTrim(rawCustomerIDs)
	} else {
		customerIDs = s.cfg.GoogleAds.CustomerIDs
	}

	if len(customerIDs) == 0 {
		return nil, domain.NewValidationError(domain.ReasonNoCustomerIDs, domain.MsgNoCustomerIDs)
	}

	for _, id := range customerIDs {
		if domain.NormalizeCustomerID(id) == "" {
			return nil, domain.NewValidationError(domain.ReasonInvalidID, domain.MsgInvalidCustomerID)
		}
	}

	return customerIDs, nil
}

// fetchAll consulta as contas em paralelo. A primeira falha cancela as demais
// e nenhum resultado parcial é devolvido.
func (s *Service) fetchAll(ctx context.Context, customerIDs []string, filters *domain.MetricsFilters) ([]*domain.AccountMetrics, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit := s.cfg.GoogleAds.MaxConcurrentRequests; limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]*domain.AccountMetrics, len(customerIDs))
	for i, customerID := range customerIDs {
		g.Go(func() error {
			metrics, err := s.fetcher.GetMetrics(gctx, customerID, filters)
			if err != nil {
				return err
			}
			results[i] = metrics
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Warn("metrics: aggregation aborted")
		return nil, err
	}

	return results, nil
}

func (s *Service) GetSnapshots(ctx context.Context, customerID, startDate, endDate string) ([]*domain.MetricsSnapshot, error) {
	filters, err := domain.NewMetricsFilters(startDate, endDate)
	if err != nil {
		return nil, err
	}

	if domain.NormalizeCustomerID(customerID) == "" {
		return nil, domain.NewValidationError(domain.ReasonInvalidID, domain.MsgInvalidCustomerID)
	}

	if s.snapshotRepo == nil {
		return nil, ErrSnapshotsDisabled
	}

	return s.snapshotRepo.GetByDateRange(ctx, customerID, filters.StartDate, filters.EndDate)
}
