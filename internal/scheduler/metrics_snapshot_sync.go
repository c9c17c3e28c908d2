package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ads-metrics-api/infrastructure/repository"
	"github.com/vfg2006/ads-metrics-api/internal/config"
	"github.com/vfg2006/ads-metrics-api/internal/domain"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/reporting"
	"github.com/vfg2006/ads-metrics-api/pkg/metrics"
	"github.com/vfg2006/ads-metrics-api/pkg/utils"
)

// SnapshotSyncConfig representa a configuração do agendador de snapshots
type SnapshotSyncConfig struct {
	CronSchedule      string
	LookbackDays      int
	MaxConcurrentJobs int
	SyncEnabled       bool
}

// SyncResult resume uma execução da sincronização
type SyncResult struct {
	RunID    string `json:"runId"`
	Accounts int    `json:"accounts"`
	Days     int    `json:"days"`
	Saved    int64  `json:"saved"`
	Failed   int64  `json:"failed"`
}

// MetricsSnapshotSyncService persiste diariamente as métricas de cada conta configurada
type MetricsSnapshotSyncService struct {
	scheduler    *gocron.Scheduler
	config       SnapshotSyncConfig
	customerIDs  []string
	fetcher      reporting.MetricsFetcher
	snapshotRepo repository.MetricsSnapshotRepository
	now          func() time.Time

	baseCtx             context.Context
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastResult          *SyncResult
}

func NewMetricsSnapshotSyncService(
	fetcher reporting.MetricsFetcher,
	snapshotRepo repository.MetricsSnapshotRepository,
	appConfig *config.Config,
) *MetricsSnapshotSyncService {
	syncConfig := SnapshotSyncConfig{
		CronSchedule:      appConfig.SnapshotSync.CronSchedule,
		LookbackDays:      appConfig.SnapshotSync.LookbackDays,
		MaxConcurrentJobs: appConfig.SnapshotSync.MaxConcurrentJobs,
		SyncEnabled:       appConfig.SnapshotSync.Enabled,
	}
	if syncConfig.LookbackDays < 1 {
		syncConfig.LookbackDays = 1
	}
	if syncConfig.MaxConcurrentJobs < 1 {
		syncConfig.MaxConcurrentJobs = 1
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"lookback_days":       syncConfig.LookbackDays,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"sync_enabled":        syncConfig.SyncEnabled,
		"customer_ids":        len(appConfig.GoogleAds.CustomerIDs),
	}).Info("Configuração do agendador de snapshots carregada")

	return &MetricsSnapshotSyncService{
		scheduler:    gocron.NewScheduler(time.Local),
		config:       syncConfig,
		customerIDs:  appConfig.GoogleAds.CustomerIDs,
		fetcher:      fetcher,
		snapshotRepo: snapshotRepo,
		now:          time.Now,
		baseCtx:      context.Background(),
	}
}

// Start inicia o agendador
func (s *MetricsSnapshotSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização de snapshots desabilitada por configuração")
		return nil
	}

	s.baseCtx = ctx

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização de snapshots")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de snapshots: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de snapshots")
		s.scheduler.Stop()
	}()

	return nil
}

// ErrSyncRunning indica que já existe uma sincronização em andamento
var ErrSyncRunning = errors.New("snapshot sync already running")

// RunOnce executa uma sincronização completa de forma síncrona
func (s *MetricsSnapshotSyncService) RunOnce(ctx context.Context) (*SyncResult, error) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de snapshots já em andamento, ignorando")
		return nil, ErrSyncRunning
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	return s.syncAllSnapshots(ctx)
}

func (s *MetricsSnapshotSyncService) syncAllSnapshots(ctx context.Context) (*SyncResult, error) {
	runID, err := utils.GenerateRunID("snapshot")
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar id da execução: %w", err)
	}

	startTime := time.Now()
	logger := logrus.WithField("run_id", runID)

	result := &SyncResult{
		RunID:    runID,
		Accounts: len(s.customerIDs),
		Days:     s.config.LookbackDays,
	}

	if len(s.customerIDs) == 0 {
		logger.Info("Nenhuma conta configurada para sincronização de snapshots")
		s.finish(result)
		return result, nil
	}

	dates := s.getDatesToProcess()
	logger.WithFields(logrus.Fields{
		"days":       len(dates),
		"start_date": dates[0].Format(time.DateOnly),
		"end_date":   dates[len(dates)-1].Format(time.DateOnly),
	}).Info("Iniciando sincronização de snapshots")

	var saved, failed atomic.Int64

	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for _, customerID := range s.customerIDs {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(customerID string) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			for _, date := range dates {
				if ctx.Err() != nil {
					failed.Add(1)
					continue
				}

				if err := s.processAccountSnapshot(ctx, customerID, date); err != nil {
					logger.WithFields(logrus.Fields{
						"customer_id": customerID,
						"date":        date.Format(time.DateOnly),
						"error":       err.Error(),
					}).Error("Erro ao sincronizar snapshot da conta")
					failed.Add(1)
					continue
				}
				saved.Add(1)
			}
		}(customerID)
	}

	wg.Wait()

	result.Saved = saved.Load()
	result.Failed = failed.Load()

	logger.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"accounts": result.Accounts,
		"saved":    result.Saved,
		"failed":   result.Failed,
	}).Info("Sincronização de snapshots concluída")

	s.finish(result)
	return result, nil
}

func (s *MetricsSnapshotSyncService) finish(result *SyncResult) {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	s.lastSyncCompletedAt = s.now()
	s.lastResult = result
}

// getDatesToProcess retorna os últimos dias completos, do mais antigo para ontem
func (s *MetricsSnapshotSyncService) getDatesToProcess() []time.Time {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, s.config.LookbackDays)
	for i := 0; i < s.config.LookbackDays; i++ {
		dates[s.config.LookbackDays-1-i] = today.AddDate(0, 0, -i-1)
	}
	return dates
}

func (s *MetricsSnapshotSyncService) processAccountSnapshot(ctx context.Context, customerID string, date time.Time) error {
	filters := &domain.MetricsFilters{StartDate: date, EndDate: date}

	accountMetrics, err := s.fetcher.GetMetrics(ctx, customerID, filters)
	if err != nil {
		return err
	}
	accountMetrics.CTR = domain.ClickThroughRate(accountMetrics.Clicks, accountMetrics.Impressions)

	err = s.snapshotRepo.SaveOrUpdate(ctx, &domain.MetricsSnapshot{
		CustomerID: accountMetrics.CustomerID,
		Date:       date,
		Metrics:    accountMetrics,
	})
	if err != nil {
		return fmt.Errorf("erro ao salvar snapshot: %w", err)
	}

	metrics.SnapshotsSaved.Inc()
	return nil
}

// TriggerManualSync inicia manualmente uma sincronização em background.
// Retorna false se já houver uma execução em andamento.
func (s *MetricsSnapshotSyncService) TriggerManualSync() bool {
	s.syncMutex.Lock()
	running := s.syncRunning
	s.syncMutex.Unlock()

	if running {
		logrus.Info("Sincronização de snapshots já em andamento, ignorando solicitação manual")
		return false
	}

	logrus.Info("Iniciando sincronização manual de snapshots")
	go func() {
		_, _ = s.RunOnce(s.baseCtx)
	}()
	return true
}

// GetStatus retorna o status atual do agendador
func (s *MetricsSnapshotSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_result":            s.lastResult,
	}
}
