package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ads-metrics-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads"
	"github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads/adsclient"
	"github.com/vfg2006/ads-metrics-api/infrastructure/migration"
	"github.com/vfg2006/ads-metrics-api/infrastructure/repository"
	"github.com/vfg2006/ads-metrics-api/internal/api"
	"github.com/vfg2006/ads-metrics-api/internal/api/handler"
	"github.com/vfg2006/ads-metrics-api/internal/config"
	"github.com/vfg2006/ads-metrics-api/internal/scheduler"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/reporting"
	"github.com/vfg2006/ads-metrics-api/pkg/log"
	"github.com/vfg2006/ads-metrics-api/pkg/tracing"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			logrus.WithField("missing", cfgErr.Missing).Fatal(cfgErr.Error())
		}
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.App.Env,
	})
	if err != nil {
		logrus.WithError(err).Error("Erro ao inicializar o tracing, seguindo sem exportador")
	}

	tokenManager := adsclient.NewTokenManager(cfg.GoogleAds)

	adsClient, err := adsclient.NewClient(cfg.GoogleAds, tokenManager)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao criar o cliente do Google Ads")
	}

	googleAdsIntegrator := googleads.New(adsClient)

	reportingService := reporting.NewService(cfg, googleAdsIntegrator)
	authenticator := authenticating.NewService(cfg)

	var (
		snapshotSync handler.SyncJob
		pgConn       *postgres.Connection
	)

	if cfg.SnapshotSync.Enabled {
		pgConn = pgconn(ctx, cfg.Database)

		if err := migration.Up(ctx, pgConn); err != nil {
			logrus.WithError(err).Fatal("Erro ao aplicar migrações")
		}

		snapshotRepo := repository.NewMetricsSnapshotRepository(pgConn)
		reportingService.WithSnapshots(snapshotRepo)

		snapshotSyncService := scheduler.NewMetricsSnapshotSyncService(googleAdsIntegrator, snapshotRepo, cfg)
		if err := snapshotSyncService.Start(ctx); err != nil {
			logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de snapshots")
		} else {
			logrus.Info("Agendador de sincronização de snapshots iniciado com sucesso")
		}
		snapshotSync = snapshotSyncService
	}

	server, err := api.New(cfg, reportingService, authenticator, snapshotSync)
	if err != nil {
		logrus.Fatal(err)
	}

	server.OnShutdown(tracing.Shutdown)
	if pgConn != nil {
		server.OnShutdown(func(context.Context) error {
			return pgConn.Close()
		})
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
