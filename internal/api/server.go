package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ads-metrics-api/internal/api/handler"
	"github.com/vfg2006/ads-metrics-api/internal/api/handler/router"
	"github.com/vfg2006/ads-metrics-api/internal/config"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/reporting"
	"github.com/vfg2006/ads-metrics-api/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
	onShutdown []func(ctx context.Context) error
}

// New monta o router e a cadeia de middlewares globais.
// snapshotSync pode ser nil quando a sincronização está desabilitada.
func New(
	cfg *config.Config,
	reporter reporting.Reporter,
	authenticator authenticating.Authenticator,
	snapshotSync handler.SyncJob,
) (*Server, error) {
	cronServices := handler.CronJobServices{
		SnapshotSyncService: snapshotSync,
	}

	rt := router.New(
		router.WithRoutes(handler.Healthcheck()...),
		router.WithRoutes(handler.Prometheus()...),
		router.WithRoutes(handler.GoogleAdsMetrics(reporter)...),
		router.WithRoutes(handler.Snapshots(reporter)...),
		router.WithRoutes(handler.CronJobs(cronServices, authenticator)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.TracingMiddleware(),
		middleware.Cors(cfg.Cors.AllowedOrigins),
		middleware.AuthMiddleware(authenticator),
	}

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
			Handler:           alice.New(middlewares...).Then(rt),
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

// Handler expõe a cadeia HTTP completa, usada nos testes
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// OnShutdown registra operações de limpeza executadas após o desligamento do HTTP
func (s *Server) OnShutdown(fn func(ctx context.Context) error) {
	s.onShutdown = append(s.onShutdown, fn)
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": shutdownTimeout.String(),
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("Servidor HTTP desligado com sucesso")

	for _, fn := range s.onShutdown {
		if err := fn(ctx); err != nil {
			logrus.WithError(err).Warn("Erro ao executar limpeza no desligamento")
		}
	}

	return nil
}
