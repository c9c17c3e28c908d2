package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ads-metrics-api/pkg/apiErrors"
)

// CronJobTypeSnapshot identifica a sincronização diária de snapshots
const CronJobTypeSnapshot = "snapshot"

// SyncJob é o contrato mínimo de um job agendado exposto pela API
type SyncJob interface {
	TriggerManualSync() bool
	GetStatus() map[string]any
}

// CronJobServices contém os jobs que podem ser executados manualmente
type CronJobServices struct {
	SnapshotSyncService SyncJob
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "cron job type not specified")
			return
		}

		switch cronType {
		case CronJobTypeSnapshot:
			if services.SnapshotSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrServiceDisabled, "snapshot sync is disabled")
				return
			}

			started := services.SnapshotSyncService.TriggerManualSync()
			_ = apiErrors.WriteSuccess(w, map[string]any{
				"type":    cronType,
				"started": started,
			})
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid cron job type. Accepted values: snapshot")
		}
	})
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.SnapshotSyncService != nil {
			status[CronJobTypeSnapshot] = services.SnapshotSyncService.GetStatus()
		}

		_ = apiErrors.WriteSuccess(w, status)
	})
}
