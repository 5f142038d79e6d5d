package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/internal/scheduler"
	"github.com/vfg2006/campaign-manager-api/pkg/apiErrors"
	"github.com/vfg2006/campaign-manager-api/pkg/middleware"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeEntitySync      = "entity-sync"
	CronJobTypePerformanceSync = "performance-sync"
	CronJobTypeOptimization    = "optimization"
	CronJobTypeAll             = "all"
)

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	EntitySyncService        *scheduler.EntitySyncService
	PerformanceSyncService   *scheduler.PerformanceSyncService
	OptimizationCycleService *scheduler.OptimizationCycleService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		// Apenas tokens administrativos podem disparar cron jobs
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok || !claims.IsAdmin() {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem executar cron jobs", nil)
			return
		}

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypeEntitySync:
			if services.EntitySyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização de entidades não disponível", nil)
				return
			}
			services.EntitySyncService.TriggerManualSync()

		case CronJobTypePerformanceSync:
			if services.PerformanceSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização de desempenho não disponível", nil)
				return
			}
			services.PerformanceSyncService.TriggerManualSync()

		case CronJobTypeOptimization:
			if services.OptimizationCycleService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de ciclos de otimização não disponível", nil)
				return
			}
			services.OptimizationCycleService.TriggerManualSync()

		case CronJobTypeAll:
			if services.EntitySyncService != nil {
				services.EntitySyncService.TriggerManualSync()
			}
			if services.PerformanceSyncService != nil {
				services.PerformanceSyncService.TriggerManualSync()
			}
			if services.OptimizationCycleService != nil {
				services.OptimizationCycleService.TriggerManualSync()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: entity-sync, performance-sync, optimization, all", nil)
			return
		}

		response := map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		}
		json.NewEncoder(w).Encode(response)
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok || !claims.IsAdmin() {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem verificar status de cron jobs", nil)
			return
		}

		status := map[string]any{
			"entity-sync":      services.EntitySyncService.GetStatus(),
			"performance-sync": services.PerformanceSyncService.GetStatus(),
			"optimization":     services.OptimizationCycleService.GetStatus(),
		}

		json.NewEncoder(w).Encode(status)
	}
}
