package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/optimizing"
	"github.com/vfg2006/campaign-manager-api/pkg/apiErrors"
	"github.com/vfg2006/campaign-manager-api/pkg/log"
)

const (
	defaultOptimizationLogLimit = 50
	maxOptimizationLogLimit     = 500
)

// GetCycleLogs devolve a trilha de auditoria completa de um ciclo de
// otimização, dos marcadores de início e fim às ações por entidade.
func GetCycleLogs(service optimizing.Optimizer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		cycleID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if cycleID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Id do ciclo não informado", nil)
			return
		}

		entries, err := service.CycleLogs(r.Context(), cycleID)
		if err != nil {
			logger.WithError(err).WithField("cycle_id", cycleID).
				Error("optimization: failed to fetch cycle logs")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar os registros do ciclo", nil)
			return
		}

		logger.WithFields(log.Fields{
			"cycle_id": cycleID,
			"entries":  len(entries),
		}).Info("optimization: cycle logs retrieved")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			logger.WithError(err).Error("optimization: failed to encode response")
		}
	})
}

// GetConnectionOptimizationLogs lista os registros de otimização mais
// recentes de uma conexão. O parâmetro ?limit controla o tamanho da página.
func GetConnectionOptimizationLogs(service optimizing.Optimizer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		connectionID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		limit := uint64(defaultOptimizationLogLimit)
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || parsed == 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Parâmetro limit inválido", nil)
				return
			}
			limit = parsed
		}

		if limit > maxOptimizationLogLimit {
			limit = maxOptimizationLogLimit
		}

		entries, err := service.RecentLogs(r.Context(), connectionID, limit)
		if err != nil {
			logger.WithError(err).WithField("connection_id", connectionID).
				Error("optimization: failed to fetch connection logs")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar os registros da conexão", nil)
			return
		}

		logger.WithFields(log.Fields{
			"connection_id": connectionID,
			"entries":       len(entries),
		}).Info("optimization: connection logs retrieved")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			logger.WithError(err).Error("optimization: failed to encode response")
		}
	})
}
