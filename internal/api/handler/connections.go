package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vfg2006/campaign-manager-api/infrastructure/repository"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/pkg/apiErrors"
	"github.com/vfg2006/campaign-manager-api/pkg/log"
)

var connectionStatuses = map[string]domain.ConnectionStatus{
	"ACTIVE":       domain.ConnectionStatusActive,
	"EXPIRED":      domain.ConnectionStatusExpired,
	"REVOKED":      domain.ConnectionStatusRevoked,
	"DISCONNECTED": domain.ConnectionStatusDisconnected,
}

// ListConnections lista as conexões de anunciantes cadastradas. O filtro
// opcional ?status aceita valores separados por vírgula; sem filtro a
// listagem cobre todos os status.
func ListConnections(repo repository.ConnectionRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		statuses, err := parseStatusFilter(r.URL.Query().Get("status"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		connections, err := repo.ListByStatus(statuses)
		if err != nil {
			logger.WithError(err).Error("connections: failed to list connections")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar as conexões", nil)
			return
		}

		// Nunca expor tokens na listagem
		response := make([]*domain.ConnectionResponse, 0, len(connections))
		for _, connection := range connections {
			response = append(response, connection.ToResponse())
		}

		logger.WithField("total", len(response)).Info("connections: listed connections")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithError(err).Error("connections: failed to encode response")
		}
	})
}

func parseStatusFilter(raw string) ([]domain.ConnectionStatus, error) {
	if raw == "" {
		statuses := make([]domain.ConnectionStatus, 0, len(connectionStatuses))
		for _, status := range connectionStatuses {
			statuses = append(statuses, status)
		}
		return statuses, nil
	}

	var statuses []domain.ConnectionStatus
	for _, part := range strings.Split(raw, ",") {
		status, ok := connectionStatuses[strings.ToUpper(strings.TrimSpace(part))]
		if !ok {
			return nil, fmt.Errorf("status de conexão inválido: %s", part)
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}
