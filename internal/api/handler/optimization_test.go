package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/campaign-manager-api/internal/api/handler"
	"github.com/vfg2006/campaign-manager-api/internal/api/handler/router"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	optmocks "github.com/vfg2006/campaign-manager-api/internal/usecases/optimizing/mocks"
	"go.uber.org/mock/gomock"
)

func cycleEntries() []*domain.OptimizationLogEntry {
	return []*domain.OptimizationLogEntry{
		{
			ID:           1,
			ConnectionID: "conn01",
			CycleID:      "cycle-1",
			Action:       domain.ActionCycleStart,
			Severity:     domain.SeverityInfo,
			CreatedAt:    time.Now(),
		},
		{
			ID:           2,
			ConnectionID: "conn01",
			CycleID:      "cycle-1",
			Action:       domain.ActionRecommendPause,
			Severity:     domain.SeverityWarning,
			CreatedAt:    time.Now(),
		},
	}
}

func TestGetCycleLogs(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := optmocks.NewMockOptimizer(ctrl)

	service.EXPECT().
		CycleLogs(gomock.Any(), "cycle-1").
		Return(cycleEntries(), nil)

	rt := router.New(router.WithRoutes(handler.Optimization(service)...))

	req := httptest.NewRequest(http.MethodGet, "/v1/optimization/cycles/cycle-1/logs", nil)
	req = withClaims(req, domain.RoleOperator)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var entries []*domain.OptimizationLogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionCycleStart, entries[0].Action)
	assert.Equal(t, domain.ActionRecommendPause, entries[1].Action)
	assert.Equal(t, domain.SeverityWarning, entries[1].Severity)
}

func TestGetConnectionOptimizationLogs(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(m *optmocks.MockOptimizer)
		expectedStatus int
	}{
		{
			name: "sem limit usa o padrão de 50 registros",
			path: "/v1/connections/conn01/optimization/logs",
			setupMock: func(m *optmocks.MockOptimizer) {
				m.EXPECT().
					RecentLogs(gomock.Any(), "conn01", uint64(50)).
					Return(cycleEntries(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "limit explícito é repassado ao serviço",
			path: "/v1/connections/conn01/optimization/logs?limit=10",
			setupMock: func(m *optmocks.MockOptimizer) {
				m.EXPECT().
					RecentLogs(gomock.Any(), "conn01", uint64(10)).
					Return(cycleEntries(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "limit acima do teto é reduzido",
			path: "/v1/connections/conn01/optimization/logs?limit=9999",
			setupMock: func(m *optmocks.MockOptimizer) {
				m.EXPECT().
					RecentLogs(gomock.Any(), "conn01", uint64(500)).
					Return(cycleEntries(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "limit inválido devolve 400",
			path:           "/v1/connections/conn01/optimization/logs?limit=abc",
			setupMock:      func(m *optmocks.MockOptimizer) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "limit zero devolve 400",
			path:           "/v1/connections/conn01/optimization/logs?limit=0",
			setupMock:      func(m *optmocks.MockOptimizer) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := optmocks.NewMockOptimizer(ctrl)
			tt.setupMock(service)

			rt := router.New(router.WithRoutes(handler.Optimization(service)...))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req = withClaims(req, domain.RoleOperator)

			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
