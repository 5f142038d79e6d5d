package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/campaign-manager-api/internal/api/handler"
	"github.com/vfg2006/campaign-manager-api/internal/api/handler/router"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/launching"
	launchmocks "github.com/vfg2006/campaign-manager-api/internal/usecases/launching/mocks"
	"github.com/vfg2006/campaign-manager-api/pkg/middleware"
	"go.uber.org/mock/gomock"
)

// withClaims injeta as claims do token de serviço, como faria o middleware
// de autenticação.
func withClaims(req *http.Request, role domain.Role) *http.Request {
	claims := &domain.Claims{Subject: "svc-test", Role: role}
	ctx := context.WithValue(req.Context(), middleware.ContextKeyClaims, claims)
	return req.WithContext(ctx)
}

func launchPayload() map[string]any {
	return map[string]any{
		"tenant_id":    "tenant01",
		"account_id":   "act_123",
		"name":         "Promoção de Inverno",
		"objective":    "OUTCOME_SALES",
		"daily_budget": 50.0,
		"creative_id":  "cr_789",
	}
}

func TestLaunchCampaign(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setupMock      func(m *launchmocks.MockLauncher)
		expectedStatus int
		checkBody      func(t *testing.T, body map[string]any)
	}{
		{
			name: "lançamento concluído dentro da janela devolve o resultado",
			body: launchPayload(),
			setupMock: func(m *launchmocks.MockLauncher) {
				m.EXPECT().
					Launch(gomock.Any(), gomock.Any()).
					Return(&domain.LaunchResponse{
						JobID:  "job001",
						Status: domain.LaunchStatusCompleted,
						Result: &domain.LaunchResult{
							CampaignID: "90001",
							AdSetID:    "90002",
							AdID:       "90003",
						},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "job001", body["job_id"])
				assert.Equal(t, "completed", body["status"])

				result, ok := body["result"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "90001", result["campaign_id"])
			},
		},
		{
			name: "janela estourada devolve 202 com o id do job",
			body: launchPayload(),
			setupMock: func(m *launchmocks.MockLauncher) {
				m.EXPECT().
					Launch(gomock.Any(), gomock.Any()).
					Return(&domain.LaunchResponse{
						JobID:    "job002",
						Status:   domain.LaunchStatusProcessing,
						Accepted: true,
					}, nil)
			},
			expectedStatus: http.StatusAccepted,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "job002", body["job_id"])
				assert.Equal(t, true, body["accepted"])
			},
		},
		{
			name: "job que falhou devolve o erro no corpo",
			body: launchPayload(),
			setupMock: func(m *launchmocks.MockLauncher) {
				m.EXPECT().
					Launch(gomock.Any(), gomock.Any()).
					Return(&domain.LaunchResponse{
						JobID:  "job003",
						Status: domain.LaunchStatusFailed,
						Error:  "conexão expirada",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "failed", body["status"])
				assert.Contains(t, body["error"], "conexão expirada")
			},
		},
		{
			name: "payload recusado na validação devolve 422",
			body: map[string]any{"tenant_id": "tenant01"},
			setupMock: func(m *launchmocks.MockLauncher) {
				m.EXPECT().
					Launch(gomock.Any(), gomock.Any()).
					Return(nil, launching.NewLaunchError(launching.ErrInvalidRequest, "", "name é obrigatório"))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "BIZ_003", body["code"])
				assert.Contains(t, body["details"], "name é obrigatório")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := launchmocks.NewMockLauncher(ctrl)
			tt.setupMock(service)

			rt := router.New(router.WithRoutes(handler.Launches(service)...))

			payload, err := json.Marshal(tt.body)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/v1/launch", bytes.NewReader(payload))
			req = withClaims(req, domain.RoleOperator)

			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.checkBody(t, body)
		})
	}
}

func TestLaunchCampaign_CorpoInvalidoNaoChamaOServico(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := launchmocks.NewMockLauncher(ctrl)

	rt := router.New(router.WithRoutes(handler.Launches(service)...))

	req := httptest.NewRequest(http.MethodPost, "/v1/launch", bytes.NewReader([]byte("{invalido")))
	req = withClaims(req, domain.RoleOperator)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLaunchCampaign_SemTokenDeServico(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := launchmocks.NewMockLauncher(ctrl)

	rt := router.New(router.WithRoutes(handler.Launches(service)...))

	payload, err := json.Marshal(launchPayload())
	require.NoError(t, err)

	// Sem claims no contexto o middleware de roles barra a requisição
	req := httptest.NewRequest(http.MethodPost, "/v1/launch", bytes.NewReader(payload))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetLaunchJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := launchmocks.NewMockLauncher(ctrl)

	service.EXPECT().
		JobStatus(gomock.Any(), "job001").
		Return(&domain.LaunchJob{
			ID:     "job001",
			Status: domain.LaunchStatusCompleted,
			Result: &domain.LaunchResult{CampaignID: "90001"},
		}, nil)

	rt := router.New(router.WithRoutes(handler.Launches(service)...))

	req := httptest.NewRequest(http.MethodGet, "/v1/launch/jobs/job001", nil)
	req = withClaims(req, domain.RoleOperator)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var job domain.LaunchJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "job001", job.ID)
	assert.Equal(t, domain.LaunchStatusCompleted, job.Status)
}

func TestGetLaunchJob_NaoEncontrado(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := launchmocks.NewMockLauncher(ctrl)

	service.EXPECT().
		JobStatus(gomock.Any(), "nao-existe").
		Return(nil, launching.NewLaunchError(launching.ErrJobNotFound, "nao-existe", ""))

	rt := router.New(router.WithRoutes(handler.Launches(service)...))

	req := httptest.NewRequest(http.MethodGet, "/v1/launch/jobs/nao-existe", nil)
	req = withClaims(req, domain.RoleOperator)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BIZ_002", body["code"])
}
