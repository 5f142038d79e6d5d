package syncing

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	metadomain "github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/domain"
	metamocks "github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/mocks"
	"github.com/vfg2006/campaign-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"go.uber.org/mock/gomock"
)

type serviceMocks struct {
	client         *metamocks.MockClient
	connectionRepo *mocks.MockConnectionRepository
	campaignRepo   *mocks.MockCampaignRepository
	adSetRepo      *mocks.MockAdSetRepository
	adRepo         *mocks.MockAdRepository
	snapshotRepo   *mocks.MockPerformanceSnapshotRepository
}

func newTestService(t *testing.T) (*Service, *serviceMocks) {
	ctrl := gomock.NewController(t)

	m := &serviceMocks{
		client:         metamocks.NewMockClient(ctrl),
		connectionRepo: mocks.NewMockConnectionRepository(ctrl),
		campaignRepo:   mocks.NewMockCampaignRepository(ctrl),
		adSetRepo:      mocks.NewMockAdSetRepository(ctrl),
		adRepo:         mocks.NewMockAdRepository(ctrl),
		snapshotRepo:   mocks.NewMockPerformanceSnapshotRepository(ctrl),
	}

	service := &Service{
		client:         m.client,
		connectionRepo: m.connectionRepo,
		campaignRepo:   m.campaignRepo,
		adSetRepo:      m.adSetRepo,
		adRepo:         m.adRepo,
		snapshotRepo:   m.snapshotRepo,
	}

	return service, m
}

func activeConnection() *domain.Connection {
	return &domain.Connection{
		ID:          "conn01",
		TenantID:    "tenant01",
		AccountID:   "act_123",
		Origin:      "meta",
		AccessToken: "token-abc",
		Status:      domain.ConnectionStatusActive,
	}
}

func expectUsableConnection(m *serviceMocks, conn *domain.Connection) {
	m.connectionRepo.EXPECT().GetByID(conn.ID).Return(conn, nil)
	m.client.EXPECT().EnsureFreshCredential(gomock.Any(), conn).Return(conn.AccessToken, nil)
}

func rawItems(items ...string) []json.RawMessage {
	raws := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raws = append(raws, json.RawMessage(item))
	}

	return raws
}

func authExpiredError() *metadomain.APIError {
	return &metadomain.APIError{
		Kind:       metadomain.KindAuthExpired,
		StatusCode: 400,
		Code:       190,
		Message:    "Error validating access token",
	}
}

func TestService_Pull(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, m *serviceMocks)
		validate func(t *testing.T, result *domain.SyncResult, err error)
	}{
		{
			name: "Importa a hierarquia completa e resolve os vínculos locais",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				var campaignLocalID, adSetLocalID string

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					Return(rawItems(`{"id":"9001","name":"Campanha Verão","status":"ACTIVE","objective":"OUTCOME_SALES","daily_budget":"5000"}`), nil)
				m.campaignRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					DoAndReturn(func(campaign *domain.Campaign) error {
						campaignLocalID = campaign.ID
						assert.NotEmpty(t, campaign.ID)
						assert.Equal(t, "conn01", campaign.ConnectionID)
						assert.Equal(t, "9001", campaign.RemoteID)
						assert.Equal(t, domain.EntityStatusActive, campaign.Status)
						if assert.NotNil(t, campaign.DailyBudgetCents) {
							assert.Equal(t, int64(5000), *campaign.DailyBudgetCents)
						}
						return nil
					})

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/adsets", gomock.Any(), gomock.Any()).
					Return(rawItems(`{"id":"9101","name":"Conjunto BR","status":"ACTIVE","campaign_id":"9001"}`), nil)
				m.adSetRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					DoAndReturn(func(adSet *domain.AdSet) error {
						adSetLocalID = adSet.ID
						assert.Equal(t, campaignLocalID, adSet.CampaignID)
						assert.Equal(t, "9001", adSet.RemoteCampaignID)
						return nil
					})

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/ads", gomock.Any(), gomock.Any()).
					Return(rawItems(`{"id":"9201","name":"Anúncio 1","status":"ACTIVE","adset_id":"9101","creative":{"id":"7777"}}`), nil)
				m.adRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					DoAndReturn(func(ad *domain.Ad) error {
						assert.Equal(t, adSetLocalID, ad.AdSetID)
						assert.Equal(t, "9101", ad.RemoteAdSetID)
						assert.Equal(t, "7777", ad.CreativeID)
						return nil
					})
			},
			validate: func(t *testing.T, result *domain.SyncResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 1, result.Campaigns)
				assert.Equal(t, 1, result.AdSets)
				assert.Equal(t, 1, result.Ads)
				assert.Equal(t, 0, result.Skipped)
			},
		},
		{
			name: "Registros irmãos são gravados em paralelo e mantêm os vínculos",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				// As gravações do mesmo nível rodam em paralelo; o mapa
				// compartilhado precisa de mutex também no teste.
				var mu sync.Mutex
				campaignIDs := make(map[string]string)

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					Return(rawItems(
						`{"id":"9001","name":"Campanha A","status":"ACTIVE"}`,
						`{"id":"9002","name":"Campanha B","status":"PAUSED"}`,
						`{"id":"9003","name":"Campanha C","status":"ACTIVE"}`,
					), nil)
				m.campaignRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					Times(3).
					DoAndReturn(func(campaign *domain.Campaign) error {
						mu.Lock()
						campaignIDs[campaign.RemoteID] = campaign.ID
						mu.Unlock()

						return nil
					})

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/adsets", gomock.Any(), gomock.Any()).
					Return(rawItems(
						`{"id":"9101","name":"Conjunto A","status":"ACTIVE","campaign_id":"9001"}`,
						`{"id":"9102","name":"Conjunto C","status":"ACTIVE","campaign_id":"9003"}`,
					), nil)
				m.adSetRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					Times(2).
					DoAndReturn(func(adSet *domain.AdSet) error {
						mu.Lock()
						expected := campaignIDs[adSet.RemoteCampaignID]
						mu.Unlock()

						assert.NotEmpty(t, expected)
						assert.Equal(t, expected, adSet.CampaignID)

						return nil
					})

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/ads", gomock.Any(), gomock.Any()).
					Return(nil, nil)
			},
			validate: func(t *testing.T, result *domain.SyncResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 3, result.Campaigns)
				assert.Equal(t, 2, result.AdSets)
				assert.Equal(t, 0, result.Skipped)
			},
		},
		{
			name: "Falha do banco em um registro aborta a importação",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					Return(rawItems(
						`{"id":"9001","name":"Campanha A","status":"ACTIVE"}`,
						`{"id":"9002","name":"Campanha B","status":"ACTIVE"}`,
					), nil)
				m.campaignRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					Times(2).
					DoAndReturn(func(campaign *domain.Campaign) error {
						if campaign.RemoteID == "9002" {
							return errors.New("erro de banco")
						}

						return nil
					})

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/adsets", gomock.Any(), gomock.Any()).
					Return(nil, nil)
				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/ads", gomock.Any(), gomock.Any()).
					Return(nil, nil)
			},
			validate: func(t *testing.T, result *domain.SyncResult, err error) {
				assert.EqualError(t, err, "erro de banco")
				assert.Nil(t, result)
			},
		},
		{
			name: "Item remoto mal formado é pulado sem abortar a importação",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					Return(rawItems(`{"id":`, `{"id":"9002","name":"Campanha Ok","status":"PAUSED"}`), nil)
				m.campaignRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					DoAndReturn(func(campaign *domain.Campaign) error {
						assert.Equal(t, "9002", campaign.RemoteID)
						return nil
					})

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/adsets", gomock.Any(), gomock.Any()).
					Return(nil, nil)
				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/ads", gomock.Any(), gomock.Any()).
					Return(nil, nil)
			},
			validate: func(t *testing.T, result *domain.SyncResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 1, result.Campaigns)
				assert.Equal(t, 1, result.Skipped)
			},
		},
		{
			name: "Status desconhecido vira DRAFT e a entidade segue sincronizada",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					Return(rawItems(`{"id":"9003","name":"Em análise","status":"IN_PROCESS"}`), nil)
				m.campaignRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					DoAndReturn(func(campaign *domain.Campaign) error {
						assert.Equal(t, domain.EntityStatusDraft, campaign.Status)
						return nil
					})

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/adsets", gomock.Any(), gomock.Any()).
					Return(nil, nil)
				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/ads", gomock.Any(), gomock.Any()).
					Return(nil, nil)
			},
			validate: func(t *testing.T, result *domain.SyncResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 1, result.Campaigns)
				assert.Equal(t, 0, result.Skipped)
			},
		},
		{
			name: "Credencial expirada marca a conexão como EXPIRED e interrompe",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					Return(nil, authExpiredError())
				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/adsets", gomock.Any(), gomock.Any()).
					Return(nil, nil)
				m.client.EXPECT().
					FetchAll(gomock.Any(), "act_123/ads", gomock.Any(), gomock.Any()).
					Return(nil, nil)
				m.connectionRepo.EXPECT().
					UpdateStatus("conn01", domain.ConnectionStatusExpired).
					Return(nil)
			},
			validate: func(t *testing.T, result *domain.SyncResult, err error) {
				assert.ErrorIs(t, err, ErrConnectionExpired)
				assert.Nil(t, result)
			},
		},
		{
			name: "Conexão inexistente",
			setup: func(t *testing.T, m *serviceMocks) {
				m.connectionRepo.EXPECT().GetByID("conn01").Return(nil, nil)
			},
			validate: func(t *testing.T, result *domain.SyncResult, err error) {
				assert.ErrorIs(t, err, ErrConnectionNotFound)
				assert.Nil(t, result)
			},
		},
		{
			name: "Conexão revogada não é sincronizada",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				conn.Status = domain.ConnectionStatusRevoked
				m.connectionRepo.EXPECT().GetByID("conn01").Return(conn, nil)
			},
			validate: func(t *testing.T, result *domain.SyncResult, err error) {
				assert.ErrorIs(t, err, ErrConnectionNotUsable)
				assert.Nil(t, result)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newTestService(t)
			tt.setup(t, m)

			result, err := service.Pull(context.Background(), "conn01")

			tt.validate(t, result, err)
		})
	}
}

func TestService_PullPerformance(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, m *serviceMocks)
		validate func(t *testing.T, result *domain.PerformanceSyncResult, err error)
	}{
		{
			name: "Gera um snapshot por dia para cada entidade ativa com o id local",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.adSetRepo.EXPECT().
					ListByConnection("conn01", nonArchivedStatuses).
					Return([]*domain.AdSet{{ID: "as0001", ConnectionID: "conn01", RemoteID: "9101"}}, nil)
				m.adRepo.EXPECT().
					ListByConnection("conn01", nonArchivedStatuses).
					Return([]*domain.Ad{{ID: "ad0001", ConnectionID: "conn01", RemoteID: "9201"}}, nil)

				m.client.EXPECT().
					FetchAll(gomock.Any(), "9101/insights", gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, params url.Values, _ domain.Credential) ([]json.RawMessage, error) {
						assert.Equal(t, "1", params.Get("time_increment"))
						assert.Contains(t, params.Get("time_range"), `"since"`)
						return rawItems(
							`{"date_start":"2026-08-18","date_stop":"2026-08-18","impressions":"1000","clicks":"50","spend":"12.34"}`,
							`{"date_start":"2026-08-19","date_stop":"2026-08-19","impressions":"900","clicks":"40","spend":"10.00"}`,
						), nil
					})
				m.client.EXPECT().
					FetchAll(gomock.Any(), "9201/insights", gomock.Any(), gomock.Any()).
					Return(rawItems(`{"date_start":"2026-08-18","date_stop":"2026-08-18","impressions":"500","clicks":"20","spend":"5.55","actions":[{"action_type":"purchase","value":"3"}],"action_values":[{"action_type":"purchase","value":"150.00"}]}`), nil)

				m.snapshotRepo.EXPECT().
					SaveOrUpdate(gomock.Any()).
					Times(3).
					DoAndReturn(func(snapshot *domain.PerformanceSnapshot) error {
						assert.Contains(t, []string{"as0001", "ad0001"}, snapshot.EntityID)
						if snapshot.EntityID == "ad0001" {
							assert.Equal(t, domain.LevelAd, snapshot.EntityLevel)
							assert.Equal(t, int64(3), snapshot.Conversions)
							assert.Equal(t, int64(15000), snapshot.RevenueCents)
						} else {
							assert.Equal(t, domain.LevelAdSet, snapshot.EntityLevel)
						}
						return nil
					})
			},
			validate: func(t *testing.T, result *domain.PerformanceSyncResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 2, result.Entities)
				assert.Equal(t, 3, result.Snapshots)
				assert.Equal(t, 2, result.AdSetSnapshots)
				assert.Equal(t, 1, result.AdSnapshots)
				assert.Equal(t, 0, result.Skipped)
				assert.Equal(t, 0, result.Errors)
			},
		},
		{
			name: "Entidade com id remoto temporário fica de fora",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.adSetRepo.EXPECT().
					ListByConnection("conn01", gomock.Any()).
					Return([]*domain.AdSet{{ID: "as0002", ConnectionID: "conn01", RemoteID: "tmp_abc123"}}, nil)
				m.adRepo.EXPECT().
					ListByConnection("conn01", gomock.Any()).
					Return(nil, nil)
			},
			validate: func(t *testing.T, result *domain.PerformanceSyncResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 0, result.Entities)
				assert.Equal(t, 1, result.Skipped)
				assert.Equal(t, 0, result.Snapshots)
			},
		},
		{
			name: "Erro transitório em uma entidade não interrompe as demais",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.adSetRepo.EXPECT().
					ListByConnection("conn01", gomock.Any()).
					Return([]*domain.AdSet{{ID: "as0001", ConnectionID: "conn01", RemoteID: "9101"}}, nil)
				m.adRepo.EXPECT().
					ListByConnection("conn01", gomock.Any()).
					Return([]*domain.Ad{{ID: "ad0001", ConnectionID: "conn01", RemoteID: "9201"}}, nil)

				m.client.EXPECT().
					FetchAll(gomock.Any(), "9101/insights", gomock.Any(), gomock.Any()).
					Return(nil, &metadomain.APIError{Kind: metadomain.KindTransient, StatusCode: 500, Code: 2, Message: "service temporarily unavailable"})
				m.client.EXPECT().
					FetchAll(gomock.Any(), "9201/insights", gomock.Any(), gomock.Any()).
					Return(rawItems(`{"date_start":"2026-08-18","date_stop":"2026-08-18","impressions":"100","clicks":"5","spend":"1.00"}`), nil)

				m.snapshotRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil)
			},
			validate: func(t *testing.T, result *domain.PerformanceSyncResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 2, result.Entities)
				assert.Equal(t, 1, result.Errors)
				assert.Equal(t, 1, result.Snapshots)
			},
		},
		{
			name: "Credencial expirada interrompe a importação de métricas",
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.adSetRepo.EXPECT().
					ListByConnection("conn01", gomock.Any()).
					Return([]*domain.AdSet{{ID: "as0001", ConnectionID: "conn01", RemoteID: "9101"}}, nil)
				m.adRepo.EXPECT().
					ListByConnection("conn01", gomock.Any()).
					Return([]*domain.Ad{{ID: "ad0001", ConnectionID: "conn01", RemoteID: "9201"}}, nil)

				m.client.EXPECT().
					FetchAll(gomock.Any(), "9101/insights", gomock.Any(), gomock.Any()).
					Return(nil, authExpiredError())
				m.connectionRepo.EXPECT().
					UpdateStatus("conn01", domain.ConnectionStatusExpired).
					Return(nil)
			},
			validate: func(t *testing.T, result *domain.PerformanceSyncResult, err error) {
				assert.ErrorIs(t, err, ErrConnectionExpired)
				assert.Equal(t, 1, result.Entities)
				assert.Equal(t, 0, result.Snapshots)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newTestService(t)
			tt.setup(t, m)

			result, err := service.PullPerformance(context.Background(), "conn01", 7)

			tt.validate(t, result, err)
		})
	}
}

func TestService_Push(t *testing.T) {
	tests := []struct {
		name     string
		ref      domain.EntityRef
		setup    func(t *testing.T, m *serviceMocks)
		validate func(t *testing.T, result *domain.PushResult, err error)
	}{
		{
			name: "Campanha com id temporário é criada na conta do anunciante",
			ref: domain.CampaignRef(&domain.Campaign{
				ID:               "abc123",
				ConnectionID:     "conn01",
				RemoteID:         "tmp_xyz789",
				Name:             "Campanha Nova",
				Status:           domain.EntityStatusPaused,
				Objective:        "OUTCOME_TRAFFIC",
				DailyBudgetCents: int64Ptr(5000),
			}),
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.client.EXPECT().
					Post(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, form url.Values, _ domain.Credential) ([]byte, error) {
						assert.Equal(t, "Campanha Nova", form.Get("name"))
						assert.Equal(t, "PAUSED", form.Get("status"))
						assert.Equal(t, "5000", form.Get("daily_budget"))
						assert.Equal(t, "[]", form.Get("special_ad_categories"))
						return []byte(`{"id":"90001"}`), nil
					})
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "90001", result.RemoteID)
				assert.True(t, result.Created)
			},
		},
		{
			name: "Campanha existente é atualizada no próprio id remoto",
			ref: domain.CampaignRef(&domain.Campaign{
				ID:           "abc123",
				ConnectionID: "conn01",
				RemoteID:     "90001",
				Name:         "Campanha Renomeada",
				Status:       domain.EntityStatusActive,
			}),
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.client.EXPECT().
					Post(gomock.Any(), "90001", gomock.Any(), gomock.Any()).
					Return([]byte(`{"success":true}`), nil)
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "90001", result.RemoteID)
				assert.False(t, result.Created)
			},
		},
		{
			name: "Atualização não confirmada pela plataforma vira erro",
			ref: domain.CampaignRef(&domain.Campaign{
				ID:           "abc123",
				ConnectionID: "conn01",
				RemoteID:     "90001",
				Name:         "Campanha",
				Status:       domain.EntityStatusActive,
			}),
			setup: func(t *testing.T, m *serviceMocks) {
				conn := activeConnection()
				expectUsableConnection(m, conn)

				m.client.EXPECT().
					Post(gomock.Any(), "90001", gomock.Any(), gomock.Any()).
					Return([]byte(`{"success":false}`), nil)
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.ErrorIs(t, err, ErrPlatformRejected)
				assert.Nil(t, result)
			},
		},
		{
			name: "Conjunto sem campanha remota resolvida não é criado",
			ref: domain.AdSetRef(&domain.AdSet{
				ID:               "as0001",
				ConnectionID:     "conn01",
				RemoteID:         "",
				RemoteCampaignID: "tmp_abc123",
				Name:             "Conjunto Novo",
				Status:           domain.EntityStatusPaused,
			}),
			setup: func(t *testing.T, m *serviceMocks) {
				expectUsableConnection(m, activeConnection())
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.ErrorIs(t, err, ErrCampaignNotResolved)
				assert.Nil(t, result)
			},
		},
		{
			name: "Anúncio sem criativo não é criado",
			ref: domain.AdRef(&domain.Ad{
				ID:            "ad0001",
				ConnectionID:  "conn01",
				RemoteID:      "",
				RemoteAdSetID: "9101",
				Name:          "Anúncio Novo",
				Status:        domain.EntityStatusPaused,
			}),
			setup: func(t *testing.T, m *serviceMocks) {
				expectUsableConnection(m, activeConnection())
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.ErrorIs(t, err, ErrCreativeRequired)
				assert.Nil(t, result)
			},
		},
		{
			name: "Anúncio sem conjunto remoto resolvido não é criado",
			ref: domain.AdRef(&domain.Ad{
				ID:            "ad0001",
				ConnectionID:  "conn01",
				RemoteID:      "",
				RemoteAdSetID: "tmp_def456",
				CreativeID:    "7777",
				Name:          "Anúncio Novo",
				Status:        domain.EntityStatusPaused,
			}),
			setup: func(t *testing.T, m *serviceMocks) {
				expectUsableConnection(m, activeConnection())
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.ErrorIs(t, err, ErrAdSetNotResolved)
				assert.Nil(t, result)
			},
		},
		{
			name: "Ref sem a entidade do nível declarado é rejeitado",
			ref:  domain.EntityRef{Level: domain.LevelCampaign},
			setup: func(t *testing.T, m *serviceMocks) {
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.ErrorIs(t, err, ErrInvalidEntityRef)
				assert.Nil(t, result)
			},
		},
		{
			name: "Parâmetro inválido na criação propaga a classificação do erro",
			ref: domain.CampaignRef(&domain.Campaign{
				ID:           "abc123",
				ConnectionID: "conn01",
				RemoteID:     "tmp_xyz789",
				Name:         "Campanha",
				Status:       domain.EntityStatusPaused,
			}),
			setup: func(t *testing.T, m *serviceMocks) {
				expectUsableConnection(m, activeConnection())

				m.client.EXPECT().
					Post(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					Return(nil, &metadomain.APIError{Kind: metadomain.KindInvalidParameter, StatusCode: 400, Code: 100, Message: "Invalid parameter"})
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.Error(t, err)
				assert.True(t, metadomain.IsKind(err, metadomain.KindInvalidParameter))
				assert.Nil(t, result)
			},
		},
		{
			name: "Credencial expirada no push marca a conexão como EXPIRED",
			ref: domain.CampaignRef(&domain.Campaign{
				ID:           "abc123",
				ConnectionID: "conn01",
				RemoteID:     "tmp_xyz789",
				Name:         "Campanha",
				Status:       domain.EntityStatusPaused,
			}),
			setup: func(t *testing.T, m *serviceMocks) {
				expectUsableConnection(m, activeConnection())

				m.client.EXPECT().
					Post(gomock.Any(), "act_123/campaigns", gomock.Any(), gomock.Any()).
					Return(nil, authExpiredError())
				m.connectionRepo.EXPECT().
					UpdateStatus("conn01", domain.ConnectionStatusExpired).
					Return(nil)
			},
			validate: func(t *testing.T, result *domain.PushResult, err error) {
				assert.ErrorIs(t, err, ErrConnectionExpired)
				assert.Nil(t, result)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newTestService(t)
			tt.setup(t, m)

			result, err := service.Push(context.Background(), tt.ref)

			tt.validate(t, result, err)
		})
	}
}

func int64Ptr(value int64) *int64 {
	return &value
}
