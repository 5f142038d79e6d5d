package scheduler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	repomocks "github.com/vfg2006/campaign-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	syncmocks "github.com/vfg2006/campaign-manager-api/internal/usecases/syncing/mocks"
	"go.uber.org/mock/gomock"
)

func TestEntitySyncService_SincronizaCadaConexaoAtiva(t *testing.T) {
	ctrl := gomock.NewController(t)

	connectionRepo := repomocks.NewMockConnectionRepository(ctrl)
	syncer := syncmocks.NewMockSyncer(ctrl)
	locker := newFakeLocker()

	connectionRepo.EXPECT().
		ListByStatus([]domain.ConnectionStatus{domain.ConnectionStatusActive}).
		Return([]*domain.Connection{testConnection("conn01"), testConnection("conn02")}, nil)

	var mu sync.Mutex
	pulled := map[string]int{}

	syncer.EXPECT().
		Pull(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, connectionID string) (*domain.SyncResult, error) {
			mu.Lock()
			defer mu.Unlock()
			pulled[connectionID]++
			return &domain.SyncResult{Campaigns: 1, AdSets: 2, Ads: 3}, nil
		}).
		Times(2)

	service := &EntitySyncService{
		config: EntitySyncConfig{
			IntervalMinutes:   60,
			MaxConcurrentJobs: 2,
			SyncEnabled:       true,
			LockNamespace:     "campaign-manager",
		},
		connectionRepo: connectionRepo,
		syncer:         syncer,
		locker:         locker,
	}

	service.syncAllConnections()

	assert.Equal(t, 1, pulled["conn01"])
	assert.Equal(t, 1, pulled["conn02"])
	assert.Empty(t, locker.locks)
}

func TestEntitySyncService_LockEmUsoPulaAConexao(t *testing.T) {
	ctrl := gomock.NewController(t)

	connectionRepo := repomocks.NewMockConnectionRepository(ctrl)
	syncer := syncmocks.NewMockSyncer(ctrl)

	locker := newFakeLocker()
	locker.holdKey("campaign-manager:lock:entity-sync:conn01", "outro-portador")

	connectionRepo.EXPECT().
		ListByStatus([]domain.ConnectionStatus{domain.ConnectionStatusActive}).
		Return([]*domain.Connection{testConnection("conn01")}, nil)

	service := &EntitySyncService{
		config: EntitySyncConfig{
			IntervalMinutes:   60,
			MaxConcurrentJobs: 1,
			SyncEnabled:       true,
			LockNamespace:     "campaign-manager",
		},
		connectionRepo: connectionRepo,
		syncer:         syncer,
		locker:         locker,
	}

	// Nenhuma expectativa de Pull: a conexão com lock ocupado é pulada
	service.syncAllConnections()
}
