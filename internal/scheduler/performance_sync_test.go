package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	repomocks "github.com/vfg2006/campaign-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	syncmocks "github.com/vfg2006/campaign-manager-api/internal/usecases/syncing/mocks"
	"go.uber.org/mock/gomock"
)

func TestPerformanceSyncService_ImportaMetricasELimpaRetencao(t *testing.T) {
	ctrl := gomock.NewController(t)

	connectionRepo := repomocks.NewMockConnectionRepository(ctrl)
	snapshotRepo := repomocks.NewMockPerformanceSnapshotRepository(ctrl)
	syncer := syncmocks.NewMockSyncer(ctrl)
	locker := newFakeLocker()

	connectionRepo.EXPECT().
		ListByStatus([]domain.ConnectionStatus{domain.ConnectionStatusActive}).
		Return([]*domain.Connection{testConnection("conn01"), testConnection("conn02")}, nil)

	var mu sync.Mutex
	pulled := map[string]int{}

	syncer.EXPECT().
		PullPerformance(gomock.Any(), gomock.Any(), 7).
		DoAndReturn(func(_ context.Context, connectionID string, _ int) (*domain.PerformanceSyncResult, error) {
			mu.Lock()
			defer mu.Unlock()
			pulled[connectionID]++
			return &domain.PerformanceSyncResult{Entities: 2, Snapshots: 14}, nil
		}).
		Times(2)

	// A limpeza roda uma única vez, depois de todas as conexões
	snapshotRepo.EXPECT().DeleteOlderThan(90).Return(int64(5), nil)

	service := &PerformanceSyncService{
		config: PerformanceSyncConfig{
			IntervalMinutes:   180,
			LookbackDays:      7,
			MaxConcurrentJobs: 2,
			RetentionDays:     90,
			SyncEnabled:       true,
			LockNamespace:     "campaign-manager",
		},
		connectionRepo: connectionRepo,
		snapshotRepo:   snapshotRepo,
		syncer:         syncer,
		locker:         locker,
	}

	service.syncAllConnections()

	assert.Equal(t, 1, pulled["conn01"])
	assert.Equal(t, 1, pulled["conn02"])
	assert.Empty(t, locker.locks)
}

func TestPerformanceSyncService_LockEmUsoPulaAConexao(t *testing.T) {
	ctrl := gomock.NewController(t)

	connectionRepo := repomocks.NewMockConnectionRepository(ctrl)
	snapshotRepo := repomocks.NewMockPerformanceSnapshotRepository(ctrl)
	syncer := syncmocks.NewMockSyncer(ctrl)

	locker := newFakeLocker()
	locker.holdKey("campaign-manager:lock:performance-sync:conn01", "outro-portador")

	connectionRepo.EXPECT().
		ListByStatus([]domain.ConnectionStatus{domain.ConnectionStatusActive}).
		Return([]*domain.Connection{testConnection("conn01")}, nil)

	// Nenhuma expectativa de PullPerformance: a conexão com lock ocupado é
	// pulada, mas a limpeza de retenção ainda roda.
	snapshotRepo.EXPECT().DeleteOlderThan(90).Return(int64(0), nil)

	service := &PerformanceSyncService{
		config: PerformanceSyncConfig{
			IntervalMinutes:   180,
			LookbackDays:      7,
			MaxConcurrentJobs: 1,
			RetentionDays:     90,
			SyncEnabled:       true,
			LockNamespace:     "campaign-manager",
		},
		connectionRepo: connectionRepo,
		snapshotRepo:   snapshotRepo,
		syncer:         syncer,
		locker:         locker,
	}

	service.syncAllConnections()
}

func TestPerformanceSyncService_FalhaNaLimpezaNaoDerrubaASincronizacao(t *testing.T) {
	ctrl := gomock.NewController(t)

	connectionRepo := repomocks.NewMockConnectionRepository(ctrl)
	snapshotRepo := repomocks.NewMockPerformanceSnapshotRepository(ctrl)
	syncer := syncmocks.NewMockSyncer(ctrl)
	locker := newFakeLocker()

	connectionRepo.EXPECT().
		ListByStatus([]domain.ConnectionStatus{domain.ConnectionStatusActive}).
		Return([]*domain.Connection{testConnection("conn01")}, nil)

	syncer.EXPECT().
		PullPerformance(gomock.Any(), "conn01", 7).
		Return(&domain.PerformanceSyncResult{Entities: 1, Snapshots: 7}, nil)

	snapshotRepo.EXPECT().
		DeleteOlderThan(90).
		Return(int64(0), errors.New("banco indisponível"))

	service := &PerformanceSyncService{
		config: PerformanceSyncConfig{
			IntervalMinutes:   180,
			LookbackDays:      7,
			MaxConcurrentJobs: 1,
			RetentionDays:     90,
			SyncEnabled:       true,
			LockNamespace:     "campaign-manager",
		},
		connectionRepo: connectionRepo,
		snapshotRepo:   snapshotRepo,
		syncer:         syncer,
		locker:         locker,
	}

	service.syncAllConnections()

	assert.Empty(t, locker.locks)
}
