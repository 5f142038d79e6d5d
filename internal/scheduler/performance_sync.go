package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/infrastructure/repository"
	"github.com/vfg2006/campaign-manager-api/internal/config"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/syncing"
)

const (
	defaultPerformanceSyncIntervalMinutes = 180
	defaultSnapshotRetentionDays          = 90
)

// PerformanceSyncConfig representa a configuração do agendador de métricas
type PerformanceSyncConfig struct {
	IntervalMinutes   int
	LookbackDays      int
	MaxConcurrentJobs int
	RetentionDays     int
	SyncEnabled       bool
	LockNamespace     string
}

// PerformanceSyncService agenda a importação periódica das métricas diárias
// das conexões ativas e a limpeza de snapshots fora da janela de retenção.
type PerformanceSyncService struct {
	scheduler           *gocron.Scheduler
	config              PerformanceSyncConfig
	connectionRepo      repository.ConnectionRepository
	snapshotRepo        repository.PerformanceSnapshotRepository
	syncer              syncing.Syncer
	locker              CycleLocker
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewPerformanceSyncService cria uma nova instância do agendador de métricas
func NewPerformanceSyncService(
	connectionRepo repository.ConnectionRepository,
	snapshotRepo repository.PerformanceSnapshotRepository,
	syncer syncing.Syncer,
	locker CycleLocker,
	appConfig *config.Config,
) *PerformanceSyncService {
	syncConfig := PerformanceSyncConfig{
		IntervalMinutes:   appConfig.PerformanceSync.IntervalMinutes,
		LookbackDays:      appConfig.PerformanceSync.LookbackDays,
		MaxConcurrentJobs: appConfig.PerformanceSync.MaxConcurrentJobs,
		RetentionDays:     appConfig.PerformanceSync.RetentionDays,
		SyncEnabled:       appConfig.PerformanceSync.Enabled,
		LockNamespace:     appConfig.LockNamespace,
	}

	if syncConfig.IntervalMinutes <= 0 {
		syncConfig.IntervalMinutes = defaultPerformanceSyncIntervalMinutes
	}

	if syncConfig.MaxConcurrentJobs <= 0 {
		syncConfig.MaxConcurrentJobs = 1
	}

	if syncConfig.RetentionDays <= 0 {
		syncConfig.RetentionDays = defaultSnapshotRetentionDays
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"interval_minutes":    syncConfig.IntervalMinutes,
		"lookback_days":       syncConfig.LookbackDays,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"retention_days":      syncConfig.RetentionDays,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de métricas carregada")

	return &PerformanceSyncService{
		scheduler:      scheduler,
		config:         syncConfig,
		connectionRepo: connectionRepo,
		snapshotRepo:   snapshotRepo,
		syncer:         syncer,
		locker:         locker,
		syncRunning:    false,
	}
}

// Start inicia o agendador
func (s *PerformanceSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização de métricas desabilitada por configuração")
		return nil
	}

	logrus.WithField("interval_minutes", s.config.IntervalMinutes).
		Info("Iniciando agendador de sincronização de métricas")

	_, err := s.scheduler.Every(s.config.IntervalMinutes).Minutes().Do(func() {
		s.syncAllConnections()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de métricas: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de métricas")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllConnections importa as métricas de todas as conexões ativas
func (s *PerformanceSyncService) syncAllConnections() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de métricas já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	connections, err := s.connectionRepo.ListByStatus([]domain.ConnectionStatus{domain.ConnectionStatusActive})
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar conexões para sincronização de métricas")
		return
	}

	if len(connections) == 0 {
		logrus.Info("Nenhuma conexão ativa encontrada para sincronização de métricas")
		return
	}

	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for _, connection := range connections {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(conn *domain.Connection) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			s.syncConnection(conn)
		}(connection)
	}

	wg.Wait()

	s.pruneOldSnapshots()

	logrus.WithFields(logrus.Fields{
		"duration":    time.Since(startTime).String(),
		"connections": len(connections),
	}).Info("Sincronização de métricas concluída para todas as conexões")

	s.lastSyncCompletedAt = time.Now()
}

func (s *PerformanceSyncService) syncConnection(conn *domain.Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL())
	defer cancel()

	key := fmt.Sprintf("%s:lock:performance-sync:%s", s.config.LockNamespace, conn.ID)

	runExclusive(ctx, s.locker, key, s.lockTTL(), func() {
		result, err := s.syncer.PullPerformance(ctx, conn.ID, s.config.LookbackDays)
		if err != nil {
			logrus.WithError(err).WithField("connection_id", conn.ID).
				Error("Erro na sincronização de métricas da conexão")
			return
		}

		logrus.WithFields(logrus.Fields{
			"connection_id": conn.ID,
			"entities":      result.Entities,
			"snapshots":     result.Snapshots,
			"skipped":       result.Skipped,
			"errors":        result.Errors,
		}).Info("Métricas da conexão sincronizadas")
	})
}

// pruneOldSnapshots remove os snapshots fora da janela de retenção
func (s *PerformanceSyncService) pruneOldSnapshots() {
	removed, err := s.snapshotRepo.DeleteOlderThan(s.config.RetentionDays)
	if err != nil {
		logrus.WithError(err).Error("Erro ao limpar snapshots antigos")
		return
	}

	if removed > 0 {
		logrus.WithFields(logrus.Fields{
			"removed":        removed,
			"retention_days": s.config.RetentionDays,
		}).Info("Snapshots fora da janela de retenção removidos")
	}
}

func (s *PerformanceSyncService) lockTTL() time.Duration {
	return time.Duration(s.config.IntervalMinutes)*time.Minute + lockSafetyBuffer
}

// TriggerManualSync inicia manualmente uma sincronização de métricas
func (s *PerformanceSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de métricas já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual de métricas")
	go s.syncAllConnections()
}

// GetStatus retorna o status atual do agendador
func (s *PerformanceSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_interval_minutes":  s.config.IntervalMinutes,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"retention_days":         s.config.RetentionDays,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
