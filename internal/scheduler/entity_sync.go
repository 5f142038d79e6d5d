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

const defaultEntitySyncIntervalMinutes = 60

// EntitySyncConfig representa a configuração do agendador de sincronização de entidades
type EntitySyncConfig struct {
	IntervalMinutes   int
	MaxConcurrentJobs int
	SyncEnabled       bool
	LockNamespace     string
}

// EntitySyncService agenda a importação periódica da hierarquia de campanhas
// de todas as conexões ativas. Cada conexão roda sob um lock distribuído
// próprio, então instâncias paralelas do serviço nunca puxam a mesma conta
// duas vezes no mesmo ciclo.
type EntitySyncService struct {
	scheduler           *gocron.Scheduler
	config              EntitySyncConfig
	connectionRepo      repository.ConnectionRepository
	syncer              syncing.Syncer
	locker              CycleLocker
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewEntitySyncService cria uma nova instância do agendador de sincronização de entidades
func NewEntitySyncService(
	connectionRepo repository.ConnectionRepository,
	syncer syncing.Syncer,
	locker CycleLocker,
	appConfig *config.Config,
) *EntitySyncService {
	syncConfig := EntitySyncConfig{
		IntervalMinutes:   appConfig.EntitySync.IntervalMinutes,
		MaxConcurrentJobs: appConfig.EntitySync.MaxConcurrentJobs,
		SyncEnabled:       appConfig.EntitySync.Enabled,
		LockNamespace:     appConfig.LockNamespace,
	}

	if syncConfig.IntervalMinutes <= 0 {
		syncConfig.IntervalMinutes = defaultEntitySyncIntervalMinutes
	}

	if syncConfig.MaxConcurrentJobs <= 0 {
		syncConfig.MaxConcurrentJobs = 1
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"interval_minutes":    syncConfig.IntervalMinutes,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de sincronização de entidades carregada")

	return &EntitySyncService{
		scheduler:      scheduler,
		config:         syncConfig,
		connectionRepo: connectionRepo,
		syncer:         syncer,
		locker:         locker,
		syncRunning:    false,
	}
}

// Start inicia o agendador
func (s *EntitySyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização de entidades desabilitada por configuração")
		return nil
	}

	logrus.WithField("interval_minutes", s.config.IntervalMinutes).
		Info("Iniciando agendador de sincronização de entidades")

	_, err := s.scheduler.Every(s.config.IntervalMinutes).Minutes().Do(func() {
		s.syncAllConnections()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de entidades: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de entidades")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllConnections sincroniza a hierarquia de todas as conexões ativas
func (s *EntitySyncService) syncAllConnections() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de entidades já em andamento, ignorando")
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

	connections, err := s.activeConnections()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar conexões para sincronização de entidades")
		return
	}

	if len(connections) == 0 {
		logrus.Info("Nenhuma conexão ativa encontrada para sincronização de entidades")
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

	logrus.WithFields(logrus.Fields{
		"duration":    time.Since(startTime).String(),
		"connections": len(connections),
	}).Info("Sincronização de entidades concluída para todas as conexões")

	s.lastSyncCompletedAt = time.Now()
}

func (s *EntitySyncService) syncConnection(conn *domain.Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL())
	defer cancel()

	key := fmt.Sprintf("%s:lock:entity-sync:%s", s.config.LockNamespace, conn.ID)

	runExclusive(ctx, s.locker, key, s.lockTTL(), func() {
		result, err := s.syncer.Pull(ctx, conn.ID)
		if err != nil {
			logrus.WithError(err).WithField("connection_id", conn.ID).
				Error("Erro na sincronização de entidades da conexão")
			return
		}

		logrus.WithFields(logrus.Fields{
			"connection_id": conn.ID,
			"campaigns":     result.Campaigns,
			"ad_sets":       result.AdSets,
			"ads":           result.Ads,
			"skipped":       result.Skipped,
			"duration_ms":   result.DurationMs,
		}).Info("Hierarquia da conexão sincronizada")
	})
}

func (s *EntitySyncService) activeConnections() ([]*domain.Connection, error) {
	connections, err := s.connectionRepo.ListByStatus([]domain.ConnectionStatus{domain.ConnectionStatusActive})
	if err != nil {
		return nil, err
	}

	logrus.WithField("active_connections", len(connections)).
		Info("Conexões encontradas para sincronização de entidades")

	return connections, nil
}

func (s *EntitySyncService) lockTTL() time.Duration {
	return time.Duration(s.config.IntervalMinutes)*time.Minute + lockSafetyBuffer
}

// TriggerManualSync inicia manualmente uma sincronização de entidades
func (s *EntitySyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de entidades já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual de entidades")
	go s.syncAllConnections()
}

// GetStatus retorna o status atual do agendador
func (s *EntitySyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_interval_minutes":  s.config.IntervalMinutes,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
