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
	"github.com/vfg2006/campaign-manager-api/internal/usecases/optimizing"
)

const defaultOptimizationIntervalMinutes = 60

// OptimizationCycleConfig representa a configuração do agendador de otimização
type OptimizationCycleConfig struct {
	IntervalMinutes int
	Enabled         bool
	LockNamespace   string
}

// OptimizationCycleService agenda o ciclo de otimização de cada conexão
// ativa. As conexões rodam em sequência; o lock distribuído por conexão
// garante um único ciclo por conta mesmo com várias instâncias no ar.
type OptimizationCycleService struct {
	scheduler            *gocron.Scheduler
	config               OptimizationCycleConfig
	connectionRepo       repository.ConnectionRepository
	optimizer            optimizing.Optimizer
	locker               CycleLocker
	cycleRunning         bool
	cycleMutex           sync.Mutex
	lastCycleStartedAt   time.Time
	lastCycleCompletedAt time.Time
}

// NewOptimizationCycleService cria uma nova instância do agendador de otimização
func NewOptimizationCycleService(
	connectionRepo repository.ConnectionRepository,
	optimizer optimizing.Optimizer,
	locker CycleLocker,
	appConfig *config.Config,
) *OptimizationCycleService {
	cycleConfig := OptimizationCycleConfig{
		IntervalMinutes: appConfig.Optimization.IntervalMinutes,
		Enabled:         appConfig.Optimization.Enabled,
		LockNamespace:   appConfig.LockNamespace,
	}

	if cycleConfig.IntervalMinutes <= 0 {
		cycleConfig.IntervalMinutes = defaultOptimizationIntervalMinutes
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"interval_minutes": cycleConfig.IntervalMinutes,
		"enabled":          cycleConfig.Enabled,
		"mode":             appConfig.Optimization.Mode,
	}).Info("Configuração do agendador de otimização carregada")

	return &OptimizationCycleService{
		scheduler:      scheduler,
		config:         cycleConfig,
		connectionRepo: connectionRepo,
		optimizer:      optimizer,
		locker:         locker,
		cycleRunning:   false,
	}
}

// Start inicia o agendador
func (s *OptimizationCycleService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Motor de otimização desabilitado por configuração")
		return nil
	}

	logrus.WithField("interval_minutes", s.config.IntervalMinutes).
		Info("Iniciando agendador do motor de otimização")

	_, err := s.scheduler.Every(s.config.IntervalMinutes).Minutes().Do(func() {
		s.runAllCycles()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar o motor de otimização: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do motor de otimização")
		s.scheduler.Stop()
	}()

	return nil
}

// runAllCycles roda um ciclo de otimização para cada conexão ativa
func (s *OptimizationCycleService) runAllCycles() {
	s.cycleMutex.Lock()
	if s.cycleRunning {
		s.cycleMutex.Unlock()
		logrus.Info("Ciclos de otimização já em andamento, ignorando")
		return
	}
	s.cycleRunning = true
	s.cycleMutex.Unlock()

	startTime := time.Now()
	s.lastCycleStartedAt = startTime

	defer func() {
		s.cycleMutex.Lock()
		s.cycleRunning = false
		s.cycleMutex.Unlock()
	}()

	connections, err := s.connectionRepo.ListByStatus([]domain.ConnectionStatus{domain.ConnectionStatusActive})
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar conexões para o ciclo de otimização")
		return
	}

	if len(connections) == 0 {
		logrus.Info("Nenhuma conexão ativa encontrada para o ciclo de otimização")
		return
	}

	for _, connection := range connections {
		s.runCycle(connection)
	}

	logrus.WithFields(logrus.Fields{
		"duration":    time.Since(startTime).String(),
		"connections": len(connections),
	}).Info("Ciclos de otimização concluídos para todas as conexões")

	s.lastCycleCompletedAt = time.Now()
}

func (s *OptimizationCycleService) runCycle(conn *domain.Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL())
	defer cancel()

	key := fmt.Sprintf("%s:lock:optimization:%s", s.config.LockNamespace, conn.ID)

	runExclusive(ctx, s.locker, key, s.lockTTL(), func() {
		summary, err := s.optimizer.RunCycle(ctx, conn.ID)
		if err != nil {
			logrus.WithError(err).WithField("connection_id", conn.ID).
				Error("Erro no ciclo de otimização da conexão")
			return
		}

		logrus.WithFields(logrus.Fields{
			"connection_id": conn.ID,
			"cycle_id":      summary.CycleID,
			"mode":          summary.Mode,
			"evaluated":     summary.Evaluated,
			"fired":         summary.Fired,
			"errors":        summary.Errors,
		}).Info("Ciclo de otimização da conexão concluído")
	})
}

func (s *OptimizationCycleService) lockTTL() time.Duration {
	return time.Duration(s.config.IntervalMinutes)*time.Minute + lockSafetyBuffer
}

// TriggerManualSync inicia manualmente os ciclos de otimização
func (s *OptimizationCycleService) TriggerManualSync() {
	s.cycleMutex.Lock()
	if s.cycleRunning {
		s.cycleMutex.Unlock()
		logrus.Info("Ciclos de otimização já em andamento, ignorando solicitação manual")
		return
	}
	s.cycleMutex.Unlock()

	logrus.Info("Iniciando ciclos manuais de otimização")
	go s.runAllCycles()
}

// GetStatus retorna o status atual do agendador
func (s *OptimizationCycleService) GetStatus() map[string]any {
	return map[string]any{
		"enabled":                 s.config.Enabled,
		"interval_minutes":        s.config.IntervalMinutes,
		"last_cycle_started_at":   s.lastCycleStartedAt,
		"last_cycle_completed_at": s.lastCycleCompletedAt,
	}
}
