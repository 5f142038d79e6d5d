package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/campaign-manager-api/infrastructure/database/redis"
	"github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/campaign-manager-api/infrastructure/queue"
	"github.com/vfg2006/campaign-manager-api/infrastructure/repository"
	"github.com/vfg2006/campaign-manager-api/internal/api"
	"github.com/vfg2006/campaign-manager-api/internal/config"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/internal/scheduler"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/launching"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/optimizing"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/syncing"
	"github.com/vfg2006/campaign-manager-api/internal/worker"
	"github.com/vfg2006/campaign-manager-api/pkg/cipher"
	"github.com/vfg2006/campaign-manager-api/pkg/metrics"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	redisClient := redisconn(ctx, cfg.Redis)
	defer redisClient.Close()

	appMetrics := metrics.New()
	metrics.SetGlobal(appMetrics)

	tokenCipher, err := cipher.New(cfg.Crypto.Secret)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar a cifra de tokens")
	}

	connectionRepo := repository.NewConnectionRepository(pgConn, tokenCipher)
	campaignRepo := repository.NewCampaignRepository(pgConn)
	adSetRepo := repository.NewAdSetRepository(pgConn)
	adRepo := repository.NewAdRepository(pgConn)
	snapshotRepo := repository.NewPerformanceSnapshotRepository(pgConn)
	optimizationLogRepo := repository.NewOptimizationLogRepository(pgConn)

	metaClient := metaclient.NewClient(cfg, nil, redisClient, connectionRepo)

	syncService := syncing.NewService(
		metaClient,
		connectionRepo,
		campaignRepo,
		adSetRepo,
		adRepo,
		snapshotRepo,
	)

	launchQueue := queue.NewLaunchQueue(redisClient, queue.Config{
		Namespace: cfg.Launch.QueueNamespace,
		JobTTL:    time.Duration(cfg.Launch.JobTTLMinutes) * time.Minute,
	})

	launchService := launching.NewService(launchQueue, launching.Config{
		PollInterval: time.Duration(cfg.Launch.PollIntervalSeconds) * time.Second,
		WaitTimeout:  time.Duration(cfg.Launch.TimeoutSeconds) * time.Second,
	})

	// O worker roda no mesmo processo da API; em ambientes com mais de uma
	// réplica, apenas uma delas deve subir com LAUNCH_WORKER_ENABLED.
	if cfg.Launch.WorkerEnabled {
		launchProcessor := worker.NewLaunchProcessor(
			syncService,
			connectionRepo,
			campaignRepo,
			adSetRepo,
			adRepo,
		)

		launchWorker := worker.New(launchQueue, launchProcessor, worker.Config{
			PollInterval: time.Duration(cfg.Launch.PollIntervalSeconds) * time.Second,
		})

		go launchWorker.Run(ctx)
		logrus.Info("Worker de lançamentos iniciado com sucesso")
	} else {
		logrus.Warn("Worker de lançamentos desabilitado; jobs ficarão pendentes na fila")
	}

	optimizationService := optimizing.NewService(
		syncService,
		connectionRepo,
		adSetRepo,
		adRepo,
		snapshotRepo,
		optimizationLogRepo,
		optimizing.Config{
			Mode:         domain.OptimizationMode(cfg.Optimization.Mode),
			LookbackDays: cfg.Optimization.LookbackDays,
		},
	)

	// Inicializa os agendadores de sincronização separados
	entitySyncService := scheduler.NewEntitySyncService(
		connectionRepo,
		syncService,
		redisClient, // Implementa CycleLocker
		cfg,
	)

	performanceSyncService := scheduler.NewPerformanceSyncService(
		connectionRepo,
		snapshotRepo,
		syncService,
		redisClient, // Implementa CycleLocker
		cfg,
	)

	optimizationCycleService := scheduler.NewOptimizationCycleService(
		connectionRepo,
		optimizationService,
		redisClient, // Implementa CycleLocker
		cfg,
	)

	// Inicia os agendadores em background
	if err := entitySyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de entidades")
	} else {
		logrus.Info("Agendador de sincronização de entidades iniciado com sucesso")
	}

	if err := performanceSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de métricas")
	} else {
		logrus.Info("Agendador de sincronização de métricas iniciado com sucesso")
	}

	if err := optimizationCycleService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de ciclos de otimização")
	} else {
		logrus.Info("Agendador de ciclos de otimização iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		launchService,
		optimizationService,
		connectionRepo,
		appMetrics,
		entitySyncService,        // Serviço de sincronização de entidades
		performanceSyncService,   // Serviço de sincronização de métricas
		optimizationCycleService, // Serviço de ciclos de otimização
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

// redisconn cria o cliente Redis usado pela fila, pelos locks e pelo
// contador de rate limit
func redisconn(ctx context.Context, redisConfig config.Redis) *redis.Client {
	client, err := redis.NewClient(ctx, redisConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao Redis")
	}

	logrus.Info("Conexão com Redis estabelecida com sucesso")
	return client
}
