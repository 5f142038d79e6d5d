package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Redis           Redis           `mapstructure:",squash"`
	Meta            Meta            `mapstructure:",squash"`
	Auth            Auth            `mapstructure:",squash"`
	Crypto          Crypto          `mapstructure:",squash"`
	EntitySync      EntitySync      `mapstructure:",squash"`
	PerformanceSync PerformanceSync `mapstructure:",squash"`
	Optimization    Optimization    `mapstructure:",squash"`
	Launch          Launch          `mapstructure:",squash"`
	LockNamespace   string          `mapstructure:"lock_namespace"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN                    string `mapstructure:"-"`
	Driver                 string `mapstructure:"database_driver"`
	Password               string `mapstructure:"database_password"`
	URL                    string `mapstructure:"database_url"`
	User                   string `mapstructure:"database_user"`
	MaxOpenConns           int    `mapstructure:"database_max_open_conns"`
	MaxIdleConns           int    `mapstructure:"database_max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"database_conn_max_lifetime_minutes"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

type Meta struct {
	BaseURL      string `mapstructure:"meta_base_url"`
	URL          string `mapstructure:"-"`
	Version      string `mapstructure:"meta_version"`
	AppID        string `mapstructure:"meta_app_id"`
	AppSecret    string `mapstructure:"meta_app_secret"`
	RateLimitCap int64  `mapstructure:"meta_rate_limit_cap"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type Crypto struct {
	Secret string `mapstructure:"crypto_secret"`
}

type EntitySync struct {
	IntervalMinutes   int  `mapstructure:"entity_sync_interval_minutes"`
	MaxConcurrentJobs int  `mapstructure:"entity_sync_max_concurrent_jobs"`
	Enabled           bool `mapstructure:"entity_sync_enabled"`
}

type PerformanceSync struct {
	IntervalMinutes   int  `mapstructure:"performance_sync_interval_minutes"`
	LookbackDays      int  `mapstructure:"performance_sync_lookback_days"`
	MaxConcurrentJobs int  `mapstructure:"performance_sync_max_concurrent_jobs"`
	RetentionDays     int  `mapstructure:"performance_sync_retention_days"`
	Enabled           bool `mapstructure:"performance_sync_enabled"`
}

type Optimization struct {
	IntervalMinutes int    `mapstructure:"optimization_interval_minutes"`
	LookbackDays    int    `mapstructure:"optimization_lookback_days"`
	Enabled         bool   `mapstructure:"optimization_enabled"`
	Mode            string `mapstructure:"optimization_mode"`
}

type Launch struct {
	PollIntervalSeconds int    `mapstructure:"launch_poll_interval_seconds"`
	TimeoutSeconds      int    `mapstructure:"launch_timeout_seconds"`
	JobTTLMinutes       int    `mapstructure:"launch_job_ttl_minutes"`
	QueueNamespace      string `mapstructure:"launch_queue_namespace"`
	WorkerEnabled       bool   `mapstructure:"launch_worker_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/campaigns")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME_MINUTES", 30)

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "your_app_id")
	viper.SetDefault("META_APP_SECRET", "your_app_secret")
	// 90% das 200 chamadas/hora permitidas por conta
	viper.SetDefault("META_RATE_LIMIT_CAP", 180)

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")     // ONLY LOCAL
	viper.SetDefault("CRYPTO_SECRET", "your_crypto_secret") // ONLY LOCAL

	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")

	// Defaults para sincronização da hierarquia de entidades
	viper.SetDefault("ENTITY_SYNC_INTERVAL_MINUTES", 60)
	viper.SetDefault("ENTITY_SYNC_MAX_CONCURRENT_JOBS", 3)
	viper.SetDefault("ENTITY_SYNC_ENABLED", false)

	// Defaults para sincronização de métricas de desempenho
	viper.SetDefault("PERFORMANCE_SYNC_INTERVAL_MINUTES", 180)
	viper.SetDefault("PERFORMANCE_SYNC_LOOKBACK_DAYS", 7)
	viper.SetDefault("PERFORMANCE_SYNC_MAX_CONCURRENT_JOBS", 3)
	viper.SetDefault("PERFORMANCE_SYNC_RETENTION_DAYS", 90)
	viper.SetDefault("PERFORMANCE_SYNC_ENABLED", false)

	// Defaults para os ciclos de otimização
	viper.SetDefault("OPTIMIZATION_INTERVAL_MINUTES", 60)
	viper.SetDefault("OPTIMIZATION_LOOKBACK_DAYS", 7)
	viper.SetDefault("OPTIMIZATION_ENABLED", false)
	viper.SetDefault("OPTIMIZATION_MODE", "MONITOR") // MONITOR apenas recomenda; ACTIVE aplica

	// Defaults para a fila de lançamento
	viper.SetDefault("LAUNCH_POLL_INTERVAL_SECONDS", 1)
	viper.SetDefault("LAUNCH_TIMEOUT_SECONDS", 30)
	viper.SetDefault("LAUNCH_JOB_TTL_MINUTES", 60)
	viper.SetDefault("LAUNCH_QUEUE_NAMESPACE", "campaign-manager")
	viper.SetDefault("LAUNCH_WORKER_ENABLED", true)

	viper.SetDefault("LOCK_NAMESPACE", "campaign-manager")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
