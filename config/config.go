package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	Postgres           Postgres
	Telegram           Telegram
	Redis              Redis
	API                API
	Storage            Storage
	Cache              Cache
	Jobs               Jobs
	HTTP               HTTP
	InstrumentsPerPage int `env:"INSTRUMENTS_PER_PAGE" envDefault:"10"`
}

type Postgres struct {
	Host            string `env:"PG_HOST" envDefault:"localhost"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME" envDefault:"instruments"`
	Password        string `env:"PG_PASSWORD" envDefault:""`
	User            string `env:"PG_USER" envDefault:"postgres"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"./migrations"`
}

// Telegram bot is disabled when Token is empty.
type Telegram struct {
	Token      string        `env:"TELEGRAM_TOKEN" envDefault:""`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	EtoroApi EtoroApi
}

type EtoroApi struct {
	Url             string `env:"ETORO_API_URL" envDefault:"https://api.etorostatic.com"`
	InstrumentsPath string `env:"ETORO_INSTRUMENTS_PATH" envDefault:"/sapi/instrumentsmetadata/V1.1/instruments"`
}

type Storage struct {
	Backend      string `env:"STORAGE_BACKEND" envDefault:"file"`
	SnapshotFile string `env:"SNAPSHOT_FILE" envDefault:"./instruments.json"`
	SnapshotKey  string `env:"SNAPSHOT_KEY" envDefault:"instruments"`
}

type Cache struct {
	SnapshotExpiration time.Duration `env:"CACHE_SNAPSHOT_EXPIRATION" envDefault:"5m"`
}

type Jobs struct {
	// zero disables the periodic refresh
	RefreshSnapshotInterval time.Duration `env:"REFRESH_SNAPSHOT_JOB_INTERVAL" envDefault:"24h"`
}

type HTTP struct {
	Addr           string  `env:"HTTP_ADDR" envDefault:":8080"`
	RateLimitRPS   float64 `env:"HTTP_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"HTTP_RATE_LIMIT_BURST" envDefault:"40"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	switch cfg.Storage.Backend {
	case StorageFile, StorageRedis, StoragePostgres:
	default:
		log.Fatalf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}

	if cfg.InstrumentsPerPage <= 0 {
		log.Fatalf("INSTRUMENTS_PER_PAGE must be positive, got %d", cfg.InstrumentsPerPage)
	}

	return cfg
}
