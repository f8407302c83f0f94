package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Ref    RefConfig    `yaml:"ref" mapstructure:"ref"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Worker WorkerConfig `yaml:"worker" mapstructure:"worker"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// RefConfig locates the reference geometry inputs.
type RefConfig struct {
	DataDir        string `yaml:"data_dir" mapstructure:"data_dir"`
	ZIPShapefile   string `yaml:"zip_shapefile" mapstructure:"zip_shapefile"`
	StateShapefile string `yaml:"state_shapefile" mapstructure:"state_shapefile"`
	OffsetsFile    string `yaml:"offsets_file" mapstructure:"offsets_file"`
	ZIPKeyField    string `yaml:"zip_key_field" mapstructure:"zip_key_field"`
	StateKeyField  string `yaml:"state_key_field" mapstructure:"state_key_field"`
	CacheDir       string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// StoreConfig configures the job store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// WorkerConfig configures the job worker pool.
type WorkerConfig struct {
	Concurrency     int `yaml:"concurrency" mapstructure:"concurrency"`
	PollIntervalMS  int `yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	JobTimeoutSecs  int `yaml:"job_timeout_secs" mapstructure:"job_timeout_secs"`
	ClaimsPerSecond int `yaml:"claims_per_second" mapstructure:"claims_per_second"`
}

// FetchConfig configures reference data downloads.
type FetchConfig struct {
	ZIPURL      string `yaml:"zip_url" mapstructure:"zip_url"`
	StateURL    string `yaml:"state_url" mapstructure:"state_url"`
	FTPHost     string `yaml:"ftp_host" mapstructure:"ftp_host"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries     int    `yaml:"retries" mapstructure:"retries"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ZIPMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ref.data_dir", "refdata")
	v.SetDefault("ref.zip_shapefile", "refdata/zip_poly.shp")
	v.SetDefault("ref.state_shapefile", "refdata/states.shp")
	v.SetDefault("ref.offsets_file", "refdata/state_abbv_offsets.json")
	v.SetDefault("ref.zip_key_field", "ZIP_CODE")
	v.SetDefault("ref.state_key_field", "STATE_ABBR")
	v.SetDefault("ref.cache_dir", "refdata/cache")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "zipmap.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_bytes", int64(16<<20))
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.poll_interval_ms", 500)
	v.SetDefault("worker.job_timeout_secs", 300)
	v.SetDefault("worker.claims_per_second", 4)
	v.SetDefault("fetch.zip_url", "https://www2.census.gov/geo/tiger/GENZ2023/shp/cb_2023_us_zcta520_500k.zip")
	v.SetDefault("fetch.state_url", "https://www2.census.gov/geo/tiger/GENZ2023/shp/cb_2023_us_state_500k.zip")
	v.SetDefault("fetch.ftp_host", "ftp2.census.gov:21")
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a given run mode depends on. Modes are the
// long-running entry points: "serve", "worker", and "fetch". One error lists
// every problem found.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "serve":
		checkStore()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.MaxUploadBytes <= 0 {
			problems = append(problems, "server.max_upload_bytes must be > 0")
		}
	case "worker":
		checkStore()
		if c.Worker.Concurrency < 1 || c.Worker.Concurrency > 32 {
			problems = append(problems, "worker.concurrency must be between 1 and 32")
		}
		if c.Worker.JobTimeoutSecs <= 0 {
			problems = append(problems, "worker.job_timeout_secs must be > 0")
		}
	case "fetch":
		if c.Fetch.ZIPURL == "" && c.Fetch.FTPHost == "" {
			problems = append(problems, "fetch.zip_url or fetch.ftp_host is required")
		}
		if c.Ref.DataDir == "" {
			problems = append(problems, "ref.data_dir is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
