package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the service configuration
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Elastic    ElasticConfig
	ServiceBus ServiceBusConfig
	Storage    StorageConfig
	Upload     UploadConfig
	CORS       CORSConfig
	NewRelic   NewRelicConfig
	Worker     WorkerConfig
}

// AppConfig identifies the running application
type AppConfig struct {
	Name    string
	Version string
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port            int
	Mode            string // debug, release, test
	GracefulTimeout time.Duration
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	AutoMigrate     bool
}

// RedisConfig holds the Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// ElasticConfig holds the Elasticsearch configuration
type ElasticConfig struct {
	URL      string
	Username string
	Password string
	Prefix   string
	Index    string
}

// ServiceBusConfig holds the Azure Service Bus configuration
type ServiceBusConfig struct {
	ConnectionString string
	QueueName        string
}

// StorageConfig holds the object store configuration for attachments
type StorageConfig struct {
	Bucket        string
	Region        string
	Prefix        string
	PresignExpiry time.Duration
	PublicBaseURL string
}

// UploadConfig limits accepted attachment uploads
type UploadConfig struct {
	MaxSize           int64
	AllowedExtensions []string
}

// CORSConfig holds the browser origins allowed to call the API
type CORSConfig struct {
	Origins []string
}

// NewRelicConfig holds the New Relic configuration
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// WorkerConfig holds background job intervals
type WorkerConfig struct {
	ReindexInterval      time.Duration
	OverdueCheckInterval time.Duration
}

// InitConfig initializes the configuration using Viper
func InitConfig(cfgFile string) error {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/outcry")
		viper.SetConfigName("config")
	}

	// OUTCRY_DATABASE_HOST overrides database.host
	viper.SetEnvPrefix("OUTCRY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("No config file found, using defaults and environment variables")
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	return nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("app.name", "Outcry Projects API")
	viper.SetDefault("app.version", "2.0.0")

	viper.SetDefault("server.port", 5001)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.gracefultimeout", 30*time.Second)

	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "outcry")
	viper.SetDefault("database.password", "outcry")
	viper.SetDefault("database.dbname", "outcry")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.path", "outcry.db")
	viper.SetDefault("database.maxidleconns", 10)
	viper.SetDefault("database.maxopenconns", 50)
	viper.SetDefault("database.connmaxlifetime", 30*time.Minute)
	viper.SetDefault("database.loglevel", "warn")
	viper.SetDefault("database.automigrate", true)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl", 10*time.Minute)

	viper.SetDefault("elastic.prefix", "outcry")
	viper.SetDefault("elastic.index", "jobs")

	// no default connection string; an empty one selects the logging client
	viper.SetDefault("servicebus.queuename", "outcry-events")

	viper.SetDefault("storage.region", "ap-southeast-2")
	viper.SetDefault("storage.prefix", "outcry")
	viper.SetDefault("storage.presignexpiry", 7*24*time.Hour)

	viper.SetDefault("upload.maxsize", 100*1024*1024)
	viper.SetDefault("upload.allowedextensions", []string{
		"pdf", "doc", "docx", "xls", "xlsx", "jpg", "jpeg", "png", "gif", "zip",
	})

	viper.SetDefault("cors.origins", []string{"http://localhost:3000", "http://localhost:5001"})

	viper.SetDefault("newrelic.appname", "Outcry Projects API")
	viper.SetDefault("newrelic.enabled", false)

	viper.SetDefault("worker.reindexinterval", 15*time.Minute)
	viper.SetDefault("worker.overduecheckinterval", time.Hour)
}

// Load loads the configuration
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:    viper.GetString("app.name"),
			Version: viper.GetString("app.version"),
		},
		Server: ServerConfig{
			Port:            viper.GetInt("server.port"),
			Mode:            viper.GetString("server.mode"),
			GracefulTimeout: viper.GetDuration("server.gracefultimeout"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(viper.GetString("database.driver")),
			Host:            viper.GetString("database.host"),
			Port:            viper.GetInt("database.port"),
			User:            viper.GetString("database.user"),
			Password:        viper.GetString("database.password"),
			DBName:          viper.GetString("database.dbname"),
			SSLMode:         viper.GetString("database.sslmode"),
			Path:            viper.GetString("database.path"),
			MaxIdleConns:    viper.GetInt("database.maxidleconns"),
			MaxOpenConns:    viper.GetInt("database.maxopenconns"),
			ConnMaxLifetime: viper.GetDuration("database.connmaxlifetime"),
			LogLevel:        viper.GetString("database.loglevel"),
			AutoMigrate:     viper.GetBool("database.automigrate"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetInt("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			TTL:      viper.GetDuration("redis.ttl"),
		},
		Elastic: ElasticConfig{
			URL:      viper.GetString("elastic.url"),
			Username: viper.GetString("elastic.username"),
			Password: viper.GetString("elastic.password"),
			Prefix:   viper.GetString("elastic.prefix"),
			Index:    viper.GetString("elastic.index"),
		},
		ServiceBus: ServiceBusConfig{
			ConnectionString: viper.GetString("servicebus.connectionstring"),
			QueueName:        viper.GetString("servicebus.queuename"),
		},
		Storage: StorageConfig{
			Bucket:        viper.GetString("storage.bucket"),
			Region:        viper.GetString("storage.region"),
			Prefix:        viper.GetString("storage.prefix"),
			PresignExpiry: viper.GetDuration("storage.presignexpiry"),
			PublicBaseURL: viper.GetString("storage.publicbaseurl"),
		},
		Upload: UploadConfig{
			MaxSize:           viper.GetInt64("upload.maxsize"),
			AllowedExtensions: normalizeExtensions(viper.GetStringSlice("upload.allowedextensions")),
		},
		CORS: CORSConfig{
			Origins: viper.GetStringSlice("cors.origins"),
		},
		NewRelic: NewRelicConfig{
			AppName:    viper.GetString("newrelic.appname"),
			LicenseKey: viper.GetString("newrelic.licensekey"),
			Enabled:    viper.GetBool("newrelic.enabled"),
		},
		Worker: WorkerConfig{
			ReindexInterval:      viper.GetDuration("worker.reindexinterval"),
			OverdueCheckInterval: viper.GetDuration("worker.overduecheckinterval"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.maxsize must be positive")
	}
	if c.NewRelic.Enabled && c.NewRelic.LicenseKey == "" {
		return errors.New("newrelic.licensekey is required when newrelic is enabled")
	}
	return nil
}

// FormatIndex returns the prefixed Elasticsearch index name
func FormatIndex(cfg ElasticConfig, index string) string {
	if cfg.Prefix == "" {
		return index
	}
	return cfg.Prefix + "-" + index
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}
