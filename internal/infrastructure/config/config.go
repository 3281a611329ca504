package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Env        string
	GRPCServer GRPCServer
	HTTPServer HTTPServer
	Database   Database
	Redis      Redis
	Scheduler  Scheduler
	Pipeline   Pipeline
	Google     Google
	Twitter    Twitter
	S3         S3
}

type GRPCServer struct {
	Address string
	Port    int `validate:"gte=1,lte=65535"`
}

type HTTPServer struct {
	Address string
	Port    int `validate:"gte=1,lte=65535"`
}

type Database struct {
	Driver     string `validate:"oneof=postgres sqlite memory"`
	Username   string
	Password   string
	Host       string
	Port       string
	DbName     string
	SSLMode    string
	SQLitePath string
}

type Redis struct {
	Enabled  bool
	Address  string
	Port     int
	Password string
	DB       int
	PoolSize int
	LockKey  string
	LockTTL  time.Duration `validate:"gt=0"`
}

type Scheduler struct {
	Enabled  bool
	Interval time.Duration `validate:"gte=1m"`
}

type Pipeline struct {
	MaxAttempts    int    `validate:"gte=1,lte=10"`
	MaxChars       int    `validate:"gte=1"`
	MediaDir       string `validate:"required"`
	FallbackPolicy string `validate:"oneof=abort text_only"`
	SearchBackoff  time.Duration
	NetworkTimeout time.Duration `validate:"gt=0"`
	MaxImageWidth  int           `validate:"gte=0"`
	MaxImagePixels int           `validate:"gte=1"`
	JPEGQuality    int           `validate:"gte=1,lte=100"`
}

type Google struct {
	APIKey    string
	CX        string
	BaseURL   string `validate:"url"`
	ImageSize string
}

type Twitter struct {
	DryRun         bool
	ConsumerKey    string `validate:"required_if=DryRun false"`
	ConsumerSecret string `validate:"required_if=DryRun false"`
	AccessToken    string `validate:"required_if=DryRun false"`
	AccessSecret   string `validate:"required_if=DryRun false"`
	APIBaseURL     string `validate:"url"`
	UploadURL      string `validate:"url"`
}

type S3 struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	DisableSSL      bool
}

// PostgresDSN builds the pgx connection string.
func (d Database) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.DbName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// SQLiteDSN enables foreign keys so image rows cascade with their post.
func (d Database) SQLiteDSN() string {
	return d.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Load reads .env, then the YAML file at dir/config.yaml, then the
// environment. Environment keys are the upper-cased config keys with dots
// replaced by underscores, e.g. GOOGLE_API_KEY for google.api_key.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		GRPCServer: GRPCServer{
			Address: v.GetString("grpc_server.address"),
			Port:    v.GetInt("grpc_server.port"),
		},
		HTTPServer: HTTPServer{
			Address: v.GetString("http_server.address"),
			Port:    v.GetInt("http_server.port"),
		},
		Database: Database{
			Driver:     v.GetString("database.driver"),
			Username:   v.GetString("database.username"),
			Password:   v.GetString("database.password"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			DbName:     v.GetString("database.db_name"),
			SSLMode:    v.GetString("database.ssl_mode"),
			SQLitePath: v.GetString("database.sqlite_path"),
		},
		Redis: Redis{
			Enabled:  v.GetBool("redis.enabled"),
			Address:  v.GetString("redis.address"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			PoolSize: v.GetInt("redis.pool_size"),
			LockKey:  v.GetString("redis.lock_key"),
			LockTTL:  v.GetDuration("redis.lock_ttl"),
		},
		Scheduler: Scheduler{
			Enabled:  v.GetBool("scheduler.enabled"),
			Interval: v.GetDuration("scheduler.interval"),
		},
		Pipeline: Pipeline{
			MaxAttempts:    v.GetInt("pipeline.max_attempts"),
			MaxChars:       v.GetInt("pipeline.max_chars"),
			MediaDir:       v.GetString("pipeline.media_dir"),
			FallbackPolicy: v.GetString("pipeline.fallback_policy"),
			SearchBackoff:  v.GetDuration("pipeline.search_backoff"),
			NetworkTimeout: v.GetDuration("pipeline.network_timeout"),
			MaxImageWidth:  v.GetInt("pipeline.max_image_width"),
			MaxImagePixels: v.GetInt("pipeline.max_image_pixels"),
			JPEGQuality:    v.GetInt("pipeline.jpeg_quality"),
		},
		Google: Google{
			APIKey:    v.GetString("google.api_key"),
			CX:        v.GetString("google.cx"),
			BaseURL:   v.GetString("google.base_url"),
			ImageSize: v.GetString("google.image_size"),
		},
		Twitter: Twitter{
			DryRun:         v.GetBool("twitter.dry_run"),
			ConsumerKey:    v.GetString("twitter.consumer_key"),
			ConsumerSecret: v.GetString("twitter.consumer_secret"),
			AccessToken:    v.GetString("twitter.access_token"),
			AccessSecret:   v.GetString("twitter.access_secret"),
			APIBaseURL:     v.GetString("twitter.api_base_url"),
			UploadURL:      v.GetString("twitter.upload_url"),
		},
		S3: S3{
			Region:          v.GetString("s3.region"),
			Endpoint:        v.GetString("s3.endpoint"),
			AccessKeyID:     v.GetString("s3.access_key_id"),
			SecretAccessKey: v.GetString("s3.secret_access_key"),
			DisableSSL:      v.GetBool("s3.disable_ssl"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("grpc_server.address", "0.0.0.0")
	v.SetDefault("grpc_server.port", 50061)

	v.SetDefault("http_server.address", "0.0.0.0")
	v.SetDefault("http_server.port", 8080)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "admin")
	v.SetDefault("database.host", "tweetbot-db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.db_name", "tweetbot")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "data/tweetbot.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "redis")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.lock_key", "tweetbot:pipeline:lock")
	v.SetDefault("redis.lock_ttl", 15*time.Minute)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", 4*time.Hour)

	v.SetDefault("pipeline.max_attempts", 7)
	v.SetDefault("pipeline.max_chars", 280)
	v.SetDefault("pipeline.media_dir", "temp_images")
	v.SetDefault("pipeline.fallback_policy", "abort")
	v.SetDefault("pipeline.search_backoff", 500*time.Millisecond)
	v.SetDefault("pipeline.network_timeout", 10*time.Second)
	v.SetDefault("pipeline.max_image_width", 1600)
	v.SetDefault("pipeline.max_image_pixels", 40_000_000)
	v.SetDefault("pipeline.jpeg_quality", 85)

	v.SetDefault("google.api_key", "")
	v.SetDefault("google.cx", "")
	v.SetDefault("google.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("google.image_size", "large")

	v.SetDefault("twitter.dry_run", false)
	v.SetDefault("twitter.consumer_key", "")
	v.SetDefault("twitter.consumer_secret", "")
	v.SetDefault("twitter.access_token", "")
	v.SetDefault("twitter.access_secret", "")
	v.SetDefault("twitter.api_base_url", "https://api.twitter.com/1.1/")
	v.SetDefault("twitter.upload_url", "https://upload.twitter.com/1.1/media/upload.json")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.disable_ssl", false)
}
