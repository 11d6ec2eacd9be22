package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	Server        ServerConfig
	Logging       LoggingConfig
	Scylla        ScyllaConfig
	Redis         RedisConfig
	Elasticsearch ElasticsearchConfig
	Clickhouse    ClickhouseConfig
	Kafka         KafkaConfig
	SMTP          SMTPConfig
	Hashing       HashingConfig
	KMS           KMSConfig
	Bucketing     BucketingConfig
	OTP           OTPConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	TLSPort      int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	EnableTLS   bool
	AutoCert    bool
	Domain      string
	CertFile    string
	KeyFile     string
	AutoCertDir string
	Email       string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ScyllaConfig struct {
	Nodes    []string
	Keyspace string
	Username string
	Password string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type ElasticsearchConfig struct {
	URL           string
	Username      string
	Password      string
	PropertyIndex string
}

type ClickhouseConfig struct {
	URL      string
	Username string
	Password string
	Database string
}

type KafkaConfig struct {
	Brokers       []string
	WorkflowTopic string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// ReviewerAddress receives new-submission notifications.
	ReviewerAddress string
}

type HashingConfig struct {
	Argon2MemoryCost  int
	Argon2TimeCost    int
	Argon2Parallelism int
}

type KMSConfig struct {
	Enabled bool
	KeyID   string
	Region  string
}

type BucketingConfig struct {
	IdentityBuckets int
	PropertyBuckets int
}

type OTPConfig struct {
	// ExpiryWindow bounds both password-reset OTPs and registration OTPs.
	ExpiryWindow time.Duration
}

var (
	global *Config
	once   sync.Once
)

// LoadConfig reads configuration from the environment (and an optional
// .env file) exactly once and caches the result globally.
func LoadConfig() *Config {
	once.Do(func() {
		// Missing .env is fine; containers inject real env vars.
		_ = godotenv.Load()

		global = &Config{
			Environment: getEnv("ENVIRONMENT", "development"),
			Server: ServerConfig{
				Host:         getEnv("SERVER_HOST", "0.0.0.0"),
				Port:         getEnvInt("SERVER_PORT", 8080),
				TLSPort:      getEnvInt("SERVER_TLS_PORT", 8443),
				ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
				WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
				IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
				EnableTLS:    getEnvBool("SERVER_ENABLE_TLS", false),
				AutoCert:     getEnvBool("SERVER_AUTO_CERT", false),
				Domain:       getEnv("SERVER_DOMAIN", "localhost"),
				CertFile:     getEnv("SERVER_CERT_FILE", ""),
				KeyFile:      getEnv("SERVER_KEY_FILE", ""),
				AutoCertDir:  getEnv("SERVER_AUTOCERT_DIR", "/var/lib/realty/certs"),
				Email:        getEnv("SERVER_ACME_EMAIL", ""),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
			Scylla: ScyllaConfig{
				Nodes:    getEnvList("SCYLLA_NODES", "127.0.0.1:9042"),
				Keyspace: getEnv("SCYLLA_KEYSPACE", "realty"),
				Username: getEnv("SCYLLA_USERNAME", ""),
				Password: getEnv("SCYLLA_PASSWORD", ""),
			},
			Redis: RedisConfig{
				URL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
				PoolSize: getEnvInt("REDIS_POOL_SIZE", 50),
			},
			Elasticsearch: ElasticsearchConfig{
				URL:           getEnv("ELASTICSEARCH_URL", "http://127.0.0.1:9200"),
				Username:      getEnv("ELASTICSEARCH_USERNAME", ""),
				Password:      getEnv("ELASTICSEARCH_PASSWORD", ""),
				PropertyIndex: getEnv("ELASTICSEARCH_PROPERTY_INDEX", "realty-properties"),
			},
			Clickhouse: ClickhouseConfig{
				URL:      getEnv("CLICKHOUSE_URL", "http://127.0.0.1:8123"),
				Username: getEnv("CLICKHOUSE_USERNAME", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
				Database: getEnv("CLICKHOUSE_DATABASE", "realty"),
			},
			Kafka: KafkaConfig{
				Brokers:       getEnvList("KAFKA_BROKERS", "127.0.0.1:9092"),
				WorkflowTopic: getEnv("KAFKA_WORKFLOW_TOPIC", "realty.workflow-events"),
			},
			SMTP: SMTPConfig{
				Host:            getEnv("SMTP_HOST", ""),
				Port:            getEnv("SMTP_PORT", "465"),
				Username:        getEnv("SMTP_USERNAME", ""),
				Password:        getEnv("SMTP_PASSWORD", ""),
				From:            getEnv("SMTP_FROM", "no-reply@realty.local"),
				ReviewerAddress: getEnv("SMTP_REVIEWER_ADDRESS", "reviews@realty.local"),
			},
			Hashing: HashingConfig{
				Argon2MemoryCost:  getEnvInt("ARGON2_MEMORY_COST", 65536),
				Argon2TimeCost:    getEnvInt("ARGON2_TIME_COST", 3),
				Argon2Parallelism: getEnvInt("ARGON2_PARALLELISM", 2),
			},
			KMS: KMSConfig{
				Enabled: getEnvBool("KMS_ENABLED", false),
				KeyID:   getEnv("KMS_KEY_ID", ""),
				Region:  getEnv("KMS_REGION", "us-east-1"),
			},
			Bucketing: BucketingConfig{
				IdentityBuckets: getEnvInt("IDENTITY_BUCKETS", 64),
				PropertyBuckets: getEnvInt("PROPERTY_BUCKETS", 64),
			},
			OTP: OTPConfig{
				ExpiryWindow: getEnvDuration("OTP_EXPIRY_WINDOW", 5*time.Minute),
			},
		}
	})

	return global
}

// Get returns the cached config, loading it if needed.
func Get() *Config {
	if global == nil {
		return LoadConfig()
	}
	return global
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
