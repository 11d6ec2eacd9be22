package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"realty-service/internal/audit"
	"realty-service/internal/bucketing"
	"realty-service/internal/client"
	"realty-service/internal/config"
	"realty-service/internal/encryption"
	"realty-service/internal/events"
	"realty-service/internal/handler"
	"realty-service/internal/hashing"
	"realty-service/internal/notify"
	"realty-service/internal/repository"
	rediscache "realty-service/internal/repository/redis"
	"realty-service/internal/repository/scylla"
	"realty-service/internal/search"
	"realty-service/internal/service"
	"realty-service/internal/tls"
	"realty-service/internal/util"
)

// Factory manages the lifecycle of all application dependencies.
type Factory struct {
	config     *config.Config
	tlsManager *tls.TLSManager

	// Clients
	redisClient      *client.RedisClient
	scyllaClient     *scylla.ScyllaClient
	kafkaClient      *client.KafkaClient
	esClient         *client.ESClient
	clickhouseClient *client.ClickHouseClient

	// Managers
	hasher            *hashing.Hasher
	encryptionManager *encryption.EncryptionManager
	bucketingManager  *bucketing.BucketingManager

	// Repositories
	adminRepository    repository.AdminRepository
	agentRepository    repository.AgentRepository
	userRepository     repository.UserRepository
	propertyRepository repository.PropertyRepository
	blogRepository     repository.BlogRepository
	otpRepository      repository.OTPRepository

	// Cross-cutting
	notifier      notify.Notifier
	auditRecorder *audit.Recorder
	publisher     *events.Publisher
	propertyIndex *search.PropertyIndex

	// Services
	adminService    *service.AdminService
	agentService    *service.AgentService
	userService     *service.UserService
	propertyService *service.PropertyService
	blogService     *service.BlogService
	resetService    *service.PasswordResetService

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFactory creates and initializes all application dependencies.
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	factory := &Factory{
		config: cfg,
		closed: make(chan struct{}),
	}

	if cfg.Server.EnableTLS {
		factory.tlsManager = tls.NewTLSManager(&tls.TLSConfig{
			EnableTLS:   cfg.Server.EnableTLS,
			AutoCert:    cfg.Server.AutoCert,
			Domain:      cfg.Server.Domain,
			CertFile:    cfg.Server.CertFile,
			KeyFile:     cfg.Server.KeyFile,
			AutoCertDir: cfg.Server.AutoCertDir,
			Email:       cfg.Server.Email,
			Environment: cfg.Environment,
		})
	}

	if err := factory.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	factory.initializeManagers()

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
		util.Bool("kms_enabled", cfg.KMS.Enabled),
	)

	return factory, nil
}

// initializeClients initializes all external service clients with health
// checks. Scylla is the only hard dependency in production; Kafka is
// always optional.
func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var initErrors []error

	// Redis
	if redisClient, err := client.NewRedisClient(f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("redis: %w", err))
	} else {
		f.redisClient = redisClient
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			initErrors = append(initErrors, fmt.Errorf("redis health check: %w", err))
		} else {
			util.Info("Redis client initialized and healthy")
		}
	}

	// ScyllaDB
	if scyllaClient, err := scylla.NewScyllaClient(f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("scylla: %w", err))
	} else {
		f.scyllaClient = scyllaClient
		if err := f.scyllaClient.HealthCheck(); err != nil {
			initErrors = append(initErrors, fmt.Errorf("scylla health check: %w", err))
		} else {
			util.Info("ScyllaDB client initialized and healthy")
		}
	}

	// Kafka
	if kafkaClient, err := client.NewKafkaClient(f.config); err != nil {
		util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
	} else {
		f.kafkaClient = kafkaClient
		util.Info("Kafka producer initialized")
	}

	// Elasticsearch
	if esClient, err := client.NewElasticsearchClient(f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("elasticsearch: %w", err))
	} else {
		f.esClient = esClient
		if err := f.esClient.HealthCheck(); err != nil {
			initErrors = append(initErrors, fmt.Errorf("elasticsearch health check: %w", err))
		} else {
			util.Info("Elasticsearch client initialized and healthy")
		}
	}

	// ClickHouse
	if chClient, err := client.NewClickHouseClient(f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("clickhouse: %w", err))
	} else {
		f.clickhouseClient = chClient
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			initErrors = append(initErrors, fmt.Errorf("clickhouse health check: %w", err))
		} else {
			util.Info("ClickHouse client initialized and healthy")
		}
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %v", initErrors)
		}
		for _, err := range initErrors {
			util.Warn("Service initialization warning", util.ErrorField(err))
		}
	}

	return nil
}

func (f *Factory) initializeManagers() {
	f.hasher = hashing.NewHasher(f.config)
	f.encryptionManager = encryption.NewEncryptionManager(f.config)
	f.bucketingManager = bucketing.NewBucketingManager(f.config)

	f.notifier = notify.NewEmailSender(f.config)
	f.auditRecorder = audit.NewRecorder(f.clickhouseClient)
	f.publisher = events.NewPublisher(f.kafkaClient)
	if f.esClient != nil {
		f.propertyIndex = search.NewPropertyIndex(f.esClient, f.config.Elasticsearch.PropertyIndex)
	}

	util.Info("Managers initialized successfully",
		util.Bool("hashing_initialized", f.hasher != nil),
		util.Bool("encryption_initialized", f.encryptionManager != nil),
		util.Bool("bucketing_initialized", f.bucketingManager != nil),
	)
}

// ==============================
// Repositories
// ==============================

func (f *Factory) AdminRepository() repository.AdminRepository {
	if f.adminRepository == nil {
		f.adminRepository = scylla.NewAdminRepository(f.scyllaClient, f.bucketingManager)
	}
	return f.adminRepository
}

func (f *Factory) AgentRepository() repository.AgentRepository {
	if f.agentRepository == nil {
		f.agentRepository = scylla.NewAgentRepository(f.scyllaClient, f.bucketingManager)
	}
	return f.agentRepository
}

func (f *Factory) UserRepository() repository.UserRepository {
	if f.userRepository == nil {
		f.userRepository = scylla.NewUserRepository(f.scyllaClient, f.bucketingManager)
	}
	return f.userRepository
}

func (f *Factory) PropertyRepository() repository.PropertyRepository {
	if f.propertyRepository == nil {
		f.propertyRepository = scylla.NewPropertyRepository(f.scyllaClient, f.bucketingManager)
	}
	return f.propertyRepository
}

func (f *Factory) BlogRepository() repository.BlogRepository {
	if f.blogRepository == nil {
		f.blogRepository = scylla.NewBlogRepository(f.scyllaClient)
	}
	return f.blogRepository
}

func (f *Factory) OTPRepository() repository.OTPRepository {
	if f.otpRepository == nil {
		f.otpRepository = scylla.NewOTPRepository(f.scyllaClient)
	}
	return f.otpRepository
}

// ==============================
// Services
// ==============================

func (f *Factory) AdminService() *service.AdminService {
	if f.adminService == nil {
		f.adminService = service.NewAdminService(
			f.AdminRepository(),
			f.encryptionManager,
			f.hasher,
			f.auditRecorder,
		)
	}
	return f.adminService
}

func (f *Factory) AgentService() *service.AgentService {
	if f.agentService == nil {
		f.agentService = service.NewAgentService(
			f.AgentRepository(),
			f.encryptionManager,
			f.hasher,
			f.notifier,
			f.auditRecorder,
			f.publisher,
		)
	}
	return f.agentService
}

func (f *Factory) UserService() *service.UserService {
	if f.userService == nil {
		f.userService = service.NewUserService(
			f.UserRepository(),
			f.encryptionManager,
			f.hasher,
			f.notifier,
			f.auditRecorder,
			f.publisher,
			f.config.OTP.ExpiryWindow,
		)
	}
	return f.userService
}

func (f *Factory) PropertyService() *service.PropertyService {
	if f.propertyService == nil {
		// A nil index disables ES and drops search back to store scans.
		var index service.PropertyIndexer
		if f.propertyIndex != nil {
			index = f.propertyIndex
		}
		f.propertyService = service.NewPropertyService(
			f.PropertyRepository(),
			f.AgentRepository(),
			index,
			f.notifier,
			f.auditRecorder,
			f.publisher,
		)
	}
	return f.propertyService
}

func (f *Factory) BlogService() *service.BlogService {
	if f.blogService == nil {
		f.blogService = service.NewBlogService(f.BlogRepository())
	}
	return f.blogService
}

func (f *Factory) PasswordResetService() *service.PasswordResetService {
	if f.resetService == nil {
		var (
			lookupCache *rediscache.LookupCache
			otpCache    service.OTPCodeCache
		)
		if f.redisClient != nil {
			lookupCache = rediscache.NewLookupCache(f.redisClient)
			otpCache = rediscache.NewOTPCache(f.redisClient)
		}

		resolver := service.NewIdentityResolver(
			f.AdminRepository(),
			f.UserRepository(),
			f.AgentRepository(),
			lookupCache,
		)
		f.resetService = service.NewPasswordResetService(
			resolver,
			f.OTPRepository(),
			otpCache,
			f.AdminRepository(),
			f.UserRepository(),
			f.AgentRepository(),
			f.hasher,
			f.notifier,
			f.auditRecorder,
			f.publisher,
			f.config.OTP.ExpiryWindow,
		)
	}
	return f.resetService
}

// Handlers builds the full route handler set.
func (f *Factory) Handlers() *handler.Handlers {
	logger := util.Get()
	return &handler.Handlers{
		Admin:         handler.NewAdminHandler(f.AdminService(), f.AgentService(), f.PropertyService(), logger),
		Agent:         handler.NewAgentHandler(f.AgentService(), logger),
		User:          handler.NewUserHandler(f.UserService(), logger),
		Property:      handler.NewPropertyHandler(f.PropertyService(), logger),
		Blog:          handler.NewBlogHandler(f.BlogService(), logger),
		PasswordReset: handler.NewPasswordResetHandler(f.PasswordResetService(), logger),
	}
}

// ==============================
// Health Checks
// ==============================

func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.redisClient != nil {
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			healthErrors["redis"] = err
		}
	} else {
		healthErrors["redis"] = fmt.Errorf("redis client not initialized")
	}

	if f.scyllaClient != nil {
		if err := f.scyllaClient.HealthCheck(); err != nil {
			healthErrors["scylla"] = err
		}
	} else {
		healthErrors["scylla"] = fmt.Errorf("scylla client not initialized")
	}

	if f.esClient != nil {
		if err := f.esClient.HealthCheck(); err != nil {
			healthErrors["elasticsearch"] = err
		}
	} else {
		healthErrors["elasticsearch"] = fmt.Errorf("elasticsearch client not initialized")
	}

	if f.clickhouseClient != nil {
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			healthErrors["clickhouse"] = err
		}
	} else {
		healthErrors["clickhouse"] = fmt.Errorf("clickhouse client not initialized")
	}

	if f.kafkaClient != nil {
		if err := f.kafkaClient.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}

	if f.hasher == nil {
		healthErrors["hasher"] = fmt.Errorf("hasher not initialized")
	}
	if f.encryptionManager == nil {
		healthErrors["encryption"] = fmt.Errorf("encryption manager not initialized")
	}
	if f.bucketingManager == nil {
		healthErrors["bucketing"] = fmt.Errorf("bucketing manager not initialized")
	}

	return healthErrors
}

// IsHealthy reports overall readiness. Kafka is advisory only.
func (f *Factory) IsHealthy(ctx context.Context) bool {
	healthErrors := f.HealthCheck(ctx)
	delete(healthErrors, "kafka")
	return len(healthErrors) == 0
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		util.Info("Shutting down factory...")

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("Failed to close ClickHouse client", util.ErrorField(err))
			} else {
				util.Info("ClickHouse client closed")
			}
		}

		if f.esClient != nil {
			f.esClient.Close()
			util.Info("Elasticsearch client closed")
		}

		if f.kafkaClient != nil {
			if err := f.kafkaClient.Close(); err != nil {
				util.Error("Failed to close Kafka producer", util.ErrorField(err))
			} else {
				util.Info("Kafka producer closed")
			}
		}

		if f.scyllaClient != nil {
			f.scyllaClient.Close()
			util.Info("ScyllaDB client closed")
		}

		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			} else {
				util.Info("Redis client closed")
			}
		}

		if f.encryptionManager != nil {
			f.encryptionManager.ClearCache()
			util.Info("Encryption manager cache cleared")
		}

		util.Sync()
		util.Info("Factory shutdown completed")
	})

	return nil
}

func (f *Factory) WaitForClose() {
	<-f.closed
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) TLSManager() *tls.TLSManager {
	return f.tlsManager
}

func (f *Factory) ScyllaClient() *scylla.ScyllaClient {
	return f.scyllaClient
}

func (f *Factory) Hasher() *hashing.Hasher {
	return f.hasher
}

func (f *Factory) EncryptionManager() *encryption.EncryptionManager {
	return f.encryptionManager
}

func (f *Factory) BucketingManager() *bucketing.BucketingManager {
	return f.bucketingManager
}
