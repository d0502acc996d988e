package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"book-records-api/internal/config"
	bookHandler "book-records-api/internal/domains/book/handler"
	bookJob "book-records-api/internal/domains/book/job"
	"book-records-api/internal/domains/book/model"
	bookRepo "book-records-api/internal/domains/book/repository"
	bookService "book-records-api/internal/domains/book/service"
	infraCache "book-records-api/internal/infrastructure/cache"
	"book-records-api/internal/infrastructure/database"
	"book-records-api/internal/infrastructure/queue"
	"book-records-api/internal/infrastructure/storage"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa tất cả dependencies của api và worker.
// Thứ tự init: Config -> Infrastructure -> Repository -> Service -> Handler
type Container struct {
	// INFRASTRUCTURE LAYER
	Config    *config.Config
	DB        *database.PostgresDB
	Cache     *infraCache.RedisCache
	Images    *storage.DiskStore
	Mirror    *storage.MinIOStorage // nil khi MINIO_ENABLED=false hoặc không kết nối được
	Processor *storage.ImageProcessor
	Tasks     *queue.BookTaskClient

	// REPOSITORY LAYER
	BookRepo bookRepo.RepositoryInterface

	// SERVICE LAYER
	BookValidator *bookService.Validator
	BookService   bookService.ServiceInterface

	// HANDLER LAYER
	BookHandler *bookHandler.Handler

	stopMonitor context.CancelFunc
}

// NewContainer build toàn bộ dependency graph từ cfg.
// Database và Redis không kết nối được chỉ log, process vẫn chạy.
func NewContainer(cfg *config.Config) (*Container, error) {
	log.Info().Msg("Initializing DI Container...")

	c := &Container{Config: cfg}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Repositories phụ thuộc DB
	c.BookRepo = bookRepo.NewPostgresRepository(c.DB, cfg.Database.Table)

	// Services phụ thuộc Repositories, Cache, Queue
	c.BookValidator = bookService.NewValidator(c.BookRepo)
	c.BookService = bookService.NewService(c.BookRepo, c.BookValidator, c.Cache, c.Tasks, cfg.Redis.ListTTL)

	// Handlers phụ thuộc Services
	c.BookHandler = bookHandler.NewHandler(c.BookService, c.Images, cfg.Upload.URLPrefix)
	if cfg.App.LegacyMessages {
		c.BookHandler.WithMessages(model.LegacyMessages)
	}

	log.Info().Msg("Container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	// ========================================
	// DATABASE
	// ========================================
	c.DB = database.NewPostgresDB(cfg.DBConfig())

	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.DB.Connect(connectCtx); err != nil {
		log.Error().Err(err).Msg("[DATABASE] Unable to connect, pool will reconnect on next request")
	}
	if c.DB.Pool != nil {
		monitorCtx, stop := context.WithCancel(context.Background())
		c.stopMonitor = stop
		go c.DB.MonitorPoolHealth(monitorCtx, time.Minute)
	}

	// ========================================
	// CACHE
	// ========================================
	c.Cache = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Connect(context.Background()); err != nil {
		// Redis failure không critical - list đọc thẳng DB
		log.Warn().Err(err).Msg("[REDIS] Connection failed (non-critical)")
	}

	// ========================================
	// STORAGE
	// ========================================
	images, err := storage.NewDiskStore(cfg.Upload.Dir)
	if err != nil {
		return fmt.Errorf("failed to init upload dir: %w", err)
	}
	c.Images = images
	c.Processor = storage.NewImageProcessor(cfg.Worker.ThumbnailSize)

	if cfg.MinIO.Enabled {
		mirror, err := storage.NewMinIOStorage(context.Background(), cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("[MINIO] Mirror disabled")
		} else {
			c.Mirror = mirror
			log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("[MINIO] Mirror enabled")
		}
	}

	// ========================================
	// QUEUE
	// ========================================
	c.Tasks = queue.NewBookTaskClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	return nil
}

// ObjectMirror trả về mirror dưới dạng interface, nil khi tắt
func (c *Container) ObjectMirror() bookJob.ObjectMirror {
	if c.Mirror == nil {
		return nil
	}
	return c.Mirror
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources...")

	if c.stopMonitor != nil {
		c.stopMonitor()
	}

	if c.DB != nil {
		c.DB.Close()
	}

	if c.Tasks != nil {
		if err := c.Tasks.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close task client")
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("[REDIS] Failed to close")
		} else {
			log.Info().Msg("[REDIS] Connections closed")
		}
	}

	log.Info().Msg("Container cleanup completed")
}
