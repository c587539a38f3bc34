package provider

import (
	"time"

	"github.com/stablefront/internal/cache"
	"github.com/stablefront/internal/config"
	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/models"
	"github.com/stablefront/internal/muralpay"
	"github.com/stablefront/internal/queue"
	"github.com/stablefront/internal/repository"
	"github.com/stablefront/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	MerchantRepo repository.MerchantRepository
	ProductRepo  repository.ProductRepository
	OrderRepo    repository.OrderRepository

	// Mural Pay
	PayoutClient    service.PayoutClient
	WebhookVerifier *muralpay.WebhookVerifier

	// Services
	AuthService      *service.AuthService
	ProductService   *service.ProductService
	OrderService     *service.OrderService
	ReconcileService *service.ReconcileService
	PayoutService    *service.PayoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initMural()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initMural() {
	cfg := c.Config.Mural

	client, err := muralpay.NewClient(muralpay.Config{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		TransferAPIKey: cfg.TransferAPIKey,
		AccountID:      cfg.AccountID,
		OrganizationID: cfg.OrganizationID,
		CounterpartyID: cfg.CounterpartyID,
		PayoutMethodID: cfg.PayoutMethodID,
		TimeoutMS:      cfg.TimeoutMS,
	})
	if err != nil {
		logger.Warnw("provider_init_mural_client_failed", "error", err)
	} else {
		c.PayoutClient = client
	}

	verifier, err := muralpay.NewWebhookVerifier(cfg.WebhookPublicKey)
	if err != nil {
		logger.Warnw("provider_init_webhook_verifier_failed", "error", err)
	} else {
		c.WebhookVerifier = verifier
	}
}

func (c *Container) initServices() {
	cfg := c.Config
	expire := time.Duration(cfg.JWT.ExpireHours) * time.Hour

	c.AuthService = service.NewAuthService(c.MerchantRepo, cfg.JWT.SecretKey, expire)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo)
	c.ReconcileService = service.NewReconcileService(c.OrderRepo, c.ProductRepo, c.PayoutClient, c.QueueClient)
	c.PayoutService = service.NewPayoutService(c.OrderRepo, c.PayoutClient)
}
