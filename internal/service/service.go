package service

import (
	"context"
	"time"

	"example.com/outcry/config"
	"example.com/outcry/internal/cache"
	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/pricing"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/search"
	"example.com/outcry/internal/storage"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Service defines the business logic operations
type Service interface {
	CatalogService
	PartyService
	JobService
	ThroughputService
	DeliveryService

	Info(ctx context.Context) Info
	Ping(ctx context.Context) error
}

// CatalogService manages products, variables, options and pricing
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*models.ProductCategory, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*models.ProductCategory, error)
	UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.ProductCategory, error)
	DeleteCategory(ctx context.Context, id uint) error
	ListMeasureTypes(ctx context.Context) ([]*models.MeasureType, error)

	ListProducts(ctx context.Context) ([]models.ProductDetail, error)
	GetProduct(ctx context.Context, id uint) (*models.ProductDetail, error)
	CreateProduct(ctx context.Context, in ProductInput) (*models.ProductDetail, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.ProductDetail, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProductVariables(ctx context.Context, productID uint) ([]models.AssignedVariableDetail, error)
	AssignVariable(ctx context.Context, productID, variableID uint, displayOrder *int) (*AssignResult, error)
	UnassignVariable(ctx context.Context, productID, variableID uint) error

	ListVariables(ctx context.Context) ([]models.VariableDetail, error)
	CreateVariable(ctx context.Context, in VariableInput) (*models.ProductVariable, error)
	UpdateVariable(ctx context.Context, id uint, in VariableInput) (*models.ProductVariable, error)
	DeleteVariable(ctx context.Context, id uint) error

	CreateOption(ctx context.Context, in OptionInput) (*models.VariableOption, error)
	UpdateOption(ctx context.Context, id uint, in OptionInput) (*models.VariableOption, error)
	DeleteOption(ctx context.Context, id uint) error
	OptionCosts(ctx context.Context, ids []uint) ([]models.OptionCost, error)
	EstimatePrice(ctx context.Context, in EstimateInput) (*pricing.Estimate, error)
}

// PartyService manages clients, contacts, billing entities and staff
type PartyService interface {
	ListClients(ctx context.Context) ([]*models.Client, error)
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	CreateClient(ctx context.Context, in ClientInput) (*models.Client, error)
	UpdateClient(ctx context.Context, id uint, in ClientUpdateInput) (*models.Client, error)
	DeleteClient(ctx context.Context, id uint) error

	ListContacts(ctx context.Context, clientID uint) ([]*models.Contact, error)
	CreateContact(ctx context.Context, in ContactInput) (*models.Contact, error)
	UpdateContact(ctx context.Context, id uint, in ContactUpdateInput) (*models.Contact, error)
	DeleteContact(ctx context.Context, id uint) error

	ListBilling(ctx context.Context, clientID uint) ([]*models.Billing, error)
	CreateBilling(ctx context.Context, in BillingInput) (*models.Billing, error)
	UpdateBilling(ctx context.Context, id uint, in BillingUpdateInput) (*models.Billing, error)
	DeleteBilling(ctx context.Context, id uint) error

	ListStaff(ctx context.Context) ([]models.StaffDetail, error)
	GetStaff(ctx context.Context, id uint) (*models.StaffDetail, error)
	CreateStaff(ctx context.Context, in StaffInput) (*models.Staff, error)
	UpdateStaff(ctx context.Context, id uint, in StaffInput) (*models.Staff, error)
	DeleteStaff(ctx context.Context, id uint) error
}

// JobService manages projects, jobs, quotes and items
type JobService interface {
	ListProjects(ctx context.Context) ([]*models.Project, error)
	ListClientProjects(ctx context.Context, clientID uint) ([]*models.Project, error)
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id uint, in ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id uint) error
	ListJobStatuses(ctx context.Context) ([]*models.JobStatus, error)

	ListJobs(ctx context.Context) ([]models.JobDetail, error)
	GetJob(ctx context.Context, id uint) (*models.JobDetail, error)
	CreateJob(ctx context.Context, in JobInput, files []storage.File) (*models.JobDetail, error)
	UpdateJob(ctx context.Context, id uint, in JobUpdateInput) (*models.JobDetail, error)
	DeleteJob(ctx context.Context, id uint) error
	UpdateJobStatus(ctx context.Context, id uint, status models.JobStatusID) (*models.JobDetail, error)
	UpdateJobAddress(ctx context.Context, id uint, in JobAddressInput) (*models.JobDetail, error)
	UpdateJobBilling(ctx context.Context, id uint, billingID *uint) (*models.JobDetail, error)
	ApproveQuote(ctx context.Context, id uint, quoteID *uint) (*models.JobDetail, error)
	SetJobStage(ctx context.Context, id uint, stageID *models.StageID) (*models.JobDetail, error)
	SetStageDueDate(ctx context.Context, id uint, in StageDueDateInput) (*models.ThroughputStageDate, error)
	ListStatusHistory(ctx context.Context, id uint) ([]models.StatusHistoryEntry, error)
	ListStageDates(ctx context.Context, id uint) ([]*models.ThroughputStageDate, error)
	SearchJobs(ctx context.Context, query string, limit int) ([]models.JobDocument, error)
	ReindexJobs(ctx context.Context) (int, error)
	NotifyOverdueStages(ctx context.Context) (int, error)

	ListQuotes(ctx context.Context, jobID *uint) ([]*models.Quote, error)
	GetQuote(ctx context.Context, id uint) (*models.QuoteDetail, error)
	CreateQuote(ctx context.Context, in QuoteInput) (*models.Quote, error)
	UpdateQuote(ctx context.Context, id uint, in QuoteCostInput) (*models.Quote, error)
	DeleteQuote(ctx context.Context, id uint) error
	RecalculateQuote(ctx context.Context, id uint) (*models.Quote, error)

	ListItems(ctx context.Context, quoteID *uint) ([]models.ItemDetail, error)
	GetItem(ctx context.Context, id uint) (*models.ItemDetail, error)
	CreateItem(ctx context.Context, in ItemInput) (*models.ItemDetail, error)
	DeleteItem(ctx context.Context, id uint) error
	ListItemVariables(ctx context.Context, itemID *uint) ([]*models.ItemVariable, error)
	CreateItemVariable(ctx context.Context, in ItemVariableInput) (*models.ItemVariable, error)
}

// ThroughputService manages the production board
type ThroughputService interface {
	ListStages(ctx context.Context) ([]*models.ThroughputStage, error)
	CreateStage(ctx context.Context, in StageInput) (*models.ThroughputStage, error)
	UpdateStage(ctx context.Context, id models.StageID, in StageInput) (*models.ThroughputStage, error)
	DeleteStage(ctx context.Context, id models.StageID) error
	ListTaskStatuses(ctx context.Context) ([]*models.ThroughputStatus, error)

	ListTasks(ctx context.Context, jobID uint, stageID *models.StageID) ([]models.TaskDetail, error)
	CreateTask(ctx context.Context, in TaskInput) (*models.TaskDetail, error)
	UpdateTask(ctx context.Context, id uint, in TaskUpdateInput) (*models.TaskDetail, error)
	SetTaskCompletion(ctx context.Context, id uint, completed bool) (*models.TaskDetail, error)
	DeleteTask(ctx context.Context, id uint) error
}

// DeliveryService manages addresses, bookings and attachments
type DeliveryService interface {
	ListAddresses(ctx context.Context) ([]*models.Address, error)
	GetAddress(ctx context.Context, id uint) (*models.Address, error)
	CreateAddress(ctx context.Context, in AddressInput) (*models.Address, error)

	ListBookings(ctx context.Context) ([]*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	CreateBooking(ctx context.Context, in BookingInput, files []storage.File) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id uint, in BookingUpdateInput) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id uint) error

	UploadAttachments(ctx context.Context, target AttachmentTarget, uploadedBy *uint, files []storage.File) ([]*models.Attachment, error)
	ListAttachments(ctx context.Context, filter repository.AttachmentFilter) ([]*models.Attachment, error)
	GetAttachment(ctx context.Context, id uint) (*models.Attachment, error)
	DeleteAttachment(ctx context.Context, id uint) error
}

// Cache is the subset of the Redis cache the service uses
type Cache interface {
	Enabled() bool
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Searcher indexes and queries job documents
type Searcher interface {
	Enabled() bool
	IndexJob(ctx context.Context, doc models.JobDocument) error
	DeleteJob(ctx context.Context, jobID uint) error
	SearchJobs(ctx context.Context, text string, limit int) ([]models.JobDocument, error)
}

// Info describes the running application
type Info struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Integrations map[string]bool `json:"integrations"`
}

// service is an implementation of the Service interface
type service struct {
	repo      repository.Repository
	cache     Cache
	search    Searcher
	messaging messaging.ServiceBusClient
	store     storage.ObjectStore
	metrics   *metrics.Collector
	app       config.AppConfig
	upload    config.UploadConfig
	log       zerolog.Logger
	now       func() time.Time
}

// ServiceConfig holds the collaborators of the service
type ServiceConfig struct {
	Repository repository.Repository
	Cache      Cache
	Search     Searcher
	Messaging  messaging.ServiceBusClient
	Storage    storage.ObjectStore
	Metrics    *metrics.Collector
	App        config.AppConfig
	Upload     config.UploadConfig
	Logger     zerolog.Logger
}

// NewService creates a new service instance. Optional integrations fall back
// to their disabled variants.
func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if cfg.Cache == nil {
		disabled, err := cache.NewRedisCache(config.RedisConfig{})
		if err != nil {
			return nil, err
		}
		cfg.Cache = disabled
	}
	if cfg.Search == nil {
		disabled, err := search.NewElasticClient(config.ElasticConfig{})
		if err != nil {
			return nil, err
		}
		cfg.Search = disabled
	}
	if cfg.Messaging == nil {
		client, err := messaging.NewServiceBusClient(config.ServiceBusConfig{}, cfg.App.Name, cfg.Logger)
		if err != nil {
			return nil, err
		}
		cfg.Messaging = client
	}
	if cfg.Storage == nil {
		cfg.Storage = storage.NotConfigured
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Default()
	}

	return &service{
		repo:      cfg.Repository,
		cache:     cfg.Cache,
		search:    cfg.Search,
		messaging: cfg.Messaging,
		store:     cfg.Storage,
		metrics:   cfg.Metrics,
		app:       cfg.App,
		upload:    cfg.Upload,
		log:       cfg.Logger.With().Str("component", "service").Logger(),
		now:       time.Now,
	}, nil
}

func (s *service) Info(ctx context.Context) Info {
	return Info{
		Name:    s.app.Name,
		Version: s.app.Version,
		Integrations: map[string]bool{
			"cache":   s.cache.Enabled(),
			"search":  s.search.Enabled(),
			"storage": s.store.Enabled(),
		},
	}
}

func (s *service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *service) today() models.Date {
	return models.NewDate(s.now())
}

// publish sends events after the owning transaction committed. Failures are
// logged and never reach the caller.
func (s *service) publish(ctx context.Context, events ...messaging.Event) {
	for _, event := range events {
		if err := messaging.Publish(ctx, s.messaging, event); err != nil {
			s.metrics.Increment(metrics.CounterEventsFailed, 1)
			s.log.Warn().Err(err).Str("event", event.Type).Uint("entity_id", event.EntityID).Msg("failed to publish event")
			continue
		}
		s.metrics.Increment(metrics.CounterEventsPublished, 1)
	}
}

// invalidate drops cached listings after a committed write
func (s *service) invalidate(ctx context.Context, keys ...string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate cache")
	}
}

// cached loads key from the cache or fills it from load
func cached[T any](ctx context.Context, s *service, key string, load func() (T, error)) (T, error) {
	var value T
	if s.cache.Enabled() {
		err := s.cache.Get(ctx, key, &value)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, value, 0); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return value, nil
}
