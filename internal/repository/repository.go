package repository

import (
	"context"

	"example.com/outcry/internal/database"
	"example.com/outcry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides data access methods
type Repository interface {
	// Transaction support
	WithTransaction(ctx context.Context, fn func(ctx context.Context, txRepo Repository) error) error
	Ping(ctx context.Context) error

	CatalogRepository
	PartyRepository
	JobRepository
	ThroughputRepository
	DeliveryRepository
}

// CatalogRepository covers categories, products, variables, options and assignments
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]*models.ProductCategory, error)
	FindCategoryByID(ctx context.Context, id uint) (*models.ProductCategory, error)
	CreateCategory(ctx context.Context, category *models.ProductCategory) error
	UpdateCategory(ctx context.Context, category *models.ProductCategory) error
	DeleteCategory(ctx context.Context, id uint) error
	CountProductsInCategory(ctx context.Context, id uint) (int64, error)

	ListMeasureTypes(ctx context.Context) ([]*models.MeasureType, error)
	FindMeasureTypeByID(ctx context.Context, id uint) (*models.MeasureType, error)

	ListProducts(ctx context.Context) ([]*models.Product, error)
	FindProductByID(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	CountItemsForProduct(ctx context.Context, id uint) (int64, error)

	ListVariables(ctx context.Context) ([]*models.ProductVariable, error)
	FindVariableByID(ctx context.Context, id uint) (*models.ProductVariable, error)
	CreateVariable(ctx context.Context, variable *models.ProductVariable) error
	UpdateVariable(ctx context.Context, variable *models.ProductVariable) error
	DeleteVariable(ctx context.Context, id uint) error
	CountItemVariablesForVariable(ctx context.Context, id uint) (int64, error)

	FindOptionByID(ctx context.Context, id uint) (*models.VariableOption, error)
	ListOptionsByIDs(ctx context.Context, ids []uint) ([]*models.VariableOption, error)
	CreateOption(ctx context.Context, option *models.VariableOption) error
	UpdateOption(ctx context.Context, option *models.VariableOption) error
	DeleteOption(ctx context.Context, id uint) error
	CountItemSelectionsForOption(ctx context.Context, id uint) (int64, error)

	ListAssignments(ctx context.Context) ([]*models.ProductProductVariable, error)
	ListProductAssignments(ctx context.Context, productID uint) ([]*models.ProductProductVariable, error)
	FindAssignment(ctx context.Context, productID, variableID uint) (*models.ProductProductVariable, error)
	MaxDisplayOrder(ctx context.Context, productID uint) (int, error)
	CreateAssignment(ctx context.Context, assignment *models.ProductProductVariable) error
	DeleteAssignment(ctx context.Context, productID, variableID uint) error
}

// PartyRepository covers clients, contacts, billing entities and staff
type PartyRepository interface {
	ListClients(ctx context.Context) ([]*models.Client, error)
	FindClientByID(ctx context.Context, id uint) (*models.Client, error)
	CreateClient(ctx context.Context, client *models.Client) error
	UpdateClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, id uint) error

	ListContacts(ctx context.Context, clientID uint) ([]*models.Contact, error)
	FindContactByID(ctx context.Context, id uint) (*models.Contact, error)
	CreateContact(ctx context.Context, contact *models.Contact) error
	UpdateContact(ctx context.Context, contact *models.Contact) error
	DeleteContact(ctx context.Context, id uint) error

	ListBilling(ctx context.Context, clientID uint) ([]*models.Billing, error)
	FindBillingByID(ctx context.Context, id uint) (*models.Billing, error)
	CreateBilling(ctx context.Context, billing *models.Billing) error
	UpdateBilling(ctx context.Context, billing *models.Billing) error
	DeleteBilling(ctx context.Context, id uint) error

	ListStaff(ctx context.Context) ([]*models.Staff, error)
	FindStaffByID(ctx context.Context, id uint) (*models.Staff, error)
	CreateStaff(ctx context.Context, staff *models.Staff) error
	UpdateStaff(ctx context.Context, staff *models.Staff) error
	DeleteStaff(ctx context.Context, id uint) error
}

// JobFilter narrows job queries to rows referencing the given keys
type JobFilter struct {
	ClientID  *uint
	ContactID *uint
	BillingID *uint
	StaffID   *uint
	ProjectID *uint
}

// JobRepository covers projects, jobs, status history, quotes and items
type JobRepository interface {
	ListProjects(ctx context.Context) ([]*models.Project, error)
	ListProjectsForClient(ctx context.Context, clientID uint) ([]*models.Project, error)
	FindProjectByID(ctx context.Context, id uint) (*models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id uint) error

	ListJobStatuses(ctx context.Context) ([]*models.JobStatus, error)
	FindJobStatusByID(ctx context.Context, id models.JobStatusID) (*models.JobStatus, error)

	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, error)
	CountJobs(ctx context.Context, filter JobFilter) (int64, error)
	ListJobAggregates(ctx context.Context) ([]*models.Job, error)
	FindJobByID(ctx context.Context, id uint) (*models.Job, error)
	FindJobAggregate(ctx context.Context, id uint) (*models.Job, error)
	CreateJob(ctx context.Context, job *models.Job) error
	UpdateJob(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id uint) error
	NextQuoteSequence(ctx context.Context, jobID uint) (uint, error)

	AppendStatusHistory(ctx context.Context, entry *models.JobStatusHistory) error
	ListStatusHistory(ctx context.Context, jobID uint) ([]*models.JobStatusHistory, error)

	ListQuotes(ctx context.Context, jobID *uint) ([]*models.Quote, error)
	FindQuoteByID(ctx context.Context, id uint) (*models.Quote, error)
	FindQuoteWithItems(ctx context.Context, id uint) (*models.Quote, error)
	CreateQuote(ctx context.Context, quote *models.Quote) error
	UpdateQuote(ctx context.Context, quote *models.Quote) error
	DeleteQuote(ctx context.Context, id uint) error
	ClearApprovedQuote(ctx context.Context, quoteID uint) error

	ListItems(ctx context.Context, quoteID *uint) ([]*models.Item, error)
	FindItemByID(ctx context.Context, id uint) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id uint) error

	ListItemVariables(ctx context.Context, itemID *uint) ([]*models.ItemVariable, error)
	CreateItemVariable(ctx context.Context, variable *models.ItemVariable) error
	CreateItemVariableOption(ctx context.Context, option *models.ItemVariableOption) error
}

// ThroughputRepository covers stages, task statuses, tasks and stage due dates
type ThroughputRepository interface {
	ListStages(ctx context.Context) ([]*models.ThroughputStage, error)
	FindStageByID(ctx context.Context, id models.StageID) (*models.ThroughputStage, error)
	CreateStage(ctx context.Context, stage *models.ThroughputStage) error
	UpdateStage(ctx context.Context, stage *models.ThroughputStage) error
	DeleteStage(ctx context.Context, id models.StageID) error
	CountStageUsage(ctx context.Context, id models.StageID) (int64, error)

	ListTaskStatuses(ctx context.Context) ([]*models.ThroughputStatus, error)

	ListTasks(ctx context.Context, jobID uint, stageID *models.StageID) ([]*models.ThroughputTask, error)
	FindTaskByID(ctx context.Context, id uint) (*models.ThroughputTask, error)
	CreateTask(ctx context.Context, task *models.ThroughputTask) error
	UpdateTask(ctx context.Context, task *models.ThroughputTask) error
	DeleteTask(ctx context.Context, id uint) error
	MaxTaskOrder(ctx context.Context, jobID uint, stageID models.StageID) (int, error)

	UpsertStageDate(ctx context.Context, stageDate *models.ThroughputStageDate) error
	FindStageDate(ctx context.Context, jobID uint, stageID models.StageID) (*models.ThroughputStageDate, error)
	ListStageDates(ctx context.Context, jobID uint) ([]*models.ThroughputStageDate, error)
	ListStageDatesDueBefore(ctx context.Context, date models.Date) ([]*models.ThroughputStageDate, error)
}

// AttachmentFilter narrows attachment queries to one owner
type AttachmentFilter struct {
	BookingID *uint
	JobID     *uint
}

// DeliveryRepository covers addresses, bookings and attachments
type DeliveryRepository interface {
	ListAddresses(ctx context.Context) ([]*models.Address, error)
	FindAddressByID(ctx context.Context, id uint) (*models.Address, error)
	CreateAddress(ctx context.Context, address *models.Address) error

	ListBookings(ctx context.Context) ([]*models.Booking, error)
	FindBookingByID(ctx context.Context, id uint) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id uint) error

	ListAttachments(ctx context.Context, filter AttachmentFilter) ([]*models.Attachment, error)
	FindAttachmentByID(ctx context.Context, id uint) (*models.Attachment, error)
	CreateAttachment(ctx context.Context, attachment *models.Attachment) error
	DeleteAttachment(ctx context.Context, id uint) error
}

// repo implements Repository
type repo struct {
	db database.DB
}

// NewRepository creates a new repository
func NewRepository(db database.DB) Repository {
	return &repo{db: db}
}

// dbWrapper wraps a gorm.DB to implement the database.DB interface
type dbWrapper struct {
	db *gorm.DB
}

func (w *dbWrapper) DB() (*gorm.DB, error) {
	return w.db, nil
}

func (w *dbWrapper) Ping(ctx context.Context) error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (w *dbWrapper) Close() error {
	return nil // The transaction is committed or rolled back by the outer call
}

// WithTransaction executes fn inside a transaction. Any error rolls everything back.
func (r *repo) WithTransaction(ctx context.Context, fn func(ctx context.Context, txRepo Repository) error) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &repo{
			db: &dbWrapper{db: tx},
		}
		return fn(ctx, txRepo)
	})
}

func (r *repo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *repo) conn(ctx context.Context) (*gorm.DB, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}
	return gormDB.WithContext(ctx), nil
}

// Generic helpers shared by the per-entity methods.

func (r *repo) create(ctx context.Context, value interface{}) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return translate(gormDB.Omit(clause.Associations).Create(value).Error, ErrCreateFailed)
}

func (r *repo) save(ctx context.Context, value interface{}) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return translate(gormDB.Omit(clause.Associations).Save(value).Error, ErrUpdateFailed)
}

func (r *repo) deleteWhere(ctx context.Context, model interface{}, query string, args ...interface{}) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	result := gormDB.Where(query, args...).Delete(model)
	if result.Error != nil {
		return translate(result.Error, ErrDeleteFailed)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) count(ctx context.Context, model interface{}, query string, args ...interface{}) (int64, error) {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := gormDB.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return 0, translate(err, nil)
	}
	return n, nil
}

func findOne[T any](ctx context.Context, r *repo, scope func(*gorm.DB) *gorm.DB, query string, args ...interface{}) (*T, error) {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		gormDB = scope(gormDB)
	}
	var out T
	if err := gormDB.Where(query, args...).First(&out).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, r *repo, scope func(*gorm.DB) *gorm.DB) ([]*T, error) {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		gormDB = scope(gormDB)
	}
	var out []*T
	if err := gormDB.Find(&out).Error; err != nil {
		return nil, translate(err, nil)
	}
	return out, nil
}

func orderBy(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}
