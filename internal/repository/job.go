package repository

import (
	"context"

	"example.com/outcry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Project operations implementation

func (r *repo) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return findAll[models.Project](ctx, r, orderBy("project_id"))
}

// ListProjectsForClient returns the distinct projects reached through the client's jobs
func (r *repo) ListProjectsForClient(ctx context.Context, clientID uint) ([]*models.Project, error) {
	return findAll[models.Project](ctx, r, func(db *gorm.DB) *gorm.DB {
		jobs := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Job{}).
			Select("project_id").
			Where("client_id = ?", clientID)
		return db.Where("project_id IN (?)", jobs).Order("name").Order("project_id")
	})
}

func (r *repo) FindProjectByID(ctx context.Context, id uint) (*models.Project, error) {
	return findOne[models.Project](ctx, r, nil, "project_id = ?", id)
}

func (r *repo) CreateProject(ctx context.Context, project *models.Project) error {
	return r.create(ctx, project)
}

func (r *repo) UpdateProject(ctx context.Context, project *models.Project) error {
	return r.save(ctx, project)
}

func (r *repo) DeleteProject(ctx context.Context, id uint) error {
	return r.deleteWhere(ctx, &models.Project{}, "project_id = ?", id)
}

// Job status operations implementation

func (r *repo) ListJobStatuses(ctx context.Context) ([]*models.JobStatus, error) {
	return findAll[models.JobStatus](ctx, r, orderBy("job_status_id"))
}

func (r *repo) FindJobStatusByID(ctx context.Context, id models.JobStatusID) (*models.JobStatus, error) {
	return findOne[models.JobStatus](ctx, r, nil, "job_status_id = ?", uint(id))
}

// Job operations implementation

func applyJobFilter(db *gorm.DB, filter JobFilter) *gorm.DB {
	if filter.ClientID != nil {
		db = db.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ContactID != nil {
		db = db.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.BillingID != nil {
		db = db.Where("billing_entity = ?", *filter.BillingID)
	}
	if filter.StaffID != nil {
		db = db.Where("staff_id = ?", *filter.StaffID)
	}
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}
	return db
}

func withJobAggregate(db *gorm.DB) *gorm.DB {
	byID := func(column string) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB { return db.Order(column) }
	}
	return db.
		Preload("Client").
		Preload("Client.Billing", byID("billing_id")).
		Preload("Project").
		Preload("Contact").
		Preload("Staff").
		Preload("Billing").
		Preload("Status").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("date").Order("job_status_history_id")
		}).
		Preload("History.Status").
		Preload("Quotes", byID("quote_id")).
		Preload("Quotes.Items", byID("item_id")).
		Preload("Quotes.Items.Product").
		Preload("StageDates", byID("stage_date_id")).
		Preload("Attachments", byID("attachment_id"))
}

func (r *repo) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, error) {
	return findAll[models.Job](ctx, r, func(db *gorm.DB) *gorm.DB {
		return applyJobFilter(db, filter).Order("job_id")
	})
}

func (r *repo) CountJobs(ctx context.Context, filter JobFilter) (int64, error) {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := applyJobFilter(gormDB.Model(&models.Job{}), filter).Count(&n).Error; err != nil {
		return 0, translate(err, nil)
	}
	return n, nil
}

func (r *repo) ListJobAggregates(ctx context.Context) ([]*models.Job, error) {
	return findAll[models.Job](ctx, r, func(db *gorm.DB) *gorm.DB {
		return withJobAggregate(db).Order("job_id DESC")
	})
}

func (r *repo) FindJobByID(ctx context.Context, id uint) (*models.Job, error) {
	return findOne[models.Job](ctx, r, nil, "job_id = ?", id)
}

func (r *repo) FindJobAggregate(ctx context.Context, id uint) (*models.Job, error) {
	return findOne[models.Job](ctx, r, withJobAggregate, "job_id = ?", id)
}

func (r *repo) CreateJob(ctx context.Context, job *models.Job) error {
	return r.create(ctx, job)
}

// UpdateJob saves every column except the quote counter, which only NextQuoteSequence moves
func (r *repo) UpdateJob(ctx context.Context, job *models.Job) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return translate(gormDB.Omit(clause.Associations, "quote_seq").Save(job).Error, ErrUpdateFailed)
}

// DeleteJob removes the job and everything hanging off it
func (r *repo) DeleteJob(ctx context.Context, id uint) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}

	quotes := gormDB.Session(&gorm.Session{NewDB: true}).
		Model(&models.Quote{}).
		Select("quote_id").
		Where("job_id = ?", id)
	if err := deleteQuoteContents(gormDB, quotes); err != nil {
		return err
	}

	children := []interface{}{
		&models.Quote{},
		&models.JobStatusHistory{},
		&models.ThroughputStageDate{},
		&models.Attachment{},
	}
	for _, model := range children {
		if err := gormDB.Where("job_id = ?", id).Delete(model).Error; err != nil {
			return translate(err, ErrDeleteFailed)
		}
	}
	if err := gormDB.Where("job_number = ?", id).Delete(&models.ThroughputTask{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}

	return r.deleteWhere(ctx, &models.Job{}, "job_id = ?", id)
}

// NextQuoteSequence advances the job's quote counter and returns the new value.
// Call it inside a transaction so the number and the quote row commit together.
func (r *repo) NextQuoteSequence(ctx context.Context, jobID uint) (uint, error) {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	result := gormDB.Model(&models.Job{}).
		Where("job_id = ?", jobID).
		UpdateColumn("quote_seq", gorm.Expr("quote_seq + 1"))
	if result.Error != nil {
		return 0, translate(result.Error, ErrUpdateFailed)
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var seq uint
	err = gormDB.Model(&models.Job{}).
		Where("job_id = ?", jobID).
		Select("quote_seq").
		Scan(&seq).Error
	return seq, translate(err, nil)
}

// Status history operations implementation

func (r *repo) AppendStatusHistory(ctx context.Context, entry *models.JobStatusHistory) error {
	return r.create(ctx, entry)
}

func (r *repo) ListStatusHistory(ctx context.Context, jobID uint) ([]*models.JobStatusHistory, error) {
	return findAll[models.JobStatusHistory](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Status").
			Where("job_id = ?", jobID).
			Order("date").
			Order("job_status_history_id")
	})
}

// Quote operations implementation

func (r *repo) ListQuotes(ctx context.Context, jobID *uint) ([]*models.Quote, error) {
	return findAll[models.Quote](ctx, r, func(db *gorm.DB) *gorm.DB {
		if jobID != nil {
			db = db.Where("job_id = ?", *jobID)
		}
		return db.Order("quote_id")
	})
}

func (r *repo) FindQuoteByID(ctx context.Context, id uint) (*models.Quote, error) {
	return findOne[models.Quote](ctx, r, nil, "quote_id = ?", id)
}

func (r *repo) FindQuoteWithItems(ctx context.Context, id uint) (*models.Quote, error) {
	return findOne[models.Quote](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_id") }).
			Preload("Items.Product")
	}, "quote_id = ?", id)
}

func (r *repo) CreateQuote(ctx context.Context, quote *models.Quote) error {
	return r.create(ctx, quote)
}

func (r *repo) UpdateQuote(ctx context.Context, quote *models.Quote) error {
	return r.save(ctx, quote)
}

// DeleteQuote removes the quote and its items
func (r *repo) DeleteQuote(ctx context.Context, id uint) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	quotes := gormDB.Session(&gorm.Session{NewDB: true}).
		Model(&models.Quote{}).
		Select("quote_id").
		Where("quote_id = ?", id)
	if err := deleteQuoteContents(gormDB, quotes); err != nil {
		return err
	}
	return r.deleteWhere(ctx, &models.Quote{}, "quote_id = ?", id)
}

// ClearApprovedQuote detaches the quote from any job that approved it
func (r *repo) ClearApprovedQuote(ctx context.Context, quoteID uint) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	err = gormDB.Model(&models.Job{}).
		Where("approved_quote = ?", quoteID).
		UpdateColumn("approved_quote", nil).Error
	return translate(err, ErrUpdateFailed)
}

// deleteQuoteContents removes the items of the selected quotes with their selections
func deleteQuoteContents(db *gorm.DB, quotes *gorm.DB) error {
	items := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Item{}).
		Select("item_id").
		Where("quote_id IN (?)", quotes)
	if err := deleteItemContents(db, items); err != nil {
		return err
	}
	if err := db.Where("quote_id IN (?)", quotes).Delete(&models.Item{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	return nil
}

// deleteItemContents removes variable selections of the selected items and unlinks their tasks
func deleteItemContents(db *gorm.DB, items *gorm.DB) error {
	itemVariables := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.ItemVariable{}).
		Select("item_variable_id").
		Where("item_id IN (?)", items)
	if err := db.Where("item_variable_id IN (?)", itemVariables).Delete(&models.ItemVariableOption{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	if err := db.Where("item_id IN (?)", items).Delete(&models.ItemVariable{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	err := db.Model(&models.ThroughputTask{}).
		Where("item_id IN (?)", items).
		UpdateColumn("item_id", nil).Error
	return translate(err, ErrUpdateFailed)
}

// Item operations implementation

func (r *repo) ListItems(ctx context.Context, quoteID *uint) ([]*models.Item, error) {
	return findAll[models.Item](ctx, r, func(db *gorm.DB) *gorm.DB {
		db = db.Preload("Product")
		if quoteID != nil {
			db = db.Where("quote_id = ?", *quoteID)
		}
		return db.Order("item_id")
	})
}

func (r *repo) FindItemByID(ctx context.Context, id uint) (*models.Item, error) {
	return findOne[models.Item](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Product")
	}, "item_id = ?", id)
}

func (r *repo) CreateItem(ctx context.Context, item *models.Item) error {
	return r.create(ctx, item)
}

// DeleteItem removes the item and its variable selections
func (r *repo) DeleteItem(ctx context.Context, id uint) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	items := gormDB.Session(&gorm.Session{NewDB: true}).
		Model(&models.Item{}).
		Select("item_id").
		Where("item_id = ?", id)
	if err := deleteItemContents(gormDB, items); err != nil {
		return err
	}
	return r.deleteWhere(ctx, &models.Item{}, "item_id = ?", id)
}

// Item variable operations implementation

func (r *repo) ListItemVariables(ctx context.Context, itemID *uint) ([]*models.ItemVariable, error) {
	return findAll[models.ItemVariable](ctx, r, func(db *gorm.DB) *gorm.DB {
		db = db.Preload("Options")
		if itemID != nil {
			db = db.Where("item_id = ?", *itemID)
		}
		return db.Order("item_variable_id")
	})
}

func (r *repo) CreateItemVariable(ctx context.Context, variable *models.ItemVariable) error {
	return r.create(ctx, variable)
}

func (r *repo) CreateItemVariableOption(ctx context.Context, option *models.ItemVariableOption) error {
	return r.create(ctx, option)
}
