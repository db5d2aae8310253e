package repository

import (
	"context"

	"example.com/outcry/internal/models"

	"gorm.io/gorm"
)

// Client operations implementation

func withClientParties(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Contacts", func(db *gorm.DB) *gorm.DB { return db.Order("contact_id") }).
		Preload("Billing", func(db *gorm.DB) *gorm.DB { return db.Order("billing_id") })
}

func (r *repo) ListClients(ctx context.Context) ([]*models.Client, error) {
	return findAll[models.Client](ctx, r, func(db *gorm.DB) *gorm.DB {
		return withClientParties(db).Order("name").Order("client_id")
	})
}

func (r *repo) FindClientByID(ctx context.Context, id uint) (*models.Client, error) {
	return findOne[models.Client](ctx, r, withClientParties, "client_id = ?", id)
}

func (r *repo) CreateClient(ctx context.Context, client *models.Client) error {
	return r.create(ctx, client)
}

func (r *repo) UpdateClient(ctx context.Context, client *models.Client) error {
	return r.save(ctx, client)
}

// DeleteClient removes the client together with its contacts and billing entities
func (r *repo) DeleteClient(ctx context.Context, id uint) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := gormDB.Where("client_id = ?", id).Delete(&models.Contact{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	if err := gormDB.Where("client_id = ?", id).Delete(&models.Billing{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	return r.deleteWhere(ctx, &models.Client{}, "client_id = ?", id)
}

// Contact operations implementation

func (r *repo) ListContacts(ctx context.Context, clientID uint) ([]*models.Contact, error) {
	return findAll[models.Contact](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Where("client_id = ?", clientID).Order("contact_id")
	})
}

func (r *repo) FindContactByID(ctx context.Context, id uint) (*models.Contact, error) {
	return findOne[models.Contact](ctx, r, nil, "contact_id = ?", id)
}

func (r *repo) CreateContact(ctx context.Context, contact *models.Contact) error {
	return r.create(ctx, contact)
}

func (r *repo) UpdateContact(ctx context.Context, contact *models.Contact) error {
	return r.save(ctx, contact)
}

func (r *repo) DeleteContact(ctx context.Context, id uint) error {
	return r.deleteWhere(ctx, &models.Contact{}, "contact_id = ?", id)
}

// Billing operations implementation

func (r *repo) ListBilling(ctx context.Context, clientID uint) ([]*models.Billing, error) {
	return findAll[models.Billing](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Where("client_id = ?", clientID).Order("billing_id")
	})
}

func (r *repo) FindBillingByID(ctx context.Context, id uint) (*models.Billing, error) {
	return findOne[models.Billing](ctx, r, nil, "billing_id = ?", id)
}

func (r *repo) CreateBilling(ctx context.Context, billing *models.Billing) error {
	return r.create(ctx, billing)
}

func (r *repo) UpdateBilling(ctx context.Context, billing *models.Billing) error {
	return r.save(ctx, billing)
}

func (r *repo) DeleteBilling(ctx context.Context, id uint) error {
	return r.deleteWhere(ctx, &models.Billing{}, "billing_id = ?", id)
}

// Staff operations implementation

func (r *repo) ListStaff(ctx context.Context) ([]*models.Staff, error) {
	return findAll[models.Staff](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Order("first_name").Order("surname").Order("staff_id")
	})
}

func (r *repo) FindStaffByID(ctx context.Context, id uint) (*models.Staff, error) {
	return findOne[models.Staff](ctx, r, nil, "staff_id = ?", id)
}

func (r *repo) CreateStaff(ctx context.Context, staff *models.Staff) error {
	return r.create(ctx, staff)
}

func (r *repo) UpdateStaff(ctx context.Context, staff *models.Staff) error {
	return r.save(ctx, staff)
}

func (r *repo) DeleteStaff(ctx context.Context, id uint) error {
	return r.deleteWhere(ctx, &models.Staff{}, "staff_id = ?", id)
}
