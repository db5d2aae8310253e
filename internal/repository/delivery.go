package repository

import (
	"context"

	"example.com/outcry/internal/models"

	"gorm.io/gorm"
)

// Address operations implementation

func (r *repo) ListAddresses(ctx context.Context) ([]*models.Address, error) {
	return findAll[models.Address](ctx, r, orderBy("address_id"))
}

func (r *repo) FindAddressByID(ctx context.Context, id uint) (*models.Address, error) {
	return findOne[models.Address](ctx, r, nil, "address_id = ?", id)
}

func (r *repo) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.create(ctx, address)
}

// Booking operations implementation

func withBookingDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("PickupAddress").
		Preload("DropoffAddress").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("attachment_id") })
}

func (r *repo) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return findAll[models.Booking](ctx, r, func(db *gorm.DB) *gorm.DB {
		return withBookingDetails(db).Order("pickup_date DESC").Order("booking_id DESC")
	})
}

func (r *repo) FindBookingByID(ctx context.Context, id uint) (*models.Booking, error) {
	return findOne[models.Booking](ctx, r, withBookingDetails, "booking_id = ?", id)
}

func (r *repo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return r.create(ctx, booking)
}

func (r *repo) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	return r.save(ctx, booking)
}

// DeleteBooking removes the booking and its attachment rows. Stored objects are left to the caller.
func (r *repo) DeleteBooking(ctx context.Context, id uint) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := gormDB.Where("booking_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	return r.deleteWhere(ctx, &models.Booking{}, "booking_id = ?", id)
}

// Attachment operations implementation

func (r *repo) ListAttachments(ctx context.Context, filter AttachmentFilter) ([]*models.Attachment, error) {
	return findAll[models.Attachment](ctx, r, func(db *gorm.DB) *gorm.DB {
		if filter.BookingID != nil {
			db = db.Where("booking_id = ?", *filter.BookingID)
		}
		if filter.JobID != nil {
			db = db.Where("job_id = ?", *filter.JobID)
		}
		return db.Order("attachment_id")
	})
}

func (r *repo) FindAttachmentByID(ctx context.Context, id uint) (*models.Attachment, error) {
	return findOne[models.Attachment](ctx, r, nil, "attachment_id = ?", id)
}

func (r *repo) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	return r.create(ctx, attachment)
}

func (r *repo) DeleteAttachment(ctx context.Context, id uint) error {
	return r.deleteWhere(ctx, &models.Attachment{}, "attachment_id = ?", id)
}
