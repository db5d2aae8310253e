package service

import (
	"context"
	"path"
	"strings"

	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/storage"
	"example.com/outcry/internal/utils"
)

// Bookings

func (s *service) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

func (s *service) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindBookingByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Booking", id)
	}
	return booking, nil
}

// CreateBooking stores the booking with any new addresses and uploads its files.
// Without a configured store the files are skipped.
func (s *service) CreateBooking(ctx context.Context, in BookingInput, files []storage.File) (*models.Booking, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	booking := &models.Booking{
		PickupDate:  *in.PickupDate,
		PickupTime:  in.PickupTime,
		DropoffDate: *in.DropoffDate,
		DropoffTime: in.DropoffTime,
		CreatorID:   in.CreatorID,
		Notes:       in.Notes,
		JobNumber:   in.JobNumber,
	}
	var stored []*models.Attachment
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindStaffByID(ctx, in.CreatorID); err != nil {
			return orNotFound(err, "Staff member", in.CreatorID)
		}

		var err error
		if booking.PickupAddressID, err = resolveAddress(ctx, tx, in.PickupAddressID, in.PickupAddress, in.PickupAddressDetails); err != nil {
			return err
		}
		if booking.DropoffAddressID, err = resolveAddress(ctx, tx, in.DropoffAddressID, in.DropoffAddress, in.DropoffAddressDetails); err != nil {
			return err
		}
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return err
		}

		if len(files) == 0 {
			return nil
		}
		if !s.store.Enabled() {
			s.log.Warn().Uint("booking_id", booking.BookingID).Int("files", len(files)).Msg("storage not configured, skipping booking attachments")
			s.metrics.Increment(metrics.CounterAttachmentsSkipped, int64(len(files)))
			return nil
		}
		bookingID := booking.BookingID
		creator := in.CreatorID
		stored, err = s.storeAttachments(ctx, tx, AttachmentTarget{BookingID: &bookingID}, &creator, s.acceptedFiles(files))
		return err
	})
	if err != nil {
		s.removeObjects(ctx, stored)
		return nil, err
	}

	s.publish(ctx, messaging.NewEvent(messaging.EventBookingCreated, "booking", booking.BookingID, map[string]interface{}{
		"creator_id":   booking.CreatorID,
		"pickup_date":  booking.PickupDate.String(),
		"dropoff_date": booking.DropoffDate.String(),
	}))
	return s.GetBooking(ctx, booking.BookingID)
}

// resolveAddress returns the referenced address id, or creates an address from
// the text or details. It returns nil when nothing was supplied.
func resolveAddress(ctx context.Context, tx repository.Repository, id *uint, text string, details *AddressDetails) (*uint, error) {
	if id != nil {
		if _, err := tx.FindAddressByID(ctx, *id); err != nil {
			return nil, orNotFound(err, "Address", *id)
		}
		return id, nil
	}
	if strings.TrimSpace(text) == "" && details == nil {
		return nil, nil
	}
	address := DeriveAddress("", text, details)
	if err := tx.CreateAddress(ctx, &address); err != nil {
		return nil, err
	}
	return &address.AddressID, nil
}

// UpdateBooking applies the fields present in the input
func (s *service) UpdateBooking(ctx context.Context, id uint, in BookingUpdateInput) (*models.Booking, error) {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		booking, err := tx.FindBookingByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Booking", id)
		}
		now := s.now().UTC()
		if in.Completion != nil {
			booking.Completion = *in.Completion
		}
		if in.PickupComplete.Present() {
			booking.PickupComplete = in.PickupComplete.Resolve(now)
		}
		if in.DropoffComplete.Present() {
			booking.DropoffComplete = in.DropoffComplete.Resolve(now)
		}
		if in.Notes != nil {
			booking.Notes = *in.Notes
		}
		return tx.UpdateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, messaging.NewEvent(messaging.EventBookingUpdated, "booking", id, map[string]interface{}{
		"completion":       booking.Completion,
		"pickup_complete":  booking.PickupComplete != nil,
		"dropoff_complete": booking.DropoffComplete != nil,
	}))
	return booking, nil
}

// DeleteBooking removes the booking and its attachment rows, then the stored objects
func (s *service) DeleteBooking(ctx context.Context, id uint) error {
	var attachments []*models.Attachment
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindBookingByID(ctx, id); err != nil {
			return orNotFound(err, "Booking", id)
		}
		var err error
		if attachments, err = tx.ListAttachments(ctx, repository.AttachmentFilter{BookingID: &id}); err != nil {
			return err
		}
		return tx.DeleteBooking(ctx, id)
	})
	if err != nil {
		return err
	}

	s.removeObjects(ctx, attachments)
	return nil
}

// Attachments

// UploadAttachments stores files against a booking or a job. Unlike uploads
// made while creating a booking, every file must pass the upload policy and
// the store must be configured.
func (s *service) UploadAttachments(ctx context.Context, target AttachmentTarget, uploadedBy *uint, files []storage.File) ([]*models.Attachment, error) {
	if (target.BookingID == nil) == (target.JobID == nil) {
		return nil, validationf("exactly one of booking_id or job_id is required")
	}
	if len(files) == 0 {
		return nil, validationf("no files provided")
	}
	for _, f := range files {
		if err := s.checkUpload(f); err != nil {
			return nil, err
		}
	}
	if !s.store.Enabled() {
		return nil, &Error{Kind: ErrStorageNotConfigured, Message: ErrStorageNotConfigured.Error()}
	}

	var attachments []*models.Attachment
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if target.BookingID != nil {
			if _, err := tx.FindBookingByID(ctx, *target.BookingID); err != nil {
				return orNotFound(err, "Booking", *target.BookingID)
			}
		} else {
			if _, err := tx.FindJobByID(ctx, *target.JobID); err != nil {
				return orNotFound(err, "Job", *target.JobID)
			}
		}
		if uploadedBy != nil {
			if _, err := tx.FindStaffByID(ctx, *uploadedBy); err != nil {
				return orNotFound(err, "Staff member", *uploadedBy)
			}
		}

		var err error
		attachments, err = s.storeAttachments(ctx, tx, target, uploadedBy, files)
		return err
	})
	if err != nil {
		s.removeObjects(ctx, attachments)
		return nil, err
	}

	events := make([]messaging.Event, 0, len(attachments))
	for _, a := range attachments {
		events = append(events, messaging.NewEvent(messaging.EventAttachmentUploaded, "attachment", a.AttachmentID, map[string]interface{}{
			"file_name":    a.FileName,
			"storage_path": a.StoragePath,
			"booking_id":   a.BookingID,
			"job_id":       a.JobID,
		}))
	}
	s.publish(ctx, events...)
	return attachments, nil
}

func (s *service) ListAttachments(ctx context.Context, filter repository.AttachmentFilter) ([]*models.Attachment, error) {
	return s.repo.ListAttachments(ctx, filter)
}

func (s *service) GetAttachment(ctx context.Context, id uint) (*models.Attachment, error) {
	attachment, err := s.repo.FindAttachmentByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Attachment", id)
	}
	return attachment, nil
}

// DeleteAttachment removes the row. The stored object is removed best effort.
func (s *service) DeleteAttachment(ctx context.Context, id uint) error {
	var attachment *models.Attachment
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if attachment, err = tx.FindAttachmentByID(ctx, id); err != nil {
			return orNotFound(err, "Attachment", id)
		}
		return tx.DeleteAttachment(ctx, id)
	})
	if err != nil {
		return err
	}

	s.removeObjects(ctx, []*models.Attachment{attachment})
	return nil
}

// storeAttachments uploads files under the target and records one row per stored
// object. The returned attachments cover every uploaded object, also when a row
// fails, so the caller can remove them if the transaction does not commit.
func (s *service) storeAttachments(ctx context.Context, tx repository.Repository, target AttachmentTarget, uploadedBy *uint, files []storage.File) ([]*models.Attachment, error) {
	if len(files) == 0 {
		return []*models.Attachment{}, nil
	}

	var ns storage.Namespace
	if target.BookingID != nil {
		ns = storage.Namespace{EntityType: "booking", EntityID: *target.BookingID}
	} else {
		ns = storage.Namespace{EntityType: "job", EntityID: *target.JobID}
	}

	objects, err := s.store.Upload(ctx, ns, files)
	if err != nil {
		return nil, err
	}
	s.metrics.Increment(metrics.CounterAttachmentsStored, int64(len(objects)))
	s.metrics.Increment(metrics.CounterAttachmentsSkipped, int64(len(files)-len(objects)))

	uploadedAt := s.now().UTC()
	attachments := make([]*models.Attachment, 0, len(objects))
	for _, object := range objects {
		attachments = append(attachments, &models.Attachment{
			BookingID:   target.BookingID,
			JobID:       target.JobID,
			FileName:    object.FileName,
			StoragePath: object.StoragePath,
			SharedURL:   object.SharedURL,
			UploadedBy:  uploadedBy,
			UploadedAt:  uploadedAt,
		})
	}
	for _, attachment := range attachments {
		if err := tx.CreateAttachment(ctx, attachment); err != nil {
			return attachments, err
		}
	}
	return attachments, nil
}

// checkUpload applies the configured size and extension limits
func (s *service) checkUpload(f storage.File) error {
	if s.upload.MaxSize > 0 && int64(len(f.Content)) > s.upload.MaxSize {
		return validationf("file %q exceeds the maximum size of %d bytes", f.Name, s.upload.MaxSize)
	}
	if len(s.upload.AllowedExtensions) == 0 {
		return nil
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(f.Name), "."))
	for _, allowed := range s.upload.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return validationf("file %q has a disallowed extension", f.Name)
}

// acceptedFiles drops files that fail the upload policy, logging each one
func (s *service) acceptedFiles(files []storage.File) []storage.File {
	accepted := make([]storage.File, 0, len(files))
	for _, f := range files {
		if err := s.checkUpload(f); err != nil {
			s.log.Warn().Err(err).Str("file", f.Name).Msg("skipping attachment")
			s.metrics.Increment(metrics.CounterAttachmentsSkipped, 1)
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted
}

// removeObjects deletes stored objects after their rows are gone or were never committed
func (s *service) removeObjects(ctx context.Context, attachments []*models.Attachment) {
	if !s.store.Enabled() {
		return
	}
	for _, a := range attachments {
		if err := s.store.Delete(ctx, a.StoragePath); err != nil {
			s.log.Warn().Err(err).Str("storage_path", a.StoragePath).Msg("failed to delete stored object")
		}
	}
}
