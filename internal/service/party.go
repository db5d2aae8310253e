package service

import (
	"context"

	"example.com/outcry/internal/models"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/utils"
)

// Clients

func (s *service) ListClients(ctx context.Context) ([]*models.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *service) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Client", id)
	}
	return client, nil
}

func (s *service) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}
	client := &models.Client{}
	applyClientInput(client, in)
	if err := s.repo.CreateClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// UpdateClient changes the fields present in the input
func (s *service) UpdateClient(ctx context.Context, id uint, in ClientUpdateInput) (*models.Client, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		client, err := tx.FindClientByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Client", id)
		}
		assign(&client.Name, in.Name)
		assign(&client.Address, in.Address)
		assign(&client.Suburb, in.Suburb)
		assign(&client.State, in.State)
		assign(&client.Postcode, in.Postcode)
		return tx.UpdateClient(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	return s.GetClient(ctx, id)
}

func applyClientInput(client *models.Client, in ClientInput) {
	client.Name = in.Name
	client.Address = in.Address
	client.Suburb = in.Suburb
	client.State = in.State
	client.Postcode = in.Postcode
}

// DeleteClient removes a client without jobs along with its contacts and billing entities
func (s *service) DeleteClient(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindClientByID(ctx, id); err != nil {
			return orNotFound(err, "Client", id)
		}
		n, err := tx.CountJobs(ctx, repository.JobFilter{ClientID: &id})
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete client. They have %d job(s).", n)
		}
		return tx.DeleteClient(ctx, id)
	})
}

// Contacts

func (s *service) ListContacts(ctx context.Context, clientID uint) ([]*models.Contact, error) {
	if _, err := s.repo.FindClientByID(ctx, clientID); err != nil {
		return nil, orNotFound(err, "Client", clientID)
	}
	return s.repo.ListContacts(ctx, clientID)
}

func (s *service) CreateContact(ctx context.Context, in ContactInput) (*models.Contact, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	contact := &models.Contact{}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindClientByID(ctx, in.ClientID); err != nil {
			return orNotFound(err, "Client", in.ClientID)
		}
		applyContactInput(contact, in)
		return tx.CreateContact(ctx, contact)
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *service) UpdateContact(ctx context.Context, id uint, in ContactUpdateInput) (*models.Contact, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var contact *models.Contact
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if contact, err = tx.FindContactByID(ctx, id); err != nil {
			return orNotFound(err, "Contact", id)
		}
		if in.ClientID != nil {
			if _, err := tx.FindClientByID(ctx, *in.ClientID); err != nil {
				return orNotFound(err, "Client", *in.ClientID)
			}
		}
		assign(&contact.FirstName, in.FirstName)
		assign(&contact.Surname, in.Surname)
		assign(&contact.Email, in.Email)
		assign(&contact.Phone, in.Phone)
		assign(&contact.ClientID, in.ClientID)
		return tx.UpdateContact(ctx, contact)
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func applyContactInput(contact *models.Contact, in ContactInput) {
	contact.FirstName = in.FirstName
	contact.Surname = in.Surname
	contact.Email = in.Email
	contact.Phone = in.Phone
	contact.ClientID = in.ClientID
}

func (s *service) DeleteContact(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindContactByID(ctx, id); err != nil {
			return orNotFound(err, "Contact", id)
		}
		n, err := tx.CountJobs(ctx, repository.JobFilter{ContactID: &id})
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete contact. They are on %d job(s).", n)
		}
		return tx.DeleteContact(ctx, id)
	})
}

// Billing entities

func (s *service) ListBilling(ctx context.Context, clientID uint) ([]*models.Billing, error) {
	if _, err := s.repo.FindClientByID(ctx, clientID); err != nil {
		return nil, orNotFound(err, "Client", clientID)
	}
	return s.repo.ListBilling(ctx, clientID)
}

func (s *service) CreateBilling(ctx context.Context, in BillingInput) (*models.Billing, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	billing := &models.Billing{}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindClientByID(ctx, in.ClientID); err != nil {
			return orNotFound(err, "Client", in.ClientID)
		}
		applyBillingInput(billing, in)
		return tx.CreateBilling(ctx, billing)
	})
	if err != nil {
		return nil, err
	}
	return billing, nil
}

func (s *service) UpdateBilling(ctx context.Context, id uint, in BillingUpdateInput) (*models.Billing, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var billing *models.Billing
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if billing, err = tx.FindBillingByID(ctx, id); err != nil {
			return orNotFound(err, "Billing entity", id)
		}
		if in.ClientID != nil {
			if _, err := tx.FindClientByID(ctx, *in.ClientID); err != nil {
				return orNotFound(err, "Client", *in.ClientID)
			}
		}
		assign(&billing.Entity, in.Entity)
		assign(&billing.Address, in.Address)
		assign(&billing.Suburb, in.Suburb)
		assign(&billing.State, in.State)
		assign(&billing.Postcode, in.Postcode)
		assign(&billing.ClientID, in.ClientID)
		return tx.UpdateBilling(ctx, billing)
	})
	if err != nil {
		return nil, err
	}
	return billing, nil
}

func applyBillingInput(billing *models.Billing, in BillingInput) {
	billing.Entity = in.Entity
	billing.Address = in.Address
	billing.Suburb = in.Suburb
	billing.State = in.State
	billing.Postcode = in.Postcode
	billing.ClientID = in.ClientID
}

func (s *service) DeleteBilling(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindBillingByID(ctx, id); err != nil {
			return orNotFound(err, "Billing entity", id)
		}
		n, err := tx.CountJobs(ctx, repository.JobFilter{BillingID: &id})
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete billing entity. It is used by %d job(s).", n)
		}
		return tx.DeleteBilling(ctx, id)
	})
}

// Staff

// ListStaff returns every staff member with the jobs assigned to them
func (s *service) ListStaff(ctx context.Context) ([]models.StaffDetail, error) {
	staff, err := s.repo.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.repo.ListJobs(ctx, repository.JobFilter{})
	if err != nil {
		return nil, err
	}
	labels, err := s.jobStatusLabels(ctx)
	if err != nil {
		return nil, err
	}

	assigned := make(map[uint][]models.StaffJobSummary)
	for _, job := range jobs {
		assigned[job.StaffID] = append(assigned[job.StaffID], staffJobSummary(job, labels))
	}

	details := make([]models.StaffDetail, 0, len(staff))
	for _, member := range staff {
		details = append(details, staffDetail(member, assigned[member.StaffID]))
	}
	return details, nil
}

func (s *service) GetStaff(ctx context.Context, id uint) (*models.StaffDetail, error) {
	member, err := s.repo.FindStaffByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Staff member", id)
	}
	jobs, err := s.repo.ListJobs(ctx, repository.JobFilter{StaffID: &id})
	if err != nil {
		return nil, err
	}
	labels, err := s.jobStatusLabels(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.StaffJobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, staffJobSummary(job, labels))
	}
	detail := staffDetail(member, summaries)
	return &detail, nil
}

func (s *service) CreateStaff(ctx context.Context, in StaffInput) (*models.Staff, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}
	member := &models.Staff{}
	applyStaffInput(member, in)
	if err := s.repo.CreateStaff(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) UpdateStaff(ctx context.Context, id uint, in StaffInput) (*models.Staff, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var member *models.Staff
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if member, err = tx.FindStaffByID(ctx, id); err != nil {
			return orNotFound(err, "Staff member", id)
		}
		applyStaffInput(member, in)
		return tx.UpdateStaff(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func applyStaffInput(member *models.Staff, in StaffInput) {
	member.FirstName = in.FirstName
	member.Surname = in.Surname
	member.Phone = in.Phone
	member.Email = in.Email
	member.Address = in.Address
	member.Suburb = in.Suburb
	member.State = in.State
	member.Postcode = in.Postcode
	member.DOB = in.DOB
	member.EmergencyContact = in.EmergencyContact
	member.EmergencyContactNumber = in.EmergencyContactNumber
}

// DeleteStaff refuses to remove a staff member who still owns jobs
func (s *service) DeleteStaff(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindStaffByID(ctx, id); err != nil {
			return orNotFound(err, "Staff member", id)
		}
		n, err := tx.CountJobs(ctx, repository.JobFilter{StaffID: &id})
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete staff member. They have %d assigned job(s).", n)
		}
		return tx.DeleteStaff(ctx, id)
	})
}

func (s *service) jobStatusLabels(ctx context.Context) (map[models.JobStatusID]string, error) {
	statuses, err := s.repo.ListJobStatuses(ctx)
	if err != nil {
		return nil, err
	}
	labels := make(map[models.JobStatusID]string, len(statuses))
	for _, status := range statuses {
		labels[status.JobStatusID] = status.JobStatus
	}
	return labels, nil
}

func staffJobSummary(job *models.Job, labels map[models.JobStatusID]string) models.StaffJobSummary {
	label, ok := labels[job.JobStatusID]
	if !ok {
		label = job.JobStatusID.String()
	}
	return models.StaffJobSummary{
		JobID:     job.JobID,
		Reference: job.Reference,
		JobStatus: label,
	}
}

func staffDetail(member *models.Staff, jobs []models.StaffJobSummary) models.StaffDetail {
	if jobs == nil {
		jobs = []models.StaffJobSummary{}
	}
	return models.StaffDetail{Staff: *member, AssignedJobs: jobs}
}
