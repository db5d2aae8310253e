package service

import (
	"context"
	"strings"

	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/storage"
	"example.com/outcry/internal/utils"

	"github.com/pkg/errors"
)

// Projects

func (s *service) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return s.repo.ListProjects(ctx)
}

// ListClientProjects returns the projects reached through the client's jobs
func (s *service) ListClientProjects(ctx context.Context, clientID uint) ([]*models.Project, error) {
	if _, err := s.repo.FindClientByID(ctx, clientID); err != nil {
		return nil, orNotFound(err, "Client", clientID)
	}
	return s.repo.ListProjectsForClient(ctx, clientID)
}

func (s *service) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repo.FindProjectByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Project", id)
	}
	return project, nil
}

func (s *service) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}
	project := &models.Project{DateCreated: s.today()}
	applyProjectInput(project, in)
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *service) UpdateProject(ctx context.Context, id uint, in ProjectInput) (*models.Project, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var project *models.Project
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if project, err = tx.FindProjectByID(ctx, id); err != nil {
			return orNotFound(err, "Project", id)
		}
		applyProjectInput(project, in)
		return tx.UpdateProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func applyProjectInput(project *models.Project, in ProjectInput) {
	project.Name = in.Name
	project.Address = in.Address
	project.Suburb = in.Suburb
	project.State = in.State
	project.Postcode = in.Postcode
	if in.DateCreated != nil {
		project.DateCreated = *in.DateCreated
	}
}

func (s *service) DeleteProject(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindProjectByID(ctx, id); err != nil {
			return orNotFound(err, "Project", id)
		}
		n, err := tx.CountJobs(ctx, repository.JobFilter{ProjectID: &id})
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete project. It has %d job(s).", n)
		}
		return tx.DeleteProject(ctx, id)
	})
}

func (s *service) ListJobStatuses(ctx context.Context) ([]*models.JobStatus, error) {
	return s.repo.ListJobStatuses(ctx)
}

// Jobs

func (s *service) ListJobs(ctx context.Context) ([]models.JobDetail, error) {
	jobs, err := s.repo.ListJobAggregates(ctx)
	if err != nil {
		return nil, err
	}
	details := make([]models.JobDetail, 0, len(jobs))
	for _, job := range jobs {
		details = append(details, jobDetail(job))
	}
	return details, nil
}

func (s *service) GetJob(ctx context.Context, id uint) (*models.JobDetail, error) {
	job, err := s.repo.FindJobAggregate(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Job", id)
	}
	detail := jobDetail(job)
	return &detail, nil
}

// CreateJob inserts the job with its first history row and stores any
// attached files under the new job.
func (s *service) CreateJob(ctx context.Context, in JobInput, files []storage.File) (*models.JobDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	job := &models.Job{}
	var stored []*models.Attachment
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if err := checkJobReferences(ctx, tx, in); err != nil {
			return err
		}

		status := models.JobStatusQuote
		if in.JobStatusID != nil {
			status = *in.JobStatusID
		}
		if _, err := tx.FindJobStatusByID(ctx, status); err != nil {
			return orNotFound(err, "Job status", uint(status))
		}

		created := s.today()
		if in.DateCreated != nil {
			created = *in.DateCreated
		}

		applyJobInput(job, in)
		job.DateCreated = &created
		job.JobStatusID = status
		if err := tx.CreateJob(ctx, job); err != nil {
			return err
		}

		entry := &models.JobStatusHistory{JobID: job.JobID, JobStatusID: status, Date: created}
		if err := tx.AppendStatusHistory(ctx, entry); err != nil {
			return err
		}

		if len(files) == 0 {
			return nil
		}
		if !s.store.Enabled() {
			s.log.Warn().Uint("job_id", job.JobID).Int("files", len(files)).Msg("storage not configured, skipping job attachments")
			s.metrics.Increment(metrics.CounterAttachmentsSkipped, int64(len(files)))
			return nil
		}
		jobID := job.JobID
		var err error
		stored, err = s.storeAttachments(ctx, tx, AttachmentTarget{JobID: &jobID}, nil, s.acceptedFiles(files))
		return err
	})
	if err != nil {
		s.removeObjects(ctx, stored)
		return nil, err
	}

	s.publish(ctx, messaging.NewEvent(messaging.EventJobCreated, "job", job.JobID, map[string]interface{}{
		"reference": job.Reference,
		"client_id": job.ClientID,
	}))
	return s.reloadJob(ctx, job.JobID)
}

// UpdateJob changes the fields present in the input and keeps the rest. A
// status change goes through the transition table and the history log.
func (s *service) UpdateJob(ctx context.Context, id uint, in JobUpdateInput) (*models.JobDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var change *statusChange
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		job, err := tx.FindJobByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Job", id)
		}
		if err := checkJobUpdateReferences(ctx, tx, job, in); err != nil {
			return err
		}

		assign(&job.Reference, in.Reference)
		assign(&job.ProjectID, in.ProjectID)
		assign(&job.ClientID, in.ClientID)
		assign(&job.ContactID, in.ContactID)
		assign(&job.StaffID, in.StaffID)
		assign(&job.PO, in.PO)
		assign(&job.JobAddress, in.JobAddress)
		assign(&job.Suburb, in.Suburb)
		assign(&job.State, in.State)
		assign(&job.Postcode, in.Postcode)
		if in.BillingEntity != nil {
			job.BillingEntity = in.BillingEntity
		}
		if in.StageID != nil {
			job.StageID = in.StageID
		}
		if in.DateCreated != nil {
			job.DateCreated = in.DateCreated
		}
		if in.JobStatusID != nil {
			if change, err = changeStatus(ctx, tx, job, *in.JobStatusID, s.today()); err != nil {
				return err
			}
		}
		return tx.UpdateJob(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	if change != nil {
		s.publish(ctx, change.event(id))
	}
	return s.reloadJob(ctx, id)
}

// checkJobUpdateReferences checks the references an update changes. The
// billing entity is checked against the client the job ends up with.
func checkJobUpdateReferences(ctx context.Context, tx repository.Repository, job *models.Job, in JobUpdateInput) error {
	if in.ProjectID != nil {
		if _, err := tx.FindProjectByID(ctx, *in.ProjectID); err != nil {
			return orNotFound(err, "Project", *in.ProjectID)
		}
	}
	if in.ClientID != nil {
		if _, err := tx.FindClientByID(ctx, *in.ClientID); err != nil {
			return orNotFound(err, "Client", *in.ClientID)
		}
	}
	if in.ContactID != nil {
		if _, err := tx.FindContactByID(ctx, *in.ContactID); err != nil {
			return orNotFound(err, "Contact", *in.ContactID)
		}
	}
	if in.StaffID != nil {
		if _, err := tx.FindStaffByID(ctx, *in.StaffID); err != nil {
			return orNotFound(err, "Staff member", *in.StaffID)
		}
	}
	if in.StageID != nil {
		if _, err := tx.FindStageByID(ctx, *in.StageID); err != nil {
			return orNotFound(err, "Stage", uint(*in.StageID))
		}
	}

	clientID := job.ClientID
	if in.ClientID != nil {
		clientID = *in.ClientID
	}
	billingID := job.BillingEntity
	if in.BillingEntity != nil {
		billingID = in.BillingEntity
	}
	if billingID != nil && (in.BillingEntity != nil || clientID != job.ClientID) {
		return checkBillingForClient(ctx, tx, *billingID, clientID)
	}
	return nil
}

func applyJobInput(job *models.Job, in JobInput) {
	job.Reference = in.Reference
	job.ProjectID = in.ProjectID
	job.ClientID = in.ClientID
	job.ContactID = in.ContactID
	job.StaffID = in.StaffID
	job.BillingEntity = in.BillingEntity
	job.PO = in.PO
	job.JobAddress = in.JobAddress
	job.Suburb = in.Suburb
	job.State = in.State
	job.Postcode = in.Postcode
	if in.StageID != nil {
		job.StageID = in.StageID
	}
}

// checkJobReferences verifies every row the job input points at
func checkJobReferences(ctx context.Context, tx repository.Repository, in JobInput) error {
	if _, err := tx.FindProjectByID(ctx, in.ProjectID); err != nil {
		return orNotFound(err, "Project", in.ProjectID)
	}
	if _, err := tx.FindClientByID(ctx, in.ClientID); err != nil {
		return orNotFound(err, "Client", in.ClientID)
	}
	if _, err := tx.FindContactByID(ctx, in.ContactID); err != nil {
		return orNotFound(err, "Contact", in.ContactID)
	}
	if _, err := tx.FindStaffByID(ctx, in.StaffID); err != nil {
		return orNotFound(err, "Staff member", in.StaffID)
	}
	if in.BillingEntity != nil {
		if err := checkBillingForClient(ctx, tx, *in.BillingEntity, in.ClientID); err != nil {
			return err
		}
	}
	if in.StageID != nil {
		if _, err := tx.FindStageByID(ctx, *in.StageID); err != nil {
			return orNotFound(err, "Stage", uint(*in.StageID))
		}
	}
	return nil
}

func checkBillingForClient(ctx context.Context, tx repository.Repository, billingID, clientID uint) error {
	billing, err := tx.FindBillingByID(ctx, billingID)
	if err != nil {
		return orNotFound(err, "Billing entity", billingID)
	}
	if billing.ClientID != clientID {
		return conflictf("Billing entity %d does not belong to client %d", billingID, clientID)
	}
	return nil
}

// DeleteJob removes the job with its history, quotes, tasks, stage dates and
// attachment rows. Stored objects are removed afterwards.
func (s *service) DeleteJob(ctx context.Context, id uint) error {
	var attachments []*models.Attachment
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindJobByID(ctx, id); err != nil {
			return orNotFound(err, "Job", id)
		}
		var err error
		if attachments, err = tx.ListAttachments(ctx, repository.AttachmentFilter{JobID: &id}); err != nil {
			return err
		}
		return tx.DeleteJob(ctx, id)
	})
	if err != nil {
		return err
	}

	s.removeObjects(ctx, attachments)
	if s.search.Enabled() {
		if err := s.search.DeleteJob(ctx, id); err != nil {
			s.metrics.Increment(metrics.CounterIndexErrors, 1)
			s.log.Warn().Err(err).Uint("job_id", id).Msg("failed to remove job from search index")
		}
	}
	s.publish(ctx, messaging.NewEvent(messaging.EventJobDeleted, "job", id, nil))
	return nil
}

func (s *service) UpdateJobStatus(ctx context.Context, id uint, status models.JobStatusID) (*models.JobDetail, error) {
	var change *statusChange
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		job, err := tx.FindJobByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Job", id)
		}
		if change, err = changeStatus(ctx, tx, job, status, s.today()); err != nil {
			return err
		}
		if change == nil {
			return nil
		}
		return tx.UpdateJob(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	if change != nil {
		s.publish(ctx, change.event(id))
	}
	return s.reloadJob(ctx, id)
}

// UpdateJobAddress changes only the address fields present in the input
func (s *service) UpdateJobAddress(ctx context.Context, id uint, in JobAddressInput) (*models.JobDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		job, err := tx.FindJobByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Job", id)
		}
		assign(&job.JobAddress, in.JobAddress)
		assign(&job.Suburb, in.Suburb)
		assign(&job.State, in.State)
		assign(&job.Postcode, in.Postcode)
		return tx.UpdateJob(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return s.reloadJob(ctx, id)
}

// UpdateJobBilling sets or clears the billing entity. It must belong to the job's client.
func (s *service) UpdateJobBilling(ctx context.Context, id uint, billingID *uint) (*models.JobDetail, error) {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		job, err := tx.FindJobByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Job", id)
		}
		if billingID != nil {
			if err := checkBillingForClient(ctx, tx, *billingID, job.ClientID); err != nil {
				return err
			}
		}
		job.BillingEntity = billingID
		return tx.UpdateJob(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return s.reloadJob(ctx, id)
}

// ApproveQuote approves one of the job's quotes, or clears the approval when quoteID is nil
func (s *service) ApproveQuote(ctx context.Context, id uint, quoteID *uint) (*models.JobDetail, error) {
	var change *statusChange
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		job, err := tx.FindJobByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Job", id)
		}
		if quoteID == nil {
			job.ApprovedQuote = nil
			return tx.UpdateJob(ctx, job)
		}
		if change, err = approveQuote(ctx, tx, job, *quoteID, s.today()); err != nil {
			return err
		}
		return tx.UpdateJob(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	if quoteID != nil {
		events := []messaging.Event{messaging.NewEvent(messaging.EventJobQuoteApproved, "job", id, map[string]interface{}{
			"quote_id": *quoteID,
		})}
		if change != nil {
			events = append(events, change.event(id))
		}
		s.publish(ctx, events...)
	}
	return s.reloadJob(ctx, id)
}

// SetJobStage moves the job to a stage, or clears it when stageID is nil
func (s *service) SetJobStage(ctx context.Context, id uint, stageID *models.StageID) (*models.JobDetail, error) {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		job, err := tx.FindJobByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Job", id)
		}
		if stageID != nil {
			if _, err := tx.FindStageByID(ctx, *stageID); err != nil {
				return orNotFound(err, "Stage", uint(*stageID))
			}
		}
		job.StageID = stageID
		return tx.UpdateJob(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return s.reloadJob(ctx, id)
}

// SetStageDueDate upserts the due date of one stage of the job
func (s *service) SetStageDueDate(ctx context.Context, id uint, in StageDueDateInput) (*models.ThroughputStageDate, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	row := &models.ThroughputStageDate{JobID: id, StageID: in.StageID, DueDate: in.DueDate}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindJobByID(ctx, id); err != nil {
			return orNotFound(err, "Job", id)
		}
		if _, err := tx.FindStageByID(ctx, in.StageID); err != nil {
			return orNotFound(err, "Stage", uint(in.StageID))
		}
		return tx.UpsertStageDate(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) ListStatusHistory(ctx context.Context, id uint) ([]models.StatusHistoryEntry, error) {
	if _, err := s.repo.FindJobByID(ctx, id); err != nil {
		return nil, orNotFound(err, "Job", id)
	}
	history, err := s.repo.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := make([]models.StatusHistoryEntry, 0, len(history))
	for _, h := range history {
		entries = append(entries, historyEntry(*h))
	}
	return entries, nil
}

func (s *service) ListStageDates(ctx context.Context, id uint) ([]*models.ThroughputStageDate, error) {
	if _, err := s.repo.FindJobByID(ctx, id); err != nil {
		return nil, orNotFound(err, "Job", id)
	}
	return s.repo.ListStageDates(ctx, id)
}

// Search and background work

func (s *service) SearchJobs(ctx context.Context, query string, limit int) ([]models.JobDocument, error) {
	if !s.search.Enabled() {
		return nil, &Error{Kind: ErrSearchDisabled, Message: ErrSearchDisabled.Error()}
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationf("query must not be empty")
	}
	return s.search.SearchJobs(ctx, query, limit)
}

// ReindexJobs writes every job to the search index and returns how many succeeded
func (s *service) ReindexJobs(ctx context.Context) (int, error) {
	if !s.search.Enabled() {
		return 0, &Error{Kind: ErrSearchDisabled, Message: ErrSearchDisabled.Error()}
	}
	jobs, err := s.repo.ListJobAggregates(ctx)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		if err := s.search.IndexJob(ctx, jobDocument(jobDetail(job))); err != nil {
			s.metrics.Increment(metrics.CounterIndexErrors, 1)
			s.log.Warn().Err(err).Uint("job_id", job.JobID).Msg("failed to index job")
			continue
		}
		indexed++
	}
	s.metrics.Increment(metrics.CounterJobsIndexed, int64(indexed))
	return indexed, nil
}

// NotifyOverdueStages publishes stage.overdue for every job whose current
// stage is due before today
func (s *service) NotifyOverdueStages(ctx context.Context) (int, error) {
	today := s.today()
	rows, err := s.repo.ListStageDatesDueBefore(ctx, today)
	if err != nil {
		return 0, err
	}

	jobs := make(map[uint]*models.Job)
	var events []messaging.Event
	for _, row := range rows {
		job, ok := jobs[row.JobID]
		if !ok {
			job, err = s.repo.FindJobByID(ctx, row.JobID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return 0, err
			}
			jobs[row.JobID] = job
		}
		if job.StageID == nil || *job.StageID != row.StageID {
			continue
		}
		events = append(events, messaging.NewEvent(messaging.EventStageOverdue, "job", job.JobID, map[string]interface{}{
			"stage_id": uint(row.StageID),
			"due_date": row.DueDate.String(),
			"today":    today.String(),
		}))
	}

	s.publish(ctx, events...)
	return len(events), nil
}

// reloadJob reads the committed aggregate and refreshes its search document
func (s *service) reloadJob(ctx context.Context, id uint) (*models.JobDetail, error) {
	detail, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	s.indexDetail(ctx, detail)
	return detail, nil
}

// indexJob refreshes the search document of a job after a change below it
func (s *service) indexJob(ctx context.Context, id uint) {
	if !s.search.Enabled() {
		return
	}
	detail, err := s.GetJob(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Uint("job_id", id).Msg("failed to load job for indexing")
		return
	}
	s.indexDetail(ctx, detail)
}

func (s *service) indexDetail(ctx context.Context, detail *models.JobDetail) {
	if !s.search.Enabled() {
		return
	}
	if err := s.search.IndexJob(ctx, jobDocument(*detail)); err != nil {
		s.metrics.Increment(metrics.CounterIndexErrors, 1)
		s.log.Warn().Err(err).Uint("job_id", detail.JobID).Msg("failed to index job")
		return
	}
	s.metrics.Increment(metrics.CounterJobsIndexed, 1)
}

// Aggregate assembly

func jobDetail(job *models.Job) models.JobDetail {
	detail := models.JobDetail{
		Job:             *job,
		JobStatus:       job.JobStatusID.String(),
		BillingEntities: []models.Billing{},
		StatusHistory:   make([]models.StatusHistoryEntry, 0, len(job.History)),
		Quotes:          make([]models.QuoteDetail, 0, len(job.Quotes)),
		Assets:          job.Attachments,
	}
	if detail.Assets == nil {
		detail.Assets = []models.Attachment{}
	}

	if job.Client != nil {
		detail.ClientName = job.Client.Name
		if job.Client.Billing != nil {
			detail.BillingEntities = job.Client.Billing
		}
	}
	if job.Project != nil {
		detail.ProjectName = job.Project.Name
	}
	if job.Contact != nil {
		detail.ContactName = job.Contact.FullName()
	}
	if job.Staff != nil {
		detail.StaffName = job.Staff.FullName()
		detail.StaffFirstName = job.Staff.FirstName
		detail.StaffSurname = job.Staff.Surname
		detail.StaffEmail = job.Staff.Email
		detail.StaffPhone = job.Staff.Phone
	}
	if job.Billing != nil {
		detail.BillingEntityName = job.Billing.Entity
		detail.BillingAddress = job.Billing.Address
		detail.BillingSuburb = job.Billing.Suburb
		detail.BillingState = job.Billing.State
		detail.BillingPostcode = job.Billing.Postcode
	}
	if job.Status != nil {
		detail.JobStatus = job.Status.JobStatus
	}
	if job.StageID != nil {
		for i := range job.StageDates {
			if job.StageDates[i].StageID == *job.StageID {
				detail.StageDueDate = job.StageDates[i].DueDate
				break
			}
		}
	}

	for _, h := range job.History {
		detail.StatusHistory = append(detail.StatusHistory, historyEntry(h))
	}
	for i := range job.Quotes {
		detail.Quotes = append(detail.Quotes, quoteDetail(&job.Quotes[i]))
	}
	return detail
}

func historyEntry(h models.JobStatusHistory) models.StatusHistoryEntry {
	label := h.JobStatusID.String()
	if h.Status != nil {
		label = h.Status.JobStatus
	}
	return models.StatusHistoryEntry{
		HistoryID:   h.JobStatusHistoryID,
		JobStatusID: h.JobStatusID,
		JobStatus:   label,
		Date:        h.Date,
	}
}

func jobDocument(detail models.JobDetail) models.JobDocument {
	doc := models.JobDocument{
		JobID:        detail.JobID,
		Reference:    detail.Reference,
		PO:           detail.PO,
		ClientName:   detail.ClientName,
		ProjectName:  detail.ProjectName,
		ContactName:  detail.ContactName,
		StaffName:    detail.StaffName,
		JobStatus:    detail.JobStatus,
		JobAddress:   detail.JobAddress,
		Suburb:       detail.Suburb,
		QuoteNumbers: make([]string, 0, len(detail.Quotes)),
	}
	if detail.DateCreated != nil {
		doc.DateCreated = detail.DateCreated.String()
	}
	for _, q := range detail.Quotes {
		doc.QuoteNumbers = append(doc.QuoteNumbers, q.QuoteNumber)
	}
	return doc
}
