package service

import (
	"context"
	"testing"
	"time"

	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateJobRecordsInitialHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)

	in := f.jobInput()
	in.DateCreated = mustDate(t, "2024-03-01")
	job, err := env.svc.CreateJob(ctx, in, nil)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusQuote, job.JobStatusID)
	assert.Equal(t, "Quote", job.JobStatus)
	require.Len(t, job.StatusHistory, 1)
	assert.Equal(t, "2024-03-01", job.StatusHistory[0].Date.String())
	assert.Equal(t, "Quote", job.StatusHistory[0].JobStatus)

	undated := createJob(t, env, f)
	require.Len(t, undated.StatusHistory, 1)
	assert.Equal(t, models.Today().String(), undated.StatusHistory[0].Date.String())
	require.NotNil(t, undated.DateCreated)
	assert.Equal(t, models.Today().String(), undated.DateCreated.String())

	assert.Contains(t, env.publishedTypes(), messaging.EventJobCreated)
}

func TestCreateJobChecksReferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)

	in := f.jobInput()
	in.StaffID = 404
	_, err := env.svc.CreateJob(ctx, in, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	in = f.jobInput()
	unknown := models.JobStatusID(99)
	in.JobStatusID = &unknown
	_, err = env.svc.CreateJob(ctx, in, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	in = f.jobInput()
	in.ContactID = 0
	_, err = env.svc.CreateJob(ctx, in, nil)
	assert.ErrorIs(t, err, ErrValidation)

	jobs, err := env.svc.ListJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestStatusHistoryGrowsOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))

	updated, err := env.svc.UpdateJobStatus(ctx, job.JobID, models.JobStatusWorkOrder)
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, 2)

	updated, err = env.svc.UpdateJobStatus(ctx, job.JobID, models.JobStatusWorkOrder)
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, 2)

	updated, err = env.svc.UpdateJobStatus(ctx, job.JobID, models.JobStatusCompleted)
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, 3)
	assert.Equal(t, "Completed", updated.JobStatus)

	history, err := env.svc.ListStatusHistory(ctx, job.JobID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.Today().String(), history[2].Date.String())

	_, err = env.svc.UpdateJobStatus(ctx, job.JobID, models.JobStatusID(99))
	assert.ErrorIs(t, err, ErrNotFound)

	changes := 0
	for _, event := range env.published() {
		if event.Type == messaging.EventJobStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 2, changes)
}

func TestUpdateJobRecordsStatusChange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	job := createJob(t, env, f)

	status := models.JobStatusOnHold
	updated, err := env.svc.UpdateJob(ctx, job.JobID, JobUpdateInput{
		Reference:   stringPtr("Window decals v2"),
		JobStatusID: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "Window decals v2", updated.Reference)
	assert.Equal(t, "On Hold", updated.JobStatus)
	assert.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, job.DateCreated.String(), updated.DateCreated.String())
}

func TestUpdateJobKeepsFieldsNotSent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	billing, err := env.svc.CreateBilling(ctx, BillingInput{Entity: "Acme Pty Ltd", ClientID: f.client.ClientID})
	require.NoError(t, err)

	in := f.jobInput()
	in.PO = "PO-77"
	in.JobAddress = "1 George St"
	in.Suburb = "Sydney"
	in.State = "NSW"
	in.Postcode = "2000"
	in.BillingEntity = &billing.BillingID
	job, err := env.svc.CreateJob(ctx, in, nil)
	require.NoError(t, err)

	// the edit form sends only these fields
	status := models.JobStatusQuote
	updated, err := env.svc.UpdateJob(ctx, job.JobID, JobUpdateInput{
		Reference:   stringPtr("Window decals v2"),
		ClientID:    &f.client.ClientID,
		ProjectID:   &f.project.ProjectID,
		ContactID:   &f.contact.ContactID,
		StaffID:     &f.staff.StaffID,
		JobStatusID: &status,
		DateCreated: mustDate(t, "2024-04-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Window decals v2", updated.Reference)
	assert.Equal(t, "2024-04-01", updated.DateCreated.String())
	assert.Equal(t, "PO-77", updated.PO)
	assert.Equal(t, "1 George St", updated.JobAddress)
	assert.Equal(t, "Sydney", updated.Suburb)
	assert.Equal(t, "NSW", updated.State)
	assert.Equal(t, "2000", updated.Postcode)
	require.NotNil(t, updated.BillingEntity)
	assert.Equal(t, billing.BillingID, *updated.BillingEntity)
	assert.Len(t, updated.StatusHistory, 1)

	// moving to another client must not keep the old client's billing entity
	other, err := env.svc.CreateClient(ctx, ClientInput{Name: "Other Co"})
	require.NoError(t, err)
	_, err = env.svc.UpdateJob(ctx, job.JobID, JobUpdateInput{ClientID: &other.ClientID})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.svc.UpdateJob(ctx, job.JobID, JobUpdateInput{StaffID: uintPtr(404)})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.UpdateJob(ctx, job.JobID, JobUpdateInput{Postcode: stringPtr("12")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApproveQuote(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)

	approved, err := env.svc.ApproveQuote(ctx, job.JobID, &quote.QuoteID)
	require.NoError(t, err)
	require.NotNil(t, approved.ApprovedQuote)
	assert.Equal(t, quote.QuoteID, *approved.ApprovedQuote)
	assert.Equal(t, models.JobStatusWorkOrder, approved.JobStatusID)
	require.NotNil(t, approved.StageID)
	assert.Equal(t, models.StagePreProduction, *approved.StageID)
	assert.Len(t, approved.StatusHistory, 2)

	types := env.publishedTypes()
	assert.Contains(t, types, messaging.EventJobQuoteApproved)
	assert.Contains(t, types, messaging.EventJobStatusChanged)

	cleared, err := env.svc.ApproveQuote(ctx, job.JobID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.ApprovedQuote)
	assert.Equal(t, models.JobStatusWorkOrder, cleared.JobStatusID)
	assert.Len(t, cleared.StatusHistory, 2)
}

func TestApproveQuoteRejectsForeignQuote(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	job := createJob(t, env, f)
	other := createJob(t, env, f)

	foreign, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: other.JobID})
	require.NoError(t, err)

	_, err = env.svc.ApproveQuote(ctx, job.JobID, &foreign.QuoteID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.svc.ApproveQuote(ctx, job.JobID, uintPtr(404))
	assert.ErrorIs(t, err, ErrNotFound)

	unchanged, err := env.svc.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.ApprovedQuote)
	assert.Equal(t, models.JobStatusQuote, unchanged.JobStatusID)
	assert.Len(t, unchanged.StatusHistory, 1)
}

func TestWorkOrderBackToQuoteClearsApproval(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)
	_, err = env.svc.ApproveQuote(ctx, job.JobID, &quote.QuoteID)
	require.NoError(t, err)

	reverted, err := env.svc.UpdateJobStatus(ctx, job.JobID, models.JobStatusQuote)
	require.NoError(t, err)
	assert.Nil(t, reverted.ApprovedQuote)
	assert.Len(t, reverted.StatusHistory, 3)
}

func TestCompletedWorkOrderKeepsApproval(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)
	_, err = env.svc.ApproveQuote(ctx, job.JobID, &quote.QuoteID)
	require.NoError(t, err)

	completed, err := env.svc.UpdateJobStatus(ctx, job.JobID, models.JobStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.ApprovedQuote)
	assert.Equal(t, quote.QuoteID, *completed.ApprovedQuote)
}

func TestSetJobStage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))

	missing := models.StageID(99)
	_, err := env.svc.SetJobStage(ctx, job.JobID, &missing)
	assert.ErrorIs(t, err, ErrNotFound)

	production := models.StageProduction
	staged, err := env.svc.SetJobStage(ctx, job.JobID, &production)
	require.NoError(t, err)
	require.NotNil(t, staged.StageID)
	assert.Equal(t, models.StageProduction, *staged.StageID)

	cleared, err := env.svc.SetJobStage(ctx, job.JobID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.StageID)
}

func TestSetStageDueDateUpsertsInPlace(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))

	first, err := env.svc.SetStageDueDate(ctx, job.JobID, StageDueDateInput{StageID: models.StageProduction, DueDate: mustDate(t, "2024-05-01")})
	require.NoError(t, err)
	second, err := env.svc.SetStageDueDate(ctx, job.JobID, StageDueDateInput{StageID: models.StageProduction, DueDate: mustDate(t, "2024-06-01")})
	require.NoError(t, err)
	assert.Equal(t, first.StageDateID, second.StageDateID)

	dates, err := env.svc.ListStageDates(ctx, job.JobID)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "2024-06-01", dates[0].DueDate.String())

	production := models.StageProduction
	staged, err := env.svc.SetJobStage(ctx, job.JobID, &production)
	require.NoError(t, err)
	require.NotNil(t, staged.StageDueDate)
	assert.Equal(t, "2024-06-01", staged.StageDueDate.String())

	_, err = env.svc.SetStageDueDate(ctx, job.JobID, StageDueDateInput{StageID: 99})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.SetStageDueDate(ctx, 404, StageDueDateInput{StageID: models.StageProduction})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateJobBilling(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	job := createJob(t, env, f)

	own, err := env.svc.CreateBilling(ctx, BillingInput{Entity: "Acme Pty Ltd", Address: "1 George St", ClientID: f.client.ClientID})
	require.NoError(t, err)
	stranger, err := env.svc.CreateClient(ctx, ClientInput{Name: "Other"})
	require.NoError(t, err)
	foreign, err := env.svc.CreateBilling(ctx, BillingInput{Entity: "Other Pty Ltd", ClientID: stranger.ClientID})
	require.NoError(t, err)

	_, err = env.svc.UpdateJobBilling(ctx, job.JobID, &foreign.BillingID)
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := env.svc.UpdateJobBilling(ctx, job.JobID, &own.BillingID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Pty Ltd", updated.BillingEntityName)
	assert.Equal(t, "1 George St", updated.BillingAddress)
	assert.Len(t, updated.BillingEntities, 1)

	cleared, err := env.svc.UpdateJobBilling(ctx, job.JobID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.BillingEntity)
	assert.Empty(t, cleared.BillingEntityName)
}

func TestUpdateJobAddressChangesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)

	in := f.jobInput()
	in.JobAddress = "1 George St"
	in.State = "NSW"
	job, err := env.svc.CreateJob(ctx, in, nil)
	require.NoError(t, err)

	suburb := "Sydney"
	updated, err := env.svc.UpdateJobAddress(ctx, job.JobID, JobAddressInput{Suburb: &suburb})
	require.NoError(t, err)
	assert.Equal(t, "1 George St", updated.JobAddress)
	assert.Equal(t, "Sydney", updated.Suburb)
	assert.Equal(t, "NSW", updated.State)

	bad := "12"
	_, err = env.svc.UpdateJobAddress(ctx, job.JobID, JobAddressInput{Postcode: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJobDetailResolvesNames(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))

	assert.Equal(t, "Acme Signs", job.ClientName)
	assert.Equal(t, "Shopfront", job.ProjectName)
	assert.Equal(t, "Jo Bloggs", job.ContactName)
	assert.Equal(t, "Sam Lee", job.StaffName)
	assert.Equal(t, "sam@example.com", job.StaffEmail)
	assert.NotNil(t, job.Quotes)
	assert.NotNil(t, job.Assets)
	assert.NotNil(t, job.BillingEntities)
	assert.Nil(t, job.StageDueDate)

	_, err := env.svc.GetJob(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteJob(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	job := createJob(t, env, f)

	_, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)
	_, err = env.svc.CreateTask(ctx, TaskInput{TaskName: "Print", JobID: job.JobID, StageID: models.StagePreProduction})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteJob(ctx, job.JobID))
	assert.ErrorIs(t, env.svc.DeleteJob(ctx, job.JobID), ErrNotFound)

	quotes, err := env.svc.ListQuotes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.Contains(t, env.publishedTypes(), messaging.EventJobDeleted)

	// the staff member is free to go once the job is gone
	require.NoError(t, env.svc.DeleteStaff(ctx, f.staff.StaffID))
}

func TestCreateJobStoresAttachments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)

	store := new(MockObjectStore)
	store.On("Enabled").Return(true)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(ns storage.Namespace) bool {
		return ns.EntityType == "job"
	}), mock.Anything).Return([]storage.StoredObject{
		{FileName: "proof.pdf", StoragePath: "outcry/job/1/proof.pdf", SharedURL: "https://files.example.com/proof.pdf"},
	}, nil)
	env.svc.store = store

	files := []storage.File{
		{Name: "proof.pdf", Content: []byte("%PDF")},
		{Name: "script.exe", Content: []byte("MZ")},
	}
	job, err := env.svc.CreateJob(ctx, f.jobInput(), files)
	require.NoError(t, err)
	require.Len(t, job.Assets, 1)
	assert.Equal(t, "proof.pdf", job.Assets[0].FileName)
	require.NotNil(t, job.Assets[0].JobID)
	assert.Equal(t, job.JobID, *job.Assets[0].JobID)

	// the disallowed file never reaches the store
	store.AssertCalled(t, "Upload", mock.Anything, storage.Namespace{EntityType: "job", EntityID: job.JobID}, files[:1])
	store.AssertExpectations(t)
}

func TestJobsAreIndexedOnMutation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)

	searcher := new(MockSearcher)
	searcher.On("Enabled").Return(true)
	searcher.On("IndexJob", mock.Anything, mock.Anything).Return(nil)
	searcher.On("DeleteJob", mock.Anything, mock.Anything).Return(nil)
	env.svc.search = searcher

	job := createJob(t, env, f)
	_, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)

	searcher.AssertCalled(t, "IndexJob", mock.Anything, mock.MatchedBy(func(doc models.JobDocument) bool {
		return doc.JobID == job.JobID &&
			doc.ClientName == "Acme Signs" &&
			len(doc.QuoteNumbers) == 1
	}))

	indexed, err := env.svc.ReindexJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, indexed)

	require.NoError(t, env.svc.DeleteJob(ctx, job.JobID))
	searcher.AssertCalled(t, "DeleteJob", mock.Anything, job.JobID)
}

func TestSearchJobs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.SearchJobs(ctx, "decals", 10)
	assert.ErrorIs(t, err, ErrSearchDisabled)
	_, err = env.svc.ReindexJobs(ctx)
	assert.ErrorIs(t, err, ErrSearchDisabled)

	searcher := new(MockSearcher)
	searcher.On("Enabled").Return(true)
	searcher.On("SearchJobs", mock.Anything, "decals", 10).Return([]models.JobDocument{{JobID: 3, Reference: "Window decals"}}, nil)
	env.svc.search = searcher

	_, err = env.svc.SearchJobs(ctx, "  ", 10)
	assert.ErrorIs(t, err, ErrValidation)

	docs, err := env.svc.SearchJobs(ctx, " decals ", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint(3), docs[0].JobID)
}

func TestNotifyOverdueStages(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	env.svc.now = func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) }

	late := createJob(t, env, f)
	moved := createJob(t, env, f)
	production := models.StageProduction
	for _, job := range []*models.JobDetail{late, moved} {
		_, err := env.svc.SetJobStage(ctx, job.JobID, &production)
		require.NoError(t, err)
	}

	// late is overdue in its current stage
	_, err := env.svc.SetStageDueDate(ctx, late.JobID, StageDueDateInput{StageID: models.StageProduction, DueDate: mustDate(t, "2024-06-09")})
	require.NoError(t, err)
	// moved only missed a stage it already left
	_, err = env.svc.SetStageDueDate(ctx, moved.JobID, StageDueDateInput{StageID: models.StagePreProduction, DueDate: mustDate(t, "2024-06-01")})
	require.NoError(t, err)
	// due today is not overdue
	_, err = env.svc.SetStageDueDate(ctx, moved.JobID, StageDueDateInput{StageID: models.StageProduction, DueDate: mustDate(t, "2024-06-10")})
	require.NoError(t, err)

	n, err := env.svc.NotifyOverdueStages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var overdue []messaging.Event
	for _, event := range env.published() {
		if event.Type == messaging.EventStageOverdue {
			overdue = append(overdue, event)
		}
	}
	require.Len(t, overdue, 1)
	assert.Equal(t, late.JobID, overdue[0].EntityID)
	assert.Equal(t, "2024-06-09", overdue[0].Data["due_date"])
}
