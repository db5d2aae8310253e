package service

import (
	"context"

	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/repository"
)

type statusTransition struct {
	from, to models.JobStatusID
}

// transitionEffects holds the side effects of moving a job between two statuses.
// Pairs without an entry only record history.
var transitionEffects = map[statusTransition]func(job *models.Job){
	{from: models.JobStatusWorkOrder, to: models.JobStatusQuote}: func(job *models.Job) {
		job.ApprovedQuote = nil
	},
}

// statusChange describes a committed status move for event publishing
type statusChange struct {
	from, to models.JobStatusID
}

func (c *statusChange) event(jobID uint) messaging.Event {
	return messaging.NewEvent(messaging.EventJobStatusChanged, "job", jobID, map[string]interface{}{
		"from": uint(c.from),
		"to":   uint(c.to),
	})
}

// changeStatus moves the job to status and appends a history row dated on.
// It returns nil when the status is unchanged. The caller saves the job.
func changeStatus(ctx context.Context, tx repository.Repository, job *models.Job, to models.JobStatusID, on models.Date) (*statusChange, error) {
	if _, err := tx.FindJobStatusByID(ctx, to); err != nil {
		return nil, orNotFound(err, "Job status", uint(to))
	}
	if job.JobStatusID == to {
		return nil, nil
	}

	change := &statusChange{from: job.JobStatusID, to: to}
	if effect, ok := transitionEffects[statusTransition{from: change.from, to: change.to}]; ok {
		effect(job)
	}
	job.JobStatusID = to

	entry := &models.JobStatusHistory{JobID: job.JobID, JobStatusID: to, Date: on}
	if err := tx.AppendStatusHistory(ctx, entry); err != nil {
		return nil, err
	}
	return change, nil
}

// approveQuote records the approved quote and moves the job into production
func approveQuote(ctx context.Context, tx repository.Repository, job *models.Job, quoteID uint, on models.Date) (*statusChange, error) {
	quote, err := tx.FindQuoteByID(ctx, quoteID)
	if err != nil {
		return nil, orNotFound(err, "Quote", quoteID)
	}
	if quote.JobID != job.JobID {
		return nil, conflictf("Quote %d belongs to job %d, not job %d", quoteID, quote.JobID, job.JobID)
	}
	if _, err := tx.FindStageByID(ctx, models.StagePreProduction); err != nil {
		return nil, orNotFound(err, "Stage", uint(models.StagePreProduction))
	}

	change, err := changeStatus(ctx, tx, job, models.JobStatusWorkOrder, on)
	if err != nil {
		return nil, err
	}
	job.ApprovedQuote = &quoteID
	stage := models.StagePreProduction
	job.StageID = &stage
	return change, nil
}
