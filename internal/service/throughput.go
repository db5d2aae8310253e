package service

import (
	"context"

	"example.com/outcry/internal/cache"
	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/utils"
)

// unknownTaskStatus labels tasks whose status row is missing
const unknownTaskStatus = "Unknown"

// Stages

func (s *service) ListStages(ctx context.Context) ([]*models.ThroughputStage, error) {
	return cached(ctx, s, cache.StageListKey, func() ([]*models.ThroughputStage, error) {
		return s.repo.ListStages(ctx)
	})
}

func (s *service) CreateStage(ctx context.Context, in StageInput) (*models.ThroughputStage, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}
	stage := &models.ThroughputStage{Stage: in.Stage, StageOrder: in.StageOrder}
	if err := s.repo.CreateStage(ctx, stage); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.StageListKey)
	return stage, nil
}

func (s *service) UpdateStage(ctx context.Context, id models.StageID, in StageInput) (*models.ThroughputStage, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var stage *models.ThroughputStage
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if stage, err = tx.FindStageByID(ctx, id); err != nil {
			return orNotFound(err, "Stage", uint(id))
		}
		stage.Stage = in.Stage
		stage.StageOrder = in.StageOrder
		return tx.UpdateStage(ctx, stage)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.StageListKey)
	return stage, nil
}

// DeleteStage refuses to remove a stage that tasks, jobs or due dates still use
func (s *service) DeleteStage(ctx context.Context, id models.StageID) error {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindStageByID(ctx, id); err != nil {
			return orNotFound(err, "Stage", uint(id))
		}
		n, err := tx.CountStageUsage(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete stage. It is used by %d task(s), job(s) or due date(s).", n)
		}
		return tx.DeleteStage(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.StageListKey)
	return nil
}

func (s *service) ListTaskStatuses(ctx context.Context) ([]*models.ThroughputStatus, error) {
	return s.repo.ListTaskStatuses(ctx)
}

// Tasks

func (s *service) ListTasks(ctx context.Context, jobID uint, stageID *models.StageID) ([]models.TaskDetail, error) {
	if _, err := s.repo.FindJobByID(ctx, jobID); err != nil {
		return nil, orNotFound(err, "Job", jobID)
	}
	tasks, err := s.repo.ListTasks(ctx, jobID, stageID)
	if err != nil {
		return nil, err
	}
	details := make([]models.TaskDetail, 0, len(tasks))
	for _, task := range tasks {
		details = append(details, taskDetail(task))
	}
	return details, nil
}

// CreateTask appends the task to the end of its job and stage
func (s *service) CreateTask(ctx context.Context, in TaskInput) (*models.TaskDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	task := &models.ThroughputTask{
		TaskName:  in.TaskName,
		JobNumber: in.JobID,
		ItemID:    in.ItemID,
		StageID:   in.StageID,
		StatusID:  models.TaskStatusIncomplete,
	}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindJobByID(ctx, in.JobID); err != nil {
			return orNotFound(err, "Job", in.JobID)
		}
		if _, err := tx.FindStageByID(ctx, in.StageID); err != nil {
			return orNotFound(err, "Stage", uint(in.StageID))
		}
		if in.ItemID != nil {
			if err := checkItemForJob(ctx, tx, *in.ItemID, in.JobID); err != nil {
				return err
			}
		}

		highest, err := tx.MaxTaskOrder(ctx, in.JobID, in.StageID)
		if err != nil {
			return err
		}
		task.TaskOrder = highest + 1
		return tx.CreateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return s.getTask(ctx, task.TaskID)
}

func checkItemForJob(ctx context.Context, tx repository.Repository, itemID, jobID uint) error {
	item, err := tx.FindItemByID(ctx, itemID)
	if err != nil {
		return orNotFound(err, "Item", itemID)
	}
	quote, err := tx.FindQuoteByID(ctx, item.QuoteID)
	if err != nil {
		return orNotFound(err, "Quote", item.QuoteID)
	}
	if quote.JobID != jobID {
		return conflictf("Item %d belongs to job %d, not job %d", itemID, quote.JobID, jobID)
	}
	return nil
}

// UpdateTask renames, reorders or moves a task. A task moved to another stage
// without an explicit order goes to the end of that stage.
func (s *service) UpdateTask(ctx context.Context, id uint, in TaskUpdateInput) (*models.TaskDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		task, err := tx.FindTaskByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Task", id)
		}
		if in.TaskName != nil {
			task.TaskName = *in.TaskName
		}
		if in.StageID != nil && *in.StageID != task.StageID {
			if _, err := tx.FindStageByID(ctx, *in.StageID); err != nil {
				return orNotFound(err, "Stage", uint(*in.StageID))
			}
			task.StageID = *in.StageID
			if in.TaskOrder == nil {
				highest, err := tx.MaxTaskOrder(ctx, task.JobNumber, task.StageID)
				if err != nil {
					return err
				}
				task.TaskOrder = highest + 1
			}
		}
		if in.TaskOrder != nil {
			task.TaskOrder = *in.TaskOrder
		}
		return tx.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return s.getTask(ctx, id)
}

// SetTaskCompletion marks a task complete with the current time, or reopens it
func (s *service) SetTaskCompletion(ctx context.Context, id uint, completed bool) (*models.TaskDetail, error) {
	var task *models.ThroughputTask
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if task, err = tx.FindTaskByID(ctx, id); err != nil {
			return orNotFound(err, "Task", id)
		}
		if completed {
			now := s.now().UTC()
			task.StatusID = models.TaskStatusComplete
			task.TimeCompleted = &now
		} else {
			task.StatusID = models.TaskStatusIncomplete
			task.TimeCompleted = nil
		}
		return tx.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.publish(ctx, messaging.NewEvent(messaging.EventTaskCompleted, "task", id, map[string]interface{}{
			"job_id":   task.JobNumber,
			"stage_id": uint(task.StageID),
		}))
	}
	return s.getTask(ctx, id)
}

func (s *service) DeleteTask(ctx context.Context, id uint) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return orNotFound(err, "Task", id)
	}
	return nil
}

func (s *service) getTask(ctx context.Context, id uint) (*models.TaskDetail, error) {
	task, err := s.repo.FindTaskByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Task", id)
	}
	detail := taskDetail(task)
	return &detail, nil
}

func taskDetail(task *models.ThroughputTask) models.TaskDetail {
	label := unknownTaskStatus
	if task.Status != nil {
		label = task.Status.Status
	}
	return models.TaskDetail{ThroughputTask: *task, StatusLabel: label}
}
