package repository

import (
	"context"

	"example.com/outcry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stage operations implementation

func (r *repo) ListStages(ctx context.Context) ([]*models.ThroughputStage, error) {
	return findAll[models.ThroughputStage](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Order("stage_order").Order("stage_id")
	})
}

func (r *repo) FindStageByID(ctx context.Context, id models.StageID) (*models.ThroughputStage, error) {
	return findOne[models.ThroughputStage](ctx, r, nil, "stage_id = ?", uint(id))
}

func (r *repo) CreateStage(ctx context.Context, stage *models.ThroughputStage) error {
	return r.create(ctx, stage)
}

func (r *repo) UpdateStage(ctx context.Context, stage *models.ThroughputStage) error {
	return r.save(ctx, stage)
}

func (r *repo) DeleteStage(ctx context.Context, id models.StageID) error {
	return r.deleteWhere(ctx, &models.ThroughputStage{}, "stage_id = ?", uint(id))
}

// CountStageUsage counts tasks, jobs and due dates that reference the stage
func (r *repo) CountStageUsage(ctx context.Context, id models.StageID) (int64, error) {
	var total int64
	for _, model := range []interface{}{&models.ThroughputTask{}, &models.Job{}, &models.ThroughputStageDate{}} {
		n, err := r.count(ctx, model, "stage_id = ?", uint(id))
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Task status operations implementation

func (r *repo) ListTaskStatuses(ctx context.Context) ([]*models.ThroughputStatus, error) {
	return findAll[models.ThroughputStatus](ctx, r, orderBy("status_id"))
}

// Task operations implementation

func (r *repo) ListTasks(ctx context.Context, jobID uint, stageID *models.StageID) ([]*models.ThroughputTask, error) {
	return findAll[models.ThroughputTask](ctx, r, func(db *gorm.DB) *gorm.DB {
		db = db.Preload("Status").Where("job_number = ?", jobID)
		if stageID != nil {
			db = db.Where("stage_id = ?", uint(*stageID))
		}
		return db.Order("stage_id").Order("task_order").Order("task_id")
	})
}

func (r *repo) FindTaskByID(ctx context.Context, id uint) (*models.ThroughputTask, error) {
	return findOne[models.ThroughputTask](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Status")
	}, "task_id = ?", id)
}

func (r *repo) CreateTask(ctx context.Context, task *models.ThroughputTask) error {
	return r.create(ctx, task)
}

func (r *repo) UpdateTask(ctx context.Context, task *models.ThroughputTask) error {
	return r.save(ctx, task)
}

func (r *repo) DeleteTask(ctx context.Context, id uint) error {
	return r.deleteWhere(ctx, &models.ThroughputTask{}, "task_id = ?", id)
}

// MaxTaskOrder returns the highest task order within the job and stage, or 0
func (r *repo) MaxTaskOrder(ctx context.Context, jobID uint, stageID models.StageID) (int, error) {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var highest int
	err = gormDB.Model(&models.ThroughputTask{}).
		Where("job_number = ? AND stage_id = ?", jobID, uint(stageID)).
		Select("COALESCE(MAX(task_order), 0)").
		Scan(&highest).Error
	return highest, translate(err, nil)
}

// Stage date operations implementation

// UpsertStageDate inserts the due date or replaces the existing one for the same job and stage
func (r *repo) UpsertStageDate(ctx context.Context, stageDate *models.ThroughputStageDate) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	err = gormDB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}, {Name: "stage_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"due_date"}),
	}).Create(stageDate).Error
	if err != nil {
		return translate(err, ErrCreateFailed)
	}

	// the conflict path leaves the primary key unset on some drivers
	stored, err := r.FindStageDate(ctx, stageDate.JobID, stageDate.StageID)
	if err != nil {
		return err
	}
	*stageDate = *stored
	return nil
}

func (r *repo) FindStageDate(ctx context.Context, jobID uint, stageID models.StageID) (*models.ThroughputStageDate, error) {
	return findOne[models.ThroughputStageDate](ctx, r, nil, "job_id = ? AND stage_id = ?", jobID, uint(stageID))
}

func (r *repo) ListStageDates(ctx context.Context, jobID uint) ([]*models.ThroughputStageDate, error) {
	return findAll[models.ThroughputStageDate](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Where("job_id = ?", jobID).Order("stage_id")
	})
}

func (r *repo) ListStageDatesDueBefore(ctx context.Context, date models.Date) ([]*models.ThroughputStageDate, error) {
	return findAll[models.ThroughputStageDate](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Where("due_date IS NOT NULL AND due_date < ?", date).Order("due_date").Order("job_id")
	})
}
