package models

import "time"

// ThroughputStage is an ordered step of the production pipeline
type ThroughputStage struct {
	StageID    StageID `json:"stage_id" gorm:"primaryKey;Column:stage_id"`
	Stage      string  `json:"stage" gorm:"Column:stage;not null"`
	StageOrder int     `json:"stage_order" gorm:"Column:stage_order;not null;default:0"`
}

func (ThroughputStage) TableName() string { return "throughput_stages" }

// ThroughputStatus is a task completion state
type ThroughputStatus struct {
	StatusID TaskStatusID `json:"status_id" gorm:"primaryKey;Column:status_id"`
	Status   string       `json:"status" gorm:"Column:status;not null"`
}

func (ThroughputStatus) TableName() string { return "throughput_statuses" }

// ThroughputTask is a unit of trackable work within a job and stage
type ThroughputTask struct {
	TaskID        uint         `json:"task_id" gorm:"primaryKey;Column:task_id"`
	TaskName      string       `json:"task_name" gorm:"Column:task_name;not null"`
	JobNumber     uint         `json:"job_number" gorm:"Column:job_number;index:idx_task_job_stage"`
	ItemID        *uint        `json:"item_id" gorm:"Column:item_id"`
	StageID       StageID      `json:"stage_id" gorm:"Column:stage_id;index:idx_task_job_stage"`
	StatusID      TaskStatusID `json:"status_id" gorm:"Column:status_id"`
	TaskOrder     int          `json:"task_order" gorm:"Column:task_order"`
	TimeCompleted *time.Time   `json:"time_completed" gorm:"Column:time_completed"`

	Status *ThroughputStatus `json:"-" gorm:"foreignKey:StatusID;references:StatusID"`
}

func (ThroughputTask) TableName() string { return "throughput_tasks" }

// Completed reports whether the task is in the completed state
func (t ThroughputTask) Completed() bool {
	return t.StatusID == TaskStatusComplete
}

// ThroughputStageDate is the due date of one stage of one job
type ThroughputStageDate struct {
	StageDateID uint    `json:"stage_date_id" gorm:"primaryKey;Column:stage_date_id"`
	JobID       uint    `json:"job_id" gorm:"Column:job_id;uniqueIndex:idx_stage_date_job_stage"`
	StageID     StageID `json:"stage_id" gorm:"Column:stage_id;uniqueIndex:idx_stage_date_job_stage"`
	DueDate     *Date   `json:"due_date" gorm:"Column:due_date"`
}

func (ThroughputStageDate) TableName() string { return "throughput_stage_dates" }
