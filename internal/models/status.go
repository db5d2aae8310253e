package models

// JobStatusID identifies a row in the job status lookup
type JobStatusID uint

const (
	// JobStatusQuote is a job still being priced
	JobStatusQuote JobStatusID = 1
	// JobStatusWorkOrder is a job with an approved quote
	JobStatusWorkOrder JobStatusID = 2
	JobStatusCompleted JobStatusID = 3
	JobStatusCancelled JobStatusID = 4
	JobStatusOnHold    JobStatusID = 5
)

var jobStatusLabels = map[JobStatusID]string{
	JobStatusQuote:     "Quote",
	JobStatusWorkOrder: "Work Order",
	JobStatusCompleted: "Completed",
	JobStatusCancelled: "Cancelled",
	JobStatusOnHold:    "On Hold",
}

func (s JobStatusID) String() string {
	if label, ok := jobStatusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// StageID identifies a throughput stage
type StageID uint

const (
	StagePreProduction StageID = 1
	StageProduction    StageID = 2
	StageDispatch      StageID = 3
)

// TaskStatusID identifies a throughput task completion state
type TaskStatusID uint

const (
	TaskStatusIncomplete TaskStatusID = 1
	TaskStatusComplete   TaskStatusID = 2
)

// MeasureKind selects the pricing formula for a product
type MeasureKind uint

const (
	MeasureArea     MeasureKind = 1
	MeasureLinear   MeasureKind = 2
	MeasureQuantity MeasureKind = 3
)

// DefaultJobStatuses seeds the job status lookup
func DefaultJobStatuses() []JobStatus {
	ids := []JobStatusID{JobStatusQuote, JobStatusWorkOrder, JobStatusCompleted, JobStatusCancelled, JobStatusOnHold}
	rows := make([]JobStatus, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, JobStatus{JobStatusID: id, JobStatus: id.String()})
	}
	return rows
}

// DefaultStages seeds the throughput stage lookup
func DefaultStages() []ThroughputStage {
	return []ThroughputStage{
		{StageID: StagePreProduction, Stage: "Pre-Production", StageOrder: 1},
		{StageID: StageProduction, Stage: "Production", StageOrder: 2},
		{StageID: StageDispatch, Stage: "Dispatch", StageOrder: 3},
	}
}

// DefaultTaskStatuses seeds the throughput status lookup
func DefaultTaskStatuses() []ThroughputStatus {
	return []ThroughputStatus{
		{StatusID: TaskStatusIncomplete, Status: "Not Completed"},
		{StatusID: TaskStatusComplete, Status: "Completed"},
	}
}

// DefaultMeasureTypes seeds the measure type lookup
func DefaultMeasureTypes() []MeasureType {
	return []MeasureType{
		{MeasureTypeID: uint(MeasureArea), MeasureType: "Area"},
		{MeasureTypeID: uint(MeasureLinear), MeasureType: "Linear"},
		{MeasureTypeID: uint(MeasureQuantity), MeasureType: "Quantity"},
	}
}
