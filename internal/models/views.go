package models

// Read-side projections assembled by the service layer.

// ProductDetail is a product with its lookups resolved and its variables in display order
type ProductDetail struct {
	Product
	CategoryName    string                   `json:"category_name"`
	MeasureTypeName string                   `json:"measure_type"`
	Variables       []AssignedVariableDetail `json:"variables"`
}

// AssignedVariableDetail is a variable as seen through one product's assignment
type AssignedVariableDetail struct {
	ProductVariableID uint             `json:"product_variable_id"`
	Name              string           `json:"name"`
	DataType          string           `json:"data_type"`
	DisplayOrder      int              `json:"display_order"`
	Options           []VariableOption `json:"options"`
}

// VariableDetail is a variable with its options and the products it is assigned to
type VariableDetail struct {
	ProductVariableID uint             `json:"product_variable_id"`
	Name              string           `json:"name"`
	DataType          string           `json:"data_type"`
	ProductIDs        []uint           `json:"product_ids"`
	Options           []VariableOption `json:"options"`
}

// OptionCost is the pricing contribution of one variable option
type OptionCost struct {
	VariableOptionID uint    `json:"variable_option_id"`
	BaseCost         float64 `json:"base_cost"`
	MultiplierCost   float64 `json:"multiplier_cost"`
}

// StaffDetail is a staff member with a summary of assigned jobs
type StaffDetail struct {
	Staff
	AssignedJobs []StaffJobSummary `json:"assigned_jobs"`
}

// StaffJobSummary identifies one job assigned to a staff member
type StaffJobSummary struct {
	JobID     uint   `json:"job_id"`
	Reference string `json:"reference"`
	JobStatus string `json:"job_status"`
}

// JobDetail is the full job aggregate returned by job reads
type JobDetail struct {
	Job

	ClientName      string    `json:"client_name"`
	ProjectName     string    `json:"project_name"`
	ContactName     string    `json:"contact_name"`
	StaffName       string    `json:"staff_name"`
	StaffFirstName  string    `json:"staff_first_name"`
	StaffSurname    string    `json:"staff_surname"`
	StaffEmail      string    `json:"staff_email"`
	StaffPhone      string    `json:"staff_phone"`
	JobStatus       string    `json:"job_status"`
	StageDueDate    *Date     `json:"stage_due_date"`
	BillingEntities []Billing `json:"billing_entities"`

	BillingEntityName string `json:"billing_entity_name"`
	BillingAddress    string `json:"billing_address"`
	BillingSuburb     string `json:"billing_suburb"`
	BillingState      string `json:"billing_state"`
	BillingPostcode   string `json:"billing_postcode"`

	StatusHistory []StatusHistoryEntry `json:"status_history"`
	Quotes        []QuoteDetail        `json:"quotes"`
	Assets        []Attachment         `json:"assets"`
}

// StatusHistoryEntry is one row of a job's status log with its label resolved
type StatusHistoryEntry struct {
	HistoryID   uint        `json:"history_id"`
	JobStatusID JobStatusID `json:"job_status_id"`
	JobStatus   string      `json:"job_status"`
	Date        Date        `json:"date"`
}

// QuoteDetail is a quote with its items
type QuoteDetail struct {
	Quote
	Items []ItemDetail `json:"items"`
}

// UnknownProductName labels items whose product row is missing
const UnknownProductName = "Unknown Product"

// ItemDetail is an item with its product resolved
type ItemDetail struct {
	Item
	ProductName string   `json:"product_name"`
	Product     *Product `json:"product,omitempty"`
}

// TaskDetail is a throughput task with its status label resolved
type TaskDetail struct {
	ThroughputTask
	StatusLabel string `json:"status"`
}

// JobDocument is the search index representation of a job
type JobDocument struct {
	JobID        uint     `json:"job_id"`
	Reference    string   `json:"reference"`
	PO           string   `json:"po"`
	ClientName   string   `json:"client_name"`
	ProjectName  string   `json:"project_name"`
	ContactName  string   `json:"contact_name"`
	StaffName    string   `json:"staff_name"`
	JobStatus    string   `json:"job_status"`
	JobAddress   string   `json:"job_address"`
	Suburb       string   `json:"suburb"`
	QuoteNumbers []string `json:"quote_numbers"`
	DateCreated  string   `json:"date_created,omitempty"`
}
