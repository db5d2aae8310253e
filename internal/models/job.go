package models

// Project groups jobs at one site
type Project struct {
	ProjectID   uint   `json:"project_id" gorm:"primaryKey;Column:project_id"`
	Name        string `json:"name" gorm:"Column:name;not null"`
	Address     string `json:"address" gorm:"Column:address"`
	Suburb      string `json:"suburb" gorm:"Column:suburb"`
	State       string `json:"state" gorm:"Column:state"`
	Postcode    string `json:"postcode" gorm:"Column:postcode"`
	DateCreated Date   `json:"date_created" gorm:"Column:date_created"`
}

func (Project) TableName() string { return "projects" }

// JobStatus is a row of the job status lookup
type JobStatus struct {
	JobStatusID JobStatusID `json:"job_status_id" gorm:"primaryKey;Column:job_status_id"`
	JobStatus   string      `json:"job_status" gorm:"Column:job_status;not null"`
}

func (JobStatus) TableName() string { return "job_statuses" }

// Job is a unit of work for a client and the root of the quote aggregate
type Job struct {
	JobID         uint        `json:"job_id" gorm:"primaryKey;Column:job_id"`
	Reference     string      `json:"reference" gorm:"Column:reference"`
	ProjectID     uint        `json:"project_id" gorm:"Column:project_id;index"`
	ClientID      uint        `json:"client_id" gorm:"Column:client_id;index"`
	ContactID     uint        `json:"contact_id" gorm:"Column:contact_id;index"`
	StaffID       uint        `json:"staff_id" gorm:"Column:staff_id;index"`
	BillingEntity *uint       `json:"billing_entity" gorm:"Column:billing_entity;index"`
	PO            string      `json:"po" gorm:"Column:po"`
	DateCreated   *Date       `json:"date_created" gorm:"Column:date_created"`
	JobStatusID   JobStatusID `json:"job_status_id" gorm:"Column:job_status_id;not null"`
	JobAddress    string      `json:"job_address" gorm:"Column:job_address"`
	Suburb        string      `json:"suburb" gorm:"Column:suburb"`
	State         string      `json:"state" gorm:"Column:state"`
	Postcode      string      `json:"postcode" gorm:"Column:postcode"`
	ApprovedQuote *uint       `json:"approved_quote" gorm:"Column:approved_quote"`
	StageID       *StageID    `json:"stage_id" gorm:"Column:stage_id"`
	QuoteSeq      uint        `json:"-" gorm:"Column:quote_seq;not null;default:0"`

	Client      *Client               `json:"-" gorm:"foreignKey:ClientID;references:ClientID"`
	Project     *Project              `json:"-" gorm:"foreignKey:ProjectID;references:ProjectID"`
	Contact     *Contact              `json:"-" gorm:"foreignKey:ContactID;references:ContactID"`
	Staff       *Staff                `json:"-" gorm:"foreignKey:StaffID;references:StaffID"`
	Billing     *Billing              `json:"-" gorm:"foreignKey:BillingEntity;references:BillingID"`
	Status      *JobStatus            `json:"-" gorm:"foreignKey:JobStatusID;references:JobStatusID"`
	History     []JobStatusHistory    `json:"-" gorm:"foreignKey:JobID;references:JobID"`
	Quotes      []Quote               `json:"-" gorm:"foreignKey:JobID;references:JobID"`
	StageDates  []ThroughputStageDate `json:"-" gorm:"foreignKey:JobID;references:JobID"`
	Attachments []Attachment          `json:"-" gorm:"foreignKey:JobID;references:JobID"`
}

func (Job) TableName() string { return "jobs" }

// JobStatusHistory is one append-only entry of a job's status log
type JobStatusHistory struct {
	JobStatusHistoryID uint        `json:"job_status_history_id" gorm:"primaryKey;Column:job_status_history_id"`
	JobID              uint        `json:"job_id" gorm:"Column:job_id;index"`
	JobStatusID        JobStatusID `json:"job_status_id" gorm:"Column:job_status_id"`
	Date               Date        `json:"date" gorm:"Column:date"`

	Status *JobStatus `json:"-" gorm:"foreignKey:JobStatusID;references:JobStatusID"`
}

func (JobStatusHistory) TableName() string { return "job_status_history" }

// Quote is a priced proposal under a job
type Quote struct {
	QuoteID     uint     `json:"quote_id" gorm:"primaryKey;Column:quote_id"`
	QuoteNumber string   `json:"quote_number" gorm:"Column:quote_number;not null"`
	JobID       uint     `json:"job_id" gorm:"Column:job_id;index"`
	DateCreated Date     `json:"date_created" gorm:"Column:date_created"`
	CostExclGST *float64 `json:"cost_excl_gst" gorm:"Column:cost_excl_gst"`
	CostInclGST *float64 `json:"cost_incl_gst" gorm:"Column:cost_incl_gst"`

	Items []Item `json:"-" gorm:"foreignKey:QuoteID;references:QuoteID"`
}

func (Quote) TableName() string { return "quotes" }

// Item is one priced line of a quote
type Item struct {
	ItemID      uint     `json:"item_id" gorm:"primaryKey;Column:item_id"`
	QuoteID     uint     `json:"quote_id" gorm:"Column:quote_id;index"`
	ProductID   uint     `json:"product_id" gorm:"Column:product_id;index"`
	Reference   string   `json:"reference" gorm:"Column:reference;not null;default:''"`
	Notes       string   `json:"notes" gorm:"Column:notes"`
	Quantity    float64  `json:"quantity" gorm:"Column:quantity"`
	Length      *float64 `json:"length" gorm:"Column:length"`
	Height      *float64 `json:"height" gorm:"Column:height"`
	CostExclGST *float64 `json:"cost_excl_gst" gorm:"Column:cost_excl_gst"`
	CostInclGST *float64 `json:"cost_incl_gst" gorm:"Column:cost_incl_gst"`

	Product *Product `json:"-" gorm:"foreignKey:ProductID;references:ProductID"`
}

func (Item) TableName() string { return "items" }

// ItemVariable records which variable was configured on an item
type ItemVariable struct {
	ItemVariableID    uint `json:"item_variable_id" gorm:"primaryKey;Column:item_variable_id"`
	ItemID            uint `json:"item_id" gorm:"Column:item_id;index"`
	ProductVariableID uint `json:"product_variable_id" gorm:"Column:product_variable_id;index"`

	Options []ItemVariableOption `json:"options" gorm:"foreignKey:ItemVariableID;references:ItemVariableID"`
}

func (ItemVariable) TableName() string { return "item_variables" }

// ItemVariableOption records the option chosen for an item variable
type ItemVariableOption struct {
	ItemVariableOptionID uint `json:"item_variable_option_id" gorm:"primaryKey;Column:item_variable_option_id"`
	ItemVariableID       uint `json:"item_variable_id" gorm:"Column:item_variable_id;index"`
	VariableOptionID     uint `json:"variable_option_id" gorm:"Column:variable_option_id;index"`
}

func (ItemVariableOption) TableName() string { return "item_variable_options" }
