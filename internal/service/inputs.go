package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"example.com/outcry/internal/models"

	"github.com/pkg/errors"
)

// Catalog inputs

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type ProductInput struct {
	Name              string `json:"name" validate:"required,max=255"`
	ProductCategoryID uint   `json:"product_category_id" validate:"required"`
	MeasureTypeID     *uint  `json:"measure_type_id"`
}

type VariableInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	DataType string `json:"data_type" validate:"required,datatype"`
}

type OptionInput struct {
	Name              string  `json:"name" validate:"required,max=255"`
	BaseCost          float64 `json:"base_cost" validate:"gte=0"`
	MultiplierCost    float64 `json:"multiplier_cost" validate:"gte=0"`
	ProductVariableID uint    `json:"product_variable_id" validate:"required"`
}

// AssignResult reports the outcome of assigning a variable to a product
type AssignResult struct {
	Message         string                         `json:"message"`
	AlreadyAssigned bool                           `json:"already_assigned"`
	Assignment      *models.ProductProductVariable `json:"assignment,omitempty"`
}

type EstimateInput struct {
	ProductID uint    `json:"product_id" validate:"required"`
	Width     float64 `json:"width" validate:"gte=0"`
	Height    float64 `json:"height" validate:"gte=0"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
	OptionIDs []uint  `json:"option_ids"`
}

// assign copies value into dst when the request carried it
func assign[T any](dst *T, value *T) {
	if value != nil {
		*dst = *value
	}
}

// Party inputs

type ClientInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Address  string `json:"address"`
	Suburb   string `json:"suburb"`
	State    string `json:"state"`
	Postcode string `json:"postcode" validate:"postcode"`
}

// ClientUpdateInput changes only the fields present in the request
type ClientUpdateInput struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=255"`
	Address  *string `json:"address"`
	Suburb   *string `json:"suburb"`
	State    *string `json:"state"`
	Postcode *string `json:"postcode" validate:"omitempty,postcode"`
}

type ContactInput struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	Surname   string `json:"surname"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	ClientID  uint   `json:"client_id" validate:"required"`
}

// ContactUpdateInput changes only the fields present in the request
type ContactUpdateInput struct {
	FirstName *string `json:"first_name" validate:"omitnil,min=1,max=255"`
	Surname   *string `json:"surname"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	ClientID  *uint   `json:"client_id" validate:"omitnil,min=1"`
}

type BillingInput struct {
	Entity   string `json:"entity" validate:"required,max=255"`
	Address  string `json:"address"`
	Suburb   string `json:"suburb"`
	State    string `json:"state"`
	Postcode string `json:"postcode" validate:"postcode"`
	ClientID uint   `json:"client_id" validate:"required"`
}

// BillingUpdateInput changes only the fields present in the request
type BillingUpdateInput struct {
	Entity   *string `json:"entity" validate:"omitnil,min=1,max=255"`
	Address  *string `json:"address"`
	Suburb   *string `json:"suburb"`
	State    *string `json:"state"`
	Postcode *string `json:"postcode" validate:"omitempty,postcode"`
	ClientID *uint   `json:"client_id" validate:"omitnil,min=1"`
}

type StaffInput struct {
	FirstName              string       `json:"first_name" validate:"required,max=255"`
	Surname                string       `json:"surname"`
	Phone                  string       `json:"phone"`
	Email                  string       `json:"email" validate:"omitempty,email"`
	Address                string       `json:"address"`
	Suburb                 string       `json:"suburb"`
	State                  string       `json:"state"`
	Postcode               string       `json:"postcode" validate:"postcode"`
	DOB                    *models.Date `json:"dob"`
	EmergencyContact       string       `json:"emergency_contact"`
	EmergencyContactNumber string       `json:"emergency_contact_number"`
}

// Job inputs

type ProjectInput struct {
	Name        string       `json:"name" validate:"required,max=255"`
	Address     string       `json:"address"`
	Suburb      string       `json:"suburb"`
	State       string       `json:"state"`
	Postcode    string       `json:"postcode" validate:"postcode"`
	DateCreated *models.Date `json:"date_created"`
}

type JobInput struct {
	Reference     string              `json:"reference"`
	ProjectID     uint                `json:"project_id" validate:"required"`
	ClientID      uint                `json:"client_id" validate:"required"`
	ContactID     uint                `json:"contact_id" validate:"required"`
	StaffID       uint                `json:"staff_id" validate:"required"`
	BillingEntity *uint               `json:"billing_entity"`
	PO            string              `json:"po"`
	DateCreated   *models.Date        `json:"date_created"`
	JobStatusID   *models.JobStatusID `json:"job_status_id"`
	JobAddress    string              `json:"job_address"`
	Suburb        string              `json:"suburb"`
	State         string              `json:"state"`
	Postcode      string              `json:"postcode" validate:"postcode"`
	StageID       *models.StageID     `json:"stage_id"`
}

// JobUpdateInput changes only the fields present in the request. The edit
// form sends a subset, so absent fields keep their stored values.
type JobUpdateInput struct {
	Reference     *string             `json:"reference"`
	ProjectID     *uint               `json:"project_id" validate:"omitnil,min=1"`
	ClientID      *uint               `json:"client_id" validate:"omitnil,min=1"`
	ContactID     *uint               `json:"contact_id" validate:"omitnil,min=1"`
	StaffID       *uint               `json:"staff_id" validate:"omitnil,min=1"`
	BillingEntity *uint               `json:"billing_entity"`
	PO            *string             `json:"po"`
	DateCreated   *models.Date        `json:"date_created"`
	JobStatusID   *models.JobStatusID `json:"job_status_id"`
	JobAddress    *string             `json:"job_address"`
	Suburb        *string             `json:"suburb"`
	State         *string             `json:"state"`
	Postcode      *string             `json:"postcode" validate:"omitempty,postcode"`
	StageID       *models.StageID     `json:"stage_id"`
}

type JobAddressInput struct {
	JobAddress *string `json:"job_address"`
	Suburb     *string `json:"suburb"`
	State      *string `json:"state"`
	Postcode   *string `json:"postcode" validate:"omitempty,postcode"`
}

type StageDueDateInput struct {
	StageID models.StageID `json:"stage_id" validate:"required"`
	DueDate *models.Date   `json:"due_date"`
}

type QuoteInput struct {
	JobID       uint         `json:"job_id" validate:"required"`
	DateCreated *models.Date `json:"date_created"`
	CostExclGST *float64     `json:"cost_excl_gst"`
	CostInclGST *float64     `json:"cost_incl_gst"`
}

// QuoteCostInput changes only the fields present in the request
type QuoteCostInput struct {
	DateCreated *models.Date `json:"date_created"`
	CostExclGST *float64     `json:"cost_excl_gst"`
	CostInclGST *float64     `json:"cost_incl_gst"`
}

type ItemInput struct {
	QuoteID     uint     `json:"quote_id" validate:"required"`
	ProductID   uint     `json:"product_id" validate:"required"`
	Reference   string   `json:"reference"`
	Notes       string   `json:"notes"`
	Quantity    float64  `json:"quantity" validate:"gt=0"`
	Length      *float64 `json:"length" validate:"omitempty,gte=0"`
	Height      *float64 `json:"height" validate:"omitempty,gte=0"`
	CostExclGST *float64 `json:"cost_excl_gst"`
	CostInclGST *float64 `json:"cost_incl_gst"`
}

type ItemVariableInput struct {
	ItemID            uint  `json:"item_id" validate:"required"`
	ProductVariableID uint  `json:"product_variable_id" validate:"required"`
	VariableOptionID  *uint `json:"variable_option_id"`
}

// Throughput inputs

type StageInput struct {
	Stage      string `json:"stage" validate:"required,max=255"`
	StageOrder int    `json:"stage_order" validate:"gte=0"`
}

type TaskInput struct {
	TaskName string         `json:"task_name" validate:"required,max=255"`
	JobID    uint           `json:"job_id" validate:"required"`
	ItemID   *uint          `json:"item_id"`
	StageID  models.StageID `json:"stage_id" validate:"required"`
}

type TaskUpdateInput struct {
	TaskName  *string         `json:"task_name" validate:"omitempty,max=255"`
	TaskOrder *int            `json:"task_order" validate:"omitempty,gte=1"`
	StageID   *models.StageID `json:"stage_id"`
}

// Delivery inputs

// AddressDetails is a structured address as produced by the places autocomplete
type AddressDetails struct {
	GooglePlaceID    string   `json:"google_place_id"`
	FormattedAddress string   `json:"formatted_address"`
	StreetNumber     string   `json:"street_number"`
	StreetName       string   `json:"street_name"`
	Suburb           string   `json:"suburb"`
	State            string   `json:"state"`
	Postcode         string   `json:"postcode"`
	Country          string   `json:"country"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
}

type AddressInput struct {
	Name    string          `json:"name"`
	Address string          `json:"address"`
	Details *AddressDetails `json:"details"`
}

type BookingInput struct {
	PickupAddressID       *uint           `json:"pickup_address_id"`
	PickupAddress         string          `json:"pickup_address"`
	PickupAddressDetails  *AddressDetails `json:"pickup_address_details"`
	PickupDate            *models.Date    `json:"pickup_date" validate:"required"`
	PickupTime            *string         `json:"pickup_time" validate:"omitempty,clocktime"`
	DropoffAddressID      *uint           `json:"dropoff_address_id"`
	DropoffAddress        string          `json:"dropoff_address"`
	DropoffAddressDetails *AddressDetails `json:"dropoff_address_details"`
	DropoffDate           *models.Date    `json:"dropoff_date" validate:"required"`
	DropoffTime           *string         `json:"dropoff_time" validate:"omitempty,clocktime"`
	CreatorID             uint            `json:"creator_id" validate:"required"`
	Notes                 string          `json:"notes"`
	JobNumber             string          `json:"job_number"`
}

type BookingUpdateInput struct {
	Completion      *bool        `json:"completion"`
	PickupComplete  OptionalTime `json:"pickup_complete"`
	DropoffComplete OptionalTime `json:"dropoff_complete"`
	Notes           *string      `json:"notes"`
}

// AttachmentTarget names the entity an upload belongs to. Exactly one id is set.
type AttachmentTarget struct {
	BookingID *uint
	JobID     *uint
}

// OptionalTime is a timestamp field that distinguishes absent, cleared and set.
// JSON null, false and "" clear it, true means now and a string is parsed as
// RFC 3339.
type OptionalTime struct {
	present bool
	now     bool
	value   *time.Time
}

// SetTime returns a present OptionalTime holding t
func SetTime(t time.Time) OptionalTime {
	return OptionalTime{present: true, value: &t}
}

// ClearTime returns a present OptionalTime that clears the field
func ClearTime() OptionalTime {
	return OptionalTime{present: true}
}

// NowTime returns a present OptionalTime resolved to the time of the update
func NowTime() OptionalTime {
	return OptionalTime{present: true, now: true}
}

// Present reports whether the field appeared in the request
func (o OptionalTime) Present() bool {
	return o.present
}

// Resolve returns the value to store
func (o OptionalTime) Resolve(now time.Time) *time.Time {
	if o.now {
		return &now
	}
	return o.value
}

var optionalTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	*o = OptionalTime{present: true}

	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false":
		return nil
	case "true":
		o.now = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("expected a timestamp, true, false or null")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range optionalTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			o.value = &t
			return nil
		}
	}
	return errors.Errorf("invalid timestamp %q", s)
}
