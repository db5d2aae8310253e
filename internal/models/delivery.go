package models

import "time"

// Address is a free-standing location used by bookings
type Address struct {
	AddressID        uint     `json:"address_id" gorm:"primaryKey;Column:address_id"`
	Name             string   `json:"name" gorm:"Column:name"`
	GooglePlaceID    string   `json:"google_place_id" gorm:"Column:google_place_id"`
	FormattedAddress string   `json:"formatted_address" gorm:"Column:formatted_address"`
	StreetNumber     string   `json:"street_number" gorm:"Column:street_number"`
	StreetName       string   `json:"street_name" gorm:"Column:street_name"`
	Suburb           string   `json:"suburb" gorm:"Column:suburb"`
	State            string   `json:"state" gorm:"Column:state"`
	Postcode         string   `json:"postcode" gorm:"Column:postcode"`
	Country          string   `json:"country" gorm:"Column:country"`
	Latitude         *float64 `json:"latitude" gorm:"Column:latitude"`
	Longitude        *float64 `json:"longitude" gorm:"Column:longitude"`
}

func (Address) TableName() string { return "addresses" }

// Booking schedules a pickup and a dropoff
type Booking struct {
	BookingID        uint       `json:"booking_id" gorm:"primaryKey;Column:booking_id"`
	PickupAddressID  *uint      `json:"pickup_address_id" gorm:"Column:pickup_address_id"`
	PickupDate       Date       `json:"pickup_date" gorm:"Column:pickup_date;not null"`
	PickupTime       *string    `json:"pickup_time" gorm:"Column:pickup_time"`
	DropoffAddressID *uint      `json:"dropoff_address_id" gorm:"Column:dropoff_address_id"`
	DropoffDate      Date       `json:"dropoff_date" gorm:"Column:dropoff_date;not null"`
	DropoffTime      *string    `json:"dropoff_time" gorm:"Column:dropoff_time"`
	CreatorID        uint       `json:"creator_id" gorm:"Column:creator_id;index"`
	Notes            string     `json:"notes" gorm:"Column:notes"`
	JobNumber        string     `json:"job_number" gorm:"Column:job_number"`
	Completion       bool       `json:"completion" gorm:"Column:completion;not null;default:false"`
	Created          time.Time  `json:"created" gorm:"Column:created;autoCreateTime"`
	PickupComplete   *time.Time `json:"pickup_complete" gorm:"Column:pickup_complete"`
	DropoffComplete  *time.Time `json:"dropoff_complete" gorm:"Column:dropoff_complete"`

	PickupAddress  *Address     `json:"pickup_address,omitempty" gorm:"foreignKey:PickupAddressID;references:AddressID"`
	DropoffAddress *Address     `json:"dropoff_address,omitempty" gorm:"foreignKey:DropoffAddressID;references:AddressID"`
	Attachments    []Attachment `json:"attachments,omitempty" gorm:"foreignKey:BookingID;references:BookingID"`
}

func (Booking) TableName() string { return "bookings" }

// Attachment points at a file held by the object store
type Attachment struct {
	AttachmentID uint      `json:"attachment_id" gorm:"primaryKey;Column:attachment_id"`
	BookingID    *uint     `json:"booking_id" gorm:"Column:booking_id;index"`
	JobID        *uint     `json:"job_id" gorm:"Column:job_id;index"`
	FileName     string    `json:"file_name" gorm:"Column:file_name"`
	StoragePath  string    `json:"storage_path" gorm:"Column:storage_path;not null"`
	SharedURL    string    `json:"shared_url" gorm:"Column:shared_url"`
	UploadedBy   *uint     `json:"uploaded_by" gorm:"Column:uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at" gorm:"Column:uploaded_at"`
}

func (Attachment) TableName() string { return "attachments" }
