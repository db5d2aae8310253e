package models

// Client is a customer organisation
type Client struct {
	ClientID uint   `json:"client_id" gorm:"primaryKey;Column:client_id"`
	Name     string `json:"name" gorm:"Column:name;not null"`
	Address  string `json:"address" gorm:"Column:address"`
	Suburb   string `json:"suburb" gorm:"Column:suburb"`
	State    string `json:"state" gorm:"Column:state"`
	Postcode string `json:"postcode" gorm:"Column:postcode"`

	Contacts []Contact `json:"contacts,omitempty" gorm:"foreignKey:ClientID;references:ClientID"`
	Billing  []Billing `json:"billing,omitempty" gorm:"foreignKey:ClientID;references:ClientID"`
}

func (Client) TableName() string { return "clients" }

// Contact is a person at a client
type Contact struct {
	ContactID uint   `json:"contact_id" gorm:"primaryKey;Column:contact_id"`
	FirstName string `json:"first_name" gorm:"Column:first_name;not null"`
	Surname   string `json:"surname" gorm:"Column:surname"`
	Email     string `json:"email" gorm:"Column:email"`
	Phone     string `json:"phone" gorm:"Column:phone"`
	ClientID  uint   `json:"client_id" gorm:"Column:client_id;index"`
}

func (Contact) TableName() string { return "contacts" }

// FullName joins first name and surname
func (c Contact) FullName() string {
	return joinName(c.FirstName, c.Surname)
}

// Billing is an invoicing identity under a client
type Billing struct {
	BillingID uint   `json:"billing_id" gorm:"primaryKey;Column:billing_id"`
	Entity    string `json:"entity" gorm:"Column:entity;not null"`
	Address   string `json:"address" gorm:"Column:address"`
	Suburb    string `json:"suburb" gorm:"Column:suburb"`
	State     string `json:"state" gorm:"Column:state"`
	Postcode  string `json:"postcode" gorm:"Column:postcode"`
	ClientID  uint   `json:"client_id" gorm:"Column:client_id;index"`
}

func (Billing) TableName() string { return "billing" }

// Staff is an employee who can own jobs and create bookings
type Staff struct {
	StaffID                uint   `json:"staff_id" gorm:"primaryKey;Column:staff_id"`
	FirstName              string `json:"first_name" gorm:"Column:first_name;not null"`
	Surname                string `json:"surname" gorm:"Column:surname"`
	Phone                  string `json:"phone" gorm:"Column:phone"`
	Email                  string `json:"email" gorm:"Column:email"`
	Address                string `json:"address" gorm:"Column:address"`
	Suburb                 string `json:"suburb" gorm:"Column:suburb"`
	State                  string `json:"state" gorm:"Column:state"`
	Postcode               string `json:"postcode" gorm:"Column:postcode"`
	DOB                    *Date  `json:"dob" gorm:"Column:dob"`
	EmergencyContact       string `json:"emergency_contact" gorm:"Column:emergency_contact"`
	EmergencyContactNumber string `json:"emergency_contact_number" gorm:"Column:emergency_contact_number"`
}

func (Staff) TableName() string { return "staff" }

// FullName joins first name and surname
func (s Staff) FullName() string {
	return joinName(s.FirstName, s.Surname)
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
