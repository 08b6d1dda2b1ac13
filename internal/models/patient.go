package models

import (
	"time"
)

// Patient is the role-specific profile owned by a user with the patient role.
type Patient struct {
	BaseModel
	UserID                string    `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	FirstName             string    `gorm:"size:100;not null" json:"firstName"`
	LastName              string    `gorm:"size:100;not null" json:"lastName"`
	DateOfBirth           time.Time `json:"dateOfBirth"`
	Gender                string    `gorm:"size:20" json:"gender,omitempty"`
	BloodType             string    `gorm:"size:10" json:"bloodType,omitempty"`
	Address               string    `gorm:"size:255" json:"address,omitempty"`
	EmergencyContactName  string    `gorm:"size:100" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string    `gorm:"size:30" json:"emergencyContactPhone,omitempty"`
	InsuranceProvider     string    `gorm:"size:100" json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber string    `gorm:"size:100" json:"insurancePolicyNumber,omitempty"`

	// Relations
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Appointments  []Appointment  `gorm:"foreignKey:PatientID" json:"-"`
	Billings      []Billing      `gorm:"foreignKey:PatientID" json:"-"`
	Prescriptions []Prescription `gorm:"foreignKey:PatientID" json:"-"`
	LabResults    []LabResult    `gorm:"foreignKey:PatientID" json:"-"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
