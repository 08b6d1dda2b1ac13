package models

import (
	"time"
)

// Prescription represents a medication prescribed to a patient by a doctor.
type Prescription struct {
	BaseModel
	PatientID    string     `gorm:"size:36;index" json:"patientId"`
	DoctorID     string     `gorm:"size:36;index" json:"doctorId"`
	Medication   string     `gorm:"size:255;not null" json:"medication"`
	Dosage       string     `gorm:"size:100" json:"dosage,omitempty"`
	Frequency    string     `gorm:"size:100" json:"frequency,omitempty"`
	Instructions string     `gorm:"type:text" json:"instructions,omitempty"`
	IssuedAt     time.Time  `json:"issuedAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
}

// Active reports whether the prescription is still active at the given time.
// A prescription with no expiry never becomes inactive.
func (p *Prescription) Active(at time.Time) bool {
	return p.ExpiresAt == nil || p.ExpiresAt.After(at)
}
