package models

import (
	"time"
)

// LabResult represents a reported lab test result for a patient.
type LabResult struct {
	BaseModel
	PatientID      string     `gorm:"size:36;index" json:"patientId"`
	DoctorID       string     `gorm:"size:36;index" json:"doctorId"`
	TestType       string     `gorm:"size:100;not null" json:"testType"`
	Result         string     `gorm:"size:255" json:"result"`
	Units          string     `gorm:"size:50" json:"units,omitempty"`
	ReferenceRange string     `gorm:"size:100" json:"referenceRange,omitempty"`
	LabNotes       string     `gorm:"type:text" json:"labNotes,omitempty"`
	CollectedAt    *time.Time `json:"collectedAt,omitempty"`
	ReportedAt     time.Time  `json:"reportedAt"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
}
